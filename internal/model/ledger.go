package model

import "fmt"

// SlotKey identifies one capacity ledger entry: a concrete slot window of a
// space on a date.
type SlotKey struct {
	SpaceID uint64    `json:"space_id"`
	Date    Date      `json:"date"`
	Start   TimeOfDay `json:"start"`
	End     TimeOfDay `json:"end"`
}

func (k SlotKey) String() string {
	return fmt.Sprintf("%d/%s/%s-%s", k.SpaceID, k.Date, k.Start, k.End)
}

// LedgerEntry tracks committed party size against a slot key.  Booked
// always equals the sum of party sizes of CONFIRMED reservations whose
// window overlaps the key.  Revision is zero for an entry that has never
// been written and increases by one on every write.
//
// Fields:
//  Key         – the slot this entry covers.
//  Booked      – committed party size total.
//  MaxCapacity – denormalized from the space at write time.
//  Revision    – optimistic concurrency counter.
type LedgerEntry struct {
	Key         SlotKey `json:"key"`          // slot_capacity_ledger.(space_id, slot_date, start_minute, end_minute)
	Booked      int     `json:"booked"`       // slot_capacity_ledger.booked_capacity
	MaxCapacity int     `json:"max_capacity"` // slot_capacity_ledger.max_capacity
	Revision    int64   `json:"revision"`     // slot_capacity_ledger.revision
}

// Available returns the remaining room, floored at zero.
func (e LedgerEntry) Available() int {
	if n := e.MaxCapacity - e.Booked; n > 0 {
		return n
	}
	return 0
}
