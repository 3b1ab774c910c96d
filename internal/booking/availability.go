package booking

import (
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// SlotStatus summarizes how much room a slot has left.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "AVAILABLE"
	SlotLimited   SlotStatus = "LIMITED"
	SlotFull      SlotStatus = "FULL"
)

// DefaultLimitedRatio is the share of capacity at or below which a slot
// is reported as LIMITED.
const DefaultLimitedRatio = 0.25

// SlotAvailability is one row of an availability projection.
type SlotAvailability struct {
	SlotStart         model.TimeOfDay `json:"slot_start"`
	SlotEnd           model.TimeOfDay `json:"slot_end"`
	BookedCapacity    int             `json:"booked_capacity"`
	AvailableCapacity int             `json:"available_capacity"`
	Status            SlotStatus      `json:"status"`
	OverlappingCount  int             `json:"overlapping_count"`
}

// Project builds the availability of every grid slot from the live
// reservations of the day.  It reads nothing and mutates nothing.
func Project(slots []Slot, reservations []model.Reservation, maxCapacity int, limitedRatio float64) []SlotAvailability {
	out := make([]SlotAvailability, 0, len(slots))
	for _, s := range slots {
		booked := BookedCapacity(reservations, s.Start, s.End)
		available := max(maxCapacity-booked, 0)
		out = append(out, SlotAvailability{
			SlotStart:         s.Start,
			SlotEnd:           s.End,
			BookedCapacity:    booked,
			AvailableCapacity: available,
			Status:            statusFor(available, maxCapacity, limitedRatio),
			OverlappingCount:  OverlapCount(reservations, s.Start, s.End),
		})
	}
	return out
}

func statusFor(available, maxCapacity int, limitedRatio float64) SlotStatus {
	switch {
	case available <= 0:
		return SlotFull
	case float64(available) <= float64(maxCapacity)*limitedRatio:
		return SlotLimited
	default:
		return SlotAvailable
	}
}
