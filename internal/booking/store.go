package booking

import (
	"context"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// SpaceSource supplies space configuration.  Space returns ErrSpaceNotFound
// for unknown ids.
type SpaceSource interface {
	Space(ctx context.Context, id uint64) (*model.Space, error)
}

// ReservationSource is the query surface over reservation records.
// Reservation returns ErrNotFound for unknown ids.
type ReservationSource interface {
	Reservation(ctx context.Context, id string) (*model.Reservation, error)
	ReservationsForDay(ctx context.Context, spaceID uint64, date model.Date) ([]model.Reservation, error)
}

// RecordOp selects the reservation write that rides along with a commit.
type RecordOp int

const (
	RecordNone RecordOp = iota
	RecordInsert
	RecordUpdate
	RecordDelete
)

// RecordWrite is the reservation side of a commit.  Update and delete are
// applied only if the stored revision still equals ExpectedRevision.
type RecordWrite struct {
	Op               RecordOp
	Reservation      *model.Reservation
	ExpectedRevision int64
}

// EntrySwap replaces a ledger entry, guarded by the revision observed when
// it was read (zero for an entry that did not exist).
type EntrySwap struct {
	Prev model.LedgerEntry
	Next model.LedgerEntry
}

// Commit is applied by a LedgerStore as one indivisible unit: either every
// swap and the record write take effect, or none do.
type Commit struct {
	Swaps  []EntrySwap
	Record RecordWrite
}

// LedgerStore is the persistence substrate of the capacity ledger.
// LedgerEntry returns a zero entry (Revision 0) for a key never written.
// Commit returns ErrRevisionConflict, changing nothing, when any guard
// fails.
type LedgerStore interface {
	LedgerEntry(ctx context.Context, key model.SlotKey) (model.LedgerEntry, error)
	LedgerEntries(ctx context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error)
	Commit(ctx context.Context, c Commit) error
}

// Store bundles everything the reservation service consumes.
type Store interface {
	SpaceSource
	WindowSource
	ReservationSource
	LedgerStore
}
