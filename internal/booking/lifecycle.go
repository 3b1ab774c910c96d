package booking

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// errFinishedElsewhere aborts a release whose reservation left CONFIRMED
// between the first read and the commit.
var errFinishedElsewhere = errors.New("reservation finished concurrently")

// Lifecycle owns reservation status transitions.  CONFIRMED is the only
// initial state; CANCELLED, COMPLETED and NO_SHOW are terminal.  Every
// transition out of CONFIRMED returns the reservation's capacity in the
// same commit as the status change, so the release fires exactly once.
type Lifecycle struct {
	ledger  *CapacityLedger
	records ReservationSource
	clock   Clock
}

func NewLifecycle(ledger *CapacityLedger, records ReservationSource, clock Clock) *Lifecycle {
	return &Lifecycle{ledger: ledger, records: records, clock: clock}
}

// Create allocates capacity for r and inserts it as CONFIRMED in one unit.
func (l *Lifecycle) Create(ctx context.Context, r *model.Reservation, maxCapacity int) error {
	now := l.clock.Now().UTC()
	r.Status = model.StatusConfirmed
	r.Revision = 1
	r.CreatedAt = now
	r.UpdatedAt = now
	return l.ledger.Allocate(ctx, AllocationOf(r, maxCapacity), Record(RecordWrite{Op: RecordInsert, Reservation: r}))
}

// Cancel moves a CONFIRMED reservation to CANCELLED, stamping the reason
// and time, and releases its capacity.  A terminal reservation yields
// ErrAlreadyTerminal and releases nothing.
func (l *Lifecycle) Cancel(ctx context.Context, id string, reason *string) (*model.Reservation, error) {
	return l.finish(ctx, id, func(r *model.Reservation, now time.Time) {
		r.Status = model.StatusCancelled
		r.CancelledAt = &now
		r.CancellationReason = reason
	})
}

// Complete moves a CONFIRMED reservation to COMPLETED.
func (l *Lifecycle) Complete(ctx context.Context, id string) (*model.Reservation, error) {
	return l.finish(ctx, id, func(r *model.Reservation, _ time.Time) {
		r.Status = model.StatusCompleted
	})
}

// NoShow moves a CONFIRMED reservation to NO_SHOW.
func (l *Lifecycle) NoShow(ctx context.Context, id string) (*model.Reservation, error) {
	return l.finish(ctx, id, func(r *model.Reservation, _ time.Time) {
		r.Status = model.StatusNoShow
	})
}

// Delete removes the record and returns it as it was.  A CONFIRMED
// reservation releases its capacity in the same commit; any other status
// leaves the ledger alone.
func (l *Lifecycle) Delete(ctx context.Context, id string) (*model.Reservation, error) {
	cur, err := l.records.Reservation(ctx, id)
	if err != nil {
		return nil, err
	}

	var deleted *model.Reservation
	prepare := func(confirmed bool) RecordFunc {
		return func(ctx context.Context) (RecordWrite, error) {
			latest, err := l.records.Reservation(ctx, id)
			if err != nil {
				return RecordWrite{}, err
			}
			if confirmed && latest.Status != model.StatusConfirmed {
				return RecordWrite{}, errFinishedElsewhere
			}
			deleted = latest
			return RecordWrite{Op: RecordDelete, Reservation: latest, ExpectedRevision: latest.Revision}, nil
		}
	}

	if cur.Status == model.StatusConfirmed {
		err = l.ledger.Release(ctx, AllocationOf(cur, 0), prepare(true))
		if !errors.Is(err, errFinishedElsewhere) {
			if err != nil {
				return nil, err
			}
			return deleted, nil
		}
	}
	// Terminal reservations never become CONFIRMED again, so a plain
	// revision-guarded delete is enough.
	if err := l.ledger.WriteRecord(ctx, prepare(false)); err != nil {
		return nil, err
	}
	return deleted, nil
}

// finish runs a CONFIRMED -> terminal transition together with its release.
func (l *Lifecycle) finish(ctx context.Context, id string, apply func(*model.Reservation, time.Time)) (*model.Reservation, error) {
	cur, err := l.records.Reservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if cur.Status.Terminal() {
		return nil, ErrAlreadyTerminal
	}

	var updated *model.Reservation
	err = l.ledger.Release(ctx, AllocationOf(cur, 0), func(ctx context.Context) (RecordWrite, error) {
		latest, err := l.records.Reservation(ctx, id)
		if err != nil {
			return RecordWrite{}, err
		}
		if latest.Status.Terminal() {
			return RecordWrite{}, ErrAlreadyTerminal
		}
		next := latest.Clone()
		now := l.clock.Now().UTC()
		apply(next, now)
		next.Revision = latest.Revision + 1
		next.UpdatedAt = now
		updated = next
		return RecordWrite{Op: RecordUpdate, Reservation: next, ExpectedRevision: latest.Revision}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
