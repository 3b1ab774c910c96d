package booking

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// Allocation describes the capacity an operation consumes or returns.  The
// ledger key is the reservation window itself; for a validated request it
// coincides with one grid slot, so every overlapping CONFIRMED reservation
// of the space shares the key.
type Allocation struct {
	SpaceID     uint64
	Date        model.Date
	Start       model.TimeOfDay
	End         model.TimeOfDay
	MaxCapacity int
	PartySize   int
}

// AllocationOf returns the allocation held by a reservation.
func AllocationOf(r *model.Reservation, maxCapacity int) Allocation {
	return Allocation{
		SpaceID:     r.SpaceID,
		Date:        r.Date,
		Start:       r.StartTime,
		End:         r.EndTime,
		MaxCapacity: maxCapacity,
		PartySize:   r.PartySize,
	}
}

// Key returns the ledger key of the allocation.
func (a Allocation) Key() model.SlotKey {
	return model.SlotKey{SpaceID: a.SpaceID, Date: a.Date, Start: a.Start, End: a.End}
}

// RecordFunc prepares the reservation write committed together with a
// ledger change.  It runs once per attempt so it can re-read state that a
// concurrent writer may have changed; an error other than
// ErrRevisionConflict aborts the operation.  A nil RecordFunc commits no
// record.
type RecordFunc func(ctx context.Context) (RecordWrite, error)

// Record wraps a fixed record write.
func Record(w RecordWrite) RecordFunc {
	return func(context.Context) (RecordWrite, error) { return w, nil }
}

func (f RecordFunc) prepare(ctx context.Context) (RecordWrite, error) {
	if f == nil {
		return RecordWrite{Op: RecordNone}, nil
	}
	return f(ctx)
}

// LedgerOptions bounds the optimistic retry loop.
type LedgerOptions struct {
	MaxAttempts int
	Backoff     time.Duration
}

// CapacityLedger admits and releases party sizes against per-slot totals.
// Every mutation is a read followed by a revision-guarded commit; a lost
// race re-reads and re-checks, so two callers can never both commit on the
// same snapshot.  No lock is held between the read and the commit.
type CapacityLedger struct {
	store LedgerStore
	opts  LedgerOptions
}

func NewCapacityLedger(store LedgerStore, opts LedgerOptions) *CapacityLedger {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 8
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 5 * time.Millisecond
	}
	return &CapacityLedger{store: store, opts: opts}
}

// Allocate checks booked+party <= max on the allocation's key and, only
// if it holds, raises it by the party size in the same commit as the
// record.  A full slot yields *CapacityExceededError and leaves the ledger
// untouched.
func (l *CapacityLedger) Allocate(ctx context.Context, a Allocation, record RecordFunc) error {
	if a.PartySize <= 0 {
		return fmt.Errorf("allocate: party size must be positive, got %d", a.PartySize)
	}
	key := a.Key()
	return l.retry(ctx, func() error {
		cur, err := l.store.LedgerEntry(ctx, key)
		if err != nil {
			return fmt.Errorf("read ledger %s: %w", key, err)
		}
		cur.Key = key
		if cur.Booked+a.PartySize > a.MaxCapacity {
			return &CapacityExceededError{Requested: a.PartySize, Available: max(a.MaxCapacity-cur.Booked, 0)}
		}
		next := cur
		next.Booked = cur.Booked + a.PartySize
		next.MaxCapacity = a.MaxCapacity
		next.Revision = cur.Revision + 1

		rec, err := record.prepare(ctx)
		if err != nil {
			return err
		}
		return l.store.Commit(ctx, Commit{Swaps: []EntrySwap{{Prev: cur, Next: next}}, Record: rec})
	})
}

// Release lowers the allocation's key by the party size, flooring at zero,
// in the same commit as the record.  Callers guarantee one release per
// successful allocation; the ledger does not track that itself.
func (l *CapacityLedger) Release(ctx context.Context, a Allocation, record RecordFunc) error {
	key := a.Key()
	return l.retry(ctx, func() error {
		rec, err := record.prepare(ctx)
		if err != nil {
			return err
		}
		cur, err := l.store.LedgerEntry(ctx, key)
		if err != nil {
			return fmt.Errorf("read ledger %s: %w", key, err)
		}
		cur.Key = key
		next := cur
		next.Booked = max(cur.Booked-a.PartySize, 0)
		if a.MaxCapacity > 0 {
			next.MaxCapacity = a.MaxCapacity
		}
		next.Revision = cur.Revision + 1
		return l.store.Commit(ctx, Commit{Swaps: []EntrySwap{{Prev: cur, Next: next}}, Record: rec})
	})
}

// Entries returns the ledger entries recorded for a space on a date.
func (l *CapacityLedger) Entries(ctx context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	return l.store.LedgerEntries(ctx, spaceID, date)
}

// retry runs attempt until it returns anything other than a revision
// conflict, sleeping with jittered exponential backoff in between.
func (l *CapacityLedger) retry(ctx context.Context, attempt func() error) error {
	backoff := l.opts.Backoff
	for i := 0; i < l.opts.MaxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := attempt()
		if !errors.Is(err, ErrRevisionConflict) {
			return err
		}
		if i == l.opts.MaxAttempts-1 {
			break
		}
		wait := backoff/2 + rand.N(backoff/2+1)
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		backoff *= 2
	}
	return fmt.Errorf("%w after %d attempts", ErrStoreContention, l.opts.MaxAttempts)
}

// WriteRecord commits a reservation write that moves no capacity, with the
// same retry discipline as Allocate and Release.
func (l *CapacityLedger) WriteRecord(ctx context.Context, record RecordFunc) error {
	return l.retry(ctx, func() error {
		rec, err := record.prepare(ctx)
		if err != nil {
			return err
		}
		return l.store.Commit(ctx, Commit{Record: rec})
	})
}
