package booking

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// scriptedStore is a single-goroutine LedgerStore whose Commit fails with
// a revision conflict a fixed number of times before applying.
type scriptedStore struct {
	mu        sync.Mutex
	entries   map[model.SlotKey]model.LedgerEntry
	conflicts int
	commits   int
	lastRec   RecordWrite
}

func newScriptedStore(conflicts int) *scriptedStore {
	return &scriptedStore{entries: map[model.SlotKey]model.LedgerEntry{}, conflicts: conflicts}
}

func (s *scriptedStore) LedgerEntry(_ context.Context, key model.SlotKey) (model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[key], nil
}

func (s *scriptedStore) LedgerEntries(_ context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.LedgerEntry
	for k, e := range s.entries {
		if k.SpaceID == spaceID && k.Date.Equal(date) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *scriptedStore) Commit(_ context.Context, c Commit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conflicts > 0 {
		s.conflicts--
		return ErrRevisionConflict
	}
	for _, sw := range c.Swaps {
		if s.entries[sw.Next.Key].Revision != sw.Prev.Revision {
			return ErrRevisionConflict
		}
	}
	for _, sw := range c.Swaps {
		s.entries[sw.Next.Key] = sw.Next
	}
	s.commits++
	s.lastRec = c.Record
	return nil
}

func testAllocation(party int) Allocation {
	return Allocation{
		SpaceID:     10,
		Date:        model.MustDate("2026-03-09"),
		Start:       tod("19:30"),
		End:         tod("21:00"),
		MaxCapacity: 9,
		PartySize:   party,
	}
}

func fastLedger(store LedgerStore, attempts int) *CapacityLedger {
	return NewCapacityLedger(store, LedgerOptions{MaxAttempts: attempts, Backoff: time.Microsecond})
}

func TestAllocateAndRelease(t *testing.T) {
	ctx := context.Background()
	store := newScriptedStore(0)
	l := fastLedger(store, 3)
	a := testAllocation(4)

	if err := l.Allocate(ctx, a, nil); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if err := l.Allocate(ctx, a, nil); err != nil {
		t.Fatalf("second allocate: %v", err)
	}
	e := store.entries[a.Key()]
	if e.Booked != 8 || e.MaxCapacity != 9 || e.Revision != 2 {
		t.Fatalf("entry = %+v, want booked 8 max 9 revision 2", e)
	}

	err := l.Allocate(ctx, a, nil)
	var ce *CapacityExceededError
	if !errors.As(err, &ce) {
		t.Fatalf("third allocate err = %v, want CapacityExceededError", err)
	}
	if ce.Requested != 4 || ce.Available != 1 {
		t.Fatalf("exceeded = %+v, want requested 4 available 1", ce)
	}
	if store.entries[a.Key()].Revision != 2 {
		t.Fatal("rejected allocation changed the entry")
	}

	if err := l.Release(ctx, AllocationOf(&model.Reservation{SpaceID: 10, Date: a.Date, StartTime: a.Start, EndTime: a.End, PartySize: 4}, 0), nil); err != nil {
		t.Fatalf("release: %v", err)
	}
	e = store.entries[a.Key()]
	if e.Booked != 4 || e.MaxCapacity != 9 {
		t.Fatalf("after release entry = %+v, want booked 4 and max kept at 9", e)
	}
}

func TestReleaseFloorsAtZero(t *testing.T) {
	store := newScriptedStore(0)
	l := fastLedger(store, 3)
	if err := l.Release(context.Background(), testAllocation(5), nil); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := store.entries[testAllocation(5).Key()].Booked; got != 0 {
		t.Fatalf("booked = %d, want 0", got)
	}
}

func TestAllocateRetriesRevisionConflicts(t *testing.T) {
	store := newScriptedStore(2)
	l := fastLedger(store, 3)
	attempts := 0
	record := func(context.Context) (RecordWrite, error) {
		attempts++
		return RecordWrite{Op: RecordInsert, Reservation: &model.Reservation{ID: "r1"}}, nil
	}
	if err := l.Allocate(context.Background(), testAllocation(3), record); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	if attempts != 3 {
		t.Fatalf("record prepared %d times, want once per attempt (3)", attempts)
	}
	if store.commits != 1 || store.lastRec.Reservation.ID != "r1" {
		t.Fatalf("commits = %d, last record %+v", store.commits, store.lastRec)
	}
}

func TestAllocateSurfacesContentionWhenRetriesExhausted(t *testing.T) {
	store := newScriptedStore(100)
	l := fastLedger(store, 4)
	err := l.Allocate(context.Background(), testAllocation(3), nil)
	if !errors.Is(err, ErrStoreContention) {
		t.Fatalf("err = %v, want ErrStoreContention", err)
	}
	if errors.Is(err, ErrCapacityExceeded) {
		t.Fatal("contention must be distinct from capacity exceeded")
	}
	if store.conflicts != 96 {
		t.Fatalf("made %d attempts, want 4", 100-store.conflicts)
	}
	if len(store.entries) != 0 {
		t.Fatal("failed allocation left an entry behind")
	}
}

func TestRecordErrorAbortsWithoutCommit(t *testing.T) {
	store := newScriptedStore(0)
	l := fastLedger(store, 3)
	boom := errors.New("boom")
	err := l.Release(context.Background(), testAllocation(3), func(context.Context) (RecordWrite, error) {
		return RecordWrite{}, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if store.commits != 0 {
		t.Fatal("aborted release committed")
	}
}

func TestAllocateHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := newScriptedStore(0)
	if err := fastLedger(store, 3).Allocate(ctx, testAllocation(2), nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if store.commits != 0 {
		t.Fatal("cancelled allocation committed")
	}
}

func TestAllocateRejectsNonPositiveParty(t *testing.T) {
	if err := fastLedger(newScriptedStore(0), 3).Allocate(context.Background(), testAllocation(0), nil); err == nil {
		t.Fatal("expected error for empty party")
	}
}
