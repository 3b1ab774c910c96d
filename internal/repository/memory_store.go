package repository

import (
	"cmp"
	"context"
	"hash/maphash"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

const ledgerStripes = 64

type dayKey struct {
	spaceID uint64
	date    model.Date
}

type windowKey struct {
	restaurantID uint64
	weekday      time.Weekday
}

type ledgerStripe struct {
	mu      sync.Mutex
	entries map[model.SlotKey]model.LedgerEntry
}

// MemoryStore is an in-process implementation of booking.Store used by
// tests and the STORE_DRIVER=memory development mode.  Ledger entries are
// spread over striped mutexes so commits on unrelated slots do not wait
// on each other; a commit locks its stripes in ascending order and then
// the record map, which keeps it deadlock free.
type MemoryStore struct {
	seed    maphash.Seed
	stripes [ledgerStripes]ledgerStripe

	cfgMu       sync.RWMutex
	restaurants map[uint64]model.Restaurant
	spaces      map[uint64]model.Space
	windows     map[windowKey]model.OperatingWindow

	recMu   sync.RWMutex
	records map[string]*model.Reservation
	byDay   map[dayKey]map[string]struct{}
}

var _ booking.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		seed:        maphash.MakeSeed(),
		restaurants: make(map[uint64]model.Restaurant),
		spaces:      make(map[uint64]model.Space),
		windows:     make(map[windowKey]model.OperatingWindow),
		records:     make(map[string]*model.Reservation),
		byDay:       make(map[dayKey]map[string]struct{}),
	}
	for i := range s.stripes {
		s.stripes[i].entries = make(map[model.SlotKey]model.LedgerEntry)
	}
	return s
}

// SaveRestaurant inserts or replaces a restaurant.
func (s *MemoryStore) SaveRestaurant(_ context.Context, r *model.Restaurant) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.restaurants[r.ID] = *r
	return nil
}

// SaveSpace inserts or replaces a space.
func (s *MemoryStore) SaveSpace(_ context.Context, sp *model.Space) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.spaces[sp.ID] = *sp
	return nil
}

// SaveOperatingWindow inserts or replaces the window of one weekday.
func (s *MemoryStore) SaveOperatingWindow(_ context.Context, w *model.OperatingWindow) error {
	s.cfgMu.Lock()
	defer s.cfgMu.Unlock()
	s.windows[windowKey{w.RestaurantID, w.Weekday}] = *w
	return nil
}

func (s *MemoryStore) Space(_ context.Context, id uint64) (*model.Space, error) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	sp, ok := s.spaces[id]
	if !ok {
		return nil, booking.ErrSpaceNotFound
	}
	return &sp, nil
}

func (s *MemoryStore) OperatingWindow(_ context.Context, restaurantID uint64, weekday time.Weekday) (*model.OperatingWindow, error) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	w, ok := s.windows[windowKey{restaurantID, weekday}]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (s *MemoryStore) OperatingWindows(_ context.Context, restaurantID uint64) ([]model.OperatingWindow, error) {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	var out []model.OperatingWindow
	for k, w := range s.windows {
		if k.restaurantID == restaurantID {
			out = append(out, w)
		}
	}
	slices.SortFunc(out, func(a, b model.OperatingWindow) int { return cmp.Compare(a.Weekday, b.Weekday) })
	return out, nil
}

func (s *MemoryStore) Reservation(_ context.Context, id string) (*model.Reservation, error) {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, booking.ErrNotFound
	}
	return r.Clone(), nil
}

func (s *MemoryStore) ReservationsForDay(_ context.Context, spaceID uint64, date model.Date) ([]model.Reservation, error) {
	s.recMu.RLock()
	defer s.recMu.RUnlock()
	ids := s.byDay[dayKey{spaceID, date}]
	out := make([]model.Reservation, 0, len(ids))
	for id := range ids {
		out = append(out, *s.records[id].Clone())
	}
	return out, nil
}

func (s *MemoryStore) stripe(key model.SlotKey) int {
	return int(maphash.Comparable(s.seed, key) % ledgerStripes)
}

func (s *MemoryStore) LedgerEntry(_ context.Context, key model.SlotKey) (model.LedgerEntry, error) {
	st := &s.stripes[s.stripe(key)]
	st.mu.Lock()
	defer st.mu.Unlock()
	e, ok := st.entries[key]
	if !ok {
		return model.LedgerEntry{Key: key}, nil
	}
	return e, nil
}

func (s *MemoryStore) LedgerEntries(_ context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	var out []model.LedgerEntry
	for i := range s.stripes {
		st := &s.stripes[i]
		st.mu.Lock()
		for k, e := range st.entries {
			if k.SpaceID == spaceID && k.Date.Equal(date) {
				out = append(out, e)
			}
		}
		st.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b model.LedgerEntry) int {
		return cmp.Or(cmp.Compare(a.Key.Start, b.Key.Start), cmp.Compare(a.Key.End, b.Key.End))
	})
	return out, nil
}

// Commit applies the swaps and the record write all-or-nothing.
func (s *MemoryStore) Commit(ctx context.Context, c booking.Commit) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	idx := make([]int, 0, len(c.Swaps))
	for _, sw := range c.Swaps {
		idx = append(idx, s.stripe(sw.Next.Key))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)
	for _, i := range idx {
		s.stripes[i].mu.Lock()
	}
	defer func() {
		for _, i := range idx {
			s.stripes[i].mu.Unlock()
		}
	}()

	for _, sw := range c.Swaps {
		cur := s.stripes[s.stripe(sw.Next.Key)].entries[sw.Next.Key]
		if cur.Revision != sw.Prev.Revision {
			return booking.ErrRevisionConflict
		}
	}

	s.recMu.Lock()
	defer s.recMu.Unlock()
	if err := s.checkRecord(c.Record); err != nil {
		return err
	}

	for _, sw := range c.Swaps {
		s.stripes[s.stripe(sw.Next.Key)].entries[sw.Next.Key] = sw.Next
	}
	s.applyRecord(c.Record)
	return nil
}

func (s *MemoryStore) checkRecord(w booking.RecordWrite) error {
	if w.Op == booking.RecordNone {
		return nil
	}
	cur, exists := s.records[w.Reservation.ID]
	switch w.Op {
	case booking.RecordInsert:
		if exists {
			return booking.ErrRevisionConflict
		}
	case booking.RecordUpdate, booking.RecordDelete:
		if !exists {
			return booking.ErrNotFound
		}
		if cur.Revision != w.ExpectedRevision {
			return booking.ErrRevisionConflict
		}
	}
	return nil
}

func (s *MemoryStore) applyRecord(w booking.RecordWrite) {
	if w.Op == booking.RecordNone {
		return
	}
	r := w.Reservation
	day := dayKey{r.SpaceID, r.Date}
	switch w.Op {
	case booking.RecordInsert, booking.RecordUpdate:
		s.records[r.ID] = r.Clone()
		if s.byDay[day] == nil {
			s.byDay[day] = make(map[string]struct{})
		}
		s.byDay[day][r.ID] = struct{}{}
	case booking.RecordDelete:
		delete(s.records, r.ID)
		delete(s.byDay[day], r.ID)
		if len(s.byDay[day]) == 0 {
			delete(s.byDay, day)
		}
	}
}
