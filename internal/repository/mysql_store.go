package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// MySQLStore implements booking.Store on top of the MySQL repositories.
// Each Commit is one short transaction made only of conditional writes;
// nothing is read with a lock, so a transaction never waits on another
// request's think time.
type MySQLStore struct {
	db           *sql.DB
	Restaurants  *RestaurantRepo
	Spaces       *SpaceRepo
	Reservations *ReservationRepo
	Ledger       *LedgerRepo
}

var _ booking.Store = (*MySQLStore)(nil)

func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:           db,
		Restaurants:  NewRestaurantRepo(db),
		Spaces:       NewSpaceRepo(db),
		Reservations: NewReservationRepo(db),
		Ledger:       NewLedgerRepo(db),
	}
}

func (s *MySQLStore) Space(ctx context.Context, id uint64) (*model.Space, error) {
	return s.Spaces.Get(ctx, id)
}

func (s *MySQLStore) OperatingWindow(ctx context.Context, restaurantID uint64, weekday time.Weekday) (*model.OperatingWindow, error) {
	return s.Restaurants.Window(ctx, restaurantID, weekday)
}

func (s *MySQLStore) OperatingWindows(ctx context.Context, restaurantID uint64) ([]model.OperatingWindow, error) {
	return s.Restaurants.Windows(ctx, restaurantID)
}

func (s *MySQLStore) Reservation(ctx context.Context, id string) (*model.Reservation, error) {
	return s.Reservations.Get(ctx, id)
}

func (s *MySQLStore) ReservationsForDay(ctx context.Context, spaceID uint64, date model.Date) ([]model.Reservation, error) {
	return s.Reservations.ListForDay(ctx, spaceID, date)
}

func (s *MySQLStore) LedgerEntry(ctx context.Context, key model.SlotKey) (model.LedgerEntry, error) {
	return s.Ledger.Entry(ctx, key)
}

func (s *MySQLStore) LedgerEntries(ctx context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	return s.Ledger.Entries(ctx, spaceID, date)
}

// SaveRestaurant, SaveSpace and SaveOperatingWindow make MySQLStore a seed
// target.
func (s *MySQLStore) SaveRestaurant(ctx context.Context, r *model.Restaurant) error {
	return s.Restaurants.Upsert(ctx, r)
}

func (s *MySQLStore) SaveSpace(ctx context.Context, sp *model.Space) error {
	return s.Spaces.Upsert(ctx, sp)
}

func (s *MySQLStore) SaveOperatingWindow(ctx context.Context, w *model.OperatingWindow) error {
	return s.Restaurants.UpsertWindow(ctx, w)
}

// Commit applies c in one transaction.  The first failed guard rolls the
// whole transaction back and is returned as is.
func (s *MySQLStore) Commit(ctx context.Context, c booking.Commit) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	for _, sw := range c.Swaps {
		if err := s.Ledger.SwapTx(ctx, tx, sw); err != nil {
			return err
		}
	}

	rec := c.Record
	switch rec.Op {
	case booking.RecordInsert:
		err = s.Reservations.InsertTx(ctx, tx, rec.Reservation)
	case booking.RecordUpdate:
		err = s.Reservations.UpdateTx(ctx, tx, rec.Reservation, rec.ExpectedRevision)
	case booking.RecordDelete:
		err = s.Reservations.DeleteTx(ctx, tx, rec.Reservation.ID, rec.ExpectedRevision)
	}
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		if isRaceError(err) {
			return booking.ErrRevisionConflict
		}
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
