package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// SpaceRepo provides access to the spaces table.
type SpaceRepo struct {
	db *sql.DB
}

func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{db: db} }

// Get returns a space by id or booking.ErrSpaceNotFound.
func (r *SpaceRepo) Get(ctx context.Context, id uint64) (*model.Space, error) {
	const q = `SELECT id, restaurant_id, name, slot_duration_minutes, buffer_minutes,
                      max_capacity, min_capacity, created_at, updated_at
               FROM spaces WHERE id = ?`
	var s model.Space
	err := r.db.QueryRowContext(ctx, q, id).Scan(&s.ID, &s.RestaurantID, &s.Name,
		&s.SlotDurationMinutes, &s.BufferMinutes, &s.MaxCapacity, &s.MinCapacity,
		&s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrSpaceNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Upsert inserts a space or replaces its configuration.
func (r *SpaceRepo) Upsert(ctx context.Context, s *model.Space) error {
	const q = `INSERT INTO spaces (id, restaurant_id, name, slot_duration_minutes, buffer_minutes, max_capacity, min_capacity)
               VALUES (?, ?, ?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE restaurant_id = VALUES(restaurant_id),
                                       name = VALUES(name),
                                       slot_duration_minutes = VALUES(slot_duration_minutes),
                                       buffer_minutes = VALUES(buffer_minutes),
                                       max_capacity = VALUES(max_capacity),
                                       min_capacity = VALUES(min_capacity)`
	_, err := r.db.ExecContext(ctx, q, s.ID, s.RestaurantID, s.Name, s.SlotDurationMinutes,
		s.BufferMinutes, s.MaxCapacity, s.MinCapacity)
	return err
}
