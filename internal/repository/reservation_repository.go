package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// ReservationRepo provides access to the reservations table.  Writes that
// change an existing row are guarded by the revision the caller last
// observed; a guard miss is reported as booking.ErrRevisionConflict and
// the row is left untouched.  All timestamps are stored in UTC.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, space_id, restaurant_id, reservation_date, start_minute, end_minute,
    party_size, status, customer_name, customer_email, customer_phone, special_requests,
    cancellation_reason, cancelled_at, revision, created_at, updated_at`

// Get returns a reservation or booking.ErrNotFound.
func (r *ReservationRepo) Get(ctx context.Context, id string) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// ListForDay returns every reservation of a space on a date, in any status,
// ordered by start time.
func (r *ReservationRepo) ListForDay(ctx context.Context, spaceID uint64, date model.Date) ([]model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations
          WHERE space_id = ? AND reservation_date = ?
          ORDER BY start_minute, created_at`
	rows, err := r.db.QueryContext(ctx, q, spaceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

// InsertTx inserts a new reservation inside the caller's transaction.  A
// duplicate id surfaces as a revision conflict.
func (r *ReservationRepo) InsertTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	q := `INSERT INTO reservations (` + reservationColumns + `)
          VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q, res.ID, res.SpaceID, res.RestaurantID, res.Date,
		res.StartTime.Minutes(), res.EndTime.Minutes(), res.PartySize, string(res.Status),
		res.CustomerName, res.CustomerEmail, res.CustomerPhone, res.SpecialRequests,
		res.CancellationReason, res.CancelledAt, res.Revision, res.CreatedAt.UTC(), res.UpdatedAt.UTC())
	if isRaceError(err) {
		return booking.ErrRevisionConflict
	}
	return err
}

// UpdateTx writes the mutable columns of res if the stored revision still
// equals expected.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation, expected int64) error {
	const q = `UPDATE reservations
               SET status = ?, cancellation_reason = ?, cancelled_at = ?, revision = ?, updated_at = ?
               WHERE id = ? AND revision = ?`
	result, err := tx.ExecContext(ctx, q, string(res.Status), res.CancellationReason, res.CancelledAt,
		res.Revision, res.UpdatedAt.UTC(), res.ID, expected)
	return r.guarded(ctx, tx, result, err, res.ID)
}

// DeleteTx removes the row if the stored revision still equals expected.
func (r *ReservationRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string, expected int64) error {
	const q = `DELETE FROM reservations WHERE id = ? AND revision = ?`
	result, err := tx.ExecContext(ctx, q, id, expected)
	return r.guarded(ctx, tx, result, err, id)
}

// guarded turns "no row matched" into either ErrNotFound or a revision
// conflict depending on whether the row still exists.
func (r *ReservationRepo) guarded(ctx context.Context, tx *sql.Tx, result sql.Result, err error, id string) error {
	if err != nil {
		if isRaceError(err) {
			return booking.ErrRevisionConflict
		}
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 1 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM reservations WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	if err != nil {
		return err
	}
	return booking.ErrRevisionConflict
}

func scanReservation(row rowScanner) (*model.Reservation, error) {
	var (
		res        model.Reservation
		start, end int
		status     string
		reason     sql.NullString
		cancelled  sql.NullTime
	)
	err := row.Scan(&res.ID, &res.SpaceID, &res.RestaurantID, &res.Date, &start, &end,
		&res.PartySize, &status, &res.CustomerName, &res.CustomerEmail, &res.CustomerPhone,
		&res.SpecialRequests, &reason, &cancelled, &res.Revision, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		return nil, err
	}
	res.StartTime = model.TimeOfDay(start)
	res.EndTime = model.TimeOfDay(end)
	res.Status = model.Status(status)
	if reason.Valid {
		res.CancellationReason = &reason.String
	}
	if cancelled.Valid {
		t := cancelled.Time.UTC()
		res.CancelledAt = &t
	}
	return &res, nil
}
