package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// RestaurantRepo reads and writes restaurants and their weekly operating
// windows.  Windows are stored as minutes since midnight; a NULL open or
// close minute means the value was never configured.
type RestaurantRepo struct {
	db *sql.DB
}

func NewRestaurantRepo(db *sql.DB) *RestaurantRepo { return &RestaurantRepo{db: db} }

// Upsert inserts the restaurant or renames an existing one.
func (r *RestaurantRepo) Upsert(ctx context.Context, rest *model.Restaurant) error {
	const q = `INSERT INTO restaurants (id, name) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE name = VALUES(name)`
	_, err := r.db.ExecContext(ctx, q, rest.ID, rest.Name)
	return err
}

// UpsertWindow inserts or replaces the window of one weekday.
func (r *RestaurantRepo) UpsertWindow(ctx context.Context, w *model.OperatingWindow) error {
	const q = `INSERT INTO operating_windows (restaurant_id, weekday, open_minute, close_minute, closed)
               VALUES (?, ?, ?, ?, ?)
               ON DUPLICATE KEY UPDATE open_minute = VALUES(open_minute),
                                       close_minute = VALUES(close_minute),
                                       closed = VALUES(closed)`
	_, err := r.db.ExecContext(ctx, q, w.RestaurantID, int(w.Weekday),
		nullMinute(w.OpenTime), nullMinute(w.CloseTime), w.Closed)
	return err
}

// Window returns the window for a weekday, or nil when none is stored.
func (r *RestaurantRepo) Window(ctx context.Context, restaurantID uint64, weekday time.Weekday) (*model.OperatingWindow, error) {
	const q = `SELECT restaurant_id, weekday, open_minute, close_minute, closed
               FROM operating_windows WHERE restaurant_id = ? AND weekday = ?`
	w, err := scanWindow(r.db.QueryRowContext(ctx, q, restaurantID, int(weekday)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// Windows returns every configured window of a restaurant by weekday.
func (r *RestaurantRepo) Windows(ctx context.Context, restaurantID uint64) ([]model.OperatingWindow, error) {
	const q = `SELECT restaurant_id, weekday, open_minute, close_minute, closed
               FROM operating_windows WHERE restaurant_id = ? ORDER BY weekday`
	rows, err := r.db.QueryContext(ctx, q, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.OperatingWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWindow(row rowScanner) (*model.OperatingWindow, error) {
	var (
		w                 model.OperatingWindow
		weekday           int
		openMin, closeMin sql.NullInt16
	)
	if err := row.Scan(&w.RestaurantID, &weekday, &openMin, &closeMin, &w.Closed); err != nil {
		return nil, err
	}
	w.Weekday = time.Weekday(weekday)
	w.OpenTime = minuteOrNil(openMin)
	w.CloseTime = minuteOrNil(closeMin)
	return &w, nil
}

func nullMinute(t *model.TimeOfDay) sql.NullInt16 {
	if t == nil {
		return sql.NullInt16{}
	}
	return sql.NullInt16{Int16: int16(t.Minutes()), Valid: true}
}

func minuteOrNil(n sql.NullInt16) *model.TimeOfDay {
	if !n.Valid {
		return nil
	}
	t := model.TimeOfDay(n.Int16)
	return &t
}
