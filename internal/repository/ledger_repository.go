package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/private-dining-reservation/internal/booking"
	"github.com/iliyamo/private-dining-reservation/internal/model"
)

// LedgerRepo provides access to slot_capacity_ledger.  Rows are created
// lazily by the first allocation against a key and updated only through
// revision-guarded swaps, never with SELECT ... FOR UPDATE.
type LedgerRepo struct {
	db *sql.DB
}

func NewLedgerRepo(db *sql.DB) *LedgerRepo { return &LedgerRepo{db: db} }

// Entry returns the entry for key, or a zero entry with Revision 0 when
// the key was never written.
func (r *LedgerRepo) Entry(ctx context.Context, key model.SlotKey) (model.LedgerEntry, error) {
	const q = `SELECT booked_capacity, max_capacity, revision FROM slot_capacity_ledger
               WHERE space_id = ? AND slot_date = ? AND start_minute = ? AND end_minute = ?`
	e := model.LedgerEntry{Key: key}
	err := r.db.QueryRowContext(ctx, q, key.SpaceID, key.Date, key.Start.Minutes(), key.End.Minutes()).
		Scan(&e.Booked, &e.MaxCapacity, &e.Revision)
	if errors.Is(err, sql.ErrNoRows) {
		return model.LedgerEntry{Key: key}, nil
	}
	if err != nil {
		return model.LedgerEntry{}, err
	}
	return e, nil
}

// Entries lists the entries of a space on a date ordered by window.
func (r *LedgerRepo) Entries(ctx context.Context, spaceID uint64, date model.Date) ([]model.LedgerEntry, error) {
	const q = `SELECT start_minute, end_minute, booked_capacity, max_capacity, revision
               FROM slot_capacity_ledger WHERE space_id = ? AND slot_date = ?
               ORDER BY start_minute, end_minute`
	rows, err := r.db.QueryContext(ctx, q, spaceID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.LedgerEntry
	for rows.Next() {
		var start, end int
		e := model.LedgerEntry{Key: model.SlotKey{SpaceID: spaceID, Date: date}}
		if err := rows.Scan(&start, &end, &e.Booked, &e.MaxCapacity, &e.Revision); err != nil {
			return nil, err
		}
		e.Key.Start = model.TimeOfDay(start)
		e.Key.End = model.TimeOfDay(end)
		out = append(out, e)
	}
	return out, rows.Err()
}

// SwapTx replaces an entry inside the caller's transaction.  A swap from
// revision 0 inserts the row and loses to any concurrent insert of the same
// key through the primary key; any other swap updates only if the stored
// revision still equals sw.Prev.Revision.
func (r *LedgerRepo) SwapTx(ctx context.Context, tx *sql.Tx, sw booking.EntrySwap) error {
	k, n := sw.Next.Key, sw.Next
	if sw.Prev.Revision == 0 {
		const ins = `INSERT INTO slot_capacity_ledger
                     (space_id, slot_date, start_minute, end_minute, booked_capacity, max_capacity, revision)
                     VALUES (?, ?, ?, ?, ?, ?, ?)`
		_, err := tx.ExecContext(ctx, ins, k.SpaceID, k.Date, k.Start.Minutes(), k.End.Minutes(),
			n.Booked, n.MaxCapacity, n.Revision)
		if isRaceError(err) {
			return booking.ErrRevisionConflict
		}
		return err
	}

	const upd = `UPDATE slot_capacity_ledger
                 SET booked_capacity = ?, max_capacity = ?, revision = ?
                 WHERE space_id = ? AND slot_date = ? AND start_minute = ? AND end_minute = ? AND revision = ?`
	result, err := tx.ExecContext(ctx, upd, n.Booked, n.MaxCapacity, n.Revision,
		k.SpaceID, k.Date, k.Start.Minutes(), k.End.Minutes(), sw.Prev.Revision)
	if err != nil {
		if isRaceError(err) {
			return booking.ErrRevisionConflict
		}
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected != 1 {
		return booking.ErrRevisionConflict
	}
	return nil
}
