// Package repository implements the persistence layer on MySQL.  The
// repositories expose the atomic conditional-update primitives the
// service relies on: redemption and admission are single UPDATE
// statements whose WHERE clause carries the invariant, so the race
// window between check and increment is closed inside the database.
// All timestamps are stored in UTC.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// PassRepo provides CRUD and conditional-update operations for pass
// records.  It implements service.PassStore.
type PassRepo struct {
	db *sql.DB
}

// NewPassRepo returns a PassRepo bound to the given database.
func NewPassRepo(db *sql.DB) *PassRepo { return &PassRepo{db: db} }

// DB exposes the underlying handle for transaction composition.
func (r *PassRepo) DB() *sql.DB { return r.db }

const passColumns = `id, order_id, user_id, venue_id, window_start, window_end, max_uses, use_count, status, issued_at`

// CreateBatch inserts all passes of one order in a single transaction.
// The unique key on (order_id, order_seq) makes the idempotency guard
// hold even when two payment webhooks race: the loser hits a duplicate
// key and receives ErrAlreadyIssued.
func (r *PassRepo) CreateBatch(ctx context.Context, orderID string, passes []model.Pass) error {
	if len(passes) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM passes WHERE order_id = ?)`, orderID,
	).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return service.ErrAlreadyIssued
	}

	query := `INSERT INTO passes (id, order_id, order_seq, user_id, venue_id, window_start, window_end, max_uses, use_count, status, issued_at) VALUES `
	args := make([]interface{}, 0, len(passes)*11)
	for i, p := range passes {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			p.ID, p.OrderID, i, p.UserID, p.VenueID,
			p.WindowStart.UTC(), p.WindowEnd.UTC(),
			p.MaxUses, p.UseCount, p.Status, p.IssuedAt.UTC(),
		)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return service.ErrAlreadyIssued
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetByID returns a single pass or service.ErrPassNotFound.
func (r *PassRepo) GetByID(ctx context.Context, id string) (model.Pass, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE id = ?`, id)
	return scanPass(row)
}

// GetByOrderID returns every pass of an order in issue order.
func (r *PassRepo) GetByOrderID(ctx context.Context, orderID string) ([]model.Pass, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE order_id = ? ORDER BY order_seq`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPasses(rows)
}

// ListByUser returns all passes owned by a user, newest first.
func (r *PassRepo) ListByUser(ctx context.Context, userID string) ([]model.Pass, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE user_id = ? ORDER BY issued_at DESC, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPasses(rows)
}

// MarkUsed consumes one entry with a single conditional UPDATE.  Status
// is assigned before the counter so the IF sees the pre-increment
// value; the WHERE clause guarantees use_count never passes max_uses no
// matter how many scanners race.
func (r *PassRepo) MarkUsed(ctx context.Context, id string) (model.Pass, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE passes
		 SET status = IF(use_count + 1 >= max_uses, 'USED', status),
		     use_count = use_count + 1
		 WHERE id = ? AND status = 'ISSUED' AND use_count < max_uses`, id)
	if err != nil {
		return model.Pass{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Pass{}, err
	}
	if n == 0 {
		// Distinguish a lost race from a missing row.
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return model.Pass{}, getErr
		}
		return model.Pass{}, service.ErrUseConflict
	}
	return r.GetByID(ctx, id)
}

// Cancel moves an ISSUED pass to CANCELLED.
func (r *PassRepo) Cancel(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE passes SET status = 'CANCELLED' WHERE id = ? AND status = 'ISSUED'`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return service.ErrNotCancellable
	}
	return nil
}

// ExpireOverdue flips ISSUED passes past their window to EXPIRED.
func (r *PassRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE passes SET status = 'EXPIRED' WHERE status = 'ISSUED' AND window_end < ?`,
		now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// scanPass reads one pass row, mapping sql.ErrNoRows to the service
// sentinel so handlers never see driver errors.
func scanPass(row *sql.Row) (model.Pass, error) {
	var p model.Pass
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.VenueID,
		&p.WindowStart, &p.WindowEnd, &p.MaxUses, &p.UseCount, &p.Status, &p.IssuedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Pass{}, service.ErrPassNotFound
	}
	if err != nil {
		return model.Pass{}, err
	}
	return p, nil
}

func collectPasses(rows *sql.Rows) ([]model.Pass, error) {
	passes := make([]model.Pass, 0)
	for rows.Next() {
		var p model.Pass
		if err := rows.Scan(&p.ID, &p.OrderID, &p.UserID, &p.VenueID,
			&p.WindowStart, &p.WindowEnd, &p.MaxUses, &p.UseCount, &p.Status, &p.IssuedAt); err != nil {
			return nil, err
		}
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}

// isDuplicateKey reports MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
