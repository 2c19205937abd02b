package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// OccupancyRepo owns the per-venue-per-day occupancy counters.  It
// implements service.CapacityLedger.  Admission is a compare-and-
// increment in one UPDATE statement: the row-level lock taken by MySQL
// linearizes concurrent admits for the same (venue, date) key while
// admits for different keys never contend.
type OccupancyRepo struct {
	db *sql.DB
}

// NewOccupancyRepo returns an OccupancyRepo bound to the database.
func NewOccupancyRepo(db *sql.DB) *OccupancyRepo { return &OccupancyRepo{db: db} }

// ensureRecord lazily creates the day's occupancy row from the venue's
// configured capacity.  INSERT IGNORE makes concurrent first admits
// converge on one row.  Returns service.ErrVenueNotFound when the
// venue does not exist.
func (r *OccupancyRepo) ensureRecord(ctx context.Context, venueID, date string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO occupancy (venue_id, date, max_capacity, current_occupancy)
		 SELECT id, ?, daily_capacity, 0 FROM venues WHERE id = ?`,
		date, venueID)
	if err != nil {
		return err
	}
	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM occupancy WHERE venue_id = ? AND date = ?)`,
		venueID, date,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return service.ErrVenueNotFound
	}
	return nil
}

// TryAdmit claims one slot if the day is not yet at capacity.  The
// check and the increment are one statement; RowsAffected tells apart
// an admission from a full house.
func (r *OccupancyRepo) TryAdmit(ctx context.Context, venueID, date string) (bool, error) {
	if err := r.ensureRecord(ctx, venueID, date); err != nil {
		return false, err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE occupancy
		 SET current_occupancy = current_occupancy + 1
		 WHERE venue_id = ? AND date = ? AND current_occupancy < max_capacity`,
		venueID, date)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release gives one slot back, floored at zero by the WHERE clause.
func (r *OccupancyRepo) Release(ctx context.Context, venueID, date string) error {
	if err := r.ensureRecord(ctx, venueID, date); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE occupancy
		 SET current_occupancy = current_occupancy - 1
		 WHERE venue_id = ? AND date = ? AND current_occupancy > 0`,
		venueID, date)
	return err
}

// GetOccupancy returns the day's snapshot.  When no admission has been
// attempted yet it synthesizes a zero record from the venue capacity
// rather than materializing a row.
func (r *OccupancyRepo) GetOccupancy(ctx context.Context, venueID, date string) (model.OccupancyRecord, error) {
	var rec model.OccupancyRecord
	err := r.db.QueryRowContext(ctx,
		`SELECT venue_id, date, max_capacity, current_occupancy
		 FROM occupancy WHERE venue_id = ? AND date = ?`,
		venueID, date,
	).Scan(&rec.VenueID, &rec.Date, &rec.MaxCapacity, &rec.CurrentOccupancy)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.OccupancyRecord{}, err
	}
	var capacity int
	err = r.db.QueryRowContext(ctx,
		`SELECT daily_capacity FROM venues WHERE id = ?`, venueID,
	).Scan(&capacity)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OccupancyRecord{}, service.ErrVenueNotFound
	}
	if err != nil {
		return model.OccupancyRecord{}, err
	}
	return model.OccupancyRecord{
		VenueID:     venueID,
		Date:        date,
		MaxCapacity: capacity,
	}, nil
}
