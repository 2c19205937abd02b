package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// VenueRepo provides CRUD operations for venues.  Venue configuration
// is the external input feeding the occupancy ledger's capacity
// ceilings; the core never mutates occupancy through this repo.
type VenueRepo struct {
	db *sql.DB
}

// NewVenueRepo returns a VenueRepo bound to the given database.
func NewVenueRepo(db *sql.DB) *VenueRepo { return &VenueRepo{db: db} }

const venueColumns = `id, name, address, latitude, longitude, daily_capacity, is_active, created_at, updated_at`

// Create inserts a new venue.
func (r *VenueRepo) Create(ctx context.Context, v model.Venue) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO venues (id, name, address, latitude, longitude, daily_capacity, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Name, v.Address, v.Latitude, v.Longitude, v.DailyCapacity, v.IsActive)
	return err
}

// GetByID returns a venue or service.ErrVenueNotFound.
func (r *VenueRepo) GetByID(ctx context.Context, id string) (model.Venue, error) {
	var v model.Venue
	err := r.db.QueryRowContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE id = ?`, id,
	).Scan(&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
		&v.DailyCapacity, &v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Venue{}, service.ErrVenueNotFound
	}
	if err != nil {
		return model.Venue{}, err
	}
	return v, nil
}

// ListActive returns every venue that currently accepts check-ins.
func (r *VenueRepo) ListActive(ctx context.Context) ([]model.Venue, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE is_active = 1 ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	venues := make([]model.Venue, 0)
	for rows.Next() {
		var v model.Venue
		if err := rows.Scan(&v.ID, &v.Name, &v.Address, &v.Latitude, &v.Longitude,
			&v.DailyCapacity, &v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return venues, nil
}

// UpdateCapacity sets a venue's daily ceiling.  Occupancy rows already
// created for today keep their original ceiling; the new value applies
// from the next lazily created record onward.
func (r *VenueRepo) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET daily_capacity = ? WHERE id = ?`, capacity, id)
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
	}
	return nil
}

// SetActive flips a venue's availability for check-ins.
func (r *VenueRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE venues SET is_active = ? WHERE id = ?`, active, id)
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
	}
	return nil
}
