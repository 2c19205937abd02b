package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

// ErrScannerNotFound is returned when a scan request presents a device
// ID that is unknown or deactivated.
var ErrScannerNotFound = errors.New("scanner device not found")

// ScannerRepo stores gate terminal registrations.  Only the bcrypt
// hash of a device key is persisted; verification happens in the gate
// middleware.
type ScannerRepo struct {
	db *sql.DB
}

// NewScannerRepo returns a ScannerRepo bound to the given database.
func NewScannerRepo(db *sql.DB) *ScannerRepo { return &ScannerRepo{db: db} }

// Create registers a device.
func (r *ScannerRepo) Create(ctx context.Context, d model.ScannerDevice) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO scanner_devices (id, venue_id, label, key_hash, is_active)
		 VALUES (?, ?, ?, ?, ?)`,
		d.ID, d.VenueID, d.Label, d.KeyHash, d.IsActive)
	return err
}

// GetActive returns an active device by ID, or ErrScannerNotFound.
func (r *ScannerRepo) GetActive(ctx context.Context, id string) (model.ScannerDevice, error) {
	var d model.ScannerDevice
	err := r.db.QueryRowContext(ctx,
		`SELECT id, venue_id, label, key_hash, is_active, created_at
		 FROM scanner_devices WHERE id = ? AND is_active = 1`, id,
	).Scan(&d.ID, &d.VenueID, &d.Label, &d.KeyHash, &d.IsActive, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ScannerDevice{}, ErrScannerNotFound
	}
	if err != nil {
		return model.ScannerDevice{}, err
	}
	return d, nil
}

// Deactivate revokes a device so it can no longer authenticate scans.
func (r *ScannerRepo) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE scanner_devices SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScannerNotFound
	}
	return nil
}
