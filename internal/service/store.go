package service

import (
	"context"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

// PassStore is the persistence abstraction for pass records.  Both the
// MySQL repository and the in-memory store implement it.  The store is
// the only place pass status and use counters are mutated, and it must
// do so through atomic conditional updates keyed by pass ID so that two
// simultaneous scans of the same token cannot both succeed.
type PassStore interface {
	// CreateBatch inserts all passes of one order atomically.  It fails
	// with ErrAlreadyIssued when any pass already exists for the order.
	CreateBatch(ctx context.Context, orderID string, passes []model.Pass) error

	// GetByID returns the pass or ErrPassNotFound.
	GetByID(ctx context.Context, id string) (model.Pass, error)

	// GetByOrderID returns every pass minted for the order, in issue
	// order.  An unknown order yields an empty slice, not an error.
	GetByOrderID(ctx context.Context, orderID string) ([]model.Pass, error)

	// ListByUser returns all passes owned by the user, newest first.
	ListByUser(ctx context.Context, userID string) ([]model.Pass, error)

	// MarkUsed atomically increments the use counter of an ISSUED pass
	// that still has entries left, flipping status to USED when the
	// counter reaches its limit.  It returns the updated pass, or
	// ErrUseConflict when the conditional update matched nothing, or
	// ErrPassNotFound when the pass does not exist.
	MarkUsed(ctx context.Context, id string) (model.Pass, error)

	// Cancel moves an ISSUED pass to CANCELLED.  Terminal passes yield
	// ErrNotCancellable; unknown IDs yield ErrPassNotFound.
	Cancel(ctx context.Context, id string) error

	// ExpireOverdue flips ISSUED passes whose window ended before now to
	// EXPIRED and reports how many rows changed.  Housekeeping only:
	// live checks compute expiry from the window regardless.
	ExpireOverdue(ctx context.Context, now time.Time) (int64, error)
}

// CapacityLedger owns per-venue-per-day occupancy.  Admission is a
// single compare-and-increment against the backing store, never a
// read-then-write in application code; concurrent admits for the same
// (venue, date) are linearized by the store, and admits for different
// keys never contend.
type CapacityLedger interface {
	// TryAdmit claims one slot for the venue on the given UTC calendar
	// date (YYYY-MM-DD).  ok=false means the venue is at capacity, an
	// expected outcome rather than an error.  The occupancy record is created
	// lazily from the venue's configured capacity on first attempt.
	TryAdmit(ctx context.Context, venueID, date string) (bool, error)

	// Release returns one slot, floored at zero.  Callers only release
	// to compensate an admit whose follow-up write failed.
	Release(ctx context.Context, venueID, date string) error

	// GetOccupancy returns a read-only snapshot for display.
	GetOccupancy(ctx context.Context, venueID, date string) (model.OccupancyRecord, error)
}

// AdmissionNotifier receives successful admissions for fan-out to
// external dashboards.  Delivery is best effort and must never block
// or fail a redemption.
type AdmissionNotifier interface {
	AdmissionGranted(ctx context.Context, p model.Pass, occ model.OccupancyRecord)
}
