// Package store provides in-memory implementations of the pass store
// and the capacity ledger.  They back the service tests and local
// development without a database, and they honor the same atomicity
// contract as the MySQL repositories: every conditional update runs
// under a single lock, so concurrent callers observe linearizable
// admits and redemptions.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// MemoryPassStore keeps pass records in a map guarded by a mutex.
type MemoryPassStore struct {
	mu     sync.Mutex
	passes map[string]model.Pass
	orders map[string][]string // order ID -> pass IDs in issue order
}

// NewMemoryPassStore returns an empty in-memory pass store.
func NewMemoryPassStore() *MemoryPassStore {
	return &MemoryPassStore{
		passes: make(map[string]model.Pass),
		orders: make(map[string][]string),
	}
}

// CreateBatch implements service.PassStore.
func (s *MemoryPassStore) CreateBatch(ctx context.Context, orderID string, passes []model.Pass) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[orderID]; ok {
		return service.ErrAlreadyIssued
	}
	ids := make([]string, 0, len(passes))
	for _, p := range passes {
		s.passes[p.ID] = p
		ids = append(ids, p.ID)
	}
	s.orders[orderID] = ids
	return nil
}

// GetByID implements service.PassStore.
func (s *MemoryPassStore) GetByID(ctx context.Context, id string) (model.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passes[id]
	if !ok {
		return model.Pass{}, service.ErrPassNotFound
	}
	return p, nil
}

// GetByOrderID implements service.PassStore.
func (s *MemoryPassStore) GetByOrderID(ctx context.Context, orderID string) ([]model.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := s.orders[orderID]
	out := make([]model.Pass, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.passes[id])
	}
	return out, nil
}

// ListByUser implements service.PassStore.
func (s *MemoryPassStore) ListByUser(ctx context.Context, userID string) ([]model.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Pass
	for _, p := range s.passes {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

// MarkUsed implements service.PassStore.  The check and the increment
// happen under one lock, mirroring the single conditional UPDATE the
// SQL repository issues.
func (s *MemoryPassStore) MarkUsed(ctx context.Context, id string) (model.Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passes[id]
	if !ok {
		return model.Pass{}, service.ErrPassNotFound
	}
	if p.Status != model.PassStatusIssued || p.UseCount >= p.MaxUses {
		return model.Pass{}, service.ErrUseConflict
	}
	p.UseCount++
	if p.UseCount >= p.MaxUses {
		p.Status = model.PassStatusUsed
	}
	s.passes[id] = p
	return p, nil
}

// Cancel implements service.PassStore.
func (s *MemoryPassStore) Cancel(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passes[id]
	if !ok {
		return service.ErrPassNotFound
	}
	if p.Status != model.PassStatusIssued {
		return service.ErrNotCancellable
	}
	p.Status = model.PassStatusCancelled
	s.passes[id] = p
	return nil
}

// ExpireOverdue implements service.PassStore.
func (s *MemoryPassStore) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, p := range s.passes {
		if p.Status == model.PassStatusIssued && now.After(p.WindowEnd) {
			p.Status = model.PassStatusExpired
			s.passes[id] = p
			n++
		}
	}
	return n, nil
}

// MemoryLedger keeps per-(venue, date) occupancy counters guarded by a
// mutex.  Capacities are registered up front via SetCapacity; the
// occupancy record itself is created lazily on the first admit attempt,
// like the SQL ledger does with INSERT IGNORE.
type MemoryLedger struct {
	mu         sync.Mutex
	capacities map[string]int
	records    map[string]*model.OccupancyRecord // key: venueID + "|" + date
}

// NewMemoryLedger returns an empty in-memory capacity ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		capacities: make(map[string]int),
		records:    make(map[string]*model.OccupancyRecord),
	}
}

// SetCapacity registers or updates a venue's daily capacity ceiling.
// Existing day records keep the ceiling they were created with.
func (l *MemoryLedger) SetCapacity(venueID string, capacity int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if capacity < 0 {
		capacity = 0
	}
	l.capacities[venueID] = capacity
}

func recordKey(venueID, date string) string { return venueID + "|" + date }

// record returns the day's occupancy record, creating it from the venue
// capacity if needed.  Caller must hold the lock.
func (l *MemoryLedger) record(venueID, date string) (*model.OccupancyRecord, error) {
	key := recordKey(venueID, date)
	if rec, ok := l.records[key]; ok {
		return rec, nil
	}
	capacity, ok := l.capacities[venueID]
	if !ok {
		return nil, service.ErrVenueNotFound
	}
	rec := &model.OccupancyRecord{
		VenueID:     venueID,
		Date:        date,
		MaxCapacity: capacity,
	}
	l.records[key] = rec
	return rec, nil
}

// TryAdmit implements service.CapacityLedger.
func (l *MemoryLedger) TryAdmit(ctx context.Context, venueID, date string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.record(venueID, date)
	if err != nil {
		return false, err
	}
	if rec.CurrentOccupancy >= rec.MaxCapacity {
		return false, nil
	}
	rec.CurrentOccupancy++
	return true, nil
}

// Release implements service.CapacityLedger.  Floored at zero.
func (l *MemoryLedger) Release(ctx context.Context, venueID, date string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.record(venueID, date)
	if err != nil {
		return err
	}
	if rec.CurrentOccupancy > 0 {
		rec.CurrentOccupancy--
	}
	return nil
}

// GetOccupancy implements service.CapacityLedger.
func (l *MemoryLedger) GetOccupancy(ctx context.Context, venueID, date string) (model.OccupancyRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, err := l.record(venueID, date)
	if err != nil {
		return model.OccupancyRecord{}, err
	}
	return *rec, nil
}
