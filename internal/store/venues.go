package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/repository"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

// MemoryVenueStore keeps venue configuration in memory and mirrors
// capacity changes into the attached ledger so the two never disagree
// in dev mode.
type MemoryVenueStore struct {
	mu     sync.Mutex
	venues map[string]model.Venue
	ledger *MemoryLedger
}

// NewMemoryVenueStore returns a venue store wired to the given ledger.
func NewMemoryVenueStore(ledger *MemoryLedger) *MemoryVenueStore {
	return &MemoryVenueStore{
		venues: make(map[string]model.Venue),
		ledger: ledger,
	}
}

// Create registers a venue and its capacity ceiling.
func (s *MemoryVenueStore) Create(ctx context.Context, v model.Venue) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	v.CreatedAt = now
	v.UpdatedAt = now
	s.venues[v.ID] = v
	s.ledger.SetCapacity(v.ID, v.DailyCapacity)
	return nil
}

// GetByID returns a venue or service.ErrVenueNotFound.
func (s *MemoryVenueStore) GetByID(ctx context.Context, id string) (model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return model.Venue{}, service.ErrVenueNotFound
	}
	return v, nil
}

// ListActive returns active venues ordered by name.
func (s *MemoryVenueStore) ListActive(ctx context.Context) ([]model.Venue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Venue, 0, len(s.venues))
	for _, v := range s.venues {
		if v.IsActive {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// UpdateCapacity sets the ceiling for future occupancy records.
func (s *MemoryVenueStore) UpdateCapacity(ctx context.Context, id string, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return service.ErrVenueNotFound
	}
	v.DailyCapacity = capacity
	v.UpdatedAt = time.Now().UTC()
	s.venues[id] = v
	s.ledger.SetCapacity(id, capacity)
	return nil
}

// SetActive flips a venue's availability.
func (s *MemoryVenueStore) SetActive(ctx context.Context, id string, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.venues[id]
	if !ok {
		return service.ErrVenueNotFound
	}
	v.IsActive = active
	v.UpdatedAt = time.Now().UTC()
	s.venues[id] = v
	return nil
}

// MemoryScannerStore keeps gate device registrations in memory.
type MemoryScannerStore struct {
	mu      sync.Mutex
	devices map[string]model.ScannerDevice
}

// NewMemoryScannerStore returns an empty device store.
func NewMemoryScannerStore() *MemoryScannerStore {
	return &MemoryScannerStore{devices: make(map[string]model.ScannerDevice)}
}

// Create registers a device.
func (s *MemoryScannerStore) Create(ctx context.Context, d model.ScannerDevice) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	s.devices[d.ID] = d
	return nil
}

// GetActive returns an active device or repository.ErrScannerNotFound.
func (s *MemoryScannerStore) GetActive(ctx context.Context, id string) (model.ScannerDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok || !d.IsActive {
		return model.ScannerDevice{}, repository.ErrScannerNotFound
	}
	return d, nil
}

// Deactivate revokes a device.
func (s *MemoryScannerStore) Deactivate(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.devices[id]
	if !ok {
		return repository.ErrScannerNotFound
	}
	d.IsActive = false
	s.devices[id] = d
	return nil
}
