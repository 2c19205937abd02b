package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/service"
)

func TestMemoryLedger_TryAdmit(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("admits until the ceiling then refuses", func(t *testing.T) {
		l := NewMemoryLedger()
		l.SetCapacity("venue-a", 2)
		for i := 0; i < 2; i++ {
			ok, err := l.TryAdmit(ctx, "venue-a", "2024-01-01")
			if err != nil || !ok {
				t.Fatalf("admit %d: got (%v, %v)", i, ok, err)
			}
		}
		ok, err := l.TryAdmit(ctx, "venue-a", "2024-01-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Fatal("expected refusal once at capacity")
		}
	})

	t.Run("zero-capacity venue never admits", func(t *testing.T) {
		l := NewMemoryLedger()
		l.SetCapacity("venue-a", 0)
		ok, err := l.TryAdmit(ctx, "venue-a", "2024-01-01")
		if err != nil || ok {
			t.Fatalf("got (%v, %v), want (false, nil)", ok, err)
		}
	})

	t.Run("unknown venue is an error", func(t *testing.T) {
		l := NewMemoryLedger()
		if _, err := l.TryAdmit(ctx, "ghost", "2024-01-01"); !errors.Is(err, service.ErrVenueNotFound) {
			t.Fatalf("got %v, want ErrVenueNotFound", err)
		}
	})

	t.Run("different dates do not contend", func(t *testing.T) {
		l := NewMemoryLedger()
		l.SetCapacity("venue-a", 1)
		for _, date := range []string{"2024-01-01", "2024-01-02"} {
			ok, err := l.TryAdmit(ctx, "venue-a", date)
			if err != nil || !ok {
				t.Fatalf("date %s: got (%v, %v)", date, ok, err)
			}
		}
	})
}

// Occupancy never exceeds capacity under concurrent admits: with a
// ceiling of 10 and 100 concurrent attempts, exactly 10 succeed.
func TestMemoryLedger_ConcurrentAdmits(t *testing.T) {
	t.Parallel()

	const (
		capacity = 10
		attempts = 100
	)
	ctx := context.Background()
	l := NewMemoryLedger()
	l.SetCapacity("venue-a", capacity)

	var wg sync.WaitGroup
	results := make(chan bool, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := l.TryAdmit(ctx, "venue-a", "2024-01-01")
			if err != nil {
				t.Errorf("TryAdmit: %v", err)
				return
			}
			results <- ok
		}()
	}
	wg.Wait()
	close(results)

	admitted := 0
	for ok := range results {
		if ok {
			admitted++
		}
	}
	if admitted != capacity {
		t.Fatalf("admitted %d, want exactly %d", admitted, capacity)
	}
	occ, err := l.GetOccupancy(ctx, "venue-a", "2024-01-01")
	if err != nil {
		t.Fatalf("GetOccupancy: %v", err)
	}
	if occ.CurrentOccupancy != capacity {
		t.Fatalf("occupancy %d, want %d", occ.CurrentOccupancy, capacity)
	}
}

func TestMemoryLedger_ReleaseFloorsAtZero(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	l := NewMemoryLedger()
	l.SetCapacity("venue-a", 5)

	if ok, _ := l.TryAdmit(ctx, "venue-a", "2024-01-01"); !ok {
		t.Fatal("expected admit")
	}
	// Release more times than admitted; the counter must never go negative.
	for i := 0; i < 3; i++ {
		if err := l.Release(ctx, "venue-a", "2024-01-01"); err != nil {
			t.Fatalf("Release: %v", err)
		}
	}
	occ, err := l.GetOccupancy(ctx, "venue-a", "2024-01-01")
	if err != nil {
		t.Fatalf("GetOccupancy: %v", err)
	}
	if occ.CurrentOccupancy != 0 {
		t.Fatalf("occupancy %d, want 0", occ.CurrentOccupancy)
	}
}

func TestMemoryPassStore_MarkUsed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	window := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	seed := func(maxUses int) *MemoryPassStore {
		s := NewMemoryPassStore()
		_ = s.CreateBatch(ctx, "order-1", []model.Pass{{
			ID:          "pass-1",
			OrderID:     "order-1",
			UserID:      "user-1",
			VenueID:     "venue-a",
			WindowStart: window,
			WindowEnd:   window.Add(12 * time.Hour),
			MaxUses:     maxUses,
			Status:      model.PassStatusIssued,
		}})
		return s
	}

	t.Run("last use flips status to USED", func(t *testing.T) {
		s := seed(2)
		p, err := s.MarkUsed(ctx, "pass-1")
		if err != nil {
			t.Fatalf("first use: %v", err)
		}
		if p.UseCount != 1 || p.Status != model.PassStatusIssued {
			t.Fatalf("after first use: count=%d status=%s", p.UseCount, p.Status)
		}
		p, err = s.MarkUsed(ctx, "pass-1")
		if err != nil {
			t.Fatalf("second use: %v", err)
		}
		if p.UseCount != 2 || p.Status != model.PassStatusUsed {
			t.Fatalf("after last use: count=%d status=%s", p.UseCount, p.Status)
		}
		if _, err := s.MarkUsed(ctx, "pass-1"); !errors.Is(err, service.ErrUseConflict) {
			t.Fatalf("third use: got %v, want ErrUseConflict", err)
		}
	})

	t.Run("unknown pass", func(t *testing.T) {
		s := seed(1)
		if _, err := s.MarkUsed(ctx, "ghost"); !errors.Is(err, service.ErrPassNotFound) {
			t.Fatalf("got %v, want ErrPassNotFound", err)
		}
	})

	t.Run("use count never exceeds the limit under concurrency", func(t *testing.T) {
		s := seed(1)
		var wg sync.WaitGroup
		wins := make(chan struct{}, 50)
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := s.MarkUsed(ctx, "pass-1"); err == nil {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)
		if got := len(wins); got != 1 {
			t.Fatalf("%d concurrent MarkUsed calls succeeded, want exactly 1", got)
		}
	})
}

func TestMemoryPassStore_CreateBatchIdempotencyGuard(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := NewMemoryPassStore()
	batch := []model.Pass{{ID: "pass-1", OrderID: "order-1", UserID: "user-1", VenueID: "venue-a", MaxUses: 1, Status: model.PassStatusIssued}}
	if err := s.CreateBatch(ctx, "order-1", batch); err != nil {
		t.Fatalf("first create: %v", err)
	}
	dup := []model.Pass{{ID: "pass-2", OrderID: "order-1", UserID: "user-1", VenueID: "venue-a", MaxUses: 1, Status: model.PassStatusIssued}}
	if err := s.CreateBatch(ctx, "order-1", dup); !errors.Is(err, service.ErrAlreadyIssued) {
		t.Fatalf("second create: got %v, want ErrAlreadyIssued", err)
	}
	got, err := s.GetByOrderID(ctx, "order-1")
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if len(got) != 1 || got[0].ID != "pass-1" {
		t.Fatalf("order passes = %+v, want the original single pass", got)
	}
}

func TestMemoryPassStore_ExpireOverdue(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	s := NewMemoryPassStore()
	_ = s.CreateBatch(ctx, "order-1", []model.Pass{
		{ID: "past", OrderID: "order-1", WindowEnd: now.Add(-time.Hour), MaxUses: 1, Status: model.PassStatusIssued},
		{ID: "future", OrderID: "order-1", WindowEnd: now.Add(time.Hour), MaxUses: 1, Status: model.PassStatusIssued},
	})
	n, err := s.ExpireOverdue(ctx, now)
	if err != nil {
		t.Fatalf("ExpireOverdue: %v", err)
	}
	if n != 1 {
		t.Fatalf("expired %d, want 1", n)
	}
	p, _ := s.GetByID(ctx, "past")
	if p.Status != model.PassStatusExpired {
		t.Fatalf("past pass status %s, want EXPIRED", p.Status)
	}
	p, _ = s.GetByID(ctx, "future")
	if p.Status != model.PassStatusIssued {
		t.Fatalf("future pass status %s, want ISSUED", p.Status)
	}
}
