package policy

import (
	"testing"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

func basePass() model.Pass {
	return model.Pass{
		ID:          "pass-1",
		VenueID:     "venue-a",
		WindowStart: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		WindowEnd:   time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC),
		MaxUses:     1,
		UseCount:    0,
		Status:      model.PassStatusIssued,
	}
}

func TestIsUsable(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 1, 21, 0, 0, 0, time.UTC)

	t.Run("inside window", func(t *testing.T) {
		ok, reason := IsUsable(basePass(), start.Add(time.Hour))
		if !ok || reason != ReasonOK {
			t.Fatalf("got (%v, %q), want usable", ok, reason)
		}
	})

	t.Run("boundary instants are usable", func(t *testing.T) {
		for _, now := range []time.Time{start, end} {
			if ok, reason := IsUsable(basePass(), now); !ok {
				t.Fatalf("at %v: got reason %q, want usable", now, reason)
			}
		}
	})

	t.Run("one second past the end is expired", func(t *testing.T) {
		ok, reason := IsUsable(basePass(), end.Add(time.Second))
		if ok || reason != ReasonExpired {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonExpired)
		}
	})

	t.Run("one second before the start is not yet valid", func(t *testing.T) {
		ok, reason := IsUsable(basePass(), start.Add(-time.Second))
		if ok || reason != ReasonNotYetValid {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonNotYetValid)
		}
	})

	t.Run("single-entry pass at its limit reads as already used", func(t *testing.T) {
		p := basePass()
		p.UseCount = 1
		ok, reason := IsUsable(p, start.Add(time.Hour))
		if ok || reason != ReasonAlreadyUsed {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonAlreadyUsed)
		}
	})

	t.Run("multi-entry pass at its limit is exhausted", func(t *testing.T) {
		p := basePass()
		p.MaxUses = 5
		p.UseCount = 5
		ok, reason := IsUsable(p, start.Add(time.Hour))
		if ok || reason != ReasonExhausted {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonExhausted)
		}
	})

	t.Run("multi-entry pass below its limit is usable", func(t *testing.T) {
		p := basePass()
		p.MaxUses = 5
		p.UseCount = 4
		if ok, _ := IsUsable(p, start.Add(time.Hour)); !ok {
			t.Fatal("expected usable")
		}
	})

	t.Run("cancelled forbids use even inside the window", func(t *testing.T) {
		p := basePass()
		p.Status = model.PassStatusCancelled
		ok, reason := IsUsable(p, start.Add(time.Hour))
		if ok || reason != ReasonCancelled {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonCancelled)
		}
	})

	t.Run("stored USED status reads as already used", func(t *testing.T) {
		p := basePass()
		p.Status = model.PassStatusUsed
		p.UseCount = 1
		ok, reason := IsUsable(p, start.Add(time.Hour))
		if ok || reason != ReasonAlreadyUsed {
			t.Fatalf("got (%v, %q), want (false, %q)", ok, reason, ReasonAlreadyUsed)
		}
	})
}

func TestEffectiveStatus(t *testing.T) {
	t.Parallel()

	p := basePass()
	if got := EffectiveStatus(p, p.WindowEnd.Add(time.Minute)); got != model.PassStatusExpired {
		t.Fatalf("past window: got %q, want EXPIRED", got)
	}
	if got := EffectiveStatus(p, p.WindowEnd); got != model.PassStatusIssued {
		t.Fatalf("at window end: got %q, want ISSUED", got)
	}
	p.Status = model.PassStatusCancelled
	if got := EffectiveStatus(p, p.WindowEnd.Add(time.Minute)); got != model.PassStatusCancelled {
		t.Fatalf("terminal status must not be overridden, got %q", got)
	}
}
