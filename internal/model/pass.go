package model

import "time"

// Pass status values.  A pass starts as ISSUED and moves to exactly one
// terminal state.  Progress through a multi-entry pass is tracked by
// UseCount, not by a separate status; the pass becomes USED only when the
// last permitted entry has been consumed.  EXPIRED can also be computed
// lazily from the window without a write.
const (
	PassStatusIssued    = "ISSUED"    // valid, at least one entry remaining
	PassStatusUsed      = "USED"      // every permitted entry consumed
	PassStatusExpired   = "EXPIRED"   // admission window has passed
	PassStatusCancelled = "CANCELLED" // revoked by an operator or refund
)

// Pass is a single admission right for one venue within a time window.
// One pass is minted per entitlement unit of a paid order.  Passes are
// never deleted; terminal states are kept for audit.
//
// Fields:
//  ID          – opaque unique identifier of the pass.
//  OrderID     – order that paid for this pass (external collaborator).
//  UserID      – owning user (external identity provider).
//  VenueID     – venue the pass admits to.
//  WindowStart – first instant the pass is usable (inclusive, UTC).
//  WindowEnd   – last instant the pass is usable (inclusive, UTC).
//  MaxUses     – number of admissions this pass permits.
//  UseCount    – admissions consumed so far; never exceeds MaxUses.
//  Status      – lifecycle state, one of the PassStatus constants.
//  IssuedAt    – when the pass was minted.
type Pass struct {
	ID          string    // passes.id
	OrderID     string    // passes.order_id
	UserID      string    // passes.user_id
	VenueID     string    // passes.venue_id
	WindowStart time.Time // passes.window_start
	WindowEnd   time.Time // passes.window_end
	MaxUses     int       // passes.max_uses
	UseCount    int       // passes.use_count
	Status      string    // passes.status
	IssuedAt    time.Time // passes.issued_at
}

// Remaining reports how many admissions are left on the pass.
func (p Pass) Remaining() int {
	if p.UseCount >= p.MaxUses {
		return 0
	}
	return p.MaxUses - p.UseCount
}
