// Package policy decides whether a pass is usable at a given instant.
// The decision is a pure function of the pass and the explicit now
// parameter; there is no hidden clock access, so window boundaries can
// be tested deterministically.
package policy

import (
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
)

// Reason explains why a pass was rejected.  Reasons are distinct,
// user-displayable outcomes: a front desk operator must be able to tell
// an expired pass from an exhausted one from a full venue.
type Reason string

const (
	ReasonOK          Reason = ""             // pass is usable
	ReasonNotYetValid Reason = "NOT_YET_VALID" // now precedes the window
	ReasonExpired     Reason = "EXPIRED"       // now is past the window
	ReasonExhausted   Reason = "EXHAUSTED"     // all permitted entries consumed
	ReasonAlreadyUsed Reason = "ALREADY_USED"  // single-entry pass already redeemed
	ReasonCancelled   Reason = "CANCELLED"     // pass was revoked
)

// IsUsable reports whether the pass can be redeemed at the given
// instant.  Both window boundaries are inclusive: a pass is usable at
// exactly WindowStart and at exactly WindowEnd, and unusable strictly
// outside.  Expiry is computed live from the window, so a stale ISSUED
// status on a past-window pass never admits anyone.
func IsUsable(p model.Pass, now time.Time) (bool, Reason) {
	switch p.Status {
	case model.PassStatusCancelled:
		return false, ReasonCancelled
	case model.PassStatusUsed:
		if p.MaxUses == 1 {
			return false, ReasonAlreadyUsed
		}
		return false, ReasonExhausted
	case model.PassStatusExpired:
		return false, ReasonExpired
	}
	if p.UseCount >= p.MaxUses {
		if p.MaxUses == 1 {
			return false, ReasonAlreadyUsed
		}
		return false, ReasonExhausted
	}
	if now.Before(p.WindowStart) {
		return false, ReasonNotYetValid
	}
	if now.After(p.WindowEnd) {
		return false, ReasonExpired
	}
	return true, ReasonOK
}

// EffectiveStatus returns the status a pass should display at the given
// instant, folding in lazily computed expiry.  It never writes; the
// background sweep persists the same transition for reporting only.
func EffectiveStatus(p model.Pass, now time.Time) string {
	if p.Status == model.PassStatusIssued && now.After(p.WindowEnd) {
		return model.PassStatusExpired
	}
	return p.Status
}
