package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jarodmb14/dropin-morocco-sub003/internal/clock"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/model"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/policy"
	"github.com/Jarodmb14/dropin-morocco-sub003/internal/token"
)

// Rejection reasons produced by the service itself, on top of the
// policy reasons.  They share the policy.Reason type so a redemption
// result always carries exactly one displayable outcome.
const (
	ReasonMalformedToken  = policy.Reason("MALFORMED_TOKEN")
	ReasonNotFound        = policy.Reason("NOT_FOUND")
	ReasonVenueAtCapacity = policy.Reason("VENUE_AT_CAPACITY")
	ReasonWrongVenue      = policy.Reason("WRONG_VENUE")
)

// RedemptionResult is the structured outcome of a check-in scan.
// Admitted=false with a reason is an expected business outcome, not a
// system failure; the gate UI displays the reason directly.
type RedemptionResult struct {
	Admitted  bool                   `json:"admitted"`
	Reason    policy.Reason          `json:"reason,omitempty"`
	PassID    string                 `json:"credential_id,omitempty"`
	Remaining int                    `json:"remaining_uses"`
	Occupancy *model.OccupancyRecord `json:"occupancy,omitempty"`
}

// IssueInput mirrors the OrderPaid event from the payment collaborator.
type IssueInput struct {
	OrderID     string
	UserID      string
	VenueID     string
	WindowStart time.Time
	WindowEnd   time.Time
	MaxUses     int
	Count       int
}

// AccessService orchestrates issuance, redemption and cancellation over
// the pass store and the capacity ledger.  It is the only component
// with business-rule branching; the stores expose atomic primitives and
// the policy/codec packages stay pure.
type AccessService struct {
	passes   PassStore
	ledger   CapacityLedger
	clk      clock.Clock
	notifier AdmissionNotifier
	logger   *slog.Logger

	retries    int           // attempts per transient store failure
	retryDelay time.Duration // pause between attempts
}

// Option customizes an AccessService.
type Option func(*AccessService)

// WithNotifier attaches a best-effort admission fan-out.
func WithNotifier(n AdmissionNotifier) Option {
	return func(s *AccessService) { s.notifier = n }
}

// WithRetry overrides the transient-failure retry budget.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(s *AccessService) {
		if attempts > 0 {
			s.retries = attempts
		}
		if delay >= 0 {
			s.retryDelay = delay
		}
	}
}

// WithLogger overrides the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *AccessService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewAccessService wires an AccessService.  passes, ledger and clk must
// be non-nil.
func NewAccessService(passes PassStore, ledger CapacityLedger, clk clock.Clock, opts ...Option) *AccessService {
	if passes == nil || ledger == nil || clk == nil {
		panic("nil dependency passed to NewAccessService")
	}
	s := &AccessService{
		passes:     passes,
		ledger:     ledger,
		clk:        clk,
		logger:     slog.Default(),
		retries:    3,
		retryDelay: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue mints Count passes for a paid order as one atomic batch.  It is
// idempotent per order: a retried payment webhook receives the original
// passes together with ErrAlreadyIssued, never a duplicate set.
func (s *AccessService) Issue(ctx context.Context, in IssueInput) ([]model.Pass, error) {
	if in.OrderID == "" || in.UserID == "" || in.VenueID == "" {
		return nil, fmt.Errorf("%w: order, user and venue are required", ErrInvalidIssue)
	}
	if in.Count < 1 {
		return nil, fmt.Errorf("%w: count must be at least 1", ErrInvalidIssue)
	}
	if in.MaxUses < 1 {
		return nil, fmt.Errorf("%w: max uses must be at least 1", ErrInvalidIssue)
	}
	if in.WindowEnd.Before(in.WindowStart) {
		return nil, fmt.Errorf("%w: window ends before it starts", ErrInvalidIssue)
	}

	now := s.clk.Now()
	passes := make([]model.Pass, 0, in.Count)
	for i := 0; i < in.Count; i++ {
		id, err := newPassID()
		if err != nil {
			return nil, err
		}
		passes = append(passes, model.Pass{
			ID:          id,
			OrderID:     in.OrderID,
			UserID:      in.UserID,
			VenueID:     in.VenueID,
			WindowStart: in.WindowStart.UTC(),
			WindowEnd:   in.WindowEnd.UTC(),
			MaxUses:     in.MaxUses,
			Status:      model.PassStatusIssued,
			IssuedAt:    now,
		})
	}

	err := s.withRetry(ctx, func() error {
		e := s.passes.CreateBatch(ctx, in.OrderID, passes)
		if errors.Is(e, ErrAlreadyIssued) {
			// Permanent outcome, retrying cannot change it.
			return retryAbort{e}
		}
		return e
	})
	if errors.Is(err, ErrAlreadyIssued) {
		existing, getErr := s.passes.GetByOrderID(ctx, in.OrderID)
		if getErr != nil {
			return nil, getErr
		}
		return existing, ErrAlreadyIssued
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("passes issued",
		slog.String("order_id", in.OrderID),
		slog.String("venue_id", in.VenueID),
		slog.Int("count", in.Count))
	return passes, nil
}

// Redeem handles a check-in scan: decode, look up, policy check, claim
// a capacity slot, then consume one use.  If consuming the use fails
// after the slot was claimed, the slot is released again.  The
// compensation is retried until it lands, because a leaked slot
// degrades the venue's admissions for the rest of the day.
//
// venueID is the venue of the scanning gate.  The binding is enforced
// against the stored pass, never against the token's own claim: the
// token is unsigned, so its venue field is untrusted input.
func (s *AccessService) Redeem(ctx context.Context, tokenString, venueID string, now time.Time) (RedemptionResult, error) {
	fields, err := token.Decode(tokenString)
	if err != nil {
		return RedemptionResult{Admitted: false, Reason: ReasonMalformedToken}, nil
	}

	var pass model.Pass
	err = s.withRetry(ctx, func() error {
		var e error
		pass, e = s.passes.GetByID(ctx, fields.PassID)
		if errors.Is(e, ErrPassNotFound) {
			return retryAbort{e}
		}
		return e
	})
	if errors.Is(err, ErrPassNotFound) {
		return RedemptionResult{Admitted: false, Reason: ReasonNotFound}, nil
	}
	if err != nil {
		return RedemptionResult{}, err
	}

	if pass.VenueID != venueID {
		return RedemptionResult{Admitted: false, Reason: ReasonWrongVenue, PassID: pass.ID}, nil
	}

	if ok, reason := policy.IsUsable(pass, now); !ok {
		return RedemptionResult{Admitted: false, Reason: reason, PassID: pass.ID}, nil
	}

	date := dateKey(now)
	var admitted bool
	err = s.withRetry(ctx, func() error {
		var e error
		admitted, e = s.ledger.TryAdmit(ctx, pass.VenueID, date)
		if errors.Is(e, ErrVenueNotFound) {
			return retryAbort{e}
		}
		return e
	})
	if err != nil {
		return RedemptionResult{}, err
	}
	if !admitted {
		return RedemptionResult{Admitted: false, Reason: ReasonVenueAtCapacity, PassID: pass.ID}, nil
	}

	// The slot is claimed; from here on every failure path must give it
	// back before returning.
	var updated model.Pass
	err = s.withRetry(ctx, func() error {
		var e error
		updated, e = s.passes.MarkUsed(ctx, pass.ID)
		if errors.Is(e, ErrUseConflict) || errors.Is(e, ErrPassNotFound) {
			// Permanent outcome, retrying cannot change it.
			return retryAbort{e}
		}
		return e
	})
	if err != nil {
		s.releaseSlot(pass.VenueID, date, pass.ID)
		if errors.Is(err, ErrUseConflict) {
			// Lost the race against a simultaneous scan.  Re-read to
			// report the precise state the winner left behind.
			reason := ReasonAlreadyUsed(pass)
			if fresh, readErr := s.passes.GetByID(ctx, pass.ID); readErr == nil {
				if _, r := policy.IsUsable(fresh, now); r != policy.ReasonOK {
					reason = r
				}
			}
			return RedemptionResult{Admitted: false, Reason: reason, PassID: pass.ID}, nil
		}
		if errors.Is(err, ErrPassNotFound) {
			return RedemptionResult{Admitted: false, Reason: ReasonNotFound}, nil
		}
		return RedemptionResult{}, err
	}

	occ, occErr := s.ledger.GetOccupancy(ctx, pass.VenueID, date)
	result := RedemptionResult{
		Admitted:  true,
		PassID:    updated.ID,
		Remaining: updated.Remaining(),
	}
	if occErr == nil {
		result.Occupancy = &occ
	}
	if s.notifier != nil {
		s.notifier.AdmissionGranted(ctx, updated, occ)
	}
	s.logger.Info("pass redeemed",
		slog.String("pass_id", updated.ID),
		slog.String("venue_id", updated.VenueID),
		slog.Int("use_count", updated.UseCount),
		slog.Int("max_uses", updated.MaxUses))
	return result, nil
}

// Cancel revokes a pass.  Occupancy already consumed by the pass is not
// released: same-day re-entry capacity is a venue-operational concern
// handled at check-out, which this service does not model.
func (s *AccessService) Cancel(ctx context.Context, passID string) error {
	if passID == "" {
		return ErrPassNotFound
	}
	err := s.withRetry(ctx, func() error {
		e := s.passes.Cancel(ctx, passID)
		if errors.Is(e, ErrPassNotFound) || errors.Is(e, ErrNotCancellable) {
			return retryAbort{e}
		}
		return e
	})
	if err != nil {
		return err
	}
	s.logger.Info("pass cancelled", slog.String("pass_id", passID))
	return nil
}

// ExpireSweep flips overdue ISSUED passes to EXPIRED for reporting.
// Advisory only: IsUsable computes expiry live, so the sweep never
// gates correctness.
func (s *AccessService) ExpireSweep(ctx context.Context) (int64, error) {
	return s.passes.ExpireOverdue(ctx, s.clk.Now())
}

// RunExpirySweep runs ExpireSweep on the given interval until the
// context is cancelled.  Intended to be launched as a goroutine from
// main.
func (s *AccessService) RunExpirySweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.ExpireSweep(ctx)
			if err != nil {
				s.logger.Warn("expiry sweep failed", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.Info("expiry sweep", slog.Int64("expired", n))
			}
		}
	}
}

// ReasonAlreadyUsed picks the fallback reason for a lost redemption
// race when the fresh record cannot be read: single-entry passes read
// as already used, multi-entry passes as exhausted.
func ReasonAlreadyUsed(p model.Pass) policy.Reason {
	if p.MaxUses == 1 {
		return policy.ReasonAlreadyUsed
	}
	return policy.ReasonExhausted
}

// releaseSlot gives a claimed capacity slot back.  It tries inline
// first and, if the store stays unavailable, keeps retrying from a
// background goroutine with backoff so a failed compensation is never
// silently dropped.
func (s *AccessService) releaseSlot(venueID, date, passID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := s.withRetry(ctx, func() error {
		return s.ledger.Release(ctx, venueID, date)
	})
	if err == nil {
		return
	}
	s.logger.Error("capacity release failed, retrying in background",
		slog.String("venue_id", venueID),
		slog.String("date", date),
		slog.String("pass_id", passID),
		slog.Any("error", err))
	go func() {
		backoff := time.Second
		for {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := s.ledger.Release(ctx, venueID, date)
			cancel()
			if err == nil {
				s.logger.Info("capacity release recovered",
					slog.String("venue_id", venueID),
					slog.String("date", date))
				return
			}
			s.logger.Error("capacity release still failing",
				slog.String("venue_id", venueID),
				slog.String("date", date),
				slog.Any("error", err))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()
}

// retryAbort marks an error as a permanent outcome that withRetry must
// return immediately instead of retrying.
type retryAbort struct{ err error }

func (a retryAbort) Error() string { return a.err.Error() }
func (a retryAbort) Unwrap() error { return a.err }

// withRetry runs fn up to the configured attempt budget, pausing
// between attempts.  Errors wrapped in retryAbort pass through
// unwrapped; errors that exhaust the budget are tagged as
// ErrStoreUnavailable so callers surface a retryable failure.
func (s *AccessService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrStoreUnavailable, ctx.Err())
			case <-time.After(s.retryDelay):
			}
		}
		err = fn()
		if err == nil {
			return nil
		}
		var abort retryAbort
		if errors.As(err, &abort) {
			return abort.err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

// dateKey formats the UTC calendar day occupancy is keyed by.
func dateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// newPassID returns a 32-character hex identifier from crypto/rand.
func newPassID() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
