// Package service orchestrates pass issuance, redemption and
// cancellation over the store and ledger abstractions.  This file
// defines the sentinel errors shared by the store implementations and
// the service so that handlers can translate failures with errors.Is.
package service

import "errors"

// ErrAlreadyIssued fires when Issue is called twice for the same order.
// Payment-confirmation webhooks retry, so this is a safe no-op guard:
// the caller receives the original passes alongside this error.
var ErrAlreadyIssued = errors.New("passes already issued for order")

// ErrPassNotFound is returned when a pass ID is well-formed but unknown
// to the store.  It can indicate a stale or forged token.
var ErrPassNotFound = errors.New("pass not found")

// ErrUseConflict is returned by MarkUsed when the conditional update
// matched no row: another scan won the race or no entries remain.  The
// service translates it into the precise policy reason after a re-read.
var ErrUseConflict = errors.New("pass has no remaining uses")

// ErrNotCancellable is returned by Cancel when the pass is already in a
// terminal state.  Status transitions are one-directional.
var ErrNotCancellable = errors.New("pass is not cancellable")

// ErrInvalidIssue is returned by Issue when the request itself is
// unusable: missing references, a non-positive count or use limit, or
// a window that ends before it starts.
var ErrInvalidIssue = errors.New("invalid issue request")

// ErrVenueNotFound is returned when an admission or occupancy query
// references a venue the ledger has no capacity configuration for.
var ErrVenueNotFound = errors.New("venue not found")

// ErrStoreUnavailable wraps transient infrastructure failures that
// survived the internal retry budget.  Callers should surface it as a
// retryable "try again" outcome, never as a policy rejection.
var ErrStoreUnavailable = errors.New("store unavailable")
