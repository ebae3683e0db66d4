package domain

import "errors"

var (
	// ErrValidation covers requests rejected before any state access.
	ErrValidation = errors.New("invalid bid request")

	// ErrAuctionNotFound means neither the fast path nor the durable store
	// knows the auction. No state is created on this path.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrBidConflict is the race-loss outcome: another bid committed between
	// this caller's read and its compare-and-swap. Retryable by re-reading.
	ErrBidConflict = errors.New("bid conflict")

	// ErrBackendUnavailable wraps fast-path or durable store failures,
	// including timeouts. Kept distinct from ErrBidConflict so callers do
	// not mistake infrastructure failure for a lost race.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrPriceStateMiss signals an expired or never-primed cache entry; the
	// coordinator rehydrates from the durable store on this error.
	ErrPriceStateMiss = errors.New("price state not cached")

	// ErrNotLeader marks a lifecycle transition skipped because this instance
	// does not hold leadership. The scheduled job must stay pending so the
	// leader's next tick fires it.
	ErrNotLeader = errors.New("not the leader")
)
