package analysis

import "errors"

var (
	// ErrRateLimitExceeded rejects generation once the daily ceiling of
	// completed analyses is reached.
	ErrRateLimitExceeded = errors.New("daily analysis limit reached")

	// ErrNoBillsFound rejects generation when the lookback window holds no bills.
	ErrNoBillsFound = errors.New("no bills found for this period")

	// ErrInvalidKind rejects unknown analysis types before any side effect.
	ErrInvalidKind = errors.New("invalid analysis type")

	// ErrInvalidDays rejects lookback windows outside the configured bounds.
	ErrInvalidDays = errors.New("days must be within the allowed range")

	// ErrNotFound covers missing or not-owned analysis records.
	ErrNotFound = errors.New("analysis not found")
)
