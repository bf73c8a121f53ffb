package models

import "errors"

// Failure taxonomy for per-symbol scoring. All of these are caught at the
// symbol boundary and turned into a failure outcome; none aborts a batch.
var (
	// ErrInsufficientHistory means fewer observations than the scoring
	// minimum were available for the symbol.
	ErrInsufficientHistory = errors.New("insufficient price history")

	// ErrUpstreamUnavailable means the market data source was unreachable or
	// returned a non-retryable error.
	ErrUpstreamUnavailable = errors.New("upstream data source unavailable")

	// ErrMalformedSentiment means the sentiment payload could not be parsed
	// as the expected symbol mapping.
	ErrMalformedSentiment = errors.New("malformed sentiment response")

	// ErrStoreDisabled is returned by the noop score store so callers can
	// distinguish "not configured" from a real storage failure.
	ErrStoreDisabled = errors.New("score store disabled")
)
