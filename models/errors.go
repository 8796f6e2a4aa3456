package models

import "errors"

// Failure taxonomy for a single pipeline cycle. All of these are fatal to
// the pair/cycle that hit them, never to the surrounding process.
var (
	// ErrMalformedRecord means a raw market-data record is missing a
	// required field or carries the wrong type for one.
	ErrMalformedRecord = errors.New("malformed market record")

	// ErrStoreUnavailable means the snapshot store could not be opened,
	// written, or read. Retried on the next cycle.
	ErrStoreUnavailable = errors.New("snapshot store unavailable")

	// ErrVerdictUnavailable means an external risk or supply check timed
	// out or errored. The filter chain maps it to a policy default, it is
	// never silently treated as a pass.
	ErrVerdictUnavailable = errors.New("external verdict unavailable")

	// ErrInsufficientData means the scorer was handed an empty store.
	ErrInsufficientData = errors.New("insufficient data for scoring")

	// ErrPairNotFound means the market-data source has no record of the
	// requested pair address.
	ErrPairNotFound = errors.New("pair not found")

	// ErrTradeFailed means the broker rejected or failed a trade request.
	ErrTradeFailed = errors.New("trade submission failed")
)
