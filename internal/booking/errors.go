// Package booking implements the booking lifecycle: the status state machine,
// pricing, creation/status-change orchestration over the availability ledger,
// and the periodic reconciliation sweeps.
package booking

import (
	"errors"
)

// Error taxonomy for the booking core. Validation errors are detected before
// any persistence is touched; storage failures are wrapped and surfaced, never
// masked or retried here (except the single internal retry on a write-lock
// conflict during creation).
var (
	// ErrInvalidRange means start date is not strictly before end date.
	ErrInvalidRange = errors.New("start date must be before end date")

	// ErrPlaceUnavailable means the requested dates conflict with an existing
	// reservation. Distinct from validation errors so clients can prompt for
	// new dates rather than show a generic failure.
	ErrPlaceUnavailable = errors.New("place is not available for the requested dates")

	// ErrInvalidTransition means the requested status change is not in the
	// legal transition table for the booking's current status.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// ErrNotFound means the referenced booking, place or voucher is absent.
	ErrNotFound = errors.New("not found")

	// ErrConcurrencyConflict means the check-then-reserve sequence lost a race
	// with another writer. Creation retries once internally before giving up
	// with ErrPlaceUnavailable.
	ErrConcurrencyConflict = errors.New("concurrent reservation conflict")
)
