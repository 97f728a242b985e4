/*
errors.go - Centralized error types for the allocation engine

PURPOSE:

	All error types in one place for consistency and discoverability.
	Callers match sentinels with errors.Is() and extract context from the
	structured types with errors.As().

ERROR CATEGORIES:
 1. Booking errors - Invalid stays and pool overdrafts
 2. Lookup errors  - Missing shares and property configuration
 3. Store errors   - Concurrency conflicts at the persistence layer

PROPAGATION POLICY:

	The pure classification and allotment functions never fail for valid
	dates; only the booking-mutation path can, and a failed booking leaves
	every touched row unchanged.
*/
package allocation

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDateRange is returned when a stay's checkout is not after
	// its checkin. Rejected before any classification runs.
	ErrInvalidDateRange = errors.New("invalid date range: checkout must be after checkin")

	// ErrOverAllotment is returned when a debit would drive a pool's
	// remaining balance negative. The mutation is rejected whole.
	ErrOverAllotment = errors.New("insufficient remaining nights")

	// ErrShareNotFound is returned when no ownership share exists for an
	// (owner, property) pair a booking references.
	ErrShareNotFound = errors.New("ownership share not found")

	// ErrMissingPropertyConfig is returned when a property has no season
	// window or holiday configuration. Fatal at the configuration layer.
	ErrMissingPropertyConfig = errors.New("property configuration missing")

	// ErrConcurrentModification is returned when an optimistic version
	// check detects a conflicting write.
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// ErrInvalidShareCount is returned for grants with a non-positive
	// share count.
	ErrInvalidShareCount = errors.New("share count must be positive")

	// ErrInvalidAcquisitionDate is returned for grants with a zero
	// acquisition date. The date anchors proration and banking parity,
	// so a share without one cannot be recorded.
	ErrInvalidAcquisitionDate = errors.New("acquisition date must be set")

	// ErrInvalidRuleConfig is returned for rule snapshots that fail
	// validation.
	ErrInvalidRuleConfig = errors.New("invalid rule configuration")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidDateRangeError reports the offending stay boundaries.
type InvalidDateRangeError struct {
	CheckIn  Date
	CheckOut Date
}

func (e *InvalidDateRangeError) Error() string {
	return fmt.Sprintf("invalid date range: checkin %s, checkout %s", e.CheckIn, e.CheckOut)
}

func (e *InvalidDateRangeError) Unwrap() error { return ErrInvalidDateRange }

// OverAllotmentError reports which pool would have been overdrawn.
type OverAllotmentError struct {
	OwnerID    OwnerID
	PropertyID PropertyID
	Year       int
	Category   Category
	Requested  int
	Remaining  int
}

func (e *OverAllotmentError) Error() string {
	return fmt.Sprintf("insufficient %s nights for owner %s property %s year %d: requested %d, remaining %d",
		e.Category, e.OwnerID, e.PropertyID, e.Year, e.Requested, e.Remaining)
}

func (e *OverAllotmentError) Unwrap() error { return ErrOverAllotment }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentModification)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDateRange) ||
		errors.Is(err, ErrOverAllotment) ||
		errors.Is(err, ErrInvalidShareCount) ||
		errors.Is(err, ErrInvalidAcquisitionDate)
}

// IsNotFound returns true if the error indicates missing data.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShareNotFound) ||
		errors.Is(err, ErrMissingPropertyConfig)
}
