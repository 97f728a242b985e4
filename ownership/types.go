// Package ownership implements the ownership-facing services on top of the
// allocation engine: granting shares (which seeds the entitlement rows) and
// validating stays before they reach the ledger.
package ownership

import (
	"fmt"

	"github.com/warp/stay-engine/allocation"
)

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

// ShareExistsError is returned when granting ownership that already exists.
// Shares are immutable; a second grant for the same (owner, property) pair
// is always a caller mistake, never an update.
type ShareExistsError struct {
	OwnerID    allocation.OwnerID
	PropertyID allocation.PropertyID
}

func (e *ShareExistsError) Error() string {
	return fmt.Sprintf("ownership share already exists for owner %s property %s",
		e.OwnerID, e.PropertyID)
}

// StayTooLongError is returned when a stay exceeds the owner's maximum
// stay length.
type StayTooLongError struct {
	Nights        int
	MaxStayLength int
}

func (e *StayTooLongError) Error() string {
	return fmt.Sprintf("stay of %d nights exceeds maximum stay length of %d",
		e.Nights, e.MaxStayLength)
}

// =============================================================================
// STAY VALIDATION
// =============================================================================

// ValidateStay checks a stay request's shape against the owner's maximum
// stay length. Pool balances are checked later, inside the ledger's
// transaction.
func ValidateStay(stay allocation.StayRequest, maxStayLength int) error {
	if !stay.CheckOut.After(stay.CheckIn) {
		return &allocation.InvalidDateRangeError{CheckIn: stay.CheckIn, CheckOut: stay.CheckOut}
	}
	if nights := stay.Nights(); nights > maxStayLength {
		return &StayTooLongError{Nights: nights, MaxStayLength: maxStayLength}
	}
	return nil
}
