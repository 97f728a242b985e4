/*
grant.go - Ownership grants and booking intake

PURPOSE:

	GrantService turns a share purchase into ledger state: it records the
	immutable OwnershipShare and seeds the owner's entitlement rows for the
	current year and the two following years, atomically.

	BookingService is the intake path for validated stays: it resolves the
	owner's share, enforces the maximum stay length, and hands the stay to
	the ledger service.

TRANSACTIONAL GUARANTEE:

	A grant either records the share AND all three rows, or nothing. A
	second grant for the same pair is rejected inside the same transaction
	that would have written it, so concurrent duplicate grants cannot both
	land.

SEE ALSO:
  - allocation/allotment.go: Initial row computation (incl. proration)
  - allocation/ledger.go:    Booking application
*/
package ownership

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/warp/stay-engine/allocation"
)

// =============================================================================
// GRANT SERVICE
// =============================================================================

type GrantService struct {
	Store allocation.AllotmentStore
	Clock allocation.Clock
	Rules allocation.RuleConfig
	Audit allocation.AuditLog // optional
}

// Grant records a new ownership share and creates its initial entitlement
// rows. Returns the rows as persisted.
func (g *GrantService) Grant(ctx context.Context, share allocation.OwnershipShare) ([]allocation.YearlyAllotment, error) {
	if err := share.Validate(); err != nil {
		return nil, err
	}

	today := g.Clock.Today()
	rows, err := allocation.ComputeInitialAllotments(
		share.OwnerID, share.PropertyID, share.ShareCount,
		share.AcquisitionDate, today, g.Rules,
	)
	if err != nil {
		return nil, err
	}

	err = g.Store.WithTx(ctx, func(tx allocation.AllotmentStore) error {
		existing, err := tx.GetShare(ctx, share.OwnerID, share.PropertyID)
		if err != nil {
			return err
		}
		if existing != nil {
			return &ShareExistsError{OwnerID: share.OwnerID, PropertyID: share.PropertyID}
		}
		if err := tx.SaveShare(ctx, share); err != nil {
			return err
		}
		for _, row := range rows {
			if err := tx.Save(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if g.Audit != nil {
		auditErr := g.Audit.Append(ctx, allocation.AuditEntry{
			ID:         uuid.NewString(),
			Timestamp:  today,
			OwnerID:    share.OwnerID,
			PropertyID: share.PropertyID,
			Action:     allocation.AuditOwnershipGranted,
			Payload: map[string]any{
				"share_count":      share.ShareCount,
				"acquisition_date": share.AcquisitionDate.String(),
				"years":            []int{rows[0].Year, rows[1].Year, rows[2].Year},
			},
		})
		if auditErr != nil {
			log.Printf("ownership: audit append failed: %v", auditErr)
		}
	}

	return rows, nil
}

// =============================================================================
// BOOKING SERVICE - Intake for validated stays
// =============================================================================

type BookingService struct {
	Ledger *allocation.LedgerService
	Store  allocation.AllotmentStore
}

// Book validates a stay against the owner's share and applies it to the
// ledger.
func (b *BookingService) Book(ctx context.Context, stay allocation.StayRequest) error {
	share, err := b.Store.GetShare(ctx, stay.OwnerID, stay.PropertyID)
	if err != nil {
		return err
	}
	if share == nil {
		return allocation.ErrShareNotFound
	}
	if err := ValidateStay(stay, allocation.MaxStayLength(share.ShareCount)); err != nil {
		return err
	}
	return b.Ledger.ApplyBooking(ctx, stay)
}
