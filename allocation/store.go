/*
store.go - Persistence interfaces consumed by the engine

PURPOSE:

	Defines the narrow seams between the engine and its collaborators. The
	engine never talks to a database directly; it loads and saves rows
	through AllotmentStore and reads calendar configuration through
	PropertyConfigSource. Different implementations can use SQLite,
	PostgreSQL, or in-memory storage.

KEY INTERFACES:

	AllotmentStore:       Ledger rows and ownership shares, keyed lookups
	PropertyConfigSource: Season window + holiday list per property
	AuditLog:             Append-only record of who changed what

TRANSACTIONS:

	WithTx() ensures all-or-nothing semantics. A booking that touches two
	years (plus a banking partner year) either lands every debit or none of
	them; partial debits are never observable.

CONCURRENCY:

	Save() implementations are expected to check the row's Version and fail
	with ErrConcurrentModification on a mismatch. The ledger service layers
	its own per-(owner, property) serialization on top, so a conforming
	store only needs the version check as a backstop.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:    Production SQLite
  - allocation/store/memory.go: In-memory for testing

SEE ALSO:
  - ledger.go: The only mutator of allotment rows
*/
package allocation

import "context"

// =============================================================================
// ALLOTMENT STORE - Flat, composite-key row storage
// =============================================================================

// AllotmentStore persists entitlement rows and ownership shares. Lookups
// are by explicit composite key; the engine never navigates object graphs.
type AllotmentStore interface {
	// Get returns the row for (owner, property, year), or nil if no row
	// is tracked for that year.
	Get(ctx context.Context, owner OwnerID, property PropertyID, year int) (*YearlyAllotment, error)

	// Save writes a row, enforcing the optimistic version check.
	Save(ctx context.Context, row YearlyAllotment) error

	// GetShare returns the ownership share for (owner, property), or nil.
	GetShare(ctx context.Context, owner OwnerID, property PropertyID) (*OwnershipShare, error)

	// SaveShare records a new ownership share.
	SaveShare(ctx context.Context, share OwnershipShare) error

	// WithTx executes fn atomically. If fn returns an error, every write
	// it made is rolled back.
	WithTx(ctx context.Context, fn func(AllotmentStore) error) error
}

// =============================================================================
// PROPERTY CONFIGURATION SOURCE
// =============================================================================

// PropertyConfigSource supplies the calendar configuration bookings are
// classified against. Season returns ErrMissingPropertyConfig (wrapped)
// when a property has no window configured; Holidays returns an empty list
// for a property that simply observes none.
type PropertyConfigSource interface {
	Season(ctx context.Context, property PropertyID) (SeasonWindow, error)
	Holidays(ctx context.Context, property PropertyID) ([]Holiday, error)
}

// =============================================================================
// AUDIT LOG - Append-only history
// =============================================================================

type AuditAction string

const (
	AuditOwnershipGranted AuditAction = "ownership_granted"
	AuditBookingApplied   AuditAction = "booking_applied"
)

// AuditEntry records one engine-level event.
type AuditEntry struct {
	ID         string
	Timestamp  Date
	OwnerID    OwnerID
	PropertyID PropertyID
	Action     AuditAction
	Payload    map[string]any
}

// AuditLog stores audit entries. Append-only; history is never rewritten.
type AuditLog interface {
	Append(ctx context.Context, entry AuditEntry) error
}
