/*
ledger.go - Booking application against the allotment ledger

PURPOSE:

	The only mutator of YearlyAllotment rows. Applying a booking means:
	classify the stay's nights, decide last-minute vs. regular, debit the
	affected rows, and propagate peak-holiday consumption to the banking
	partner year - all inside one store transaction.

LAST-MINUTE BOOKINGS:

	A stay checking in within the configured threshold of "today" draws its
	full night count (peak + off) from the separate last-minute pool. The
	seasonal and holiday pools are untouched and holiday banking is skipped.

MISSING ROWS:

	A booking year with no tracked allotment row is skipped silently (and
	logged). Entitlement tracking simply ends after the rows that exist;
	the stay's other year is still debited normally.

ATOMICITY:

	Every debit for one booking happens inside AllotmentStore.WithTx. An
	overdrawn pool, a missing share, or a store failure rolls the whole
	booking back; partial debits across years are never observable.

SERIALIZATION:

	Debits are read-modify-write, so two concurrent bookings against the
	same rows could overdraw a pool. The service holds a per-(owner,
	property) mutex across the transaction; banking can touch a neighboring
	year's row, which is why the lock covers the pair rather than a single
	(owner, property, year) row. Bookings for different owners or
	properties run fully in parallel.

SEE ALSO:
  - classify.go: Night tallies
  - banking.go:  Partner-year resolution
  - store.go:    The transaction boundary
*/
package allocation

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

// =============================================================================
// STAY REQUEST
// =============================================================================

// StayRequest is a validated booking: checkout is exclusive, so Nights()
// is the count of nights actually slept.
type StayRequest struct {
	OwnerID    OwnerID
	PropertyID PropertyID
	CheckIn    Date
	CheckOut   Date
}

// Nights returns the stay length in nights.
func (r StayRequest) Nights() int { return DaysBetween(r.CheckIn, r.CheckOut) }

// =============================================================================
// LEDGER SERVICE
// =============================================================================

// LedgerService orchestrates booking application over the allotment store.
type LedgerService struct {
	store  AllotmentStore
	config PropertyConfigSource
	clock  Clock
	audit  AuditLog // optional

	rulesMu sync.RWMutex
	rules   RuleConfig

	locks rowLocks
}

// NewLedgerService wires a ledger service over its collaborators.
func NewLedgerService(store AllotmentStore, config PropertyConfigSource, clock Clock, rules RuleConfig) *LedgerService {
	return &LedgerService{
		store:  store,
		config: config,
		clock:  clock,
		rules:  rules,
		locks:  rowLocks{locks: make(map[lockKey]*sync.Mutex)},
	}
}

// WithAuditLog attaches an audit log. Auditing is best-effort and optional.
func (s *LedgerService) WithAuditLog(audit AuditLog) *LedgerService {
	s.audit = audit
	return s
}

// Rules returns the current rule snapshot.
func (s *LedgerService) Rules() RuleConfig {
	s.rulesMu.RLock()
	defer s.rulesMu.RUnlock()
	return s.rules
}

// SetRules swaps in a new rule snapshot. In-flight bookings keep the
// snapshot they started with.
func (s *LedgerService) SetRules(rules RuleConfig) error {
	if err := rules.Validate(); err != nil {
		return err
	}
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	s.rules = rules
	return nil
}

// ClassifyStay classifies a stay against the property's configured
// calendar without touching the ledger.
func (s *LedgerService) ClassifyStay(ctx context.Context, stay StayRequest) (StayNights, error) {
	season, holidays, err := s.propertyCalendar(ctx, stay.PropertyID)
	if err != nil {
		return StayNights{}, err
	}
	return ClassifyStay(stay.CheckIn, stay.CheckOut, season, holidays)
}

// ApplyBooking debits the owner's allotment rows for a stay. See the file
// header for the last-minute, missing-row, and banking semantics.
func (s *LedgerService) ApplyBooking(ctx context.Context, stay StayRequest) error {
	if !stay.CheckOut.After(stay.CheckIn) {
		return &InvalidDateRangeError{CheckIn: stay.CheckIn, CheckOut: stay.CheckOut}
	}

	season, holidays, err := s.propertyCalendar(ctx, stay.PropertyID)
	if err != nil {
		return err
	}
	counts, err := ClassifyStay(stay.CheckIn, stay.CheckOut, season, holidays)
	if err != nil {
		return err
	}

	today := s.clock.Today()
	rules := s.Rules()
	lastMinute := DaysBetween(today, stay.CheckIn) <= rules.LastMinuteThresholdDays

	unlock := s.locks.lock(stay.OwnerID, stay.PropertyID)
	defer unlock()

	var skipped []int
	err = s.store.WithTx(ctx, func(tx AllotmentStore) error {
		skipped = skipped[:0]
		for _, year := range counts.Years() {
			if err := s.applyYear(ctx, tx, stay, year, counts.ForYear(year), lastMinute, today, &skipped); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.recordBooking(ctx, stay, counts, lastMinute, skipped)
	return nil
}

// applyYear debits one booking year's row and, for regular bookings with
// peak-holiday nights, the banking partner's row.
func (s *LedgerService) applyYear(ctx context.Context, tx AllotmentStore, stay StayRequest, year int, counts NightCounts, lastMinute bool, today Date, skipped *[]int) error {
	row, err := tx.Get(ctx, stay.OwnerID, stay.PropertyID, year)
	if err != nil {
		return err
	}
	if row == nil {
		// Entitlement is only tracked for a fixed horizon of years;
		// a booking beyond it debits nothing for that year.
		log.Printf("allocation: no allotment row for owner=%s property=%s year=%d, skipping year",
			stay.OwnerID, stay.PropertyID, year)
		*skipped = append(*skipped, year)
		return nil
	}

	if lastMinute {
		if err := row.Debit(CategoryLastMinute, counts.Peak+counts.Off); err != nil {
			return err
		}
	} else {
		debits := []struct {
			category Category
			nights   int
		}{
			{CategoryPeak, counts.Peak},
			{CategoryOff, counts.Off},
			{CategoryPeakHoliday, counts.PeakHoliday},
			{CategoryOffHoliday, counts.OffHoliday},
		}
		for _, d := range debits {
			if err := row.Debit(d.category, d.nights); err != nil {
				return err
			}
		}
	}

	if err := tx.Save(ctx, *row); err != nil {
		return err
	}

	if !lastMinute && counts.PeakHoliday > 0 {
		return s.bankHolidayNights(ctx, tx, stay, year, counts.PeakHoliday, today, skipped)
	}
	return nil
}

// bankHolidayNights propagates a peak-holiday consumption to the
// alternating-parity partner year, when one resolves and its row exists.
func (s *LedgerService) bankHolidayNights(ctx context.Context, tx AllotmentStore, stay StayRequest, year, nights int, today Date, skipped *[]int) error {
	share, err := tx.GetShare(ctx, stay.OwnerID, stay.PropertyID)
	if err != nil {
		return err
	}
	if share == nil {
		return ErrShareNotFound
	}

	targetYear, ok := ResolveBankingYear(share.AcquisitionDate.Year(), year, today.Year())
	if !ok {
		return nil
	}

	row, err := tx.Get(ctx, stay.OwnerID, stay.PropertyID, targetYear)
	if err != nil {
		return err
	}
	if row == nil {
		// The partner year is outside the tracked horizon. Deliberate
		// soft failure: the local debit stands, the propagation is
		// dropped.
		log.Printf("allocation: banking partner year %d has no allotment row for owner=%s property=%s, skipping",
			targetYear, stay.OwnerID, stay.PropertyID)
		*skipped = append(*skipped, targetYear)
		return nil
	}

	if err := row.Debit(CategoryPeakHoliday, nights); err != nil {
		return err
	}
	return tx.Save(ctx, *row)
}

func (s *LedgerService) propertyCalendar(ctx context.Context, property PropertyID) (SeasonWindow, []Holiday, error) {
	season, err := s.config.Season(ctx, property)
	if err != nil {
		return SeasonWindow{}, nil, err
	}
	holidays, err := s.config.Holidays(ctx, property)
	if err != nil {
		return SeasonWindow{}, nil, err
	}
	return season, holidays, nil
}

func (s *LedgerService) recordBooking(ctx context.Context, stay StayRequest, counts StayNights, lastMinute bool, skipped []int) {
	if s.audit == nil {
		return
	}
	payload := map[string]any{
		"checkin":     stay.CheckIn.String(),
		"checkout":    stay.CheckOut.String(),
		"nights":      counts.TotalNights(),
		"years":       counts.Years(),
		"last_minute": lastMinute,
	}
	if len(skipped) > 0 {
		payload["skipped_years"] = skipped
	}
	err := s.audit.Append(ctx, AuditEntry{
		ID:         uuid.NewString(),
		Timestamp:  s.clock.Today(),
		OwnerID:    stay.OwnerID,
		PropertyID: stay.PropertyID,
		Action:     AuditBookingApplied,
		Payload:    payload,
	})
	if err != nil {
		log.Printf("allocation: audit append failed: %v", err)
	}
}

// =============================================================================
// PER-PAIR LOCKS
// =============================================================================

type lockKey struct {
	Owner    OwnerID
	Property PropertyID
}

// rowLocks hands out one mutex per (owner, property) pair. Locks are never
// reclaimed; the key space is bounded by active ownerships.
type rowLocks struct {
	mu    sync.Mutex
	locks map[lockKey]*sync.Mutex
}

func (r *rowLocks) lock(owner OwnerID, property PropertyID) func() {
	k := lockKey{Owner: owner, Property: property}
	r.mu.Lock()
	m, ok := r.locks[k]
	if !ok {
		m = &sync.Mutex{}
		r.locks[k] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
