/*
allotment.go - Yearly entitlement rows and initial allotment computation

PURPOSE:

	Defines the ledger row every booking debits - one YearlyAllotment per
	(owner, property, year) - and computes a new owner's initial rows when
	ownership is granted.

POOLS:

	Each row carries five independent night pools (peak, off, peak holiday,
	off holiday, last minute). Every pool maintains the invariant
	Remaining = Allotted - Booked, and a debit that would drive Remaining
	negative is rejected rather than recorded.

INITIAL ALLOTMENT:

	Granting a share creates rows for the current year and the two following
	years. Base amounts scale linearly with share count. The acquisition
	year's peak and off pools are prorated by the fraction of the year left
	after acquisition; holiday and last-minute pools are never prorated.

PRORATION CONVENTION:

	The entitlement calendar treats the year as ending December 30: the
	divisor is daysInYear - 1 and the remaining-day count runs to December 30
	inclusive. An acquisition dated December 31 therefore receives the full
	unprorated base. This convention is load-bearing for existing contracts;
	do not "fix" it without a product decision.

SEE ALSO:
  - ledger.go: Mutates these rows as bookings are applied
  - config.go: Per-share base rates
*/
package allocation

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type OwnerID string
type PropertyID string

// =============================================================================
// OWNERSHIP SHARE
// =============================================================================

// OwnershipShare records a grant of fractional ownership. Created once and
// immutable thereafter; the acquisition date anchors both first-year
// proration and the alternating-year banking parity.
type OwnershipShare struct {
	OwnerID         OwnerID
	PropertyID      PropertyID
	ShareCount      int
	AcquisitionDate Date
}

// Validate checks the share is recordable: a positive share count and a
// set acquisition date.
func (s OwnershipShare) Validate() error {
	if s.ShareCount < 1 {
		return ErrInvalidShareCount
	}
	if s.AcquisitionDate.IsZero() {
		return ErrInvalidAcquisitionDate
	}
	return nil
}

// =============================================================================
// POOLS
// =============================================================================

// Category names one of the five night pools on a row.
type Category string

const (
	CategoryPeak        Category = "peak"
	CategoryOff         Category = "off"
	CategoryPeakHoliday Category = "peak_holiday"
	CategoryOffHoliday  Category = "off_holiday"
	CategoryLastMinute  Category = "last_minute"
)

// Pool tracks one entitlement category for one year.
// Invariant: Remaining = Allotted - Booked after every successful mutation.
type Pool struct {
	Allotted  int
	Remaining int
	Booked    int
}

func newPool(allotted int) Pool {
	return Pool{Allotted: allotted, Remaining: allotted}
}

// =============================================================================
// YEARLY ALLOTMENT - One ledger row
// =============================================================================

// YearlyAllotment is the entitlement row keyed by (owner, property, year).
// Rows are created at grant time and mutated only by the ledger service.
type YearlyAllotment struct {
	OwnerID    OwnerID
	PropertyID PropertyID
	Year       int

	Peak        Pool
	Off         Pool
	PeakHoliday Pool
	OffHoliday  Pool
	LastMinute  Pool

	MaxStayLength int

	// Version supports optimistic concurrency checks in stores that use
	// them. Zero means the row has never been persisted.
	Version int64
}

func (a *YearlyAllotment) pool(c Category) *Pool {
	switch c {
	case CategoryPeak:
		return &a.Peak
	case CategoryOff:
		return &a.Off
	case CategoryPeakHoliday:
		return &a.PeakHoliday
	case CategoryOffHoliday:
		return &a.OffHoliday
	default:
		return &a.LastMinute
	}
}

// Debit consumes nights from one of the row's pools. A debit that would
// drive Remaining negative is rejected with *OverAllotmentError and the row
// is left unchanged. A zero debit is a no-op.
func (a *YearlyAllotment) Debit(c Category, nights int) error {
	p := a.pool(c)
	if nights > p.Remaining {
		return &OverAllotmentError{
			OwnerID:    a.OwnerID,
			PropertyID: a.PropertyID,
			Year:       a.Year,
			Category:   c,
			Requested:  nights,
			Remaining:  p.Remaining,
		}
	}
	p.Remaining -= nights
	p.Booked += nights
	return nil
}

// =============================================================================
// INITIAL ALLOTMENT COMPUTATION
// =============================================================================

const (
	baseStayLength     = 14
	stayLengthPerShare = 7
	maxStayLengthCap   = 28
)

// MaxStayLength returns the longest single stay a holder of shareCount
// shares may book: 14 nights for one share, 7 more per additional share,
// capped at 28.
func MaxStayLength(shareCount int) int {
	n := baseStayLength + (shareCount-1)*stayLengthPerShare
	if n > maxStayLengthCap {
		return maxStayLengthCap
	}
	return n
}

// ComputeInitialAllotments builds the three entitlement rows a new owner
// receives, for today's year and the two following years. Pure function of
// its inputs; the injected today keeps it testable.
func ComputeInitialAllotments(owner OwnerID, property PropertyID, shareCount int, acquisition, today Date, rules RuleConfig) ([]YearlyAllotment, error) {
	if shareCount < 1 {
		return nil, ErrInvalidShareCount
	}
	if err := rules.Validate(); err != nil {
		return nil, err
	}

	startYear := today.Year()
	maxStay := MaxStayLength(shareCount)

	rows := make([]YearlyAllotment, 0, trackedYears)
	for offset := 0; offset < trackedYears; offset++ {
		year := startYear + offset
		peak := shareCount * rules.PeakNightsPerShare
		off := shareCount * rules.OffNightsPerShare
		if offset == 0 {
			peak = prorateFirstYear(peak, year, acquisition)
			off = prorateFirstYear(off, year, acquisition)
		}
		rows = append(rows, YearlyAllotment{
			OwnerID:       owner,
			PropertyID:    property,
			Year:          year,
			Peak:          newPool(peak),
			Off:           newPool(off),
			PeakHoliday:   newPool(shareCount * rules.PeakHolidayNightsPerShare),
			OffHoliday:    newPool(shareCount * rules.OffHolidayNightsPerShare),
			LastMinute:    newPool(shareCount * rules.LastMinuteNightsPerShare),
			MaxStayLength: maxStay,
		})
	}
	return rows, nil
}

// trackedYears is how many entitlement years exist at any time for an
// active ownership.
const trackedYears = 3

// prorateFirstYear scales an acquisition-year base pool by the fraction of
// the entitlement year remaining on the acquisition date, floored to whole
// nights. See the proration convention note in the file header.
func prorateFirstYear(base, year int, acquisition Date) int {
	adjustedDays := DaysInYear(year) - 1
	dec30 := NewDate(year, time.December, 30)

	daysRemaining := adjustedDays
	if acquisition.Year() == year && !acquisition.After(dec30) {
		daysRemaining = DaysBetween(acquisition, dec30) + 1
	}
	if daysRemaining >= adjustedDays {
		return base
	}

	// Multiply before dividing so the quotient is exact at the floor.
	prorated := decimal.NewFromInt(int64(daysRemaining)).
		Mul(decimal.NewFromInt(int64(base))).
		Div(decimal.NewFromInt(int64(adjustedDays))).
		Floor()
	return int(prorated.IntPart())
}
