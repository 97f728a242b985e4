/*
classify.go - Per-year, per-category night tallies for a stay

PURPOSE:

	Walks a stay's date range one night at a time and buckets each night into
	(allotment year, category). This is the input every ledger mutation is
	computed from.

NIGHT COUNTING:

	Check-in is inclusive, check-out exclusive: a stay from the 10th to the
	13th is three nights (10th, 11th, 12th). A stay crossing New Year's Eve
	touches two allotment years.

YEAR BUCKETING:

	A night belongs to its own calendar year, with one carry-forward rule:
	the night of December 31 is charged to the FOLLOWING year's allotment.
	New Year's Eve is sold as part of the next year's entitlement.

HOLIDAY DEDUPLICATION:

	A holiday overlapping the stay is charged ONCE per stay, no matter how
	many of its days the stay covers. The charge lands on the first night of
	the stay that intersects the holiday, classified peak/off by that night's
	season. The holiday's remaining nights count as ordinary peak/off nights.
	A night carries at most one holiday charge: when two holidays cover the
	same night, the second is charged on its next intersecting night (or not
	at all, if the stay never reaches one). The per-category totals therefore
	always sum to the stay's elapsed nights.

GUARANTEE:

	Peak + Off + PeakHoliday + OffHoliday across both years equals
	DaysBetween(checkin, checkout); no night is counted twice.

SEE ALSO:
  - calendar.go: Single-date season/holiday classification
  - ledger.go:   Turns these tallies into allotment debits
*/
package allocation

import "time"

// =============================================================================
// NIGHT COUNTS
// =============================================================================

// NightCounts is the per-category tally for one allotment year.
type NightCounts struct {
	Peak        int
	Off         int
	PeakHoliday int
	OffHoliday  int
}

// Total returns the number of nights across all categories.
func (c NightCounts) Total() int {
	return c.Peak + c.Off + c.PeakHoliday + c.OffHoliday
}

// IsZero reports whether no nights were counted.
func (c NightCounts) IsZero() bool { return c == NightCounts{} }

// StayNights holds the tallies for the one or two allotment years a stay
// touches. FirstYear is always the check-in year; SecondYear is zero unless
// the stay spilled into a later allotment year.
type StayNights struct {
	FirstYear  int
	SecondYear int

	First  NightCounts
	Second NightCounts
}

// TotalNights returns the stay's elapsed nights across both years.
func (s StayNights) TotalNights() int {
	return s.First.Total() + s.Second.Total()
}

// Years lists the allotment years with the first year first.
func (s StayNights) Years() []int {
	if s.SecondYear == 0 {
		return []int{s.FirstYear}
	}
	return []int{s.FirstYear, s.SecondYear}
}

// ForYear returns the tally for an allotment year.
func (s StayNights) ForYear(year int) NightCounts {
	if year == s.SecondYear {
		return s.Second
	}
	return s.First
}

func (s *StayNights) bucket(year int) *NightCounts {
	if year == s.FirstYear {
		return &s.First
	}
	if s.SecondYear == 0 {
		s.SecondYear = year
	}
	return &s.Second
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// allotmentYear maps a night to the allotment year it is charged against.
// December 31 carries forward to the following year.
func allotmentYear(d Date) int {
	if d.Month() == time.December && d.Day() == 31 {
		return d.Year() + 1
	}
	return d.Year()
}

// ClassifyStay tallies the nights of [checkin, checkout) per allotment year
// and category, against the property's season window and holiday list.
// The only error case is an empty or inverted range.
func ClassifyStay(checkin, checkout Date, season SeasonWindow, holidays []Holiday) (StayNights, error) {
	if !checkout.After(checkin) {
		return StayNights{}, &InvalidDateRangeError{CheckIn: checkin, CheckOut: checkout}
	}

	nights := StayNights{FirstYear: checkin.Year()}
	counted := make(map[string]bool, len(holidays))

	for d := checkin; d.Before(checkout); d = d.AddDays(1) {
		counts := nights.bucket(allotmentYear(d))
		inPeak := season.Classify(d) == SeasonPeak

		// Charge at most ONE holiday on this night, once per holiday per
		// stay. When holidays overlap, the later one is charged on its
		// next intersecting night, so a night never carries two charges.
		holidayNight := false
		for i := range holidays {
			h := &holidays[i]
			if counted[h.ID] || !h.Contains(d) {
				continue
			}
			counted[h.ID] = true
			holidayNight = true
			if inPeak {
				counts.PeakHoliday++
			} else {
				counts.OffHoliday++
			}
			break
		}
		if holidayNight {
			continue
		}

		if inPeak {
			counts.Peak++
		} else {
			counts.Off++
		}
	}

	return nights, nil
}
