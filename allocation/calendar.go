/*
calendar.go - Season and holiday classification for a single date

PURPOSE:

	Answers the two questions every night of a stay gets asked:
	1. Does this date fall in the property's peak window or the off window?
	2. Does this date fall inside one of the property's observed holidays?

SEASON WINDOWS:

	Each property defines one peak window as a pair of (month, day) boundaries
	with no year attached. The window may wrap the calendar year boundary:
	a ski property's peak of Nov 15 - Mar 15 covers late December AND early
	January of every year. Everything outside the peak window is off season.

HOLIDAYS:

	Holidays are full date ranges (start/end inclusive) and may span several
	days. A property observes an arbitrary list of them. Whether a holiday
	night is a "peak holiday" or "off holiday" depends on the season of the
	night itself, not on any attribute of the holiday.

	Both functions are pure; there are no error cases.

SEE ALSO:
  - classify.go: Walks a stay through these classifications night by night
*/
package allocation

// =============================================================================
// SEASON
// =============================================================================

// Season is one of the two mutually exclusive calendar classifications.
type Season string

const (
	SeasonPeak Season = "peak"
	SeasonOff  Season = "off"
)

// SeasonWindow is a property's peak window, defined by year-independent
// boundaries. PeakStart > PeakEnd means the window wraps the new year.
type SeasonWindow struct {
	PeakStart MonthDay
	PeakEnd   MonthDay
}

// Classify returns the season a date falls in, comparing only (month, day).
func (w SeasonWindow) Classify(d Date) Season {
	md := d.MonthDay()

	if !w.PeakStart.After(w.PeakEnd) {
		// Window contained within one calendar year.
		if !md.Before(w.PeakStart) && !md.After(w.PeakEnd) {
			return SeasonPeak
		}
		return SeasonOff
	}

	// Window wraps the year boundary: peak is on either side of it.
	if !md.Before(w.PeakStart) || !md.After(w.PeakEnd) {
		return SeasonPeak
	}
	return SeasonOff
}

// =============================================================================
// HOLIDAY
// =============================================================================

// Holiday is a named date range observed by a property. Start and End are
// both inclusive; a one-day holiday has Start == End.
type Holiday struct {
	ID    string
	Name  string
	Start Date
	End   Date
}

// Contains reports whether the date falls inside the holiday's range.
func (h Holiday) Contains(d Date) bool {
	return !d.Before(h.Start) && !d.After(h.End)
}

// HolidayOn returns the first holiday whose range contains the date, or nil.
func HolidayOn(d Date, holidays []Holiday) *Holiday {
	for i := range holidays {
		if holidays[i].Contains(d) {
			return &holidays[i]
		}
	}
	return nil
}
