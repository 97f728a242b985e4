package allocation

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity calendar date (nights are whole days)
// =============================================================================

// Date is a calendar date pinned to UTC midnight. All engine arithmetic is in
// whole days; there is no finer granularity in this domain.
type Date struct {
	t time.Time
}

// NewDate constructs a Date from year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an arbitrary time to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a "2006-01-02" formatted string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.After(other) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.Before(other) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

// MonthDay drops the year, for comparison against season boundaries.
func (d Date) MonthDay() MonthDay {
	return MonthDay{Month: d.t.Month(), Day: d.t.Day()}
}

func (d Date) String() string { return d.t.Format("2006-01-02") }

// DaysBetween returns the signed number of days from one date to another.
func DaysBetween(from, to Date) int {
	return int(to.t.Sub(from.t).Hours() / 24)
}

// IsLeapYear reports whether a year has 366 days.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInYear returns 366 for leap years, 365 otherwise.
func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// =============================================================================
// MONTH-DAY - Year-independent calendar position
// =============================================================================

// MonthDay is a (month, day) pair with no year attached. Season boundaries are
// defined this way so the same window applies to every calendar year.
type MonthDay struct {
	Month time.Month
	Day   int
}

func NewMonthDay(month time.Month, day int) MonthDay {
	return MonthDay{Month: month, Day: day}
}

func (md MonthDay) Before(other MonthDay) bool {
	if md.Month != other.Month {
		return md.Month < other.Month
	}
	return md.Day < other.Day
}

func (md MonthDay) After(other MonthDay) bool { return other.Before(md) }

func (md MonthDay) Equal(other MonthDay) bool {
	return md.Month == other.Month && md.Day == other.Day
}

// =============================================================================
// CLOCK - Injected time source
// =============================================================================

// Clock supplies "today" to the engine. Injecting it keeps last-minute and
// banking-window decisions deterministic under test.
type Clock interface {
	Today() Date
}

type systemClock struct{}

func (systemClock) Today() Date { return DateOf(time.Now().UTC()) }

// SystemClock returns a Clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

type fixedClock struct {
	today Date
}

func (c fixedClock) Today() Date { return c.today }

// FixedClock returns a Clock frozen at the given date.
func FixedClock(today Date) Clock { return fixedClock{today: today} }
