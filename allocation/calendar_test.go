package allocation_test

import (
	"testing"
	"time"

	"github.com/warp/stay-engine/allocation"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) allocation.Date {
	return allocation.NewDate(year, month, day)
}

func md(month time.Month, day int) allocation.MonthDay {
	return allocation.NewMonthDay(month, day)
}

// summerWindow is a peak window contained within one calendar year.
func summerWindow() allocation.SeasonWindow {
	return allocation.SeasonWindow{
		PeakStart: md(time.June, 1),
		PeakEnd:   md(time.August, 31),
	}
}

// skiWindow wraps the year boundary: Nov 15 through Mar 15.
func skiWindow() allocation.SeasonWindow {
	return allocation.SeasonWindow{
		PeakStart: md(time.November, 15),
		PeakEnd:   md(time.March, 15),
	}
}

// =============================================================================
// SEASON WINDOW TESTS
// =============================================================================

func TestSeasonWindow_ContainedWindow(t *testing.T) {
	w := summerWindow()

	cases := []struct {
		date allocation.Date
		want allocation.Season
	}{
		{date(2025, time.June, 1), allocation.SeasonPeak},    // start boundary
		{date(2025, time.July, 15), allocation.SeasonPeak},   // middle
		{date(2025, time.August, 31), allocation.SeasonPeak}, // end boundary
		{date(2025, time.May, 31), allocation.SeasonOff},     // day before
		{date(2025, time.September, 1), allocation.SeasonOff},
		{date(2025, time.January, 1), allocation.SeasonOff},
	}

	for _, c := range cases {
		if got := w.Classify(c.date); got != c.want {
			t.Errorf("Classify(%s) = %s, want %s", c.date, got, c.want)
		}
	}
}

func TestSeasonWindow_WrappingWindow(t *testing.T) {
	w := skiWindow()

	cases := []struct {
		date allocation.Date
		want allocation.Season
	}{
		{date(2025, time.November, 15), allocation.SeasonPeak}, // start boundary
		{date(2025, time.December, 31), allocation.SeasonPeak}, // late side
		{date(2026, time.January, 10), allocation.SeasonPeak},  // early side
		{date(2026, time.March, 15), allocation.SeasonPeak},    // end boundary
		{date(2026, time.March, 16), allocation.SeasonOff},     // day after
		{date(2025, time.November, 14), allocation.SeasonOff},  // day before
		{date(2025, time.July, 4), allocation.SeasonOff},       // deep off season
	}

	for _, c := range cases {
		if got := w.Classify(c.date); got != c.want {
			t.Errorf("Classify(%s) = %s, want %s", c.date, got, c.want)
		}
	}
}

func TestSeasonWindow_YearIndependent(t *testing.T) {
	// The same window classifies every year identically.
	w := skiWindow()
	for year := 2024; year <= 2030; year++ {
		if got := w.Classify(date(year, time.January, 1)); got != allocation.SeasonPeak {
			t.Errorf("Jan 1 %d = %s, want peak", year, got)
		}
		if got := w.Classify(date(year, time.June, 1)); got != allocation.SeasonOff {
			t.Errorf("Jun 1 %d = %s, want off", year, got)
		}
	}
}

// =============================================================================
// HOLIDAY TESTS
// =============================================================================

func TestHoliday_Contains(t *testing.T) {
	h := allocation.Holiday{
		ID:    "xmas-2025",
		Name:  "Christmas",
		Start: date(2025, time.December, 24),
		End:   date(2025, time.December, 26),
	}

	if !h.Contains(date(2025, time.December, 24)) {
		t.Error("start date should be inside the holiday")
	}
	if !h.Contains(date(2025, time.December, 26)) {
		t.Error("end date should be inside the holiday")
	}
	if h.Contains(date(2025, time.December, 23)) {
		t.Error("day before should be outside the holiday")
	}
	if h.Contains(date(2025, time.December, 27)) {
		t.Error("day after should be outside the holiday")
	}
}

func TestHoliday_SingleDay(t *testing.T) {
	h := allocation.Holiday{
		ID:    "jul4-2025",
		Start: date(2025, time.July, 4),
		End:   date(2025, time.July, 4),
	}

	if !h.Contains(date(2025, time.July, 4)) {
		t.Error("single-day holiday should contain its own date")
	}
	if h.Contains(date(2025, time.July, 5)) {
		t.Error("single-day holiday should not contain the next day")
	}
}

func TestHolidayOn(t *testing.T) {
	holidays := []allocation.Holiday{
		{ID: "xmas", Start: date(2025, time.December, 24), End: date(2025, time.December, 26)},
		{ID: "nye", Start: date(2025, time.December, 31), End: date(2026, time.January, 1)},
	}

	if h := allocation.HolidayOn(date(2025, time.December, 25), holidays); h == nil || h.ID != "xmas" {
		t.Errorf("expected xmas, got %v", h)
	}
	if h := allocation.HolidayOn(date(2026, time.January, 1), holidays); h == nil || h.ID != "nye" {
		t.Errorf("expected nye, got %v", h)
	}
	if h := allocation.HolidayOn(date(2025, time.December, 27), holidays); h != nil {
		t.Errorf("expected no holiday, got %v", h)
	}
}
