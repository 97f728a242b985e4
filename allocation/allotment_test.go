package allocation_test

import (
	"errors"
	"testing"
	"time"

	"github.com/warp/stay-engine/allocation"
)

// =============================================================================
// MAX STAY LENGTH
// =============================================================================

func TestMaxStayLength(t *testing.T) {
	cases := []struct {
		shares int
		want   int
	}{
		{1, 14},
		{2, 21},
		{3, 28},
		{4, 28}, // capped
		{10, 28},
	}
	for _, c := range cases {
		if got := allocation.MaxStayLength(c.shares); got != c.want {
			t.Errorf("MaxStayLength(%d) = %d, want %d", c.shares, got, c.want)
		}
	}
}

// =============================================================================
// INITIAL ALLOTMENTS
// =============================================================================

func TestComputeInitialAllotments_ThreeYears(t *testing.T) {
	// GIVEN: a two-share grant acquired before the current year
	// WHEN: initial rows are computed for today in 2025
	// THEN: three rows (2025..2027), none prorated, rates scaled by shares

	rows, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 2,
		date(2024, time.March, 1), date(2025, time.January, 1),
		allocation.DefaultRules(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}

	for i, row := range rows {
		wantYear := 2025 + i
		if row.Year != wantYear {
			t.Errorf("row %d year = %d, want %d", i, row.Year, wantYear)
		}
		if row.Peak.Allotted != 30 || row.Peak.Remaining != 30 || row.Peak.Booked != 0 {
			t.Errorf("year %d peak = %+v, want 30 allotted", row.Year, row.Peak)
		}
		if row.Off.Allotted != 30 {
			t.Errorf("year %d off = %d, want 30", row.Year, row.Off.Allotted)
		}
		if row.PeakHoliday.Allotted != 4 || row.OffHoliday.Allotted != 4 {
			t.Errorf("year %d holiday pools = %d/%d, want 4/4", row.Year, row.PeakHoliday.Allotted, row.OffHoliday.Allotted)
		}
		if row.LastMinute.Allotted != 10 {
			t.Errorf("year %d last minute = %d, want 10", row.Year, row.LastMinute.Allotted)
		}
		if row.MaxStayLength != 21 {
			t.Errorf("year %d max stay = %d, want 21", row.Year, row.MaxStayLength)
		}
		if row.Version != 0 {
			t.Errorf("year %d version = %d, want 0 (never persisted)", row.Year, row.Version)
		}
	}
}

func TestComputeInitialAllotments_FirstYearProration(t *testing.T) {
	// GIVEN: one share acquired June 1 of the leap year 2024, base 10
	// WHEN: initial rows are computed
	// THEN: 213 days remain through Dec 30, divisor is 365 (366 - 1), so
	//       floor(213 * 10 / 365) = 5 prorated nights

	rules := allocation.DefaultRules()
	rules.PeakNightsPerShare = 10
	rules.OffNightsPerShare = 10

	rows, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 1,
		date(2024, time.June, 1), date(2024, time.June, 1),
		rules,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first := rows[0]
	if first.Peak.Allotted != 5 {
		t.Errorf("prorated peak = %d, want 5", first.Peak.Allotted)
	}
	if first.Off.Allotted != 5 {
		t.Errorf("prorated off = %d, want 5", first.Off.Allotted)
	}
	// Holiday and last-minute pools are never prorated.
	if first.PeakHoliday.Allotted != rules.PeakHolidayNightsPerShare {
		t.Errorf("peak holiday = %d, want %d", first.PeakHoliday.Allotted, rules.PeakHolidayNightsPerShare)
	}
	if first.LastMinute.Allotted != rules.LastMinuteNightsPerShare {
		t.Errorf("last minute = %d, want %d", first.LastMinute.Allotted, rules.LastMinuteNightsPerShare)
	}
	// Later years get the full base.
	if rows[1].Peak.Allotted != 10 {
		t.Errorf("second year peak = %d, want 10", rows[1].Peak.Allotted)
	}
}

func TestComputeInitialAllotments_Dec31AcquisitionNotProrated(t *testing.T) {
	// The entitlement year ends Dec 30; an acquisition on Dec 31 falls
	// past it and keeps the full base.
	rows, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 1,
		date(2025, time.December, 31), date(2025, time.December, 31),
		allocation.DefaultRules(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Peak.Allotted != 15 {
		t.Errorf("peak = %d, want full 15", rows[0].Peak.Allotted)
	}
}

func TestComputeInitialAllotments_Jan1AcquisitionFullYear(t *testing.T) {
	rows, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 1,
		date(2025, time.January, 1), date(2025, time.January, 1),
		allocation.DefaultRules(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].Peak.Allotted != 15 {
		t.Errorf("peak = %d, want 15 (full year remains)", rows[0].Peak.Allotted)
	}
}

func TestComputeInitialAllotments_InvalidShareCount(t *testing.T) {
	_, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 0,
		date(2025, time.January, 1), date(2025, time.January, 1),
		allocation.DefaultRules(),
	)
	if !errors.Is(err, allocation.ErrInvalidShareCount) {
		t.Fatalf("expected ErrInvalidShareCount, got %v", err)
	}
}

func TestComputeInitialAllotments_InvalidRules(t *testing.T) {
	rules := allocation.DefaultRules()
	rules.PeakNightsPerShare = -1

	_, err := allocation.ComputeInitialAllotments(
		"own-1", "prop-1", 1,
		date(2025, time.January, 1), date(2025, time.January, 1),
		rules,
	)
	if !errors.Is(err, allocation.ErrInvalidRuleConfig) {
		t.Fatalf("expected ErrInvalidRuleConfig, got %v", err)
	}
}

// =============================================================================
// POOL DEBITS
// =============================================================================

func TestDebit_MaintainsPoolInvariant(t *testing.T) {
	row := allocation.YearlyAllotment{
		OwnerID: "own-1", PropertyID: "prop-1", Year: 2025,
		Peak: allocation.Pool{Allotted: 15, Remaining: 15},
	}

	if err := row.Debit(allocation.CategoryPeak, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Peak.Remaining != 10 || row.Peak.Booked != 5 {
		t.Errorf("peak = %+v, want remaining 10 booked 5", row.Peak)
	}
	if row.Peak.Remaining != row.Peak.Allotted-row.Peak.Booked {
		t.Error("pool invariant broken")
	}
}

func TestDebit_Overdraft(t *testing.T) {
	row := allocation.YearlyAllotment{
		OwnerID: "own-1", PropertyID: "prop-1", Year: 2025,
		Off: allocation.Pool{Allotted: 3, Remaining: 3},
	}

	err := row.Debit(allocation.CategoryOff, 4)
	if !errors.Is(err, allocation.ErrOverAllotment) {
		t.Fatalf("expected ErrOverAllotment, got %v", err)
	}

	var overErr *allocation.OverAllotmentError
	if !errors.As(err, &overErr) {
		t.Fatal("expected *OverAllotmentError")
	}
	if overErr.Category != allocation.CategoryOff || overErr.Requested != 4 || overErr.Remaining != 3 {
		t.Errorf("error fields = %+v", overErr)
	}

	// Rejected debits leave the pool untouched.
	if row.Off.Remaining != 3 || row.Off.Booked != 0 {
		t.Errorf("pool mutated on failed debit: %+v", row.Off)
	}
}

func TestDebit_ZeroNightsNoOp(t *testing.T) {
	row := allocation.YearlyAllotment{
		Peak: allocation.Pool{Allotted: 15, Remaining: 15},
	}
	if err := row.Debit(allocation.CategoryPeak, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if row.Peak.Remaining != 15 || row.Peak.Booked != 0 {
		t.Errorf("zero debit mutated the pool: %+v", row.Peak)
	}
}

func TestDebit_ExactRemaining(t *testing.T) {
	row := allocation.YearlyAllotment{
		LastMinute: allocation.Pool{Allotted: 5, Remaining: 5},
	}
	if err := row.Debit(allocation.CategoryLastMinute, 5); err != nil {
		t.Fatalf("should be able to drain a pool to zero: %v", err)
	}
	if row.LastMinute.Remaining != 0 || row.LastMinute.Booked != 5 {
		t.Errorf("pool = %+v", row.LastMinute)
	}
}

// =============================================================================
// RULE CONFIG
// =============================================================================

func TestRuleConfig_Validate(t *testing.T) {
	if err := allocation.DefaultRules().Validate(); err != nil {
		t.Fatalf("default rules should validate: %v", err)
	}

	bad := allocation.DefaultRules()
	bad.LastMinuteThresholdDays = -1
	if err := bad.Validate(); !errors.Is(err, allocation.ErrInvalidRuleConfig) {
		t.Fatalf("expected ErrInvalidRuleConfig, got %v", err)
	}
}
