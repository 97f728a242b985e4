package factory_test

import (
	"errors"
	"testing"

	"github.com/warp/stay-engine/allocation"
	"github.com/warp/stay-engine/factory"
)

func TestParseRates_FullRateCard(t *testing.T) {
	jsonStr := `{
		"peak_nights_per_share": 20,
		"off_nights_per_share": 18,
		"peak_holiday_nights_per_share": 3,
		"off_holiday_nights_per_share": 1,
		"last_minute_nights_per_share": 4,
		"last_minute_threshold_days": 10
	}`

	rules, err := factory.ParseRates(jsonStr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rules.PeakNightsPerShare != 20 {
		t.Errorf("peak = %d, want 20", rules.PeakNightsPerShare)
	}
	if rules.OffNightsPerShare != 18 {
		t.Errorf("off = %d, want 18", rules.OffNightsPerShare)
	}
	if rules.PeakHolidayNightsPerShare != 3 {
		t.Errorf("peak holiday = %d, want 3", rules.PeakHolidayNightsPerShare)
	}
	if rules.OffHolidayNightsPerShare != 1 {
		t.Errorf("off holiday = %d, want 1", rules.OffHolidayNightsPerShare)
	}
	if rules.LastMinuteNightsPerShare != 4 {
		t.Errorf("last minute = %d, want 4", rules.LastMinuteNightsPerShare)
	}
	if rules.LastMinuteThresholdDays != 10 {
		t.Errorf("threshold = %d, want 10", rules.LastMinuteThresholdDays)
	}
}

func TestParseRates_OmittedFieldsUseDefaults(t *testing.T) {
	rules, err := factory.ParseRates(`{"peak_nights_per_share": 22}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	defaults := allocation.DefaultRules()
	if rules.PeakNightsPerShare != 22 {
		t.Errorf("peak = %d, want 22", rules.PeakNightsPerShare)
	}
	if rules.OffNightsPerShare != defaults.OffNightsPerShare {
		t.Errorf("off = %d, want default %d", rules.OffNightsPerShare, defaults.OffNightsPerShare)
	}
	if rules.LastMinuteThresholdDays != defaults.LastMinuteThresholdDays {
		t.Errorf("threshold = %d, want default %d", rules.LastMinuteThresholdDays, defaults.LastMinuteThresholdDays)
	}
}

func TestParseRates_EmptyObjectIsDefaults(t *testing.T) {
	rules, err := factory.ParseRates(`{}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules != allocation.DefaultRules() {
		t.Errorf("rules = %+v, want defaults", rules)
	}
}

func TestParseRates_ExplicitZeroIsNotOmitted(t *testing.T) {
	rules, err := factory.ParseRates(`{"last_minute_nights_per_share": 0}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rules.LastMinuteNightsPerShare != 0 {
		t.Errorf("last minute = %d, want explicit 0", rules.LastMinuteNightsPerShare)
	}
}

func TestParseRates_NegativeRejected(t *testing.T) {
	_, err := factory.ParseRates(`{"off_nights_per_share": -5}`)
	if !errors.Is(err, allocation.ErrInvalidRuleConfig) {
		t.Fatalf("expected ErrInvalidRuleConfig, got %v", err)
	}
}

func TestParseRates_MalformedJSON(t *testing.T) {
	_, err := factory.ParseRates(`{not json`)
	if err == nil {
		t.Fatal("expected a parse error")
	}
}

func TestRatesToJSON_RoundTrip(t *testing.T) {
	original := allocation.RuleConfig{
		PeakNightsPerShare:        12,
		OffNightsPerShare:         13,
		PeakHolidayNightsPerShare: 2,
		OffHolidayNightsPerShare:  1,
		LastMinuteNightsPerShare:  6,
		LastMinuteThresholdDays:   3,
	}

	parsed, err := factory.ParseRates(factory.RatesToJSON(original))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != original {
		t.Errorf("round trip changed the rules: %+v != %+v", parsed, original)
	}
}
