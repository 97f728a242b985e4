/*
Package factory provides JSON to Go rule-configuration conversion.

PURPOSE:

	Converts JSON rate-card definitions into allocation.RuleConfig
	snapshots. This enables rate changes without code changes - operations
	can define rate cards in JSON, and the factory produces the snapshot
	the engine is reloaded with.

JSON SCHEMA:

	{
	  "peak_nights_per_share": 15,
	  "off_nights_per_share": 15,
	  "peak_holiday_nights_per_share": 2,
	  "off_holiday_nights_per_share": 2,
	  "last_minute_nights_per_share": 5,
	  "last_minute_threshold_days": 7
	}

	Omitted fields fall back to the default rate card; negative values are
	rejected.

USAGE:

	rules, err := factory.ParseRates(jsonString)
	...
	ledger.SetRules(rules)
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/stay-engine/allocation"
)

// RatesJSON is the JSON representation of a rate card. Pointer fields
// distinguish "omitted" from an explicit zero.
type RatesJSON struct {
	PeakNightsPerShare        *int `json:"peak_nights_per_share,omitempty"`
	OffNightsPerShare         *int `json:"off_nights_per_share,omitempty"`
	PeakHolidayNightsPerShare *int `json:"peak_holiday_nights_per_share,omitempty"`
	OffHolidayNightsPerShare  *int `json:"off_holiday_nights_per_share,omitempty"`
	LastMinuteNightsPerShare  *int `json:"last_minute_nights_per_share,omitempty"`
	LastMinuteThresholdDays   *int `json:"last_minute_threshold_days,omitempty"`
}

// ParseRates converts a JSON rate card into a validated rule snapshot.
func ParseRates(jsonStr string) (allocation.RuleConfig, error) {
	var rj RatesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return allocation.RuleConfig{}, fmt.Errorf("failed to parse rates JSON: %w", err)
	}

	rules := allocation.DefaultRules()
	apply := func(dst *int, src *int) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&rules.PeakNightsPerShare, rj.PeakNightsPerShare)
	apply(&rules.OffNightsPerShare, rj.OffNightsPerShare)
	apply(&rules.PeakHolidayNightsPerShare, rj.PeakHolidayNightsPerShare)
	apply(&rules.OffHolidayNightsPerShare, rj.OffHolidayNightsPerShare)
	apply(&rules.LastMinuteNightsPerShare, rj.LastMinuteNightsPerShare)
	apply(&rules.LastMinuteThresholdDays, rj.LastMinuteThresholdDays)

	if err := rules.Validate(); err != nil {
		return allocation.RuleConfig{}, err
	}
	return rules, nil
}

// RatesToJSON renders a rule snapshot back to its JSON form.
func RatesToJSON(rules allocation.RuleConfig) string {
	rj := RatesJSON{
		PeakNightsPerShare:        &rules.PeakNightsPerShare,
		OffNightsPerShare:         &rules.OffNightsPerShare,
		PeakHolidayNightsPerShare: &rules.PeakHolidayNightsPerShare,
		OffHolidayNightsPerShare:  &rules.OffHolidayNightsPerShare,
		LastMinuteNightsPerShare:  &rules.LastMinuteNightsPerShare,
		LastMinuteThresholdDays:   &rules.LastMinuteThresholdDays,
	}
	b, _ := json.MarshalIndent(rj, "", "  ")
	return string(b)
}
