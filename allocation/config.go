/*
config.go - Rule configuration snapshot

PURPOSE:

	Bundles the per-share base rates and booking thresholds the engine runs
	on. The snapshot is passed in explicitly - constructed once, swapped
	atomically on reload - rather than read from a process-wide cache, so
	tests substitute fixed rates and a reload never tears a booking in half.

SEE ALSO:
  - allotment.go:  Uses the base rates at grant time
  - ledger.go:     Uses the last-minute threshold per booking
  - factory/rates.go: Parses snapshots from JSON
*/
package allocation

import "fmt"

// RuleConfig is an immutable snapshot of the engine's rule constants.
// All night rates are per share and scale linearly with share count.
type RuleConfig struct {
	PeakNightsPerShare        int
	OffNightsPerShare         int
	PeakHolidayNightsPerShare int
	OffHolidayNightsPerShare  int
	LastMinuteNightsPerShare  int

	// LastMinuteThresholdDays: a stay checking in within this many days of
	// the booking date draws from the last-minute pool instead of the
	// seasonal pools.
	LastMinuteThresholdDays int
}

// DefaultRules returns the standard rate card.
func DefaultRules() RuleConfig {
	return RuleConfig{
		PeakNightsPerShare:        15,
		OffNightsPerShare:         15,
		PeakHolidayNightsPerShare: 2,
		OffHolidayNightsPerShare:  2,
		LastMinuteNightsPerShare:  5,
		LastMinuteThresholdDays:   7,
	}
}

// Validate rejects snapshots that could never represent a real rate card.
func (c RuleConfig) Validate() error {
	for _, f := range []struct {
		name  string
		value int
	}{
		{"peak nights per share", c.PeakNightsPerShare},
		{"off nights per share", c.OffNightsPerShare},
		{"peak holiday nights per share", c.PeakHolidayNightsPerShare},
		{"off holiday nights per share", c.OffHolidayNightsPerShare},
		{"last minute nights per share", c.LastMinuteNightsPerShare},
		{"last minute threshold days", c.LastMinuteThresholdDays},
	} {
		if f.value < 0 {
			return fmt.Errorf("%w: %s is negative", ErrInvalidRuleConfig, f.name)
		}
	}
	return nil
}
