/*
banking.go - Alternating-year peak-holiday redistribution

PURPOSE:

	Peak-holiday entitlement is shared between pairs of ownership years:
	consuming a peak-holiday night in one year also consumes entitlement
	from that year's alternating-parity partner. This file resolves which
	partner year (if any) a consumption propagates to.

PARITY:

	Years are numbered from the acquisition year: the acquisition year is
	ownership year 1, the next is 2, and so on. Odd ownership years pair
	forward (partner = year + 1); even ownership years pair backward
	(partner = year - 1).

TIME WINDOW:

	Redistribution only fires when the booking year sits inside a narrow
	window around the current year: odd years propagate when booked for the
	current or next year, even years when booked one or two years ahead.
	Outside the window the consumption stays local to its own year.

	Pure function of (acquisitionYear, bookingYear, currentYear) so it can
	be tested without a wall clock.

SEE ALSO:
  - ledger.go: Applies the resolved debit to the partner year's row
*/
package allocation

// ResolveBankingYear returns the partner year a peak-holiday consumption in
// bookingYear also debits, and whether redistribution applies at all.
func ResolveBankingYear(acquisitionYear, bookingYear, currentYear int) (int, bool) {
	ownershipYear := bookingYear - acquisitionYear + 1
	even := ownershipYear%2 == 0

	switch {
	case !even && (currentYear == bookingYear || currentYear+1 == bookingYear):
		return bookingYear + 1, true
	case even && (currentYear+1 == bookingYear || currentYear+2 == bookingYear):
		return bookingYear - 1, true
	default:
		return 0, false
	}
}
