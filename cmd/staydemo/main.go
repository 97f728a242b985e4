/*
main.go - Demo entry point

PURPOSE:

	Runs the stay allocation engine end to end against a SQLite database:
	configures a property calendar, grants an ownership share, applies a
	booking, and prints the resulting entitlement rows.

COMMAND-LINE FLAGS:

	-db      SQLite database path (default: stays.db)
	         Use ":memory:" for an in-memory database
	-rates   Optional path to a JSON rate card; defaults apply when omitted

EXAMPLES:

	# Run against a file database
	./staydemo -db="./data/stays.db"

	# Run fully in memory
	./staydemo -db=":memory:"

SEE ALSO:
  - allocation/ledger.go: Booking application
  - ownership/grant.go: Share grants
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/warp/stay-engine/allocation"
	"github.com/warp/stay-engine/factory"
	"github.com/warp/stay-engine/ownership"
	"github.com/warp/stay-engine/store/sqlite"
)

func main() {
	dbPath := flag.String("db", "stays.db", "SQLite database path")
	ratesPath := flag.String("rates", "", "JSON rate card path (optional)")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	rules := allocation.DefaultRules()
	if *ratesPath != "" {
		data, err := os.ReadFile(*ratesPath)
		if err != nil {
			log.Fatalf("Failed to read rate card: %v", err)
		}
		rules, err = factory.ParseRates(string(data))
		if err != nil {
			log.Fatalf("Failed to parse rate card: %v", err)
		}
	}

	ctx := context.Background()
	owner := allocation.OwnerID("owner-demo")
	property := allocation.PropertyID("chalet-1")

	// A ski property: peak season wraps the year boundary.
	if err := store.SetSeason(ctx, property, allocation.SeasonWindow{
		PeakStart: allocation.NewMonthDay(time.November, 15),
		PeakEnd:   allocation.NewMonthDay(time.March, 15),
	}); err != nil {
		log.Fatalf("Failed to configure season: %v", err)
	}
	if err := store.AddHoliday(ctx, property, allocation.Holiday{
		ID:    "xmas-2025",
		Name:  "Christmas",
		Start: allocation.NewDate(2025, time.December, 24),
		End:   allocation.NewDate(2025, time.December, 26),
	}); err != nil {
		log.Fatalf("Failed to configure holiday: %v", err)
	}

	clock := allocation.SystemClock()

	grants := &ownership.GrantService{Store: store, Clock: clock, Rules: rules, Audit: store}
	rows, err := grants.Grant(ctx, allocation.OwnershipShare{
		OwnerID:         owner,
		PropertyID:      property,
		ShareCount:      2,
		AcquisitionDate: clock.Today(),
	})
	if err != nil {
		log.Fatalf("Grant failed: %v", err)
	}
	log.Printf("Granted 2 shares of %s to %s (%d entitlement years)", property, owner, len(rows))

	ledger := allocation.NewLedgerService(store, store, clock, rules).WithAuditLog(store)
	bookings := &ownership.BookingService{Ledger: ledger, Store: store}

	checkin := clock.Today().AddDays(30)
	stay := allocation.StayRequest{
		OwnerID:    owner,
		PropertyID: property,
		CheckIn:    checkin,
		CheckOut:   checkin.AddDays(3),
	}
	if err := bookings.Book(ctx, stay); err != nil {
		log.Fatalf("Booking failed: %v", err)
	}
	log.Printf("Booked %s - %s (%d nights)", stay.CheckIn, stay.CheckOut, stay.Nights())

	for _, seeded := range rows {
		row, err := store.Get(ctx, owner, property, seeded.Year)
		if err != nil {
			log.Fatalf("Failed to load row: %v", err)
		}
		if row == nil {
			continue
		}
		log.Printf("  %d: peak %d/%d  off %d/%d  peak-holiday %d/%d  off-holiday %d/%d  last-minute %d/%d",
			row.Year,
			row.Peak.Remaining, row.Peak.Allotted,
			row.Off.Remaining, row.Off.Allotted,
			row.PeakHoliday.Remaining, row.PeakHoliday.Allotted,
			row.OffHoliday.Remaining, row.OffHoliday.Allotted,
			row.LastMinute.Remaining, row.LastMinute.Allotted,
		)
	}
}
