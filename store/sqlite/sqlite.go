/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:

	Implements all persistence interfaces (AllotmentStore, PropertyConfigSource,
	AuditLog) using SQLite. In production, the same patterns apply to
	PostgreSQL - only minor SQL dialect differences.

INTERFACES IMPLEMENTED:

	allocation.AllotmentStore:       Entitlement rows and ownership shares
	allocation.PropertyConfigSource: Season window + holiday list per property
	allocation.AuditLog:             Append-only event history

KEY TABLES:

	allotments:    One row per (owner, property, year), five pools each
	shares:        Ownership grants (immutable after creation)
	seasons:       Peak window per property
	holidays:      Observed holiday ranges per property
	audit_entries: Append-only event log

OPTIMISTIC CONCURRENCY:

	Every allotment row carries a version. Save() inserts at version 1 when
	the in-memory row is at version 0, otherwise updates with a
	WHERE version = ? guard; a miss surfaces ErrConcurrentModification.

CONFIG CACHING:

	Season windows and holiday lists are read on every booking but change
	rarely, so reads go through a TTL cache (go-cache). Writes through
	SetSeason/AddHoliday invalidate the affected property's entries.

WAL MODE:

	SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
	- Multiple readers don't block
	- Single writer at a time
	- Better crash recovery

USAGE:

	store, err := sqlite.New("./data/stays.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	ledger := allocation.NewLedgerService(store, store, allocation.SystemClock(), allocation.DefaultRules())

MIGRATION:

	Schema is auto-migrated on New(). For production, use a proper
	migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - allocation/store.go: Interface definitions
  - allocation/ledger.go: The service driving these rows
  - allocation/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	gocache "github.com/patrickmn/go-cache"

	"github.com/warp/stay-engine/allocation"
)

const (
	configCacheTTL   = 5 * time.Minute
	configCacheSweep = 10 * time.Minute
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db    *sql.DB
	mu    sync.RWMutex
	cache *gocache.Cache
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:    db,
		cache: gocache.New(configCacheTTL, configCacheSweep),
	}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Entitlement rows (one per owner, property, year)
	CREATE TABLE IF NOT EXISTS allotments (
		owner_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		peak_allotted INTEGER NOT NULL,
		peak_booked INTEGER NOT NULL,
		off_allotted INTEGER NOT NULL,
		off_booked INTEGER NOT NULL,
		peak_holiday_allotted INTEGER NOT NULL,
		peak_holiday_booked INTEGER NOT NULL,
		off_holiday_allotted INTEGER NOT NULL,
		off_holiday_booked INTEGER NOT NULL,
		last_minute_allotted INTEGER NOT NULL,
		last_minute_booked INTEGER NOT NULL,
		max_stay_length INTEGER NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (owner_id, property_id, year)
	);

	CREATE INDEX IF NOT EXISTS idx_allotments_owner
		ON allotments(owner_id, property_id);

	-- Ownership shares (immutable grants)
	CREATE TABLE IF NOT EXISTS shares (
		owner_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		share_count INTEGER NOT NULL,
		acquisition_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (owner_id, property_id)
	);

	-- Season window per property
	CREATE TABLE IF NOT EXISTS seasons (
		property_id TEXT PRIMARY KEY,
		peak_start_month INTEGER NOT NULL,
		peak_start_day INTEGER NOT NULL,
		peak_end_month INTEGER NOT NULL,
		peak_end_day INTEGER NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Observed holidays per property
	CREATE TABLE IF NOT EXISTS holidays (
		id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		name TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		PRIMARY KEY (property_id, id)
	);

	CREATE INDEX IF NOT EXISTS idx_holidays_property
		ON holidays(property_id, start_date);

	-- Audit log (append-only)
	CREATE TABLE IF NOT EXISTS audit_entries (
		id TEXT PRIMARY KEY,
		at TEXT NOT NULL,
		owner_id TEXT NOT NULL,
		property_id TEXT NOT NULL,
		action TEXT NOT NULL,
		payload_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_audit_owner
		ON audit_entries(owner_id, property_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// queryer abstracts *sql.DB and *sql.Tx so row operations can run either
// directly or inside a transaction.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// =============================================================================
// ALLOTMENT STORE (allocation.AllotmentStore interface)
// =============================================================================

// Get returns the row for (owner, property, year), or nil if absent.
func (s *Store) Get(ctx context.Context, owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getAllotment(ctx, s.db, owner, property, year)
}

func getAllotment(ctx context.Context, q queryer, owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	query := `
		SELECT owner_id, property_id, year,
		       peak_allotted, peak_booked,
		       off_allotted, off_booked,
		       peak_holiday_allotted, peak_holiday_booked,
		       off_holiday_allotted, off_holiday_booked,
		       last_minute_allotted, last_minute_booked,
		       max_stay_length, version
		FROM allotments
		WHERE owner_id = ? AND property_id = ? AND year = ?
	`

	var row allocation.YearlyAllotment
	err := q.QueryRowContext(ctx, query, string(owner), string(property), year).Scan(
		&row.OwnerID, &row.PropertyID, &row.Year,
		&row.Peak.Allotted, &row.Peak.Booked,
		&row.Off.Allotted, &row.Off.Booked,
		&row.PeakHoliday.Allotted, &row.PeakHoliday.Booked,
		&row.OffHoliday.Allotted, &row.OffHoliday.Booked,
		&row.LastMinute.Allotted, &row.LastMinute.Booked,
		&row.MaxStayLength, &row.Version,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load allotment: %w", err)
	}

	// Remaining is derived, not stored.
	for _, p := range []*allocation.Pool{&row.Peak, &row.Off, &row.PeakHoliday, &row.OffHoliday, &row.LastMinute} {
		p.Remaining = p.Allotted - p.Booked
	}
	return &row, nil
}

// Save writes a row, enforcing the optimistic version check.
func (s *Store) Save(ctx context.Context, row allocation.YearlyAllotment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveAllotment(ctx, s.db, row)
}

func saveAllotment(ctx context.Context, q queryer, row allocation.YearlyAllotment) error {
	now := time.Now().UTC().Format(time.RFC3339)

	if row.Version == 0 {
		query := `
			INSERT INTO allotments
			(owner_id, property_id, year,
			 peak_allotted, peak_booked, off_allotted, off_booked,
			 peak_holiday_allotted, peak_holiday_booked,
			 off_holiday_allotted, off_holiday_booked,
			 last_minute_allotted, last_minute_booked,
			 max_stay_length, version, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
		`
		_, err := q.ExecContext(ctx, query,
			string(row.OwnerID), string(row.PropertyID), row.Year,
			row.Peak.Allotted, row.Peak.Booked,
			row.Off.Allotted, row.Off.Booked,
			row.PeakHoliday.Allotted, row.PeakHoliday.Booked,
			row.OffHoliday.Allotted, row.OffHoliday.Booked,
			row.LastMinute.Allotted, row.LastMinute.Booked,
			row.MaxStayLength, now,
		)
		if err != nil {
			if isUniqueConstraintError(err) {
				return allocation.ErrConcurrentModification
			}
			return fmt.Errorf("failed to insert allotment: %w", err)
		}
		return nil
	}

	query := `
		UPDATE allotments SET
			peak_allotted = ?, peak_booked = ?,
			off_allotted = ?, off_booked = ?,
			peak_holiday_allotted = ?, peak_holiday_booked = ?,
			off_holiday_allotted = ?, off_holiday_booked = ?,
			last_minute_allotted = ?, last_minute_booked = ?,
			max_stay_length = ?, version = version + 1, updated_at = ?
		WHERE owner_id = ? AND property_id = ? AND year = ? AND version = ?
	`
	res, err := q.ExecContext(ctx, query,
		row.Peak.Allotted, row.Peak.Booked,
		row.Off.Allotted, row.Off.Booked,
		row.PeakHoliday.Allotted, row.PeakHoliday.Booked,
		row.OffHoliday.Allotted, row.OffHoliday.Booked,
		row.LastMinute.Allotted, row.LastMinute.Booked,
		row.MaxStayLength, now,
		string(row.OwnerID), string(row.PropertyID), row.Year, row.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update allotment: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return allocation.ErrConcurrentModification
	}
	return nil
}

// GetShare returns the ownership share for (owner, property), or nil.
func (s *Store) GetShare(ctx context.Context, owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return getShare(ctx, s.db, owner, property)
}

func getShare(ctx context.Context, q queryer, owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	var share allocation.OwnershipShare
	var acquired string

	err := q.QueryRowContext(ctx,
		"SELECT owner_id, property_id, share_count, acquisition_date FROM shares WHERE owner_id = ? AND property_id = ?",
		string(owner), string(property),
	).Scan(&share.OwnerID, &share.PropertyID, &share.ShareCount, &acquired)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load share: %w", err)
	}

	share.AcquisitionDate, err = allocation.ParseDate(acquired)
	if err != nil {
		return nil, fmt.Errorf("failed to parse acquisition date: %w", err)
	}
	return &share, nil
}

// SaveShare records a new ownership share.
func (s *Store) SaveShare(ctx context.Context, share allocation.OwnershipShare) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return saveShare(ctx, s.db, share)
}

func saveShare(ctx context.Context, q queryer, share allocation.OwnershipShare) error {
	_, err := q.ExecContext(ctx,
		"INSERT INTO shares (owner_id, property_id, share_count, acquisition_date, created_at) VALUES (?, ?, ?, ?, ?)",
		string(share.OwnerID), string(share.PropertyID), share.ShareCount,
		share.AcquisitionDate.String(),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save share: %w", err)
	}
	return nil
}

// =============================================================================
// TRANSACTIONAL STORE
// =============================================================================

// WithTx executes a function within a database transaction. Reads inside
// the transaction observe its own uncommitted writes, which matters when a
// booking debits the same row twice (stay year and banking target).
func (s *Store) WithTx(ctx context.Context, fn func(store allocation.AllotmentStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Get(ctx context.Context, owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	return getAllotment(ctx, ts.tx, owner, property, year)
}

func (ts *txStore) Save(ctx context.Context, row allocation.YearlyAllotment) error {
	return saveAllotment(ctx, ts.tx, row)
}

func (ts *txStore) GetShare(ctx context.Context, owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	return getShare(ctx, ts.tx, owner, property)
}

func (ts *txStore) SaveShare(ctx context.Context, share allocation.OwnershipShare) error {
	return saveShare(ctx, ts.tx, share)
}

// Nested WithTx reuses the already-open transaction.
func (ts *txStore) WithTx(ctx context.Context, fn func(store allocation.AllotmentStore) error) error {
	return fn(ts)
}

// =============================================================================
// PROPERTY CONFIG SOURCE (allocation.PropertyConfigSource interface)
// =============================================================================

func seasonCacheKey(property allocation.PropertyID) string {
	return "season:" + string(property)
}

func holidayCacheKey(property allocation.PropertyID) string {
	return "holidays:" + string(property)
}

// Season returns the property's peak window, wrapping
// ErrMissingPropertyConfig when none is configured.
func (s *Store) Season(ctx context.Context, property allocation.PropertyID) (allocation.SeasonWindow, error) {
	if cached, ok := s.cache.Get(seasonCacheKey(property)); ok {
		return cached.(allocation.SeasonWindow), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var startMonth, startDay, endMonth, endDay int
	err := s.db.QueryRowContext(ctx,
		"SELECT peak_start_month, peak_start_day, peak_end_month, peak_end_day FROM seasons WHERE property_id = ?",
		string(property),
	).Scan(&startMonth, &startDay, &endMonth, &endDay)

	if err == sql.ErrNoRows {
		return allocation.SeasonWindow{}, fmt.Errorf("property %s: %w", property, allocation.ErrMissingPropertyConfig)
	}
	if err != nil {
		return allocation.SeasonWindow{}, fmt.Errorf("failed to load season window: %w", err)
	}

	window := allocation.SeasonWindow{
		PeakStart: allocation.NewMonthDay(time.Month(startMonth), startDay),
		PeakEnd:   allocation.NewMonthDay(time.Month(endMonth), endDay),
	}
	s.cache.SetDefault(seasonCacheKey(property), window)
	return window, nil
}

// Holidays returns the property's observed holidays, empty if none.
func (s *Store) Holidays(ctx context.Context, property allocation.PropertyID) ([]allocation.Holiday, error) {
	if cached, ok := s.cache.Get(holidayCacheKey(property)); ok {
		return cached.([]allocation.Holiday), nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, start_date, end_date FROM holidays WHERE property_id = ? ORDER BY start_date ASC",
		string(property),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load holidays: %w", err)
	}
	defer rows.Close()

	var holidays []allocation.Holiday
	for rows.Next() {
		var h allocation.Holiday
		var start, end string
		if err := rows.Scan(&h.ID, &h.Name, &start, &end); err != nil {
			return nil, fmt.Errorf("failed to scan holiday: %w", err)
		}
		if h.Start, err = allocation.ParseDate(start); err != nil {
			return nil, fmt.Errorf("failed to parse holiday start: %w", err)
		}
		if h.End, err = allocation.ParseDate(end); err != nil {
			return nil, fmt.Errorf("failed to parse holiday end: %w", err)
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cache.SetDefault(holidayCacheKey(property), holidays)
	return holidays, nil
}

// SetSeason configures a property's peak window and invalidates the cache.
func (s *Store) SetSeason(ctx context.Context, property allocation.PropertyID, window allocation.SeasonWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO seasons (property_id, peak_start_month, peak_start_day, peak_end_month, peak_end_day, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(property_id) DO UPDATE SET
			peak_start_month = excluded.peak_start_month,
			peak_start_day = excluded.peak_start_day,
			peak_end_month = excluded.peak_end_month,
			peak_end_day = excluded.peak_end_day,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		string(property),
		int(window.PeakStart.Month), window.PeakStart.Day,
		int(window.PeakEnd.Month), window.PeakEnd.Day,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save season window: %w", err)
	}

	s.cache.Delete(seasonCacheKey(property))
	return nil
}

// AddHoliday registers a holiday for a property and invalidates the cache.
func (s *Store) AddHoliday(ctx context.Context, property allocation.PropertyID, h allocation.Holiday) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO holidays (id, property_id, name, start_date, end_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(property_id, id) DO UPDATE SET
			name = excluded.name,
			start_date = excluded.start_date,
			end_date = excluded.end_date
	`
	_, err := s.db.ExecContext(ctx, query,
		h.ID, string(property), h.Name, h.Start.String(), h.End.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to save holiday: %w", err)
	}

	s.cache.Delete(holidayCacheKey(property))
	return nil
}

// =============================================================================
// AUDIT LOG (allocation.AuditLog interface)
// =============================================================================

// Append records an audit entry.
func (s *Store) Append(ctx context.Context, entry allocation.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payloadJSON, _ := json.Marshal(entry.Payload)

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO audit_entries (id, at, owner_id, property_id, action, payload_json, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		entry.ID,
		entry.Timestamp.String(),
		string(entry.OwnerID), string(entry.PropertyID),
		string(entry.Action),
		string(payloadJSON),
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// AuditEntries returns the audit history for an owner and property,
// oldest first.
func (s *Store) AuditEntries(ctx context.Context, owner allocation.OwnerID, property allocation.PropertyID) ([]allocation.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, at, owner_id, property_id, action, payload_json FROM audit_entries WHERE owner_id = ? AND property_id = ? ORDER BY created_at ASC",
		string(owner), string(property),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []allocation.AuditEntry
	for rows.Next() {
		var e allocation.AuditEntry
		var at string
		var payloadJSON sql.NullString
		if err := rows.Scan(&e.ID, &at, &e.OwnerID, &e.PropertyID, &e.Action, &payloadJSON); err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if e.Timestamp, err = allocation.ParseDate(at); err != nil {
			return nil, fmt.Errorf("failed to parse audit timestamp: %w", err)
		}
		if payloadJSON.Valid && payloadJSON.String != "" {
			json.Unmarshal([]byte(payloadJSON.String), &e.Payload)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"allotments", "shares", "seasons", "holidays", "audit_entries"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	s.cache.Flush()
	return nil
}

func isUniqueConstraintError(err error) bool {
	return err != nil && contains(err.Error(), "UNIQUE constraint failed")
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
