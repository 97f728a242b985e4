// Package store provides AllotmentStore implementations.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/warp/stay-engine/allocation"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu         sync.RWMutex
	allotments map[rowKey]allocation.YearlyAllotment
	shares     map[pairKey]allocation.OwnershipShare
}

type rowKey struct {
	Owner    allocation.OwnerID
	Property allocation.PropertyID
	Year     int
}

type pairKey struct {
	Owner    allocation.OwnerID
	Property allocation.PropertyID
}

func NewMemory() *Memory {
	return &Memory{
		allotments: make(map[rowKey]allocation.YearlyAllotment),
		shares:     make(map[pairKey]allocation.OwnershipShare),
	}
}

func (m *Memory) Get(_ context.Context, owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getLocked(owner, property, year)
}

func (m *Memory) getLocked(owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	row, ok := m.allotments[rowKey{Owner: owner, Property: property, Year: year}]
	if !ok {
		return nil, nil
	}
	out := row
	return &out, nil
}

func (m *Memory) Save(_ context.Context, row allocation.YearlyAllotment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveLocked(row)
}

func (m *Memory) saveLocked(row allocation.YearlyAllotment) error {
	k := rowKey{Owner: row.OwnerID, Property: row.PropertyID, Year: row.Year}
	if existing, ok := m.allotments[k]; ok && existing.Version != row.Version {
		return allocation.ErrConcurrentModification
	}
	row.Version++
	m.allotments[k] = row
	return nil
}

func (m *Memory) GetShare(_ context.Context, owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getShareLocked(owner, property)
}

func (m *Memory) getShareLocked(owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	share, ok := m.shares[pairKey{Owner: owner, Property: property}]
	if !ok {
		return nil, nil
	}
	out := share
	return &out, nil
}

func (m *Memory) SaveShare(_ context.Context, share allocation.OwnershipShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveShareLocked(share)
}

func (m *Memory) saveShareLocked(share allocation.OwnershipShare) error {
	m.shares[pairKey{Owner: share.OwnerID, Property: share.PropertyID}] = share
	return nil
}

// WithTx executes fn atomically. For the memory store this is simulated
// with a snapshot + restore on error.
func (m *Memory) WithTx(_ context.Context, fn func(allocation.AllotmentStore) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(&txMemoryView{parent: m}); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	allotments map[rowKey]allocation.YearlyAllotment
	shares     map[pairKey]allocation.OwnershipShare
}

func (m *Memory) snapshot() memorySnapshot {
	rows := make(map[rowKey]allocation.YearlyAllotment, len(m.allotments))
	for k, v := range m.allotments {
		rows[k] = v
	}
	shares := make(map[pairKey]allocation.OwnershipShare, len(m.shares))
	for k, v := range m.shares {
		shares[k] = v
	}
	return memorySnapshot{allotments: rows, shares: shares}
}

func (m *Memory) restore(s memorySnapshot) {
	m.allotments = s.allotments
	m.shares = s.shares
}

// txMemoryView writes directly into the parent, which holds its lock for
// the duration of WithTx.
type txMemoryView struct {
	parent *Memory
}

func (tv *txMemoryView) Get(_ context.Context, owner allocation.OwnerID, property allocation.PropertyID, year int) (*allocation.YearlyAllotment, error) {
	return tv.parent.getLocked(owner, property, year)
}

func (tv *txMemoryView) Save(_ context.Context, row allocation.YearlyAllotment) error {
	return tv.parent.saveLocked(row)
}

func (tv *txMemoryView) GetShare(_ context.Context, owner allocation.OwnerID, property allocation.PropertyID) (*allocation.OwnershipShare, error) {
	return tv.parent.getShareLocked(owner, property)
}

func (tv *txMemoryView) SaveShare(_ context.Context, share allocation.OwnershipShare) error {
	return tv.parent.saveShareLocked(share)
}

func (tv *txMemoryView) WithTx(ctx context.Context, fn func(allocation.AllotmentStore) error) error {
	// Already inside a transaction; nesting is flattened.
	return fn(tv)
}

// =============================================================================
// MEMORY CONFIG SOURCE
// =============================================================================

// MemoryConfig is an in-memory PropertyConfigSource.
type MemoryConfig struct {
	mu       sync.RWMutex
	seasons  map[allocation.PropertyID]allocation.SeasonWindow
	holidays map[allocation.PropertyID][]allocation.Holiday
}

func NewMemoryConfig() *MemoryConfig {
	return &MemoryConfig{
		seasons:  make(map[allocation.PropertyID]allocation.SeasonWindow),
		holidays: make(map[allocation.PropertyID][]allocation.Holiday),
	}
}

func (c *MemoryConfig) SetSeason(property allocation.PropertyID, window allocation.SeasonWindow) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seasons[property] = window
}

func (c *MemoryConfig) AddHoliday(property allocation.PropertyID, h allocation.Holiday) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.holidays[property] = append(c.holidays[property], h)
}

func (c *MemoryConfig) Season(_ context.Context, property allocation.PropertyID) (allocation.SeasonWindow, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	window, ok := c.seasons[property]
	if !ok {
		return allocation.SeasonWindow{}, fmt.Errorf("%w: no season window for property %s",
			allocation.ErrMissingPropertyConfig, property)
	}
	return window, nil
}

func (c *MemoryConfig) Holidays(_ context.Context, property allocation.PropertyID) ([]allocation.Holiday, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]allocation.Holiday, len(c.holidays[property]))
	copy(result, c.holidays[property])
	return result, nil
}

// =============================================================================
// MEMORY AUDIT LOG
// =============================================================================

// MemoryAudit collects audit entries for inspection in tests.
type MemoryAudit struct {
	mu      sync.Mutex
	entries []allocation.AuditEntry
}

func NewMemoryAudit() *MemoryAudit { return &MemoryAudit{} }

func (a *MemoryAudit) Append(_ context.Context, entry allocation.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, entry)
	return nil
}

func (a *MemoryAudit) Entries() []allocation.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	result := make([]allocation.AuditEntry, len(a.entries))
	copy(result, a.entries)
	return result
}
