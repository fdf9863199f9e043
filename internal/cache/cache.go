// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package cache provides the TTL key/value stores that memoize dashboard
// aggregates, plus the deterministic key derivation from filter state.
//
// Several Store instances coexist with different default TTLs: volatile
// collections (leads, payments) get short TTLs, near-static ones
// (salespeople directory, monthly sales rollup) get long TTLs with
// day-bucketed keys. The spread is a deliberate severity-of-staleness
// policy, not duplication.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tallyboard/tallyboard/internal/clock"
)

// Entry represents a cached item with expiration.
type Entry struct {
	Data      interface{}
	ExpiresAt time.Time
}

// Store is a mutex-guarded in-memory cache with per-entry TTL.
//
// Expiry is strictly lazy: an expired entry is evicted on the read that
// discovers it. There is no background sweep, so Len() may count entries
// that are already logically expired. That imprecision is documented
// behavior; the admin endpoint surfaces it as-is.
type Store struct {
	mu      sync.RWMutex
	name    string
	entries map[string]Entry
	ttl     time.Duration
	clock   clock.Clock

	statsMu   sync.Mutex
	hits      int64
	misses    int64
	evictions int64
}

// New creates a Store with the given default TTL. A nil clk falls back
// to the system clock.
func New(name string, ttl time.Duration, clk clock.Clock) *Store {
	if clk == nil {
		clk = clock.System{}
	}
	return &Store{
		name:    name,
		entries: make(map[string]Entry),
		ttl:     ttl,
		clock:   clk,
	}
}

// Name returns the store's identifier used in stats and metrics.
func (s *Store) Name() string { return s.name }

// Get retrieves a value by key. It returns (nil, false) when the key is
// absent or expired; an expired entry is deleted as a side effect.
func (s *Store) Get(key string) (interface{}, bool) {
	s.mu.RLock()
	entry, exists := s.entries[key]
	s.mu.RUnlock()

	if !exists {
		s.recordMiss()
		return nil, false
	}

	if s.clock.Now().After(entry.ExpiresAt) {
		s.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have
		// replaced the entry since the read lock was dropped.
		if cur, ok := s.entries[key]; ok && s.clock.Now().After(cur.ExpiresAt) {
			delete(s.entries, key)
			s.recordEviction()
		}
		s.mu.Unlock()
		s.recordMiss()
		return nil, false
	}

	s.recordHit()
	return entry.Data, true
}

// Set stores a value with the default TTL, overwriting any existing
// entry for the key.
func (s *Store) Set(key string, value interface{}) {
	s.SetWithTTL(key, value, s.ttl)
}

// SetWithTTL stores a value with a custom TTL.
func (s *Store) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = Entry{
		Data:      value,
		ExpiresAt: s.clock.Now().Add(ttl),
	}
}

// Delete removes a specific entry. Safe to call for absent keys.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()

	s.recordEviction()
}

// Clear removes all entries in one map replacement.
func (s *Store) Clear() {
	s.mu.Lock()
	evicted := int64(len(s.entries))
	s.entries = make(map[string]Entry)
	s.mu.Unlock()

	s.statsMu.Lock()
	s.evictions += evicted
	s.statsMu.Unlock()
}

// Len counts stored entries, including logically expired ones that have
// not yet been lazily evicted.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

// GetStats returns a snapshot of the hit/miss/eviction counters.
func (s *Store) GetStats() Stats {
	s.statsMu.Lock()
	defer s.statsMu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses, Evictions: s.evictions}
}

// HitRate returns the hit percentage, 0 when no lookups have happened.
func (s *Store) HitRate() float64 {
	st := s.GetStats()
	total := st.Hits + st.Misses
	if total == 0 {
		return 0.0
	}
	return float64(st.Hits) / float64(total) * 100.0
}

func (s *Store) recordHit() {
	s.statsMu.Lock()
	s.hits++
	s.statsMu.Unlock()
}

func (s *Store) recordMiss() {
	s.statsMu.Lock()
	s.misses++
	s.statsMu.Unlock()
}

func (s *Store) recordEviction() {
	s.statsMu.Lock()
	s.evictions++
	s.statsMu.Unlock()
}

// GenerateKey creates a compact cache key from a prefix and an arbitrary
// parameter struct by hashing its JSON encoding.
func GenerateKey(prefix string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		// Fallback to simple string key
		return fmt.Sprintf("%s:%v", prefix, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", prefix, hash[:16])
}
