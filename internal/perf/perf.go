// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package perf provides a named start/end timer registry used to
// instrument analytics load phases.
package perf

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/logging"
)

// Monitor records named phase durations. Start/End pairs may interleave
// freely across names; End without a matching Start is a no-op.
type Monitor struct {
	mu        sync.Mutex
	clock     clock.Clock
	starts    map[string]time.Time
	durations map[string]time.Duration
	log       zerolog.Logger
}

// New creates a Monitor. A nil clk falls back to the system clock.
func New(clk clock.Clock) *Monitor {
	if clk == nil {
		clk = clock.System{}
	}
	return &Monitor{
		clock:     clk,
		starts:    make(map[string]time.Time),
		durations: make(map[string]time.Duration),
		log:       logging.With().Str("component", "perf").Logger(),
	}
}

// Start begins (or restarts) the named timer.
func (m *Monitor) Start(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts[name] = m.clock.Now()
}

// End stops the named timer, records and returns its duration. Returns
// 0 when the timer was never started.
func (m *Monitor) End(name string) time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	start, ok := m.starts[name]
	if !ok {
		return 0
	}
	delete(m.starts, name)

	d := m.clock.Now().Sub(start)
	m.durations[name] = d
	m.log.Debug().Str("phase", name).Dur("duration", d).Msg("Phase complete")
	return d
}

// Snapshot returns a copy of all recorded durations.
func (m *Monitor) Snapshot() map[string]time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]time.Duration, len(m.durations))
	for k, v := range m.durations {
		out[k] = v
	}
	return out
}

// Reset discards all timers and recorded durations.
func (m *Monitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.starts = make(map[string]time.Time)
	m.durations = make(map[string]time.Duration)
}
