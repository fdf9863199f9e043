// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package perf

import (
	"testing"
	"time"

	"github.com/tallyboard/tallyboard/internal/clock"
)

func TestMonitorStartEnd(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))
	m := New(clk)

	m.Start("fetch")
	clk.Advance(250 * time.Millisecond)
	d := m.End("fetch")

	if d != 250*time.Millisecond {
		t.Errorf("Expected 250ms, got %v", d)
	}

	snap := m.Snapshot()
	if snap["fetch"] != 250*time.Millisecond {
		t.Errorf("Expected snapshot to record 250ms, got %v", snap["fetch"])
	}
}

func TestMonitorEndWithoutStart(t *testing.T) {
	m := New(nil)
	if d := m.End("never-started"); d != 0 {
		t.Errorf("Expected 0 for unmatched End, got %v", d)
	}
}

func TestMonitorInterleavedTimers(t *testing.T) {
	clk := clock.NewFake(time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))
	m := New(clk)

	m.Start("total")
	m.Start("fetch")
	clk.Advance(100 * time.Millisecond)
	m.End("fetch")
	m.Start("reduce")
	clk.Advance(50 * time.Millisecond)
	m.End("reduce")
	total := m.End("total")

	if total != 150*time.Millisecond {
		t.Errorf("Expected 150ms total, got %v", total)
	}
	snap := m.Snapshot()
	if snap["fetch"] != 100*time.Millisecond || snap["reduce"] != 50*time.Millisecond {
		t.Errorf("Unexpected phase durations: %v", snap)
	}
}

func TestMonitorReset(t *testing.T) {
	m := New(nil)
	m.Start("x")
	m.End("x")
	m.Reset()

	if len(m.Snapshot()) != 0 {
		t.Error("Expected empty snapshot after reset")
	}
}
