// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package clock

import (
	"testing"
	"time"
)

func TestSystemNow(t *testing.T) {
	before := time.Now()
	got := System{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("System.Now() = %v, expected between %v and %v", got, before, after)
	}
}

func TestFakeClock(t *testing.T) {
	start := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if !f.Now().Equal(start) {
		t.Errorf("Expected %v, got %v", start, f.Now())
	}

	f.Advance(90 * time.Minute)
	want := start.Add(90 * time.Minute)
	if !f.Now().Equal(want) {
		t.Errorf("Expected %v after advance, got %v", want, f.Now())
	}

	absolute := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	f.Set(absolute)
	if !f.Now().Equal(absolute) {
		t.Errorf("Expected %v after set, got %v", absolute, f.Now())
	}
}
