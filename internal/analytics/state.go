// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import "sync/atomic"

// LoadState is the observable per-service load lifecycle. It replaces
// ad hoc "has this loaded" booleans with an explicit machine:
//
//	idle -> keyComputed -> cacheHit(done) | cacheMiss -> fetching ->
//	reducing -> cached -> done
//
// done is re-enterable: the next load restarts the machine for its key
// while previously cached aggregates stay independently retrievable.
type LoadState int32

// Load lifecycle states.
const (
	StateIdle LoadState = iota
	StateKeyComputed
	StateCacheHit
	StateCacheMiss
	StateFetching
	StateReducing
	StateCached
	StateDone
)

// String returns the state's name.
func (s LoadState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateKeyComputed:
		return "keyComputed"
	case StateCacheHit:
		return "cacheHit"
	case StateCacheMiss:
		return "cacheMiss"
	case StateFetching:
		return "fetching"
	case StateReducing:
		return "reducing"
	case StateCached:
		return "cached"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// stateTracker records the most recent state transition. Tracking is
// advisory: it exposes where a load last stood for tests and debugging,
// it does not gate execution.
type stateTracker struct {
	v atomic.Int32
}

func (t *stateTracker) set(s LoadState) {
	t.v.Store(int32(s))
}

func (t *stateTracker) get() LoadState {
	return LoadState(t.v.Load())
}
