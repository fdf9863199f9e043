// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package orchestrator sequences the staged dashboard load. Sales comes
// up first because it is the cheapest and the most prominent panel;
// each later stage is released when its predecessor reports loaded, or
// after a fallback delay so a wedged predecessor can never hold the
// whole dashboard hostage.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/tallyboard/tallyboard/internal/logging"
	"github.com/tallyboard/tallyboard/internal/metrics"
)

// Stage identifies one panel of the staged dashboard load.
type Stage string

// Load stages, in release order.
const (
	StageSales    Stage = "salesAnalytics"
	StageLeads    Stage = "leadsData"
	StageClients  Stage = "clientAnalytics"
	StagePayments Stage = "paymentAnalytics"
)

// StageOrder is the release sequence.
var StageOrder = []Stage{StageSales, StageLeads, StageClients, StagePayments}

// DefaultFallbackDelay releases a stage when its predecessor has not
// reported loaded in time.
const DefaultFallbackDelay = 3 * time.Second

// Gate releases stages in order. The first stage is enabled on
// construction; every later stage is enabled when the previous one is
// marked loaded, or after the fallback delay from the moment the
// previous stage was enabled. Enablement is sticky: once released a
// stage never closes, and duplicate MarkLoaded calls are no-ops.
type Gate struct {
	fallback time.Duration

	// stages is fixed at construction, only the per-stage channels and
	// onces mutate afterwards.
	stages map[Stage]*stageGate
}

type stageGate struct {
	enabled chan struct{}
	once    sync.Once
	loaded  sync.Once
}

// NewGate builds a gate over StageOrder. A non-positive fallback
// selects the default.
func NewGate(fallback time.Duration) *Gate {
	if fallback <= 0 {
		fallback = DefaultFallbackDelay
	}
	g := &Gate{
		fallback: fallback,
		stages:   make(map[Stage]*stageGate, len(StageOrder)),
	}
	for _, s := range StageOrder {
		g.stages[s] = &stageGate{enabled: make(chan struct{})}
	}
	g.enable(StageOrder[0])
	return g
}

// enable releases a stage and arms the fallback timer for its
// successor.
func (g *Gate) enable(s Stage) {
	sg := g.stage(s)
	if sg == nil {
		return
	}
	sg.once.Do(func() {
		close(sg.enabled)
		if next, ok := g.next(s); ok {
			time.AfterFunc(g.fallback, func() {
				select {
				case <-g.stage(next).enabled:
				default:
					logging.Warn().
						Str("stage", string(s)).
						Str("next", string(next)).
						Dur("fallback", g.fallback).
						Msg("Stage fallback elapsed, releasing next stage")
					g.enable(next)
				}
			})
		}
	})
}

// MarkLoaded records that a stage finished loading and releases its
// successor. Safe to call multiple times and from any goroutine.
func (g *Gate) MarkLoaded(s Stage) {
	sg := g.stage(s)
	if sg == nil {
		return
	}
	sg.loaded.Do(func() {
		metrics.RecordStageCompletion(string(s))
		if next, ok := g.next(s); ok {
			g.enable(next)
		}
	})
}

// Enabled reports whether a stage has been released without blocking.
func (g *Gate) Enabled(s Stage) bool {
	sg := g.stage(s)
	if sg == nil {
		return false
	}
	select {
	case <-sg.enabled:
		return true
	default:
		return false
	}
}

// Wait blocks until the stage is released or the context ends.
func (g *Gate) Wait(ctx context.Context, s Stage) error {
	sg := g.stage(s)
	if sg == nil {
		return nil
	}
	// An already-released stage wins over a dead context.
	select {
	case <-sg.enabled:
		return nil
	default:
	}
	select {
	case <-sg.enabled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Gate) stage(s Stage) *stageGate {
	return g.stages[s]
}

func (g *Gate) next(s Stage) (Stage, bool) {
	for i, st := range StageOrder {
		if st == s && i+1 < len(StageOrder) {
			return StageOrder[i+1], true
		}
	}
	return "", false
}
