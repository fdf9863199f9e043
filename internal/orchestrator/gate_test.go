// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package orchestrator

import (
	"context"
	"testing"
	"time"
)

func TestGateFirstStageEnabledImmediately(t *testing.T) {
	g := NewGate(time.Hour)
	if !g.Enabled(StageSales) {
		t.Error("sales stage must be enabled on construction")
	}
	for _, s := range StageOrder[1:] {
		if g.Enabled(s) {
			t.Errorf("stage %s enabled before its predecessor loaded", s)
		}
	}
}

func TestGateMarkLoadedReleasesSuccessor(t *testing.T) {
	g := NewGate(time.Hour)

	g.MarkLoaded(StageSales)
	if !g.Enabled(StageLeads) {
		t.Error("leads not released after sales loaded")
	}
	if g.Enabled(StageClients) {
		t.Error("clients released out of order")
	}

	g.MarkLoaded(StageLeads)
	g.MarkLoaded(StageClients)
	if !g.Enabled(StagePayments) {
		t.Error("payments not released after clients loaded")
	}
}

func TestGateMarkLoadedIsIdempotent(t *testing.T) {
	g := NewGate(time.Hour)
	g.MarkLoaded(StageSales)
	g.MarkLoaded(StageSales)
	g.MarkLoaded(StageSales)
	if !g.Enabled(StageLeads) || g.Enabled(StageClients) {
		t.Error("duplicate MarkLoaded must not advance beyond the successor")
	}
}

func TestGateFallbackReleasesStalledStage(t *testing.T) {
	g := NewGate(10 * time.Millisecond)

	// Sales never reports loaded; leads must still come up.
	deadline := time.After(2 * time.Second)
	for !g.Enabled(StageLeads) {
		select {
		case <-deadline:
			t.Fatal("fallback never released the leads stage")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestGateWaitHonorsContext(t *testing.T) {
	g := NewGate(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := g.Wait(ctx, StagePayments); err == nil {
		t.Error("Wait on an unreleased stage must fail once the context ends")
	}
	if err := g.Wait(ctx, StageSales); err != nil {
		t.Errorf("Wait on an enabled stage returned %v, want nil even with a dead context", err)
	}
}

func TestGateWaitUnknownStage(t *testing.T) {
	g := NewGate(time.Hour)
	if err := g.Wait(context.Background(), Stage("bogus")); err != nil {
		t.Errorf("unknown stage Wait = %v, want nil", err)
	}
	if g.Enabled(Stage("bogus")) {
		t.Error("unknown stage must not report enabled")
	}
}
