// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/models"
)

func seedLeads(t *testing.T, q *countingQuerier) {
	t.Helper()
	q.put(t, models.CollectionLeads, "l1", models.Lead{ID: "l1", Source: "settleloans", Status: "Interested", Timestamp: testNow})
	q.put(t, models.CollectionLeads, "l2", models.Lead{ID: "l2", Source: "SettleLoans", Status: "Interested", Timestamp: testNow})
	q.put(t, models.CollectionLeads, "l3", models.Lead{ID: "l3", Source: "credsettlee", Status: "", Timestamp: testNow})
	q.put(t, models.CollectionLeads, "l4", models.Lead{ID: "l4", Source: "facebook", Status: "Interested", Timestamp: testNow})
}

func TestLeadAggregation(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	agg := svc.Load(context.Background(), models.FilterState{})

	if agg.TotalLeads != 4 {
		t.Errorf("TotalLeads = %d, want 4", agg.TotalLeads)
	}
	if agg.SourceTotals["settleloans"] != 2 {
		t.Errorf("settleloans total = %d, want 2", agg.SourceTotals["settleloans"])
	}
	if agg.SourceTotals["credsettlee"] != 1 {
		t.Errorf("credsettlee total = %d, want 1", agg.SourceTotals["credsettlee"])
	}
	if agg.SourceTotals["billcut"] != 0 {
		t.Errorf("billcut total = %d, want zero-filled 0", agg.SourceTotals["billcut"])
	}
	if agg.StatusDistribution["Interested"]["settleloans"] != 2 {
		t.Errorf("Interested/settleloans = %d, want 2", agg.StatusDistribution["Interested"]["settleloans"])
	}
	if agg.StatusDistribution[models.NoStatus]["credsettlee"] != 1 {
		t.Errorf("missing status not bucketed under %q", models.NoStatus)
	}
}

// Per-source column sums across all statuses must equal the source
// totals, with unrecognized sources excluded from both.
func TestLeadColumnSumsMatchSourceTotals(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	agg := svc.Load(context.Background(), models.FilterState{})

	for _, src := range models.Sources {
		sum := 0
		for _, row := range agg.StatusDistribution {
			sum += row[src]
		}
		if sum != agg.SourceTotals[src] {
			t.Errorf("source %s: column sum %d != total %d", src, sum, agg.SourceTotals[src])
		}
	}
}

func TestLeadLoadIsIdempotentWithinTTL(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	first := svc.Load(context.Background(), models.FilterState{})
	second := svc.Load(context.Background(), models.FilterState{})

	if q.fullScans.Load() != 1 {
		t.Errorf("full scans = %d, want 1 (second load must hit the cache)", q.fullScans.Load())
	}
	if first != second {
		t.Error("cache hit returned a different aggregate instance")
	}
	if svc.LastState() != StateDone {
		t.Errorf("state = %v, want done", svc.LastState())
	}
}

func TestLeadLoadRefetchesAfterExpiry(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	clk := clock.NewFake(testNow)
	svc := NewLeadService(testOptions(q, clk))

	svc.Load(context.Background(), models.FilterState{})
	clk.Advance(2 * time.Minute)
	svc.Load(context.Background(), models.FilterState{})

	if q.fullScans.Load() != 2 {
		t.Errorf("full scans = %d, want 2 after TTL expiry", q.fullScans.Load())
	}
}

func TestLeadFetchFailureCachesZeroedAggregate(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	q.err = errFetch
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	agg := svc.Load(context.Background(), models.FilterState{})
	if agg.TotalLeads != 0 {
		t.Errorf("failed load TotalLeads = %d, want 0", agg.TotalLeads)
	}
	if agg.SourceTotals == nil {
		t.Fatal("failed load must keep the aggregate shape")
	}

	// The zeroed aggregate is cached: recovery of the store alone must
	// not trigger a refetch.
	q.err = nil
	again := svc.Load(context.Background(), models.FilterState{})
	if q.fullScans.Load() != 1 {
		t.Errorf("full scans = %d, want 1 (failure result must be cached)", q.fullScans.Load())
	}
	if again.TotalLeads != 0 {
		t.Errorf("cached failure TotalLeads = %d, want 0", again.TotalLeads)
	}
}

func TestLeadFilterChangeRetriesAfterFailure(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)
	q.err = errFetch
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	svc.Load(context.Background(), models.FilterState{})
	q.err = nil
	agg := svc.Load(context.Background(), models.FilterState{Salesperson: "asha"})

	if q.fullScans.Load() != 2 {
		t.Errorf("full scans = %d, want 2 (new filter derives a new key)", q.fullScans.Load())
	}
	if agg.TotalLeads != 0 {
		t.Errorf("filtered TotalLeads = %d, want 0 (no leads assigned to asha)", agg.TotalLeads)
	}
}

func TestLeadSalespersonFilter(t *testing.T) {
	q := newCountingQuerier()
	q.put(t, models.CollectionLeads, "l1", models.Lead{ID: "l1", Source: "ama", Status: "Converted", AssignedTo: "asha", Timestamp: testNow})
	q.put(t, models.CollectionLeads, "l2", models.Lead{ID: "l2", Source: "ama", Status: "Converted", AssignedTo: "ravi", Timestamp: testNow})
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	agg := svc.Load(context.Background(), models.FilterState{Salesperson: "asha"})
	if agg.TotalLeads != 1 {
		t.Errorf("TotalLeads = %d, want 1", agg.TotalLeads)
	}
}

func TestLeadDateRangeFilterRequiresApplied(t *testing.T) {
	q := newCountingQuerier()
	q.put(t, models.CollectionLeads, "old", models.Lead{ID: "old", Source: "billcut", Timestamp: testNow.AddDate(0, -2, 0)})
	q.put(t, models.CollectionLeads, "new", models.Lead{ID: "new", Source: "billcut", Timestamp: testNow})
	svc := NewLeadService(testOptions(q, clock.NewFake(testNow)))

	unapplied := svc.Load(context.Background(), models.FilterState{StartDate: "2026-03-01", EndDate: "2026-03-31"})
	if unapplied.TotalLeads != 2 {
		t.Errorf("unapplied range TotalLeads = %d, want 2", unapplied.TotalLeads)
	}

	applied := svc.Load(context.Background(), models.FilterState{StartDate: "2026-03-01", EndDate: "2026-03-31", Applied: true})
	if applied.TotalLeads != 1 {
		t.Errorf("applied range TotalLeads = %d, want 1", applied.TotalLeads)
	}
}

func TestLeadCompletionCallbackFiresOncePerLoad(t *testing.T) {
	q := newCountingQuerier()
	seedLeads(t, q)

	var completions int
	o := testOptions(q, clock.NewFake(testNow))
	o.OnComplete = func() { completions++ }
	svc := NewLeadService(o)

	svc.Load(context.Background(), models.FilterState{})
	svc.Load(context.Background(), models.FilterState{})

	if completions != 2 {
		t.Errorf("completions = %d, want 2 (hit and miss both settle)", completions)
	}
}
