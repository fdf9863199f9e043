// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/tallyboard/tallyboard/internal/analytics"
	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/models"
	"github.com/tallyboard/tallyboard/internal/store"
)

func testDashboard(t *testing.T) (*Dashboard, *store.MemStore) {
	t.Helper()
	mem := store.NewMemStore()
	clk := clock.NewFake(time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC))
	opts := func(name string) analytics.Options {
		return analytics.Options{
			Cache:   cache.New(name, time.Minute, clk),
			Querier: mem,
			Clock:   clk,
		}
	}
	return &Dashboard{
		Sales:    analytics.NewSalesService(opts("sales")),
		Leads:    analytics.NewLeadService(opts("leads")),
		Clients:  analytics.NewClientService(opts("clients"), 0, 0),
		Payments: analytics.NewPaymentService(opts("payments"), 0),
		Fallback: 50 * time.Millisecond,
	}, mem
}

func TestDashboardLoadAssemblesAllDomains(t *testing.T) {
	d, mem := testDashboard(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC)
	if err := mem.Put(ctx, models.CollectionLeads, "l1", models.Lead{ID: "l1", Source: "ama", Status: "Interested", Timestamp: now}); err != nil {
		t.Fatal(err)
	}
	if err := mem.Put(ctx, models.CollectionPayments, "p1", models.Payment{ID: "p1", TotalAmount: 1000.0, PaidAmount: 400.0, Timestamp: now}); err != nil {
		t.Fatal(err)
	}

	out := d.Load(ctx, models.FilterState{})

	if out.Sales == nil || out.Leads == nil || out.Clients == nil || out.Payments == nil {
		t.Fatalf("staged load left domains unset: %+v", out)
	}
	if out.Leads.TotalLeads != 1 {
		t.Errorf("Leads.TotalLeads = %d, want 1", out.Leads.TotalLeads)
	}
	if out.Payments.CompletionRate != 40 {
		t.Errorf("Payments.CompletionRate = %d, want 40", out.Payments.CompletionRate)
	}
}

func TestDashboardLoadWithCanceledContext(t *testing.T) {
	d, _ := testDashboard(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		d.Load(ctx, models.FilterState{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("canceled staged load did not terminate")
	}
}
