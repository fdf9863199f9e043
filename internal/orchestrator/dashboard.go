// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/tallyboard/tallyboard/internal/analytics"
	"github.com/tallyboard/tallyboard/internal/logging"
	"github.com/tallyboard/tallyboard/internal/models"
)

// Dashboard runs one staged load across all four analytics domains and
// assembles the combined response. Each domain waits for its gate stage,
// loads, and releases the next stage; cache hits make later loads nearly
// free, so the staging cost is only paid on cold caches.
type Dashboard struct {
	Sales    *analytics.SalesService
	Leads    *analytics.LeadService
	Clients  *analytics.ClientService
	Payments *analytics.PaymentService

	// Fallback bounds how long any stage waits on its predecessor.
	// Zero selects DefaultFallbackDelay.
	Fallback time.Duration
}

// Load performs the staged dashboard load for one filter state. A fresh
// gate is built per call: staging is a property of one load sequence,
// not shared server state. Stage order is sales, leads, clients,
// payments; a canceled context returns whatever partial results landed.
func (d *Dashboard) Load(ctx context.Context, f models.FilterState) *models.DashboardAnalytics {
	gate := NewGate(d.Fallback)
	out := &models.DashboardAnalytics{}

	var wg sync.WaitGroup
	run := func(stage Stage, load func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Wait(ctx, stage); err != nil {
				logging.Warn().Str("stage", string(stage)).Err(err).Msg("Stage wait canceled")
				gate.MarkLoaded(stage)
				return
			}
			load(ctx)
			gate.MarkLoaded(stage)
		}()
	}

	run(StageSales, func(ctx context.Context) {
		out.Sales = d.Sales.Load(ctx, f)
	})
	run(StageLeads, func(ctx context.Context) {
		out.Leads = d.Leads.Load(ctx, f)
	})
	run(StageClients, func(ctx context.Context) {
		out.Clients = d.Clients.Load(ctx, f)
	})
	run(StagePayments, func(ctx context.Context) {
		out.Payments = d.Payments.Load(ctx, f)
	})

	wg.Wait()
	return out
}
