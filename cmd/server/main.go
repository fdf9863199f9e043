// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package main is the entry point for the Tallyboard server.
//
// Tallyboard serves cached CRM back-office analytics: per-domain
// aggregates over leads, clients, payments and sales targets, memoized
// in TTL caches keyed by filter state, with a staged dashboard load.
//
// The server initializes components in the following order:
//
//  1. Configuration: Koanf v2 layered sources (defaults, YAML, env)
//  2. Logging: global zerolog logger
//  3. Store: BadgerDB document store (in-memory when no path is set)
//  4. Caches and analytics services per domain
//  5. HTTP router and supervisor tree
//
// Shutdown is graceful on SIGINT and SIGTERM: the HTTP server drains
// in-flight requests, then the store is closed.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tallyboard/tallyboard/internal/analytics"
	"github.com/tallyboard/tallyboard/internal/api"
	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/config"
	"github.com/tallyboard/tallyboard/internal/logging"
	"github.com/tallyboard/tallyboard/internal/orchestrator"
	"github.com/tallyboard/tallyboard/internal/store"
	"github.com/tallyboard/tallyboard/internal/supervisor"
	"github.com/tallyboard/tallyboard/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "", "path to config file (overrides search paths)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("store_path", cfg.Store.Path).
		Bool("in_memory", cfg.Store.Path == "").
		Msg("Starting Tallyboard")

	db, err := store.OpenBadger(cfg.Store.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	if shouldSeed(cfg.Store) {
		if err := seedDemoData(context.Background(), db); err != nil {
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
		logging.Info().Msg("Demo data seeded")
	}

	clk := clock.System{}
	opts := func(c *cache.Store) analytics.Options {
		return analytics.Options{Cache: c, Querier: db, Clock: clk}
	}

	salesCache := cache.New("sales", cfg.Cache.SalesTTL, clk)
	leadsCache := cache.New("leads", cfg.Cache.LeadsTTL, clk)
	clientsCache := cache.New("clients", cfg.Cache.ClientsTTL, clk)
	paymentsCache := cache.New("payments", cfg.Cache.PaymentsTTL, clk)
	peopleCache := cache.New("salespeople", cfg.Cache.SalespeopleTTL, clk)

	handler := &api.Handler{
		Sales:     analytics.NewSalesService(opts(salesCache)),
		Leads:     analytics.NewLeadService(opts(leadsCache)),
		Clients:   analytics.NewClientService(opts(clientsCache), cfg.Analytics.TopAdvocates, cfg.Analytics.PartialBatch),
		Payments:  analytics.NewPaymentService(opts(paymentsCache), cfg.Analytics.PartialBatch),
		Directory: analytics.NewDirectoryService(opts(peopleCache)),
		Caches:    []*cache.Store{salesCache, leadsCache, clientsCache, paymentsCache, peopleCache},
	}
	handler.Dashboard = &orchestrator.Dashboard{
		Sales:    handler.Sales,
		Leads:    handler.Leads,
		Clients:  handler.Clients,
		Payments: handler.Payments,
		Fallback: cfg.Analytics.StageFallback,
	}

	router := &api.Router{
		Handler: handler,
		Middleware: api.MiddlewareConfig{
			CORSOrigins:     cfg.Server.CORSOrigins,
			RateLimitReqs:   cfg.Server.RateLimitReqs,
			RateLimitWindow: cfg.Server.RateLimitWindow,
		},
	}

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
	if cfg.Store.Path != "" {
		// In-memory stores have no value log to reclaim.
		tree.AddDataService(services.NewStoreGCService(db, cfg.Store.GCInterval))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Serving")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		logging.Fatal().Err(err).Msg("Supervisor tree failed")
	}
	logging.Info().Msg("Shutdown complete")
}
