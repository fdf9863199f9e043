// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package services

import (
	"context"
	"errors"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/tallyboard/tallyboard/internal/logging"
	"github.com/tallyboard/tallyboard/internal/store"
)

// gcDiscardRatio is badger's recommended value-log GC threshold.
const gcDiscardRatio = 0.5

// StoreGCService periodically reclaims badger value-log space. Badger
// only rewrites a log file when at least the discard ratio of it is
// stale, so ErrNoRewrite is the common, quiet case.
type StoreGCService struct {
	store    *store.BadgerStore
	interval time.Duration
}

// NewStoreGCService creates the GC loop. Non-positive intervals default
// to 10 minutes.
func NewStoreGCService(s *store.BadgerStore, interval time.Duration) *StoreGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &StoreGCService{store: s, interval: interval}
}

// Serve implements suture.Service.
func (g *StoreGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			// One GC call rewrites at most one log file, loop until
			// there is nothing left to reclaim.
			for {
				err := g.store.RunValueLogGC(gcDiscardRatio)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					logging.Warn().Err(err).Msg("Value log GC failed")
				}
				break
			}
		}
	}
}

// String identifies the service in supervisor logs.
func (g *StoreGCService) String() string {
	return "store-gc"
}
