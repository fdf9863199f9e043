// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

package analytics

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/tallyboard/tallyboard/internal/cache"
	"github.com/tallyboard/tallyboard/internal/clock"
	"github.com/tallyboard/tallyboard/internal/logging"
	"github.com/tallyboard/tallyboard/internal/metrics"
	"github.com/tallyboard/tallyboard/internal/perf"
	"github.com/tallyboard/tallyboard/internal/store"
)

// Options configures an analytics service. Cache and Querier are
// required; everything else has working defaults.
type Options struct {
	// Cache is the TTL store memoizing this domain's aggregates.
	Cache *cache.Store

	// Querier is the document query adapter.
	Querier store.Querier

	// Clock supplies "now" for key derivation and series windows.
	// Defaults to the system clock.
	Clock clock.Clock

	// TTL overrides the cache's default TTL when positive.
	TTL time.Duration

	// OnComplete, when set, is invoked exactly once per load settle
	// (success or handled failure). The orchestrator uses it to
	// sequence stages.
	OnComplete func()

	// Perf receives phase timings. Defaults to a fresh monitor.
	Perf *perf.Monitor
}

// service carries the state shared by every domain service. It is
// initialized in place to avoid copying the singleflight group.
type service struct {
	domain     string
	cache      *cache.Store
	querier    store.Querier
	clock      clock.Clock
	ttl        time.Duration
	onComplete func()
	perf       *perf.Monitor
	group      singleflight.Group
	state      stateTracker
	log        zerolog.Logger
}

func (s *service) init(domain string, o Options) {
	if o.Clock == nil {
		o.Clock = clock.System{}
	}
	if o.Perf == nil {
		o.Perf = perf.New(o.Clock)
	}
	s.domain = domain
	s.cache = o.Cache
	s.querier = o.Querier
	s.clock = o.Clock
	s.ttl = o.TTL
	s.onComplete = o.OnComplete
	s.perf = o.Perf
	s.log = logging.With().Str("component", domain).Logger()
}

// complete fires the completion callback, if any.
func (s *service) complete() {
	if s.onComplete != nil {
		s.onComplete()
	}
}

// put writes an aggregate to the cache under key, honoring a TTL
// override, and refreshes the entry-count gauge.
func (s *service) put(key string, agg interface{}) {
	if s.ttl > 0 {
		s.cache.SetWithTTL(key, agg, s.ttl)
	} else {
		s.cache.Set(key, agg)
	}
	metrics.CacheEntries.WithLabelValues(s.cache.Name()).Set(float64(s.cache.Len()))
}

// LastState returns the most recent load-lifecycle transition.
func (s *service) LastState() LoadState {
	return s.state.get()
}

// fetchAll wraps the Querier's full scan with timing and scan metrics.
func (s *service) fetchAll(ctx context.Context, collection string, preds []store.Predicate) ([][]byte, error) {
	phase := s.domain + ".fetch"
	s.perf.Start(phase)
	docs, err := s.querier.FetchAll(ctx, collection, preds)
	metrics.RecordFetch(s.domain, s.perf.End(phase))
	if err == nil {
		metrics.RecordDocumentsScanned(collection, len(docs))
	}
	return docs, err
}
