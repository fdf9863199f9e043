// Tallyboard - CRM Back-Office Analytics Aggregation and Caching
// Copyright 2026 Tallyboard Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tallyboard/tallyboard

// Package metrics provides Prometheus instrumentation for the analytics
// pipeline: cache efficiency, document scan volume, load-phase latency
// and HTTP traffic.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tallyboard_cache_hits_total",
			Help: "Total number of analytics cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tallyboard_cache_misses_total",
			Help: "Total number of analytics cache misses",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tallyboard_cache_entries",
			Help: "Current number of cached entries, including not-yet-evicted expired ones",
		},
		[]string{"cache"},
	)

	// Aggregation Metrics
	DocumentsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tallyboard_documents_scanned_total",
			Help: "Total number of documents read from the store during aggregation",
		},
		[]string{"collection"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tallyboard_fetch_duration_seconds",
			Help:    "Duration of document-store fetches per analytics domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	ReduceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tallyboard_reduce_duration_seconds",
			Help:    "Duration of in-memory reduction passes per analytics domain",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"domain"},
	)

	AggregationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tallyboard_aggregation_failures_total",
			Help: "Total number of loads that resolved to a zeroed aggregate after a handled failure",
		},
		[]string{"domain"},
	)

	// Progressive Loading Metrics
	StageCompletions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tallyboard_stage_completions_total",
			Help: "Total number of completed progressive-loading stages",
		},
		[]string{"stage"},
	)

	// HTTP Metrics
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tallyboard_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method", "status"},
	)
)

// RecordCacheHit increments the hit counter for a named cache.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordDocumentsScanned adds to the scan counter for a collection.
func RecordDocumentsScanned(collection string, n int) {
	DocumentsScanned.WithLabelValues(collection).Add(float64(n))
}

// RecordFetch observes one fetch phase for a domain.
func RecordFetch(domain string, d time.Duration) {
	FetchDuration.WithLabelValues(domain).Observe(d.Seconds())
}

// RecordReduce observes one reduction pass for a domain.
func RecordReduce(domain string, d time.Duration) {
	ReduceDuration.WithLabelValues(domain).Observe(d.Seconds())
}

// RecordAggregationFailure counts a load that fell back to a zeroed
// aggregate.
func RecordAggregationFailure(domain string) {
	AggregationFailures.WithLabelValues(domain).Inc()
}

// RecordStageCompletion counts a finished progressive-loading stage.
func RecordStageCompletion(stage string) {
	StageCompletions.WithLabelValues(stage).Inc()
}

// RecordHTTPRequest observes one HTTP request.
func RecordHTTPRequest(path, method string, status int, d time.Duration) {
	HTTPRequestDuration.WithLabelValues(path, method, strconv.Itoa(status)).Observe(d.Seconds())
}
