// QuoteBridge - Field Service Quote to Work Board Synchronization
// Copyright 2026 J. Green (jgreen210)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/jgreen210/quotebridge

// Package metrics defines the Prometheus collectors for QuoteBridge.
// Collectors are registered via promauto at package init and served on
// /metrics by the HTTP router.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Sync run metrics

	SyncRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebridge_sync_run_duration_seconds",
			Help:    "Duration of sync runs in seconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"mode"}, // "batch", "single"
	)

	SyncRecordsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebridge_sync_records_processed_total",
			Help: "Total quotes run through the sync pipeline",
		},
		[]string{"mode", "outcome"}, // outcome: "synced", "skipped", "failed"
	)

	UpsertOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebridge_upsert_operations_total",
			Help: "Total board upserts by entity kind and action",
		},
		[]string{"kind", "action"}, // kind: "account"|"contact"|"deal", action: "created"|"reused"|"backfilled"
	)

	// Board client metrics

	BoardRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebridge_board_request_duration_seconds",
			Help:    "Duration of board API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	BoardRateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quotebridge_board_rate_limit_hits_total",
			Help: "Total rate-limit responses from the board API",
		},
	)

	BoardSearchPages = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quotebridge_board_search_pages",
			Help:    "Pages scanned per resolver search",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 40},
		},
	)

	// Source client metrics

	FieldServiceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebridge_field_service_request_duration_seconds",
			Help:    "Duration of field service API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CircuitBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotebridge_field_service_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Webhook metrics

	WebhooksReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebridge_webhooks_received_total",
			Help: "Total inbound webhooks by source and disposition",
		},
		[]string{"source", "disposition"}, // disposition: "processed", "debounced", "ignored", "rejected"
	)

	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotebridge_cache_operations_total",
			Help: "Debounce and existence cache operations",
		},
		[]string{"cache", "result"}, // cache: "debounce"|"existence", result: "hit"|"miss"|"claim"|"reject"
	)

	// HTTP surface metrics

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotebridge_http_request_duration_seconds",
			Help:    "Duration of inbound HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotebridge_http_requests_in_flight",
			Help: "Inbound HTTP requests currently being served",
		},
	)
)

// ObserveHTTPRequest records one served request.
func ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// ObserveSyncRun records one completed sync run.
func ObserveSyncRun(mode string, duration time.Duration) {
	SyncRunDuration.WithLabelValues(mode).Observe(duration.Seconds())
}
