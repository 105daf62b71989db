// RobProfile - Playstyle Analysis and Game Recommendations for Roblox
// Copyright 2026 RobProfile contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/robprofile/robprofile

package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for the profiling and recommendation pipeline:
// - API endpoint latency and throughput
// - Upstream Roblox API calls, retries and rate limiting
// - Candidate pool refresh outcomes
// - Cache efficiency
// - Circuit breaker state

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Upstream Roblox API Metrics
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of upstream Roblox API requests",
		},
		[]string{"host", "outcome"}, // outcome: "success", "retry", "rate_limited", "error"
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "Duration of upstream Roblox API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"host"},
	)

	UpstreamRetryAfterHonored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "upstream_retry_after_honored_total",
			Help: "Total number of 429 Retry-After delays honored",
		},
	)

	// Candidate Pool Metrics
	PoolRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pool_refresh_duration_seconds",
			Help:    "Duration of candidate pool refresh operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	PoolRefreshErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pool_refresh_errors_total",
			Help: "Total number of pool refresh failures",
		},
		[]string{"class"}, // "upstream_unavailable", "data_empty", "parse_corrupt"
	)

	PoolItemsFetched = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_items_fetched",
			Help: "Raw items discovered during the last pool refresh",
		},
	)

	PoolItemsFiltered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_items_filtered",
			Help: "Items in the candidate pool after the activity filter",
		},
	)

	PoolLastRefresh = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pool_last_refresh_timestamp",
			Help: "Unix timestamp of last successful pool refresh",
		},
	)

	// Recommendation Metrics
	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "End-to-end recommendation latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		},
		[]string{"source"}, // "pool", "live_fallback"
	)

	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation responses by source",
		},
		[]string{"source"},
	)

	ProfilesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "profiles_computed_total",
			Help: "Total number of archetype profiles computed",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"}, // "pool", "status", "profile"
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "app_uptime_seconds",
			Help: "Application uptime in seconds",
		},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordUpstreamRequest records an upstream Roblox API call.
func RecordUpstreamRequest(host, outcome string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(host, outcome).Inc()
	UpstreamRequestDuration.WithLabelValues(host).Observe(duration.Seconds())
}

// RecordPoolRefresh records a pool refresh outcome.
func RecordPoolRefresh(duration time.Duration, fetched, filtered int, failureClass string) {
	PoolRefreshDuration.Observe(duration.Seconds())
	if failureClass != "" {
		PoolRefreshErrors.WithLabelValues(failureClass).Inc()
		return
	}
	PoolItemsFetched.Set(float64(fetched))
	PoolItemsFiltered.Set(float64(filtered))
	PoolLastRefresh.Set(float64(time.Now().Unix()))
}

// RecordRecommendation records a served recommendation response.
func RecordRecommendation(source string, duration time.Duration) {
	RecommendationsServed.WithLabelValues(source).Inc()
	RecommendationDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// SetAppInfo publishes the build info gauge and starts the uptime
// counter goroutine.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	start := time.Now()
	go func() {
		for range time.Tick(15 * time.Second) {
			AppUptime.Set(time.Since(start).Seconds())
		}
	}()
}
