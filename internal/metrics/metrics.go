// Package metrics provides Prometheus metrics for the price tracker.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fyralath_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Auction Worker Metrics
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_runs_total",
			Help: "Total number of auction pipeline runs",
		},
		[]string{"result"}, // "success", "failed"
	)

	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fyralath_run_duration_seconds",
			Help:    "Time taken by one auction pipeline run over all regions",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	RegionFetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_region_fetch_failures_total",
			Help: "Auction or token fetches that failed, by region and source",
		},
		[]string{"region", "source"}, // source: "commodities", "token"
	)

	MissingPrices = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fyralath_missing_prices",
			Help: "Recipe materials without a listing in the latest snapshot",
		},
		[]string{"region"},
	)

	CraftingCost = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fyralath_crafting_cost_copper",
			Help: "Latest computed crafting cost of the root item in copper",
		},
		[]string{"region"},
	)

	TokenRatio = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fyralath_wow_token_ratio",
			Help: "Latest crafting cost expressed in WoW tokens",
		},
		[]string{"region"},
	)

	// Persistence Metrics
	SnapshotsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_snapshots_total",
			Help: "Hourly snapshot write attempts by outcome",
		},
		[]string{"region", "result"}, // "written", "exists"
	)

	DailyAveragesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_daily_averages_total",
			Help: "Daily average rollups by outcome",
		},
		[]string{"region", "result"}, // "written", "empty"
	)

	// Blizzard API Metrics
	SourceRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fyralath_source_requests_total",
			Help: "Requests made to the Blizzard API",
		},
		[]string{"endpoint", "status"},
	)

	SourceRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fyralath_source_request_duration_seconds",
			Help:    "Blizzard API request latency",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"endpoint"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fyralath_cache_hits_total",
			Help: "Response cache hit count",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fyralath_cache_misses_total",
			Help: "Response cache miss count",
		},
	)
)
