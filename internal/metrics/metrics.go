// Package metrics provides the centralized Prometheus metrics registry
// for the analysis and deployment pipeline.
package metrics

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	PagesFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "pages_fetched_total",
		Help:      "Total number of backtest result pages fetched",
	})
	RecordsCachedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "records_cached_total",
		Help:      "Total number of backtest records written to the cache",
	})
	RecordsSkippedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "records_skipped_total",
		Help:      "Total number of raw records skipped during normalization",
	})
	BotsCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "bots_created_total",
		Help:      "Total number of bots created",
	})
	BotsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "bots_failed_total",
		Help:      "Total number of failed bot creation attempts",
	})
	LabsAnalyzedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "labs_analyzed_total",
		Help:      "Total number of labs analyzed",
	})
	LabsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "haaslab",
		Name:      "labs_failed_total",
		Help:      "Total number of labs whose analysis failed",
	})
)

// Gauge metrics
var (
	FreeAccounts = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "haaslab",
		Name:      "free_accounts",
		Help:      "Number of unoccupied trading accounts at scan time",
	})
	PriceCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "haaslab",
		Name:      "price_cache_hit_ratio",
		Help:      "Hit ratio of the market price cache",
	})
	LastRunCandidates = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "haaslab",
		Name:      "last_run_candidates",
		Help:      "Candidate count per lab in the most recent run",
	}, []string{"lab_id"})
)

// Registry returns the global metrics registry, initializing it once
func Registry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			PagesFetchedTotal,
			RecordsCachedTotal,
			RecordsSkippedTotal,
			BotsCreatedTotal,
			BotsFailedTotal,
			LabsAnalyzedTotal,
			LabsFailedTotal,
			FreeAccounts,
			PriceCacheHitRatio,
			LastRunCandidates,
		)
	})
	return registry
}

// Handler returns an HTTP handler serving the registry
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry(), promhttp.HandlerOpts{})
}

// Serve exposes the metrics endpoint on the given port and path.
// Intended for watch mode, where the process is long-lived.
func Serve(port int, path string) error {
	mux := http.NewServeMux()
	mux.Handle(path, Handler())
	return http.ListenAndServe(fmt.Sprintf(":%d", port), mux)
}
