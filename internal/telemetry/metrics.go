package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// VendorLookups counts OUI vendor lookups by tier and outcome.
	VendorLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netscene",
			Name:      "vendor_lookups_total",
			Help:      "Total number of vendor lookups by provider tier and result",
		},
		[]string{"tier", "result"},
	)

	// WorkflowRuns counts finished workflow runs by terminal status.
	WorkflowRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netscene",
			Name:      "workflow_runs_total",
			Help:      "Total number of workflow runs by terminal status",
		},
		[]string{"status"},
	)

	// ScenesBuilt counts normalized scenes by variant (raw, enhanced).
	ScenesBuilt = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netscene",
			Name:      "scenes_built_total",
			Help:      "Total number of scenes produced by the normalizer",
		},
		[]string{"variant"},
	)

	// SceneCacheHits counts result cache outcomes.
	SceneCacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netscene",
			Name:      "scene_cache_total",
			Help:      "Scene cache accesses by outcome (hit, miss, stale)",
		},
		[]string{"outcome"},
	)

	// RecordsDropped counts malformed records discarded during normalization.
	RecordsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netscene",
			Name:      "records_dropped_total",
			Help:      "Malformed raw records dropped by the normalizer",
		},
		[]string{"kind"},
	)

	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// Idempotent; safe to call from multiple entrypoints.
func InitMetrics() {
	once.Do(func() {
		prometheus.DefaultRegisterer.Register(VendorLookups)
		prometheus.DefaultRegisterer.Register(WorkflowRuns)
		prometheus.DefaultRegisterer.Register(ScenesBuilt)
		prometheus.DefaultRegisterer.Register(SceneCacheHits)
		prometheus.DefaultRegisterer.Register(RecordsDropped)
	})
}
