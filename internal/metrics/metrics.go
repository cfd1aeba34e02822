// Package metrics exposes the service's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors the service records against.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	SnapshotDuration prometheus.Histogram
	DegradedBuckets  prometheus.Counter
	CacheHits        prometheus.Counter
	CacheMisses      prometheus.Counter
}

// New creates and registers all collectors on the given registerer.
// Tests pass a fresh prometheus.NewRegistry to avoid collisions.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rigops_http_requests_total",
			Help: "HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rigops_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		SnapshotDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "rigops_snapshot_compute_seconds",
			Help:    "Wall time spent computing a full stats snapshot.",
			Buckets: prometheus.DefBuckets,
		}),
		DegradedBuckets: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigops_snapshot_degraded_buckets_total",
			Help: "Sub-buckets that fell back to zero defaults after a query failure.",
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigops_snapshot_cache_hits_total",
			Help: "Snapshot cache hits.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rigops_snapshot_cache_misses_total",
			Help: "Snapshot cache misses.",
		}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.SnapshotDuration,
		m.DegradedBuckets,
		m.CacheHits,
		m.CacheMisses,
	)
	return m
}
