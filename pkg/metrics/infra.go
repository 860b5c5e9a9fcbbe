package metrics

import "github.com/prometheus/client_golang/prometheus"

// InfraMetrics tracks what's underneath: storage backend health and the
// two-tier query cache.
type InfraMetrics struct {
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec
	CacheErrors   *prometheus.CounterVec
	StoreOpErrors *prometheus.CounterVec
	StoreOpLatency *prometheus.HistogramVec
}

func newInfraMetrics(namespace string) *InfraMetrics {
	m := &InfraMetrics{
		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "infra",
			Name:      "cache_hits_total",
			Help:      "Total query cache hits, labeled by tier (l1/l2).",
		}, []string{"tier"}),
		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "infra",
			Name:      "cache_misses_total",
			Help:      "Total query cache misses, labeled by tier (l1/l2).",
		}, []string{"tier"}),
		CacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "infra",
			Name:      "cache_errors_total",
			Help:      "Total query cache errors, labeled by tier (l1/l2).",
		}, []string{"tier"}),
		StoreOpErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "infra",
			Name:      "store_op_errors_total",
			Help:      "Total log store operation errors, labeled by backend and operation.",
		}, []string{"backend", "op"}),
		StoreOpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "infra",
			Name:      "store_op_duration_seconds",
			Help:      "Log store operation latency in seconds, labeled by backend and operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
	}

	prometheus.MustRegister(
		m.CacheHits,
		m.CacheMisses,
		m.CacheErrors,
		m.StoreOpErrors,
		m.StoreOpLatency,
	)
	return m
}
