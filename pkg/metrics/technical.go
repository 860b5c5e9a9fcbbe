package metrics

import "github.com/prometheus/client_golang/prometheus"

// TechnicalMetrics tracks how requests move through the system: HTTP
// traffic shape and client-side circuit-breaker transitions.
type TechnicalMetrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	RateLimitedTotal    *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

func newTechnicalMetrics(namespace string) *TechnicalMetrics {
	m := &TechnicalMetrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "technical",
			Name:      "http_requests_total",
			Help:      "Total HTTP requests, labeled by method, path, and status code.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "technical",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds, labeled by method and path.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
		RateLimitedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "technical",
			Name:      "rate_limited_total",
			Help:      "Total requests rejected by the rate limiter, labeled by rate-limit key (app:<application_id> or client IP).",
		}, []string{"application_id"}),
		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "technical",
			Name:      "circuit_breaker_state",
			Help:      "Client circuit breaker state (0=closed, 1=half_open, 2=open).",
		}, []string{"client_id"}),
		CircuitBreakerTrips: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "technical",
			Name:      "circuit_breaker_trips_total",
			Help:      "Total number of times the client circuit breaker tripped open.",
		}, []string{"client_id"}),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.RateLimitedTotal,
		m.CircuitBreakerState,
		m.CircuitBreakerTrips,
	)
	return m
}
