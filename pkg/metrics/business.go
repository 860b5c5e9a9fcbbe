package metrics

import "github.com/prometheus/client_golang/prometheus"

// BusinessMetrics tracks what the daemon is doing in domain terms: how
// many records came in, how many queries were served, how much was
// purged by retention.
type BusinessMetrics struct {
	LogsIngestedTotal    *prometheus.CounterVec
	IngestBatchSize      prometheus.Histogram
	QueriesTotal          *prometheus.CounterVec
	QueryResultSize       prometheus.Histogram
	RecordsPurgedTotal    prometheus.Counter
	RetentionRunsTotal    *prometheus.CounterVec
}

func newBusinessMetrics(namespace string) *BusinessMetrics {
	m := &BusinessMetrics{
		LogsIngestedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "logs_ingested_total",
			Help:      "Total number of log records accepted, labeled by application_id.",
		}, []string{"application_id"}),
		IngestBatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "ingest_batch_size",
			Help:      "Number of records per ingest batch.",
			Buckets:   []float64{1, 5, 10, 50, 100, 500, 1000},
		}),
		QueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "queries_total",
			Help:      "Total number of query requests served, labeled by application_id and result (hit/miss).",
		}, []string{"application_id", "result"}),
		QueryResultSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "query_result_size",
			Help:      "Number of records returned per query.",
			Buckets:   []float64{0, 1, 10, 50, 100, 500, 1000},
		}),
		RecordsPurgedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "records_purged_total",
			Help:      "Total number of records removed by the retention worker.",
		}),
		RetentionRunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "business",
			Name:      "retention_runs_total",
			Help:      "Total number of retention sweep runs, labeled by outcome.",
		}, []string{"outcome"}),
	}

	prometheus.MustRegister(
		m.LogsIngestedTotal,
		m.IngestBatchSize,
		m.QueriesTotal,
		m.QueryResultSize,
		m.RecordsPurgedTotal,
		m.RetentionRunsTotal,
	)
	return m
}
