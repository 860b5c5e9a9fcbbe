package logstore

import (
	"context"
	"time"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// instrumented wraps a core.LogStore, recording per-operation latency and
// error counts against pkg/metrics/infra.go's StoreOpLatency/StoreOpErrors,
// labeled by backend name so sqlite/postgres/memory show up separately.
type instrumented struct {
	core.LogStore
	backend string
	metrics *metrics.InfraMetrics
}

// instrument wraps store so every Append/Query/PurgeOlderThan/Clear call
// reports its latency and, on failure, an error count.
func instrument(store core.LogStore, backend string, reg *metrics.Registry) core.LogStore {
	if reg == nil {
		return store
	}
	return &instrumented{LogStore: store, backend: backend, metrics: reg.Infra()}
}

func (s *instrumented) observe(op string, start time.Time, err error) {
	s.metrics.StoreOpLatency.WithLabelValues(s.backend, op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.metrics.StoreOpErrors.WithLabelValues(s.backend, op).Inc()
	}
}

func (s *instrumented) Append(ctx context.Context, records []core.LogRecord) ([]core.StoredRecord, error) {
	start := time.Now()
	stored, err := s.LogStore.Append(ctx, records)
	s.observe("append", start, err)
	return stored, err
}

func (s *instrumented) Query(ctx context.Context, filter core.QueryFilter) ([]core.StoredRecord, error) {
	start := time.Now()
	records, err := s.LogStore.Query(ctx, filter)
	s.observe("query", start, err)
	return records, err
}

func (s *instrumented) PurgeOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	start := time.Now()
	removed, err := s.LogStore.PurgeOlderThan(ctx, cutoff)
	s.observe("purge", start, err)
	return removed, err
}

func (s *instrumented) Clear(ctx context.Context, applicationID string) (int64, error) {
	start := time.Now()
	removed, err := s.LogStore.Clear(ctx, applicationID)
	s.observe("clear", start, err)
	return removed, err
}
