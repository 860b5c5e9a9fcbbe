// Package retention implements the daemon's background purge worker: a
// ticker-driven loop with a single-flight guard against overlapping
// sweeps.
package retention

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// Worker periodically purges records older than the configured
// retention window. Retention never blocks ingest or query requests:
// PurgeOlderThan is the store's own responsibility to bound, and the
// worker holds no application-level lock across the call.
type Worker struct {
	store    core.LogStore
	metrics  *metrics.BusinessMetrics
	logger   *slog.Logger
	days     int
	interval time.Duration

	mu         sync.Mutex
	inProgress bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorker constructs a retention Worker. days is the retention window
// (validated by internal/config to be in [1, 365]); interval is how
// often the purge sweep runs (typically one hour).
func NewWorker(store core.LogStore, reg *metrics.Registry, logger *slog.Logger, days int, interval time.Duration) *Worker {
	return &Worker{
		store:    store,
		metrics:  reg.Business(),
		logger:   logger,
		days:     days,
		interval: interval,
	}
}

// Start launches the background sweep loop. Safe to call once.
func (w *Worker) Start(ctx context.Context) {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.run()
}

func (w *Worker) run() {
	defer w.wg.Done()

	w.logger.Info("retention worker started", "retention_days", w.days, "interval", w.interval)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-w.ctx.Done():
			w.logger.Info("retention worker stopping")
			return
		}
	}
}

// sweep computes the cutoff and purges anything older, single-flighted
// against a concurrent manual call (Stop does not trigger one, but a
// future admin-triggered sweep might).
func (w *Worker) sweep() {
	w.mu.Lock()
	if w.inProgress {
		w.mu.Unlock()
		return
	}
	w.inProgress = true
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.inProgress = false
		w.mu.Unlock()
	}()

	cutoff := float64(time.Now().Add(-time.Duration(w.days) * 24 * time.Hour).Unix())

	removed, err := w.store.PurgeOlderThan(w.ctx, cutoff)
	if err != nil {
		w.logger.Error("retention sweep failed", "error", err)
		w.metrics.RetentionRunsTotal.WithLabelValues("failed").Inc()
		return
	}

	w.logger.Info("retention sweep completed", "removed", removed, "cutoff", cutoff)
	w.metrics.RetentionRunsTotal.WithLabelValues("success").Inc()
	if removed > 0 {
		w.metrics.RecordsPurgedTotal.Add(float64(removed))
	}
}

// Stop cancels the worker's context and joins it.
func (w *Worker) Stop() {
	if w.cancel == nil {
		return
	}
	w.cancel()
	w.wg.Wait()
}
