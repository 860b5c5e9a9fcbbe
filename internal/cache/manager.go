package cache

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// Manager fronts the log store's Query path with an L1 (always present)
// and an optional L2 cache, recording hit/miss metrics on each tier.
type Manager struct {
	l1      *L1
	l2      *L2
	logger  *slog.Logger
	metrics *metrics.InfraMetrics
}

// NewManager builds a cache manager. l2 may be nil to run L1-only.
func NewManager(l1 *L1, l2 *L2, logger *slog.Logger, reg *metrics.Registry) *Manager {
	return &Manager{l1: l1, l2: l2, logger: logger, metrics: reg.Infra()}
}

// Key renders a stable cache key for a query filter by sorting its
// fields into a deterministic string and hashing it.
func Key(filter core.QueryFilter) string {
	parts := []string{
		"app=" + filter.ApplicationID,
		"svc=" + filter.ServiceName,
		"mod=" + filter.ModuleName,
		"start=" + strconv.FormatFloat(filter.StartTS, 'f', -1, 64),
		"end=" + strconv.FormatFloat(filter.EndTS, 'f', -1, 64),
		"contains=" + filter.MessageContains,
		"regex=" + filter.MessageRegex,
		"limit=" + strconv.Itoa(filter.Limit),
	}
	if filter.MinLevel != nil {
		parts = append(parts, "minlevel="+strconv.Itoa(int(*filter.MinLevel)))
	}
	sort.Strings(parts)

	sum := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return "query:" + base64.RawURLEncoding.EncodeToString(sum[:16])
}

// Get checks L1, then L2 if present, promoting an L2 hit into L1.
func (m *Manager) Get(ctx context.Context, key string) ([]core.StoredRecord, bool) {
	if records, ok := m.l1.Get(key); ok {
		m.metrics.CacheHits.WithLabelValues("l1").Inc()
		return records, true
	}
	m.metrics.CacheMisses.WithLabelValues("l1").Inc()

	if m.l2 == nil {
		return nil, false
	}

	records, err := m.l2.Get(ctx, key)
	if err != nil {
		if err != ErrMiss {
			m.logger.Warn("l2 cache get failed", "error", err)
			m.metrics.CacheErrors.WithLabelValues("l2").Inc()
		}
		m.metrics.CacheMisses.WithLabelValues("l2").Inc()
		return nil, false
	}

	m.metrics.CacheHits.WithLabelValues("l2").Inc()
	m.l1.Set(key, records)
	return records, true
}

// Set populates both tiers.
func (m *Manager) Set(ctx context.Context, key string, records []core.StoredRecord) {
	m.l1.Set(key, records)
	if m.l2 == nil {
		return
	}
	if err := m.l2.Set(ctx, key, records); err != nil {
		m.logger.Warn("l2 cache set failed", "error", err)
		m.metrics.CacheErrors.WithLabelValues("l2").Inc()
	}
}

// InvalidateAll drops every cached query result. Called after any append,
// purge, or clear, since those mutate which records a query would return.
func (m *Manager) InvalidateAll(ctx context.Context) {
	m.l1.Purge()
	if m.l2 == nil {
		return
	}
	if err := m.l2.FlushAll(ctx); err != nil {
		m.logger.Warn("l2 cache flush failed", "error", err)
	}
}
