// Package memory implements core.LogStore with an in-process slice. Used
// by tests and as a graceful-degradation fallback when the configured SQL
// backend fails to initialize.
//
// WARNING: data is NOT persisted - lost on restart, crash, or pod eviction.
package memory

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/CaoDuyThanh/drtrace/internal/core"
)

const defaultCapacity = 100000

// Store implements core.LogStore using an in-memory slice guarded by a
// RWMutex. Thread-safe for concurrent append/query.
type Store struct {
	mu       sync.RWMutex
	records  []core.StoredRecord
	nextID   int64
	logger   *slog.Logger
	capacity int
}

// New creates an in-memory log store with the default capacity (FIFO
// eviction once exceeded).
func New(logger *slog.Logger) *Store {
	logger.Warn("in-memory log store created (data will NOT persist)")
	return &Store{
		records:  make([]core.StoredRecord, 0, 1024),
		nextID:   1,
		logger:   logger,
		capacity: defaultCapacity,
	}
}

func (s *Store) Append(ctx context.Context, records []core.LogRecord) ([]core.StoredRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]core.StoredRecord, 0, len(records))
	for _, r := range records {
		sr := core.StoredRecord{ID: s.nextID, LogRecord: r}
		s.nextID++
		s.records = append(s.records, sr)
		stored = append(stored, sr)
	}

	if over := len(s.records) - s.capacity; over > 0 {
		s.logger.Warn("memory log store capacity exceeded, evicting oldest records",
			"capacity", s.capacity, "evicted", over)
		s.records = s.records[over:]
	}

	return stored, nil
}

func (s *Store) Query(ctx context.Context, filter core.QueryFilter) ([]core.StoredRecord, error) {
	var messageRe *regexp.Regexp
	if filter.MessageRegex != "" {
		re, err := regexp.Compile(filter.MessageRegex)
		if err != nil {
			return nil, core.ErrInvalidQuery
		}
		messageRe = re
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]core.StoredRecord, 0, len(s.records))
	for _, r := range s.records {
		if !matchesFilter(r, filter, messageRe) {
			continue
		}
		matched = append(matched, r)
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].Timestamp, matched[j].Timestamp
		if ti != tj {
			return ti < tj
		}
		return matched[i].ID < matched[j].ID
	})

	if filter.Limit >= 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

func matchesFilter(r core.StoredRecord, filter core.QueryFilter, messageRe *regexp.Regexp) bool {
	if r.Timestamp < filter.StartTS || r.Timestamp > filter.EndTS {
		return false
	}
	if filter.ApplicationID != "" && r.ApplicationID != filter.ApplicationID {
		return false
	}
	if filter.ServiceName != "" && r.ServiceName != filter.ServiceName {
		return false
	}
	if filter.ModuleName != "" && r.ModuleName != filter.ModuleName {
		return false
	}
	if filter.MinLevel != nil && r.Level < *filter.MinLevel {
		return false
	}
	if filter.MessageContains != "" && !strings.Contains(strings.ToLower(r.Message), strings.ToLower(filter.MessageContains)) {
		return false
	}
	if messageRe != nil && !messageRe.MatchString(r.Message) {
		return false
	}
	return true
}

func (s *Store) PurgeOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.records[:0]
	var purged int64
	for _, r := range s.records {
		if r.Timestamp < cutoff {
			purged++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return purged, nil
}

func (s *Store) Clear(ctx context.Context, applicationID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if applicationID == "" {
		removed := int64(len(s.records))
		s.records = s.records[:0]
		s.nextID = 1
		return removed, nil
	}

	kept := s.records[:0]
	var removed int64
	for _, r := range s.records {
		if r.ApplicationID == applicationID {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	return removed, nil
}

func (s *Store) Health(ctx context.Context) error {
	return nil
}

func (s *Store) Close() error {
	s.logger.Info("memory log store closed (data discarded)")
	return nil
}
