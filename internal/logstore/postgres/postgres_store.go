// Package postgres implements core.LogStore on top of a PostgreSQL
// connection pool, selected for the "standard" deployment profile when a
// single SQLite file is not enough (multiple daemon replicas, larger
// retention windows).
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/internal/query"
)

// Store implements core.LogStore backed by a pgxpool.Pool. Schema is
// managed out of band by internal/migrations (goose), not by Store itself.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New wraps an already-connected pool. Callers run migrations (see
// internal/migrations) before constructing a Store.
func New(pool *pgxpool.Pool, logger *slog.Logger) *Store {
	return &Store{pool: pool, logger: logger}
}

func (s *Store) Append(ctx context.Context, records []core.LogRecord) ([]core.StoredRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	stored := make([]core.StoredRecord, 0, len(records))
	for _, r := range records {
		ctxJSON, err := json.Marshal(r.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal context: %w", err)
		}

		var id int64
		err = tx.QueryRow(ctx, `
INSERT INTO logs (application_id, service_name, module_name, level, message, ts, file_path, line_no, exception_type, stacktrace, context)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id
`, r.ApplicationID, r.ServiceName, r.ModuleName, int(r.Level), r.Message, r.Timestamp,
			r.FilePath, r.LineNo, r.ExceptionType, r.Stacktrace, ctxJSON).Scan(&id)
		if err != nil {
			return nil, fmt.Errorf("failed to insert log record: %w", err)
		}
		stored = append(stored, core.StoredRecord{ID: id, LogRecord: r})
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit append: %w", err)
	}
	return stored, nil
}

func (s *Store) Query(ctx context.Context, filter core.QueryFilter) ([]core.StoredRecord, error) {
	if filter.Limit == 0 {
		return []core.StoredRecord{}, nil
	}

	b := query.New(query.DialectDollar,
		"SELECT id, application_id, service_name, module_name, level, message, ts, file_path, line_no, exception_type, stacktrace, context FROM logs")

	b.Where("ts >= ?", filter.StartTS)
	b.Where("ts <= ?", filter.EndTS)
	if filter.ApplicationID != "" {
		b.Where("application_id = ?", filter.ApplicationID)
	}
	if filter.ServiceName != "" {
		b.Where("service_name = ?", filter.ServiceName)
	}
	if filter.ModuleName != "" {
		b.Where("module_name = ?", filter.ModuleName)
	}
	if filter.MinLevel != nil {
		b.Where("level >= ?", int(*filter.MinLevel))
	}
	if filter.MessageContains != "" {
		b.Where("message ILIKE ?", "%"+filter.MessageContains+"%")
	}

	var messageRe *regexp.Regexp
	if filter.MessageRegex != "" {
		re, err := regexp.Compile(filter.MessageRegex)
		if err != nil {
			return nil, core.ErrInvalidQuery
		}
		messageRe = re
	}

	if messageRe == nil {
		b.Limit(filter.Limit)
	}
	b.OrderBy("ts ASC, id ASC")

	sqlQuery, args := b.Build()
	rows, err := s.pool.Query(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	results := make([]core.StoredRecord, 0)
	for rows.Next() {
		var sr core.StoredRecord
		var level int
		var ctxJSON []byte
		if err := rows.Scan(&sr.ID, &sr.ApplicationID, &sr.ServiceName, &sr.ModuleName, &level, &sr.Message, &sr.Timestamp,
			&sr.FilePath, &sr.LineNo, &sr.ExceptionType, &sr.Stacktrace, &ctxJSON); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		sr.Level = core.Level(level)
		if len(ctxJSON) > 0 {
			if err := json.Unmarshal(ctxJSON, &sr.Context); err != nil {
				return nil, fmt.Errorf("failed to unmarshal context: %w", err)
			}
		}

		if messageRe != nil && !messageRe.MatchString(sr.Message) {
			continue
		}
		results = append(results, sr)
		if filter.Limit >= 0 && len(results) >= filter.Limit && messageRe == nil {
			break
		}
	}
	if messageRe != nil && filter.Limit >= 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}

	return results, rows.Err()
}

func (s *Store) PurgeOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	tag, err := s.pool.Exec(ctx, "DELETE FROM logs WHERE ts < $1", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Clear(ctx context.Context, applicationID string) (int64, error) {
	if applicationID == "" {
		// Counted DELETE instead of TRUNCATE: TRUNCATE doesn't report a row
		// count, and callers need the removed count for the response body.
		tag, err := s.pool.Exec(ctx, "DELETE FROM logs")
		if err != nil {
			return 0, fmt.Errorf("failed to clear logs: %w", err)
		}
		if _, err := s.pool.Exec(ctx, "ALTER SEQUENCE logs_id_seq RESTART WITH 1"); err != nil {
			return tag.RowsAffected(), err
		}
		return tag.RowsAffected(), nil
	}

	tag, err := s.pool.Exec(ctx, "DELETE FROM logs WHERE application_id = $1", applicationID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear logs for application: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Close() error {
	s.pool.Close()
	s.logger.Info("postgres log store closed")
	return nil
}
