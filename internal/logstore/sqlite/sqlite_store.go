// Package sqlite implements core.LogStore using an embedded SQLite
// database. This is the default backend: no external dependencies, a
// single file, suitable for a local observability daemon.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	// Pure Go SQLite driver (no CGO, easier cross-compilation)
	_ "modernc.org/sqlite"

	"github.com/CaoDuyThanh/drtrace/internal/core"
	"github.com/CaoDuyThanh/drtrace/internal/query"
)

// Store implements core.LogStore backed by an embedded SQLite database.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
	path   string
	mu     sync.RWMutex
}

// New opens (creating if necessary) a SQLite-backed log store at path.
func New(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path cannot be empty")
	}
	if strings.Contains(path, "..") {
		return nil, fmt.Errorf("invalid path contains '..': %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite ping failed: %w", err)
	}

	s := &Store{db: db, logger: logger, path: path}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if err := os.Chmod(path, 0600); err != nil {
		logger.Warn("failed to set sqlite file permissions to 0600", "path", path, "error", err)
	}

	logger.Info("sqlite log store initialized", "path", path, "wal_mode", true)
	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS logs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    application_id TEXT NOT NULL,
    service_name TEXT NOT NULL DEFAULT '',
    module_name TEXT NOT NULL,
    level INTEGER NOT NULL,
    message TEXT NOT NULL,
    ts REAL NOT NULL,
    file_path TEXT NOT NULL DEFAULT '',
    line_no INTEGER NOT NULL DEFAULT 0,
    exception_type TEXT NOT NULL DEFAULT '',
    stacktrace TEXT NOT NULL DEFAULT '',
    context TEXT NOT NULL DEFAULT '{}'
);

CREATE INDEX IF NOT EXISTS idx_logs_application_ts ON logs(application_id, ts);
CREATE INDEX IF NOT EXISTS idx_logs_service_ts ON logs(service_name, ts);
CREATE INDEX IF NOT EXISTS idx_logs_module_ts ON logs(module_name, ts);
`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	s.logger.Debug("sqlite schema initialized", "tables", 1, "indexes", 3)
	return nil
}

func (s *Store) Append(ctx context.Context, records []core.LogRecord) ([]core.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO logs (application_id, service_name, module_name, level, message, ts, file_path, line_no, exception_type, stacktrace, context)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	stored := make([]core.StoredRecord, 0, len(records))
	for _, r := range records {
		ctxJSON, err := json.Marshal(r.Context)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal context: %w", err)
		}

		result, err := stmt.ExecContext(ctx, r.ApplicationID, r.ServiceName, r.ModuleName, int(r.Level), r.Message, r.Timestamp,
			r.FilePath, r.LineNo, r.ExceptionType, r.Stacktrace, string(ctxJSON))
		if err != nil {
			return nil, fmt.Errorf("failed to insert log record: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("failed to read inserted id: %w", err)
		}
		stored = append(stored, core.StoredRecord{ID: id, LogRecord: r})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit append: %w", err)
	}
	return stored, nil
}

func (s *Store) Query(ctx context.Context, filter core.QueryFilter) ([]core.StoredRecord, error) {
	if filter.Limit == 0 {
		// A limit of exactly 0 is a valid request for zero results, not
		// "no cap" (query.Builder.Limit treats <=0 as "omit the clause",
		// which would otherwise return everything).
		return []core.StoredRecord{}, nil
	}

	b := query.New(query.DialectQuestion,
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
		b.Where("message LIKE ? ESCAPE '\\' COLLATE NOCASE", "%"+escapeLike(filter.MessageContains)+"%")
	}

	var messageRe *regexp.Regexp
	if filter.MessageRegex != "" {
		re, err := regexp.Compile(filter.MessageRegex)
		if err != nil {
			return nil, core.ErrInvalidQuery
		}
		messageRe = re
	}

	// message_regex can't be pushed into SQL, so don't let the builder cap
	// rows at filter.Limit in that case - filtering happens after the scan.
	if messageRe == nil {
		b.Limit(filter.Limit)
	}
	b.OrderBy("ts ASC, id ASC")

	s.mu.RLock()
	defer s.mu.RUnlock()

	sqlQuery, args := b.Build()
	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	results := make([]core.StoredRecord, 0)
	for rows.Next() {
		var sr core.StoredRecord
		var level int
		var ctxJSON string
		if err := rows.Scan(&sr.ID, &sr.ApplicationID, &sr.ServiceName, &sr.ModuleName, &level, &sr.Message, &sr.Timestamp,
			&sr.FilePath, &sr.LineNo, &sr.ExceptionType, &sr.Stacktrace, &ctxJSON); err != nil {
			return nil, fmt.Errorf("failed to scan log row: %w", err)
		}
		sr.Level = core.Level(level)
		if ctxJSON != "" && ctxJSON != "{}" {
			if err := json.Unmarshal([]byte(ctxJSON), &sr.Context); err != nil {
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

	// message_regex cannot be pushed into SQL, so results may still exceed
	// the limit when that filter is in play; trim here.
	if messageRe != nil && filter.Limit >= 0 && len(results) > filter.Limit {
		results = results[:filter.Limit]
	}

	return results, rows.Err()
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "%", "\\%")
	s = strings.ReplaceAll(s, "_", "\\_")
	return s
}

func (s *Store) PurgeOlderThan(ctx context.Context, cutoff float64) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result, err := s.db.ExecContext(ctx, "DELETE FROM logs WHERE ts < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge logs: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) Clear(ctx context.Context, applicationID string) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if applicationID == "" {
		result, err := s.db.ExecContext(ctx, "DELETE FROM logs")
		if err != nil {
			return 0, fmt.Errorf("failed to clear logs: %w", err)
		}
		removed, err := result.RowsAffected()
		if err != nil {
			return 0, err
		}
		if _, err := s.db.ExecContext(ctx, "DELETE FROM sqlite_sequence WHERE name = 'logs'"); err != nil {
			return removed, err
		}
		return removed, nil
	}

	result, err := s.db.ExecContext(ctx, "DELETE FROM logs WHERE application_id = ?", applicationID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear logs for application: %w", err)
	}
	return result.RowsAffected()
}

func (s *Store) Health(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		if err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		s.logger.Info("sqlite log store closed", "path", s.path)
	}
	return nil
}

// GetFileSize returns the current database file size in bytes, or 0 if
// the file does not exist.
func (s *Store) GetFileSize() int64 {
	info, err := os.Stat(s.path)
	if err != nil {
		return 0
	}
	return info.Size()
}
