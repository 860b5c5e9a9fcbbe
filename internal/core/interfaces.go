package core

import "context"

// QueryFilter carries the parsed, validated parameters of GET /logs/query.
// MessageContains and MessageRegex are mutually exclusive; the handler
// layer enforces that before a filter ever reaches a LogStore. StartTS and
// EndTS are Unix seconds (UTC, fractional), the same representation
// LogRecord.Timestamp uses, so no timezone conversion ever happens
// between the wire and the store.
type QueryFilter struct {
	ApplicationID   string
	ServiceName     string
	ModuleName      string
	MinLevel        *Level
	StartTS         float64
	EndTS           float64
	MessageContains string
	MessageRegex    string
	Limit           int
}

// LogStore is the storage contract implemented by the memory, sqlite, and
// postgres backends under internal/logstore. All methods are safe for
// concurrent use.
type LogStore interface {
	// Append assigns the next monotonic id to each record in the batch and
	// persists it. Returns the stored records in assignment order.
	Append(ctx context.Context, records []LogRecord) ([]StoredRecord, error)

	// Query returns records matching filter, ordered by (ts ASC, id ASC),
	// capped at filter.Limit.
	Query(ctx context.Context, filter QueryFilter) ([]StoredRecord, error)

	// PurgeOlderThan deletes records with ts older than cutoff (Unix
	// seconds, UTC) and returns the number of deleted rows.
	PurgeOlderThan(ctx context.Context, cutoff float64) (int64, error)

	// Clear deletes all records for applicationID and returns the number
	// of rows removed. Used by POST /logs/clear and by tests.
	Clear(ctx context.Context, applicationID string) (int64, error)

	// Health reports whether the backend is reachable.
	Health(ctx context.Context) error

	// Close releases any resources (connections, file handles) held by
	// the backend.
	Close() error
}
