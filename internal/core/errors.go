package core

import "errors"

// Sentinel errors for LogStore callers. The query handler validates
// filters itself before calling Query and reports any store error as
// INTERNAL_ERROR.
var (
	// ErrInvalidQuery is returned by Query when
	// filter.MessageRegex does not compile.
	ErrInvalidQuery = errors.New("invalid query parameters")

	// ErrInvalidRecord names a record that fails schema validation. No
	// LogStore's Append returns it: the ingest handler validates records
	// with LogRecord.Validate before appending them.
	ErrInvalidRecord = errors.New("invalid log record")
)

// ErrNotFound indicates a query referenced an unknown resource (query id,
// used once the daemon supports saved/paged queries via QUERY_NOT_FOUND).
type ErrNotFound struct {
	Resource string
}

func (e ErrNotFound) Error() string {
	return e.Resource + " not found"
}
