// Package core defines the domain types shared by the daemon's ingestion
// and query engine: log levels, wire records, and the storage contract.
package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Level is the ordinal severity of a log record. Higher values are more
// severe; comparisons ("min_level" filtering) rely on this ordering.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

var levelNames = [...]string{"debug", "info", "warn", "error", "critical"}

// String returns the wire representation of the level.
func (l Level) String() string {
	if l < LevelDebug || l > LevelCritical {
		return "unknown"
	}
	return levelNames[l]
}

// MarshalJSON renders the level as its lowercase wire name.
func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON parses a wire level name into its ordinal value.
func (l *Level) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseLevel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel parses a wire-format level name ("debug".."critical"),
// case-insensitively, normalizing to lowercase on ingest per the stored
// record invariant.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "critical", "fatal":
		return LevelCritical, nil
	default:
		return 0, fmt.Errorf("unknown log level: %q", s)
	}
}

// LogRecord is a single client-emitted log entry, as carried on the wire
// in a LogBatch and persisted (as a StoredRecord) by the daemon. Field
// names and JSON tags match the wire contract exactly so /openapi.json
// and this struct never drift.
type LogRecord struct {
	Timestamp     float64        `json:"ts" validate:"required,gt=0"`
	Level         Level          `json:"level"`
	Message       string         `json:"message" validate:"required"`
	ApplicationID string         `json:"application_id" validate:"required"`
	ModuleName    string         `json:"module_name" validate:"required"`
	ServiceName   string         `json:"service_name,omitempty"`
	FilePath      string         `json:"file_path,omitempty"`
	LineNo        int            `json:"line_no,omitempty"`
	ExceptionType string         `json:"exception_type,omitempty"`
	Stacktrace    string         `json:"stacktrace,omitempty"`
	Context       map[string]any `json:"context,omitempty"`
}

// LogBatch is the body of POST /logs/ingest: one or more records emitted
// by a single client process between flushes.
type LogBatch struct {
	ApplicationID string      `json:"application_id"`
	Logs          []LogRecord `json:"logs"`
}

// StoredRecord is a LogRecord after the daemon has assigned it a
// monotonically increasing id on append.
type StoredRecord struct {
	ID int64 `json:"id"`
	LogRecord
}

// jsonFieldName maps a validator.FieldError's Go struct field name back to
// its wire name, so validation errors read in terms of the field the
// client actually sent.
var jsonFieldName = map[string]string{
	"Timestamp":     "ts",
	"Message":       "message",
	"ApplicationID": "application_id",
	"ModuleName":    "module_name",
}

// Validate checks the fields the daemon requires before persisting a
// record: ts, message, application_id, and module_name must all be
// present, and ts must be a positive Unix timestamp. Level is validated
// by its own JSON unmarshaling, which rejects any token outside the
// enumerated set before Validate ever runs.
func (r LogRecord) Validate() error {
	if err := validate.Struct(r); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok || len(verrs) == 0 {
			return err
		}
		fe := verrs[0]
		name := jsonFieldName[fe.StructField()]
		if name == "" {
			name = fe.Field()
		}
		return fmt.Errorf("%s is required", name)
	}
	return nil
}
