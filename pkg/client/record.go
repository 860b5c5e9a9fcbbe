package client

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// Level mirrors internal/core.Level's ordinal scale so a client and the
// daemon it talks to agree on severity ordering without sharing a module.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelCritical
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelCritical:
		return "critical"
	default:
		return "info"
	}
}

func (l Level) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// ParseLevel accepts the same case-insensitive aliases as the daemon
// ("warning" -> warn, "fatal" -> critical), defaulting to LevelDebug for
// anything unrecognized so a caller's min_level misconfiguration never
// silently suppresses logging.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "critical", "fatal":
		return LevelCritical
	default:
		return LevelDebug
	}
}

// LogRecord is the wire shape ingested by the daemon's /logs/ingest
// endpoint. Field names and omitempty behavior match internal/core.LogRecord
// exactly, since both sides marshal/unmarshal the same JSON.
type LogRecord struct {
	TS             float64        `json:"ts"`
	Level          Level          `json:"level"`
	Message        string         `json:"message"`
	ApplicationID  string         `json:"application_id"`
	ModuleName     string         `json:"module_name"`
	ServiceName    string         `json:"service_name,omitempty"`
	FilePath       string         `json:"file_path,omitempty"`
	LineNo         int            `json:"line_no,omitempty"`
	ExceptionType  string         `json:"exception_type,omitempty"`
	Stacktrace     string         `json:"stacktrace,omitempty"`
	Context        map[string]any `json:"context,omitempty"`
}

// LogBatch is the request body posted to /logs/ingest: a single
// application_id alongside the ordered sequence of records accumulated
// since the last flush.
type LogBatch struct {
	ApplicationID string      `json:"application_id"`
	Logs          []LogRecord `json:"logs"`
}

// Builder stamps the fields a caller never supplies directly: the
// timestamp, the configured application/service identity, and a
// per-builder monotonic sequence number. Go has no stable per-goroutine
// identity to report as a thread id, so context["thread_id"] is a
// builder-scoped sequence counter instead.
type Builder struct {
	applicationID string
	serviceName   string
	seq           atomic.Int64
}

// NewBuilder constructs a Builder bound to a single application/service
// identity pair, resolved once from Config at client construction.
func NewBuilder(applicationID, serviceName string) *Builder {
	return &Builder{applicationID: applicationID, serviceName: serviceName}
}

// Build assembles a LogRecord for the given level/message/module, stamping
// ts as the current UTC time with sub-second precision and attaching the
// language/thread_id context entries alongside any caller-supplied fields.
func (b *Builder) Build(level Level, moduleName, message string, fields map[string]any) LogRecord {
	ctx := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		ctx[k] = v
	}
	ctx["language"] = "go"
	ctx["thread_id"] = fmt.Sprintf("g-%d", b.seq.Add(1))

	return LogRecord{
		TS:            float64(time.Now().UnixNano()) / 1e9,
		Level:         level,
		Message:       message,
		ApplicationID: b.applicationID,
		ModuleName:    moduleName,
		ServiceName:   b.serviceName,
		Context:       ctx,
	}
}

// BuildException is Build plus the exception_type/stacktrace fields the
// daemon stores alongside error-class records.
func (b *Builder) BuildException(level Level, moduleName, message, exceptionType, stacktrace string, fields map[string]any) LogRecord {
	rec := b.Build(level, moduleName, message, fields)
	rec.ExceptionType = exceptionType
	rec.Stacktrace = stacktrace
	return rec
}
