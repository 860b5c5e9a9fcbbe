// Package client implements the DrTrace logging client: an
// application embeds a *Client and calls its level methods to emit
// structured log records, which are buffered, batched, and shipped to a
// local DrTrace daemon over HTTP, with retries and a circuit breaker
// absorbing daemon downtime without blocking the caller.
package client

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/CaoDuyThanh/drtrace/pkg/client/config"
	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// Client is the embeddable DrTrace logging client. A Client is safe for
// concurrent use by multiple goroutines.
type Client struct {
	cfg      *config.Config
	minLevel Level
	builder  *Builder
	buffer   *boundedBuffer
	tr       *transport
	fl       *flusher
	logger   *slog.Logger

	closed atomic.Bool
	mu     sync.Mutex
}

// New constructs a Client from cfg, starting its background flush
// worker immediately. Pass config.Resolve() for the standard
// defaults->file->env resolution, or a hand-built *config.Config for
// tests. The client runs with no circuit-breaker metrics; use
// NewWithMetrics to report into the embedding application's own
// Prometheus registry.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return newClient(cfg, logger, nil)
}

// NewWithMetrics constructs a Client the same way as New, additionally
// publishing the circuit breaker's state and trip count into reg
// (labeled by cfg.ApplicationID). reg is the EMBEDDING APPLICATION's own
// *metrics.Registry, not the daemon's: the daemon cannot observe a
// remote client's breaker, so an application that wants this
// observability exposes it on its own /metrics endpoint.
func NewWithMetrics(cfg *config.Config, logger *slog.Logger, reg *metrics.Registry) *Client {
	return newClient(cfg, logger, reg)
}

func newClient(cfg *config.Config, logger *slog.Logger, reg *metrics.Registry) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	tr := newTransport(cfg.DaemonURL, cfg.HTTPTimeout, cfg.MaxRetries, cfg.RetryBackoff, cfg.CircuitResetTimeout)
	if reg != nil {
		tr.withMetrics(reg.Technical(), cfg.ApplicationID)
	}
	buf := newBoundedBuffer(cfg.MaxBufferSize)
	fl := newFlusher(buf, tr, cfg.ApplicationID, cfg.FlushInterval, cfg.BatchSize, logger)

	c := &Client{
		cfg:      cfg,
		minLevel: ParseLevel(cfg.MinLevel),
		builder:  NewBuilder(cfg.ApplicationID, cfg.ServiceName),
		buffer:   buf,
		tr:       tr,
		fl:       fl,
		logger:   logger,
	}
	fl.Start()
	return c
}

// IsEnabled reports whether the client will accept log calls. A
// disabled client (config.Enabled == false) silently no-ops every
// level method, so callers never need their own feature-flag check
// around logging call sites.
func (c *Client) IsEnabled() bool {
	return c.cfg.Enabled && !c.closed.Load()
}

func (c *Client) log(level Level, moduleName, message string, fields map[string]any) {
	if !c.IsEnabled() || level < c.minLevel {
		return
	}
	rec := c.builder.Build(level, moduleName, message, fields)
	if dropped := c.buffer.Add(rec); dropped {
		c.logger.Warn("drtrace: buffer full, dropped oldest record", "module", moduleName)
	}
	c.fl.signalIfFull()
}

// Debug logs a debug-level record for moduleName.
func (c *Client) Debug(moduleName, message string, fields map[string]any) {
	c.log(LevelDebug, moduleName, message, fields)
}

// Info logs an info-level record for moduleName.
func (c *Client) Info(moduleName, message string, fields map[string]any) {
	c.log(LevelInfo, moduleName, message, fields)
}

// Warn logs a warn-level record for moduleName.
func (c *Client) Warn(moduleName, message string, fields map[string]any) {
	c.log(LevelWarn, moduleName, message, fields)
}

// Error logs an error-level record for moduleName.
func (c *Client) Error(moduleName, message string, fields map[string]any) {
	c.log(LevelError, moduleName, message, fields)
}

// Critical logs a critical-level record for moduleName.
func (c *Client) Critical(moduleName, message string, fields map[string]any) {
	c.log(LevelCritical, moduleName, message, fields)
}

// Log logs a record at the given level for moduleName.
func (c *Client) Log(level Level, moduleName, message string, fields map[string]any) {
	c.log(level, moduleName, message, fields)
}

// ErrorWithException logs an error-level record carrying exception_type
// and stacktrace metadata, for callers reporting a caught exception
// rather than a plain error message.
func (c *Client) ErrorWithException(moduleName, message, exceptionType, stacktrace string, fields map[string]any) {
	if !c.IsEnabled() || LevelError < c.minLevel {
		return
	}
	rec := c.builder.BuildException(LevelError, moduleName, message, exceptionType, stacktrace, fields)
	if dropped := c.buffer.Add(rec); dropped {
		c.logger.Warn("drtrace: buffer full, dropped oldest record", "module", moduleName)
	}
	c.fl.signalIfFull()
}

// Flush synchronously drains and sends whatever is currently buffered.
// It is safe to call at any time, including concurrently with Close;
// transport errors are logged, never returned, so a caller's flush call
// can never fail the surrounding request path.
func (c *Client) Flush() {
	c.fl.flush(context.Background())
}

// Close stops the background worker, joins it, performs one final
// flush, and tears down the transport. Close is idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Swap(true) {
		return nil
	}
	c.fl.Stop(context.Background())
	return c.tr.Close()
}
