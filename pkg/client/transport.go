package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

// transport posts batches to the daemon's /logs/ingest endpoint, retrying
// a bounded number of times with a linearly increasing backoff and
// tripping a circuitBreaker when a batch exhausts its retries.
type transport struct {
	mu         sync.Mutex
	httpClient *http.Client
	url        string
	maxRetries int
	backoff    time.Duration
	breaker    *circuitBreaker
	closed     bool

	// clientMetrics is optional: a Client constructed without a
	// *metrics.Registry runs with no circuit-breaker observability, since
	// most embedding applications have no Prometheus registry of their
	// own to report into. When present, it publishes the SAME
	// circuit-breaker gauges pkg/metrics/technical.go defines for the
	// daemon, but against the embedding application's own registry -
	// the daemon has no visibility into a remote client's breaker state,
	// so this is the client library reporting on itself.
	clientMetrics *metrics.TechnicalMetrics
	clientID      string
}

func newTransport(url string, timeout time.Duration, maxRetries int, backoff, circuitReset time.Duration) *transport {
	return &transport{
		httpClient: &http.Client{Timeout: timeout},
		url:        url,
		maxRetries: maxRetries,
		backoff:    backoff,
		breaker:    newCircuitBreaker(circuitReset),
	}
}

// withMetrics attaches a technical metrics sink, labeling every gauge/
// counter update with clientID (the application_id the client was
// configured with).
func (t *transport) withMetrics(m *metrics.TechnicalMetrics, clientID string) *transport {
	t.clientMetrics = m
	t.clientID = clientID
	return t
}

func (t *transport) reportBreakerState() {
	if t.clientMetrics == nil {
		return
	}
	var v float64
	switch t.breaker.State() {
	case "closed":
		v = 0
	case "half_open":
		v = 1
	case "open":
		v = 2
	}
	t.clientMetrics.CircuitBreakerState.WithLabelValues(t.clientID).Set(v)
}

// ErrCircuitOpen is returned by Send when the breaker refuses the
// attempt outright (no network call is made).
var ErrCircuitOpen = fmt.Errorf("drtrace: circuit breaker open")

// ErrTransportClosed is returned once Close has torn down the transport.
var ErrTransportClosed = fmt.Errorf("drtrace: transport closed")

// Send posts batch to the daemon, attempting up to maxRetries total POST
// calls with a retry_backoff*attempt sleep between attempts. A batch that
// fails every attempt trips the circuit breaker and is reported to the
// caller as an error; the caller (flusher) does not retry further or
// re-enqueue, relying on the breaker itself as the backpressure signal for
// subsequent flushes.
func (t *transport) Send(ctx context.Context, batch LogBatch) error {
	allowed, isProbe := t.breaker.Allow()
	if !allowed {
		return ErrCircuitOpen
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("drtrace: encode batch: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < t.maxRetries; attempt++ {
		if attempt > 0 {
			sleep := t.backoff * time.Duration(attempt)
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		lastErr = t.doOnce(ctx, body)
		if lastErr == nil {
			t.breaker.RecordSuccess()
			t.reportBreakerState()
			return nil
		}
		if isProbe {
			// A half-open probe gets exactly one shot; do not consume
			// further retries.
			break
		}
	}

	wasOpen := t.breaker.State() == "open"
	t.breaker.RecordFailure()
	t.reportBreakerState()
	if !wasOpen && t.clientMetrics != nil {
		t.clientMetrics.CircuitBreakerTrips.WithLabelValues(t.clientID).Inc()
	}
	return fmt.Errorf("drtrace: send batch after retries: %w", lastErr)
}

func (t *transport) doOnce(ctx context.Context, body []byte) error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return ErrTransportClosed
	}
	httpClient := t.httpClient
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("drtrace: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("drtrace: post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("drtrace: daemon returned status %d", resp.StatusCode)
}

// Close tears the transport down. Go's net/http needs no global
// reference-counted init/teardown (unlike libraries with process-wide
// handles), so this is just a flag flip guarding future Send calls and a
// release of idle connections.
func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.httpClient.CloseIdleConnections()
	return nil
}
