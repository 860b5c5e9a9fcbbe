package client

import (
	"sync"
	"time"
)

// breakerState is the circuit breaker's three-state machine. It tracks
// no sliding window of call outcomes: any batch that exhausts its
// retries opens the circuit outright, rather than requiring a
// failure-rate threshold over a time window.
type breakerState int

const (
	breakerClosed breakerState = iota
	breakerOpen
	breakerHalfOpen
)

// circuitBreaker tracks whether the transport should even attempt a send.
// It opens after a single fully-retried batch failure, stays open for
// resetTimeout, then allows exactly one probe call through (half-open)
// before deciding whether to close again or reopen.
//
// State is read on every Flush call from the fast path, so the common
// case (closed, no probe in flight) is kept to a single mutex-guarded
// read of a few fields rather than anything heavier.
type circuitBreaker struct {
	mu           sync.Mutex
	state        breakerState
	resetTimeout time.Duration
	openUntil    time.Time
	probeInFlight bool
}

func newCircuitBreaker(resetTimeout time.Duration) *circuitBreaker {
	return &circuitBreaker{resetTimeout: resetTimeout}
}

// Allow reports whether a send attempt should proceed right now, and
// whether this call is acting as the single half-open probe. When the
// breaker is open but resetTimeout has elapsed, it transitions to
// half-open and grants exactly one caller the probe; concurrent callers
// during that window are refused until the probe resolves.
func (cb *circuitBreaker) Allow() (allowed bool, isProbe bool) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case breakerClosed:
		return true, false
	case breakerOpen:
		if time.Now().Before(cb.openUntil) {
			return false, false
		}
		if cb.probeInFlight {
			return false, false
		}
		cb.state = breakerHalfOpen
		cb.probeInFlight = true
		return true, true
	case breakerHalfOpen:
		return false, false
	default:
		return false, false
	}
}

// RecordSuccess closes the circuit. Called after a successful send in
// the closed state (a no-op transition) or after a successful probe in
// the half-open state (the transition that actually matters).
func (cb *circuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = breakerClosed
	cb.probeInFlight = false
}

// RecordFailure opens the circuit for resetTimeout, whether the failure
// came from the closed state (first trip) or from a failed half-open
// probe (re-trip).
func (cb *circuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.state = breakerOpen
	cb.openUntil = time.Now().Add(cb.resetTimeout)
	cb.probeInFlight = false
}

// State returns the breaker's current state for diagnostics/tests.
func (cb *circuitBreaker) State() string {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case breakerOpen:
		return "open"
	case breakerHalfOpen:
		return "half_open"
	default:
		return "closed"
	}
}
