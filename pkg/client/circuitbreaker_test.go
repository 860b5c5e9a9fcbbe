package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_ClosedAllowsByDefault(t *testing.T) {
	cb := newCircuitBreaker(time.Minute)
	allowed, isProbe := cb.Allow()
	assert.True(t, allowed)
	assert.False(t, isProbe)
	assert.Equal(t, "closed", cb.State())
}

func TestCircuitBreaker_OpensOnFailure(t *testing.T) {
	cb := newCircuitBreaker(time.Minute)
	cb.RecordFailure()

	assert.Equal(t, "open", cb.State())
	allowed, _ := cb.Allow()
	assert.False(t, allowed)
}

func TestCircuitBreaker_HalfOpenAfterResetTimeout(t *testing.T) {
	cb := newCircuitBreaker(10 * time.Millisecond)
	cb.RecordFailure()

	time.Sleep(20 * time.Millisecond)

	allowed, isProbe := cb.Allow()
	assert.True(t, allowed)
	assert.True(t, isProbe)
	assert.Equal(t, "half_open", cb.State())

	allowed2, _ := cb.Allow()
	assert.False(t, allowed2, "a second concurrent caller must not get the probe slot")
}

func TestCircuitBreaker_ProbeSuccessCloses(t *testing.T) {
	cb := newCircuitBreaker(10 * time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	_, isProbe := cb.Allow()
	assert.True(t, isProbe)

	cb.RecordSuccess()
	assert.Equal(t, "closed", cb.State())

	allowed, _ := cb.Allow()
	assert.True(t, allowed)
}

func TestCircuitBreaker_ProbeFailureReopens(t *testing.T) {
	cb := newCircuitBreaker(10 * time.Millisecond)
	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	_, isProbe := cb.Allow()
	assert.True(t, isProbe)

	cb.RecordFailure()
	assert.Equal(t, "open", cb.State())
}
