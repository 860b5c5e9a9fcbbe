package client

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/pkg/client/config"
)

func testConfig(daemonURL string) *config.Config {
	return &config.Config{
		ApplicationID:       "app-1",
		DaemonURL:           daemonURL,
		ServiceName:         "svc-1",
		Enabled:             true,
		MinLevel:            "info",
		BatchSize:           2,
		MaxBufferSize:       100,
		MaxRetries:          1,
		FlushInterval:       time.Hour,
		HTTPTimeout:         time.Second,
		RetryBackoff:        time.Millisecond,
		CircuitResetTimeout: time.Minute,
	}
}

func TestClient_Debug_BelowMinLevelIsSkipped(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	defer c.Close()

	c.Debug("mod", "below threshold", nil)
	c.Flush()

	assert.Equal(t, int32(0), atomic.LoadInt32(&received))
}

func TestClient_Info_BuffersAndFlushes(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	defer c.Close()

	c.Info("mod", "hello", map[string]any{"k": "v"})
	c.Flush()

	assert.Equal(t, int32(1), atomic.LoadInt32(&received))
}

func TestClient_Disabled_NeverBuffers(t *testing.T) {
	cfg := testConfig("http://example.invalid")
	cfg.Enabled = false
	c := New(cfg, nil)
	defer c.Close()

	c.Error("mod", "should be dropped", nil)
	assert.Equal(t, 0, c.buffer.Len())
	assert.False(t, c.IsEnabled())
}

func TestClient_Close_IsIdempotentAndFlushesFirst(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	c.Error("mod", "final message", nil)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	assert.Equal(t, int32(1), atomic.LoadInt32(&received))
	assert.True(t, c.closed.Load())
}

func TestClient_ErrorWithException(t *testing.T) {
	var gotException string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_ = gotException // body parsing omitted; request reached daemon
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), nil)
	defer c.Close()

	c.ErrorWithException("mod", "boom", "RuntimeError", "trace", nil)
	c.Flush()
}
