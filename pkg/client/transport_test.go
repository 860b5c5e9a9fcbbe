package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CaoDuyThanh/drtrace/pkg/metrics"
)

func TestTransport_Send_Success(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, time.Second, 3, time.Millisecond, time.Minute)
	err := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, "closed", tr.breaker.State())
}

func TestTransport_Send_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, time.Second, 3, time.Millisecond, time.Minute)
	err := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestTransport_Send_ExhaustsRetriesAndTripsBreaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, time.Second, 2, time.Millisecond, time.Minute)
	err := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})

	require.Error(t, err)
	assert.Equal(t, "open", tr.breaker.State())

	// A further Send should be short-circuited without hitting the server.
	err2 := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})
	assert.ErrorIs(t, err2, ErrCircuitOpen)
}

func TestTransport_Send_MakesExactlyMaxRetriesAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	const maxRetries = 4
	tr := newTransport(srv.URL, time.Second, maxRetries, time.Millisecond, time.Minute)
	err := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})

	require.Error(t, err)
	assert.Equal(t, int32(maxRetries), atomic.LoadInt32(&calls), "max_retries is the total attempt count, not retries after the first")
}

func TestTransport_Close_RejectsFurtherSends(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	tr := newTransport(srv.URL, time.Second, 0, time.Millisecond, time.Minute)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close()) // idempotent

	err := tr.doOnce(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, ErrTransportClosed)
}

func TestTransport_Send_ReportsBreakerMetricsWhenAttached(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reg := metrics.New("drtrace_test_client_breaker_metrics")
	tr := newTransport(srv.URL, time.Second, 1, time.Millisecond, time.Minute).withMetrics(reg.Technical(), "app-1")

	err := tr.Send(context.Background(), LogBatch{ApplicationID: "app-1", Logs: []LogRecord{{Message: "hi"}}})
	require.Error(t, err)

	gauge := reg.Technical().CircuitBreakerState.WithLabelValues("app-1")
	assert.Equal(t, float64(2), testutil.ToFloat64(gauge))

	counter := reg.Technical().CircuitBreakerTrips.WithLabelValues("app-1")
	assert.Equal(t, float64(1), testutil.ToFloat64(counter))
}
