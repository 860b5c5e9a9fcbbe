package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlusher_TickerTriggersFlush(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	buf := newBoundedBuffer(0)
	tr := newTransport(srv.URL, time.Second, 1, time.Millisecond, time.Minute)
	fl := newFlusher(buf, tr, "app-1", 10*time.Millisecond, 1000, nil)

	buf.Add(LogRecord{Message: "queued"})
	fl.Start()
	defer fl.Stop(context.Background())

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestFlusher_SignalIfFullTriggersImmediateFlush(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	buf := newBoundedBuffer(0)
	tr := newTransport(srv.URL, time.Second, 1, time.Millisecond, time.Minute)
	fl := newFlusher(buf, tr, "app-1", time.Hour, 2, nil)
	fl.Start()
	defer fl.Stop(context.Background())

	buf.Add(LogRecord{Message: "a"})
	buf.Add(LogRecord{Message: "b"})
	fl.signalIfFull()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, time.Second, 5*time.Millisecond)
}

func TestFlusher_Stop_PerformsFinalFlush(t *testing.T) {
	var received int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&received, 1)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	buf := newBoundedBuffer(0)
	tr := newTransport(srv.URL, time.Second, 1, time.Millisecond, time.Minute)
	fl := newFlusher(buf, tr, "app-1", time.Hour, 1000, nil)
	fl.Start()

	buf.Add(LogRecord{Message: "final"})
	fl.Stop(context.Background())

	assert.Equal(t, int32(1), atomic.LoadInt32(&received))
	assert.Equal(t, 0, buf.Len())
}

func TestFlusher_DropsBatchOnSendFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	buf := newBoundedBuffer(0)
	tr := newTransport(srv.URL, time.Second, 0, time.Millisecond, time.Hour)
	fl := newFlusher(buf, tr, "app-1", time.Hour, 1000, nil)

	buf.Add(LogRecord{Message: "lost"})
	fl.flush(context.Background())

	assert.Equal(t, 0, buf.Len(), "failed batch must be dropped, not re-enqueued")
}
