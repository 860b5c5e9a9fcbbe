package client

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// flusher owns the background worker that periodically drains a
// boundedBuffer and ships the result through a transport. The worker is
// always joined via WaitGroup before a last in-line flush runs on Stop,
// never detached.
//
// A batch that fails to send is dropped, not re-queued: the circuit
// breaker is the backpressure signal here, so re-enqueueing a failed
// batch would just make the breaker's open state pointless (the buffer
// would keep refilling with the same undeliverable records).
type flusher struct {
	buffer        *boundedBuffer
	transport     *transport
	logger        *slog.Logger
	applicationID string

	interval  time.Duration
	batchSize int

	flushSignal chan struct{}
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

func newFlusher(buffer *boundedBuffer, tr *transport, applicationID string, interval time.Duration, batchSize int, logger *slog.Logger) *flusher {
	return &flusher{
		buffer:        buffer,
		transport:     tr,
		logger:        logger,
		applicationID: applicationID,
		interval:      interval,
		batchSize:     batchSize,
		flushSignal:   make(chan struct{}, 1),
		stopCh:        make(chan struct{}),
	}
}

// Start launches the background flush loop. Safe to call once.
func (f *flusher) Start() {
	f.wg.Add(1)
	go f.run()
}

func (f *flusher) run() {
	defer f.wg.Done()

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-f.stopCh:
			return
		case <-ticker.C:
			f.flush(context.Background())
		case <-f.flushSignal:
			f.flush(context.Background())
		}
	}
}

// signalIfFull requests an out-of-band flush when the buffer has grown
// to batch_size, without blocking the caller if a flush is already
// pending.
func (f *flusher) signalIfFull() {
	if f.buffer.Len() < f.batchSize {
		return
	}
	select {
	case f.flushSignal <- struct{}{}:
	default:
	}
}

// flush drains the buffer and sends the result. The drain releases the
// buffer's mutex before any I/O runs (boundedBuffer.Drain already does
// this), and a send failure is logged and the batch discarded rather
// than re-queued.
func (f *flusher) flush(ctx context.Context) {
	records := f.buffer.Drain()
	if len(records) == 0 {
		return
	}

	err := f.transport.Send(ctx, LogBatch{ApplicationID: f.applicationID, Logs: records})
	if err != nil && f.logger != nil {
		f.logger.Warn("drtrace: dropping batch after failed send",
			"count", len(records), "error", err)
	}
}

// Stop signals the worker to exit, joins it, then performs one final
// in-line flush of anything left in the buffer.
func (f *flusher) Stop(ctx context.Context) {
	close(f.stopCh)
	f.wg.Wait()
	f.flush(ctx)
}
