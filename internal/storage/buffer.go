package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	infralogger "github.com/yearplanek-pixel/Link-shortcut-flow-analysis/infrastructure/logger"
	"github.com/yearplanek-pixel/Link-shortcut-flow-analysis/internal/domain"
)

// flushTimeout bounds each flush.
const flushTimeout = 5 * time.Second

var (
	// ErrBufferFull is returned when a click cannot be queued without blocking.
	ErrBufferFull = errors.New("click buffer is full")
	// ErrRecorderStopped is returned for clicks offered after Stop.
	ErrRecorderStopped = errors.New("click recorder is stopped")
)

// Buffer is a channel-based queue for non-blocking click ingestion.
type Buffer struct {
	records chan domain.ClickRecord
	closed  chan struct{}
	once    sync.Once
}

// NewBuffer creates a buffer holding up to capacity records.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{
		records: make(chan domain.ClickRecord, capacity),
		closed:  make(chan struct{}),
	}
}

// Send queues rec without blocking. It returns false if the buffer is full.
func (b *Buffer) Send(rec domain.ClickRecord) bool {
	select {
	case b.records <- rec:
		return true
	default:
		return false
	}
}

// Len returns the number of queued records.
func (b *Buffer) Len() int {
	return len(b.records)
}

// Close stops the buffer. It is safe to call multiple times.
func (b *Buffer) Close() {
	b.once.Do(func() {
		close(b.closed)
	})
}

func (b *Buffer) isClosed() bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

type batchAppender interface {
	AppendBatch(ctx context.Context, records []domain.ClickRecord) (int, error)
}

// BufferedRecorder queues clicks and writes them to the ledger in batches,
// keeping the insert off the redirect path. A record carries the timestamp
// it was accepted with, not the time its batch was written.
type BufferedRecorder struct {
	buffer         *Buffer
	ledger         batchAppender
	log            infralogger.Logger
	flushInterval  time.Duration
	flushThreshold int
	onFlush        func(written, failed int)
	wg             sync.WaitGroup
	// mu orders Record against Stop: a click accepted under the read
	// lock is always in the buffer before the flush loop drains it.
	mu sync.RWMutex
}

// NewBufferedRecorder creates a recorder that drains buffer into ledger.
func NewBufferedRecorder(
	ledger batchAppender,
	buffer *Buffer,
	log infralogger.Logger,
	flushInterval time.Duration,
	flushThreshold int,
) *BufferedRecorder {
	return &BufferedRecorder{
		buffer:         buffer,
		ledger:         ledger,
		log:            log,
		flushInterval:  flushInterval,
		flushThreshold: flushThreshold,
	}
}

// OnFlush registers fn to be told the outcome of every flush. Call before Start.
func (r *BufferedRecorder) OnFlush(fn func(written, failed int)) {
	r.onFlush = fn
}

// Record queues rec for the next flush.
func (r *BufferedRecorder) Record(_ context.Context, rec domain.ClickRecord) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.buffer.isClosed() {
		return ErrRecorderStopped
	}
	if !r.buffer.Send(rec) {
		return ErrBufferFull
	}
	return nil
}

// Pending returns the number of clicks waiting to be flushed.
func (r *BufferedRecorder) Pending() int {
	return r.buffer.Len()
}

// Start launches the flush goroutine.
func (r *BufferedRecorder) Start() {
	r.wg.Add(1)
	go r.flushLoop()
}

// Stop closes the buffer and waits until every queued click is flushed.
func (r *BufferedRecorder) Stop() {
	r.mu.Lock()
	r.buffer.Close()
	r.mu.Unlock()
	r.wg.Wait()
}

// flushLoop accumulates a batch and flushes it when it reaches
// flushThreshold or the ticker fires.
func (r *BufferedRecorder) flushLoop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	batch := make([]domain.ClickRecord, 0, r.flushThreshold)

	for {
		select {
		case rec := <-r.buffer.records:
			batch = append(batch, rec)
			if len(batch) >= r.flushThreshold {
				r.flush(batch)
				batch = make([]domain.ClickRecord, 0, r.flushThreshold)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				r.flush(batch)
				batch = make([]domain.ClickRecord, 0, r.flushThreshold)
			}

		case <-r.buffer.closed:
			r.drain(&batch)
			if len(batch) > 0 {
				r.flush(batch)
			}
			return
		}
	}
}

// drain moves every queued record into batch.
func (r *BufferedRecorder) drain(batch *[]domain.ClickRecord) {
	for {
		select {
		case rec := <-r.buffer.records:
			*batch = append(*batch, rec)
		default:
			return
		}
	}
}

func (r *BufferedRecorder) flush(batch []domain.ClickRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	written, err := r.ledger.AppendBatch(ctx, batch)
	if err != nil {
		r.log.Error("Failed to insert click records",
			infralogger.Error(err),
			infralogger.Int("batch_size", len(batch)),
			infralogger.Int("written", written),
		)
	}

	if r.onFlush != nil {
		r.onFlush(written, len(batch)-written)
	}

	r.log.Debug("Flushed click records",
		infralogger.Int("total", len(batch)),
	)
}
