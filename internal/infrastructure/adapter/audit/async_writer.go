// Package audit delivers locker log entries to their sink off the request path
package audit

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/amirhossein-jamali/locker-service/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/locker-service/internal/domain/port/core"
	"github.com/amirhossein-jamali/locker-service/internal/domain/port/event"
)

// ErrWriterClosed is returned by Append after Close
var ErrWriterClosed = errors.New("audit writer is closed")

// ErrQueueFull is returned when an entry could not be enqueued within the enqueue timeout
var ErrQueueFull = errors.New("audit queue is full")

// AsyncConfig sizes the writer
type AsyncConfig struct {
	Workers        int
	BufferSize     int // Per worker
	EnqueueTimeout time.Duration
	WriteTimeout   time.Duration
}

// DefaultAsyncConfig returns the defaults used when a field is unset
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Workers:        4,
		BufferSize:     256,
		EnqueueTimeout: 50 * time.Millisecond,
		WriteTimeout:   2 * time.Second,
	}
}

func (c AsyncConfig) normalized() AsyncConfig {
	d := DefaultAsyncConfig()
	if c.Workers <= 0 {
		c.Workers = d.Workers
	}
	if c.BufferSize <= 0 {
		c.BufferSize = d.BufferSize
	}
	if c.EnqueueTimeout <= 0 {
		c.EnqueueTimeout = d.EnqueueTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	return c
}

// AsyncWriter queues entries and writes them to the sink from a fixed worker pool.
// Entries of one locker always land on the same worker, so they reach the sink in commit order.
type AsyncWriter struct {
	sink   event.AuditWriter
	logger coreport.Logger
	cfg    AsyncConfig

	queues []chan *entity.LockerLog
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

var _ event.AuditWriter = (*AsyncWriter)(nil)

// NewAsyncWriter starts the workers
func NewAsyncWriter(sink event.AuditWriter, cfg AsyncConfig, logger coreport.Logger) *AsyncWriter {
	cfg = cfg.normalized()
	w := &AsyncWriter{
		sink:   sink,
		logger: logger,
		cfg:    cfg,
		queues: make([]chan *entity.LockerLog, cfg.Workers),
	}

	for i := range w.queues {
		w.queues[i] = make(chan *entity.LockerLog, cfg.BufferSize)
		w.wg.Add(1)
		go w.process(i, w.queues[i])
	}

	logger.Info("Audit writer started", map[string]any{
		"workers":     cfg.Workers,
		"buffer_size": cfg.BufferSize,
	})
	return w
}

// Append enqueues the entry. It waits at most the enqueue timeout for room in the queue.
func (w *AsyncWriter) Append(ctx context.Context, log *entity.LockerLog) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return ErrWriterClosed
	}

	queue := w.queues[w.shard(log.LockerID)]
	select {
	case queue <- log:
		return nil
	default:
	}

	timer := time.NewTimer(w.cfg.EnqueueTimeout)
	defer timer.Stop()

	select {
	case queue <- log:
		return nil
	case <-timer.C:
		w.logger.Warn("Audit queue full, dropping entry", map[string]any{
			"log_id":    log.ID,
			"locker_id": log.LockerID,
			"action":    log.Action,
		})
		return ErrQueueFull
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *AsyncWriter) shard(lockerID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(lockerID))
	return int(h.Sum32() % uint32(len(w.queues)))
}

// process handles the worker goroutine for one queue
func (w *AsyncWriter) process(worker int, queue chan *entity.LockerLog) {
	defer w.wg.Done()

	for log := range queue {
		ctx, cancel := context.WithTimeout(context.Background(), w.cfg.WriteTimeout)
		err := w.sink.Append(ctx, log)
		cancel()

		if err != nil {
			w.logger.Error("Failed to write audit entry", map[string]any{
				"worker":         worker,
				"log_id":         log.ID,
				"locker_id":      log.LockerID,
				"transaction_id": log.TransactionID,
				"action":         log.Action,
				"error":          err.Error(),
			})
		}
	}
}

// Close stops accepting entries and waits until every queued entry was written
func (w *AsyncWriter) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	for _, q := range w.queues {
		close(q)
	}
	w.mu.Unlock()

	w.wg.Wait()
	w.logger.Info("Audit writer stopped", nil)
}
