package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrPoolClosed is returned for confirmations offered after Close began.
var ErrPoolClosed = errors.New("notification pool closed")

// WorkerPool delivers confirmations in the background so a slow mail
// provider never holds up a submission response.
type WorkerPool struct {
	size    int
	jobs    chan Confirmation
	next    Notifier
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup

	// done unblocks waiting senders; mu keeps jobs open while any sender
	// is inside NotifyAdmission.
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
	closeOnce sync.Once
}

// NewWorkerPool creates a pool of size workers feeding next.
func NewWorkerPool(size, queue int, next Notifier, timeout time.Duration, logger *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Confirmation, queue),
		next:    next,
		timeout: timeout,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the worker goroutines. Sends derive from ctx.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		wp.wg.Add(1)
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	defer wp.wg.Done()
	for c := range wp.jobs {
		wp.deliver(ctx, id, c)
	}
}

func (wp *WorkerPool) deliver(ctx context.Context, id int, c Confirmation) {
	sendCtx, cancel := context.WithTimeout(ctx, wp.timeout)
	defer cancel()

	if err := wp.next.NotifyAdmission(sendCtx, c); err != nil {
		wp.logger.Error("confirmation not sent",
			zap.Int("worker", id),
			zap.String("group_id", c.GroupID.String()),
			zap.Error(err))
		return
	}
	wp.logger.Info("confirmation sent",
		zap.Int("worker", id),
		zap.String("group_id", c.GroupID.String()),
		zap.String("status", string(c.Status)))
}

// NotifyAdmission queues c. It blocks while the queue is full until ctx is
// done or the pool is closed.
func (wp *WorkerPool) NotifyAdmission(ctx context.Context, c Confirmation) error {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	if wp.closed {
		return ErrPoolClosed
	}

	select {
	case wp.jobs <- c:
		return nil
	case <-wp.done:
		return ErrPoolClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting work and waits for queued confirmations to be sent.
// Senders still waiting for queue space get ErrPoolClosed.
func (wp *WorkerPool) Close() {
	wp.closeOnce.Do(func() {
		close(wp.done)

		wp.mu.Lock()
		wp.closed = true
		close(wp.jobs)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}
