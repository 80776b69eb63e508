package job

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

var (
	// ErrQueueFull is returned when the submission queue has no free
	// capacity. Submitters are expected to shed load, not retry-loop.
	ErrQueueFull = errors.New("job queue is full")

	// ErrQueueClosed is returned when submitting to a pool that has been
	// stopped.
	ErrQueueClosed = errors.New("job queue is closed")
)

// workQueue is the bounded in-memory queue feeding the pool's workers.
// Enqueue never blocks: a full queue rejects immediately so the caller
// can surface the rejection instead of stacking requests.
type workQueue struct {
	mu     sync.Mutex
	items  chan *work
	logger *slog.Logger
	closed bool
}

func newWorkQueue(size int, logger *slog.Logger) *workQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &workQueue{
		items:  make(chan *work, size),
		logger: logger.With("component", "work_queue"),
	}
}

// enqueue adds one unit of work without blocking.
func (q *workQueue) enqueue(w *work) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- w:
		q.logger.Debug("job enqueued",
			"job_id", w.jobID,
			"queue_len", len(q.items),
			"queue_cap", cap(q.items))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(q.items))
	}
}

// channel exposes the receive side for workers.
func (q *workQueue) channel() <-chan *work {
	return q.items
}

// depth reports how many submissions are waiting for a worker.
func (q *workQueue) depth() int {
	return len(q.items)
}

// close rejects further submissions. Work already queued stays readable
// until drained.
func (q *workQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.items)
	q.logger.Info("work queue closed")
}
