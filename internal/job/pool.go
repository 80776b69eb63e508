package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ConvertFunc produces an artifact archive from an uploaded model
// payload. Implementations should honor ctx at their checkpoints; work
// that ignores ctx keeps its pool slot until it returns.
type ConvertFunc func(ctx context.Context, payload []byte, filename string) (archive []byte, artifacts []string, err error)

// work is one queued conversion, carried from Submit to a worker.
type work struct {
	jobID   uuid.UUID
	payload []byte
	name    string
	ctx     context.Context
	handle  *Handle
}

// PoolConfig holds configuration for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many conversions run concurrently
	WorkerCount int

	// QueueSize bounds how many submissions may wait for a free worker
	QueueSize int
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: 2,
		QueueSize:   64,
	}
}

// Pool executes conversion work on a fixed number of workers. Dispatch
// is FIFO. Each submission gets a Handle whose Started and Done channels
// let a supervisor observe execution without sharing state with the
// worker.
type Pool struct {
	convert    ConvertFunc
	queue      *workQueue
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     PoolConfig
	logger     *slog.Logger
}

// NewPool creates a Pool around the given conversion function.
func NewPool(convert ConvertFunc, config PoolConfig, logger *slog.Logger) *Pool {
	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultPoolConfig().WorkerCount
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultPoolConfig().QueueSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_pool")

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		convert:    convert,
		queue:      newWorkQueue(config.QueueSize, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.logger.Info("starting worker pool",
		"worker_count", p.config.WorkerCount,
		"queue_size", p.config.QueueSize)

	for i := 0; i < p.config.WorkerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues one conversion and returns its handle. It never blocks:
// a full queue fails with ErrQueueFull, a stopped pool with
// ErrQueueClosed.
func (p *Pool) Submit(jobID uuid.UUID, payload []byte, filename string) (*Handle, error) {
	ctx, cancel := context.WithCancel(p.ctx)
	h := newHandle(jobID, cancel)

	w := &work{
		jobID:   jobID,
		payload: payload,
		name:    filename,
		ctx:     ctx,
		handle:  h,
	}

	if err := p.queue.enqueue(w); err != nil {
		cancel()
		return nil, err
	}
	return h, nil
}

// QueueDepth reports how many submissions are waiting for a worker.
func (p *Pool) QueueDepth() int {
	return p.queue.depth()
}

// QueueCapacity reports the configured queue bound.
func (p *Pool) QueueCapacity() int {
	return p.config.QueueSize
}

// WorkerCount reports the configured concurrency.
func (p *Pool) WorkerCount() int {
	return p.config.WorkerCount
}

// Stop closes the queue, cancels in-flight work and waits for the
// workers to exit, bounded by ctx's deadline.
func (p *Pool) Stop(ctx context.Context) error {
	p.queue.close()
	p.cancelFunc()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("worker pool stopped")
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool stop timed out with work still running")
		return ctx.Err()
	}
}

// worker executes queued conversions until the pool shuts down.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)

	for {
		select {
		case <-p.ctx.Done():
			p.logger.Debug("stopping worker", "worker_id", id)
			return

		case w, ok := <-p.queue.channel():
			if !ok {
				p.logger.Debug("work queue closed, stopping worker", "worker_id", id)
				return
			}
			p.run(w, id)
		}
	}
}

// run executes a single conversion and records the outcome on its
// handle.
func (p *Pool) run(w *work, workerID int) {
	defer w.handle.cancel()

	logger := p.logger.With(
		"job_id", w.jobID,
		"worker_id", workerID,
	)

	if err := w.ctx.Err(); err != nil {
		// The pool shut down while this job sat in the queue; report the
		// cancellation without starting work nobody will observe.
		w.handle.finish(nil, nil, err)
		return
	}

	w.handle.markStarted()
	logger.Info("conversion started",
		"original_name", w.name,
		"payload_bytes", len(w.payload))

	start := time.Now()
	archive, artifacts, err := p.execute(w)
	elapsed := time.Since(start)

	if err != nil {
		logger.Error("conversion failed", "error", err, "elapsed", elapsed)
	} else {
		logger.Info("conversion finished",
			"artifact_count", len(artifacts),
			"archive_bytes", len(archive),
			"elapsed", elapsed)
	}

	w.handle.finish(archive, artifacts, err)
}

// execute runs the conversion function, converting panics into errors so
// a malformed model can never take a worker down.
func (p *Pool) execute(w *work) (archive []byte, artifacts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("conversion panicked: %v", r)
		}
	}()
	return p.convert(w.ctx, w.payload, w.name)
}
