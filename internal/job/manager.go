package job

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/platform/logger"
	"github.com/glbobx/glbobx-api/internal/store"
)

// ManagerConfig holds configuration for the job manager
type ManagerConfig struct {
	// WorkerCount determines how many conversions run concurrently
	WorkerCount int

	// QueueSize bounds how many submissions may wait for a free worker
	QueueSize int

	// JobTimeout caps how long a single conversion may execute once a
	// worker picks it up; time spent queued does not count
	JobTimeout time.Duration

	// Retention is how long records stay queryable before the sweeper
	// reclaims them
	Retention time.Duration

	// SweepInterval defines how often the background sweeper runs
	SweepInterval time.Duration
}

// DefaultManagerConfig returns a ManagerConfig with reasonable defaults
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WorkerCount:   2,
		QueueSize:     64,
		JobTimeout:    120 * time.Second,
		Retention:     time.Hour,
		SweepInterval: time.Minute,
	}
}

// Manager coordinates conversion jobs end to end: it validates
// submissions, keeps the job store and the worker pool consistent, runs
// one supervisor per job and reclaims expired records.
type Manager struct {
	jobStore   store.JobStore
	pool       *Pool
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     ManagerConfig
	logger     *slog.Logger
	startedAt  time.Time
}

// NewManager creates a Manager on top of the given store and conversion
// function.
func NewManager(jobStore store.JobStore, convert ConvertFunc, config ManagerConfig, logger *slog.Logger) *Manager {
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultManagerConfig().JobTimeout
	}
	if config.Retention <= 0 {
		config.Retention = DefaultManagerConfig().Retention
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultManagerConfig().SweepInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	poolConfig := PoolConfig{
		WorkerCount: config.WorkerCount,
		QueueSize:   config.QueueSize,
	}

	return &Manager{
		jobStore:   jobStore,
		pool:       NewPool(convert, poolConfig, logger),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger.With("component", "job_manager"),
	}
}

// Start launches the pool workers and the retention sweeper.
func (m *Manager) Start() {
	m.startedAt = time.Now().UTC()
	m.pool.Start()

	m.wg.Add(1)
	go m.sweepLoop()

	m.logger.Info("job manager started",
		"worker_count", m.pool.WorkerCount(),
		"job_timeout", m.config.JobTimeout,
		"retention", m.config.Retention,
		"sweep_interval", m.config.SweepInterval)
}

// Stop drains the subsystem: the pool rejects new work and cancels
// in-flight conversions, supervisors finish their writes, and every
// remaining record is reclaimed. Waiting is bounded by ctx's deadline.
func (m *Manager) Stop(ctx context.Context) error {
	stopErr := m.pool.Stop(ctx)

	m.cancelFunc()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("timed out waiting for job supervisors", "error", ctx.Err())
		if stopErr == nil {
			stopErr = ctx.Err()
		}
	}

	// Records never outlive the process.
	if _, err := m.Reclaim(context.Background(), 0); err != nil && stopErr == nil {
		stopErr = err
	}

	if stopErr == nil {
		m.logger.Info("job manager stopped")
	}
	return stopErr
}

// Submit validates a payload, registers a queued record and dispatches
// the conversion. The returned snapshot carries the id callers poll. A
// full queue rejects the submission outright and keeps no record.
func (m *Manager) Submit(ctx context.Context, payload []byte, originalName string) (*domain.Job, error) {
	log := logger.FromContextOrDefault(ctx, m.logger)

	if len(payload) == 0 {
		return nil, domain.ErrEmptyPayload
	}
	if originalName == "" {
		originalName = "model.glb"
	}

	j := domain.NewJob(originalName)
	if err := m.jobStore.Create(ctx, j); err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}

	handle, err := m.pool.Submit(j.ID, payload, originalName)
	if err != nil {
		// The id was never returned to the caller, so the record can go
		// straight back out.
		if _, sweepErr := m.jobStore.Sweep(ctx, func(r *domain.Job) bool { return r.ID == j.ID }); sweepErr != nil {
			log.Error("failed to discard record for rejected submission",
				"job_id", j.ID,
				"error", sweepErr)
		}
		log.Warn("submission rejected", "job_id", j.ID, "error", err)
		return nil, err
	}

	m.wg.Add(1)
	go m.supervise(handle)

	// Opportunistic reclaim after each accepted submission keeps memory
	// bounded even when the periodic sweeper is configured slow.
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		if _, err := m.Reclaim(context.Background(), m.config.Retention); err != nil {
			m.logger.Error("post-submission reclaim failed", "error", err)
		}
	}()

	log.Info("job submitted",
		"job_id", j.ID,
		"original_name", originalName,
		"payload_bytes", len(payload))
	return j, nil
}

// Get returns a point-in-time snapshot of one job record.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	return m.jobStore.GetByID(ctx, id)
}

// Reclaim removes records whose retention timestamp is older than
// maxAge. The retention timestamp is the terminal timestamp, or the
// creation timestamp for records that never got one. A zero maxAge
// clears everything; the shutdown path relies on that.
func (m *Manager) Reclaim(ctx context.Context, maxAge time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-maxAge)
	removed, err := m.jobStore.Sweep(ctx, func(r *domain.Job) bool {
		return r.RetentionTimestamp().Before(cutoff)
	})
	if err != nil {
		return 0, fmt.Errorf("failed to sweep job records: %w", err)
	}
	if removed > 0 {
		m.logger.Info("reclaimed job records", "count", removed, "max_age", maxAge)
	}
	return removed, nil
}

// Stats is a point-in-time operational snapshot used by health
// reporting.
type Stats struct {
	Counts        map[domain.JobStatus]int
	QueueDepth    int
	QueueCapacity int
	Workers       int
	Uptime        time.Duration
}

// Stats reports record counts together with pool occupancy.
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	counts, err := m.jobStore.Counts(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count job records: %w", err)
	}

	var uptime time.Duration
	if !m.startedAt.IsZero() {
		uptime = time.Since(m.startedAt)
	}

	return Stats{
		Counts:        counts,
		QueueDepth:    m.pool.QueueDepth(),
		QueueCapacity: m.pool.QueueCapacity(),
		Workers:       m.pool.WorkerCount(),
		Uptime:        uptime,
	}, nil
}
