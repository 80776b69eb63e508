package memstore

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/platform/logger"
	"github.com/glbobx/glbobx-api/internal/store"
)

// MemoryJobStore implements the store.JobStore interface using an
// in-process map guarded by a mutex. Records live for the lifetime of
// the process; the retention sweeper is responsible for bounding the
// map's growth.
type MemoryJobStore struct {
	mu     sync.RWMutex
	jobs   map[uuid.UUID]*domain.Job
	logger *slog.Logger
}

// NewMemoryJobStore creates an empty in-memory implementation of the
// JobStore interface. If logger is nil, a default logger will be used.
func NewMemoryJobStore(logger *slog.Logger) *MemoryJobStore {
	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &MemoryJobStore{
		jobs:   make(map[uuid.UUID]*domain.Job),
		logger: logger.With(slog.String("component", "job_store")),
	}
}

// Ensure MemoryJobStore implements store.JobStore interface
var _ store.JobStore = (*MemoryJobStore)(nil)

// Create implements store.JobStore.Create
// It stores a copy of the record, so the caller's value stays detached
// from later store mutations.
func (s *MemoryJobStore) Create(ctx context.Context, job *domain.Job) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate job data
	if err := job.Validate(); err != nil {
		log.Warn("job validation failed during create",
			slog.String("error", err.Error()),
			slog.String("job_id", job.ID.String()))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return store.NewStoreError("job", "create", "id already present", store.ErrJobExists)
	}

	s.jobs[job.ID] = job.Clone()

	log.Debug("job record created", slog.String("job_id", job.ID.String()))
	return nil
}

// GetByID implements store.JobStore.GetByID
// The returned record is a snapshot; mutating it does not affect the store.
func (s *MemoryJobStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, exists := s.jobs[id]
	if !exists {
		return nil, store.ErrJobNotFound
	}

	return job.Clone(), nil
}

// Update implements store.JobStore.Update
// The mutator runs against a scratch copy under the write lock; the
// stored record is replaced only when the mutator succeeds, so a failing
// mutator can never leave a half-written record behind.
func (s *MemoryJobStore) Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, exists := s.jobs[id]
	if !exists {
		return store.ErrJobNotFound
	}

	scratch := job.Clone()
	if err := mutate(scratch); err != nil {
		return err
	}

	if err := scratch.Validate(); err != nil {
		return store.NewStoreError("job", "update", "mutated record invalid", err)
	}

	s.jobs[id] = scratch
	return nil
}

// Sweep implements store.JobStore.Sweep
// The predicate observes the live record and must treat it as read-only.
func (s *MemoryJobStore) Sweep(ctx context.Context, remove func(*domain.Job) bool) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if remove(job) {
			delete(s.jobs, id)
			removed++
		}
	}

	if removed > 0 {
		log.Debug("swept job records", slog.Int("removed", removed))
	}
	return removed, nil
}

// Counts implements store.JobStore.Counts
func (s *MemoryJobStore) Counts(ctx context.Context) (map[domain.JobStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[domain.JobStatus]int, len(s.jobs))
	for _, job := range s.jobs {
		counts[job.Status]++
	}
	return counts, nil
}
