package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/domain"
)

// JobStore defines the interface for job record persistence.
// Version: 1.0
type JobStore interface {
	// Create saves a new job record to the store.
	// It handles domain validation internally.
	// Returns ErrJobExists if a record with the same ID already exists.
	Create(ctx context.Context, job *domain.Job) error

	// GetByID retrieves a snapshot of a job by its unique ID. The
	// returned record is a copy; mutating it does not affect the store.
	// Returns ErrJobNotFound if the job does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// Update applies mutate to the stored record while holding the
	// store's write lock, so concurrent updates to the same job
	// serialize and each observes the previous one's result. If mutate
	// returns an error the record is left unchanged and the error is
	// returned verbatim; mutations that leave the record invalid are
	// rejected the same way.
	// Returns ErrJobNotFound if the job does not exist.
	Update(ctx context.Context, id uuid.UUID, mutate func(*domain.Job) error) error

	// Sweep atomically removes every job for which remove reports true
	// and returns the number of records removed. Records created while
	// a sweep is in progress are not considered by that sweep.
	Sweep(ctx context.Context, remove func(*domain.Job) bool) (int, error)

	// Counts reports the number of stored jobs per status.
	Counts(ctx context.Context) (map[domain.JobStatus]int, error)
}
