package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the lifecycle state of a conversion job
type JobStatus string

// Possible job status values
const (
	JobStatusQueued   JobStatus = "queued"
	JobStatusRunning  JobStatus = "running"
	JobStatusFinished JobStatus = "finished"
	JobStatusFailed   JobStatus = "failed"
	JobStatusTimeout  JobStatus = "timeout"
)

// Common validation errors for Job
var (
	ErrEmptyJobID        = errors.New("job ID cannot be empty")
	ErrInvalidJobStatus  = errors.New("invalid job status")
	ErrInvalidTransition = errors.New("invalid job status transition")
	ErrArchiveMismatch   = errors.New("archive presence inconsistent with job status")
	ErrDetailMismatch    = errors.New("detail presence inconsistent with job status")
)

// Job tracks the state of one submitted unit of conversion work, from
// submission through a single terminal status. The record is the only
// externally observable representation of the work; API projections are
// derived from it and nothing else.
type Job struct {
	ID           uuid.UUID  `json:"id"`
	Status       JobStatus  `json:"status"`
	Detail       string     `json:"detail,omitempty"`
	Artifacts    []string   `json:"artifacts,omitempty"`
	Archive      []byte     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	OriginalName string     `json:"original_name,omitempty"`
}

// NewJob creates a new Job in the queued state with a fresh ID and
// creation timestamp. originalName is the caller-supplied label used
// later to derive output naming; it has no effect on conversion.
func NewJob(originalName string) *Job {
	return &Job{
		ID:           uuid.New(),
		Status:       JobStatusQueued,
		CreatedAt:    time.Now().UTC(),
		OriginalName: originalName,
	}
}

// Terminal reports whether the status permits no further transitions.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobStatusFinished, JobStatusFailed, JobStatusTimeout:
		return true
	default:
		return false
	}
}

// Terminal reports whether the job has reached a terminal status.
func (j *Job) Terminal() bool {
	return j.Status.Terminal()
}

// MarkRunning transitions the job from queued to running and stamps
// StartedAt. Returns an error if the job is not currently queued.
func (j *Job) MarkRunning(now time.Time) error {
	if j.Status != JobStatusQueued {
		return ErrInvalidTransition
	}
	j.Status = JobStatusRunning
	t := now.UTC()
	j.StartedAt = &t
	return nil
}

// MarkFinished transitions the job from running to finished, storing the
// archive and the ordered artifact names and stamping FinishedAt.
func (j *Job) MarkFinished(archive []byte, artifacts []string, now time.Time) error {
	if j.Status != JobStatusRunning {
		return ErrInvalidTransition
	}
	j.Status = JobStatusFinished
	j.Archive = archive
	j.Artifacts = artifacts
	t := now.UTC()
	j.FinishedAt = &t
	return nil
}

// MarkFailed transitions the job from running to failed, recording the
// collaborator's error message as detail and stamping FinishedAt.
func (j *Job) MarkFailed(detail string, now time.Time) error {
	if j.Status != JobStatusRunning {
		return ErrInvalidTransition
	}
	j.Status = JobStatusFailed
	j.Detail = detail
	t := now.UTC()
	j.FinishedAt = &t
	return nil
}

// MarkTimeout transitions the job from running to timeout, recording a
// detail message naming the configured limit and stamping FinishedAt.
func (j *Job) MarkTimeout(detail string, now time.Time) error {
	if j.Status != JobStatusRunning {
		return ErrInvalidTransition
	}
	j.Status = JobStatusTimeout
	j.Detail = detail
	t := now.UTC()
	j.FinishedAt = &t
	return nil
}

// RetentionTimestamp returns the time the retention sweeper compares
// against its cutoff: the terminal timestamp when the job has one,
// otherwise the creation timestamp.
func (j *Job) RetentionTimestamp() time.Time {
	if j.FinishedAt != nil {
		return *j.FinishedAt
	}
	return j.CreatedAt
}

// Clone returns a snapshot copy of the job that callers may inspect
// without racing against later store mutations. Timestamp pointers and
// the artifact list are copied; the archive bytes are shared because
// they are written exactly once, at the terminal transition, and never
// mutated afterwards.
func (j *Job) Clone() *Job {
	cp := *j
	if j.StartedAt != nil {
		t := *j.StartedAt
		cp.StartedAt = &t
	}
	if j.FinishedAt != nil {
		t := *j.FinishedAt
		cp.FinishedAt = &t
	}
	if j.Artifacts != nil {
		cp.Artifacts = make([]string, len(j.Artifacts))
		copy(cp.Artifacts, j.Artifacts)
	}
	return &cp
}

// Validate checks the job's structural invariants: a non-nil ID, a known
// status, archive bytes present exactly when finished, and a detail
// message present exactly when failed or timed out.
func (j *Job) Validate() error {
	if j.ID == uuid.Nil {
		return ErrEmptyJobID
	}

	if !isValidJobStatus(j.Status) {
		return ErrInvalidJobStatus
	}

	if (len(j.Archive) > 0) != (j.Status == JobStatusFinished) {
		return ErrArchiveMismatch
	}

	detailExpected := j.Status == JobStatusFailed || j.Status == JobStatusTimeout
	if (j.Detail != "") != detailExpected {
		return ErrDetailMismatch
	}

	return nil
}

// isValidJobStatus checks if the given status is a valid JobStatus.
func isValidJobStatus(status JobStatus) bool {
	switch status {
	case JobStatusQueued, JobStatusRunning, JobStatusFinished,
		JobStatusFailed, JobStatusTimeout:
		return true
	default:
		return false
	}
}
