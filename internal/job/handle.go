package job

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle tracks a single unit of conversion work through the pool. The
// submitting side observes progress through Started and Done; the worker
// records the outcome exactly once.
type Handle struct {
	jobID     uuid.UUID
	started   chan struct{}
	done      chan struct{}
	cancel    context.CancelFunc
	startOnce sync.Once
	doneOnce  sync.Once

	// Outcome fields are written before done is closed and must only be
	// read after it.
	archive   []byte
	artifacts []string
	err       error
}

func newHandle(jobID uuid.UUID, cancel context.CancelFunc) *Handle {
	return &Handle{
		jobID:   jobID,
		started: make(chan struct{}),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
}

// JobID returns the id of the job this handle belongs to.
func (h *Handle) JobID() uuid.UUID {
	return h.jobID
}

// Started is closed when a worker actually begins executing the work.
// Queue wait time ends here.
func (h *Handle) Started() <-chan struct{} {
	return h.started
}

// Done is closed once the work has an outcome.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Result returns the recorded outcome. Valid only after Done is closed.
func (h *Handle) Result() (archive []byte, artifacts []string, err error) {
	return h.archive, h.artifacts, h.err
}

// Cancel asks the work to stop. Cancellation is advisory: work that does
// not check its context runs to completion in the background.
func (h *Handle) Cancel() {
	h.cancel()
}

func (h *Handle) markStarted() {
	h.startOnce.Do(func() {
		close(h.started)
	})
}

func (h *Handle) finish(archive []byte, artifacts []string, err error) {
	h.doneOnce.Do(func() {
		h.archive = archive
		h.artifacts = artifacts
		h.err = err
		close(h.done)
	})
}
