package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/redact"
	"github.com/glbobx/glbobx-api/internal/store"
)

// supervise drives one job's record through its lifecycle. The deadline
// is armed when execution starts, not at submission, so time spent
// queued never counts against the job. Exactly one terminal transition
// is written however the work ends.
func (m *Manager) supervise(h *Handle) {
	defer m.wg.Done()

	log := m.logger.With("job_id", h.JobID())

	select {
	case <-h.Started():
	case <-m.ctx.Done():
		// Shut down before a worker picked the job up; the record goes
		// out with the shutdown reclaim.
		h.Cancel()
		return
	}

	m.transition(h.JobID(), log, "running", func(j *domain.Job) error {
		return j.MarkRunning(time.Now().UTC())
	})

	timer := time.NewTimer(m.config.JobTimeout)
	defer timer.Stop()

	select {
	case <-h.Done():
		archive, artifacts, err := h.Result()
		if err != nil {
			detail := redact.Error(err)
			m.transition(h.JobID(), log, "failed", func(j *domain.Job) error {
				return j.MarkFailed(detail, time.Now().UTC())
			})
			return
		}
		m.transition(h.JobID(), log, "finished", func(j *domain.Job) error {
			return j.MarkFinished(archive, artifacts, time.Now().UTC())
		})

	case <-timer.C:
		h.Cancel()
		log.Warn("job deadline elapsed", "timeout", m.config.JobTimeout)
		detail := timeoutDetail(m.config.JobTimeout)
		m.transition(h.JobID(), log, "timeout", func(j *domain.Job) error {
			return j.MarkTimeout(detail, time.Now().UTC())
		})

	case <-m.ctx.Done():
		h.Cancel()
		return
	}
}

// transition applies one status mutation, tolerating records the sweeper
// reclaimed mid-flight.
func (m *Manager) transition(id uuid.UUID, log *slog.Logger, name string, mutate func(*domain.Job) error) {
	err := m.jobStore.Update(context.Background(), id, mutate)
	switch {
	case err == nil:
		log.Debug("job transition applied", "transition", name)
	case errors.Is(err, store.ErrJobNotFound):
		// Reclaimed while in flight; nothing left to record.
		log.Debug("job record already reclaimed", "transition", name)
	default:
		log.Error("failed to apply job transition", "transition", name, "error", err)
	}
}

// timeoutDetail renders the user-facing message recorded on timed-out
// jobs.
func timeoutDetail(limit time.Duration) string {
	return fmt.Sprintf("Conversion exceeded %ds limit", int(limit/time.Second))
}
