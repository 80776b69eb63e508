package api

import (
	"net/http"

	"github.com/glbobx/glbobx-api/internal/api/shared"
	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/job"
)

// HealthHandler reports liveness and worker pool gauges
type HealthHandler struct {
	service job.Service
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(service job.Service) *HealthHandler {
	return &HealthHandler{service: service}
}

// Health handles GET /healthz requests. The status degrades to
// "overloaded" once the queue is at capacity, so load balancers can back
// off before submissions start bouncing with 503s.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Health check failed", err)
		return
	}

	status := "ok"
	if stats.QueueCapacity > 0 && stats.QueueDepth >= stats.QueueCapacity {
		status = "overloaded"
	}

	total := 0
	for _, n := range stats.Counts {
		total += n
	}

	shared.RespondWithJSON(w, r, http.StatusOK, HealthResponse{
		Status:        status,
		QueuedJobs:    stats.Counts[domain.JobStatusQueued],
		RunningJobs:   stats.Counts[domain.JobStatusRunning],
		FinishedJobs:  stats.Counts[domain.JobStatusFinished],
		FailedJobs:    stats.Counts[domain.JobStatusFailed],
		TimeoutJobs:   stats.Counts[domain.JobStatusTimeout],
		TotalRecords:  total,
		QueueDepth:    stats.QueueDepth,
		QueueCapacity: stats.QueueCapacity,
		Workers:       stats.Workers,
		UptimeSeconds: int64(stats.Uptime.Seconds()),
	})
}
