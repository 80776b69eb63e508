package api

import (
	"fmt"
	"time"

	"github.com/glbobx/glbobx-api/internal/domain"
)

// Common request/response structures

// SubmitResponse defines the 202 payload returned for an accepted
// conversion. Callers poll the job endpoint with the returned id.
type SubmitResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobResponse is the public projection of a job record.
type JobResponse struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`

	// Detail carries the failure or timeout explanation; absent otherwise
	Detail string `json:"detail,omitempty"`

	// Artifacts is always present but only populated once finished
	Artifacts []string `json:"artifacts"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// DownloadURL points at the archive endpoint once finished
	DownloadURL string `json:"download_url,omitempty"`
}

// HealthResponse defines the health endpoint payload.
type HealthResponse struct {
	Status        string `json:"status"`
	QueuedJobs    int    `json:"queued_jobs"`
	RunningJobs   int    `json:"running_jobs"`
	FinishedJobs  int    `json:"finished_jobs"`
	FailedJobs    int    `json:"failed_jobs"`
	TimeoutJobs   int    `json:"timeout_jobs"`
	TotalRecords  int    `json:"total_records"`
	QueueDepth    int    `json:"queue_depth"`
	QueueCapacity int    `json:"queue_capacity"`
	Workers       int    `json:"workers"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// jobToResponse converts a domain.Job to its public projection. The
// archive bytes never leave through this path; artifacts and the
// download reference only appear on finished jobs.
func jobToResponse(j *domain.Job) JobResponse {
	resp := JobResponse{
		JobID:      j.ID.String(),
		Status:     string(j.Status),
		Detail:     j.Detail,
		Artifacts:  []string{},
		CreatedAt:  j.CreatedAt,
		StartedAt:  j.StartedAt,
		FinishedAt: j.FinishedAt,
	}

	if j.Status == domain.JobStatusFinished {
		if len(j.Artifacts) > 0 {
			resp.Artifacts = j.Artifacts
		}
		resp.DownloadURL = fmt.Sprintf("/jobs/%s/download", j.ID)
	}

	return resp
}
