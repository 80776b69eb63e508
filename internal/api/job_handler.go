package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/api/shared"
	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/job"
)

// JobHandler handles conversion job HTTP requests
type JobHandler struct {
	service        job.Service
	maxUploadBytes int64
}

// NewJobHandler creates a new JobHandler
func NewJobHandler(service job.Service, maxUploadBytes int64) *JobHandler {
	return &JobHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// SubmitConversion handles POST /convert requests. The upload arrives as
// a multipart form with a "file" field; clients may also POST the raw
// bytes directly. The response is 202 with the job id to poll.
func (h *JobHandler) SubmitConversion(w http.ResponseWriter, r *http.Request) {
	payload, filename, err := h.readUpload(w, r)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	submitted, err := h.service.Submit(r.Context(), payload, filename)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, SubmitResponse{
		JobID:  submitted.ID.String(),
		Status: string(submitted.Status),
	})
}

// GetJob handles GET /jobs/{id} requests.
func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, GetSafeErrorMessage(ErrMalformedJobID))
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, jobToResponse(record))
}

// DownloadArchive handles GET /jobs/{id}/download requests, streaming the
// stored ZIP for finished jobs. Absent, reclaimed, unfinished and
// malformed ids all collapse into the same 404: callers learn nothing
// about records they cannot download.
func (h *JobHandler) DownloadArchive(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusNotFound, "Job output not available")
		return
	}

	record, err := h.service.Get(r.Context(), id)
	if err != nil || record.Status != domain.JobStatusFinished || len(record.Archive) == 0 {
		shared.RespondWithError(w, r, http.StatusNotFound, "Job output not available")
		return
	}

	filename := downloadFilename(record.OriginalName)
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(record.Archive)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(record.Archive); err != nil {
		slog.Debug("archive download aborted", "job_id", id, "error", err)
	}
}

// readUpload extracts the model payload and its original filename from
// the request, enforcing the upload size limit.
func (h *JobHandler) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	if r.ContentLength > h.maxUploadBytes {
		return nil, "", fmt.Errorf("%w: declared %d bytes", ErrPayloadTooLarge, r.ContentLength)
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	file, header, err := r.FormFile("file")
	switch {
	case err == nil:
		defer func() { _ = file.Close() }()
		payload, readErr := io.ReadAll(file)
		if readErr != nil {
			return nil, "", wrapUploadError(readErr)
		}
		name := header.Filename
		if name == "" {
			name = "model.glb"
		}
		return payload, name, nil

	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		// Raw-body fallback for clients that POST the bytes directly.
		payload, readErr := io.ReadAll(r.Body)
		if readErr != nil {
			return nil, "", wrapUploadError(readErr)
		}
		name := r.Header.Get("X-Filename")
		if name == "" {
			name = "model.glb"
		}
		return payload, name, nil

	case errors.Is(err, http.ErrMissingFile):
		return nil, "", domain.ErrEmptyPayload

	default:
		return nil, "", wrapUploadError(err)
	}
}

// wrapUploadError translates body-size violations into the api sentinel;
// everything else passes through untouched.
func wrapUploadError(err error) error {
	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		return fmt.Errorf("%w: limit %d bytes", ErrPayloadTooLarge, maxBytes.Limit)
	}
	return err
}

// downloadFilename derives the attachment name from the uploaded name:
// the final extension is replaced with .zip, empty stems fall back to
// "model".
func downloadFilename(original string) string {
	name := original
	if name == "" {
		name = "model.glb"
	}
	stem := name
	if i := strings.LastIndex(name, "."); i >= 0 {
		stem = name[:i]
	}
	if stem == "" {
		stem = "model"
	}
	return stem + ".zip"
}
