package api

import (
	"errors"
	"net/http"

	"github.com/glbobx/glbobx-api/internal/domain"
	"github.com/glbobx/glbobx-api/internal/job"
	"github.com/glbobx/glbobx-api/internal/store"
)

// ErrPayloadTooLarge indicates an upload that exceeds the configured
// size limit.
var ErrPayloadTooLarge = errors.New("uploaded payload exceeds the size limit")

// ErrMalformedJobID indicates a job id path segment that is not a UUID.
var ErrMalformedJobID = errors.New("malformed job id")

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, domain.ErrEmptyPayload),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, ErrMalformedJobID):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	// Oversized uploads
	case errors.Is(err, ErrPayloadTooLarge):
		return http.StatusRequestEntityTooLarge

	// Saturation: the queue sheds load instead of stacking requests
	case errors.Is(err, job.ErrQueueFull),
		errors.Is(err, job.ErrQueueClosed):
		return http.StatusServiceUnavailable

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	// Handle nil error
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, domain.ErrEmptyPayload):
		return "Uploaded file is empty"

	case errors.Is(err, domain.ErrInvalidFormat):
		return "Uploaded file is not a valid model"

	case errors.Is(err, ErrMalformedJobID):
		return "Invalid job id"

	case errors.Is(err, store.ErrJobNotFound),
		errors.Is(err, store.ErrNotFound):
		return "Job not found"

	case errors.Is(err, ErrPayloadTooLarge):
		return "Uploaded file is too large"

	case errors.Is(err, job.ErrQueueFull),
		errors.Is(err, job.ErrQueueClosed):
		return "Server is busy, try again later"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}
