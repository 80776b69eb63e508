package job

import (
	"context"

	"github.com/google/uuid"

	"github.com/glbobx/glbobx-api/internal/domain"
)

// Service is the surface the transport layer depends on for conversion
// jobs.
// Version: 1.0
type Service interface {
	// Submit validates a payload and dispatches one conversion, returning
	// the queued record snapshot whose ID callers poll.
	Submit(ctx context.Context, payload []byte, originalName string) (*domain.Job, error)

	// Get returns a point-in-time snapshot of one job record.
	Get(ctx context.Context, id uuid.UUID) (*domain.Job, error)

	// Stats reports operational gauges for health reporting.
	Stats(ctx context.Context) (Stats, error)
}

// Ensure Manager satisfies the interface it is consumed through.
var _ Service = (*Manager)(nil)
