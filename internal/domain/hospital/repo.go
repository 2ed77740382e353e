package hospital

import (
	"context"

	"github.com/google/uuid"
)

// RequestStats are aggregates of a hospital's finished data requests.
type RequestStats struct {
	AvgResponseTimeMs *float64
	CompletedRequests int
	DeniedRequests    int
}

type Repository interface {
	Create(ctx context.Context, h *Hospital) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error)
	GetByCode(ctx context.Context, code string) (*Hospital, error)
	Update(ctx context.Context, h *Hospital) error
	List(ctx context.Context, limit, offset int) ([]*Hospital, int, error)
	AggregateRequestStats(ctx context.Context, hospitalID uuid.UUID) (*RequestStats, error)
	UpdateMetrics(ctx context.Context, hospitalID uuid.UUID, stats *RequestStats) error
}
