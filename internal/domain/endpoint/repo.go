package endpoint

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Upsert(ctx context.Context, e *DataRequestEndpoint) error
	GetByID(ctx context.Context, id uuid.UUID) (*DataRequestEndpoint, error)
	// GetByHospitalAndType returns the endpoint row regardless of active flag.
	GetByHospitalAndType(ctx context.Context, hospitalID uuid.UUID, dataType string) (*DataRequestEndpoint, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequestEndpoint, int, error)
	RecordValidation(ctx context.Context, id uuid.UUID, ok bool, validationErr *string) error
}
