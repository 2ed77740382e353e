package datarequest

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *DataRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*DataRequest, error)
	Update(ctx context.Context, r *DataRequest) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DataRequest, int, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequest, int, error)
}
