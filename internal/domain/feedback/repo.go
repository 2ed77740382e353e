package feedback

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, f *PatientFeedback) error
	GetByID(ctx context.Context, id uuid.UUID) (*PatientFeedback, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error)
	ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error)
	DoctorAverages(ctx context.Context, doctorID uuid.UUID) (*DoctorAverages, error)
}
