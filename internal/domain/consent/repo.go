package consent

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Insert(ctx context.Context, c *PatientConsent) error
	// GetActive returns the most recent active row for the tuple, expired or not.
	GetActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) (*PatientConsent, error)
	// DeactivateActive marks all active rows for the tuple inactive.
	DeactivateActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientConsent, int, error)
}
