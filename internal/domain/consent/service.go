package consent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scis/scis/internal/platform/auth"
)

// ErrNoConsent means no usable consent decision exists for the tuple.
// A recorded denial is not ErrNoConsent; it comes back as a row with
// IsConsented=false.
var ErrNoConsent = errors.New("no active consent")

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// RecordParams captures a consent decision to be appended to the audit trail.
type RecordParams struct {
	PatientID            uuid.UUID
	RequestingUserID     uuid.UUID
	RequestingHospitalID uuid.UUID
	DataType             string
	Decision             bool
	ExpiryDate           *time.Time
	Notes                *string
}

// GetActive returns the authoritative consent decision for the tuple.
// Expired rows are treated as absent.
func (s *Service) GetActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) (*PatientConsent, error) {
	c, err := s.repo.GetActive(ctx, patientID, requestingHospitalID, dataType)
	if err != nil {
		return nil, err
	}
	if c.Expired(s.now()) {
		return nil, ErrNoConsent
	}
	return c, nil
}

// Record appends a new consent decision and deactivates any previous active
// rows for the tuple. Nothing is ever deleted.
func (s *Service) Record(ctx context.Context, p RecordParams) (*PatientConsent, error) {
	if p.PatientID == uuid.Nil || p.RequestingUserID == uuid.Nil || p.RequestingHospitalID == uuid.Nil {
		return nil, fmt.Errorf("patient, requesting user and requesting hospital are required")
	}
	if !auth.ValidDataType(p.DataType) {
		return nil, fmt.Errorf("invalid data type: %s", p.DataType)
	}
	if p.ExpiryDate != nil && p.ExpiryDate.Before(s.now()) {
		return nil, fmt.Errorf("expiry_date is in the past")
	}

	if err := s.repo.DeactivateActive(ctx, p.PatientID, p.RequestingHospitalID, p.DataType); err != nil {
		return nil, fmt.Errorf("deactivating prior consent: %w", err)
	}

	c := &PatientConsent{
		PatientID:            p.PatientID,
		RequestingUserID:     p.RequestingUserID,
		RequestingHospitalID: p.RequestingHospitalID,
		DataType:             p.DataType,
		IsConsented:          p.Decision,
		ConsentDate:          s.now(),
		ExpiryDate:           p.ExpiryDate,
		Notes:                p.Notes,
		Active:               true,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ListByPatient returns the full audit trail for a patient, newest first.
func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientConsent, int, error) {
	return s.repo.ListByPatient(ctx, patientID, limit, offset)
}
