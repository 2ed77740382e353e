package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/scis/scis/internal/platform/auth"
)

var (
	ErrPatientNotFound = errors.New("patient not found")
	ErrUserNotFound    = errors.New("user not found")
)

type Service struct {
	patients PatientRepository
	users    UserRepository
}

func NewService(patients PatientRepository, users UserRepository) *Service {
	return &Service{patients: patients, users: users}
}

// -- Patients --

func (s *Service) RegisterPatient(ctx context.Context, p *Patient) error {
	if p.PatientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if existing, err := s.patients.GetByExternalID(ctx, p.PatientID); err == nil && existing != nil {
		return fmt.Errorf("patient %q already registered", p.PatientID)
	} else if err != nil && !errors.Is(err, ErrPatientNotFound) {
		return err
	}
	p.Active = true
	return s.patients.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByExternalID(ctx context.Context, patientID string) (*Patient, error) {
	return s.patients.GetByExternalID(ctx, patientID)
}

func (s *Service) DeactivatePatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return p, nil
	}
	p.Active = false
	if err := s.patients.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) ListPatientsByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*Patient, int, error) {
	return s.patients.ListByHospital(ctx, hospitalID, limit, offset)
}

// -- Users --

func (s *Service) CreateUser(ctx context.Context, u *User) error {
	if u.Email == "" {
		return fmt.Errorf("email is required")
	}
	if u.FullName == "" {
		return fmt.Errorf("full_name is required")
	}
	if !auth.ValidRole(u.Role) {
		return fmt.Errorf("invalid role: %s", u.Role)
	}
	// Only a SystemManager may float without a hospital affiliation.
	if u.HospitalID == nil && u.Role != auth.RoleSystemManager {
		return fmt.Errorf("hospital_id is required for role %s", u.Role)
	}
	if existing, err := s.users.GetByEmail(ctx, u.Email); err == nil && existing != nil {
		return fmt.Errorf("email %q already registered", u.Email)
	} else if err != nil && !errors.Is(err, ErrUserNotFound) {
		return err
	}
	u.Active = true
	return s.users.Create(ctx, u)
}

func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *Service) ListUsersByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*User, int, error) {
	return s.users.ListByHospital(ctx, hospitalID, limit, offset)
}

func (s *Service) DeactivateUser(ctx context.Context, id uuid.UUID) (*User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.Active {
		return u, nil
	}
	u.Active = false
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
