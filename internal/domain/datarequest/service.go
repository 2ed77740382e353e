package datarequest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scis/scis/internal/domain/consent"
	"github.com/scis/scis/internal/domain/endpoint"
	"github.com/scis/scis/internal/domain/identity"
	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/internal/platform/fhir"
)

var (
	ErrNotFound    = errors.New("data request not found")
	ErrNotPending  = errors.New("request is not pending")
	ErrNotApprover = errors.New("approver not affiliated with patient hospital")
)

// Collaborator contracts, satisfied by the identity, consent and endpoint
// services and the fhir client.

type PatientDirectory interface {
	GetPatient(ctx context.Context, id uuid.UUID) (*identity.Patient, error)
	GetPatientByExternalID(ctx context.Context, patientID string) (*identity.Patient, error)
}

type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

type ConsentStore interface {
	GetActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) (*consent.PatientConsent, error)
	Record(ctx context.Context, p consent.RecordParams) (*consent.PatientConsent, error)
}

type EndpointResolver interface {
	Resolve(ctx context.Context, hospitalID uuid.UUID, dataType string) (*endpoint.DataRequestEndpoint, error)
}

type Fetcher interface {
	Fetch(ctx context.Context, fr fhir.FetchRequest) (*fhir.FetchResult, error)
}

type Service struct {
	repo      Repository
	patients  PatientDirectory
	users     UserDirectory
	consents  ConsentStore
	endpoints EndpointResolver
	fetcher   Fetcher
	now       func() time.Time
}

func NewService(repo Repository, patients PatientDirectory, users UserDirectory,
	consents ConsentStore, endpoints EndpointResolver, fetcher Fetcher) *Service {
	return &Service{
		repo:      repo,
		patients:  patients,
		users:     users,
		consents:  consents,
		endpoints: endpoints,
		fetcher:   fetcher,
		now:       time.Now,
	}
}

// Submit runs the full request workflow for one data request. Once the
// request has been accepted every outcome comes back as a persisted
// DataRequest record; upstream failures degrade to Denied, never an error.
func (s *Service) Submit(ctx context.Context, requestingUserID uuid.UUID, patientExternalID, dataType, purpose string) (*DataRequest, error) {
	if patientExternalID == "" {
		return nil, fmt.Errorf("patient_external_id is required")
	}
	if !auth.ValidDataType(dataType) {
		return nil, fmt.Errorf("invalid data type: %s", dataType)
	}
	if purpose == "" {
		return nil, fmt.Errorf("purpose is required")
	}

	requester, err := s.users.GetUser(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if !requester.Active {
		return nil, fmt.Errorf("requesting user is inactive")
	}

	patient, err := s.patients.GetPatientByExternalID(ctx, patientExternalID)
	if err != nil {
		return nil, err
	}
	if !patient.Active {
		return nil, identity.ErrPatientNotFound
	}

	// A SystemManager has no affiliation; their requests run as the
	// patient's own hospital.
	requestingHospitalID := patient.HospitalID
	if requester.HospitalID != nil {
		requestingHospitalID = *requester.HospitalID
	}

	req := &DataRequest{
		RequestingUserID:       requester.ID,
		RequestingHospitalID:   requestingHospitalID,
		PatientID:              patient.ID,
		PatientHospitalID:      patient.HospitalID,
		DataType:               dataType,
		Purpose:                purpose,
		Status:                 StatusPending,
		RequestDate:            s.now(),
		IsRoleAuthorized:       auth.IsAuthorized(requester.Role, dataType),
		IsCrossHospitalRequest: patient.HospitalID != requestingHospitalID,
	}

	if !req.IsRoleAuthorized {
		reason := "Unauthorized role"
		req.Status = StatusDenied
		req.DenialReason = &reason
		if err := s.repo.Create(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	if req.IsCrossHospitalRequest {
		rec, err := s.consents.GetActive(ctx, patient.ID, requestingHospitalID, dataType)
		switch {
		case errors.Is(err, consent.ErrNoConsent):
			req.IsConsentValid = false
		case err != nil:
			return nil, err
		default:
			req.IsConsentValid = rec.IsConsented
		}
	} else {
		// Same-hospital access is implicitly consented.
		req.IsConsentValid = true
	}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, err
	}

	if !req.IsConsentValid {
		// Awaits an explicit approval from the patient's hospital.
		return req, nil
	}

	s.runFetch(ctx, req, patient.PatientID)
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve resolves a Pending cross-hospital request. Approval records a
// consent grant and runs the fetch; denial closes the request with a reason.
func (s *Service) Approve(ctx context.Context, requestID, approverID uuid.UUID, isApproved bool, reason string) (*DataRequest, error) {
	req, err := s.repo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending || !req.IsCrossHospitalRequest {
		return nil, ErrNotPending
	}

	approver, err := s.users.GetUser(ctx, approverID)
	if err != nil {
		return nil, err
	}
	if !approver.Active ||
		approver.HospitalID == nil || *approver.HospitalID != req.PatientHospitalID ||
		(approver.Role != auth.RoleHospitalManager && approver.Role != auth.RoleDoctor) {
		return nil, ErrNotApprover
	}

	now := s.now()
	req.ApprovingUserID = &approver.ID
	req.ApprovalDate = &now

	if !isApproved {
		if reason == "" {
			reason = "Denied by patient hospital"
		}
		req.Status = StatusDenied
		req.DenialReason = &reason
		if err := s.repo.Update(ctx, req); err != nil {
			return nil, err
		}
		return req, nil
	}

	if _, err := s.consents.Record(ctx, consent.RecordParams{
		PatientID:            req.PatientID,
		RequestingUserID:     req.RequestingUserID,
		RequestingHospitalID: req.RequestingHospitalID,
		DataType:             req.DataType,
		Decision:             true,
	}); err != nil {
		return nil, fmt.Errorf("recording consent grant: %w", err)
	}
	req.IsConsentValid = true

	// Persist the approval before fetching so a crash mid-fetch leaves a
	// durable record of the consent decision.
	req.Status = StatusApproved
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}

	patient, err := s.patients.GetPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	s.runFetch(ctx, req, patient.PatientID)
	if err := s.repo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// runFetch resolves the endpoint for the patient's hospital and performs the
// external call, mutating req into its terminal state. It never returns an
// error; every failure becomes a Denied record with a reason.
func (s *Service) runFetch(ctx context.Context, req *DataRequest, patientExternalID string) {
	ep, err := s.endpoints.Resolve(ctx, req.PatientHospitalID, req.DataType)
	if err != nil {
		var reason string
		switch {
		case errors.Is(err, endpoint.ErrNotConfigured):
			reason = "No endpoint configured for data type"
		case errors.Is(err, endpoint.ErrInactive):
			reason = "Endpoint deactivated"
		default:
			reason = "Endpoint resolution failed: " + err.Error()
		}
		s.deny(req, reason, nil)
		return
	}

	var cred string
	if ep.AuthCredential != nil {
		cred = *ep.AuthCredential
	}
	result, err := s.fetcher.Fetch(ctx, fhir.FetchRequest{
		URL:       ep.URL,
		Method:    ep.HTTPMethod,
		AuthType:  ep.AuthType,
		AuthToken: cred,
		Params:    map[string]string{"patient": patientExternalID},
	})
	if err != nil {
		var elapsed *int64
		var fe *fhir.FetchError
		if errors.As(err, &fe) {
			elapsed = &fe.ElapsedMs
		}
		s.deny(req, err.Error(), elapsed)
		return
	}

	now := s.now()
	req.Status = StatusCompleted
	req.ResponseData = &result.Body
	req.ResponseDate = &now
	req.ResponseTimeMs = &result.ElapsedMs
}

func (s *Service) deny(req *DataRequest, reason string, elapsed *int64) {
	now := s.now()
	req.Status = StatusDenied
	req.DenialReason = &reason
	req.ResponseDate = &now
	req.ResponseTimeMs = elapsed
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DataRequest, error) {
	return s.repo.GetByID(ctx, id)
}

// GetHistory returns a user's requests, newest first.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// ListByHospital returns a requesting hospital's requests for dashboards.
func (s *Service) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	return s.repo.ListByHospital(ctx, hospitalID, limit, offset)
}
