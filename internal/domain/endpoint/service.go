package endpoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/internal/platform/fhir"
)

var (
	// ErrNotConfigured means no endpoint row exists for the (hospital, data type) pair.
	ErrNotConfigured = errors.New("endpoint not configured")
	// ErrInactive means the endpoint exists but has been disabled by an admin.
	ErrInactive = errors.New("endpoint inactive")
)

// Fetcher probes an external endpoint. Satisfied by *fhir.Client.
type Fetcher interface {
	Fetch(ctx context.Context, fr fhir.FetchRequest) (*fhir.FetchResult, error)
}

type Service struct {
	repo    Repository
	fetcher Fetcher
}

func NewService(repo Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// Resolve returns the active endpoint for the pair. Unconfigured and inactive
// are distinct failures; reachability is only known after an actual call.
func (s *Service) Resolve(ctx context.Context, hospitalID uuid.UUID, dataType string) (*DataRequestEndpoint, error) {
	e, err := s.repo.GetByHospitalAndType(ctx, hospitalID, dataType)
	if err != nil {
		return nil, err
	}
	if !e.Active {
		return nil, ErrInactive
	}
	return e, nil
}

func (s *Service) Upsert(ctx context.Context, e *DataRequestEndpoint) error {
	if e.HospitalID == uuid.Nil {
		return fmt.Errorf("hospital_id is required")
	}
	if !auth.ValidDataType(e.DataType) {
		return fmt.Errorf("invalid data type: %s", e.DataType)
	}
	if !strings.HasPrefix(e.URL, "http://") && !strings.HasPrefix(e.URL, "https://") {
		return fmt.Errorf("url must be http or https")
	}
	switch strings.ToUpper(e.HTTPMethod) {
	case "":
		e.HTTPMethod = http.MethodGet
	case http.MethodGet, http.MethodPost:
		e.HTTPMethod = strings.ToUpper(e.HTTPMethod)
	default:
		return fmt.Errorf("http_method must be GET or POST")
	}
	switch e.AuthType {
	case "":
		e.AuthType = fhir.AuthNone
	case fhir.AuthNone, fhir.AuthAPIKey, fhir.AuthBearer:
	default:
		return fmt.Errorf("auth_type must be none, api_key or bearer")
	}
	if e.AuthType != fhir.AuthNone && (e.AuthCredential == nil || *e.AuthCredential == "") {
		return fmt.Errorf("auth_credential is required for auth_type %s", e.AuthType)
	}
	return s.repo.Upsert(ctx, e)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*DataRequestEndpoint, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequestEndpoint, int, error) {
	return s.repo.ListByHospital(ctx, hospitalID, limit, offset)
}

// Validate probes the endpoint with an empty query and records the outcome.
func (s *Service) Validate(ctx context.Context, id uuid.UUID) (*DataRequestEndpoint, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var cred string
	if e.AuthCredential != nil {
		cred = *e.AuthCredential
	}
	_, fetchErr := s.fetcher.Fetch(ctx, fhir.FetchRequest{
		URL:       e.URL,
		Method:    e.HTTPMethod,
		AuthType:  e.AuthType,
		AuthToken: cred,
	})

	ok := fetchErr == nil
	var msg *string
	if fetchErr != nil {
		m := fetchErr.Error()
		msg = &m
	}
	if err := s.repo.RecordValidation(ctx, e.ID, ok, msg); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
