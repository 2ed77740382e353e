package hospital

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("hospital not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create registers a hospital pending system-manager approval.
func (s *Service) Create(ctx context.Context, h *Hospital) error {
	if h.Name == "" {
		return fmt.Errorf("name is required")
	}
	if h.Code == "" {
		return fmt.Errorf("code is required")
	}
	if existing, err := s.repo.GetByCode(ctx, h.Code); err == nil && existing != nil {
		return fmt.Errorf("hospital code %q already registered", h.Code)
	} else if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	h.Active = true
	h.Approved = false
	return s.repo.Create(ctx, h)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Hospital, error) {
	return s.repo.GetByCode(ctx, code)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if h.Approved {
		return h, nil
	}
	h.Approved = true
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !h.Active {
		return h, nil
	}
	h.Active = false
	if err := s.repo.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// RecomputeMetrics refreshes a hospital's stored request aggregates.
func (s *Service) RecomputeMetrics(ctx context.Context, id uuid.UUID) (*RequestStats, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.repo.AggregateRequestStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("aggregating request stats: %w", err)
	}
	if err := s.repo.UpdateMetrics(ctx, id, stats); err != nil {
		return nil, fmt.Errorf("storing metrics: %w", err)
	}
	return stats, nil
}
