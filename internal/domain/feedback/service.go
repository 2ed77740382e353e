package feedback

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("feedback not found")

type Service struct {
	repo     Repository
	analyzer SentimentAnalyzer
}

func NewService(repo Repository, analyzer SentimentAnalyzer) *Service {
	return &Service{repo: repo, analyzer: analyzer}
}

// SubmitParams is one patient's feedback for one treatment.
type SubmitParams struct {
	PatientID           uuid.UUID
	DoctorID            uuid.UUID
	HospitalID          uuid.UUID
	PreTreatmentRating  int
	PostTreatmentRating int
	SatisfactionRating  int
	Comments            *string
}

// Submit validates the ratings, scores the feedback synchronously and
// persists it fully processed. Records are never mutated afterward.
func (s *Service) Submit(ctx context.Context, p SubmitParams) (*PatientFeedback, error) {
	if p.PatientID == uuid.Nil || p.DoctorID == uuid.Nil || p.HospitalID == uuid.Nil {
		return nil, fmt.Errorf("patient, doctor and hospital are required")
	}
	for _, r := range []int{p.PreTreatmentRating, p.PostTreatmentRating, p.SatisfactionRating} {
		if r < 1 || r > 5 {
			return nil, fmt.Errorf("ratings must be between 1 and 5")
		}
	}

	var text string
	if p.Comments != nil {
		text = *p.Comments
	}
	label, score := s.analyzer.Analyze(text)

	f := &PatientFeedback{
		PatientID:                p.PatientID,
		DoctorID:                 p.DoctorID,
		HospitalID:               p.HospitalID,
		PreTreatmentRating:       p.PreTreatmentRating,
		PostTreatmentRating:      p.PostTreatmentRating,
		SatisfactionRating:       p.SatisfactionRating,
		Comments:                 p.Comments,
		TreatmentEvaluationScore: Score(p.PreTreatmentRating, p.PostTreatmentRating, p.SatisfactionRating),
		SentimentLabel:           label,
		SentimentScore:           score,
		IsProcessed:              true,
	}
	if err := s.repo.Create(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*PatientFeedback, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	return s.repo.ListByDoctor(ctx, doctorID, limit, offset)
}

func (s *Service) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	return s.repo.ListByHospital(ctx, hospitalID, limit, offset)
}

func (s *Service) DoctorAverages(ctx context.Context, doctorID uuid.UUID) (*DoctorAverages, error) {
	return s.repo.DoctorAverages(ctx, doctorID)
}
