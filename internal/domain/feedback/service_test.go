package feedback

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockRepo struct {
	items map[uuid.UUID]*PatientFeedback
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*PatientFeedback)}
}

func (m *mockRepo) Create(_ context.Context, f *PatientFeedback) error {
	f.ID = uuid.New()
	f.CreatedAt = time.Now()
	m.items[f.ID] = f
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*PatientFeedback, error) {
	f, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f, nil
}

func (m *mockRepo) ListByDoctor(_ context.Context, doctorID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	var result []*PatientFeedback
	for _, f := range m.items {
		if f.DoctorID == doctorID {
			result = append(result, f)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) ListByHospital(_ context.Context, hospitalID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	var result []*PatientFeedback
	for _, f := range m.items {
		if f.HospitalID == hospitalID {
			result = append(result, f)
		}
	}
	return result, len(result), nil
}

func (m *mockRepo) DoctorAverages(_ context.Context, doctorID uuid.UUID) (*DoctorAverages, error) {
	avg := &DoctorAverages{DoctorID: doctorID}
	var sumTES float64
	for _, f := range m.items {
		if f.DoctorID == doctorID {
			avg.FeedbackCount++
			sumTES += f.TreatmentEvaluationScore
		}
	}
	if avg.FeedbackCount > 0 {
		mean := sumTES / float64(avg.FeedbackCount)
		avg.AvgTES = &mean
	}
	return avg, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo, NewLexiconAnalyzer()), repo
}

func TestSubmit_ScoresAndPersists(t *testing.T) {
	svc, _ := newTestService()

	comments := "Excellent, highly recommend"
	f, err := svc.Submit(context.Background(), SubmitParams{
		PatientID:           uuid.New(),
		DoctorID:            uuid.New(),
		HospitalID:          uuid.New(),
		PreTreatmentRating:  5,
		PostTreatmentRating: 5,
		SatisfactionRating:  5,
		Comments:            &comments,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if f.TreatmentEvaluationScore < 95 {
		t.Errorf("expected TES near maximum, got %f", f.TreatmentEvaluationScore)
	}
	if f.SentimentLabel != SentimentPositive {
		t.Errorf("expected Positive sentiment, got %s", f.SentimentLabel)
	}
	if !f.IsProcessed {
		t.Error("expected feedback persisted as processed")
	}
}

func TestSubmit_NoCommentsIsNeutral(t *testing.T) {
	svc, _ := newTestService()

	f, err := svc.Submit(context.Background(), SubmitParams{
		PatientID:           uuid.New(),
		DoctorID:            uuid.New(),
		HospitalID:          uuid.New(),
		PreTreatmentRating:  3,
		PostTreatmentRating: 4,
		SatisfactionRating:  3,
	})
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if f.SentimentLabel != SentimentNeutral || f.SentimentScore != 0 {
		t.Errorf("expected (Neutral, 0) for absent comments, got (%s, %f)", f.SentimentLabel, f.SentimentScore)
	}
}

func TestSubmit_RatingValidation(t *testing.T) {
	svc, _ := newTestService()

	base := SubmitParams{
		PatientID:  uuid.New(),
		DoctorID:   uuid.New(),
		HospitalID: uuid.New(),
	}
	cases := []struct {
		name            string
		pre, post, sat  int
	}{
		{"zero pre", 0, 3, 3},
		{"high post", 3, 6, 3},
		{"negative satisfaction", 3, 3, -1},
	}
	for _, tc := range cases {
		p := base
		p.PreTreatmentRating = tc.pre
		p.PostTreatmentRating = tc.post
		p.SatisfactionRating = tc.sat
		if _, err := svc.Submit(context.Background(), p); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestSubmit_RequiresReferences(t *testing.T) {
	svc, _ := newTestService()

	if _, err := svc.Submit(context.Background(), SubmitParams{
		PreTreatmentRating: 3, PostTreatmentRating: 3, SatisfactionRating: 3,
	}); err == nil {
		t.Error("expected missing references to be rejected")
	}
}

func TestDoctorAverages(t *testing.T) {
	svc, _ := newTestService()
	doctorID := uuid.New()

	for _, sat := range []int{3, 5} {
		if _, err := svc.Submit(context.Background(), SubmitParams{
			PatientID:           uuid.New(),
			DoctorID:            doctorID,
			HospitalID:          uuid.New(),
			PreTreatmentRating:  sat,
			PostTreatmentRating: sat,
			SatisfactionRating:  sat,
		}); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	avg, err := svc.DoctorAverages(context.Background(), doctorID)
	if err != nil {
		t.Fatalf("averages failed: %v", err)
	}
	if avg.FeedbackCount != 2 {
		t.Errorf("expected 2 feedback rows, got %d", avg.FeedbackCount)
	}
	if avg.AvgTES == nil {
		t.Fatal("expected average TES computed")
	}
	if *avg.AvgTES < 50 || *avg.AvgTES > 100 {
		t.Errorf("unexpected average TES %f", *avg.AvgTES)
	}
}
