package feedback

import (
	"time"

	"github.com/google/uuid"
)

// Sentiment labels.
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// PatientFeedback maps to the patient_feedback table. Rows are scored on
// submission and never mutated afterward.
type PatientFeedback struct {
	ID                       uuid.UUID `db:"id" json:"id"`
	PatientID                uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID                 uuid.UUID `db:"doctor_id" json:"doctor_id"`
	HospitalID               uuid.UUID `db:"hospital_id" json:"hospital_id"`
	PreTreatmentRating       int       `db:"pre_treatment_rating" json:"pre_treatment_rating"`
	PostTreatmentRating      int       `db:"post_treatment_rating" json:"post_treatment_rating"`
	SatisfactionRating       int       `db:"satisfaction_rating" json:"satisfaction_rating"`
	Comments                 *string   `db:"comments" json:"comments,omitempty"`
	TreatmentEvaluationScore float64   `db:"treatment_evaluation_score" json:"treatment_evaluation_score"`
	SentimentLabel           string    `db:"sentiment_label" json:"sentiment_label"`
	SentimentScore           float64   `db:"sentiment_score" json:"sentiment_score"`
	IsProcessed              bool      `db:"is_processed" json:"is_processed"`
	CreatedAt                time.Time `db:"created_at" json:"created_at"`
}

// DoctorAverages are per-doctor aggregates for the dashboard.
type DoctorAverages struct {
	DoctorID        uuid.UUID `json:"doctor_id"`
	FeedbackCount   int       `json:"feedback_count"`
	AvgTES          *float64  `json:"avg_tes,omitempty"`
	AvgSatisfaction *float64  `json:"avg_satisfaction,omitempty"`
}
