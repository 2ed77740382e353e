package feedback

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const feedbackCols = `id, patient_id, doctor_id, hospital_id, pre_treatment_rating,
	post_treatment_rating, satisfaction_rating, comments, treatment_evaluation_score,
	sentiment_label, sentiment_score, is_processed, created_at`

func scanFeedback(row pgx.Row) (*PatientFeedback, error) {
	var f PatientFeedback
	err := row.Scan(&f.ID, &f.PatientID, &f.DoctorID, &f.HospitalID, &f.PreTreatmentRating,
		&f.PostTreatmentRating, &f.SatisfactionRating, &f.Comments, &f.TreatmentEvaluationScore,
		&f.SentimentLabel, &f.SentimentScore, &f.IsProcessed, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &f, err
}

func (r *repoPG) Create(ctx context.Context, f *PatientFeedback) error {
	f.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient_feedback (id, patient_id, doctor_id, hospital_id,
			pre_treatment_rating, post_treatment_rating, satisfaction_rating, comments,
			treatment_evaluation_score, sentiment_label, sentiment_score, is_processed)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		f.ID, f.PatientID, f.DoctorID, f.HospitalID,
		f.PreTreatmentRating, f.PostTreatmentRating, f.SatisfactionRating, f.Comments,
		f.TreatmentEvaluationScore, f.SentimentLabel, f.SentimentScore, f.IsProcessed)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*PatientFeedback, error) {
	return scanFeedback(r.pool.QueryRow(ctx, `SELECT `+feedbackCols+` FROM patient_feedback WHERE id = $1`, id))
}

func (r *repoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	return r.list(ctx, `doctor_id`, doctorID, limit, offset)
}

func (r *repoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	return r.list(ctx, `hospital_id`, hospitalID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*PatientFeedback, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient_feedback WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+feedbackCols+` FROM patient_feedback
		WHERE `+col+` = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PatientFeedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, f)
	}
	return items, total, rows.Err()
}

func (r *repoPG) DoctorAverages(ctx context.Context, doctorID uuid.UUID) (*DoctorAverages, error) {
	avg := DoctorAverages{DoctorID: doctorID}
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), AVG(treatment_evaluation_score), AVG(satisfaction_rating)
		FROM patient_feedback WHERE doctor_id = $1`, doctorID).
		Scan(&avg.FeedbackCount, &avg.AvgTES, &avg.AvgSatisfaction)
	if err != nil {
		return nil, err
	}
	return &avg, nil
}
