package consent

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const consentCols = `id, patient_id, requesting_user_id, requesting_hospital_id,
	data_type, is_consented, consent_date, expiry_date, notes, active, created_at`

func scanConsent(row pgx.Row) (*PatientConsent, error) {
	var c PatientConsent
	err := row.Scan(&c.ID, &c.PatientID, &c.RequestingUserID, &c.RequestingHospitalID,
		&c.DataType, &c.IsConsented, &c.ConsentDate, &c.ExpiryDate, &c.Notes, &c.Active, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoConsent
	}
	return &c, err
}

func (r *repoPG) Insert(ctx context.Context, c *PatientConsent) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient_consent (id, patient_id, requesting_user_id, requesting_hospital_id,
			data_type, is_consented, consent_date, expiry_date, notes, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		c.ID, c.PatientID, c.RequestingUserID, c.RequestingHospitalID,
		c.DataType, c.IsConsented, c.ConsentDate, c.ExpiryDate, c.Notes, c.Active)
	return err
}

func (r *repoPG) GetActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) (*PatientConsent, error) {
	return scanConsent(r.pool.QueryRow(ctx, `
		SELECT `+consentCols+` FROM patient_consent
		WHERE patient_id = $1 AND requesting_hospital_id = $2 AND data_type = $3 AND active
		ORDER BY created_at DESC
		LIMIT 1`,
		patientID, requestingHospitalID, dataType))
}

func (r *repoPG) DeactivateActive(ctx context.Context, patientID, requestingHospitalID uuid.UUID, dataType string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE patient_consent SET active = FALSE
		WHERE patient_id = $1 AND requesting_hospital_id = $2 AND data_type = $3 AND active`,
		patientID, requestingHospitalID, dataType)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*PatientConsent, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient_consent WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+consentCols+` FROM patient_consent
		WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*PatientConsent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}
