package datarequest

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const requestCols = `id, requesting_user_id, requesting_hospital_id, patient_id,
	patient_hospital_id, approving_user_id, data_type, purpose, status,
	request_date, response_date, approval_date, response_data, denial_reason,
	response_time_ms, is_consent_valid, is_role_authorized, is_cross_hospital_request,
	created_at, updated_at`

func scanRequest(row pgx.Row) (*DataRequest, error) {
	var r DataRequest
	err := row.Scan(&r.ID, &r.RequestingUserID, &r.RequestingHospitalID, &r.PatientID,
		&r.PatientHospitalID, &r.ApprovingUserID, &r.DataType, &r.Purpose, &r.Status,
		&r.RequestDate, &r.ResponseDate, &r.ApprovalDate, &r.ResponseData, &r.DenialReason,
		&r.ResponseTimeMs, &r.IsConsentValid, &r.IsRoleAuthorized, &r.IsCrossHospitalRequest,
		&r.CreatedAt, &r.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &r, err
}

func (r *repoPG) Create(ctx context.Context, dr *DataRequest) error {
	dr.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO data_request (id, requesting_user_id, requesting_hospital_id, patient_id,
			patient_hospital_id, approving_user_id, data_type, purpose, status,
			request_date, response_date, approval_date, response_data, denial_reason,
			response_time_ms, is_consent_valid, is_role_authorized, is_cross_hospital_request)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		dr.ID, dr.RequestingUserID, dr.RequestingHospitalID, dr.PatientID,
		dr.PatientHospitalID, dr.ApprovingUserID, dr.DataType, dr.Purpose, dr.Status,
		dr.RequestDate, dr.ResponseDate, dr.ApprovalDate, dr.ResponseData, dr.DenialReason,
		dr.ResponseTimeMs, dr.IsConsentValid, dr.IsRoleAuthorized, dr.IsCrossHospitalRequest)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DataRequest, error) {
	return scanRequest(r.pool.QueryRow(ctx, `SELECT `+requestCols+` FROM data_request WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, dr *DataRequest) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE data_request SET approving_user_id=$2, status=$3, response_date=$4,
			approval_date=$5, response_data=$6, denial_reason=$7, response_time_ms=$8,
			is_consent_valid=$9, updated_at=NOW()
		WHERE id = $1`,
		dr.ID, dr.ApprovingUserID, dr.Status, dr.ResponseDate,
		dr.ApprovalDate, dr.ResponseData, dr.DenialReason, dr.ResponseTimeMs,
		dr.IsConsentValid)
	return err
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	return r.list(ctx, `requesting_user_id`, userID, limit, offset)
}

func (r *repoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	return r.list(ctx, `requesting_hospital_id`, hospitalID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*DataRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM data_request WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestCols+` FROM data_request
		WHERE `+col+` = $1 ORDER BY request_date DESC LIMIT $2 OFFSET $3`,
		id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DataRequest
	for rows.Next() {
		dr, err := scanRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, dr)
	}
	return items, total, rows.Err()
}
