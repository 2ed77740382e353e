package endpoint

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const endpointCols = `id, hospital_id, data_type, url, fhir_resource_type, http_method,
	auth_type, auth_credential, active, last_validated_at, last_validation_ok,
	last_validation_error, created_at, updated_at`

func scanEndpoint(row pgx.Row) (*DataRequestEndpoint, error) {
	var e DataRequestEndpoint
	err := row.Scan(&e.ID, &e.HospitalID, &e.DataType, &e.URL, &e.FHIRResourceType, &e.HTTPMethod,
		&e.AuthType, &e.AuthCredential, &e.Active, &e.LastValidatedAt, &e.LastValidationOK,
		&e.LastValidationError, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotConfigured
	}
	return &e, err
}

func (r *repoPG) Upsert(ctx context.Context, e *DataRequestEndpoint) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO data_request_endpoint (id, hospital_id, data_type, url, fhir_resource_type,
			http_method, auth_type, auth_credential, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (hospital_id, data_type) DO UPDATE SET
			url = EXCLUDED.url,
			fhir_resource_type = EXCLUDED.fhir_resource_type,
			http_method = EXCLUDED.http_method,
			auth_type = EXCLUDED.auth_type,
			auth_credential = EXCLUDED.auth_credential,
			active = EXCLUDED.active,
			updated_at = NOW()`,
		e.ID, e.HospitalID, e.DataType, e.URL, e.FHIRResourceType,
		e.HTTPMethod, e.AuthType, e.AuthCredential, e.Active)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*DataRequestEndpoint, error) {
	return scanEndpoint(r.pool.QueryRow(ctx, `SELECT `+endpointCols+` FROM data_request_endpoint WHERE id = $1`, id))
}

func (r *repoPG) GetByHospitalAndType(ctx context.Context, hospitalID uuid.UUID, dataType string) (*DataRequestEndpoint, error) {
	return scanEndpoint(r.pool.QueryRow(ctx, `
		SELECT `+endpointCols+` FROM data_request_endpoint
		WHERE hospital_id = $1 AND data_type = $2`,
		hospitalID, dataType))
}

func (r *repoPG) ListByHospital(ctx context.Context, hospitalID uuid.UUID, limit, offset int) ([]*DataRequestEndpoint, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM data_request_endpoint WHERE hospital_id = $1`, hospitalID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+endpointCols+` FROM data_request_endpoint
		WHERE hospital_id = $1 ORDER BY data_type LIMIT $2 OFFSET $3`,
		hospitalID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DataRequestEndpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, e)
	}
	return items, total, rows.Err()
}

func (r *repoPG) RecordValidation(ctx context.Context, id uuid.UUID, ok bool, validationErr *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE data_request_endpoint
		SET last_validated_at = NOW(), last_validation_ok = $2, last_validation_error = $3, updated_at = NOW()
		WHERE id = $1`,
		id, ok, validationErr)
	return err
}
