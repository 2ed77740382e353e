package hospital

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const hospitalCols = `id, name, code, address, city, country, phone, email,
	active, approved, avg_response_time_ms, completed_requests, denied_requests,
	metrics_updated_at, created_at, updated_at`

func scanHospital(row pgx.Row) (*Hospital, error) {
	var h Hospital
	err := row.Scan(&h.ID, &h.Name, &h.Code, &h.Address, &h.City, &h.Country, &h.Phone, &h.Email,
		&h.Active, &h.Approved, &h.AvgResponseTimeMs, &h.CompletedRequests, &h.DeniedRequests,
		&h.MetricsUpdatedAt, &h.CreatedAt, &h.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &h, err
}

func (r *repoPG) Create(ctx context.Context, h *Hospital) error {
	h.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO hospital (id, name, code, address, city, country, phone, email, active, approved)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		h.ID, h.Name, h.Code, h.Address, h.City, h.Country, h.Phone, h.Email, h.Active, h.Approved)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx, `SELECT `+hospitalCols+` FROM hospital WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Hospital, error) {
	return scanHospital(r.pool.QueryRow(ctx, `SELECT `+hospitalCols+` FROM hospital WHERE code = $1`, code))
}

func (r *repoPG) Update(ctx context.Context, h *Hospital) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hospital SET name=$2, address=$3, city=$4, country=$5, phone=$6, email=$7,
			active=$8, approved=$9, updated_at=NOW()
		WHERE id = $1`,
		h.ID, h.Name, h.Address, h.City, h.Country, h.Phone, h.Email, h.Active, h.Approved)
	return err
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Hospital, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM hospital`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+hospitalCols+` FROM hospital ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Hospital
	for rows.Next() {
		h, err := scanHospital(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, h)
	}
	return items, total, rows.Err()
}

func (r *repoPG) AggregateRequestStats(ctx context.Context, hospitalID uuid.UUID) (*RequestStats, error) {
	var stats RequestStats
	err := r.pool.QueryRow(ctx, `
		SELECT AVG(response_time_ms) FILTER (WHERE status = 'Completed'),
		       COUNT(*) FILTER (WHERE status = 'Completed'),
		       COUNT(*) FILTER (WHERE status = 'Denied')
		FROM data_request
		WHERE patient_hospital_id = $1`, hospitalID).
		Scan(&stats.AvgResponseTimeMs, &stats.CompletedRequests, &stats.DeniedRequests)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *repoPG) UpdateMetrics(ctx context.Context, hospitalID uuid.UUID, stats *RequestStats) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE hospital SET avg_response_time_ms=$2, completed_requests=$3, denied_requests=$4,
			metrics_updated_at=NOW(), updated_at=NOW()
		WHERE id = $1`,
		hospitalID, stats.AvgResponseTimeMs, stats.CompletedRequests, stats.DeniedRequests)
	return err
}
