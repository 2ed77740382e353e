package hospital

import (
	"time"

	"github.com/google/uuid"
)

// Hospital maps to the hospital table.
type Hospital struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Code              string     `db:"code" json:"code"`
	Address           *string    `db:"address" json:"address,omitempty"`
	City              *string    `db:"city" json:"city,omitempty"`
	Country           *string    `db:"country" json:"country,omitempty"`
	Phone             *string    `db:"phone" json:"phone,omitempty"`
	Email             *string    `db:"email" json:"email,omitempty"`
	Active            bool       `db:"active" json:"active"`
	Approved          bool       `db:"approved" json:"approved"`
	AvgResponseTimeMs *float64   `db:"avg_response_time_ms" json:"avg_response_time_ms,omitempty"`
	CompletedRequests int        `db:"completed_requests" json:"completed_requests"`
	DeniedRequests    int        `db:"denied_requests" json:"denied_requests"`
	MetricsUpdatedAt  *time.Time `db:"metrics_updated_at" json:"metrics_updated_at,omitempty"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}
