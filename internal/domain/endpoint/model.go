package endpoint

import (
	"time"

	"github.com/google/uuid"
)

// DataRequestEndpoint maps to the data_request_endpoint table: the external
// FHIR URL serving one (hospital, data type) pair.
type DataRequestEndpoint struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	HospitalID          uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	DataType            string     `db:"data_type" json:"data_type"`
	URL                 string     `db:"url" json:"url"`
	FHIRResourceType    string     `db:"fhir_resource_type" json:"fhir_resource_type"`
	HTTPMethod          string     `db:"http_method" json:"http_method"`
	AuthType            string     `db:"auth_type" json:"auth_type"`
	AuthCredential      *string    `db:"auth_credential" json:"-"`
	Active              bool       `db:"active" json:"active"`
	LastValidatedAt     *time.Time `db:"last_validated_at" json:"last_validated_at,omitempty"`
	LastValidationOK    *bool      `db:"last_validation_ok" json:"last_validation_ok,omitempty"`
	LastValidationError *string    `db:"last_validation_error" json:"last_validation_error,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}
