package consent

import (
	"time"

	"github.com/google/uuid"
)

// PatientConsent maps to the patient_consent table. Rows are append-only:
// a new decision deactivates the previous active row for the same
// (patient, requesting hospital, data type) tuple instead of mutating it.
type PatientConsent struct {
	ID                   uuid.UUID  `db:"id" json:"id"`
	PatientID            uuid.UUID  `db:"patient_id" json:"patient_id"`
	RequestingUserID     uuid.UUID  `db:"requesting_user_id" json:"requesting_user_id"`
	RequestingHospitalID uuid.UUID  `db:"requesting_hospital_id" json:"requesting_hospital_id"`
	DataType             string     `db:"data_type" json:"data_type"`
	IsConsented          bool       `db:"is_consented" json:"is_consented"`
	ConsentDate          time.Time  `db:"consent_date" json:"consent_date"`
	ExpiryDate           *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	Notes                *string    `db:"notes" json:"notes,omitempty"`
	Active               bool       `db:"active" json:"active"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// Expired reports whether the consent's expiry date has passed.
func (c *PatientConsent) Expired(now time.Time) bool {
	return c.ExpiryDate != nil && c.ExpiryDate.Before(now)
}
