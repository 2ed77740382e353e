package identity

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patient table. PatientID is the external business
// identifier; it and HospitalID are fixed at registration.
type Patient struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	PatientID  string     `db:"patient_id" json:"patient_id"`
	FirstName  string     `db:"first_name" json:"first_name"`
	LastName   string     `db:"last_name" json:"last_name"`
	Gender     *string    `db:"gender" json:"gender,omitempty"`
	BirthDate  *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	HospitalID uuid.UUID  `db:"hospital_id" json:"hospital_id"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// User maps to the app_user table. HospitalID is nil only for SystemManager.
type User struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Email      string     `db:"email" json:"email"`
	FullName   string     `db:"full_name" json:"full_name"`
	Role       string     `db:"role" json:"role"`
	HospitalID *uuid.UUID `db:"hospital_id" json:"hospital_id,omitempty"`
	Active     bool       `db:"active" json:"active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}
