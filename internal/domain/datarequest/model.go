package datarequest

import (
	"time"

	"github.com/google/uuid"
)

// Request statuses. Denied and Completed are terminal; Approved marks a
// granted request whose fetch has not yet resolved.
const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusDenied    = "Denied"
	StatusCompleted = "Completed"
)

// DataRequest maps to the data_request table: one cross- or same-hospital
// fetch of patient data, with its full decision trail.
type DataRequest struct {
	ID                     uuid.UUID  `db:"id" json:"id"`
	RequestingUserID       uuid.UUID  `db:"requesting_user_id" json:"requesting_user_id"`
	RequestingHospitalID   uuid.UUID  `db:"requesting_hospital_id" json:"requesting_hospital_id"`
	PatientID              uuid.UUID  `db:"patient_id" json:"patient_id"`
	PatientHospitalID      uuid.UUID  `db:"patient_hospital_id" json:"patient_hospital_id"`
	ApprovingUserID        *uuid.UUID `db:"approving_user_id" json:"approving_user_id,omitempty"`
	DataType               string     `db:"data_type" json:"data_type"`
	Purpose                string     `db:"purpose" json:"purpose"`
	Status                 string     `db:"status" json:"status"`
	RequestDate            time.Time  `db:"request_date" json:"request_date"`
	ResponseDate           *time.Time `db:"response_date" json:"response_date,omitempty"`
	ApprovalDate           *time.Time `db:"approval_date" json:"approval_date,omitempty"`
	ResponseData           *string    `db:"response_data" json:"response_data,omitempty"`
	DenialReason           *string    `db:"denial_reason" json:"denial_reason,omitempty"`
	ResponseTimeMs         *int64     `db:"response_time_ms" json:"response_time_ms,omitempty"`
	IsConsentValid         bool       `db:"is_consent_valid" json:"is_consent_valid"`
	IsRoleAuthorized       bool       `db:"is_role_authorized" json:"is_role_authorized"`
	IsCrossHospitalRequest bool       `db:"is_cross_hospital_request" json:"is_cross_hospital_request"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt              time.Time  `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether the request can no longer transition.
func (r *DataRequest) Terminal() bool {
	return r.Status == StatusDenied || r.Status == StatusCompleted
}
