package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// System roles.
const (
	RoleSystemManager   = "SystemManager"
	RoleHospitalManager = "HospitalManager"
	RoleDoctor          = "Doctor"
	RoleStaff           = "Staff"
)

// Clinical and administrative data types exchanged between hospitals.
const (
	DataTypeMedicalHistory = "MedicalHistory"
	DataTypeLabResults     = "LabResults"
	DataTypeMedications    = "Medications"
	DataTypeAllergies      = "Allergies"
	DataTypeImmunizations  = "Immunizations"
	DataTypeVitalSigns     = "VitalSigns"
	DataTypeDemographics   = "Demographics"
	DataTypeAppointments   = "Appointments"
)

// rolePermissions maps each role to the data types it may request.
// Manager roles are unrestricted and resolved before this table is consulted.
var rolePermissions = map[string]map[string]bool{
	RoleDoctor: {
		DataTypeMedicalHistory: true,
		DataTypeLabResults:     true,
		DataTypeMedications:    true,
		DataTypeAllergies:      true,
		DataTypeImmunizations:  true,
		DataTypeVitalSigns:     true,
		DataTypeDemographics:   true,
	},
	RoleStaff: {
		DataTypeDemographics:   true,
		DataTypeAppointments:   true,
		DataTypeMedicalHistory: true,
	},
}

// IsAuthorized reports whether the given role may request the given data type.
// It is a pure function of its inputs.
func IsAuthorized(role, dataType string) bool {
	if role == RoleSystemManager || role == RoleHospitalManager {
		return true
	}
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[dataType]
}

// ValidRole reports whether role is one of the known system roles.
func ValidRole(role string) bool {
	switch role {
	case RoleSystemManager, RoleHospitalManager, RoleDoctor, RoleStaff:
		return true
	}
	return false
}

// ValidDataType reports whether dataType is one of the known data types.
func ValidDataType(dataType string) bool {
	switch dataType {
	case DataTypeMedicalHistory, DataTypeLabResults, DataTypeMedications,
		DataTypeAllergies, DataTypeImmunizations, DataTypeVitalSigns,
		DataTypeDemographics, DataTypeAppointments:
		return true
	}
	return false
}

// RequireRole returns middleware that checks if the user has one of the
// specified roles. SystemManager always passes.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole := RoleFromContext(c.Request().Context())
			if userRole == RoleSystemManager {
				return next(c)
			}
			for _, required := range roles {
				if userRole == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
