package identity

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/scis/scis/internal/platform/fhir"
)

const fhirContentType = "application/fhir+json"

// FHIRHandler serves the peer-facing FHIR surface under /fhir. Partner
// hospitals resolve Demographics here the same way this service fetches
// from their endpoints, so errors are returned as OperationOutcomes.
type FHIRHandler struct {
	svc *Service
}

func NewFHIRHandler(svc *Service) *FHIRHandler {
	return &FHIRHandler{svc: svc}
}

func (h *FHIRHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/Patient", h.GetPatientResource)
}

// GetPatientResource resolves ?patient=<external id> to a FHIR Patient.
func (h *FHIRHandler) GetPatientResource(c echo.Context) error {
	patientID := c.QueryParam("patient")
	if patientID == "" {
		return writeFHIR(c, http.StatusBadRequest,
			fhir.ValidationOutcome("patient", "patient query param is required"))
	}

	p, err := h.svc.GetPatientByExternalID(c.Request().Context(), patientID)
	if err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return writeFHIR(c, http.StatusNotFound, fhir.NotFoundOutcome("Patient", patientID))
		}
		return writeFHIR(c, http.StatusInternalServerError, fhir.ErrorOutcome(err.Error()))
	}
	if !p.Active {
		return writeFHIR(c, http.StatusNotFound, fhir.NotFoundOutcome("Patient", patientID))
	}

	return writeFHIR(c, http.StatusOK, patientResource(p))
}

func patientResource(p *Patient) map[string]interface{} {
	resource := map[string]interface{}{
		"resourceType": "Patient",
		"id":           p.PatientID,
		"active":       p.Active,
		"name": []map[string]interface{}{
			{
				"family": p.LastName,
				"given":  []string{p.FirstName},
			},
		},
	}
	if p.Gender != nil {
		resource["gender"] = *p.Gender
	}
	if p.BirthDate != nil {
		resource["birthDate"] = p.BirthDate.Format("2006-01-02")
	}
	return resource
}

func writeFHIR(c echo.Context, status int, body interface{}) error {
	c.Response().Header().Set(echo.HeaderContentType, fhirContentType)
	c.Response().WriteHeader(status)
	return json.NewEncoder(c.Response()).Encode(body)
}
