package consent

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/scis/scis/internal/platform/auth"
	"github.com/scis/scis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/consents", h.ListByPatient)
	api.GET("/consents/active", h.GetActive)

	write := api.Group("", auth.RequireRole(auth.RoleHospitalManager, auth.RoleDoctor, auth.RoleStaff))
	write.POST("/consents", h.Record)
}

type recordRequest struct {
	PatientID            uuid.UUID  `json:"patient_id"`
	RequestingUserID     uuid.UUID  `json:"requesting_user_id"`
	RequestingHospitalID uuid.UUID  `json:"requesting_hospital_id"`
	DataType             string     `json:"data_type"`
	Decision             bool       `json:"decision"`
	ExpiryDate           *time.Time `json:"expiry_date,omitempty"`
	Notes                *string    `json:"notes,omitempty"`
}

func (h *Handler) Record(c echo.Context) error {
	var req recordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.Record(c.Request().Context(), RecordParams{
		PatientID:            req.PatientID,
		RequestingUserID:     req.RequestingUserID,
		RequestingHospitalID: req.RequestingHospitalID,
		DataType:             req.DataType,
		Decision:             req.Decision,
		ExpiryDate:           req.ExpiryDate,
		Notes:                req.Notes,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) GetActive(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id query param is required")
	}
	hospitalID, err := uuid.Parse(c.QueryParam("requesting_hospital_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "requesting_hospital_id query param is required")
	}
	dataType := c.QueryParam("data_type")
	if dataType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "data_type query param is required")
	}

	rec, err := h.svc.GetActive(c.Request().Context(), patientID, hospitalID, dataType)
	if err != nil {
		if errors.Is(err, ErrNoConsent) {
			return echo.NewHTTPError(http.StatusNotFound, "no active consent")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.QueryParam("patient_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "patient_id query param is required")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
