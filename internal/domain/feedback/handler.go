package feedback

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/scis/scis/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/feedback", h.Submit)
	api.GET("/feedback", h.List)
	api.GET("/feedback/:id", h.Get)
	api.GET("/feedback/doctors/:id/averages", h.DoctorAverages)
}

type submitRequest struct {
	PatientID           uuid.UUID `json:"patient_id"`
	DoctorID            uuid.UUID `json:"doctor_id"`
	HospitalID          uuid.UUID `json:"hospital_id"`
	PreTreatmentRating  int       `json:"pre_treatment_rating"`
	PostTreatmentRating int       `json:"post_treatment_rating"`
	SatisfactionRating  int       `json:"satisfaction_rating"`
	Comments            *string   `json:"comments,omitempty"`
}

func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	f, err := h.svc.Submit(c.Request().Context(), SubmitParams{
		PatientID:           req.PatientID,
		DoctorID:            req.DoctorID,
		HospitalID:          req.HospitalID,
		PreTreatmentRating:  req.PreTreatmentRating,
		PostTreatmentRating: req.PostTreatmentRating,
		SatisfactionRating:  req.SatisfactionRating,
		Comments:            req.Comments,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, f)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	f, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "feedback not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, f)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if did := c.QueryParam("doctor_id"); did != "" {
		doctorID, err := uuid.Parse(did)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid doctor_id")
		}
		items, total, err := h.svc.ListByDoctor(ctx, doctorID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	hospitalID, err := uuid.Parse(c.QueryParam("hospital_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "doctor_id or hospital_id query param is required")
	}
	items, total, err := h.svc.ListByHospital(ctx, hospitalID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DoctorAverages(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	avg, err := h.svc.DoctorAverages(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, avg)
}
