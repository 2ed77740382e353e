package datarequest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/scis/scis/internal/domain/identity"
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
	api.POST("/data-requests", h.Submit)
	api.GET("/data-requests", h.List)
	api.GET("/data-requests/:id", h.Get)

	approvers := api.Group("", auth.RequireRole(auth.RoleHospitalManager, auth.RoleDoctor))
	approvers.POST("/data-requests/:id/approve", h.Approve)
}

type submitRequest struct {
	RequestingUserID  uuid.UUID `json:"requesting_user_id"`
	PatientExternalID string    `json:"patient_external_id"`
	DataType          string    `json:"data_type"`
	Purpose           string    `json:"purpose"`
}

// actingUserID resolves the caller from the authenticated identity. The id
// named in the request body applies only when the token carries no user id,
// which happens under the development identity.
func actingUserID(c echo.Context, bodyID uuid.UUID) (uuid.UUID, error) {
	if sub := auth.UserIDFromContext(c.Request().Context()); sub != "" {
		if id, err := uuid.Parse(sub); err == nil {
			return id, nil
		}
	}
	if bodyID == uuid.Nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "acting user could not be determined")
	}
	return bodyID, nil
}

func (h *Handler) Submit(c echo.Context) error {
	var req submitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	actorID, err := actingUserID(c, req.RequestingUserID)
	if err != nil {
		return err
	}
	dr, err := h.svc.Submit(c.Request().Context(), actorID, req.PatientExternalID, req.DataType, req.Purpose)
	if err != nil {
		if errors.Is(err, identity.ErrPatientNotFound) || errors.Is(err, identity.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, dr)
}

type approveRequest struct {
	ApproverID uuid.UUID `json:"approver_id"`
	IsApproved bool      `json:"is_approved"`
	Reason     string    `json:"reason,omitempty"`
}

func (h *Handler) Approve(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req approveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	approverID, err := actingUserID(c, req.ApproverID)
	if err != nil {
		return err
	}
	dr, err := h.svc.Approve(c.Request().Context(), id, approverID, req.IsApproved, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "data request not found")
		case errors.Is(err, ErrNotPending):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrNotApprover), errors.Is(err, identity.ErrUserNotFound):
			return echo.NewHTTPError(http.StatusForbidden, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, dr)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	dr, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "data request not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, dr)
}

func (h *Handler) List(c echo.Context) error {
	pg := pagination.FromContext(c)
	ctx := c.Request().Context()

	if hid := c.QueryParam("hospital_id"); hid != "" {
		role := auth.RoleFromContext(ctx)
		if role != auth.RoleSystemManager && role != auth.RoleHospitalManager {
			return echo.NewHTTPError(http.StatusForbidden, "hospital listing requires a manager role")
		}
		hospitalID, err := uuid.Parse(hid)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid hospital_id")
		}
		items, total, err := h.svc.ListByHospital(ctx, hospitalID, pg.Limit, pg.Offset)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
	}

	userID, err := uuid.Parse(c.QueryParam("user_id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id query param is required")
	}
	items, total, err := h.svc.GetHistory(ctx, userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
