package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SessionHandler struct {
	Service  *service.SessionService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewSessionHandler(svc *service.SessionService, validate *validator.Validate, logger logrus.FieldLogger) *SessionHandler {
	return &SessionHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *SessionHandler) Start(c echo.Context) error {
	var req dto.StartSessionRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	session, err := h.Service.StartSession(c.Request().Context(), req.DriverID, req.MobilID)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Session started successfully", dto.NewSessionResponse(*session))
}

func (h *SessionHandler) End(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	session, err := h.Service.EndSession(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Session ended successfully", dto.NewSessionResponse(*session))
}

func (h *SessionHandler) Active(c echo.Context) error {
	sessions, err := h.Service.ListActive(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewSessionResponses(sessions))
}

func (h *SessionHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	session, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewSessionResponse(*session))
}

func (h *SessionHandler) ByDriver(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	sessions, err := h.Service.ListByDriver(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewSessionResponses(sessions))
}

func (h *SessionHandler) ByDateRange(c echo.Context) error {
	query := dto.DateRangeQuery{
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
	}
	sessions, err := h.Service.ListByDateRange(c.Request().Context(), query.StartDate, query.EndDate)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewSessionResponses(sessions))
}

func (h *SessionHandler) Occupancy(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	occ, err := h.Service.Occupancy(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.OccupancyResponse{
		SessionID:      occ.Session.ID,
		MobilID:        occ.Session.VehicleID,
		Status:         string(occ.Session.Status),
		Capacity:       occ.Capacity,
		PassengerCount: occ.Session.PassengerCount,
		Remaining:      occ.Remaining,
	})
}
