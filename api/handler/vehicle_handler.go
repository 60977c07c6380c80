package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type VehicleHandler struct {
	Service  *service.VehicleService
	Sessions *service.SessionService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewVehicleHandler(
	svc *service.VehicleService,
	sessions *service.SessionService,
	validate *validator.Validate,
	logger logrus.FieldLogger,
) *VehicleHandler {
	return &VehicleHandler{Service: svc, Sessions: sessions, Validate: validate, Logger: logger}
}

func (h *VehicleHandler) List(c echo.Context) error {
	vehicles, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewVehicleResponses(vehicles))
}

func (h *VehicleHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	vehicle, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewVehicleResponse(*vehicle))
}

func (h *VehicleHandler) Create(c echo.Context) error {
	var req dto.CreateVehicleRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	vehicle, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Mobil created successfully", dto.NewVehicleResponse(*vehicle))
}

func (h *VehicleHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	var req dto.UpdateVehicleRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	vehicle, err := h.Service.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Mobil updated successfully", dto.NewVehicleResponse(*vehicle))
}

func (h *VehicleHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	if err := h.Service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Mobil deleted successfully", nil)
}

func (h *VehicleHandler) SessionHistory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	sessions, err := h.Sessions.ListByVehicle(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewSessionResponses(sessions))
}
