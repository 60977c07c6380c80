package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type DeviceHandler struct {
	Service  *service.DeviceService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewDeviceHandler(svc *service.DeviceService, validate *validator.Validate, logger logrus.FieldLogger) *DeviceHandler {
	return &DeviceHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *DeviceHandler) List(c echo.Context) error {
	devices, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewDeviceResponses(devices))
}

func (h *DeviceHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	device, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewDeviceResponse(*device))
}

func (h *DeviceHandler) Create(c echo.Context) error {
	var req dto.CreateDeviceRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	device, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Device created successfully", dto.NewDeviceResponse(*device))
}

func (h *DeviceHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	var req dto.UpdateDeviceRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	device, err := h.Service.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Device updated successfully", dto.NewDeviceResponse(*device))
}

func (h *DeviceHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	if err := h.Service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Device deleted successfully", nil)
}

func (h *DeviceHandler) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	var req dto.UpdateDeviceStatusRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	device, err := h.Service.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Device status updated successfully", dto.NewDeviceResponse(*device))
}
