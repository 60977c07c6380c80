package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type DriverHandler struct {
	Service  *service.DriverService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewDriverHandler(svc *service.DriverService, validate *validator.Validate, logger logrus.FieldLogger) *DriverHandler {
	return &DriverHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *DriverHandler) List(c echo.Context) error {
	drivers, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewDriverResponses(drivers))
}

func (h *DriverHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	driver, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewDriverResponse(*driver))
}

func (h *DriverHandler) Create(c echo.Context) error {
	var req dto.CreateDriverRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	driver, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Driver created successfully", dto.NewDriverResponse(*driver))
}

func (h *DriverHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	var req dto.UpdateDriverRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	driver, err := h.Service.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Driver updated successfully", dto.NewDriverResponse(*driver))
}

func (h *DriverHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	if err := h.Service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Driver deleted successfully", nil)
}

func (h *DriverHandler) LoginHistory(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	entries, err := h.Service.LoginHistory(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewLoginHistoryResponses(entries))
}
