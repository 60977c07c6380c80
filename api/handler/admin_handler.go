package handler

import (
	"net/http"

	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	Service  *service.AdminService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewAdminHandler(svc *service.AdminService, validate *validator.Validate, logger logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *AdminHandler) List(c echo.Context) error {
	admins, err := h.Service.List(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewAdminResponses(admins))
}

func (h *AdminHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	admin, err := h.Service.Get(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "", dto.NewAdminResponse(*admin))
}

func (h *AdminHandler) Create(c echo.Context) error {
	var req dto.CreateAdminRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	admin, err := h.Service.Create(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusCreated, "Admin created successfully", dto.NewAdminResponse(*admin))
}

func (h *AdminHandler) Update(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	var req dto.UpdateAdminRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	admin, err := h.Service.Update(c.Request().Context(), id, req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Admin updated successfully", dto.NewAdminResponse(*admin))
}

func (h *AdminHandler) Delete(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return writeInvalidID(c)
	}
	if err := h.Service.Delete(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Admin deleted successfully", nil)
}
