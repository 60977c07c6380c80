package handler

import (
	"net/http"

	"occupancy/api/middleware"
	"occupancy/internal/dto"
	"occupancy/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	Service  *service.AuthService
	Validate *validator.Validate
	Logger   logrus.FieldLogger
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Service: svc, Validate: validate, Logger: logger}
}

func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	resp, err := h.Service.AdminLogin(c.Request().Context(), req)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) DriverLogin(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindJSON(c, h.Validate, &req); err != nil {
		return writeBadRequest(c, err)
	}
	client := dto.ClientInfo{
		IPAddress: stringPtr(c.RealIP()),
		UserAgent: stringPtr(c.Request().UserAgent()),
	}
	resp, err := h.Service.DriverLogin(c.Request().Context(), req, client)
	if err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Login successful", resp)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	identity, ok := middleware.IdentityFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, service.KindUnauthorized, "No token provided")
	}
	token, ok := middleware.TokenFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, service.KindUnauthorized, "No token provided")
	}
	if err := h.Service.Logout(c.Request().Context(), token, *identity); err != nil {
		return writeServiceError(c, h.Logger, err)
	}
	return success(c, http.StatusOK, "Logout successful", nil)
}
