package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type HealthHandler struct {
	Name    string
	Version string
}

func (h HealthHandler) Index(c echo.Context) error {
	return success(c, http.StatusOK, h.Name+" is running", map[string]string{
		"name":    h.Name,
		"version": h.Version,
	})
}
