package middleware

import (
	"errors"
	"net/http"
	"strings"

	"occupancy/internal/service"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type AuthMiddleware struct {
	Auth   service.Authenticator
	Logger logrus.FieldLogger
}

// RequireAuth resolves the bearer token to an identity and rejects the
// request when the token is missing, invalid or revoked.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.Auth == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidToken.Message)
		}
		token, ok := extractBearerToken(c.Request())
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
		}
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "Token error")
		}
		identity, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrTokenRevoked):
				return echo.NewHTTPError(http.StatusUnauthorized, service.ErrTokenRevoked.Message)
			case service.KindOf(err) == service.KindUnauthorized:
				return echo.NewHTTPError(http.StatusUnauthorized, service.ErrInvalidToken.Message)
			}
			if m.Logger != nil {
				m.Logger.WithError(err).Error("authentication lookup failed")
			}
			return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
		}
		SetAuthContext(c, identity, token)
		return next(c)
	}
}

// extractBearerToken reports false when there is no Authorization header at
// all, and an empty token when the header is malformed.
func extractBearerToken(r *http.Request) (string, bool) {
	authorization := r.Header.Get(echo.HeaderAuthorization)
	if authorization == "" {
		return "", false
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return "", true
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", true
	}
	return strings.TrimSpace(parts[1]), true
}
