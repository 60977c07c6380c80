package middleware

import (
	"net/http"
	"strings"

	"occupancy/internal/entity"

	"github.com/labstack/echo/v4"
)

// RequireRole must run after RequireAuth.
func RequireRole(roles ...entity.Role) echo.MiddlewareFunc {
	message := deniedMessage(roles)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := IdentityFromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "No token provided")
			}
			for _, role := range roles {
				if identity.Role == role {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, message)
		}
	}
}

func deniedMessage(roles []entity.Role) string {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		name := string(role)
		if name != "" {
			name = strings.ToUpper(name[:1]) + name[1:]
		}
		names = append(names, name)
	}
	return "Access denied. " + strings.Join(names, " or ") + " role required"
}
