package middleware

import (
	"occupancy/internal/service"

	"github.com/labstack/echo/v4"
)

const (
	contextIdentityKey = "auth_identity"
	contextTokenKey    = "auth_token"
)

func SetAuthContext(c echo.Context, identity *service.Identity, token string) {
	c.Set(contextIdentityKey, identity)
	c.Set(contextTokenKey, token)
}

func IdentityFromContext(c echo.Context) (*service.Identity, bool) {
	identity, ok := c.Get(contextIdentityKey).(*service.Identity)
	return identity, ok && identity != nil
}

func TokenFromContext(c echo.Context) (string, bool) {
	token, ok := c.Get(contextTokenKey).(string)
	return token, ok && token != ""
}
