package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/cinema-booking/internal/model"
)

const principalKey = "principal"

// SetPrincipal stores the authenticated caller on the request context.
func SetPrincipal(c echo.Context, p model.Principal) { c.Set(principalKey, p) }

// PrincipalFrom returns the caller stored by JWTAuth.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(principalKey).(model.Principal)
	return p, ok && p.ID != ""
}

// callerID is used in limiter and cache keys; anonymous requests share "guest".
func callerID(c echo.Context) string {
	if p, ok := PrincipalFrom(c); ok {
		return p.ID
	}
	return "guest"
}
