package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// RBAC restricts a route to the given roles. Must run after Auth.
func RBAC(allowed ...domain.Role) echo.MiddlewareFunc {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			roleVal, ok := c.Get(CtxRole).(string)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			if _, ok := allowedSet[domain.Role(roleVal)]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "access forbidden")
			}
			return next(c)
		}
	}
}
