package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/api/middleware"
	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/policy"
)

// ctxPrincipal extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: both user id and role
// must be present, their presence proves the middleware ran.
func ctxPrincipal(c echo.Context) (policy.Principal, error) {
	userID, ok := c.Get(middleware.CtxUserID).(int64)
	if !ok || userID == 0 {
		return policy.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	role, _ := c.Get(middleware.CtxRole).(string)
	if role == "" {
		return policy.Principal{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	return policy.Principal{UserID: userID, Role: domain.Role(role)}, nil
}

// pathID parses the numeric :id path parameter.
func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}
