package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/core/ports"
)

// DashboardHandler serves the aggregate stats view.
type DashboardHandler struct {
	dashboardService ports.DashboardService
}

func NewDashboardHandler(dashboardService ports.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Stats handles GET /api/dashboard/stats.
func (h *DashboardHandler) Stats(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	stats, err := h.dashboardService.Stats(c.Request().Context(), p)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, stats)
}
