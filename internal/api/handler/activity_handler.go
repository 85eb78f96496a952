package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/core/ports"
)

// ActivityHandler exposes the activity log over HTTP.
type ActivityHandler struct {
	activityService ports.ActivityService
}

func NewActivityHandler(activityService ports.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

type addActivityRequest struct {
	LeadID int64          `json:"leadId" validate:"required"`
	Type   string         `json:"type" validate:"required,oneof=NOTE CALL MEETING EMAIL STATUS_CHANGE"`
	Note   string         `json:"note"`
	Meta   map[string]any `json:"meta"`
}

// Add handles POST /api/activities.
func (h *ActivityHandler) Add(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req addActivityRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	activity, err := h.activityService.Add(c.Request().Context(), p, ports.AddActivityInput{
		LeadID: req.LeadID,
		Type:   req.Type,
		Note:   req.Note,
		Meta:   req.Meta,
	})
	if err != nil {
		return err
	}

	return respond(c, http.StatusCreated, activity)
}

// List handles GET /api/activities with an optional leadId filter.
func (h *ActivityHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var leadID *int64
	if v := c.QueryParam("leadId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid leadId")
		}
		leadID = &id
	}

	activities, err := h.activityService.List(c.Request().Context(), p, leadID)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, activities)
}

// Get handles GET /api/activities/:id.
func (h *ActivityHandler) Get(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	activity, err := h.activityService.Get(c.Request().Context(), p, id)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, activity)
}
