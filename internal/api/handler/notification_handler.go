package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/leadstack/crm-api/internal/core/ports"
)

// NotificationHandler exposes the per-user notification inbox.
type NotificationHandler struct {
	notificationService ports.NotificationService
}

func NewNotificationHandler(notificationService ports.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// List handles GET /api/notifications with an optional read filter.
func (h *NotificationHandler) List(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var read *bool
	if v := c.QueryParam("read"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid read filter")
		}
		read = &b
	}

	notifications, err := h.notificationService.List(c.Request().Context(), p.UserID, read)
	if err != nil {
		return err
	}

	return respond(c, http.StatusOK, notifications)
}

// MarkRead handles PUT /api/notifications/:id/read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c)
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkRead(c.Request().Context(), id, p.UserID); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "notification marked as read"})
}

// MarkAllRead handles PUT /api/notifications/read-all.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.notificationService.MarkAllRead(c.Request().Context(), p.UserID); err != nil {
		return err
	}

	return respond(c, http.StatusOK, map[string]string{"message": "all notifications marked as read"})
}
