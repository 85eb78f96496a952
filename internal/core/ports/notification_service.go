package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// NotificationService manages a user's notification inbox. Every operation
// is scoped to the authenticated user id taken from the request context.
type NotificationService interface {
	List(ctx context.Context, userID int64, read *bool) ([]*domain.Notification, error)

	// MarkRead returns domain.ErrNotificationNotFound when the notification
	// does not exist or belongs to another user.
	MarkRead(ctx context.Context, id, userID int64) error

	MarkAllRead(ctx context.Context, userID int64) error
}
