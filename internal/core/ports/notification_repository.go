package ports

import (
	"context"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// NotificationRepository defines persistence operations for the per-user
// notification inbox. Ownership is enforced by filtering on userID in every
// read and write, never by trusting a caller-supplied record.
type NotificationRepository interface {
	// Create inserts an unread notification, filling ID and timestamp.
	Create(ctx context.Context, n *domain.Notification) error

	// List returns the user's notifications, most recent first. A non-nil
	// read filters by read state.
	List(ctx context.Context, userID int64, read *bool) ([]*domain.Notification, error)

	// MarkRead flips the read flag on the notification if it belongs to
	// userID, returning the number of rows updated (0 when absent or owned
	// by someone else).
	MarkRead(ctx context.Context, id, userID int64) (int64, error)

	// MarkAllRead flips the read flag on every unread notification of
	// userID. Idempotent.
	MarkAllRead(ctx context.Context, userID int64) error
}
