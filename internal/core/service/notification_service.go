package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/ports"
)

// NotificationService manages a user's notification inbox. Every read and
// write is scoped by the authenticated user id, so one user can never touch
// another's notifications.
type NotificationService struct {
	repo ports.NotificationRepository
	log  zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, log: log}
}

// List returns the user's notifications, most recent first, optionally
// filtered by read state.
func (s *NotificationService) List(ctx context.Context, userID int64, read *bool) ([]*domain.Notification, error) {
	notifications, err := s.repo.List(ctx, userID, read)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return notifications, nil
}

// MarkRead flips the read flag on one notification. A notification that does
// not exist or belongs to another user is reported as not found, never as a
// silent success.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID int64) error {
	updated, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if updated == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flips the read flag on all of the user's unread notifications.
// Calling it with nothing unread is a no-op.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("mark all notifications read: %w", err)
	}
	return nil
}
