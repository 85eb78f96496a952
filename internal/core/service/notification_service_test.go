package service

import (
	"context"
	"errors"
	"testing"

	"github.com/leadstack/crm-api/internal/core/domain"
)

func TestNotifications_ListFiltersByReadState(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, discardLogger)
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Notification{UserID: 7, Title: "a"})
	_ = repo.Create(ctx, &domain.Notification{UserID: 7, Title: "b"})
	_ = repo.Create(ctx, &domain.Notification{UserID: 8, Title: "c"})
	repo.items[0].Read = true

	all, err := svc.List(ctx, 7, nil)
	if err != nil || len(all) != 2 {
		t.Fatalf("expected 2 notifications for user 7, got %d, %v", len(all), err)
	}

	unread := false
	got, err := svc.List(ctx, 7, &unread)
	if err != nil || len(got) != 1 || got[0].Title != "b" {
		t.Fatalf("expected only the unread notification, got %+v, %v", got, err)
	}
}

func TestMarkRead_OtherUsersNotificationReportsNotFound(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, discardLogger)
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Notification{UserID: 8, Title: "theirs"})

	err := svc.MarkRead(ctx, 1, 7)
	if !errors.Is(err, domain.ErrNotificationNotFound) {
		t.Fatalf("foreign notification must report not found, got %v", err)
	}
	if repo.items[0].Read {
		t.Fatalf("foreign notification must stay unread")
	}
}

func TestMarkRead_OwnNotification(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, discardLogger)
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Notification{UserID: 7, Title: "mine"})

	if err := svc.MarkRead(ctx, 1, 7); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !repo.items[0].Read {
		t.Fatalf("notification should be read")
	}
}

func TestMarkAllRead_Idempotent(t *testing.T) {
	repo := &stubNotificationRepo{}
	svc := NewNotificationService(repo, discardLogger)
	ctx := context.Background()

	_ = repo.Create(ctx, &domain.Notification{UserID: 7})
	_ = repo.Create(ctx, &domain.Notification{UserID: 7})

	if err := svc.MarkAllRead(ctx, 7); err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	// Second call with nothing unread is a no-op, not an error.
	if err := svc.MarkAllRead(ctx, 7); err != nil {
		t.Fatalf("idempotent call failed: %v", err)
	}
	for _, n := range repo.items {
		if !n.Read {
			t.Fatalf("all notifications should be read")
		}
	}
}
