package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/leadstack/crm-api/internal/api/metrics"
	"github.com/leadstack/crm-api/internal/core/ports"
)

func TestNotify_PersistsAndPushesOnUserTopic(t *testing.T) {
	repo := &stubNotificationRepo{}
	bus := &stubBus{}
	n := NewNotifier(repo, bus, &stubMailer{}, time.Second, discardLogger)

	n.Notify(context.Background(), 7, "New Lead Assigned", "you got one")

	if len(repo.items) != 1 || repo.items[0].UserID != 7 || repo.items[0].Read {
		t.Fatalf("expected one unread notification for user 7, got %+v", repo.items)
	}
	if len(bus.published) != 1 {
		t.Fatalf("expected one bus event, got %d", len(bus.published))
	}
	if bus.published[0].Topic != ports.TopicUser(7) || bus.published[0].Name != ports.EventNotification {
		t.Fatalf("unexpected event: %+v", bus.published[0])
	}
}

func TestNotify_CountsCreatedNotifications(t *testing.T) {
	n := NewNotifier(&stubNotificationRepo{}, &stubBus{}, &stubMailer{}, time.Second, discardLogger)

	before := testutil.ToFloat64(metrics.NotificationsCreatedTotal)
	n.Notify(context.Background(), 7, "t", "m")

	if got := testutil.ToFloat64(metrics.NotificationsCreatedTotal) - before; got != 1 {
		t.Fatalf("expected counter to increase by 1, got %v", got)
	}
}

func TestNotify_PersistFailureSkipsPush(t *testing.T) {
	repo := &stubNotificationRepo{createErr: errors.New("db down")}
	bus := &stubBus{}
	n := NewNotifier(repo, bus, &stubMailer{}, time.Second, discardLogger)

	before := testutil.ToFloat64(metrics.NotificationsCreatedTotal)
	n.Notify(context.Background(), 7, "t", "m")

	if len(bus.published) != 0 {
		t.Fatalf("a notification that was never stored must not be pushed")
	}
	if got := testutil.ToFloat64(metrics.NotificationsCreatedTotal); got != before {
		t.Fatalf("failed persist must not be counted")
	}
}

func TestEmail_TimeoutBoundsTheSend(t *testing.T) {
	n := NewNotifier(&stubNotificationRepo{}, &stubBus{}, &stubMailer{}, 10*time.Millisecond, discardLogger)

	var sawDeadline bool
	n.Email(context.Background(), "a@b.c", func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		sawDeadline = ok && time.Until(deadline) <= 10*time.Millisecond
		return nil
	})
	if !sawDeadline {
		t.Fatalf("send callback should run under the configured deadline")
	}
}

func TestEmail_EmptyRecipientIsNoop(t *testing.T) {
	n := NewNotifier(&stubNotificationRepo{}, &stubBus{}, &stubMailer{}, time.Second, discardLogger)

	called := false
	n.Email(context.Background(), "", func(context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("no recipient, no send")
	}
}
