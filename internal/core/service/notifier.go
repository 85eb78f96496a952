package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/leadstack/crm-api/internal/api/metrics"
	"github.com/leadstack/crm-api/internal/core/domain"
	"github.com/leadstack/crm-api/internal/core/ports"
)

const defaultMailTimeout = 5 * time.Second

// Notifier bundles the best-effort side channels of the workflow engine:
// the notification inbox, the event bus, and outbound email. Every method
// logs failures and returns nothing: a failing side channel must never roll
// back or block the primary mutation it follows.
type Notifier struct {
	notifications ports.NotificationRepository
	bus           ports.EventBus
	mailer        ports.Mailer
	mailTimeout   time.Duration
	log           zerolog.Logger
}

// NewNotifier creates a Notifier. mailTimeout bounds each outbound mail
// attempt; exceeding it is treated as a send failure, not a fatal error.
func NewNotifier(
	notifications ports.NotificationRepository,
	bus ports.EventBus,
	mailer ports.Mailer,
	mailTimeout time.Duration,
	log zerolog.Logger,
) *Notifier {
	if mailTimeout <= 0 {
		mailTimeout = defaultMailTimeout
	}
	return &Notifier{
		notifications: notifications,
		bus:           bus,
		mailer:        mailer,
		mailTimeout:   mailTimeout,
		log:           log,
	}
}

// Notify persists an inbox notification for userID and pushes it on the
// user's private topic.
func (n *Notifier) Notify(ctx context.Context, userID int64, title, message string) {
	notification := &domain.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    "info",
	}
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.log.Warn().Err(err).Int64("user_id", userID).Str("title", title).
			Msg("failed to persist notification")
		return
	}
	metrics.NotificationsCreatedTotal.Inc()
	n.Publish(ctx, ports.TopicUser(userID), ports.EventNotification, notification)
}

// Publish pushes an event to the bus, logging delivery failures.
func (n *Notifier) Publish(ctx context.Context, topic, name string, payload any) {
	if err := n.bus.Publish(ctx, topic, name, payload); err != nil {
		n.log.Warn().Err(err).Str("topic", topic).Str("event", name).
			Msg("failed to publish event")
		return
	}
	metrics.EventsPublishedTotal.WithLabelValues(topicKind(topic)).Inc()
}

func topicKind(topic string) string {
	switch {
	case strings.HasPrefix(topic, "user:"):
		return "user"
	case strings.HasPrefix(topic, "lead:"):
		return "lead"
	default:
		return "global"
	}
}

// Email runs one outbound mail attempt under the configured timeout. send is
// given the bounded context and its error, if any, is logged and swallowed.
func (n *Notifier) Email(ctx context.Context, recipient string, send func(ctx context.Context) error) {
	if recipient == "" {
		return
	}
	mailCtx, cancel := context.WithTimeout(ctx, n.mailTimeout)
	defer cancel()

	if err := send(mailCtx); err != nil {
		metrics.EmailAttemptsTotal.WithLabelValues("failed").Inc()
		n.log.Warn().Err(err).Str("recipient", recipient).Msg("failed to send email")
		return
	}
	metrics.EmailAttemptsTotal.WithLabelValues("sent").Inc()
}

// Mailer exposes the wrapped mailer for composing send callbacks.
func (n *Notifier) Mailer() ports.Mailer {
	return n.mailer
}
