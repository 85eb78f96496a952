// Package mail implements the outbound email port on SMTP via gomail.
package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/leadstack/crm-api/internal/core/domain"
)

// Sender sends plain-text notification emails over SMTP. When no host is
// configured the sender is disabled: sends are skipped with a debug log so
// local setups work without a mail server.
type Sender struct {
	dialer *gomail.Dialer
	from   string
	log    zerolog.Logger
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewSender(cfg Config, log zerolog.Logger) *Sender {
	s := &Sender{from: cfg.From, log: log}
	if cfg.Host != "" {
		s.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return s
}

// send delivers one message, honouring ctx cancellation. gomail dials
// synchronously, so the send runs in a goroutine and the deadline is
// enforced here.
func (s *Sender) send(ctx context.Context, to, subject, body string) error {
	if s.dialer == nil {
		s.log.Debug().Str("recipient", to).Str("subject", subject).
			Msg("smtp not configured, skipping email")
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() { done <- s.dialer.DialAndSend(m) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("smtp send: %w", ctx.Err())
	}
}

func (s *Sender) SendLeadAssigned(ctx context.Context, recipient, leadTitle string, leadID int64) error {
	subject := fmt.Sprintf("New Lead Assigned: %s", leadTitle)
	body := fmt.Sprintf(
		"Hello,\n\nA new lead has been assigned to you:\n- Title: %s\n- Lead ID: %d\n\nPlease review and take necessary action.\n\nBest regards,\nCRM System",
		leadTitle, leadID)
	return s.send(ctx, recipient, subject, body)
}

func (s *Sender) SendStatusChanged(ctx context.Context, recipient, leadTitle string, from, to domain.LeadStatus) error {
	subject := fmt.Sprintf("Lead Status Updated: %s", leadTitle)
	body := fmt.Sprintf(
		"Hello,\n\nThe status of lead %q has been updated:\n- Previous Status: %s\n- New Status: %s\n\nBest regards,\nCRM System",
		leadTitle, from, to)
	return s.send(ctx, recipient, subject, body)
}

func (s *Sender) SendActivityAdded(ctx context.Context, recipient, leadTitle string, activityType domain.ActivityType, note string) error {
	subject := fmt.Sprintf("New Activity on Lead: %s", leadTitle)
	body := fmt.Sprintf(
		"Hello,\n\nA new %s activity has been added to lead %q.\n\nNote: %s\n\nBest regards,\nCRM System",
		activityType, leadTitle, note)
	return s.send(ctx, recipient, subject, body)
}
