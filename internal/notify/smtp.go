// Package notify provides the outbound notification sinks used by the duty
// assignment engine. Delivery is best effort; callers retry through the jobs
// dispatcher.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/escola-admin/escola-api/internal/models"
	"github.com/escola-admin/escola-api/pkg/config"
)

type staffEmailLookup interface {
	FindByID(ctx context.Context, id string) (*models.StaffMember, error)
}

// SMTPSink delivers assignment notifications by email.
type SMTPSink struct {
	client      *mail.Client
	staff       staffEmailLookup
	from        string
	coordinator string
	logger      *zap.Logger
}

// NewSMTPSink builds an SMTP-backed sink from the notifications config.
func NewSMTPSink(cfg config.NotificationsConfig, staff staffEmailLookup, logger *zap.Logger) (*SMTPSink, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create mail client: %w", err)
	}
	return &SMTPSink{
		client:      client,
		staff:       staff,
		from:        cfg.From,
		coordinator: cfg.CoordinatorEmail,
		logger:      logger,
	}, nil
}

// Notify emails the staff member identified by staffID.
func (s *SMTPSink) Notify(ctx context.Context, staffID, message string) error {
	member, err := s.staff.FindByID(ctx, staffID)
	if err != nil {
		return fmt.Errorf("resolve staff email: %w", err)
	}
	return s.send(ctx, member.Email, "Duty assignment", message)
}

// NotifyCoordinator emails the duty coordinator mailbox.
func (s *SMTPSink) NotifyCoordinator(ctx context.Context, message string) error {
	return s.send(ctx, s.coordinator, "Duty coverage summary", message)
}

func (s *SMTPSink) send(ctx context.Context, to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Warn("mail delivery failed", zap.String("to", to), zap.Error(err))
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
