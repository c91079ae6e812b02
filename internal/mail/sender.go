package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/phrazzld/roadmap-api/internal/config"
	"github.com/phrazzld/roadmap-api/internal/redact"
)

// ErrSendFailed wraps any failure to build or deliver a message.
var ErrSendFailed = errors.New("failed to send email")

// Dialer delivers prepared messages. *gomail.Client satisfies it.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*gomail.Msg) error
}

// Sender sends HTML email from a fixed account.
type Sender struct {
	dialer   Dialer
	from     string
	fromName string
	logger   *slog.Logger
}

// NewSender creates an SMTP sender from cfg. The connection uses implicit
// TLS and PLAIN authentication with the configured account.
func NewSender(cfg config.MailConfig, logger *slog.Logger) (*Sender, error) {
	client, err := gomail.NewClient(cfg.Host,
		gomail.WithPort(cfg.Port),
		gomail.WithSSL(),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
		gomail.WithTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}
	return NewSenderWithDialer(client, cfg.Username, cfg.FromName, logger), nil
}

// NewSenderWithDialer builds a Sender around an existing dialer.
func NewSenderWithDialer(d Dialer, from, fromName string, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sender{
		dialer:   d,
		from:     from,
		fromName: fromName,
		logger:   logger.With(slog.String("component", "mail_sender")),
	}
}

// Send delivers an HTML message to a single recipient.
func (s *Sender) Send(ctx context.Context, to, subject, html string) error {
	msg, err := s.message(to, subject, html)
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "sending email",
		slog.String("recipient", redact.Email(to)),
		slog.Int("body_length", len(html)))

	if err := s.dialer.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "email delivery failed",
			slog.String("recipient", redact.Email(to)),
			slog.String("error", redact.String(err.Error())))
		return fmt.Errorf("%w: %v", ErrSendFailed, err)
	}

	s.logger.InfoContext(ctx, "email sent", slog.String("recipient", redact.Email(to)))
	return nil
}

func (s *Sender) message(to, subject, html string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.from); err != nil {
		return nil, fmt.Errorf("%w: invalid sender address: %v", ErrSendFailed, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("%w: invalid recipient address: %v", ErrSendFailed, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()
	msg.SetBodyString(gomail.TypeTextHTML, html)
	return msg, nil
}
