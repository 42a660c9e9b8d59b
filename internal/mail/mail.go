// Package mail delivers notification e-mails.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/erazemk/izposoja/internal/model"
)

// ErrNotConfigured is returned when no SMTP server or sender address is set.
var ErrNotConfigured = errors.New("mail sending is not configured")

// ErrDryRun is returned by LogSender. The message was not delivered.
var ErrDryRun = errors.New("mail not delivered: dry run")

// Identity is the outgoing mail account.
type Identity struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
}

// IdentityFrom builds an Identity from the stored notification settings.
func IdentityFrom(s model.NotificationSettings) Identity {
	return Identity{
		Server:   s.SMTPServer,
		Port:     s.SMTPPort,
		Username: s.SMTPUsername,
		Password: s.SMTPPassword,
		From:     s.SenderEmail,
	}
}

// Sender sends one plain-text message.
type Sender interface {
	Send(ctx context.Context, from Identity, to, subject, body string) error
}

// SMTPSender sends messages over SMTP with mandatory STARTTLS.
type SMTPSender struct {
	Timeout time.Duration
}

// Send delivers the message through the identity's SMTP server.
func (s *SMTPSender) Send(ctx context.Context, from Identity, to, subject, body string) error {
	if from.Server == "" || from.From == "" {
		return ErrNotConfigured
	}

	msg, err := newMessage(from.From, to, subject, body)
	if err != nil {
		return err
	}

	client, err := gomail.NewClient(from.Server, s.clientOptions(from)...)
	if err != nil {
		return fmt.Errorf("creating smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

func (s *SMTPSender) clientOptions(from Identity) []gomail.Option {
	opts := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSMandatory),
	}
	if from.Port > 0 {
		opts = append(opts, gomail.WithPort(from.Port))
	}
	if s.Timeout > 0 {
		opts = append(opts, gomail.WithTimeout(s.Timeout))
	}
	if from.Username != "" && from.Password != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(from.Username),
			gomail.WithPassword(from.Password),
		)
	}
	return opts
}

func newMessage(from, to, subject, body string) (*gomail.Msg, error) {
	msg := gomail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address %q: %w", from, err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient address %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetBodyString(gomail.TypeTextPlain, body)
	return msg, nil
}

// LogSender logs messages instead of sending them. Send always returns
// ErrDryRun so callers never treat the message as delivered.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(_ context.Context, from Identity, to, subject, body string) error {
	slog.Info("mail not sent (dry run)", "from", from.From, "to", to, "subject", subject, "bytes", len(body))
	return ErrDryRun
}
