// Package mailer delivers digest emails over SMTP. Delivery retries with a
// doubling backoff starting at 10s and gives up once the next wait would
// pass 2600s (a bit over 40 minutes of trying).
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mediamail/internal/config"

	"github.com/wneessen/go-mail"
)

const (
	firstBackoff = 10 * time.Second
	maxBackoff   = 2600 * time.Second
)

type Mailer struct {
	cfg config.EmailConfig
}

func New(cfg config.EmailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// Send delivers one message to the configured user address.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if m.cfg.SMTPHost == "" {
		return fmt.Errorf("no SMTP host configured")
	}
	if m.cfg.SenderAddress == "" || m.cfg.UserAddress == "" {
		return fmt.Errorf("sender and user addresses must be configured")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.SenderAddress); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(m.cfg.UserAddress); err != nil {
		return fmt.Errorf("invalid user address: %w", err)
	}
	msg.Subject(subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.SMTPUsername != "" && m.cfg.SMTPPassword != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.SMTPUsername),
			mail.WithPassword(m.cfg.SMTPPassword),
		)
	}
	client, err := mail.NewClient(m.cfg.SMTPHost, opts...)
	if err != nil {
		return err
	}

	backoff := firstBackoff
	for {
		err := client.DialAndSendWithContext(ctx, msg)
		if err == nil {
			slog.Debug("digest email sent", "to", m.cfg.UserAddress)
			return nil
		}
		if backoff > maxBackoff {
			return fmt.Errorf("giving up after repeated delivery failures: %w", err)
		}
		slog.Error("failed to send message, retrying", "error", err, "retry_in", backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
}
