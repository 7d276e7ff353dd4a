package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/mailersend/mailersend-go"

	"github.com/InternLink/portal-service/internal/config"
	"github.com/InternLink/portal-service/internal/util/logger"
)

// Mailer is the email delivery channel, backed by MailerSend.
type Mailer struct {
	client *mailersend.Mailersend
	from   mailersend.From
}

func NewMailer(cfg config.EmailConfig) (*Mailer, error) {
	if cfg.APIKey == "" || cfg.FromEmail == "" {
		return nil, errors.New("mailer requires api_key and from_email")
	}
	return &Mailer{
		client: mailersend.NewMailersend(cfg.APIKey),
		from:   mailersend.From{Name: cfg.FromName, Email: cfg.FromEmail},
	}, nil
}

// SimulatedEmail logs the message instead of sending it, the email
// counterpart of SimulatedSMS.
type SimulatedEmail struct{}

func (SimulatedEmail) SendEmail(ctx context.Context, to, subject, message string) error {
	logger.Infof("Email simulation to=%s subject=%q body=%q", maskContact(to), subject, message)
	return nil
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, message string) error {
	msg := m.client.Email.NewMessage()
	msg.SetFrom(m.from)
	msg.SetRecipients([]mailersend.Recipient{{Email: to}})
	msg.SetSubject(subject)
	msg.SetText(message)

	res, err := m.client.Email.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("mailersend: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("mailersend: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}
