package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/hibiken/asynq"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends mail through a plain SMTP relay such as the local Mailpit
// instance used in development.
type SMTPMailer struct {
	Addr string
	From string
}

// Send delivers one message.
func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.From, to, subject, body)
	if err := smtp.SendMail(m.Addr, nil, m.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

// NewSendEmailHandler processes TaskTypeSendEmail tasks.
func NewSendEmailHandler(logger *slog.Logger, mailer Mailer) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload SendEmailPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		if err := mailer.Send(payload.To, payload.Subject, payload.Body); err != nil {
			logger.Warn("send email failed", slog.String("to", payload.To), slog.Any("error", err))
			return err
		}
		logger.Info("email sent", slog.String("to", payload.To), slog.String("subject", payload.Subject))
		return nil
	}
}
