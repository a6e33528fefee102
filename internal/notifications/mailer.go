// Package notifications delivers best-effort email notifications.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"inkwell/internal/config"
	"inkwell/internal/middleware"
)

// Mailer sends a single email message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) error
}

// NewMailer returns an SMTP mailer when SMTP_HOST is configured, otherwise a
// log-only mailer so development environments never need a mail server.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SMTPHost == "" {
		return &logMailer{}
	}
	return &smtpMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.SMTPFrom,
	}
}

type smtpMailer struct {
	addr string
	from string
}

func (m *smtpMailer) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}

	var msg strings.Builder
	msg.WriteString("From: " + m.from + "\r\n")
	msg.WriteString("To: " + strings.Join(to, ", ") + "\r\n")
	msg.WriteString("Subject: " + subject + "\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return smtp.SendMail(m.addr, nil, m.from, to, []byte(msg.String()))
}

// logMailer writes mail to the log instead of the network.
type logMailer struct{}

func (m *logMailer) Send(ctx context.Context, to []string, subject, body string) error {
	middleware.Logger.InfoContext(ctx, "mail (log only)",
		slog.String("to", strings.Join(to, ", ")),
		slog.String("subject", subject),
		slog.Int("body_bytes", len(body)),
	)
	return nil
}
