// Package notification turns domain events into outbound email.
package notification

import (
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/hrplatform/leave-management/internal"
)

// Mailer sends a single HTML email.
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer delivers through a plain SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *slog.Logger
}

func NewSMTPMailer(cfg internal.SMTPConfig, logger *slog.Logger) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   formatFrom(cfg),
		logger: logger.With("component", "smtp_mailer"),
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		m.logger.Error("smtp delivery failed", "error", err, "to", to, "subject", subject)
		return err
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

func formatFrom(cfg internal.SMTPConfig) string {
	if cfg.FromName == "" {
		return cfg.FromAddress
	}
	return cfg.FromName + " <" + cfg.FromAddress + ">"
}

// NoopMailer is used when SMTP is disabled; it logs what would have gone out.
type NoopMailer struct {
	logger *slog.Logger
}

func NewNoopMailer(logger *slog.Logger) *NoopMailer {
	return &NoopMailer{logger: logger.With("component", "noop_mailer")}
}

func (m *NoopMailer) Send(to, subject, _ string) error {
	m.logger.Info("smtp disabled, dropping email", "to", to, "subject", subject)
	return nil
}
