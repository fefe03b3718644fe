package jobs

import (
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/communityhub/server/internal/config"
)

// MailSender delivers a single message to a single recipient.
type MailSender interface {
	Send(to, subject, body string) error
}

// SMTPSender delivers mail through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return s.dialer.DialAndSend(msg)
}

// ConsoleSender logs messages instead of delivering them. Used in development
// when no SMTP relay is configured.
type ConsoleSender struct {
	log *slog.Logger
}

func NewConsoleSender(log *slog.Logger) *ConsoleSender {
	return &ConsoleSender{log: log}
}

func (s *ConsoleSender) Send(to, subject, body string) error {
	s.log.Info("email (console transport)", "to", to, "subject", subject, "body", body)
	return nil
}
