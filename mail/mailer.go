// Package mail sends the storefront's transactional emails.
package mail

import (
	"context"

	"github.com/gofiber/fiber/v2/log"
	"gopkg.in/gomail.v2"
)

// Message is a rendered email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a message. Callers treat failures as non-fatal.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPSender delivers through an SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}
	return s.dialer.DialAndSend(m)
}

// LogSender only logs; used when no SMTP relay is configured.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg Message) error {
	log.Infow("mail not sent, no SMTP relay configured", "to", msg.To, "subject", msg.Subject)
	return nil
}
