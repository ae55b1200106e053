// Package mailer sends notification email over SMTP.
package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/citypulse/events-api/internal/config"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func New(conf *config.SMTPConfig) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(conf.Host, conf.Port, conf.Username, conf.Password),
		from:   conf.From,
	}
}

// Send delivers a plain-text message. Failures are returned, not swallowed,
// so a failed task stays visible to the worker.
func (m *Mailer) Send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("m.dialer.DialAndSend -> %w", err)
	}

	return nil
}
