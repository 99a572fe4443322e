// Package mail dispatches the account activation email. Dispatch happens
// inside the registration transaction, so a failing Mailer rolls the new
// account back.
package mail

import (
	"context"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"net/smtp"
	"strings"
)

type Mailer interface {
	SendActivation(ctx context.Context, to, token string) error
}

type SMTPMailer struct {
	addr          string // host:port
	from          string // display form, e.g. "My App <info@my-app.com>"
	activationURL string
}

func NewSMTPMailer(addr, from, activationURL string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from, activationURL: activationURL}
}

func (m *SMTPMailer) SendActivation(ctx context.Context, to, token string) error {
	link := m.activationURL + token

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	b.WriteString("Subject: Account Activation\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "<div><h1>Please click the link below to activate your account</h1><div><a href=%q>Activate</a></div></div>\r\n", link)

	if err := smtp.SendMail(m.addr, nil, envelopeAddress(m.from), []string{to}, []byte(b.String())); err != nil {
		return fmt.Errorf("send activation mail: %w", err)
	}
	return nil
}

// envelopeAddress strips the display name for the SMTP MAIL FROM command.
func envelopeAddress(from string) string {
	if a, err := netmail.ParseAddress(from); err == nil {
		return a.Address
	}
	return from
}

// LogMailer logs the activation link instead of sending it. Used when no SMTP
// endpoint is configured.
type LogMailer struct {
	ActivationURL string
}

func (m *LogMailer) SendActivation(ctx context.Context, to, token string) error {
	slog.Info("activation mail", "to", to, "url", m.ActivationURL+token)
	return nil
}
