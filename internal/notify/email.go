package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"sopforge/config"
)

// Email delivers notifications over SMTP.
type Email struct {
	addr      string
	auth      smtp.Auth
	from      string
	recipient string
}

// NewEmail builds the email channel from configuration.
func NewEmail(cfg config.NotifyConfig) *Email {
	var auth smtp.Auth
	if cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPServer)
	}
	return &Email{
		addr:      fmt.Sprintf("%s:%d", cfg.SMTPServer, cfg.SMTPPort),
		auth:      auth,
		from:      cfg.SMTPUsername,
		recipient: cfg.Recipient,
	}
}

func (e *Email) Channel() string { return "email" }

func (e *Email) Send(ctx context.Context, event Event) error {
	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", e.from)
	fmt.Fprintf(&msg, "To: %s\r\n", e.recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", event.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(event.Body)

	return smtp.SendMail(e.addr, e.auth, e.from, []string{e.recipient}, []byte(msg.String()))
}
