// Package notify delivers batch run notifications over email and webhook.
// Channels are optional: unconfigured channels are simply absent, and a
// failing channel never fails the batch that triggered it.
package notify

import (
	"context"
	"log/slog"

	"sopforge/config"
)

// Severity of a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityPartial Severity = "partial"
	SeverityFailure Severity = "failure"
)

// Event is one notification.
type Event struct {
	Severity Severity
	Subject  string
	Body     string
}

// Sender delivers an event over one channel.
type Sender interface {
	Send(ctx context.Context, event Event) error
	Channel() string
}

// Multi fans an event out to every configured channel. Delivery errors are
// logged and swallowed.
type Multi struct {
	senders []Sender
	logger  *slog.Logger
}

// NewMulti wraps the given senders.
func NewMulti(logger *slog.Logger, senders ...Sender) *Multi {
	if logger == nil {
		logger = slog.Default()
	}
	return &Multi{senders: senders, logger: logger}
}

// FromConfig builds the notifier from configuration, including only the
// channels that are configured.
func FromConfig(cfg config.NotifyConfig, logger *slog.Logger) *Multi {
	var senders []Sender
	if cfg.SMTPServer != "" && cfg.Recipient != "" {
		senders = append(senders, NewEmail(cfg))
	}
	if cfg.WebhookURL != "" {
		senders = append(senders, NewWebhook(cfg.WebhookURL))
	}
	return NewMulti(logger, senders...)
}

// Notify delivers the event to every channel.
func (m *Multi) Notify(ctx context.Context, event Event) {
	for _, s := range m.senders {
		if err := s.Send(ctx, event); err != nil {
			m.logger.Warn("notification delivery failed",
				"channel", s.Channel(), "severity", event.Severity, "error", err)
		}
	}
}

// Enabled reports whether any channel is configured.
func (m *Multi) Enabled() bool {
	return len(m.senders) > 0
}
