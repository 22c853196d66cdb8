package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// severityEmoji prefixes webhook messages so the outcome is visible at a
// glance in a channel.
var severityEmoji = map[Severity]string{
	SeveritySuccess: ":white_check_mark:",
	SeverityPartial: ":warning:",
	SeverityFailure: ":x:",
}

// Webhook delivers notifications to a Slack-compatible incoming webhook.
type Webhook struct {
	url    string
	client *http.Client
}

// NewWebhook builds the webhook channel.
func NewWebhook(url string) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (w *Webhook) Channel() string { return "webhook" }

func (w *Webhook) Send(ctx context.Context, event Event) error {
	payload, err := json.Marshal(map[string]string{
		"text": fmt.Sprintf("%s *%s*\n%s", severityEmoji[event.Severity], event.Subject, event.Body),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
