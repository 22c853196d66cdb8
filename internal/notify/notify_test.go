package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/config"
)

func TestFromConfigChannels(t *testing.T) {
	assert.False(t, FromConfig(config.NotifyConfig{}, nil).Enabled())

	assert.True(t, FromConfig(config.NotifyConfig{
		WebhookURL: "https://hooks.example.com/x",
	}, nil).Enabled())

	assert.True(t, FromConfig(config.NotifyConfig{
		SMTPServer: "smtp.example.com",
		SMTPPort:   587,
		Recipient:  "ops@example.com",
	}, nil).Enabled())

	// SMTP without a recipient is not a usable channel.
	assert.False(t, FromConfig(config.NotifyConfig{
		SMTPServer: "smtp.example.com",
	}, nil).Enabled())
}

func TestWebhookSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Send(context.Background(), Event{
		Severity: SeverityPartial,
		Subject:  "Batch completed with failures",
		Body:     "3 succeeded, 1 failed",
	})
	require.NoError(t, err)
	assert.Contains(t, got["text"], ":warning:")
	assert.Contains(t, got["text"], "Batch completed with failures")
	assert.Contains(t, got["text"], "1 failed")
}

func TestWebhookSendErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Send(context.Background(), Event{Severity: SeverityFailure})
	assert.Error(t, err)
}

type failingSender struct{ sent int }

func (f *failingSender) Channel() string { return "failing" }
func (f *failingSender) Send(ctx context.Context, event Event) error {
	f.sent++
	return errors.New("down")
}

func TestMultiSwallowsChannelErrors(t *testing.T) {
	failing := &failingSender{}
	m := NewMulti(nil, failing)

	// Must not panic or propagate.
	m.Notify(context.Background(), Event{Severity: SeveritySuccess, Subject: "ok"})
	assert.Equal(t, 1, failing.sent)
}
