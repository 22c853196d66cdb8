package openrouter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/config"
	"sopforge/internal/core"
)

func TestNewRejectsWrongKeyPrefix(t *testing.T) {
	_, err := New(config.ProviderConfig{APIKey: "sk-wrong", Model: "m"}, config.LLMConfig{})
	require.Error(t, err)
	perr, ok := core.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeAuthentication, perr.Type)
}

func TestGenerateSendsAttributionHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk-or-test", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		assert.NotEmpty(t, r.Header.Get("X-Title"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok content"}}],"usage":{"total_tokens":7}}`))
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{
		APIKey:  "sk-or-test",
		Model:   "deepseek/deepseek-chat",
		BaseURL: srv.URL,
	}, config.LLMConfig{Timeout: time.Second, RetryAttempts: 1})
	require.NoError(t, err)

	result, err := p.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "openrouter", result.Provider)
	assert.Equal(t, "ok content", result.Content)
	assert.Equal(t, 7, result.TokensUsed)
}
