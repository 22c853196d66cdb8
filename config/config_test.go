package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, DefaultRetryAttempts, cfg.LLM.RetryAttempts)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, DefaultTemplateTypes, cfg.Batch.TemplateTypes)
	assert.Equal(t, DefaultConcurrency, cfg.Batch.Concurrency)
	assert.Equal(t, "0 2 * * *", cfg.Schedule.Daily)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LLM_MAX_TOKENS", "512")
	t.Setenv("CACHE_DURATION_HOURS", "1")
	t.Setenv("TEMPLATE_TYPES", "restaurant, healthcare")
	t.Setenv("GROQ_API_KEY", "gsk_test123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 512, cfg.LLM.MaxTokens)
	assert.Equal(t, time.Hour, cfg.Cache.TTL)
	assert.Equal(t, []string{"restaurant", "healthcare"}, cfg.Batch.TemplateTypes)
	assert.Equal(t, []string{"groq"}, cfg.EnabledProviders())
}

func TestProviderEnabled(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		enabled bool
	}{
		{"empty", "", false},
		{"whitespace", "   ", false},
		{"placeholder", "your_groq_api_key_here", false},
		{"real key", "gsk_abc123", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProviderConfig{APIKey: tt.key}
			assert.Equal(t, tt.enabled, p.Enabled())
		})
	}
}

func TestEnabledProvidersPreservesPriorityOrder(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"openrouter":  {APIKey: "sk-or-123"},
			"groq":        {APIKey: "gsk_123"},
			"huggingface": {},
			"together":    {APIKey: "tok_123"},
		},
	}
	assert.Equal(t, []string{"groq", "together", "openrouter"}, cfg.EnabledProviders())
}
