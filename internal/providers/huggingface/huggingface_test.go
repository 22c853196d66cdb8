package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/config"
)

func newTestProvider(t *testing.T, baseURL string) *Provider {
	t.Helper()
	p, err := New(config.ProviderConfig{
		APIKey:  "hf_test",
		Model:   "microsoft/DialoGPT-large",
		BaseURL: baseURL,
	}, config.LLMConfig{MaxTokens: 500, Temperature: 0.7, Timeout: time.Second, RetryAttempts: 1})
	require.NoError(t, err)
	return p.(*Provider)
}

func TestGenerateListResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/microsoft/DialoGPT-large", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))

		var req inferenceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Contains(t, req.Inputs, "System: ")
		assert.Contains(t, req.Inputs, "Assistant:")
		assert.Equal(t, 500, req.Parameters.MaxNewTokens)
		assert.False(t, req.Parameters.ReturnFullText)

		_, _ = w.Write([]byte(`[{"generated_text": "Generated section body here."}]`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	result, err := p.Generate(context.Background(), "You are an SOP writer", "Write the introduction")
	require.NoError(t, err)
	assert.Equal(t, "huggingface", result.Provider)
	assert.Equal(t, "Generated section body here.", result.Content)
	assert.Equal(t, 4, result.TokensUsed)
}

func TestGenerateObjectResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text": "single object"}`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	result, err := p.Generate(context.Background(), "sys", "user")
	require.NoError(t, err)
	assert.Equal(t, "single object", result.Content)
}

func TestGenerateMissingText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"something_else": "x"}]`))
	}))
	defer srv.Close()

	p := newTestProvider(t, srv.URL)
	_, err := p.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no generated_text")
}

func TestExtractGeneratedText(t *testing.T) {
	assert.Equal(t, "a", extractGeneratedText([]byte(`[{"generated_text":" a "}]`)))
	assert.Equal(t, "b", extractGeneratedText([]byte(`{"generated_text":"b"}`)))
	assert.Equal(t, "", extractGeneratedText([]byte(`{}`)))
	assert.Equal(t, "", extractGeneratedText([]byte(`not json`)))
}
