package groq

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
	"sopforge/internal/core"
	"sopforge/internal/providers"
)

func TestGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer gsk_test", r.Header.Get("Authorization"))

		var req core.ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama-3.1-70b-versatile", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		resp := core.ChatResponse{
			Choices: []core.ChatChoice{
				{Message: core.Message{Role: "assistant", Content: "## Introduction\n\nGenerated content."}},
			},
			Usage: core.Usage{TotalTokens: 120},
			Model: "llama-3.1-70b-versatile",
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{
		APIKey:  "gsk_test",
		Model:   "llama-3.1-70b-versatile",
		BaseURL: srv.URL,
	}, config.LLMConfig{MaxTokens: 2000, Temperature: 0.7, Timeout: time.Second, RetryAttempts: 1})
	require.NoError(t, err)

	result, err := p.Generate(context.Background(), "You are an SOP writer", "Write the introduction")
	require.NoError(t, err)
	assert.Equal(t, "groq", result.Provider)
	assert.Equal(t, "llama-3.1-70b-versatile", result.Model)
	assert.Equal(t, 120, result.TokensUsed)
	assert.Contains(t, result.Content, "Generated content")
}

func TestGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p, err := New(config.ProviderConfig{APIKey: "k", Model: "m", BaseURL: srv.URL},
		config.LLMConfig{RetryAttempts: 1})
	require.NoError(t, err)

	_, err = p.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, providers.Registered(), Name)
}
