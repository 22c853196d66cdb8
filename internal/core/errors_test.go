package core

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProviderErrorMessage(t *testing.T) {
	err := NewProviderError("groq", 502, "upstream exploded", nil)
	assert.Equal(t, "[groq] provider_error: upstream exploded", err.Error())

	plain := NewInvalidRequestError("bad payload", nil)
	assert.Equal(t, "invalid_request_error: bad payload", plain.Error())
}

func TestProviderErrorUnwrap(t *testing.T) {
	inner := errors.New("connection reset")
	err := NewProviderError("together", 502, "send failed", inner)
	assert.ErrorIs(t, err, inner)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"rate limit", http.StatusTooManyRequests, true},
		{"bad gateway", http.StatusBadGateway, true},
		{"service unavailable", http.StatusServiceUnavailable, true},
		{"gateway timeout", http.StatusGatewayTimeout, true},
		{"internal", http.StatusInternalServerError, true},
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
		{"not found", http.StatusNotFound, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ParseProviderError("groq", tt.status, nil, nil)
			assert.Equal(t, tt.retryable, err.Retryable())
		})
	}
}

func TestParseProviderErrorEnvelope(t *testing.T) {
	body := []byte(`{"error":{"message":"model overloaded","type":"server_error"}}`)
	err := ParseProviderError("openrouter", 503, body, nil)
	assert.Equal(t, "model overloaded", err.Message)
	assert.Equal(t, ErrorTypeProvider, err.Type)
	assert.Equal(t, 503, err.StatusCode)
}

func TestParseProviderErrorClassification(t *testing.T) {
	assert.Equal(t, ErrorTypeRateLimit, ParseProviderError("p", 429, nil, nil).Type)
	assert.Equal(t, ErrorTypeAuthentication, ParseProviderError("p", 401, nil, nil).Type)
	assert.Equal(t, ErrorTypeNotFound, ParseProviderError("p", 404, nil, nil).Type)
	assert.Equal(t, ErrorTypeInvalidRequest, ParseProviderError("p", 422, nil, nil).Type)
	assert.Equal(t, ErrorTypeProvider, ParseProviderError("p", 500, nil, nil).Type)
}

func TestHTTPStatusCodeDefaults(t *testing.T) {
	err := &ProviderError{Type: ErrorTypeRateLimit}
	assert.Equal(t, http.StatusTooManyRequests, err.HTTPStatusCode())

	err = &ProviderError{Type: ErrorTypeProvider}
	assert.Equal(t, http.StatusBadGateway, err.HTTPStatusCode())

	err = &ProviderError{Type: ErrorTypeProvider, StatusCode: 504}
	assert.Equal(t, 504, err.HTTPStatusCode())
}
