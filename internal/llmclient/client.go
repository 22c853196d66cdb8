// Package llmclient provides the base HTTP client shared by all provider
// implementations: request marshaling, retries with exponential backoff
// driven by an explicit policy object, standardized provider error parsing,
// and circuit breaking.
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"sopforge/internal/core"
)

// RetryPolicy describes how a call site retries transient failures. The
// policy is a value passed into the client so retry behavior is inspectable
// and testable apart from the function it guards.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration

	// MaxBackoff caps the computed delay.
	MaxBackoff time.Duration

	// BackoffFactor multiplies the delay after each attempt.
	BackoffFactor float64

	// Retryable decides whether an error is worth another attempt.
	// Nil means DefaultRetryable.
	Retryable func(error) bool
}

// DefaultRetryPolicy returns the standard policy: 3 attempts, 1s initial
// delay doubling up to 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:    3,
		InitialBackoff: 1 * time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
	}
}

// Backoff returns the delay to sleep before the given attempt (1-based:
// attempt 1 is the first retry).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := float64(p.InitialBackoff) * math.Pow(p.BackoffFactor, float64(attempt-1))
	if d > float64(p.MaxBackoff) {
		d = float64(p.MaxBackoff)
	}
	return time.Duration(d)
}

// retryable applies the policy predicate, defaulting to DefaultRetryable.
func (p RetryPolicy) retryable(err error) bool {
	if p.Retryable != nil {
		return p.Retryable(err)
	}
	return DefaultRetryable(err)
}

// DefaultRetryable treats transport failures and transient provider errors
// (429, 5xx) as retryable; everything else fails fast.
func DefaultRetryable(err error) bool {
	var perr *core.ProviderError
	if errors.As(err, &perr) {
		return perr.Retryable()
	}
	// Non-provider errors are transport-level failures.
	return true
}

// CircuitBreakerConfig holds circuit breaker settings.
type CircuitBreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
}

// Config holds configuration for a provider client.
type Config struct {
	// ProviderName identifies the provider in error messages and metrics.
	ProviderName string

	// BaseURL is the API base URL.
	BaseURL string

	// Timeout bounds each individual HTTP attempt.
	Timeout time.Duration

	Retry          RetryPolicy
	CircuitBreaker *CircuitBreakerConfig
}

// DefaultConfig returns a client configuration with standard resilience.
func DefaultConfig(providerName, baseURL string) Config {
	return Config{
		ProviderName: providerName,
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		Retry:        DefaultRetryPolicy(),
		CircuitBreaker: &CircuitBreakerConfig{
			FailureThreshold: 5,
			SuccessThreshold: 2,
			Timeout:          30 * time.Second,
		},
	}
}

// HeaderSetter applies provider-specific headers to an outgoing request.
type HeaderSetter func(req *http.Request)

// Client is the base HTTP client for providers.
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
	breaker      *circuitBreaker
}

// New creates a client with the given configuration.
func New(cfg Config, headerSetter HeaderSetter) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		config:       cfg,
		headerSetter: headerSetter,
	}
	if cfg.CircuitBreaker != nil {
		c.breaker = newCircuitBreaker(
			cfg.CircuitBreaker.FailureThreshold,
			cfg.CircuitBreaker.SuccessThreshold,
			cfg.CircuitBreaker.Timeout,
		)
	}
	return c
}

// NewWithHTTPClient creates a client around a caller-supplied *http.Client.
// Used by tests to inject httptest transports.
func NewWithHTTPClient(httpClient *http.Client, cfg Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		httpClient:   httpClient,
		config:       cfg,
		headerSetter: headerSetter,
	}
	if cfg.CircuitBreaker != nil {
		c.breaker = newCircuitBreaker(
			cfg.CircuitBreaker.FailureThreshold,
			cfg.CircuitBreaker.SuccessThreshold,
			cfg.CircuitBreaker.Timeout,
		)
	}
	return c
}

// SetBaseURL updates the base URL.
func (c *Client) SetBaseURL(url string) {
	c.config.BaseURL = url
}

// BaseURL returns the current base URL.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// Request is one HTTP request to be made against the provider.
type Request struct {
	Method   string
	Endpoint string
	Body     any // JSON marshaled when non-nil
	Headers  map[string]string
}

// Response is the raw HTTP response.
type Response struct {
	StatusCode int
	Body       []byte
}

// Do executes the request with retries and circuit breaking, then
// unmarshals the response body into result.
func (c *Client) Do(ctx context.Context, req Request, result any) error {
	resp, err := c.DoRaw(ctx, req)
	if err != nil {
		return err
	}
	if result != nil {
		if err := json.Unmarshal(resp.Body, result); err != nil {
			return core.NewProviderError(c.config.ProviderName, http.StatusBadGateway,
				"failed to unmarshal response: "+err.Error(), err)
		}
	}
	return nil
}

// DoRaw executes the request with retries and circuit breaking, returning
// the raw response.
func (c *Client) DoRaw(ctx context.Context, req Request) (*Response, error) {
	if c.breaker != nil && !c.breaker.Allow() {
		return nil, core.NewProviderError(c.config.ProviderName, http.StatusServiceUnavailable,
			"circuit breaker is open - provider temporarily unavailable", nil)
	}

	maxAttempts := c.config.Retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.Retry.Backoff(attempt)):
			}
		}

		resp, err := c.doRequest(ctx, req)
		if err != nil {
			lastErr = err
			if c.breaker != nil {
				c.breaker.RecordFailure()
			}
			if ctx.Err() != nil || !c.config.Retry.retryable(err) {
				return nil, err
			}
			continue
		}

		if resp.StatusCode != http.StatusOK {
			perr := core.ParseProviderError(c.config.ProviderName, resp.StatusCode, resp.Body, nil)
			if c.breaker != nil && resp.StatusCode >= 500 {
				c.breaker.RecordFailure()
			}
			if !c.config.Retry.retryable(perr) {
				return nil, perr
			}
			lastErr = perr
			continue
		}

		if c.breaker != nil {
			c.breaker.RecordSuccess()
		}
		return resp, nil
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, core.NewProviderError(c.config.ProviderName, http.StatusBadGateway,
		"request failed after retries", nil)
}

// doRequest executes a single HTTP attempt.
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewProviderError(c.config.ProviderName, http.StatusBadGateway,
			"failed to send request: "+err.Error(), err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewProviderError(c.config.ProviderName, http.StatusBadGateway,
			"failed to read response: "+err.Error(), err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

// buildRequest assembles the *http.Request, applying provider headers last.
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := c.config.BaseURL + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		raw, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewInvalidRequestError("failed to marshal request", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create request", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	return httpReq, nil
}
