package providers

import (
	"context"
	"log/slog"
	"time"

	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/observability"
)

// Chain tries providers in priority order and falls back to local content
// when every provider fails. It implements core.GenerationClient.
type Chain struct {
	providers []core.Provider
	logger    *slog.Logger
}

// NewChain builds the chain from the enabled providers in the configuration.
// Providers whose factory fails to initialize are skipped with a warning so
// one misconfigured provider does not take the whole chain down.
func NewChain(cfg *config.Config, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}

	var providers []core.Provider
	for _, name := range cfg.EnabledProviders() {
		p, err := Create(name, cfg.Providers[name], cfg.LLM)
		if err != nil {
			logger.Warn("skipping provider", "provider", name, "error", err)
			continue
		}
		providers = append(providers, p)
		logger.Info("provider enabled", "provider", name, "model", p.Model())
	}

	if len(providers) == 0 {
		logger.Warn("no providers configured, all content will use local fallback")
	}

	return &Chain{providers: providers, logger: logger}
}

// NewChainWithProviders builds a chain over explicit providers. Used by
// tests and by callers that assemble providers themselves.
func NewChainWithProviders(providers []core.Provider, logger *slog.Logger) *Chain {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chain{providers: providers, logger: logger}
}

// Generate tries each provider in order and returns the first success. When
// all providers fail it synthesizes fallback content locally, so the caller
// always receives usable content.
func (c *Chain) Generate(ctx context.Context, systemPrompt, userPrompt string) *core.GenerationResult {
	for _, p := range c.providers {
		observability.RecordProviderAttempt(p.Name())

		start := time.Now()
		result, err := p.Generate(ctx, systemPrompt, userPrompt)
		elapsed := time.Since(start)

		if err != nil {
			observability.RecordProviderFailure(p.Name())
			c.logger.Warn("provider failed, trying next",
				"provider", p.Name(), "error", err, "elapsed", elapsed)
			if ctx.Err() != nil {
				break
			}
			continue
		}

		observability.RecordProviderSuccess(p.Name(), elapsed)
		result.ResponseTime = elapsed
		c.logger.Debug("provider succeeded",
			"provider", p.Name(), "model", result.Model,
			"tokens", result.TokensUsed, "elapsed", elapsed)
		return result
	}

	observability.RecordFallback()
	c.logger.Info("all providers unavailable, using local fallback content")
	return &core.GenerationResult{
		Content:  FallbackContent(userPrompt),
		Provider: core.ProviderFallback,
		Model:    "local_template",
	}
}

// GenerateWith calls one named provider directly and propagates its error.
func (c *Chain) GenerateWith(ctx context.Context, provider, systemPrompt, userPrompt string) (*core.GenerationResult, error) {
	for _, p := range c.providers {
		if p.Name() != provider {
			continue
		}

		observability.RecordProviderAttempt(p.Name())
		start := time.Now()
		result, err := p.Generate(ctx, systemPrompt, userPrompt)
		if err != nil {
			observability.RecordProviderFailure(p.Name())
			return nil, err
		}
		observability.RecordProviderSuccess(p.Name(), time.Since(start))
		result.ResponseTime = time.Since(start)
		return result, nil
	}
	return nil, core.NewNotFoundError("provider not available: " + provider)
}

// AvailableProviders lists the enabled provider names in priority order.
func (c *Chain) AvailableProviders() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}
