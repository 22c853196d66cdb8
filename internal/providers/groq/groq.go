// Package groq implements the Groq provider. Groq exposes an
// OpenAI-compatible chat/completions API with very low latency, which is
// why it sits first in the priority order.
package groq

import (
	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/providers"
)

const Name = "groq"

func init() {
	providers.Register(Name, New)
}

// New builds the Groq provider.
func New(cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error) {
	return providers.NewOpenAICompat(Name, cfg, llm, nil), nil
}
