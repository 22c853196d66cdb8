// Package together implements the Together AI provider via its
// OpenAI-compatible chat/completions API.
package together

import (
	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/providers"
)

const Name = "together"

func init() {
	providers.Register(Name, New)
}

// New builds the Together provider.
func New(cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error) {
	return providers.NewOpenAICompat(Name, cfg, llm, nil), nil
}
