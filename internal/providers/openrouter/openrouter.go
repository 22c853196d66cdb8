// Package openrouter implements the OpenRouter provider. OpenRouter speaks
// the OpenAI chat/completions wire shape but additionally wants attribution
// headers, and its keys carry a distinctive prefix we can validate up front.
package openrouter

import (
	"strings"

	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/providers"
)

const Name = "openrouter"

// keyPrefix is the prefix all OpenRouter API keys start with.
const keyPrefix = "sk-or-"

func init() {
	providers.Register(Name, New)
}

// New builds the OpenRouter provider. Keys without the sk-or- prefix are
// rejected early so a key pasted into the wrong variable fails loudly at
// startup instead of as a 401 at request time.
func New(cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error) {
	if !strings.HasPrefix(cfg.APIKey, keyPrefix) {
		return nil, core.NewAuthenticationError(Name,
			"API key does not look like an OpenRouter key (expected sk-or- prefix)")
	}

	headers := map[string]string{
		"HTTP-Referer": "https://sopforge.app",
		"X-Title":      "SOP Forge",
	}
	return providers.NewOpenAICompat(Name, cfg, llm, headers), nil
}
