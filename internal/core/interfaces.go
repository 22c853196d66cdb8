package core

import "context"

// Provider is one external text-generation service. Implementations live in
// internal/providers/* and register themselves with the provider factory at
// init time; the fallback chain never type-switches on concrete providers.
type Provider interface {
	// Name returns the stable provider identifier (e.g. "groq").
	Name() string

	// Model returns the configured model identifier for this provider.
	Model() string

	// Generate produces content for the given system and user prompts.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (*GenerationResult, error)
}

// GenerationClient is the single entry point section generators call. The
// chain implementation tries providers in priority order and degrades to
// synthesized fallback content; it never returns an error in auto mode.
type GenerationClient interface {
	// Generate runs the auto-fallback path across all enabled providers.
	Generate(ctx context.Context, systemPrompt, userPrompt string) *GenerationResult

	// GenerateWith calls one named provider directly. Unlike Generate it
	// propagates failures instead of substituting fallback content.
	GenerateWith(ctx context.Context, provider, systemPrompt, userPrompt string) (*GenerationResult, error)

	// AvailableProviders lists the enabled providers in priority order.
	AvailableProviders() []string
}
