package providers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/internal/core"
)

type stubProvider struct {
	name    string
	content string
	err     error
	calls   int
}

func (s *stubProvider) Name() string  { return s.name }
func (s *stubProvider) Model() string { return "stub-model" }

func (s *stubProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (*core.GenerationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &core.GenerationResult{
		Content:    s.content,
		Provider:   s.name,
		Model:      "stub-model",
		TokensUsed: 42,
	}, nil
}

func TestChainFirstProviderWins(t *testing.T) {
	first := &stubProvider{name: "first", content: "from first"}
	second := &stubProvider{name: "second", content: "from second"}
	chain := NewChainWithProviders([]core.Provider{first, second}, nil)

	result := chain.Generate(context.Background(), "sys", "user")
	assert.Equal(t, "from first", result.Content)
	assert.Equal(t, "first", result.Provider)
	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 0, second.calls)
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", content: "from second"}
	chain := NewChainWithProviders([]core.Provider{first, second}, nil)

	result := chain.Generate(context.Background(), "sys", "user")
	assert.Equal(t, "from second", result.Content)
	assert.Equal(t, "second", result.Provider)
	assert.Equal(t, 1, first.calls)
}

func TestChainAllFailUsesLocalFallback(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("down")}
	second := &stubProvider{name: "second", err: errors.New("also down")}
	chain := NewChainWithProviders([]core.Provider{first, second}, nil)

	result := chain.Generate(context.Background(), "sys", "Write the Introduction section")
	require.NotNil(t, result)
	assert.Equal(t, core.ProviderFallback, result.Provider)
	assert.Equal(t, "local_template", result.Model)
	assert.Contains(t, result.Content, "Introduction")
}

func TestChainEmptyUsesLocalFallback(t *testing.T) {
	chain := NewChainWithProviders(nil, nil)

	result := chain.Generate(context.Background(), "sys", "training requirements please")
	assert.Equal(t, core.ProviderFallback, result.Provider)
	assert.Contains(t, result.Content, "Training")
}

func TestGenerateWithPropagatesError(t *testing.T) {
	failing := &stubProvider{name: "groq", err: core.NewRateLimitError("groq", "slow down")}
	chain := NewChainWithProviders([]core.Provider{failing}, nil)

	_, err := chain.GenerateWith(context.Background(), "groq", "sys", "user")
	require.Error(t, err)
	perr, ok := core.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeRateLimit, perr.Type)
}

func TestGenerateWithUnknownProvider(t *testing.T) {
	chain := NewChainWithProviders(nil, nil)

	_, err := chain.GenerateWith(context.Background(), "nope", "sys", "user")
	require.Error(t, err)
	perr, ok := core.AsProviderError(err)
	require.True(t, ok)
	assert.Equal(t, core.ErrorTypeNotFound, perr.Type)
}

func TestAvailableProvidersOrder(t *testing.T) {
	chain := NewChainWithProviders([]core.Provider{
		&stubProvider{name: "groq"},
		&stubProvider{name: "together"},
	}, nil)
	assert.Equal(t, []string{"groq", "together"}, chain.AvailableProviders())
}

func TestFallbackContentDispatch(t *testing.T) {
	tests := []struct {
		prompt string
		want   string
	}{
		{"Write the Introduction for this SOP", "## Introduction"},
		{"Describe the daily opening procedure", "## Operational Procedures"},
		{"Cover crisis management and emergency response", "## Emergency Response"},
		{"Explain training requirements", "## Training Requirements"},
		{"Detail the monitoring plan", "## Monitoring"},
		{"Specify documentation standards", "## Documentation"},
		{"Something else entirely", "## Standard Operating Procedure"},
	}
	for _, tt := range tests {
		content := FallbackContent(tt.prompt)
		assert.Contains(t, content, tt.want, "prompt %q", tt.prompt)
		assert.GreaterOrEqual(t, len(content), 100, "prompt %q", tt.prompt)
	}
}
