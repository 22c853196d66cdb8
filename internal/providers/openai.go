package providers

import (
	"context"
	"net/http"
	"strings"

	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/llmclient"
)

// OpenAICompat implements core.Provider for services that speak the OpenAI
// chat/completions wire shape (Groq, Together, OpenRouter). Subpackages
// supply the provider name, base URL and auth headers.
type OpenAICompat struct {
	name   string
	model  string
	client *llmclient.Client
	llm    config.LLMConfig
}

// NewOpenAICompat builds a chat/completions provider. ExtraHeaders are set
// on every request in addition to the bearer token.
func NewOpenAICompat(name string, cfg config.ProviderConfig, llm config.LLMConfig, extraHeaders map[string]string) *OpenAICompat {
	clientCfg := llmclient.DefaultConfig(name, cfg.BaseURL)
	if llm.Timeout > 0 {
		clientCfg.Timeout = llm.Timeout
	}
	if llm.RetryAttempts > 0 {
		clientCfg.Retry.MaxAttempts = llm.RetryAttempts
	}

	apiKey := cfg.APIKey
	client := llmclient.New(clientCfg, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
		for k, v := range extraHeaders {
			req.Header.Set(k, v)
		}
	})

	return &OpenAICompat{
		name:   name,
		model:  cfg.Model,
		client: client,
		llm:    llm,
	}
}

// SetBaseURL redirects the provider, used by tests to point at httptest
// servers.
func (p *OpenAICompat) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

func (p *OpenAICompat) Name() string  { return p.name }
func (p *OpenAICompat) Model() string { return p.model }

// Generate sends the chat completion request and normalizes the response.
func (p *OpenAICompat) Generate(ctx context.Context, systemPrompt, userPrompt string) (*core.GenerationResult, error) {
	req := core.ChatRequest{
		Model: p.model,
		Messages: []core.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   p.llm.MaxTokens,
		Temperature: p.llm.Temperature,
	}

	var resp core.ChatResponse
	err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/chat/completions",
		Body:     req,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, core.NewProviderError(p.name, http.StatusBadGateway,
			"provider returned no choices", nil)
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return nil, core.NewProviderError(p.name, http.StatusBadGateway,
			"provider returned empty content", nil)
	}

	model := resp.Model
	if model == "" {
		model = p.model
	}

	return &core.GenerationResult{
		Content:    content,
		Provider:   p.name,
		Model:      model,
		TokensUsed: resp.Usage.TotalTokens,
	}, nil
}
