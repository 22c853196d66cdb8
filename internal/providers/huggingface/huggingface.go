// Package huggingface implements the Hugging Face Inference API provider.
// Unlike the chat/completions providers it takes a single flattened prompt
// and answers with either a bare object or a one-element list, so the
// response is normalized with gjson instead of a fixed struct.
package huggingface

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"

	"sopforge/config"
	"sopforge/internal/core"
	"sopforge/internal/llmclient"
	"sopforge/internal/providers"
)

const Name = "huggingface"

func init() {
	providers.Register(Name, New)
}

// Provider calls the Hugging Face Inference API.
type Provider struct {
	model  string
	client *llmclient.Client
	llm    config.LLMConfig
}

// New builds the Hugging Face provider.
func New(cfg config.ProviderConfig, llm config.LLMConfig) (core.Provider, error) {
	clientCfg := llmclient.DefaultConfig(Name, cfg.BaseURL)
	if llm.Timeout > 0 {
		clientCfg.Timeout = llm.Timeout
	}
	if llm.RetryAttempts > 0 {
		clientCfg.Retry.MaxAttempts = llm.RetryAttempts
	}

	apiKey := cfg.APIKey
	client := llmclient.New(clientCfg, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	})

	return &Provider{model: cfg.Model, client: client, llm: llm}, nil
}

// SetBaseURL redirects the provider, used by tests.
func (p *Provider) SetBaseURL(url string) {
	p.client.SetBaseURL(url)
}

func (p *Provider) Name() string  { return Name }
func (p *Provider) Model() string { return p.model }

// inferenceRequest is the Inference API payload.
type inferenceRequest struct {
	Inputs     string              `json:"inputs"`
	Parameters inferenceParameters `json:"parameters"`
}

type inferenceParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	ReturnFullText bool    `json:"return_full_text"`
}

// Generate flattens the prompts into the instruct format the Inference API
// expects and extracts generated_text from whichever shape comes back.
func (p *Provider) Generate(ctx context.Context, systemPrompt, userPrompt string) (*core.GenerationResult, error) {
	prompt := fmt.Sprintf("System: %s\n\nUser: %s\n\nAssistant:", systemPrompt, userPrompt)

	resp, err := p.client.DoRaw(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: "/" + p.model,
		Body: inferenceRequest{
			Inputs: prompt,
			Parameters: inferenceParameters{
				MaxNewTokens:   p.llm.MaxTokens,
				Temperature:    p.llm.Temperature,
				ReturnFullText: false,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	content := extractGeneratedText(resp.Body)
	if content == "" {
		return nil, core.NewProviderError(Name, http.StatusBadGateway,
			"no generated_text in response", nil)
	}

	return &core.GenerationResult{
		Content:  content,
		Provider: Name,
		Model:    p.model,
		// The Inference API reports no usage, approximate with word count.
		TokensUsed: len(strings.Fields(content)),
	}, nil
}

// extractGeneratedText handles both response shapes the Inference API
// returns: a list of candidates or a single object.
func extractGeneratedText(body []byte) string {
	root := gjson.ParseBytes(body)
	text := root.Get("0.generated_text")
	if !text.Exists() {
		text = root.Get("generated_text")
	}
	return strings.TrimSpace(text.String())
}
