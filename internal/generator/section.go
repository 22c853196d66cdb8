// Package generator produces SOP section content and assembles complete
// documents. Sections flow through a fixed path: cache lookup, provider
// generation, validation, static replacement, cache write. Every path
// yields usable content; a section never comes back empty.
package generator

import (
	"context"
	"log/slog"
	"strings"

	"sopforge/internal/compliance"
	"sopforge/internal/contentcache"
	"sopforge/internal/core"
	"sopforge/internal/prompts"
)

// SectionResult is the outcome of generating one section.
type SectionResult struct {
	Content  string
	Cached   bool
	Provider string
	Model    string
}

// SectionGenerator generates one section at a time against the cache and
// the provider chain.
type SectionGenerator struct {
	client core.GenerationClient
	cache  contentcache.Store
	logger *slog.Logger
}

// NewSectionGenerator wires a section generator. The cache may be nil, in
// which case every call generates fresh content.
func NewSectionGenerator(client core.GenerationClient, cache contentcache.Store, logger *slog.Logger) *SectionGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &SectionGenerator{client: client, cache: cache, logger: logger}
}

// BuildPrompt renders the user prompt for a section. Exposed so assembly
// and cache invalidation key off the exact prompt text that is sent.
func BuildPrompt(tmpl *compliance.Template, section compliance.Section) (string, error) {
	values := map[string]string{
		"SectionName": section.Name,
		"DisplayName": tmpl.DisplayName,
		"Industry":    tmpl.Industry,
		"Standards":   strings.Join(tmpl.Standards, ", "),
	}

	if len(section.Requirements) == 0 {
		return prompts.Format("section_bare", values)
	}

	reqs := make([]string, len(section.Requirements))
	for i, r := range section.Requirements {
		reqs[i] = "- " + r
	}
	values["Requirements"] = strings.Join(reqs, "\n")
	return prompts.Format("section", values)
}

// Generate produces content for one section. The cached flag is computed
// from the same key the content is stored under, so it is accurate even
// when the final content came from validation replacement.
func (g *SectionGenerator) Generate(ctx context.Context, tmpl *compliance.Template, section compliance.Section) (*SectionResult, error) {
	prompt, err := BuildPrompt(tmpl, section)
	if err != nil {
		return nil, err
	}
	systemPrompt, err := prompts.Get("system")
	if err != nil {
		return nil, err
	}

	key := contentcache.Key(tmpl.Type, section.Name, prompt)
	if g.cache != nil {
		if content, ok := g.cache.Get(ctx, key); ok {
			g.logger.Debug("section served from cache",
				"template", tmpl.Type, "section", section.Name)
			return &SectionResult{Content: content, Cached: true}, nil
		}
	}

	result := g.client.Generate(ctx, systemPrompt, prompt)
	content := result.Content

	if !ValidateSection(section.Name, content) {
		g.logger.Warn("generated content failed validation, using static content",
			"template", tmpl.Type, "section", section.Name, "provider", result.Provider)
		content = StaticContent(section.Name, tmpl.Industry)
	}

	if g.cache != nil {
		g.cache.Set(ctx, key, content)
	}

	return &SectionResult{
		Content:  content,
		Provider: result.Provider,
		Model:    result.Model,
	}, nil
}

// GenerateStatic produces the curated content for a section without calling
// any provider. Used in hardcoded mode. The content still flows through the
// cache under the same key the generated path would use, so switching modes
// reuses entries and reports the cached flag consistently.
func (g *SectionGenerator) GenerateStatic(ctx context.Context, tmpl *compliance.Template, section compliance.Section) *SectionResult {
	content := StaticContent(section.Name, tmpl.Industry)

	prompt, err := BuildPrompt(tmpl, section)
	if err != nil || g.cache == nil {
		return &SectionResult{Content: content}
	}

	key := contentcache.Key(tmpl.Type, section.Name, prompt)
	if cached, ok := g.cache.Get(ctx, key); ok {
		return &SectionResult{Content: cached, Cached: true}
	}

	g.cache.Set(ctx, key, content)
	return &SectionResult{Content: content}
}
