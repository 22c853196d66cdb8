package generator

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/internal/compliance"
	"sopforge/internal/contentcache"
	"sopforge/internal/core"
)

// stubClient returns fixed content for every call, or fallback content when
// failing is set.
type stubClient struct {
	content string
	failing bool
	calls   int
}

func (s *stubClient) Generate(ctx context.Context, systemPrompt, userPrompt string) *core.GenerationResult {
	s.calls++
	if s.failing {
		return &core.GenerationResult{
			Content:  "short",
			Provider: core.ProviderFallback,
			Model:    "local_template",
		}
	}
	return &core.GenerationResult{
		Content:  s.content,
		Provider: "groq",
		Model:    "llama-3.1-70b-versatile",
	}
}

func (s *stubClient) GenerateWith(ctx context.Context, provider, systemPrompt, userPrompt string) (*core.GenerationResult, error) {
	return s.Generate(ctx, systemPrompt, userPrompt), nil
}

func (s *stubClient) AvailableProviders() []string { return []string{"groq"} }

// validContent satisfies every section's validation rules.
var validContent = "## Section\n\nThe purpose, scope and overview of this step-by-step procedure " +
	"is to document every requirement, regulation, standard, record and form.\n\n- item\n- item"

func TestAssembleHardcodedRestaurant(t *testing.T) {
	client := &stubClient{}
	assembler := NewAssembler(NewSectionGenerator(client, nil, nil), "2.0", nil)

	doc, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{Hardcoded: true})
	require.NoError(t, err)

	assert.Equal(t, core.MethodHardcoded, doc.Metadata.GenerationMethod)
	assert.Equal(t, "restaurant", doc.Metadata.TemplateType)
	assert.Equal(t, "2.0", doc.Metadata.Version)
	assert.Contains(t, doc.Metadata.ComplianceStandards, "HACCP")

	assert.Equal(t, 4, doc.GenerationStats.TotalSections)
	assert.Equal(t, 4, doc.GenerationStats.SuccessfulSections)
	assert.Equal(t, 0, doc.GenerationStats.FailedSections)
	assert.Equal(t, 0, client.calls, "hardcoded mode must not call providers")

	intro := doc.Sections["Introduction"]
	assert.Contains(t, intro.Content, "## Introduction")
	assert.Contains(t, intro.Content, "restaurant and food service")

	ordered := doc.OrderedSections()
	require.Len(t, ordered, 4)
	assert.Equal(t, "Introduction", ordered[0].Name)
	assert.Equal(t, "Documentation", ordered[3].Name)
}

func TestAssembleHardcodedWritesCache(t *testing.T) {
	client := &stubClient{}
	cache := contentcache.NewMemory(time.Hour)
	assembler := NewAssembler(NewSectionGenerator(client, cache, nil), "2.0", nil)

	doc, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{Hardcoded: true})
	require.NoError(t, err)
	assert.Equal(t, 0, doc.GenerationStats.CachedSections)

	tmpl, err := compliance.Load("restaurant")
	require.NoError(t, err)
	for _, section := range tmpl.OrderedSections() {
		prompt, err := BuildPrompt(tmpl, section)
		require.NoError(t, err)
		key := contentcache.Key(tmpl.Type, section.Name, prompt)
		content, ok := cache.Get(context.Background(), key)
		assert.True(t, ok, "hardcoded content for %q must be cached", section.Name)
		assert.Equal(t, doc.Sections[section.Name].Content, content, section.Name)
	}

	// Second hardcoded pass is served from the cache.
	doc2, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{Hardcoded: true})
	require.NoError(t, err)
	assert.Equal(t, 4, doc2.GenerationStats.CachedSections)
	assert.Equal(t, 0, client.calls)
}

func TestAssembleGeneratedWithCache(t *testing.T) {
	client := &stubClient{content: validContent}
	cache := contentcache.NewMemory(time.Hour)
	assembler := NewAssembler(NewSectionGenerator(client, cache, nil), "2.0", nil)

	doc, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{})
	require.NoError(t, err)
	assert.Equal(t, core.MethodAIGenerated, doc.Metadata.GenerationMethod)
	assert.Equal(t, 0, doc.GenerationStats.CachedSections)
	assert.Equal(t, 4, client.calls)

	// Second pass is served from cache entirely.
	doc2, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{})
	require.NoError(t, err)
	assert.Equal(t, 4, doc2.GenerationStats.CachedSections)
	assert.Equal(t, 4, client.calls, "cached pass must not call providers")
	for name, record := range doc2.Sections {
		assert.True(t, record.Cached, name)
	}
}

func TestAssembleReplacesInvalidContent(t *testing.T) {
	client := &stubClient{failing: true}
	assembler := NewAssembler(NewSectionGenerator(client, nil, nil), "2.0", nil)

	doc, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{})
	require.NoError(t, err)

	// Invalid provider output is replaced with static content, never failed.
	assert.Equal(t, 4, doc.GenerationStats.SuccessfulSections)
	for name, record := range doc.Sections {
		assert.True(t, ValidateSection(name, record.Content), name)
	}
}

func TestAssembleComplianceFeaturesAndElements(t *testing.T) {
	assembler := NewAssembler(NewSectionGenerator(&stubClient{}, nil, nil), "2.0", nil)

	doc, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{Hardcoded: true})
	require.NoError(t, err)

	cf := doc.ComplianceFeatures
	assert.True(t, cf.AuditTrail.Enabled)
	assert.Contains(t, cf.AuditTrail.Fields, "approved_by")
	assert.True(t, cf.VersionControl.AutoIncrement)
	assert.Equal(t, "quarterly", cf.UpdateNotifications.Frequency)
	assert.NotEmpty(t, cf.RegulatoryLinks["FDA Food Code"])

	var qr, checklists int
	for _, el := range doc.InteractiveElements {
		switch el.Type {
		case core.ElementQRCode:
			qr++
			assert.True(t, strings.HasPrefix(el.Data, "https://"))
		case core.ElementChecklist:
			checklists++
			assert.Equal(t, "Procedures", el.Section)
			assert.NotEmpty(t, el.Items)
		}
	}
	assert.Equal(t, 2, qr)
	assert.Equal(t, 1, checklists)
}

func TestAssembleProgressCallback(t *testing.T) {
	assembler := NewAssembler(NewSectionGenerator(&stubClient{}, nil, nil), "2.0", nil)

	var seen []string
	_, err := assembler.Assemble(context.Background(), "restaurant", AssembleOptions{
		Hardcoded: true,
		Progress: func(done, total int, section string) {
			assert.Equal(t, 4, total)
			assert.Equal(t, len(seen)+1, done)
			seen = append(seen, section)
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Introduction", "Procedures", "Compliance Requirements", "Documentation"}, seen)
}

func TestBuildPromptIncludesRequirements(t *testing.T) {
	tmpl, err := compliance.Load("restaurant")
	require.NoError(t, err)

	var procedures compliance.Section
	for _, s := range tmpl.Sections {
		if s.Name == "Procedures" {
			procedures = s
		}
	}

	prompt, err := BuildPrompt(tmpl, procedures)
	require.NoError(t, err)
	assert.Contains(t, prompt, `"Procedures" section`)
	assert.Contains(t, prompt, "restaurant and food service")
	assert.Contains(t, prompt, "- Daily opening and closing procedures")
	assert.Contains(t, prompt, "FDA Food Code")
}
