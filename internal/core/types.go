// Package core defines the shared types and interfaces for the SOP
// generation backend.
package core

import (
	"sort"
	"time"
)

// Message is a single chat message in a provider request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the OpenAI-compatible chat completion payload sent to
// providers that speak the chat/completions wire shape.
type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// ChatResponse is the OpenAI-compatible chat completion response.
type ChatResponse struct {
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
	Model   string       `json:"model,omitempty"`
}

// ChatChoice is one completion candidate in a ChatResponse.
type ChatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage carries token accounting returned by a provider.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`
}

// ProviderFallback is the provider tag for locally synthesized content.
const ProviderFallback = "fallback"

// GenerationRequest describes one section generation call. It is ephemeral:
// built per call and discarded once the result is cached.
type GenerationRequest struct {
	TemplateType string   `json:"template_type"`
	SectionName  string   `json:"section_name"`
	Requirements []string `json:"requirements,omitempty"`
}

// GenerationResult is the normalized output of a provider call, regardless
// of which wire shape the provider speaks.
type GenerationResult struct {
	Content      string        `json:"content"`
	Provider     string        `json:"provider"`
	Model        string        `json:"model"`
	TokensUsed   int           `json:"tokens_used"`
	ResponseTime time.Duration `json:"response_time"`
}

// GenerationMethod records how a document's content was produced.
type GenerationMethod string

const (
	MethodHardcoded   GenerationMethod = "hardcoded"
	MethodAIGenerated GenerationMethod = "ai_generated"
)

// DefaultSectionOrder is the sort key assigned to sections that do not
// declare an order, placing them after every ordered section.
const DefaultSectionOrder = 999

// SectionRecord is one generated section inside a DocumentModel. Records are
// owned by the assembler and immutable once the assembly pass completes.
type SectionRecord struct {
	Name        string    `json:"name"`
	Order       int       `json:"order"`
	Required    bool      `json:"required"`
	Content     string    `json:"content"`
	GeneratedAt time.Time `json:"generated_at"`
	Cached      bool      `json:"cached"`
	Error       string    `json:"error,omitempty"`
}

// DocumentMetadata describes the provenance of a generated document.
type DocumentMetadata struct {
	TemplateType        string           `json:"template_type"`
	Version             string           `json:"version"`
	GeneratedAt         time.Time        `json:"generated_at"`
	ComplianceStandards []string         `json:"compliance_standards"`
	GenerationMethod    GenerationMethod `json:"generation_method"`
}

// GenerationStats summarizes one assembly pass.
type GenerationStats struct {
	TotalSections      int     `json:"total_sections"`
	SuccessfulSections int     `json:"successful_sections"`
	FailedSections     int     `json:"failed_sections"`
	CachedSections     int     `json:"cached_sections"`
	ElapsedSeconds     float64 `json:"generation_time_seconds"`
}

// AuditTrail flags which audit fields the rendered document advertises.
type AuditTrail struct {
	Enabled bool     `json:"enabled"`
	Fields  []string `json:"fields"`
}

// VersionControl flags the document versioning features.
type VersionControl struct {
	Enabled       bool `json:"enabled"`
	AutoIncrement bool `json:"auto_increment"`
}

// UpdateNotifications describes the regulatory-update notification policy
// advertised in the document.
type UpdateNotifications struct {
	Enabled   bool   `json:"enabled"`
	Frequency string `json:"frequency"`
}

// ComplianceFeatures is the deterministic compliance block attached to every
// DocumentModel. It is derived from configuration, never generated.
type ComplianceFeatures struct {
	AuditTrail          AuditTrail          `json:"audit_trail"`
	VersionControl      VersionControl      `json:"version_control"`
	RegulatoryLinks     map[string]string   `json:"regulatory_links"`
	UpdateNotifications UpdateNotifications `json:"update_notifications"`
}

// Interactive element types.
const (
	ElementQRCode    = "qr_code"
	ElementChecklist = "checklist"
)

// InteractiveElement is a QR link or checklist embedded in the rendered PDF.
type InteractiveElement struct {
	Type    string   `json:"type"`
	Data    string   `json:"data,omitempty"`
	Label   string   `json:"label,omitempty"`
	Section string   `json:"section,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// DocumentModel is the generation artifact of record: one immutable document
// produced per assembly run, serialized as JSON and handed to the PDF
// renderer and the artifact store.
type DocumentModel struct {
	Metadata            DocumentMetadata         `json:"metadata"`
	Sections            map[string]SectionRecord `json:"sections"`
	GenerationStats     GenerationStats          `json:"generation_stats"`
	ComplianceFeatures  ComplianceFeatures       `json:"compliance_features"`
	InteractiveElements []InteractiveElement     `json:"interactive_elements"`
}

// OrderedSections returns the document's sections sorted ascending by order
// rank, name as tiebreaker. This is the only iteration order renderers and
// reports may use.
func (d *DocumentModel) OrderedSections() []SectionRecord {
	out := make([]SectionRecord, 0, len(d.Sections))
	for _, s := range d.Sections {
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Order == out[j].Order {
			return out[i].Name < out[j].Name
		}
		return out[i].Order < out[j].Order
	})
	return out
}

// BatchState is the terminal or in-flight state of a batch run.
type BatchState string

const (
	BatchPending         BatchState = "pending"
	BatchRunning         BatchState = "running"
	BatchCompleted       BatchState = "completed"
	BatchPartiallyFailed BatchState = "partially_failed"
	BatchFailed          BatchState = "failed"
)

// Unit statuses inside a batch report.
const (
	UnitSuccess = "success"
	UnitError   = "error"
)

// UnitResult records the outcome of one template-type unit of work
// (assembly + render) inside a batch run.
type UnitResult struct {
	TemplateType   string          `json:"template_type"`
	Status         string          `json:"status"`
	Error          string          `json:"error,omitempty"`
	DocumentPath   string          `json:"document_path,omitempty"`
	PDFPath        string          `json:"pdf_path,omitempty"`
	ElapsedSeconds float64         `json:"generation_time"`
	Stats          GenerationStats `json:"stats,omitempty"`
	Timestamp      time.Time       `json:"timestamp"`
}

// BatchSummary aggregates unit outcomes for a batch run.
type BatchSummary struct {
	Total        int     `json:"total"`
	Successful   int     `json:"successful"`
	Failed       int     `json:"failed"`
	TotalSeconds float64 `json:"total_time"`
}

// BatchRunReport is the immutable audit record of one orchestrator
// invocation. Units are keyed by template type, never by completion order.
type BatchRunReport struct {
	BatchID    string                `json:"batch_id"`
	State      BatchState            `json:"state"`
	StartedAt  time.Time             `json:"start_time"`
	FinishedAt time.Time             `json:"end_time"`
	Units      map[string]UnitResult `json:"templates"`
	Summary    BatchSummary          `json:"summary"`
	Error      string                `json:"error,omitempty"`
}
