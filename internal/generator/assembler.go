package generator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sopforge/internal/compliance"
	"sopforge/internal/core"
	"sopforge/internal/observability"
)

// ProgressFunc is invoked after each section completes: done sections so
// far, total sections, and the section just finished.
type ProgressFunc func(done, total int, section string)

// AssembleOptions control one assembly pass.
type AssembleOptions struct {
	// Hardcoded skips providers and uses curated static content.
	Hardcoded bool

	// Progress, when set, receives per-section completion callbacks.
	Progress ProgressFunc
}

// Assembler builds complete documents from template definitions.
type Assembler struct {
	sections *SectionGenerator
	version  string
	logger   *slog.Logger
}

// NewAssembler wires an assembler. version tags every produced document.
func NewAssembler(sections *SectionGenerator, version string, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	if version == "" {
		version = "2.0"
	}
	return &Assembler{sections: sections, version: version, logger: logger}
}

// Assemble generates every section of the template type and returns the
// complete document. Individual section failures are recorded on the
// section and counted in stats; they never abort the document.
func (a *Assembler) Assemble(ctx context.Context, templateType string, opts AssembleOptions) (*core.DocumentModel, error) {
	tmpl, err := compliance.Load(templateType)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sections := tmpl.OrderedSections()
	records := make(map[string]core.SectionRecord, len(sections))
	stats := core.GenerationStats{TotalSections: len(sections)}

	for i, section := range sections {
		record := a.generateOne(ctx, tmpl, section, opts.Hardcoded)
		records[section.Name] = record

		if record.Error != "" {
			stats.FailedSections++
		} else {
			stats.SuccessfulSections++
		}
		if record.Cached {
			stats.CachedSections++
		}

		if opts.Progress != nil {
			opts.Progress(i+1, len(sections), section.Name)
		}
	}

	elapsed := time.Since(start)
	stats.ElapsedSeconds = elapsed.Seconds()
	observability.RecordDocumentDuration(elapsed)

	method := core.MethodAIGenerated
	if opts.Hardcoded {
		method = core.MethodHardcoded
	}

	doc := &core.DocumentModel{
		Metadata: core.DocumentMetadata{
			TemplateType:        tmpl.Type,
			Version:             a.version,
			GeneratedAt:         time.Now().UTC(),
			ComplianceStandards: tmpl.Standards,
			GenerationMethod:    method,
		},
		Sections:            records,
		GenerationStats:     stats,
		ComplianceFeatures:  buildComplianceFeatures(tmpl),
		InteractiveElements: buildInteractiveElements(tmpl),
	}

	a.logger.Info("document assembled",
		"template", tmpl.Type,
		"sections", stats.TotalSections,
		"successful", stats.SuccessfulSections,
		"failed", stats.FailedSections,
		"cached", stats.CachedSections,
		"elapsed", elapsed)

	return doc, nil
}

// generateOne produces the record for a single section, recovering from
// panics so one broken section cannot take the document down.
func (a *Assembler) generateOne(ctx context.Context, tmpl *compliance.Template, section compliance.Section, hardcoded bool) (record core.SectionRecord) {
	record = core.SectionRecord{
		Name:        section.Name,
		Order:       section.Order,
		Required:    section.Required,
		GeneratedAt: time.Now().UTC(),
	}

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("section generation panicked",
				"template", tmpl.Type, "section", section.Name, "panic", r)
			record.Content = StaticContent(section.Name, tmpl.Industry)
			record.Error = fmt.Sprintf("generation panicked: %v", r)
		}
	}()

	if hardcoded {
		result := a.sections.GenerateStatic(ctx, tmpl, section)
		record.Content = result.Content
		record.Cached = result.Cached
		return record
	}

	result, err := a.sections.Generate(ctx, tmpl, section)
	if err != nil {
		a.logger.Error("section generation failed",
			"template", tmpl.Type, "section", section.Name, "error", err)
		record.Content = StaticContent(section.Name, tmpl.Industry)
		record.Error = err.Error()
		return record
	}

	record.Content = result.Content
	record.Cached = result.Cached
	return record
}

// buildComplianceFeatures derives the deterministic compliance block from
// the template definition.
func buildComplianceFeatures(tmpl *compliance.Template) core.ComplianceFeatures {
	links := make(map[string]string, len(tmpl.RegulatoryLinks))
	for _, l := range tmpl.RegulatoryLinks {
		links[l.Label] = l.URL
	}

	return core.ComplianceFeatures{
		AuditTrail: core.AuditTrail{
			Enabled: true,
			Fields:  []string{"created_by", "created_at", "modified_by", "modified_at", "approved_by"},
		},
		VersionControl: core.VersionControl{
			Enabled:       true,
			AutoIncrement: true,
		},
		RegulatoryLinks: links,
		UpdateNotifications: core.UpdateNotifications{
			Enabled:   true,
			Frequency: "quarterly",
		},
	}
}

// buildInteractiveElements derives QR codes from regulatory links and
// checklists from the sections that declare them.
func buildInteractiveElements(tmpl *compliance.Template) []core.InteractiveElement {
	var elements []core.InteractiveElement
	for _, link := range tmpl.RegulatoryLinks {
		elements = append(elements, core.InteractiveElement{
			Type:  core.ElementQRCode,
			Data:  link.URL,
			Label: link.Label,
		})
	}
	for _, section := range tmpl.Sections {
		if section.HasChecklist && len(section.ChecklistItems) > 0 {
			elements = append(elements, core.InteractiveElement{
				Type:    core.ElementChecklist,
				Section: section.Name,
				Items:   section.ChecklistItems,
			})
		}
	}
	return elements
}
