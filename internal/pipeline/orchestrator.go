// Package pipeline orchestrates batch document generation: one unit of
// work per template type (assemble, persist, render), run in parallel with
// panic isolation, summarized in a batch report and announced over the
// notification channels.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sopforge/internal/artifacts"
	"sopforge/internal/contentcache"
	"sopforge/internal/core"
	"sopforge/internal/generator"
	"sopforge/internal/notify"
	"sopforge/internal/observability"
	"sopforge/internal/pdf"
)

// DocumentAssembler produces a complete document for a template type.
// Satisfied by *generator.Assembler.
type DocumentAssembler interface {
	Assemble(ctx context.Context, templateType string, opts generator.AssembleOptions) (*core.DocumentModel, error)
}

// DocumentRenderer renders a document to a PDF file. Satisfied by
// *pdf.Renderer.
type DocumentRenderer interface {
	RenderFile(doc *core.DocumentModel, path string) error
}

var _ DocumentRenderer = (*pdf.Renderer)(nil)

// Orchestrator runs batch generation.
type Orchestrator struct {
	assembler   DocumentAssembler
	renderer    DocumentRenderer
	store       *artifacts.FS
	index       *artifacts.Index
	cache       contentcache.Store
	notifier    *notify.Multi
	concurrency int
	logger      *slog.Logger
}

// Options wires an orchestrator. Index, Cache and Notifier are optional.
type Options struct {
	Assembler   DocumentAssembler
	Renderer    DocumentRenderer
	Store       *artifacts.FS
	Index       *artifacts.Index
	Cache       contentcache.Store
	Notifier    *notify.Multi
	Concurrency int
	Logger      *slog.Logger
}

// New creates an orchestrator.
func New(opts Options) *Orchestrator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Orchestrator{
		assembler:   opts.Assembler,
		renderer:    opts.Renderer,
		store:       opts.Store,
		index:       opts.Index,
		cache:       opts.Cache,
		notifier:    opts.Notifier,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// RunOptions control one batch run.
type RunOptions struct {
	// TemplateTypes to generate. Required.
	TemplateTypes []string

	// Force clears cached content for each type before generating.
	Force bool

	// Sequential disables the worker pool and runs units one at a time.
	Sequential bool

	// Hardcoded uses curated static content instead of providers.
	Hardcoded bool

	// BatchID overrides the generated batch identifier. Callers that
	// announce the id before the run starts set this.
	BatchID string
}

// NewBatchID mints a batch identifier. The timestamp keeps IDs readable
// and sortable; the uuid suffix keeps runs started within the same second
// distinct.
func NewBatchID() string {
	return "batch_" + time.Now().UTC().Format("20060102_150405") + "_" + uuid.NewString()[:8]
}

// Run executes one batch and returns its report. Unit failures are
// captured in the report; Run itself only errors when no unit could even
// be attempted.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*core.BatchRunReport, error) {
	if len(opts.TemplateTypes) == 0 {
		return nil, fmt.Errorf("pipeline: no template types to generate")
	}

	batchID := opts.BatchID
	if batchID == "" {
		batchID = NewBatchID()
	}

	report := &core.BatchRunReport{
		BatchID:   batchID,
		State:     core.BatchRunning,
		StartedAt: time.Now().UTC(),
		Units:     make(map[string]core.UnitResult, len(opts.TemplateTypes)),
	}

	o.logger.Info("batch run starting",
		"batch_id", report.BatchID,
		"templates", opts.TemplateTypes,
		"force", opts.Force,
		"sequential", opts.Sequential)

	limit := o.concurrency
	if opts.Sequential {
		limit = 1
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for _, templateType := range opts.TemplateTypes {
		templateType := templateType
		g.Go(func() error {
			unit := o.runUnit(gctx, templateType, opts)
			mu.Lock()
			report.Units[templateType] = unit
			mu.Unlock()
			// Unit failures are reported, not propagated: one bad template
			// must not cancel the siblings.
			return nil
		})
	}
	_ = g.Wait()

	report.FinishedAt = time.Now().UTC()
	o.summarize(report)

	if path, err := o.persistReport(ctx, report); err != nil {
		o.logger.Warn("batch report not persisted", "batch_id", report.BatchID, "error", err)
	} else if path != "" {
		o.logger.Info("batch report written", "batch_id", report.BatchID, "path", path)
	}

	o.announce(ctx, report)

	o.logger.Info("batch run finished",
		"batch_id", report.BatchID,
		"state", report.State,
		"successful", report.Summary.Successful,
		"failed", report.Summary.Failed,
		"elapsed", report.FinishedAt.Sub(report.StartedAt))

	return report, nil
}

// runUnit generates one template type end to end. Panics are converted to
// unit errors.
func (o *Orchestrator) runUnit(ctx context.Context, templateType string, opts RunOptions) (unit core.UnitResult) {
	start := time.Now()
	unit = core.UnitResult{
		TemplateType: templateType,
		Status:       core.UnitError,
		Timestamp:    start.UTC(),
	}

	defer func() {
		unit.ElapsedSeconds = time.Since(start).Seconds()
		if r := recover(); r != nil {
			o.logger.Error("unit panicked", "template", templateType, "panic", r)
			unit.Status = core.UnitError
			unit.Error = fmt.Sprintf("panic: %v", r)
		}
		observability.RecordBatchUnit(unit.Status)
	}()

	if opts.Force && o.cache != nil {
		removed := o.cache.Clear(ctx, templateType)
		o.logger.Info("cache cleared for forced regeneration",
			"template", templateType, "entries", removed)
	}

	doc, err := o.assembler.Assemble(ctx, templateType, generator.AssembleOptions{Hardcoded: opts.Hardcoded})
	if err != nil {
		unit.Error = err.Error()
		return unit
	}

	docPath := o.store.DocumentPath(templateType, doc.Metadata.GeneratedAt)
	if err := o.store.WriteDocument(doc, docPath); err != nil {
		unit.Error = fmt.Sprintf("write document: %v", err)
		return unit
	}

	pdfPath := o.store.PDFPath(templateType, doc.Metadata.GeneratedAt)
	if err := o.renderer.RenderFile(doc, pdfPath); err != nil {
		unit.Error = fmt.Sprintf("render pdf: %v", err)
		return unit
	}

	if o.index != nil {
		rec := artifacts.DocumentRecord{
			ID:                 uuid.NewString(),
			TemplateType:       templateType,
			GeneratedAt:        doc.Metadata.GeneratedAt,
			Method:             string(doc.Metadata.GenerationMethod),
			JSONPath:           docPath,
			PDFPath:            pdfPath,
			TotalSections:      doc.GenerationStats.TotalSections,
			SuccessfulSections: doc.GenerationStats.SuccessfulSections,
			FailedSections:     doc.GenerationStats.FailedSections,
			CachedSections:     doc.GenerationStats.CachedSections,
		}
		if err := o.index.InsertDocument(ctx, rec); err != nil {
			o.logger.Warn("document not indexed", "template", templateType, "error", err)
		}
	}

	unit.Status = core.UnitSuccess
	unit.Error = ""
	unit.DocumentPath = docPath
	unit.PDFPath = pdfPath
	unit.Stats = doc.GenerationStats
	return unit
}

// summarize fills in the summary and terminal state from unit outcomes.
func (o *Orchestrator) summarize(report *core.BatchRunReport) {
	for _, unit := range report.Units {
		report.Summary.Total++
		if unit.Status == core.UnitSuccess {
			report.Summary.Successful++
		} else {
			report.Summary.Failed++
		}
	}
	report.Summary.TotalSeconds = report.FinishedAt.Sub(report.StartedAt).Seconds()

	switch {
	case report.Summary.Failed == 0:
		report.State = core.BatchCompleted
	case report.Summary.Successful == 0:
		report.State = core.BatchFailed
	default:
		report.State = core.BatchPartiallyFailed
	}
}

// persistReport writes the markdown report and indexes the run.
func (o *Orchestrator) persistReport(ctx context.Context, report *core.BatchRunReport) (string, error) {
	if o.store == nil {
		return "", nil
	}
	path, err := o.store.WriteReport(report.BatchID, Markdown(report))
	if err != nil {
		return "", err
	}
	if o.index != nil {
		if err := o.index.InsertBatchReport(ctx, report, path); err != nil {
			return path, err
		}
	}
	return path, nil
}

// announce sends the batch outcome over the notification channels.
func (o *Orchestrator) announce(ctx context.Context, report *core.BatchRunReport) {
	if o.notifier == nil || !o.notifier.Enabled() {
		return
	}

	severity := notify.SeveritySuccess
	switch report.State {
	case core.BatchFailed:
		severity = notify.SeverityFailure
	case core.BatchPartiallyFailed:
		severity = notify.SeverityPartial
	}

	o.notifier.Notify(ctx, notify.Event{
		Severity: severity,
		Subject: fmt.Sprintf("SOP batch %s: %d/%d templates generated",
			report.State, report.Summary.Successful, report.Summary.Total),
		Body: Markdown(report),
	})
}
