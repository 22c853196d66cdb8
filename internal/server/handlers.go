package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"sopforge/internal/artifacts"
	"sopforge/internal/compliance"
	"sopforge/internal/core"
	"sopforge/internal/generator"
	"sopforge/internal/jobs"
	"sopforge/internal/pipeline"
)

// createGenerationRequest is the POST /v1/generations payload.
type createGenerationRequest struct {
	TemplateType        string `json:"template_type"`
	UseHardcodedContent bool   `json:"use_hardcoded_content"`
}

func (s *Server) handleCreateGeneration(c echo.Context) error {
	var req createGenerationRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	if req.TemplateType == "" {
		return s.writeError(c, core.NewInvalidRequestError("template_type is required", nil))
	}

	job := s.jobs.Create(req.TemplateType)
	go s.runGeneration(job.ID, req)

	return c.JSON(http.StatusAccepted, job)
}

// runGeneration is the job worker: assemble, persist, render, index. It
// runs detached from the request; the job context is cancelled by DELETE.
func (s *Server) runGeneration(jobID string, req createGenerationRequest) {
	ctx, ok := s.jobs.Start(context.Background(), jobID)
	if !ok {
		// Cancelled before the worker got scheduled.
		return
	}

	doc, err := s.assembler.Assemble(ctx, req.TemplateType, generator.AssembleOptions{
		Hardcoded: req.UseHardcodedContent || s.cfg.Generation.UseHardcodedContent,
		Progress: func(done, total int, section string) {
			s.jobs.SetProgress(jobID, done*90/total, section)
		},
	})
	if err != nil {
		s.jobs.Fail(jobID, err)
		return
	}
	if ctx.Err() != nil {
		return
	}

	docPath := s.store.DocumentPath(req.TemplateType, doc.Metadata.GeneratedAt)
	if err := s.store.WriteDocument(doc, docPath); err != nil {
		s.jobs.Fail(jobID, err)
		return
	}

	s.jobs.SetProgress(jobID, 95, "rendering PDF")
	pdfPath := s.store.PDFPath(req.TemplateType, doc.Metadata.GeneratedAt)
	if err := s.renderer.RenderFile(doc, pdfPath); err != nil {
		s.jobs.Fail(jobID, err)
		return
	}

	docID := uuid.NewString()
	if s.index != nil {
		rec := artifacts.DocumentRecord{
			ID:                 docID,
			TemplateType:       req.TemplateType,
			GeneratedAt:        doc.Metadata.GeneratedAt,
			Method:             string(doc.Metadata.GenerationMethod),
			JSONPath:           docPath,
			PDFPath:            pdfPath,
			TotalSections:      doc.GenerationStats.TotalSections,
			SuccessfulSections: doc.GenerationStats.SuccessfulSections,
			FailedSections:     doc.GenerationStats.FailedSections,
			CachedSections:     doc.GenerationStats.CachedSections,
		}
		if err := s.index.InsertDocument(ctx, rec); err != nil {
			s.logger.Warn("document not indexed", "job", jobID, "error", err)
		}
	}

	s.jobs.Complete(jobID, jobs.Result{
		DocumentID:   docID,
		DocumentPath: docPath,
		PDFPath:      pdfPath,
		Stats:        doc.GenerationStats,
	})
}

func (s *Server) handleGetGeneration(c echo.Context) error {
	job, ok := s.jobs.Get(c.Param("id"))
	if !ok {
		return s.writeError(c, core.NewNotFoundError("job not found"))
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleListGenerations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"jobs": s.jobs.List()})
}

func (s *Server) handleCancelGeneration(c echo.Context) error {
	id := c.Param("id")
	job, ok := s.jobs.Cancel(id)
	if !ok {
		if _, exists := s.jobs.Get(id); !exists {
			return s.writeError(c, core.NewNotFoundError("job not found"))
		}
		return s.writeError(c, core.NewInvalidRequestError("job already finished", nil))
	}
	return c.JSON(http.StatusOK, job)
}

func (s *Server) handleListTemplates(c echo.Context) error {
	type templateSummary struct {
		Type        string `json:"type"`
		DisplayName string `json:"display_name"`
		Industry    string `json:"industry"`
		Sections    int    `json:"sections"`
	}

	var out []templateSummary
	for _, typ := range compliance.Types() {
		tmpl, err := compliance.Load(typ)
		if err != nil {
			return s.writeError(c, err)
		}
		out = append(out, templateSummary{
			Type:        tmpl.Type,
			DisplayName: tmpl.DisplayName,
			Industry:    tmpl.Industry,
			Sections:    len(tmpl.Sections),
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"templates": out})
}

func (s *Server) handleGetTemplate(c echo.Context) error {
	typ := c.Param("type")
	if !compliance.Known(typ) {
		return s.writeError(c, core.NewNotFoundError("unknown template type: "+typ))
	}
	tmpl, err := compliance.Load(typ)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, tmpl)
}

func (s *Server) handleListDocuments(c echo.Context) error {
	if s.index == nil {
		return s.writeError(c, core.NewProviderError("", http.StatusServiceUnavailable, "document index not configured", nil))
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 500 {
			return s.writeError(c, core.NewInvalidRequestError("limit must be an integer between 1 and 500", err))
		}
		limit = n
	}
	docs, err := s.index.ListDocuments(c.Request().Context(), c.QueryParam("template_type"), limit)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"documents": docs})
}

func (s *Server) handleGetDocument(c echo.Context) error {
	if s.index == nil {
		return s.writeError(c, core.NewProviderError("", http.StatusServiceUnavailable, "document index not configured", nil))
	}

	rec, err := s.index.GetDocument(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, core.NewNotFoundError("document not found"))
	}

	doc, err := s.store.ReadDocument(rec.JSONPath)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"record": rec, "document": doc})
}

// createBatchRequest is the POST /v1/batches payload.
type createBatchRequest struct {
	TemplateTypes []string `json:"template_types"`
	Force         bool     `json:"force"`
	Sequential    bool     `json:"sequential"`
}

func (s *Server) handleCreateBatch(c echo.Context) error {
	if s.orch == nil {
		return s.writeError(c, core.NewProviderError("", http.StatusServiceUnavailable, "batch pipeline not configured", nil))
	}

	var req createBatchRequest
	if err := c.Bind(&req); err != nil {
		return s.writeError(c, core.NewInvalidRequestError("invalid request body", err))
	}
	types := req.TemplateTypes
	if len(types) == 0 {
		types = s.cfg.Batch.TemplateTypes
	}

	batchID := pipeline.NewBatchID()
	go func() {
		_, err := s.orch.Run(context.Background(), pipeline.RunOptions{
			TemplateTypes: types,
			Force:         req.Force,
			Sequential:    req.Sequential,
			BatchID:       batchID,
		})
		if err != nil {
			s.logger.Error("batch run failed", "batch_id", batchID, "error", err)
		}
	}()

	return c.JSON(http.StatusAccepted, map[string]any{
		"batch_id":       batchID,
		"template_types": types,
	})
}

func (s *Server) handleListBatches(c echo.Context) error {
	if s.index == nil {
		return s.writeError(c, core.NewProviderError("", http.StatusServiceUnavailable, "document index not configured", nil))
	}
	batches, err := s.index.ListBatchReports(c.Request().Context(), 20)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"batches": batches})
}

func (s *Server) handleGetBatch(c echo.Context) error {
	if s.index == nil {
		return s.writeError(c, core.NewProviderError("", http.StatusServiceUnavailable, "document index not configured", nil))
	}
	report, err := s.index.GetBatchReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return s.writeError(c, core.NewNotFoundError("batch not found"))
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":    "ok",
		"providers": s.providers,
		"templates": compliance.Types(),
		"version":   s.cfg.Generation.Version,
	})
}
