package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sopforge/config"
	"sopforge/internal/artifacts"
	"sopforge/internal/core"
	"sopforge/internal/generator"
	"sopforge/internal/jobs"
)

// fakeRenderer writes placeholder bytes instead of a real PDF to keep
// handler tests fast.
type fakeRenderer struct{}

func (fakeRenderer) RenderFile(doc *core.DocumentModel, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte("%PDF-fake"), 0o644)
}

func testServer(t *testing.T, masterKey string) *Server {
	t.Helper()
	dir := t.TempDir()
	fs, err := artifacts.NewFS(dir)
	require.NoError(t, err)
	idx, err := artifacts.OpenIndex(filepath.Join(dir, "index.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	cfg := &config.Config{
		Server:     config.ServerConfig{Port: "0", MasterKey: masterKey},
		Generation: config.GenerationConfig{UseHardcodedContent: true, Version: "2.0"},
		Metrics:    config.MetricsConfig{Enabled: true, Endpoint: "/metrics"},
		Batch:      config.BatchConfig{TemplateTypes: config.DefaultTemplateTypes},
	}

	assembler := generator.NewAssembler(generator.NewSectionGenerator(nil, nil, nil), "2.0", nil)

	return New(Options{
		Config:    cfg,
		Assembler: assembler,
		Renderer:  fakeRenderer{},
		Store:     fs,
		Index:     idx,
		Providers: []string{"groq"},
	})
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, testServer(t, ""), http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	decode(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body["providers"], "groq")
}

func TestListTemplates(t *testing.T) {
	rec := doJSON(t, testServer(t, ""), http.MethodGet, "/v1/templates", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Templates []struct {
			Type        string `json:"type"`
			DisplayName string `json:"display_name"`
			Sections    int    `json:"sections"`
		} `json:"templates"`
	}
	decode(t, rec, &body)
	require.Len(t, body.Templates, 4)
	for _, tmpl := range body.Templates {
		assert.NotEmpty(t, tmpl.DisplayName, tmpl.Type)
		assert.Equal(t, 4, tmpl.Sections, tmpl.Type)
	}
}

func TestGetTemplate(t *testing.T) {
	s := testServer(t, "")

	rec := doJSON(t, s, http.MethodGet, "/v1/templates/restaurant", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "HACCP")

	rec = doJSON(t, s, http.MethodGet, "/v1/templates/unknown", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found_error")
}

func TestGenerationJobFlow(t *testing.T) {
	s := testServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/v1/generations", map[string]any{
		"template_type":         "restaurant",
		"use_hardcoded_content": true,
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	var job jobs.Job
	decode(t, rec, &job)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, jobs.StatusPending, job.Status)

	// Poll until the background worker completes.
	deadline := time.Now().Add(10 * time.Second)
	for {
		rec = doJSON(t, s, http.MethodGet, "/v1/generations/"+job.ID, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		decode(t, rec, &job)
		if job.Status.Terminal() {
			break
		}
		require.True(t, time.Now().Before(deadline), "job did not finish: %+v", job)
		time.Sleep(20 * time.Millisecond)
	}

	require.Equal(t, jobs.StatusCompleted, job.Status)
	assert.Equal(t, 100, job.Progress)
	require.NotNil(t, job.Result)
	assert.FileExists(t, job.Result.DocumentPath)
	assert.FileExists(t, job.Result.PDFPath)
	assert.Equal(t, 4, job.Result.Stats.TotalSections)

	// The generated document is visible through the documents API.
	rec = doJSON(t, s, http.MethodGet, "/v1/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var docs struct {
		Documents []artifacts.DocumentRecord `json:"documents"`
	}
	decode(t, rec, &docs)
	require.Len(t, docs.Documents, 1)
	assert.Equal(t, "restaurant", docs.Documents[0].TemplateType)

	rec = doJSON(t, s, http.MethodGet, "/v1/documents/"+docs.Documents[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "generation_stats")
}

func TestCreateGenerationValidation(t *testing.T) {
	s := testServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/v1/generations", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "template_type is required")
}

func TestCancelGeneration(t *testing.T) {
	s := testServer(t, "")

	rec := doJSON(t, s, http.MethodPost, "/v1/generations", map[string]any{"template_type": "restaurant"})
	require.Equal(t, http.StatusAccepted, rec.Code)
	var job jobs.Job
	decode(t, rec, &job)

	rec = doJSON(t, s, http.MethodDelete, "/v1/generations/"+job.ID, nil)
	// The worker may already have completed in the background; both
	// outcomes are legal, but an unknown id is not.
	assert.Contains(t, []int{http.StatusOK, http.StatusBadRequest}, rec.Code)

	rec = doJSON(t, s, http.MethodDelete, "/v1/generations/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetGenerationNotFound(t *testing.T) {
	rec := doJSON(t, testServer(t, ""), http.MethodGet, "/v1/generations/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMasterKeyAuth(t *testing.T) {
	s := testServer(t, "sk-master")

	// Health stays open.
	rec := doJSON(t, s, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// API routes require the key.
	rec = doJSON(t, s, http.MethodGet, "/v1/templates", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer sk-master")
	out := httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	assert.Equal(t, http.StatusOK, out.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/templates", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	out = httptest.NewRecorder()
	s.Handler().ServeHTTP(out, req)
	assert.Equal(t, http.StatusUnauthorized, out.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := doJSON(t, testServer(t, ""), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestListDocumentsLimitValidation(t *testing.T) {
	rec := doJSON(t, testServer(t, ""), http.MethodGet, "/v1/documents?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
