// Package artifacts persists generation outputs: document JSON, rendered
// PDFs and batch reports on the filesystem, with a SQLite index for
// lookups.
package artifacts

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"sopforge/internal/core"
)

// timestampLayout is the layout embedded in artifact filenames.
const timestampLayout = "20060102_150405"

// FS lays out artifacts under a root directory:
//
//	root/templates/<type>_<timestamp>.json
//	root/pdfs/<type>_<timestamp>.pdf
//	root/reports/batch_report_<id>.md
type FS struct {
	root string
}

// NewFS creates the artifact directories under root.
func NewFS(root string) (*FS, error) {
	for _, sub := range []string{"templates", "pdfs", "reports"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, err
		}
	}
	return &FS{root: root}, nil
}

// Root returns the artifact root directory.
func (f *FS) Root() string { return f.root }

// DocumentPath returns the JSON path for a document generated at ts.
func (f *FS) DocumentPath(templateType string, ts time.Time) string {
	return filepath.Join(f.root, "templates", templateType+"_"+ts.Format(timestampLayout)+".json")
}

// PDFPath returns the PDF path for a document generated at ts.
func (f *FS) PDFPath(templateType string, ts time.Time) string {
	return filepath.Join(f.root, "pdfs", templateType+"_"+ts.Format(timestampLayout)+".pdf")
}

// ReportPath returns the markdown path for a batch report.
func (f *FS) ReportPath(batchID string) string {
	return filepath.Join(f.root, "reports", "batch_report_"+batchID+".md")
}

// WriteDocument serializes the document as indented JSON at path.
func (f *FS) WriteDocument(doc *core.DocumentModel, path string) error {
	raw, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

// ReadDocument loads a document JSON from path.
func (f *FS) ReadDocument(path string) (*core.DocumentModel, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc core.DocumentModel
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteReport writes the markdown batch report and returns its path.
func (f *FS) WriteReport(batchID, markdown string) (string, error) {
	path := f.ReportPath(batchID)
	if err := os.WriteFile(path, []byte(markdown), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
