package artifacts

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"sopforge/internal/core"
)

// DocumentRecord is one indexed document.
type DocumentRecord struct {
	ID                 string    `json:"id"`
	TemplateType       string    `json:"template_type"`
	GeneratedAt        time.Time `json:"generated_at"`
	Method             string    `json:"generation_method"`
	JSONPath           string    `json:"json_path"`
	PDFPath            string    `json:"pdf_path,omitempty"`
	TotalSections      int       `json:"total_sections"`
	SuccessfulSections int       `json:"successful_sections"`
	FailedSections     int       `json:"failed_sections"`
	CachedSections     int       `json:"cached_sections"`
}

// BatchRecord is one indexed batch run.
type BatchRecord struct {
	BatchID    string    `json:"batch_id"`
	State      string    `json:"state"`
	StartedAt  time.Time `json:"start_time"`
	FinishedAt time.Time `json:"end_time"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
	ReportPath string    `json:"report_path,omitempty"`
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id             TEXT PRIMARY KEY,
	template_type  TEXT NOT NULL,
	generated_at   TIMESTAMP NOT NULL,
	method         TEXT NOT NULL,
	json_path      TEXT NOT NULL,
	pdf_path       TEXT,
	total_sections      INTEGER NOT NULL,
	successful_sections INTEGER NOT NULL,
	failed_sections     INTEGER NOT NULL,
	cached_sections     INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_type ON documents(template_type, generated_at DESC);

CREATE TABLE IF NOT EXISTS batch_reports (
	batch_id    TEXT PRIMARY KEY,
	state       TEXT NOT NULL,
	started_at  TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	successful  INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	report_path TEXT,
	payload     TEXT NOT NULL
);
`

// Index is the SQLite artifact index.
type Index struct {
	db *sql.DB
}

// OpenIndex opens (creating if needed) the index database at path. WAL mode
// keeps readers unblocked while batch runs write.
func OpenIndex(path string) (*Index, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Index{db: db}, nil
}

// Close releases the database handle.
func (i *Index) Close() error {
	return i.db.Close()
}

// InsertDocument records a generated document.
func (i *Index) InsertDocument(ctx context.Context, rec DocumentRecord) error {
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO documents (id, template_type, generated_at, method, json_path, pdf_path,
			total_sections, successful_sections, failed_sections, cached_sections)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.TemplateType, rec.GeneratedAt, rec.Method, rec.JSONPath, rec.PDFPath,
		rec.TotalSections, rec.SuccessfulSections, rec.FailedSections, rec.CachedSections)
	return err
}

// GetDocument looks up one document by id.
func (i *Index) GetDocument(ctx context.Context, id string) (*DocumentRecord, error) {
	row := i.db.QueryRowContext(ctx, `
		SELECT id, template_type, generated_at, method, json_path, pdf_path,
			total_sections, successful_sections, failed_sections, cached_sections
		FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListDocuments returns the most recent documents, optionally filtered by
// template type.
func (i *Index) ListDocuments(ctx context.Context, templateType string, limit int) ([]DocumentRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, template_type, generated_at, method, json_path, pdf_path,
			total_sections, successful_sections, failed_sections, cached_sections
		FROM documents`
	args := []any{}
	if templateType != "" {
		query += " WHERE template_type = ?"
		args = append(args, templateType)
	}
	query += " ORDER BY generated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := i.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DocumentRecord
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*DocumentRecord, error) {
	var rec DocumentRecord
	var pdfPath sql.NullString
	err := s.Scan(&rec.ID, &rec.TemplateType, &rec.GeneratedAt, &rec.Method,
		&rec.JSONPath, &pdfPath,
		&rec.TotalSections, &rec.SuccessfulSections, &rec.FailedSections, &rec.CachedSections)
	if err != nil {
		return nil, err
	}
	rec.PDFPath = pdfPath.String
	return &rec, nil
}

// InsertBatchReport records a batch run with its full report payload.
func (i *Index) InsertBatchReport(ctx context.Context, report *core.BatchRunReport, reportPath string) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	_, err = i.db.ExecContext(ctx, `
		INSERT INTO batch_reports (batch_id, state, started_at, finished_at, successful, failed, report_path, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.BatchID, string(report.State), report.StartedAt, report.FinishedAt,
		report.Summary.Successful, report.Summary.Failed, reportPath, string(payload))
	return err
}

// ListBatchReports returns the most recent batch runs.
func (i *Index) ListBatchReports(ctx context.Context, limit int) ([]BatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := i.db.QueryContext(ctx, `
		SELECT batch_id, state, started_at, finished_at, successful, failed, report_path
		FROM batch_reports ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BatchRecord
	for rows.Next() {
		var rec BatchRecord
		var reportPath sql.NullString
		if err := rows.Scan(&rec.BatchID, &rec.State, &rec.StartedAt, &rec.FinishedAt,
			&rec.Successful, &rec.Failed, &reportPath); err != nil {
			return nil, err
		}
		rec.ReportPath = reportPath.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// GetBatchReport returns the full stored report for a batch run.
func (i *Index) GetBatchReport(ctx context.Context, batchID string) (*core.BatchRunReport, error) {
	var payload string
	err := i.db.QueryRowContext(ctx,
		`SELECT payload FROM batch_reports WHERE batch_id = ?`, batchID).Scan(&payload)
	if err != nil {
		return nil, err
	}
	var report core.BatchRunReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, err
	}
	return &report, nil
}
