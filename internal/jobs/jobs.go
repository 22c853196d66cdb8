// Package jobs tracks asynchronous generation jobs. The store is
// in-memory: jobs are request-scoped bookkeeping, not durable artifacts.
// Each job has a single writer (the worker goroutine that runs it); reads
// return copies so handlers can serialize without holding the lock.
package jobs

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"sopforge/internal/core"
)

// Status of a job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

// Result carries the artifacts of a completed job.
type Result struct {
	DocumentID   string               `json:"document_id"`
	DocumentPath string               `json:"document_path"`
	PDFPath      string               `json:"pdf_path,omitempty"`
	Stats        core.GenerationStats `json:"stats"`
}

// Job is one asynchronous generation request.
type Job struct {
	ID           string    `json:"job_id"`
	TemplateType string    `json:"template_type"`
	Status       Status    `json:"status"`
	Progress     int       `json:"progress"`
	CurrentStep  string    `json:"current_step,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Result       *Result   `json:"result,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// Store holds jobs in memory.
type Store struct {
	mu      sync.RWMutex
	jobs    map[string]*Job
	cancels map[string]context.CancelFunc
}

// NewStore creates an empty job store.
func NewStore() *Store {
	return &Store{
		jobs:    make(map[string]*Job),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Create registers a new pending job and returns its snapshot.
func (s *Store) Create(templateType string) Job {
	now := time.Now().UTC()
	job := &Job{
		ID:           uuid.NewString(),
		TemplateType: templateType,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return *job
}

// Start transitions a job to processing and returns a context the worker
// must run under; Cancel cancels it. Starting an already-cancelled job
// returns false.
func (s *Store) Start(ctx context.Context, id string) (context.Context, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status != StatusPending {
		return nil, false
	}

	jobCtx, cancel := context.WithCancel(ctx)
	s.cancels[id] = cancel
	job.Status = StatusProcessing
	job.UpdatedAt = time.Now().UTC()
	return jobCtx, true
}

// Get returns a snapshot of the job.
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// List returns snapshots of all jobs, newest first.
func (s *Store) List() []Job {
	s.mu.RLock()
	out := make([]Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SetProgress updates progress on a processing job.
func (s *Store) SetProgress(id string, percent int, step string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusProcessing {
		return
	}
	job.Progress = percent
	job.CurrentStep = step
	job.UpdatedAt = time.Now().UTC()
}

// Complete marks a job successful. A job that was cancelled while the
// worker finished stays cancelled.
func (s *Store) Complete(id string, result Result) {
	s.finish(id, StatusCompleted, &result, "")
}

// Fail marks a job failed with the given error.
func (s *Store) Fail(id string, err error) {
	msg := "generation failed"
	if err != nil {
		msg = err.Error()
	}
	s.finish(id, StatusFailed, nil, msg)
}

func (s *Store) finish(id string, status Status, result *Result, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return
	}

	job.Status = status
	job.Result = result
	job.Error = errMsg
	if status == StatusCompleted {
		job.Progress = 100
		job.CurrentStep = ""
	}
	job.UpdatedAt = time.Now().UTC()
	s.releaseCancel(id)
}

// Cancel requests cancellation. Only pending or processing jobs can be
// cancelled; the worker context is cancelled so in-flight provider calls
// stop.
func (s *Store) Cancel(id string) (Job, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok || job.Status.Terminal() {
		return Job{}, false
	}

	job.Status = StatusCancelled
	job.UpdatedAt = time.Now().UTC()
	s.releaseCancel(id)
	return *job, true
}

// releaseCancel invokes and drops the stored cancel func. Caller holds the
// lock.
func (s *Store) releaseCancel(id string) {
	if cancel, ok := s.cancels[id]; ok {
		cancel()
		delete(s.cancels, id)
	}
}
