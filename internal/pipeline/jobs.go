package pipeline

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/report"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting"
	StatusSegmenting  JobStatus = "segmenting"
	StatusSummarizing JobStatus = "summarizing"
	StatusWriting     JobStatus = "writing"
	StatusCompleted   JobStatus = "completed"
	StatusPartial     JobStatus = "partial"
	StatusFailed      JobStatus = "failed"
	StatusCancelled   JobStatus = "cancelled"
)

// Terminal reports whether no further transitions happen from s.
func (s JobStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusPartial, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Job tracks the state of a single document summarization.
type Job struct {
	mu sync.Mutex

	ID       string        `json:"job_id"`
	Filename string        `json:"filename"`
	Language string        `json:"language"`
	Mode     document.Mode `json:"mode"`

	Status   JobStatus `json:"status"`
	Phase    string    `json:"phase"`
	Progress Progress  `json:"progress"`

	ContentHash string    `json:"content_hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Internal: not serialized.
	path            string
	result          *report.Report
	errors          []string
	cancel          context.CancelFunc
	cancelRequested bool
}

// Progress tracks processing progress.
type Progress struct {
	TotalRegions     int      `json:"total_regions"`
	RegionsProcessed int      `json:"regions_processed"`
	RegionsFailed    int      `json:"regions_failed"`
	Errors           []string `json:"errors"`
}

// NewJob creates a queued job for the uploaded file stored at path.
func NewJob(filename, path, lang string, mode document.Mode) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Filename:  filename,
		Language:  lang,
		Mode:      mode,
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: now,
		UpdatedAt: now,
		path:      path,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes finished jobs that have not changed within the TTL.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Terminal() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically. A terminal status is final.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return
	}
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// SetTotalRegions records the region count.
func (j *Job) SetTotalRegions(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalRegions = n
	j.UpdatedAt = time.Now()
}

// RegionDone counts a processed region and records its failure, if any.
func (j *Job) RegionDone(s document.Summary) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.RegionsProcessed++
	if !s.OK() {
		j.Progress.RegionsFailed++
		j.errors = append(j.errors, fmt.Sprintf("%s: %s", s.Ref, s.Failure.Message))
		j.Progress.Errors = j.errors
	}
	j.UpdatedAt = time.Now()
}

// Path returns the uploaded file location.
func (j *Job) Path() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.path
}

// SetResult stores the final report.
func (j *Job) SetResult(rep *report.Report) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = rep
	j.UpdatedAt = time.Now()
}

// Result returns the report once the job has finished.
func (j *Job) Result() (*report.Report, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if !j.Status.Terminal() || j.result == nil {
		return nil, false
	}
	return j.result, true
}

// start attaches the cancel func of a running job. It reports false if
// cancellation was requested while the job was queued.
func (j *Job) start(cancel context.CancelFunc) bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.cancelRequested {
		return false
	}
	j.cancel = cancel
	return true
}

// Cancel sets the cooperative cancellation signal. It reports false when
// the job has already finished.
func (j *Job) Cancel() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.Status.Terminal() {
		return false
	}
	j.cancelRequested = true
	if j.cancel != nil {
		j.cancel()
	}
	j.UpdatedAt = time.Now()
	return true
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID              string        `json:"job_id"`
	Filename        string        `json:"filename"`
	Language        string        `json:"language"`
	Mode            document.Mode `json:"mode"`
	Status          JobStatus     `json:"status"`
	Phase           string        `json:"phase"`
	Progress        Progress      `json:"progress"`
	CancelRequested bool          `json:"cancel_requested,omitempty"`
	ContentHash     string        `json:"content_hash,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.Progress.Errors))
	copy(errs, j.Progress.Errors)
	return JobSnapshot{
		ID:       j.ID,
		Filename: j.Filename,
		Language: j.Language,
		Mode:     j.Mode,
		Status:   j.Status,
		Phase:    j.Phase,
		Progress: Progress{
			TotalRegions:     j.Progress.TotalRegions,
			RegionsProcessed: j.Progress.RegionsProcessed,
			RegionsFailed:    j.Progress.RegionsFailed,
			Errors:           errs,
		},
		CancelRequested: j.cancelRequested,
		ContentHash:     j.ContentHash,
		CreatedAt:       j.CreatedAt,
		UpdatedAt:       j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
