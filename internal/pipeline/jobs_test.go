package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/report"
)

func TestContentHashHex_Consistency(t *testing.T) {
	data := []byte("hello world")
	h1 := ContentHashHex(data)
	h2 := ContentHashHex(data)
	if h1 != h2 {
		t.Errorf("expected identical hashes, got %q and %q", h1, h2)
	}
	// SHA-256 of "hello world" is well-known.
	want := "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9"
	if h1 != want {
		t.Errorf("expected hash %q, got %q", want, h1)
	}
}

func TestContentHashHex_EmptyInput(t *testing.T) {
	h := ContentHashHex([]byte{})
	want := "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if h != want {
		t.Errorf("expected hash %q, got %q", want, h)
	}
}

func TestNewJob(t *testing.T) {
	job := NewJob("paper.pdf", "/tmp/x.pdf", "bn", document.ModeAcademic)
	if _, err := uuid.Parse(job.ID); err != nil {
		t.Errorf("job id %q is not a uuid: %v", job.ID, err)
	}
	if job.Status != StatusQueued || job.Path() != "/tmp/x.pdf" {
		t.Errorf("job = %+v", job.Snapshot())
	}
	if other := NewJob("a.pdf", "", "en", document.ModeGeneral); other.ID == job.ID {
		t.Error("expected unique job ids")
	}
}

func TestJob_StateTransitions(t *testing.T) {
	job := &Job{
		ID:        "test-1",
		Status:    StatusQueued,
		Phase:     "queued",
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	transitions := []struct {
		status JobStatus
		phase  string
	}{
		{StatusExtracting, "extracting text"},
		{StatusSegmenting, "detecting structure"},
		{StatusSummarizing, "summarizing regions"},
		{StatusWriting, "writing report"},
		{StatusCompleted, "done"},
	}

	for _, tr := range transitions {
		before := job.UpdatedAt
		// Small sleep to ensure time difference is detectable.
		time.Sleep(time.Millisecond)
		job.SetStatus(tr.status, tr.phase)

		if job.Status != tr.status {
			t.Errorf("expected status %q, got %q", tr.status, job.Status)
		}
		if job.Phase != tr.phase {
			t.Errorf("expected phase %q, got %q", tr.phase, job.Phase)
		}
		if !job.UpdatedAt.After(before) {
			t.Errorf("expected UpdatedAt to advance after SetStatus(%q)", tr.status)
		}
	}
}

func TestJob_TerminalStatusIsFinal(t *testing.T) {
	job := &Job{ID: "final", Status: StatusSummarizing, UpdatedAt: time.Now()}
	job.SetStatus(StatusCancelled, "cancelled")
	job.SetStatus(StatusWriting, "writing report")
	if job.Status != StatusCancelled {
		t.Errorf("expected status %q, got %q", StatusCancelled, job.Status)
	}
}

func TestJob_AddError(t *testing.T) {
	job := &Job{ID: "err-test", UpdatedAt: time.Now()}
	job.AddError("extract failed")
	job.AddError("write failed")

	snap := job.Snapshot()
	if len(snap.Progress.Errors) != 2 {
		t.Fatalf("expected 2 errors, got %d", len(snap.Progress.Errors))
	}
	if snap.Progress.Errors[0] != "extract failed" {
		t.Errorf("expected first error %q, got %q", "extract failed", snap.Progress.Errors[0])
	}
}

func TestJob_RegionProgress(t *testing.T) {
	job := &Job{ID: "regions", UpdatedAt: time.Now()}
	job.SetTotalRegions(3)
	job.RegionDone(document.Succeeded("Chapter 1", "ok", "en"))
	job.RegionDone(document.Failed("Chapter 2", "en", document.SummaryFailed, errors.New("status 500")))

	snap := job.Snapshot()
	if snap.Progress.TotalRegions != 3 || snap.Progress.RegionsProcessed != 2 || snap.Progress.RegionsFailed != 1 {
		t.Errorf("progress = %+v", snap.Progress)
	}
	if len(snap.Progress.Errors) != 1 || snap.Progress.Errors[0] != "Chapter 2: status 500" {
		t.Errorf("errors = %q", snap.Progress.Errors)
	}
}

func TestJob_SnapshotErrorsNotNil(t *testing.T) {
	// Snapshot should always return non-nil errors slice.
	job := &Job{ID: "snap-test", UpdatedAt: time.Now()}
	snap := job.Snapshot()
	if snap.Progress.Errors == nil {
		t.Error("expected non-nil errors slice in snapshot")
	}
	if len(snap.Progress.Errors) != 0 {
		t.Errorf("expected empty errors, got %d", len(snap.Progress.Errors))
	}
}

func TestJob_ResultOnlyWhenFinished(t *testing.T) {
	job := &Job{ID: "res", Status: StatusSummarizing, UpdatedAt: time.Now()}
	job.SetResult(&report.Report{Status: "completed"})
	if _, ok := job.Result(); ok {
		t.Error("result should not be available while running")
	}
	job.SetStatus(StatusCompleted, "done")
	if rep, ok := job.Result(); !ok || rep.Status != "completed" {
		t.Errorf("result = %v, %v", rep, ok)
	}
}

func TestJob_Cancel(t *testing.T) {
	job := &Job{ID: "cancel", Status: StatusSummarizing}
	called := false
	if !job.start(func() { called = true }) {
		t.Fatal("start should succeed")
	}
	if !job.Cancel() || !called {
		t.Error("expected cancel func to be invoked")
	}

	queued := &Job{ID: "queued", Status: StatusQueued}
	queued.Cancel()
	if queued.start(func() {}) {
		t.Error("a job cancelled while queued must not start")
	}

	done := &Job{ID: "done", Status: StatusCompleted}
	if done.Cancel() {
		t.Error("finished jobs cannot be cancelled")
	}
}

func TestJobStore_PutGet(t *testing.T) {
	store := NewJobStore(time.Hour)
	job := &Job{ID: "store-1", UpdatedAt: time.Now()}
	store.Put(job)

	got := store.Get("store-1")
	if got == nil {
		t.Fatal("expected to get job back")
	}
	if got.ID != "store-1" {
		t.Errorf("expected ID %q, got %q", "store-1", got.ID)
	}
}

func TestJobStore_GetMissing(t *testing.T) {
	store := NewJobStore(time.Hour)
	if store.Get("nonexistent") != nil {
		t.Error("expected nil for missing job")
	}
}

func TestJobStore_TTLCleanup(t *testing.T) {
	store := NewJobStore(50 * time.Millisecond)

	expired := &Job{ID: "old", Status: StatusCompleted, UpdatedAt: time.Now()}
	running := &Job{ID: "running", Status: StatusSummarizing, UpdatedAt: time.Now()}
	store.Put(expired)
	store.Put(running)

	// Wait for the TTL to pass.
	time.Sleep(100 * time.Millisecond)

	// Add a fresh job.
	fresh := &Job{ID: "new", Status: StatusCompleted, UpdatedAt: time.Now()}
	store.Put(fresh)

	store.Cleanup()

	if store.Get("old") != nil {
		t.Error("expected expired job to be cleaned up")
	}
	if store.Get("running") == nil {
		t.Error("expected running job to survive cleanup")
	}
	if store.Get("new") == nil {
		t.Error("expected fresh job to survive cleanup")
	}
}

func TestJobStore_CleanupEmpty(t *testing.T) {
	store := NewJobStore(time.Hour)
	// Should not panic on empty store.
	store.Cleanup()
}
