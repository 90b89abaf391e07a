package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dgallion1/docsumm/internal/document"
	"github.com/dgallion1/docsumm/internal/report"
)

func stubWorker(run func(ctx context.Context, job *Job) (*report.Report, error)) *Worker {
	w := NewWorker(testConfig(""), Deps{}, quietLog())
	w.run = func(ctx context.Context, job *Job, _ *slog.Logger) (*report.Report, error) {
		return run(ctx, job)
	}
	return w
}

func waitFor(t *testing.T, job *Job, want JobStatus) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if job.Snapshot().Status == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("job status = %q, want %q", job.Snapshot().Status, want)
}

func TestWorker_ProcessCompletesAndRemovesUpload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	job := NewJob("book.pdf", path, "en", document.ModeGeneral)
	w := stubWorker(func(context.Context, *Job) (*report.Report, error) {
		return &report.Report{Status: string(StatusPartial)}, nil
	})

	w.Process(context.Background(), job)

	if job.Snapshot().Status != StatusPartial {
		t.Errorf("status = %q", job.Snapshot().Status)
	}
	if _, ok := job.Result(); !ok {
		t.Error("expected result")
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("upload should be removed, stat err = %v", err)
	}
}

func TestWorker_ProcessFatalError(t *testing.T) {
	job := NewJob("scan.pdf", "", "en", document.ModeGeneral)
	w := stubWorker(func(context.Context, *Job) (*report.Report, error) {
		return nil, errors.New("no extractable text")
	})

	w.Process(context.Background(), job)

	snap := job.Snapshot()
	if snap.Status != StatusFailed || len(snap.Progress.Errors) != 1 {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestWorker_SkipsJobCancelledWhileQueued(t *testing.T) {
	job := NewJob("book.pdf", "", "en", document.ModeGeneral)
	job.Cancel()
	ran := false
	w := stubWorker(func(context.Context, *Job) (*report.Report, error) {
		ran = true
		return nil, nil
	})

	w.Process(context.Background(), job)

	if ran {
		t.Error("cancelled job should not run")
	}
	if job.Snapshot().Status != StatusCancelled {
		t.Errorf("status = %q", job.Snapshot().Status)
	}
}

func TestOrchestrator_CancelRunningJob(t *testing.T) {
	cfg := testConfig("")
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 4
	cfg.JobTTL = time.Hour
	o := NewOrchestrator(cfg, Deps{}, quietLog())

	started := make(chan struct{})
	o.newWorker = func() *Worker {
		return stubWorker(func(ctx context.Context, job *Job) (*report.Report, error) {
			job.SetStatus(StatusSummarizing, "summarizing regions")
			close(started)
			<-ctx.Done()
			return &report.Report{Status: string(StatusCancelled)}, ErrCancelled
		})
	}
	o.Start(context.Background())
	defer o.Stop()

	job := NewJob("book.pdf", "", "en", document.ModeGeneral)
	if err := o.Submit(job); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	<-started
	if o.GetJob(job.ID) != job {
		t.Fatal("job not registered")
	}
	if !job.Cancel() {
		t.Fatal("cancel should be accepted for a running job")
	}
	waitFor(t, job, StatusCancelled)
	if rep, ok := job.Result(); !ok || rep.Status != string(StatusCancelled) {
		t.Errorf("result = %v, %v", rep, ok)
	}
}

func TestOrchestrator_QueueFull(t *testing.T) {
	cfg := testConfig("")
	cfg.MaxQueueSize = 1
	o := NewOrchestrator(cfg, Deps{}, quietLog())
	// Not started, so nothing drains the queue.
	if err := o.Submit(NewJob("a.pdf", "", "en", document.ModeGeneral)); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second := NewJob("b.pdf", "", "en", document.ModeGeneral)
	if err := o.Submit(second); err == nil {
		t.Fatal("expected queue full error")
	}
	if second.Snapshot().Status != StatusFailed {
		t.Errorf("status = %q", second.Snapshot().Status)
	}
}

func TestOrchestrator_StopRemovesUploads(t *testing.T) {
	cfg := testConfig("")
	cfg.WorkerCount = 1
	cfg.MaxQueueSize = 4
	o := NewOrchestrator(cfg, Deps{}, quietLog())

	started := make(chan struct{}, 1)
	o.newWorker = func() *Worker {
		return stubWorker(func(ctx context.Context, job *Job) (*report.Report, error) {
			started <- struct{}{}
			<-ctx.Done()
			return &report.Report{Status: string(StatusCancelled)}, ErrCancelled
		})
	}
	o.Start(context.Background())

	dir := t.TempDir()
	var jobs []*Job
	for _, name := range []string{"running.pdf", "queued.pdf"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		job := NewJob(name, path, "en", document.ModeGeneral)
		if err := o.Submit(job); err != nil {
			t.Fatalf("Submit: %v", err)
		}
		jobs = append(jobs, job)
		if len(jobs) == 1 {
			<-started
		}
	}

	o.Stop()
	o.Stop() // second call is a no-op

	for _, job := range jobs {
		if _, err := os.Stat(job.Path()); !errors.Is(err, os.ErrNotExist) {
			t.Errorf("%s: upload should be removed, stat err = %v", job.Filename, err)
		}
		if got := job.Snapshot().Status; got != StatusCancelled {
			t.Errorf("%s: status = %q, want cancelled", job.Filename, got)
		}
	}
}
