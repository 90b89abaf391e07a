package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/dgallion1/docsumm/internal/config"
	"github.com/dgallion1/docsumm/internal/report"
)

// Worker processes a single document job.
type Worker struct {
	cfg  config.Config
	deps Deps
	log  *slog.Logger

	// run defaults to a Runner built for the job's language.
	run func(ctx context.Context, job *Job, log *slog.Logger) (*report.Report, error)
}

func NewWorker(cfg config.Config, deps Deps, log *slog.Logger) *Worker {
	w := &Worker{cfg: cfg, deps: deps, log: log}
	w.run = func(ctx context.Context, job *Job, log *slog.Logger) (*report.Report, error) {
		runner := NewRunner(w.cfg, job.Language, w.deps, log)
		runner.name = job.Filename
		return runner.Run(ctx, job.Path(), job.Mode, job)
	}
	return w
}

// Process runs the summarization pipeline for a job and removes the
// uploaded file afterwards.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "file", job.Filename)
	defer removeUpload(job, log)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if !job.start(cancel) {
		log.Info("job cancelled before start")
		job.SetStatus(StatusCancelled, "cancelled")
		return
	}

	rep, err := w.run(jobCtx, job, log)
	switch {
	case errors.Is(err, ErrCancelled):
		job.SetResult(rep)
		job.SetStatus(StatusCancelled, "cancelled")
	case err != nil && rep == nil:
		log.Error("summarization failed", "error", err)
		job.AddError(err.Error())
		job.SetStatus(StatusFailed, "failed")
	case err != nil:
		// The run finished but the report could not be written.
		log.Error("report write failed", "error", err)
		job.AddError(err.Error())
		job.SetResult(rep)
		job.SetStatus(StatusFailed, "writing")
	default:
		job.SetResult(rep)
		job.SetStatus(JobStatus(rep.Status), "done")
	}
}

func removeUpload(job *Job, log *slog.Logger) {
	if job.Path() == "" {
		return
	}
	if err := os.Remove(job.Path()); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn("remove upload failed", "job_id", job.ID, "error", err)
	}
}
