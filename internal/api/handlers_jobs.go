package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docsumm/internal/pipeline"
	"github.com/dgallion1/docsumm/internal/report"
)

func (s *Server) job(w http.ResponseWriter, r *http.Request) *pipeline.Job {
	job := s.jobs.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
	}
	return job
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

func (s *Server) handleJobCancel(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	if !job.Cancel() {
		jsonError(w, "job already finished", http.StatusConflict)
		return
	}
	s.log.Info("job cancel requested", "job_id", job.ID)
	snap := job.Snapshot()
	writeJSON(w, http.StatusAccepted, map[string]any{
		"job_id":           snap.ID,
		"status":           snap.Status,
		"cancel_requested": true,
	})
}

func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	job := s.job(w, r)
	if job == nil {
		return
	}
	rep, ok := job.Result()
	if !ok {
		snap := job.Snapshot()
		if snap.Status.Terminal() {
			// Failed before a report existed.
			writeJSON(w, http.StatusOK, map[string]any{
				"job_id": snap.ID,
				"status": snap.Status,
				"errors": snap.Progress.Errors,
			})
			return
		}
		jsonError(w, "job is still running", http.StatusConflict)
		return
	}
	data, err := report.MarshalJSON(rep)
	if err != nil {
		jsonError(w, "encode result: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
