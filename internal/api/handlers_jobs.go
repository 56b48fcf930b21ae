package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/casesheet/internal/auth"
	"github.com/dgallion1/casesheet/internal/pipeline"
)

// handleSubmitJobs queues every file in the "files" field and returns
// immediately with one entry per file.
func (s *Server) handleSubmitJobs(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10<<20)
	if err := r.ParseMultipartForm(multipartMemory * 2); err != nil {
		e := formError(err)
		jsonError(w, e.msg, e.code)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(w, errNoFile, http.StatusBadRequest)
		return
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, uerr := s.readUpload(fh)
		if uerr != nil {
			s.countUpload("rejected")
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    uerr.msg,
			})
			continue
		}

		job := pipeline.NewJob(claims.UserID, filename, data)
		if err := s.orchestrator.Submit(job); err != nil {
			s.countUpload("busy")
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}
		s.countUpload("queued")
		results = append(results, map[string]any{
			"filename": filename,
			"job_id":   job.ID,
			"status":   pipeline.StatusQueued,
			"poll_url": pollURL(job.ID),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	job := s.orchestrator.GetJob(chi.URLParam(r, "jobID"))
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	snap := job.Snapshot()
	// Other users' jobs are indistinguishable from missing ones.
	if snap.UserID != claims.UserID {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (s *Server) handleListSummaries(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())
	summaries, err := s.store.ListSummaries(r.Context(), claims.UserID, 0)
	if err != nil {
		s.log.Error("list summaries", "user_id", claims.UserID, "error", err)
		jsonError(w, "could not load summaries", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"summaries": summaries})
}
