package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/casesheet/internal/auth"
	"github.com/dgallion1/casesheet/internal/parser"
	"github.com/dgallion1/casesheet/internal/pipeline"
)

// Upload errors returned as {"error": ...}.
const (
	errNoFile       = "No file uploaded"
	errNoSelection  = "No file selected"
	errBadFormat    = "Invalid file format"
	errTooLarge     = "File too large"
	errBusy         = "Server is busy, please try again later"
	errReadFailed   = "Failed to read uploaded file"
	errUnavailable  = "Service is shutting down"
	multipartMemory = 32 << 20
)

// uploadError is a rejected upload with its HTTP status.
type uploadError struct {
	msg  string
	code int
}

func (e *uploadError) Error() string { return e.msg }

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetClaims(r.Context())

	// Extra 1MB for form overhead.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1<<20)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		s.rejectUpload(w, formError(err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File["file"]
	if len(headers) == 0 {
		// A file input submitted with nothing chosen arrives as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			s.rejectUpload(w, &uploadError{errNoSelection, http.StatusBadRequest})
			return
		}
		s.rejectUpload(w, &uploadError{errNoFile, http.StatusBadRequest})
		return
	}

	filename, data, uerr := s.readUpload(headers[0])
	if uerr != nil {
		s.rejectUpload(w, uerr)
		return
	}

	job := pipeline.NewJob(claims.UserID, filename, data)
	log := s.log.With("job_id", job.ID, "filename", filename, "user_id", claims.UserID)
	if err := s.orchestrator.Submit(job); err != nil {
		log.Warn("upload not queued", "error", err)
		s.countUpload("busy")
		if errors.Is(err, pipeline.ErrQueueFull) {
			jsonError(w, errBusy, http.StatusServiceUnavailable)
		} else {
			jsonError(w, errUnavailable, http.StatusServiceUnavailable)
		}
		return
	}

	snap, err := s.orchestrator.Wait(r.Context(), job.ID)
	if err != nil {
		log.Warn("upload abandoned", "error", err)
		s.countUpload("abandoned")
		jsonError(w, "Request cancelled", http.StatusServiceUnavailable)
		return
	}
	if snap.Status == pipeline.StatusFailed {
		s.countUpload("failed")
		jsonError(w, snap.Error, http.StatusUnprocessableEntity)
		return
	}

	s.countUpload("ok")
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"summary": snap.Summary})
}

// readUpload validates one multipart file and returns its sanitized name
// and contents. Nothing is written to disk.
func (s *Server) readUpload(fh *multipart.FileHeader) (string, []byte, *uploadError) {
	if fh.Filename == "" {
		return "", nil, &uploadError{errNoSelection, http.StatusBadRequest}
	}
	filename := sanitizeFilename(fh.Filename)
	if !s.allowed(filename) {
		return "", nil, &uploadError{errBadFormat, http.StatusBadRequest}
	}
	if fh.Size > s.cfg.MaxUploadBytes {
		return "", nil, &uploadError{errTooLarge, http.StatusRequestEntityTooLarge}
	}

	src, err := fh.Open()
	if err != nil {
		return "", nil, &uploadError{errReadFailed, http.StatusInternalServerError}
	}
	defer src.Close()

	// Size in the header is client-supplied; cap what is actually read.
	data, err := io.ReadAll(io.LimitReader(src, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return "", nil, &uploadError{errReadFailed, http.StatusInternalServerError}
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return "", nil, &uploadError{errTooLarge, http.StatusRequestEntityTooLarge}
	}
	return filename, data, nil
}

func (s *Server) allowed(filename string) bool {
	return parser.IsSupportedExtension(filename) && s.cfg.AllowsExtension(filepath.Ext(filename))
}

func (s *Server) rejectUpload(w http.ResponseWriter, e *uploadError) {
	s.countUpload("rejected")
	jsonError(w, e.msg, e.code)
}

func (s *Server) countUpload(result string) {
	if s.metrics != nil {
		s.metrics.UploadsTotal.WithLabelValues(result).Inc()
	}
}

func formError(err error) *uploadError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &uploadError{errTooLarge, http.StatusRequestEntityTooLarge}
	}
	return &uploadError{errNoFile, http.StatusBadRequest}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Browsers on Windows may send the full client path.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}

func pollURL(jobID string) string {
	return fmt.Sprintf("/api/jobs/%s", jobID)
}
