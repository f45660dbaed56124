package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/headslug/internal/parser"
	"github.com/dgallion1/headslug/internal/pipeline"
)

// maxBatchFiles caps how many files one batch request may carry.
const maxBatchFiles = 10

type jobEntry struct {
	Filename string             `json:"filename"`
	JobID    string             `json:"job_id,omitempty"`
	Status   pipeline.JobStatus `json:"status,omitempty"`
	PollURL  string             `json:"poll_url,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func (s *Server) handleSubmitJobs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*maxBatchFiles+formOverhead)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(s.log, w, "request too large", http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(s.log, w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		jsonError(s.log, w, "at least one file is required", http.StatusBadRequest)
		return
	}
	if len(files) > maxBatchFiles {
		jsonError(s.log, w, fmt.Sprintf("at most %d files per request", maxBatchFiles), http.StatusBadRequest)
		return
	}

	results := make([]jobEntry, 0, len(files))
	for _, fh := range files {
		filename := sanitizeFilename(fh.Filename)
		if !parser.IsSupportedExtension(filename) {
			results = append(results, jobEntry{
				Filename: filename,
				Error:    fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)),
			})
			continue
		}

		data, err := s.readUpload(fh)
		if err != nil {
			results = append(results, jobEntry{Filename: filename, Error: "file too large or read error"})
			continue
		}

		job := pipeline.NewJob(filename, r.FormValue("title"), data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, jobEntry{Filename: filename, Error: err.Error()})
			continue
		}

		results = append(results, jobEntry{
			Filename: filename,
			JobID:    job.ID,
			Status:   pipeline.StatusQueued,
			PollURL:  "/api/jobs/" + job.ID,
		})
	}

	writeJSON(s.log, w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(s.log, w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(s.log, w, http.StatusOK, job.Snapshot())
}
