package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/headslug/internal/parser"
)

// formOverhead is the slack allowed on top of MaxUploadBytes for multipart framing.
const formOverhead = 1 << 20

var errTooLarge = errors.New("file exceeds max size")

// handleAnchors slugs a single uploaded document and returns its headings.
func (s *Server) handleAnchors(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+formOverhead)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			jsonError(s.log, w, fmt.Sprintf("request exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}
		jsonError(s.log, w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		jsonError(s.log, w, "file is required", http.StatusBadRequest)
		return
	}
	fh := files[0]

	filename := sanitizeFilename(fh.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(s.log, w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusUnsupportedMediaType)
		return
	}

	data, err := s.readUpload(fh)
	if errors.Is(err, errTooLarge) {
		jsonError(s.log, w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		jsonError(s.log, w, "failed to read file", http.StatusInternalServerError)
		return
	}

	res, err := s.orchestrator.Worker().Run(r.Context(), filename, r.FormValue("title"), data, nil)
	if err != nil {
		switch {
		case errors.Is(err, parser.ErrUnsupportedFormat):
			jsonError(s.log, w, err.Error(), http.StatusUnsupportedMediaType)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			jsonError(s.log, w, "request canceled", http.StatusServiceUnavailable)
		default:
			jsonError(s.log, w, err.Error(), http.StatusUnprocessableEntity)
		}
		return
	}

	writeJSON(s.log, w, http.StatusOK, res)
}

// readUpload reads an uploaded file, enforcing MaxUploadBytes.
func (s *Server) readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, errTooLarge
	}
	return data, nil
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("encode response", "status", code, "error", err)
	}
}

func jsonError(log *slog.Logger, w http.ResponseWriter, msg string, code int) {
	writeJSON(log, w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == "/" {
		name = "unnamed"
	}
	return name
}
