package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/dgallion1/docoutline/internal/pipeline"
	"github.com/go-chi/chi/v5"
)

// handleOutline builds the outline of one uploaded document synchronously.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename, data, err := s.readUpload(file, header.Filename)
	if err != nil {
		jsonError(w, err.Error(), uploadErrorStatus(err))
		return
	}

	out := s.orchestrator.Builder().BuildBytes(data, filename)
	if title := r.FormValue("title"); title != "" && out.Success {
		out.Title = title
	}
	if store := s.orchestrator.Store(); store != nil {
		if err := store.Save(out); err != nil {
			s.log.Error("save outline failed", "filename", filename, "error", err)
		}
	}

	status := http.StatusOK
	if !out.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, out)
}

// handleOutlineJobs queues one job per uploaded file. Files may be sent as
// "file" or "files".
func (s *Server) handleOutlineJobs(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes*10+10*1024*1024)

	if err := r.ParseMultipartForm(64 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := append(r.MultipartForm.File["file"], r.MultipartForm.File["files"]...)
	if len(files) == 0 {
		jsonError(w, "at least one file is required", http.StatusBadRequest)
		return
	}
	title := ""
	if len(files) == 1 {
		title = r.FormValue("title")
	}

	results := make([]map[string]any, 0, len(files))
	for _, fh := range files {
		filename, data, err := s.openUpload(fh)
		if err != nil {
			results = append(results, map[string]any{
				"filename": sanitizeFilename(fh.Filename),
				"error":    err.Error(),
			})
			continue
		}

		job := pipeline.NewJob(filename, title, data)
		if err := s.orchestrator.Submit(job); err != nil {
			results = append(results, map[string]any{
				"filename": filename,
				"error":    err.Error(),
			})
			continue
		}

		results = append(results, map[string]any{
			"filename":     filename,
			"job_id":       job.ID,
			"status":       pipeline.StatusQueued,
			"content_hash": job.ContentHash,
			"poll_url":     fmt.Sprintf("/api/outline/jobs/%s", job.ID),
		})
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"jobs": results})
}

func (s *Server) handleOutlineJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	job := s.orchestrator.GetJob(jobID)
	if job == nil {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, job.Snapshot())
}

var (
	errUnsupported = errors.New("unsupported file type")
	errTooLarge    = errors.New("file exceeds max size")
)

func (s *Server) openUpload(fh *multipart.FileHeader) (string, []byte, error) {
	f, err := fh.Open()
	if err != nil {
		return "", nil, fmt.Errorf("failed to open file")
	}
	defer f.Close()
	return s.readUpload(f, fh.Filename)
}

// readUpload validates and reads one uploaded file, keeping a copy in the
// upload directory so later analysis requests can refer to it by name.
func (s *Server) readUpload(r io.Reader, name string) (string, []byte, error) {
	filename := sanitizeFilename(name)
	if !parser.IsSupportedExtension(filename) {
		return filename, nil, fmt.Errorf("%w: %s", errUnsupported, filepath.Ext(filename))
	}

	data, err := io.ReadAll(io.LimitReader(r, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return filename, nil, fmt.Errorf("failed to read file")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return filename, nil, fmt.Errorf("%w (%d bytes)", errTooLarge, s.cfg.MaxUploadBytes)
	}

	if s.cfg.UploadDir != "" {
		if err := os.WriteFile(filepath.Join(s.cfg.UploadDir, filename), data, 0o644); err != nil {
			s.log.Warn("keep upload failed", "filename", filename, "error", err)
		}
	}
	return filename, data, nil
}

func uploadErrorStatus(err error) int {
	switch {
	case errors.Is(err, errUnsupported):
		return http.StatusBadRequest
	case errors.Is(err, errTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}

// storeOrUnavailable returns the outline store, writing a 503 when outlines
// are not persisted.
func (s *Server) storeOrUnavailable(w http.ResponseWriter) *outline.Store {
	store := s.orchestrator.Store()
	if store == nil {
		jsonError(w, "outline store not configured", http.StatusServiceUnavailable)
	}
	return store
}
