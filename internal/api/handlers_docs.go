package api

import (
	"errors"
	"net/http"

	"github.com/dgallion1/docoutline/internal/outline"
	"github.com/go-chi/chi/v5"
)

// handleListDocuments lists persisted outlines.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	store := s.storeOrUnavailable(w)
	if store == nil {
		return
	}
	docs, err := store.List()
	if err != nil {
		jsonError(w, "failed to list documents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

// handleGetDocument returns the persisted outline of one document.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	store := s.storeOrUnavailable(w)
	if store == nil {
		return
	}
	filename := sanitizeFilename(chi.URLParam(r, "filename"))
	o, err := store.Load(filename)
	if errors.Is(err, outline.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// handleDeleteDocument removes a persisted outline.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	store := s.storeOrUnavailable(w)
	if store == nil {
		return
	}
	filename := sanitizeFilename(chi.URLParam(r, "filename"))
	err := store.Delete(filename)
	if errors.Is(err, outline.ErrNotFound) {
		jsonError(w, "document not found", http.StatusNotFound)
		return
	}
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": filename})
}
