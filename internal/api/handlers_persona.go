package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/docoutline/internal/persona"
)

const maxAnalyzeBody = 10 << 20

// handleAnalyzePersona ranks the sections of the requested documents for a
// reader. Documents without an inline outline are resolved by filename.
func (s *Server) handleAnalyzePersona(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBody)

	var req persona.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if s.resolver != nil {
		req.Documents = s.resolver.Resolve(r.Context(), req.Documents)
	}
	resp := s.analyzer.Analyze(r.Context(), req)
	writeJSON(w, http.StatusOK, resp)
}
