package api

import (
	"net/http"
)

func (s *Server) handleEmbedStats(w http.ResponseWriter, r *http.Request) {
	if s.embedder == nil || s.embedder.Stats == nil {
		jsonError(w, "semantic scorer not configured", http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"model":       s.embedder.Model(),
		"queue_depth": s.orchestrator.QueueDepth(),
		"stats":       s.embedder.Stats.Snapshot(),
	})
}
