package http

import (
	"log/slog"
	"net/http"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, userID int64) {
	dr, err := parseRange(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	key := s.summaryCacheKey(userID, dr)
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "summary cache hit", "user_id", userID)
		respondJSON(w, r, http.StatusOK, cached)
		return
	}

	summary, err := s.ledger.Summary(r.Context(), userID, dr)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	s.summaryCache.Set(key, summary)
	respondJSON(w, r, http.StatusOK, summary)
}
