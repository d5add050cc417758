// internal/handlers/rank.go
package handlers

import (
	"net/http"
	"strconv"

	"github.com/codebattle/arena/internal/models"
)

// RankMeHandler returns the caller's standing in the active season. Players
// without a ranked match yet get a zeroed record at the base tier.
func RankMeHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		rec, err := s.Engine.RankFor(r.Context(), userID)
		if err != nil {
			s.Logger.WithError(err).Warn("rank lookup failed")
			http.Error(w, "rank lookup failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// HistoryMeHandler returns the caller's most recent matches:
// /history/me?limit=20
func HistoryMeHandler(s *ArenaServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := requireUser(w, r)
		if !ok {
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := s.History.GetUserHistory(r.Context(), userID, limit)
		if err != nil {
			s.Logger.WithError(err).Warn("history lookup failed")
			http.Error(w, "history lookup failed", http.StatusInternalServerError)
			return
		}
		if entries == nil {
			entries = []models.HistoryEntry{}
		}
		writeJSON(w, http.StatusOK, entries)
	}
}
