package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"partychallenges/internal/analytics"
)

func (s *Server) handleAnalyticsLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "Analytics requires a database connection")
		return
	}

	category := r.URL.Query().Get("cat")
	if category == "" {
		category = "score"
	}
	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	q := analytics.NewQueries(s.DB)
	entries, err := q.GetLeaderboard(category, limit)
	if err != nil {
		log.Printf("[Analytics] leaderboard error: %v\n", err)
		writeError(w, http.StatusBadRequest, "Error loading leaderboard")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"entries":  entries,
	})
}

func (s *Server) handleAnalyticsPlayer(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "Analytics requires a database connection")
		return
	}

	playerID := chi.URLParam(r, "id")

	q := analytics.NewQueries(s.DB)
	stats, err := q.GetPlayerLifetimeStats(playerID)
	if err != nil {
		log.Printf("[Analytics] player stats error: %v\n", err)
		writeError(w, http.StatusNotFound, "Player not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleAnalyticsGame(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "Analytics requires a database connection")
		return
	}

	gameID := chi.URLParam(r, "id")

	q := analytics.NewQueries(s.DB)
	recap, err := q.GetGameRecap(gameID)
	if err != nil {
		log.Printf("[Analytics] game recap error: %v\n", err)
		writeError(w, http.StatusNotFound, "Game not found")
		return
	}
	writeJSON(w, http.StatusOK, recap)
}
