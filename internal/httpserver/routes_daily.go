// internal/httpserver/routes_daily.go
//
// HTTP routes for the "Daily Challenge" mode.
// Exposes two endpoints under /daily:
//   - POST /daily/new         → start today's game (secret seeded from date + salt)
//   - GET  /daily/leaderboard → top 20 daily wins for today (or a given date)
//
// Guesses go through the ordinary POST /game/guess with the issued token.
// Everyone asking for the same rules on the same date gets the same secret.
// A named player can finish one daily game per date when a ledger is present.

package httpserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/results"
)

// mountDaily registers all /daily routes.
func (s *Server) mountDaily(r chi.Router) {
	r.Route("/daily", func(r chi.Router) {
		r.Post("/new", s.handleDailyNew)
		r.Get("/leaderboard", s.handleLeaderboard)
	})
}

// handleDailyNew starts a daily game for the current UTC date.
func (s *Server) handleDailyNew(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)

	now := s.now()
	date := daily.DateKey(now)

	if s.ledger != nil {
		played, err := s.ledger.AlreadyPlayed(r.Context(), req.Player, date)
		if err != nil {
			s.log.Error().Err(err).Msg("daily lookup failed")
			http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
			return
		}
		if played {
			w.WriteHeader(http.StatusConflict)
			_ = json.NewEncoder(w).Encode(map[string]any{"error": "already_played", "date": date})
			return
		}
	}

	gen := game.NewGenerator(daily.Rand(now, s.salt))
	s.startGame(w, r, req, gen, date)
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Date string          `json:"date"`
	Top  []results.LBRow `json:"top"`
}

// handleLeaderboard returns the leaderboard for the given date (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, `{"error":"no_ledger"}`, http.StatusServiceUnavailable)
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	rows, err := s.ledger.Leaderboard(r.Context(), date, 20)
	if err != nil {
		s.log.Error().Err(err).Msg("leaderboard query failed")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Date: date, Top: rows})
}
