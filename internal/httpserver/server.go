// internal/httpserver/server.go
//
// HTTP server wiring for the mastermind API.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs,
//     access log).
//   - Public endpoints: "/", "/health", POST /game/new, GET /stats.
//   - Token-guarded endpoints: POST /game/guess, GET /game/{id}/history.
//   - Daily endpoints: mounted under /daily (routes_daily.go).
//   - Finished games are written to the results ledger when one is configured.
//
// Notes:
//   - Live games sit in a store.Store; a guess mutates its game under
//     store.Update so concurrent guesses on one game are serialised.
//   - Stale games are dropped by a janitor goroutine started from Start.

package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/results"
	"github.com/robalobadob/mastermind/internal/store"
)

// Ledger is the slice of results.Store the API needs.
type Ledger interface {
	Record(ctx context.Context, r results.Record) error
	Summary(ctx context.Context) (results.Summary, error)
	Leaderboard(ctx context.Context, date string, limit int) ([]results.LBRow, error)
	AlreadyPlayed(ctx context.Context, player, date string) (bool, error)
}

// Options configures a Server.
type Options struct {
	Store       store.Store
	Ledger      Ledger // optional; /stats and /daily/leaderboard answer 503 without one
	Generator   *game.Generator
	TokenSecret string
	TokenTTL    time.Duration
	DailySalt   string
	Origin      string // CORS origin
	Retention   time.Duration
	Now         func() time.Time
	Log         zerolog.Logger
}

// Server bundles router, live game store and results ledger.
type Server struct {
	r         *chi.Mux
	store     store.Store
	ledger    Ledger
	gen       *game.Generator
	tokens    tokens
	salt      string
	retention time.Duration
	now       func() time.Time
	log       zerolog.Logger
}

// New constructs a Server, installs middleware, and registers routes.
func New(opts Options) *Server {
	if opts.Store == nil {
		opts.Store = store.NewMemoryStore()
	}
	if opts.Generator == nil {
		opts.Generator = game.NewGenerator(nil)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.Retention <= 0 {
		opts.Retention = 24 * time.Hour
	}
	if opts.Origin == "" {
		opts.Origin = "http://localhost:5173"
	}
	s := &Server{
		r:         chi.NewRouter(),
		store:     opts.Store,
		ledger:    opts.Ledger,
		gen:       opts.Generator,
		tokens:    tokens{secret: []byte(opts.TokenSecret), ttl: opts.TokenTTL, now: opts.Now},
		salt:      opts.DailySalt,
		retention: opts.Retention,
		now:       opts.Now,
		log:       opts.Log,
	}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                 // add X-Request-ID
	s.r.Use(chimw.RealIP)                    // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(s.accessLog)                     // one log line per request
	s.r.Use(chimw.Recoverer)                 // recover from panics
	s.r.Use(chimw.Timeout(10 * time.Second)) // bound handler time
	s.r.Use(jsonContentType)                 // default JSON responses
	s.r.Use(cors(opts.Origin))

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"mastermind","endpoints":["/health","POST /game/new","POST /game/guess","GET /game/{id}/history","/daily/*","/stats"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Post("/game/new", s.handleNewGame)
	s.r.With(s.requireGameToken).Post("/game/guess", s.handleGuess)
	s.r.With(s.requireGameToken).Get("/game/{id}/history", s.handleHistory)
	s.r.Get("/stats", s.handleStats)
	s.mountDaily(s.r)

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start serves HTTP on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.r, ReadHeaderTimeout: 5 * time.Second}
	go s.janitor(ctx)
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// janitor drops games older than the retention window every few minutes.
func (s *Server) janitor(ctx context.Context) {
	t := time.NewTicker(5 * time.Minute)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.store.Sweep(ctx, s.now().Add(-s.retention)); n > 0 {
				s.log.Debug().Int("games", n).Msg("swept stale games")
			}
		}
	}
}

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// accessLog writes one debug line per request.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("reqId", chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("took", time.Since(start)).
			Msg("http")
	})
}

// ------------------------------ GAME ---------------------------------------

// newGameReq is the payload for POST /game/new and POST /daily/new.
// Zero values take the defaults; allowRepeats defaults to true.
type newGameReq struct {
	Guesses        int    `json:"guesses"`
	Digits         int    `json:"digits"`
	AllowRepeats   *bool  `json:"allowRepeats"`
	DistinctDigits int    `json:"distinctDigits"`
	Player         string `json:"player"`
}

func (req newGameReq) rules() game.Rules {
	r := game.Rules{
		Guesses:        req.Guesses,
		Digits:         req.Digits,
		AllowRepeats:   true,
		DistinctDigits: req.DistinctDigits,
	}
	if req.AllowRepeats != nil {
		r.AllowRepeats = *req.AllowRepeats
	}
	return r.WithDefaults()
}

type newGameRes struct {
	GameID    string    `json:"gameId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Guesses   int       `json:"guesses"`
	Digits    int       `json:"digits"`
	Alphabet  string    `json:"alphabet"`
	Daily     string    `json:"date,omitempty"`
}

// handleNewGame creates a new in-memory game and issues its token.
func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	var req newGameReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	s.startGame(w, r, req, s.gen, "")
}

// startGame is shared by the free and daily endpoints.
func (s *Server) startGame(w http.ResponseWriter, r *http.Request, req newGameReq, gen *game.Generator, date string) {
	g, err := game.Start(gen, req.rules())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_rules", err.Error())
		return
	}
	g.Daily = date
	g.Player = req.Player
	g.StartedAt = s.now().UTC()
	if err := s.store.Save(r.Context(), g); err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	token, exp, err := s.tokens.sign(g.ID)
	if err != nil {
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	s.log.Info().Str("gameId", g.ID).Str("daily", date).Int("digits", g.Rules.Digits).Msg("game started")

	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(newGameRes{
		GameID:    g.ID,
		Token:     token,
		ExpiresAt: exp,
		Guesses:   g.Rules.Guesses,
		Digits:    g.Rules.Digits,
		Alphabet:  g.Rules.Alphabet(),
		Daily:     date,
	})
}

type guessReq struct {
	GameID string `json:"gameId"`
	Guess  string `json:"guess"`
}

type guessRes struct {
	Exact     int    `json:"exact"`
	Partial   int    `json:"partial"`
	Feedback  string `json:"feedback"`
	State     string `json:"state"`
	Remaining int    `json:"remaining"`
	Secret    string `json:"secret,omitempty"` // revealed once the game is over
}

// errRejected carries a classification problem out of store.Update.
type errRejected struct{ c game.Classification }

func (e errRejected) Error() string { return "rejected guess: " + e.reason() }

func (e errRejected) reason() string {
	if e.c.Kind == game.KindMalformed {
		return e.c.Problem.String()
	}
	return e.c.Kind.String()
}

// handleGuess scores a guess against the token's game.
func (s *Server) handleGuess(w http.ResponseWriter, r *http.Request) {
	var req guessReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"bad_request"}`, http.StatusBadRequest)
		return
	}
	gid := tokenGameID(r.Context())
	if req.GameID != "" && req.GameID != gid {
		http.Error(w, `{"error":"token_mismatch"}`, http.StatusUnauthorized)
		return
	}

	var (
		res      guessRes
		finished *game.Game
		rec      results.Record
	)
	err := s.store.Update(r.Context(), gid, func(g *game.Game) error {
		if g.Finished {
			return game.ErrFinished
		}
		c := game.Classify(req.Guess, g.Rules.Digits)
		if c.Kind != game.KindCandidate {
			return errRejected{c: c}
		}
		scored, st, err := g.ApplyGuess(c.Digits)
		if err != nil {
			return err
		}
		res = guessRes{
			Exact:     scored.Score.Exact,
			Partial:   scored.Score.Partial,
			Feedback:  scored.String(),
			State:     string(st),
			Remaining: g.Remaining,
		}
		if g.Finished {
			res.Secret = g.Secret
			finished = g
			rec = ledgerRecord(g, s.now())
		}
		return nil
	})

	var rej errRejected
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	case errors.Is(err, game.ErrFinished):
		http.Error(w, `{"error":"finished"}`, http.StatusConflict)
		return
	case errors.As(err, &rej):
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error":    "invalid_guess",
			"reason":   rej.reason(),
			"observed": rej.c.Observed,
		})
		return
	case err != nil:
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}

	if finished != nil {
		s.log.Info().Str("gameId", gid).Str("state", res.State).Int("guesses", rec.GuessesUsed).Msg("game finished")
		s.record(r.Context(), rec)
	}
	_ = json.NewEncoder(w).Encode(res)
}

type historyEntry struct {
	Guess    string `json:"guess"`
	Exact    int    `json:"exact"`
	Partial  int    `json:"partial"`
	Feedback string `json:"feedback"`
}

type historyRes struct {
	GameID    string         `json:"gameId"`
	State     string         `json:"state"`
	Remaining int            `json:"remaining"`
	Guesses   []historyEntry `json:"guesses"`
}

// handleHistory lists the scored guesses of the token's game.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id != tokenGameID(r.Context()) {
		http.Error(w, `{"error":"token_mismatch"}`, http.StatusUnauthorized)
		return
	}
	var res historyRes
	err := s.store.Update(r.Context(), id, func(g *game.Game) error {
		res = historyRes{GameID: g.ID, State: string(g.State()), Remaining: g.Remaining, Guesses: []historyEntry{}}
		for _, e := range g.History.Entries() {
			res.Guesses = append(res.Guesses, historyEntry{
				Guess:    e.Text,
				Exact:    e.Score.Exact,
				Partial:  e.Score.Partial,
				Feedback: e.String(),
			})
		}
		return nil
	})
	switch {
	case errors.Is(err, store.ErrNotFound):
		http.Error(w, `{"error":"not_found"}`, http.StatusNotFound)
		return
	case err != nil:
		s.log.Error().Err(err).Str("gameId", id).Msg("history lookup failed")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(res)
}

// ------------------------------ STATS --------------------------------------

type statsRes struct {
	results.Summary
	WinRate float64 `json:"winRate"`
}

// handleStats reports aggregate outcomes from the ledger.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		http.Error(w, `{"error":"no_ledger"}`, http.StatusServiceUnavailable)
		return
	}
	sum, err := s.ledger.Summary(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("stats query failed")
		http.Error(w, `{"error":"server_error"}`, http.StatusInternalServerError)
		return
	}
	_ = json.NewEncoder(w).Encode(statsRes{Summary: sum, WinRate: sum.WinRate()})
}

// ------------------------------ helpers ------------------------------------

// ledgerRecord describes a finished game for the results ledger.
func ledgerRecord(g *game.Game, now time.Time) results.Record {
	outcome := results.OutcomeLost
	if g.Won {
		outcome = results.OutcomeWon
	}
	return results.Record{
		GameID:      g.ID,
		Player:      g.Player,
		Outcome:     outcome,
		GuessesUsed: g.GuessesUsed(),
		Rules:       g.Rules,
		Elapsed:     now.Sub(g.StartedAt),
		Daily:       g.Daily,
		Source:      results.SourceHTTP,
	}
}

// record writes rec to the ledger if there is one. Failures are logged only.
// A daily game is dropped when its player already has a result for the date.
func (s *Server) record(ctx context.Context, rec results.Record) {
	if s.ledger == nil {
		return
	}
	if rec.Daily != "" && rec.Player != "" {
		played, err := s.ledger.AlreadyPlayed(ctx, rec.Player, rec.Daily)
		if err != nil {
			s.log.Warn().Err(err).Str("gameId", rec.GameID).Msg("daily lookup failed")
			return
		}
		if played {
			s.log.Info().Str("gameId", rec.GameID).Str("player", rec.Player).Msg("daily already recorded, result dropped")
			return
		}
	}
	if err := s.ledger.Record(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("gameId", rec.GameID).Msg("result not recorded")
	}
}

func writeError(w http.ResponseWriter, code int, kind, detail string) {
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": kind, "detail": detail})
}
