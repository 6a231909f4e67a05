// internal/results/store.go
//
// SQLite-backed ledger of finished games.
// Only outcomes are stored: a game in progress is never written here and can
// not be resumed after a restart.

package results

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/robalobadob/mastermind/internal/game"
)

// Outcome values stored in the outcome column.
const (
	OutcomeWon     = "won"
	OutcomeLost    = "lost"
	OutcomeAborted = "aborted"
)

// Source values stored in the source column.
const (
	SourceConsole = "console"
	SourceHTTP    = "http"
)

// Record is one finished game.
type Record struct {
	GameID      string
	Player      string
	Outcome     string
	Reason      string
	GuessesUsed int
	Rules       game.Rules
	Elapsed     time.Duration
	Daily       string // YYYY-MM-DD for daily games
	Source      string
}

// Summary aggregates every recorded game.
type Summary struct {
	Played          int     `json:"played"`
	Won             int     `json:"won"`
	Lost            int     `json:"lost"`
	Aborted         int     `json:"aborted"`
	BestGuesses     int     `json:"bestGuesses"`
	AvgGuessesToWin float64 `json:"avgGuessesToWin"`
}

// WinRate is Won over games that reached an end (won or lost).
func (s Summary) WinRate() float64 {
	if s.Won+s.Lost == 0 {
		return 0
	}
	return float64(s.Won) / float64(s.Won+s.Lost)
}

// LBRow is one line of a daily leaderboard.
type LBRow struct {
	Player    string `json:"player"`
	Guesses   int    `json:"guesses"`
	ElapsedMs int64  `json:"elapsedMs"`
	Digits    int    `json:"digits"`
}

// Store persists Records.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// Open opens the database at path and applies pending migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := migrate(db, log); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts r.
func (s *Store) Record(ctx context.Context, r Record) error {
	if r.Source == "" {
		r.Source = SourceConsole
	}
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO results
            (id, game_id, player, outcome, reason, guesses_used, guess_budget,
             digits, allow_repeats, distinct_digits, elapsed_ms, daily_date, source)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), r.GameID, r.Player, r.Outcome, r.Reason, r.GuessesUsed, r.Rules.Guesses,
		r.Rules.Digits, r.Rules.AllowRepeats, r.Rules.DistinctDigits, r.Elapsed.Milliseconds(), r.Daily, r.Source,
	)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	s.log.Debug().Str("gameId", r.GameID).Str("outcome", r.Outcome).Msg("result recorded")
	return nil
}

// Summary returns totals over every recorded game.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	var out Summary
	err := s.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(outcome = 'won'), 0),
               COALESCE(SUM(outcome = 'lost'), 0),
               COALESCE(SUM(outcome = 'aborted'), 0),
               COALESCE(MIN(CASE WHEN outcome = 'won' THEN guesses_used END), 0),
               COALESCE(AVG(CASE WHEN outcome = 'won' THEN guesses_used END), 0)
        FROM results`,
	).Scan(&out.Played, &out.Won, &out.Lost, &out.Aborted, &out.BestGuesses, &out.AvgGuessesToWin)
	if err != nil {
		return Summary{}, fmt.Errorf("summary: %w", err)
	}
	return out, nil
}

// Leaderboard returns the wins for a daily date.
//
// Ordered by guesses ASC, then elapsed time ASC, then created_at ASC.
// Default limit is 20 if not specified.
func (s *Store) Leaderboard(ctx context.Context, date string, limit int) ([]LBRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT player, guesses_used, elapsed_ms, digits
        FROM results
        WHERE daily_date = ? AND outcome = 'won'
        ORDER BY guesses_used ASC, elapsed_ms ASC, created_at ASC
        LIMIT ?`, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LBRow, 0, limit)
	for rows.Next() {
		var r LBRow
		if err := rows.Scan(&r.Player, &r.Guesses, &r.ElapsedMs, &r.Digits); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AlreadyPlayed reports whether player has a finished daily game for date.
// An empty player never counts as having played.
func (s *Store) AlreadyPlayed(ctx context.Context, player, date string) (bool, error) {
	if player == "" {
		return false, nil
	}
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM results WHERE player = ? AND daily_date = ? AND outcome != 'aborted' LIMIT 1`,
		player, date,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("already played: %w", err)
	}
	return true, nil
}
