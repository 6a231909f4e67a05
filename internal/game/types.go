// internal/game/types.go
//
// Core type definitions for the mastermind game engine.
// Defines:
//   - Score: exact/partial counts for one guess.
//   - Guess: an immutable guess with its score.
//   - State: coarse game state (playing/won/lost).
//   - Game: state for a single in-progress or finished game.

package game

import (
	"strings"
	"time"
)

// Feedback markers used when rendering a guess.
const (
	MarkExact   = 'X' // right digit, right place
	MarkPartial = 'O' // right digit, wrong place
	MarkFiller  = '-' // no credit
)

// Score is the result of comparing a guess with the secret.
type Score struct {
	Exact   int `json:"exact"`
	Partial int `json:"partial"`
}

// Won reports whether the score marks every position of a length-digit code as exact.
func (s Score) Won(length int) bool { return s.Exact == length }

// Guess is a scored guess. It is never modified once created.
type Guess struct {
	Text  string `json:"guess"`
	Score Score  `json:"score"`
}

// NewGuess scores guess against secret.
func NewGuess(secret, guess string) Guess {
	return Guess{Text: guess, Score: Evaluate(secret, guess)}
}

// String renders the feedback token: exact markers, then partial markers,
// then filler up to the guess length, then the guess itself.
func (g Guess) String() string {
	var b strings.Builder
	marks := 0
	for i := 0; i < g.Score.Exact; i++ {
		b.WriteByte(MarkExact)
		marks++
	}
	for i := 0; i < g.Score.Partial; i++ {
		b.WriteByte(MarkPartial)
		marks++
	}
	for ; marks < len(g.Text); marks++ {
		b.WriteByte(MarkFiller)
	}
	b.WriteByte(' ')
	b.WriteString(g.Text)
	return b.String()
}

// State is a coarse representation of where a game stands.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Game holds the state of a single game.
type Game struct {
	ID        string    // Unique game identifier.
	Secret    string    // The secret digit sequence.
	Rules     Rules     // Rules the secret was generated under.
	Remaining int       // Guesses left before the game is lost.
	History   History   // Scored guesses in the order they were made.
	Finished  bool      // True once the game is over (won or lost).
	Won       bool      // True if the game was finished with a win.
	Daily     string    // Date key for daily games, empty otherwise.
	Player    string    // Display name for the results ledger, may be empty.
	StartedAt time.Time // When the secret was generated.
}
