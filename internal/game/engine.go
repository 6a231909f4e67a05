// internal/game/engine.go
//
// Core game engine for a single mastermind game.
// Responsibilities:
//   - Create new games from validated rules and a generated secret.
//   - Apply candidate guesses: score, record history, spend the budget.
//   - Track state transitions: playing → won/lost.
//
// Notes:
//   - Secrets come from Generator (secret.go); scoring from Evaluate (score.go).
//   - Input classification (quit/history/malformed) happens before a guess
//     reaches the engine; ApplyGuess only accepts well-formed candidates.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrFinished     = errors.New("game finished")
	ErrInvalidGuess = errors.New("invalid guess")
)

// New constructs a game for rules with the given secret.
func New(rules Rules, secret string) *Game {
	return &Game{
		ID:        uuid.NewString(),
		Secret:    secret,
		Rules:     rules,
		Remaining: rules.Guesses,
		StartedAt: time.Now().UTC(),
	}
}

// Start validates rules, draws a secret from gen and returns the new game.
func Start(gen *Generator, rules Rules) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	secret, err := gen.GenerateFor(rules)
	if err != nil {
		return nil, err
	}
	return New(rules, secret), nil
}

// ApplyGuess scores a candidate guess and updates the game.
// Returns the scored guess, the new state, or an error.
//
// State transitions:
//   - All positions exact → Finished = true, Won = true.
//   - Otherwise one guess is spent; at zero remaining → Finished = true (loss).
func (g *Game) ApplyGuess(guess string) (Guess, State, error) {
	if g.Finished {
		return Guess{}, g.State(), ErrFinished
	}
	c := Classify(guess, g.Rules.Digits)
	if c.Kind != KindCandidate {
		return Guess{}, g.State(), fmt.Errorf("%w: %s", ErrInvalidGuess, c.Problem)
	}

	result := NewGuess(g.Secret, c.Digits)
	g.History.Append(result)

	if result.Score.Won(len(g.Secret)) {
		g.Finished, g.Won = true, true
		return result, g.State(), nil
	}
	g.Remaining--
	if g.Remaining <= 0 {
		g.Finished = true
	}
	return result, g.State(), nil
}

// State reports the coarse state of the game.
func (g *Game) State() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// GuessesUsed returns how many guesses have been scored.
func (g *Game) GuessesUsed() int { return g.History.Len() }
