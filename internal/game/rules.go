// internal/game/rules.go
//
// Rules a game is played under and their bounds.
//
// Notes:
//   - When repeats are disallowed the code can be no longer than the number of
//     distinct digits in play, otherwise no secret exists.
//   - The restricted alphabet is the first DistinctDigits symbols of
//     "1234567890", so zero only appears when all ten digits are in play.

package game

import (
	"fmt"
)

const (
	MaxGuesses     = 25
	DefaultGuesses = 10

	MinDigits     = 2
	MaxDigits     = 6
	DefaultDigits = 4

	MinDistinct     = 3
	MaxDistinct     = 10
	DefaultDistinct = 10
)

const (
	decimalAlphabet    = "0123456789"
	restrictedAlphabet = "1234567890"
)

// Rules configures one game. It is fixed once the game starts.
type Rules struct {
	Guesses        int  `json:"guesses" yaml:"guesses" env:"GUESSES"`
	Digits         int  `json:"digits" yaml:"digits" env:"DIGITS"`
	AllowRepeats   bool `json:"allowRepeats" yaml:"allow_repeats" env:"ALLOW_REPEATS"`
	DistinctDigits int  `json:"distinctDigits" yaml:"distinct_digits" env:"DISTINCT_DIGITS"`
}

// DefaultRules returns the rules used when nothing else is configured.
func DefaultRules() Rules {
	return Rules{
		Guesses:        DefaultGuesses,
		Digits:         DefaultDigits,
		AllowRepeats:   true,
		DistinctDigits: DefaultDistinct,
	}
}

// DigitBounds returns the allowed code length range for these rules.
func (r Rules) DigitBounds() (low, high int) {
	high = MaxDigits
	if !r.AllowRepeats && r.DistinctDigits < high {
		high = r.DistinctDigits
	}
	return MinDigits, high
}

// Unrestricted reports whether secrets use the full decimal alphabet.
func (r Rules) Unrestricted() bool {
	return r.AllowRepeats && r.DistinctDigits == MaxDistinct
}

// Alphabet returns the digit symbols a secret can be built from.
func (r Rules) Alphabet() string {
	if r.Unrestricted() {
		return decimalAlphabet
	}
	n := r.DistinctDigits
	if n < 0 {
		n = 0
	}
	if n > len(restrictedAlphabet) {
		n = len(restrictedAlphabet)
	}
	return restrictedAlphabet[:n]
}

// Validate checks every field against its bounds.
func (r Rules) Validate() error {
	if r.Guesses < 1 || r.Guesses > MaxGuesses {
		return fmt.Errorf("guesses must be between 1 and %d, got %d", MaxGuesses, r.Guesses)
	}
	if r.DistinctDigits < MinDistinct || r.DistinctDigits > MaxDistinct {
		return fmt.Errorf("distinct digits must be between %d and %d, got %d", MinDistinct, MaxDistinct, r.DistinctDigits)
	}
	lo, hi := r.DigitBounds()
	if r.Digits < lo || r.Digits > hi {
		return fmt.Errorf("digits must be between %d and %d, got %d", lo, hi, r.Digits)
	}
	return nil
}

// WithDefaults fills zero fields from DefaultRules. AllowRepeats is left alone.
func (r Rules) WithDefaults() Rules {
	d := DefaultRules()
	if r.Guesses == 0 {
		r.Guesses = d.Guesses
	}
	if r.Digits == 0 {
		r.Digits = d.Digits
	}
	if r.DistinctDigits == 0 {
		r.DistinctDigits = d.DistinctDigits
	}
	return r
}
