package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand/v2"
	"strconv"
)

// ErrInfeasible is returned when no secret exists for the requested shape.
var ErrInfeasible = errors.New("game: no secret satisfies these rules")

// Generator draws secrets from a random source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator wraps rng. A nil rng is replaced by one seeded from crypto/rand.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewPCG(cryptoSeed(), cryptoSeed()))
	}
	return &Generator{rng: rng}
}

// Generate returns a secret of length digits.
//
// With repeats allowed and all ten digits in play the secret is a uniformly
// drawn length-digit numeral without a leading zero. Otherwise each position
// is drawn from the restricted alphabet, redrawing duplicates when repeats are
// not allowed.
func (g *Generator) Generate(length int, allowRepeats bool, distinct int) (string, error) {
	if length < 1 || distinct < 1 || distinct > MaxDistinct {
		return "", ErrInfeasible
	}
	if !allowRepeats && length > distinct {
		return "", ErrInfeasible
	}

	if allowRepeats && distinct == MaxDistinct {
		low := pow10(length - 1)
		high := pow10(length) - 1
		n := low + g.rng.Int64N(high-low+1)
		return strconv.FormatInt(n, 10), nil
	}

	alphabet := Rules{DistinctDigits: distinct}.Alphabet()
	secret := make([]byte, 0, length)
	var used [256]bool
	for len(secret) < length {
		c := alphabet[g.rng.IntN(len(alphabet))]
		if !allowRepeats && used[c] {
			continue
		}
		used[c] = true
		secret = append(secret, c)
	}
	return string(secret), nil
}

// GenerateFor is Generate with its arguments taken from r.
func (g *Generator) GenerateFor(r Rules) (string, error) {
	return g.Generate(r.Digits, r.AllowRepeats, r.DistinctDigits)
}

func pow10(n int) int64 {
	v := int64(1)
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

func cryptoSeed() uint64 {
	var b [8]byte
	_, _ = crand.Read(b[:])
	return binary.LittleEndian.Uint64(b[:])
}
