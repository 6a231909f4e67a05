package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
	"time"

	"github.com/robalobadob/mastermind/internal/game"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) (uint64, uint64) {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	return binary.BigEndian.Uint64(sum[:8]), binary.BigEndian.Uint64(sum[8:16])
}

// Rand returns a random source that yields the same sequence for everyone on
// the same date with the same salt.
func Rand(date time.Time, salt string) *rand.Rand {
	s1, s2 := Seed(date, salt)
	return rand.New(rand.NewPCG(s1, s2))
}

// Source hands out the day's secret for a set of rules. Every call starts a
// fresh stream, so back-to-back games on one date share the secret.
type Source struct {
	Salt string
	Now  func() time.Time
}

// GenerateFor returns the secret for r on the current date.
func (s Source) GenerateFor(r game.Rules) (string, error) {
	return game.NewGenerator(Rand(s.now(), s.Salt)).GenerateFor(r)
}

// Date returns the date key the source is currently drawing for.
func (s Source) Date() string { return DateKey(s.now()) }

func (s Source) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}
