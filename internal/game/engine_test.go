package game

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func TestApplyGuessWin(t *testing.T) {
	g := New(Rules{Guesses: 3, Digits: 4, AllowRepeats: true, DistinctDigits: 10}, "1234")

	res, st, err := g.ApplyGuess("1243")
	if err != nil {
		t.Fatalf("ApplyGuess failed: %v", err)
	}
	if st != StatePlaying || res.Score != (Score{Exact: 2, Partial: 2}) {
		t.Fatalf("first guess = %+v %s", res.Score, st)
	}
	if g.Remaining != 2 {
		t.Fatalf("remaining = %d, want 2", g.Remaining)
	}

	_, st, err = g.ApplyGuess("1234")
	if err != nil {
		t.Fatalf("ApplyGuess failed: %v", err)
	}
	if st != StateWon || !g.Finished || !g.Won {
		t.Fatalf("state = %s finished=%v won=%v, want won", st, g.Finished, g.Won)
	}
	// a win does not spend a guess
	if g.Remaining != 2 {
		t.Fatalf("remaining after win = %d, want 2", g.Remaining)
	}
	if g.GuessesUsed() != 2 {
		t.Fatalf("history length = %d, want 2", g.GuessesUsed())
	}
}

func TestApplyGuessSingleGuessBudgetLoses(t *testing.T) {
	g := New(Rules{Guesses: 1, Digits: 4, AllowRepeats: true, DistinctDigits: 10}, "1234")
	_, st, err := g.ApplyGuess("5678")
	if err != nil {
		t.Fatalf("ApplyGuess failed: %v", err)
	}
	if st != StateLost || g.Won {
		t.Fatalf("state = %s, want lost", st)
	}
	if _, _, err := g.ApplyGuess("1234"); !errors.Is(err, ErrFinished) {
		t.Fatalf("guess after loss err = %v, want ErrFinished", err)
	}
}

func TestApplyGuessRejectsMalformed(t *testing.T) {
	g := New(DefaultRules(), "1234")
	for _, in := range []string{"", "h", "123", "12x4"} {
		if _, _, err := g.ApplyGuess(in); !errors.Is(err, ErrInvalidGuess) {
			t.Fatalf("ApplyGuess(%q) err = %v, want ErrInvalidGuess", in, err)
		}
	}
	if g.Remaining != DefaultGuesses || g.History.Len() != 0 {
		t.Fatalf("malformed guesses changed the game: remaining=%d history=%d", g.Remaining, g.History.Len())
	}
}

func TestStartValidatesRules(t *testing.T) {
	gen := NewGenerator(rand.New(rand.NewPCG(1, 1)))
	if _, err := Start(gen, Rules{Guesses: 0, Digits: 4, DistinctDigits: 10}); err == nil {
		t.Fatal("Start accepted zero guesses")
	}
	g, err := Start(gen, Rules{Guesses: 5, Digits: 3, AllowRepeats: false, DistinctDigits: 3})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if len(g.Secret) != 3 || g.Remaining != 5 || g.State() != StatePlaying {
		t.Fatalf("unexpected game %+v", g)
	}
}

func TestRulesBounds(t *testing.T) {
	cases := []struct {
		name  string
		rules Rules
		hi    int
		ok    bool
	}{
		{"defaults", DefaultRules(), MaxDigits, true},
		{"no repeats caps length", Rules{Guesses: 10, Digits: 4, DistinctDigits: 4}, 4, true},
		{"no repeats too long", Rules{Guesses: 10, Digits: 5, DistinctDigits: 4}, 4, false},
		{"too many guesses", Rules{Guesses: 26, Digits: 4, AllowRepeats: true, DistinctDigits: 10}, MaxDigits, false},
		{"too few distinct", Rules{Guesses: 10, Digits: 4, AllowRepeats: true, DistinctDigits: 2}, MaxDigits, false},
		{"too short", Rules{Guesses: 10, Digits: 1, AllowRepeats: true, DistinctDigits: 10}, MaxDigits, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, hi := tc.rules.DigitBounds(); hi != tc.hi {
				t.Fatalf("DigitBounds high = %d, want %d", hi, tc.hi)
			}
			if err := tc.rules.Validate(); (err == nil) != tc.ok {
				t.Fatalf("Validate() = %v, want ok=%v", err, tc.ok)
			}
		})
	}
}

func TestRulesAlphabet(t *testing.T) {
	cases := []struct {
		rules Rules
		want  string
	}{
		{Rules{AllowRepeats: true, DistinctDigits: 10}, "0123456789"},
		{Rules{AllowRepeats: false, DistinctDigits: 10}, "1234567890"},
		{Rules{AllowRepeats: true, DistinctDigits: 6}, "123456"},
		{Rules{AllowRepeats: false, DistinctDigits: 3}, "123"},
	}
	for _, tc := range cases {
		if got := tc.rules.Alphabet(); got != tc.want {
			t.Errorf("%+v.Alphabet() = %q, want %q", tc.rules, got, tc.want)
		}
	}
}

func TestHistoryIsAppendOnlyCopy(t *testing.T) {
	var h History
	h.Append(NewGuess("12", "21"))
	h.Append(NewGuess("12", "12"))

	got := h.Entries()
	got[0] = Guess{}
	if h.Entries()[0].Text != "21" {
		t.Fatal("Entries exposed the internal slice")
	}
	last, ok := h.Last()
	if !ok || last.Text != "12" || h.Len() != 2 {
		t.Fatalf("Last() = %+v %v, len %d", last, ok, h.Len())
	}
}
