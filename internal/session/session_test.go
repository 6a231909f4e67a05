package session

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/robalobadob/mastermind/internal/game"
)

// fixedSource always hands out the same secret.
type fixedSource string

func (f fixedSource) GenerateFor(r game.Rules) (string, error) { return string(f), nil }

// scripted replays lines and then reports end of input.
type scripted struct {
	lines   []string
	prompts []string
}

func (s *scripted) read(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func newTestSession(t *testing.T, secret string, lines ...string) (*Session, *bytes.Buffer, *scripted) {
	t.Helper()
	in := &scripted{lines: lines}
	var out bytes.Buffer
	s, err := New(Options{
		Source: fixedSource(secret),
		In:     in.read,
		Out:    &out,
		Log:    zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return s, &out, in
}

// accept answers the start and rule prompts with their defaults.
var accept = []string{"y", "", "", "", ""}

func script(tail ...string) []string {
	return append(append([]string{}, accept...), tail...)
}

func TestSessionWin(t *testing.T) {
	s, out, _ := newTestSession(t, "1234", script("1243", "1234")...)
	res := s.Run(context.Background())

	if res.Outcome != OutcomeWon || res.ExitCode != 0 {
		t.Fatalf("result = %+v, want won/0", res)
	}
	if res.GuessesUsed != 2 || res.Secret != "1234" {
		t.Fatalf("result = %+v", res)
	}
	if s.Phase() != PhaseWon {
		t.Fatalf("phase = %s, want won", s.Phase())
	}
	if !strings.Contains(out.String(), "XXOO 1243") {
		t.Fatalf("feedback missing from output:\n%s", out)
	}
	if st := s.State(); st.Remaining != game.DefaultGuesses-1 {
		t.Fatalf("remaining = %d, want %d", st.Remaining, game.DefaultGuesses-1)
	}
}

func TestSessionSingleGuessBudgetLoses(t *testing.T) {
	s, out, _ := newTestSession(t, "1234", "y", "", "", "1", "", "5678")
	res := s.Run(context.Background())

	if res.Outcome != OutcomeLost || res.ExitCode != 0 {
		t.Fatalf("result = %+v, want lost/0", res)
	}
	if s.Phase() != PhaseLost {
		t.Fatalf("phase = %s, want lost", s.Phase())
	}
	if !strings.Contains(out.String(), "It was 1234") {
		t.Fatalf("secret not revealed:\n%s", out)
	}
}

func TestSessionTooManyInvalid(t *testing.T) {
	// the history request between malformed guesses does not reset the count
	s, _, _ := newTestSession(t, "1234", script("12", "abcd", "h", "123")...)
	res := s.Run(context.Background())

	if res.Outcome != OutcomeAborted || res.Reason != ReasonTooManyInvalid || res.ExitCode != 1 {
		t.Fatalf("result = %+v, want aborted/too_many_invalid/1", res)
	}
	if s.State().Invalid != MaxInvalid {
		t.Fatalf("invalid = %d, want %d", s.State().Invalid, MaxInvalid)
	}
	if g := s.Game(); g.Remaining != game.DefaultGuesses || g.History.Len() != 0 {
		t.Fatalf("malformed guesses spent the budget: remaining=%d history=%d", g.Remaining, g.History.Len())
	}
}

func TestSessionCandidateResetsInvalid(t *testing.T) {
	s, _, _ := newTestSession(t, "1234", script("12", "abcd", "5678", "12", "ab12", "1234")...)
	res := s.Run(context.Background())

	if res.Outcome != OutcomeWon {
		t.Fatalf("result = %+v, want won", res)
	}
	if res.GuessesUsed != 2 {
		t.Fatalf("guesses used = %d, want 2", res.GuessesUsed)
	}
}

func TestSessionQuit(t *testing.T) {
	cases := []struct {
		name    string
		confirm []string
	}{
		{"yes", []string{"y"}},
		{"default", []string{""}},
		{"end of input", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, _, _ := newTestSession(t, "1234", script(append([]string{""}, tc.confirm...)...)...)
			res := s.Run(context.Background())
			if res.Outcome != OutcomeAborted || res.Reason != ReasonQuit || res.ExitCode != 0 {
				t.Fatalf("result = %+v, want aborted/quit/0", res)
			}
			if s.Phase() != PhaseAborted {
				t.Fatalf("phase = %s, want aborted", s.Phase())
			}
		})
	}
}

func TestSessionQuitDeclinedKeepsCounters(t *testing.T) {
	s, _, _ := newTestSession(t, "1234", script("12", "", "n", "abcd", "1234")...)
	res := s.Run(context.Background())

	// 12 and abcd are two malformed guesses; the declined quit in between is
	// not a third one and does not reset them.
	if res.Outcome != OutcomeWon {
		t.Fatalf("result = %+v, want won", res)
	}
}

func TestSessionHistory(t *testing.T) {
	s, out, _ := newTestSession(t, "1234", script("1243", "H", "5678", "h", "1234")...)
	res := s.Run(context.Background())
	if res.Outcome != OutcomeWon {
		t.Fatalf("result = %+v, want won", res)
	}
	text := out.String()
	for _, want := range []string{"1:\tXXOO 1243", "2:\t---- 5678"} {
		if !strings.Contains(text, want) {
			t.Fatalf("history line %q missing:\n%s", want, text)
		}
	}
	if res.GuessesUsed != 3 {
		t.Fatalf("history requests counted as guesses: %d", res.GuessesUsed)
	}
}

func TestSessionDeclined(t *testing.T) {
	var helped bool
	in := &scripted{lines: []string{"h", "n"}}
	var out bytes.Buffer
	s, err := New(Options{
		Source: fixedSource("1234"),
		In:     in.read,
		Out:    &out,
		Log:    zerolog.Nop(),
		Help: func(w io.Writer) error {
			helped = true
			_, err := io.WriteString(w, "help text\n")
			return err
		},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	res := s.Run(context.Background())
	if res.Outcome != OutcomeAborted || res.Reason != ReasonDeclined || res.ExitCode != 0 {
		t.Fatalf("result = %+v, want aborted/declined/0", res)
	}
	if !helped {
		t.Fatal("help was not shown")
	}
	if s.Game() != nil || res.GameID != "" {
		t.Fatal("declined session created a game")
	}
}

func TestSessionConfigAbandoned(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
	}{
		{"budget", []string{"y", "", "", "abc", "99", "0"}},
		{"length", []string{"y", "", "", "", "1", "7", "x"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, out, _ := newTestSession(t, "1234", tc.lines...)
			res := s.Run(context.Background())
			if res.Outcome != OutcomeAborted || res.Reason != ReasonConfigAbandoned || res.ExitCode != 1 {
				t.Fatalf("result = %+v, want aborted/config_abandoned/1", res)
			}
			if !strings.Contains(out.String(), "can't ask any more") {
				t.Fatalf("missing give-up message:\n%s", out)
			}
		})
	}
}

func TestSessionChangesRules(t *testing.T) {
	// repeats off, 3 distinct digits: the length default of 4 is capped to 3
	s, _, in := newTestSession(t, "123", "y", "y", "y", "3", "5", "", "123")
	res := s.Run(context.Background())

	if res.Outcome != OutcomeWon {
		t.Fatalf("result = %+v, want won", res)
	}
	want := game.Rules{Guesses: 5, Digits: 3, AllowRepeats: false, DistinctDigits: 3}
	if res.Rules != want {
		t.Fatalf("rules = %+v, want %+v", res.Rules, want)
	}
	var lengthPrompt string
	for _, p := range in.prompts {
		if strings.HasPrefix(p, "How long") {
			lengthPrompt = p
		}
	}
	if !strings.Contains(lengthPrompt, "2 - 3 (3)") {
		t.Fatalf("length prompt = %q", lengthPrompt)
	}
}

func TestSessionDistinctGiveUpKeepsValue(t *testing.T) {
	s, _, _ := newTestSession(t, "1234", "y", "", "y", "x", "1", "11", "", "", "1234")
	res := s.Run(context.Background())
	if res.Outcome != OutcomeWon {
		t.Fatalf("result = %+v, want won", res)
	}
	if res.Rules.DistinctDigits != game.DefaultDistinct {
		t.Fatalf("distinct digits = %d, want %d", res.Rules.DistinctDigits, game.DefaultDistinct)
	}
}

func TestSessionEndOfInputQuits(t *testing.T) {
	s, _, _ := newTestSession(t, "1234", script("5678")...)
	res := s.Run(context.Background())
	if res.Outcome != OutcomeAborted || res.Reason != ReasonQuit || res.ExitCode != 0 {
		t.Fatalf("result = %+v, want aborted/quit/0", res)
	}
	if res.GuessesUsed != 1 {
		t.Fatalf("guesses used = %d, want 1", res.GuessesUsed)
	}
}

func TestSessionOutOfAlphabetGuessIsScored(t *testing.T) {
	s, out, _ := newTestSession(t, "123", "y", "y", "y", "3", "", "", "000", "123")
	res := s.Run(context.Background())
	if res.Outcome != OutcomeWon || res.GuessesUsed != 2 {
		t.Fatalf("result = %+v", res)
	}
	if !strings.Contains(out.String(), "--- 000") {
		t.Fatalf("out-of-alphabet guess not scored:\n%s", out)
	}
}

func TestNewLineReader(t *testing.T) {
	var prompts bytes.Buffer
	read := NewLineReader(strings.NewReader("1234\r\n\nlast"), &prompts)

	for _, want := range []string{"1234", "", "last"} {
		got, err := read("guess?")
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		if got != want {
			t.Fatalf("read = %q, want %q", got, want)
		}
	}
	if _, err := read("guess?"); err != io.EOF {
		t.Fatalf("read at end = %v, want io.EOF", err)
	}
	if !strings.HasPrefix(prompts.String(), "guess?  ") {
		t.Fatalf("prompt not written: %q", prompts.String())
	}
}

func TestWriteHelp(t *testing.T) {
	var out bytes.Buffer
	if err := WriteHelp(&out); err != nil {
		t.Fatalf("WriteHelp failed: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "XXO- 1254") || !strings.Contains(text, "1 to 25") {
		t.Fatalf("help text incomplete:\n%s", text)
	}
	if strings.Contains(text, "# Player help") {
		t.Fatal("help header comment leaked into output")
	}
}

func TestSessionZeroRulesAllowRepeats(t *testing.T) {
	s, _, in := newTestSession(t, "1234", script("1234")...)
	res := s.Run(context.Background())

	if res.Rules != game.DefaultRules() {
		t.Fatalf("rules = %+v, want %+v", res.Rules, game.DefaultRules())
	}
	if len(in.prompts) < 2 || !strings.HasPrefix(in.prompts[1], "Repeated digits are currently allowed") {
		t.Fatalf("repeats prompt = %q", in.prompts)
	}
}
