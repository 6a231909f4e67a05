// internal/session/session.go
//
// Console session controller: one play-through from "do you want to play?"
// to a terminal outcome.
// Responsibilities:
//   - Ask for the rules (repeats, distinct digits, guess budget, code length).
//   - Classify every line of input and drive the statechart in machine.go.
//   - Count consecutive malformed guesses and give up after MaxInvalid.
//   - Report scores, history, and the final announcement.
//
// Notes:
//   - Input arrives through an injected LineReader, so sessions are fully
//     scriptable in tests.
//   - End of input is handled like an empty line.

package session

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/statekit"
	"github.com/rs/zerolog"

	"github.com/robalobadob/mastermind/internal/game"
)

// MaxInvalid is how many malformed guesses in a row end the session.
const MaxInvalid = 3

// Outcome is how a session ended.
type Outcome int

const (
	OutcomeInProgress Outcome = iota
	OutcomeWon
	OutcomeLost
	OutcomeAborted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWon:
		return "won"
	case OutcomeLost:
		return "lost"
	case OutcomeAborted:
		return "aborted"
	default:
		return "in_progress"
	}
}

// Reason qualifies an aborted session.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonDeclined        Reason = "declined"
	ReasonQuit            Reason = "quit"
	ReasonConfigAbandoned Reason = "config_abandoned"
	ReasonTooManyInvalid  Reason = "too_many_invalid"
)

// State is the mutable part of a session.
type State struct {
	Remaining int
	Invalid   int // consecutive malformed guesses
	Outcome   Outcome
}

// Result is what a finished session reports to its caller.
type Result struct {
	Outcome     Outcome
	Reason      Reason
	ExitCode    int
	Rules       game.Rules
	GameID      string
	Secret      string
	GuessesUsed int
	Daily       string
	Elapsed     time.Duration
}

// SecretSource produces secrets for a set of rules.
type SecretSource interface {
	GenerateFor(r game.Rules) (string, error)
}

// Options configures a Session.
type Options struct {
	Rules  game.Rules // defaults offered at each prompt
	Source SecretSource
	In     LineReader
	Out    io.Writer
	Log    zerolog.Logger
	Daily  string // date key when Source is a daily source
	Help   func(io.Writer) error
}

// Session runs one game against a player.
type Session struct {
	rules  game.Rules
	source SecretSource
	in     LineReader
	out    io.Writer
	log    zerolog.Logger
	daily  string
	help   func(io.Writer) error

	mc     *machineContext
	interp *statekit.Interpreter[*machineContext]
	state  State
	game   *game.Game
}

// New builds a session. Zero Rules mean game.DefaultRules; otherwise zero
// numeric fields take the game defaults.
func New(opts Options) (*Session, error) {
	if opts.Source == nil || opts.In == nil || opts.Out == nil {
		return nil, fmt.Errorf("session: source, input and output are required")
	}
	if opts.Rules == (game.Rules{}) {
		opts.Rules = game.DefaultRules()
	}
	if opts.Help == nil {
		opts.Help = WriteHelp
	}
	mc := &machineContext{log: opts.Log}
	machine, err := newMachine(mc)
	if err != nil {
		return nil, fmt.Errorf("build session machine: %w", err)
	}
	return &Session{
		rules:  opts.Rules.WithDefaults(),
		source: opts.Source,
		in:     opts.In,
		out:    opts.Out,
		log:    opts.Log,
		daily:  opts.Daily,
		help:   opts.Help,
		mc:     mc,
		interp: statekit.NewInterpreter(machine),
	}, nil
}

// Phase returns the current statechart phase.
func (s *Session) Phase() Phase { return Phase(s.interp.State().Value) }

// State returns a copy of the session state.
func (s *Session) State() State { return s.state }

// Game returns the game once the rules are settled, nil before.
func (s *Session) Game() *game.Game { return s.game }

// send fires ev and logs when the chart did not move.
func (s *Session) send(ev statekit.EventType) {
	from := s.Phase()
	s.interp.Send(statekit.Event{Type: ev})
	if to := s.Phase(); to == from {
		s.log.Warn().Str("phase", string(from)).Str("event", string(ev)).Msg("event ignored")
	} else {
		s.log.Debug().Str("from", string(from)).Str("to", string(to)).Msg("session transition")
	}
}

// Run plays the session to its end.
func (s *Session) Run(ctx context.Context) Result {
	s.interp.Start()

	if !s.confirmStart(ctx) {
		s.send(evDecline)
		return s.finish(OutcomeAborted, ReasonDeclined, 0)
	}
	s.send(evPlay)

	s.configureRules(ctx)
	s.send(evRulesSet)

	budget, ok := s.askInt(ctx,
		fmt.Sprintf("How many guesses would you like? Please enter a number from 1 - %d (%d)", game.MaxGuesses, s.rules.Guesses),
		1, game.MaxGuesses, s.rules.Guesses)
	if !ok {
		s.printf("Goodbye.\n")
		s.send(evAbandon)
		return s.finish(OutcomeAborted, ReasonConfigAbandoned, 1)
	}
	s.rules.Guesses = budget
	s.printf("OK. So we're going to give you %d guesses to solve my number!\n", budget)
	s.send(evBudgetSet)

	low, high := s.rules.DigitBounds()
	def := min(max(s.rules.Digits, low), high)
	length, ok := s.askInt(ctx,
		fmt.Sprintf("How long a problem do you want? Please enter a number from %d - %d (%d)", low, high, def),
		low, high, def)
	if !ok {
		s.printf("Goodbye.\n")
		s.send(evAbandon)
		return s.finish(OutcomeAborted, ReasonConfigAbandoned, 1)
	}
	s.rules.Digits = length

	secret, err := s.source.GenerateFor(s.rules)
	if err != nil {
		s.log.Error().Err(err).Interface("rules", s.rules).Msg("generate secret")
		s.printf("I couldn't come up with a number for those rules. Goodbye.\n")
		s.send(evAbandon)
		return s.finish(OutcomeAborted, ReasonConfigAbandoned, 1)
	}
	s.game = game.New(s.rules, secret)
	s.game.Daily = s.daily
	s.state.Remaining = s.game.Remaining
	s.send(evLengthSet)
	s.log.Info().Str("gameId", s.game.ID).Interface("rules", s.rules).Str("daily", s.daily).Msg("game started")

	s.printf("OK! We've got a game to play!\n"+
		"You have %d guesses to find my %d digit number.\n"+
		"As a reminder, digits %s allowed to repeat and only the digits %s are in use.\n\n"+
		"Let's play!\n\n",
		s.rules.Guesses, s.rules.Digits, repeatWord(s.rules.AllowRepeats), listDigits(s.rules.Alphabet()))

	return s.play(ctx)
}

// confirmStart asks whether to play, showing help on request.
func (s *Session) confirmStart(ctx context.Context) bool {
	for {
		s.printf("Press H for help.\n")
		line, ok := s.read(ctx, "Do you want to play a game with me (y/N)?")
		if !ok {
			return false
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		case "h":
			if err := s.help(s.out); err != nil {
				s.log.Error().Err(err).Msg("render help")
			}
		default:
			return false
		}
	}
}

// configureRules offers to flip repeats and change the distinct digit count.
// Giving up on the distinct digit count keeps the previous value.
func (s *Session) configureRules(ctx context.Context) {
	if s.askYes(ctx, fmt.Sprintf("Repeated digits %s currently allowed. Do you want to change this (y/N)?", repeatWord(s.rules.AllowRepeats))) {
		s.rules.AllowRepeats = !s.rules.AllowRepeats
	}
	if s.askYes(ctx, fmt.Sprintf("%d distinct digits are currently in use. Do you want to change this (y/N)?", s.rules.DistinctDigits)) {
		n, ok := s.askInt(ctx,
			fmt.Sprintf("How many distinct digits, %d - %d, would you like to use?", game.MinDistinct, game.MaxDistinct),
			game.MinDistinct, game.MaxDistinct, s.rules.DistinctDigits)
		if ok {
			s.rules.DistinctDigits = n
		}
	}
	s.printf("For this game we're going to use %d digits (%s) and repeated digits %s allowed.\n",
		s.rules.DistinctDigits, listDigits(s.rules.Alphabet()), repeatWord(s.rules.AllowRepeats))
}

// play is the guess loop.
func (s *Session) play(ctx context.Context) Result {
	for {
		line, _ := s.read(ctx, fmt.Sprintf(
			"You've got %d guesses left to find my %d digit number. Type 'h' to see the history or let me know your guess.",
			s.state.Remaining, s.rules.Digits))

		c := game.Classify(line, s.rules.Digits)
		switch c.Kind {
		case game.KindQuit:
			s.send(evQuit)
			if s.confirmQuit(ctx) {
				s.printf("OK. Goodbye! Nice playing with you!\n")
				s.send(evConfirmQuit)
				return s.finish(OutcomeAborted, ReasonQuit, 0)
			}
			s.send(evResume)

		case game.KindShowHistory:
			s.send(evHistory)
			s.showHistory()
			s.send(evResume)

		case game.KindMalformed:
			s.state.Invalid++
			s.log.Debug().Str("problem", c.Problem.String()).Int("invalid", s.state.Invalid).Msg("malformed guess")
			if s.state.Invalid >= MaxInvalid {
				s.printf("OK. %d invalid guesses in a row is too many. I'm outta here!\n", s.state.Invalid)
				s.send(evGiveUp)
				return s.finish(OutcomeAborted, ReasonTooManyInvalid, 1)
			}
			s.reportMalformed(c)

		case game.KindCandidate:
			s.state.Invalid = 0
			s.send(evScore)
			res, st, err := s.game.ApplyGuess(c.Digits)
			if err != nil {
				s.log.Error().Err(err).Str("guess", c.Digits).Msg("apply guess")
				s.send(evContinue)
				continue
			}
			s.state.Remaining = s.game.Remaining
			s.log.Debug().Str("gameId", s.game.ID).Int("exact", res.Score.Exact).Int("partial", res.Score.Partial).Msg("guess scored")

			switch st {
			case game.StateWon:
				s.printf("Congrats! You win! You guessed my secret number of %s!\n", s.game.Secret)
				s.send(evWin)
				return s.finish(OutcomeWon, ReasonNone, 0)
			case game.StateLost:
				s.printf("%s\nYEAH!!! I WIN!!! You couldn't guess my secret number! It was %s\n", res, s.game.Secret)
				s.send(evLose)
				return s.finish(OutcomeLost, ReasonNone, 0)
			default:
				s.printf("%s   Not quite there yet. You have %d in the right place and %d are in the mix.\n",
					res, res.Score.Exact, res.Score.Partial)
				s.send(evContinue)
			}
		}
	}
}

// confirmQuit asks whether the player really wants to stop. An empty answer
// or end of input means yes.
func (s *Session) confirmQuit(ctx context.Context) bool {
	line, ok := s.read(ctx, "You sure you want to quit (Y/n)?")
	if !ok {
		return true
	}
	line = strings.TrimSpace(line)
	return line == "" || line[0] == 'y' || line[0] == 'Y'
}

func (s *Session) reportMalformed(c game.Classification) {
	switch c.Problem {
	case game.ProblemWrongLength:
		dir := "more"
		if c.Observed < s.rules.Digits {
			dir = "less"
		}
		s.printf("Hey! %q is %s than %d digits. Please try again!\n", c.Input, dir, s.rules.Digits)
	default:
		s.printf("Hey! %q isn't a valid entry. Please try again!\n", c.Input)
	}
}

func (s *Session) showHistory() {
	s.printf("\nYou have %d guesses remaining to try and guess my %d digit number.\n"+
		"As a reminder, digits %s allowed to repeat and only the digits %s are in use.\n\n",
		s.state.Remaining, s.rules.Digits, repeatWord(s.rules.AllowRepeats), listDigits(s.rules.Alphabet()))
	for i, g := range s.game.History.Entries() {
		s.printf("%d:\t%s\n", i+1, g)
	}
}

func (s *Session) finish(outcome Outcome, reason Reason, code int) Result {
	s.state.Outcome = outcome
	res := Result{
		Outcome:  outcome,
		Reason:   reason,
		ExitCode: code,
		Rules:    s.rules,
	}
	if s.game != nil {
		res.GameID = s.game.ID
		res.Secret = s.game.Secret
		res.GuessesUsed = s.game.GuessesUsed()
		res.Daily = s.game.Daily
		res.Elapsed = time.Since(s.game.StartedAt)
	}
	s.log.Info().
		Str("gameId", res.GameID).
		Str("outcome", outcome.String()).
		Str("reason", string(reason)).
		Int("guesses", res.GuessesUsed).
		Int("transitions", s.mc.transitions).
		Msg("session finished")
	return res
}

func repeatWord(allowed bool) string {
	if allowed {
		return "are"
	}
	return "are not"
}

// listDigits renders "123" as "1, 2, 3".
func listDigits(alphabet string) string {
	return strings.Join(strings.Split(alphabet, ""), ", ")
}
