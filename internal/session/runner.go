package session

import (
	"context"
	"fmt"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/results"
)

// Recorder stores finished games.
type Recorder interface {
	Record(ctx context.Context, r results.Record) error
}

// PlayedChecker reports whether player already finished the daily game for
// date. A Recorder that also implements it limits daily play to one game.
type PlayedChecker interface {
	AlreadyPlayed(ctx context.Context, player, date string) (bool, error)
}

// Runner plays sessions back to back until one is aborted. The rules chosen
// in one session are offered as the defaults of the next.
type Runner struct {
	opts     Options
	recorder Recorder
	player   string
}

// NewRunner returns a Runner. recorder may be nil.
func NewRunner(opts Options, recorder Recorder, player string) *Runner {
	return &Runner{opts: opts, recorder: recorder, player: player}
}

// Rules returns the rules the next session will offer.
func (r *Runner) Rules() game.Rules { return r.opts.Rules }

// Run plays until a session is aborted and returns its exit code.
func (r *Runner) Run(ctx context.Context) int {
	for {
		if r.dailyDone(ctx) {
			fmt.Fprintf(r.opts.Out, "You've already played the daily game for %s. Come back tomorrow!\n", r.opts.Daily)
			return 0
		}
		s, err := New(r.opts)
		if err != nil {
			r.opts.Log.Error().Err(err).Msg("start session")
			return 1
		}
		res := s.Run(ctx)
		r.opts.Rules = res.Rules
		r.record(ctx, res)

		if res.Outcome == OutcomeAborted {
			return res.ExitCode
		}
	}
}

// dailyDone reports whether the named player has finished today's daily game.
// Lookup failures are logged and let play continue.
func (r *Runner) dailyDone(ctx context.Context) bool {
	if r.opts.Daily == "" || r.player == "" {
		return false
	}
	pc, ok := r.recorder.(PlayedChecker)
	if !ok {
		return false
	}
	played, err := pc.AlreadyPlayed(ctx, r.player, r.opts.Daily)
	if err != nil {
		r.opts.Log.Warn().Err(err).Msg("daily lookup")
		return false
	}
	return played
}

// record stores sessions that got as far as a secret. Failures are logged only.
func (r *Runner) record(ctx context.Context, res Result) {
	if r.recorder == nil || res.GameID == "" {
		return
	}
	rec := results.Record{
		GameID:      res.GameID,
		Player:      r.player,
		Outcome:     res.Outcome.String(),
		Reason:      string(res.Reason),
		GuessesUsed: res.GuessesUsed,
		Rules:       res.Rules,
		Elapsed:     res.Elapsed,
		Daily:       res.Daily,
		Source:      results.SourceConsole,
	}
	if err := r.recorder.Record(ctx, rec); err != nil {
		r.opts.Log.Warn().Err(err).Str("gameId", res.GameID).Msg("record result")
	}
}
