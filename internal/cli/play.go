package cli

import (
	"math/rand/v2"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/results"
	"github.com/robalobadob/mastermind/internal/session"
)

// playOptions holds options for the play command.
type playOptions struct {
	daily    bool
	seed     uint64
	player   string
	guesses  int
	digits   int
	repeats  bool
	distinct int
}

// newPlayCmd creates the play command.
func (a *App) newPlayCmd() *cobra.Command {
	opts := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Play games back to back in the terminal. The rules chosen for one game
are offered as the defaults of the next.

Examples:
  # Play with the configured defaults
  mastermind play

  # Today's shared code, recorded under a name
  mastermind play --daily --player ana --db data/results.db

  # Reproducible secrets
  mastermind play --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			opts.apply(cmd, &cfg)
			a.exitCode, err = a.play(cmd, cfg, opts)
			return err
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.daily, "daily", false, "play today's shared code")
	f.Uint64Var(&opts.seed, "seed", 0, "seed the secret generator (0 picks a random seed)")
	f.StringVar(&opts.player, "player", "", "name recorded in the results ledger")
	f.IntVar(&opts.guesses, "guesses", 0, "default guess budget")
	f.IntVar(&opts.digits, "digits", 0, "default code length")
	f.BoolVar(&opts.repeats, "repeats", true, "allow digits to repeat")
	f.IntVar(&opts.distinct, "distinct", 0, "distinct digits in play (below 10 restricts the alphabet to 1..n)")

	return cmd
}

// apply overlays the flags the user actually set onto cfg.
func (o *playOptions) apply(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("player") {
		cfg.Player = o.player
	}
	if f.Changed("guesses") {
		cfg.Rules.Guesses = o.guesses
	}
	if f.Changed("digits") {
		cfg.Rules.Digits = o.digits
	}
	if f.Changed("repeats") {
		cfg.Rules.AllowRepeats = o.repeats
	}
	if f.Changed("distinct") {
		cfg.Rules.DistinctDigits = o.distinct
	}
}

// play runs sessions until one is aborted and returns the exit code.
func (a *App) play(cmd *cobra.Command, cfg config.Config, opts *playOptions) (int, error) {
	if err := cfg.Rules.Validate(); err != nil {
		return 1, err
	}
	logger := a.logger(cfg)
	ctx := cmd.Context()

	var (
		src   session.SecretSource
		today string
	)
	switch {
	case opts.daily:
		ds := daily.Source{Salt: cfg.DailySalt, Now: time.Now}
		today = ds.Date()
		src = ds
	case opts.seed != 0:
		src = game.NewGenerator(rand.New(rand.NewPCG(opts.seed, opts.seed)))
	default:
		src = game.NewGenerator(nil)
	}

	var rec session.Recorder
	if cfg.DBPath != "" {
		st, err := results.Open(cfg.DBPath, logger)
		if err != nil {
			return 1, err
		}
		defer st.Close()
		rec = st
	}

	runner := session.NewRunner(session.Options{
		Rules:  cfg.Rules,
		Source: src,
		In:     session.NewLineReader(a.stdin, a.stdout),
		Out:    a.stdout,
		Log:    logger,
		Daily:  today,
	}, rec, cfg.Player)

	code := runner.Run(ctx)
	logger.Debug().Int("exitCode", code).Msg("play finished")
	return code, nil
}
