package cli

import (
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/game"
	"github.com/robalobadob/mastermind/internal/httpserver"
	"github.com/robalobadob/mastermind/internal/results"
	"github.com/robalobadob/mastermind/internal/store"
)

// newServeCmd creates the serve command.
func (a *App) newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON game API",
		Long: `Serve games over HTTP. Each new game returns a bearer token that
authorises guesses and history requests for that game only.

Requires JWT_SECRET. Finished games are recorded when --db or MASTERMIND_DB
names a results ledger.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.RequireSecret(); err != nil {
				return err
			}
			logger := a.logger(cfg)

			opts := httpserver.Options{
				Store:       store.NewMemoryStore(),
				Generator:   game.NewGenerator(nil),
				TokenSecret: cfg.JWTSecret,
				TokenTTL:    cfg.TokenTTL,
				DailySalt:   cfg.DailySalt,
				Origin:      cfg.ClientOrigin,
				Retention:   cfg.Retention,
				Log:         logger,
			}
			if cfg.DBPath != "" {
				st, err := results.Open(cfg.DBPath, logger)
				if err != nil {
					return err
				}
				defer st.Close()
				opts.Ledger = st
			}

			srv := httpserver.New(opts)
			logger.Info().Str("port", cfg.Port).Bool("ledger", opts.Ledger != nil).Msg("starting mastermind api")
			return srv.Start(cmd.Context(), ":"+cfg.Port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "listen port (overrides PORT)")

	return cmd
}
