package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/daily"
	"github.com/robalobadob/mastermind/internal/results"
)

// newStatsCmd creates the stats command.
func (a *App) newStatsCmd() *cobra.Command {
	var (
		date       string
		limit      int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show totals and the daily leaderboard from the results ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.DBPath == "" {
				return errors.New("no results ledger: set --db or MASTERMIND_DB")
			}
			st, err := results.Open(cfg.DBPath, a.logger(cfg))
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			sum, err := st.Summary(ctx)
			if err != nil {
				return err
			}
			if date == "" {
				date = daily.DateKey(time.Now())
			}
			top, err := st.Leaderboard(ctx, date, limit)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(a.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"summary":     sum,
					"winRate":     sum.WinRate(),
					"date":        date,
					"leaderboard": top,
				})
			}

			fmt.Fprintf(a.stdout, "Played:   %d\n", sum.Played)
			fmt.Fprintf(a.stdout, "Won:      %d\n", sum.Won)
			fmt.Fprintf(a.stdout, "Lost:     %d\n", sum.Lost)
			fmt.Fprintf(a.stdout, "Aborted:  %d\n", sum.Aborted)
			fmt.Fprintf(a.stdout, "Win rate: %.0f%%\n", sum.WinRate()*100)
			if sum.Won > 0 {
				fmt.Fprintf(a.stdout, "Best:     %d guesses, %.1f on average\n", sum.BestGuesses, sum.AvgGuessesToWin)
			}
			fmt.Fprintf(a.stdout, "\nDaily %s\n", date)
			if len(top) == 0 {
				fmt.Fprintln(a.stdout, "  no wins yet")
			}
			for i, row := range top {
				player := row.Player
				if player == "" {
					player = "anonymous"
				}
				fmt.Fprintf(a.stdout, "  %2d. %-16s %2d guesses  %s\n", i+1, player, row.Guesses,
					(time.Duration(row.ElapsedMs) * time.Millisecond).Round(time.Second))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "leaderboard date YYYY-MM-DD (default today, UTC)")
	cmd.Flags().IntVar(&limit, "limit", 10, "leaderboard rows")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output as JSON")

	return cmd
}
