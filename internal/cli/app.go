// Package cli wires configuration, logging and the game components into the
// mastermind command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/robalobadob/mastermind/internal/config"
)

// Version is set at build time.
var Version = "dev"

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	dbPath     string

	exitCode int
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	play := app.newPlayCmd()
	app.root = &cobra.Command{
		Use:   "mastermind",
		Short: "Break a secret code of digits",
		Long: `mastermind picks a secret code of digits and scores each guess with
X for a right digit in the right place and O for a right digit in the
wrong place. Run without a subcommand to play in the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          play.RunE,
	}
	app.root.Flags().AddFlagSet(play.Flags())

	pf := app.root.PersistentFlags()
	pf.StringVarP(&app.configPath, "config", "c", "", "YAML config file (overrides MASTERMIND_CONFIG)")
	pf.StringVar(&app.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&app.dbPath, "db", "", "SQLite results ledger (overrides MASTERMIND_DB)")

	app.root.AddCommand(
		play,
		app.newServeCmd(),
		app.newStatsCmd(),
		app.newVersionCmd(),
	)

	return app
}

// WithIO sets custom input and output streams.
func (a *App) WithIO(stdin io.Reader, stdout, stderr io.Writer) *App {
	a.stdin = stdin
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetIn(stdin)
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

// ExitCode is the process exit code requested by the last command.
func (a *App) ExitCode() int { return a.exitCode }

// loadConfig reads the configuration and applies the persistent flags on top.
func (a *App) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = a.dbPath
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// logger builds the console logger for cfg and installs it globally.
func (a *App) logger(cfg config.Config) zerolog.Logger {
	l := zerolog.New(zerolog.ConsoleWriter{Out: a.stderr}).
		Level(cfg.Level()).
		With().Timestamp().Logger()
	log.Logger = l
	return l
}

// newVersionCmd creates the version command.
func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "mastermind version %s\n", Version)
		},
	}
}
