package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sandeepkv93/visionary/internal/app"
	"github.com/sandeepkv93/visionary/internal/config"
	"github.com/sandeepkv93/visionary/internal/logger"
)

// cli holds the state shared by every subcommand of one invocation.
type cli struct {
	configPath string
	verbose    bool

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:   "visionary",
		Short: "Bedtime reminders and eye-care exercises for the terminal",
		Long: `visionary keeps a recurring bedtime reminder and a small eye-exercise
companion.

Run without arguments to open the terminal UI. Use "visionary daemon" to keep
reminders firing in the background, or "visionary serve" for the read-only
HTTP API.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
		RunE: c.runTUI,
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", config.DefaultPath(), "Path to the YAML config file")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		c.daemonCmd(),
		c.serveCmd(),
		c.previewCmd(),
		c.exercisesCmd(),
		c.resultsCmd(),
		c.checkinCmd(),
		c.permissionCmd(),
	)
	return root
}

// setup loads the config and builds the logger. Long-running modes log to
// the configured file; one-shot commands log warnings to stderr.
func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	logFile := cfg.LogFile
	if !longRunning(cmd) {
		logFile = ""
		cfg.LogLevel = "warn"
	}
	if c.verbose {
		cfg.LogLevel = "debug"
	}
	log, err := logger.New(cfg.LogLevel, logFile)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	c.cfg = cfg
	c.log = log
	return nil
}

func longRunning(cmd *cobra.Command) bool {
	if cmd == cmd.Root() {
		return true
	}
	switch cmd.Name() {
	case "daemon", "serve":
		return true
	}
	return false
}

func (c *cli) open(ctx context.Context) (*app.App, error) {
	return app.New(ctx, c.cfg, c.log)
}

func (c *cli) runTUI(cmd *cobra.Command, _ []string) error {
	a, err := c.open(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return a.RunTUI(cmd.Context())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
