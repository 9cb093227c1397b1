package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/rgonek/docblocks/gdocs"
	"github.com/rgonek/docblocks/internal/config"
	"github.com/rgonek/docblocks/internal/logging"
)

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	logLevel   string
	logFormat  string

	cfg    *config.Config
	logger *slog.Logger

	// newFetcher replaces the Docs API client in tests.
	newFetcher func(ctx context.Context) (gdocs.Fetcher, error)
}

func newRootCmd() *cobra.Command {
	return (&app{}).rootCmd()
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "docblocks",
		Short:         "Compile Google Docs documents into blocks and markdown",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default "+config.DefaultPath+" if present)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "Log format: text|json")

	root.AddCommand(newConvertCmd(a))
	root.AddCommand(newCompareCmd(a))
	root.AddCommand(newFetchCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	levelName := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		levelName = a.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}
	formatName := cfg.Log.Format
	if cmd.Flags().Changed("log-format") {
		formatName = a.logFormat
	}
	format, err := logging.ParseFormat(formatName)
	if err != nil {
		return err
	}
	a.logger = logging.Init(level, format, cmd.ErrOrStderr())

	// maxprocs.Set only fails on an invalid GOMAXPROCS env, in which case
	// the runtime default stays in place.
	_, _ = maxprocs.Set(maxprocs.Logger(func(f string, args ...any) {
		a.logger.Debug(fmt.Sprintf(f, args...))
	}))
	return nil
}

func (a *app) token(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(a.cfg.TokenEnv())
}
