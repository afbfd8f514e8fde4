// Package cli implements the formhist command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/dshills/formhistory/internal/config"
	"github.com/dshills/formhistory/internal/logging"
)

// BuildInfo is the version information stamped at build time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	LogLevel   string
	Build      BuildInfo
}

// NewRootCommand creates the formhist root command.
func NewRootCommand(build BuildInfo) *cobra.Command {
	opts := &RootOptions{Build: build}

	cmd := &cobra.Command{
		Use:   "formhist",
		Short: "Undo/redo history for structured state",
		Long: `formhist records changes to a structured state value as undoable snapshots.

It can replay scripted edits deterministically or keep a JSON, YAML or TOML
file under history while other programs edit it.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to configuration file (toml, yaml or json)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")

	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewWatchCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// setup loads the configuration and builds the logger. The returned close
// function releases the log sink.
func (o *RootOptions) setup(cmd *cobra.Command) (config.Config, *slog.Logger, func() error, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return config.Config{}, nil, nil, WrapExitError(ExitCommandError, "loading config", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}

	logger, closeFn, err := logging.New(cfg.Logging, logging.Options{
		Version: o.Build.Version,
		Stderr:  cmd.ErrOrStderr(),
	})
	if err != nil {
		return config.Config{}, nil, nil, WrapExitError(ExitCommandError, "configuring logging", err)
	}
	return cfg, logger, closeFn, nil
}
