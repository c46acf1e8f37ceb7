package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/cmd/syncsetup/opts"
	"github.com/ChrisPachulski/sync-and-setup/pkg/config"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

var (
	// Flags
	configFile string
	debug      bool
)

// newRootOpts creates a new rootOpts with initialized dependencies
func newRootOpts(ctx context.Context) (*opts.RootOpts, error) {
	// Create user logger
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	userLogger := userlog.New(os.Stdout, level)

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.Errorf("resolving home directory: %w", err)
	}

	// The bare binary runs on hard-coded defaults; a config file is optional
	cfg := config.Default(home)
	if configFile != "" {
		cfg, err = config.LoadConfig(configFile, home)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
	} else if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating default config: %w", err)
	}

	return &opts.RootOpts{
		Config:     cfg,
		Runner:     shell.NewExecRunner(),
		UserLogger: userLogger,
	}, nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (defaults are built in)")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &log
}
