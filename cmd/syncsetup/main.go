package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/cmd/syncsetup/commands"
	"github.com/ChrisPachulski/sync-and-setup/pkg/bootstrap"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "syncsetup",
		Short: "Bootstrap a workstation for the production data pipeline",
		Long: `syncsetup detects the host OS, installs the fixed tool set, pulls
credential and staging files from the remote host, refreshes the production
checkout, rewrites remote-only paths to local ones, extracts embedded Python
and R payloads, and provisions the conda data-science environment.

Run with no arguments to execute the full pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o, err := newRootOpts(ctx)
			if err != nil {
				return err
			}

			o.UserLogger.Header("bootstrapping workstation")
			pipeline := bootstrap.New(o.Config, o.Runner, o.UserLogger)
			if err := pipeline.Run(ctx); err != nil {
				o.UserLogger.Errorf("bootstrap failed: %v", err)
				return errors.Errorf("running bootstrap: %w", err)
			}

			o.UserLogger.Success("all steps completed")
			return nil
		},
	}

	addRootFlags(rootCmd)
	rootCmd.AddCommand(commands.NewLocalizeCmd(newRootOpts))
	rootCmd.AddCommand(commands.NewExtractCmd(newRootOpts))
	rootCmd.AddCommand(commands.NewDoctorCmd(newRootOpts))

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := log.WithContext(context.Background())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}
