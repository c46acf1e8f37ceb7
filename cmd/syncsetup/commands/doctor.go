package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/install"
	"github.com/ChrisPachulski/sync-and-setup/pkg/platform"
)

// NewDoctorCmd creates a new doctor command
func NewDoctorCmd(factory OptsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Report host platform and which tools are already installed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "doctor").Logger().WithContext(ctx)

			o, err := factory(ctx)
			if err != nil {
				return err
			}

			host, err := platform.Detect()
			if err != nil {
				return errors.Errorf("detecting platform: %w", err)
			}
			o.UserLogger.Infof("host: %s %s (package manager: %s)", host.OS, host.Distro, host.PackageManager)

			for _, pkg := range install.DefaultPackages() {
				if install.Installed(ctx, o.Runner, host, pkg) {
					o.UserLogger.Infof("%-10s installed", pkg.Name)
				} else {
					o.UserLogger.Warningf("%-10s missing", pkg.Name)
				}
			}
			return nil
		},
	}
}
