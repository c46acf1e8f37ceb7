package commands

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/cmd/syncsetup/opts"
	"github.com/ChrisPachulski/sync-and-setup/pkg/bootstrap"
	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

// OptsFactory builds the shared command dependencies after flag parsing.
type OptsFactory func(ctx context.Context) (*opts.RootOpts, error)

// NewLocalizeCmd creates a new localize command
func NewLocalizeCmd(factory OptsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "localize",
		Short: "Rewrite remote-only paths inside the checkout",
		Long: `Localize applies the configured literal path substitutions across every
script file under the checkout, in place. Files with no matching fragment
are left byte-identical.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "localize").Logger().WithContext(ctx)

			o, err := factory(ctx)
			if err != nil {
				return err
			}
			ctx = userlog.NewContext(ctx, o.UserLogger)

			if err := bootstrap.Localize(ctx, o.Config); err != nil {
				return errors.Errorf("localizing checkout: %w", err)
			}
			return nil
		},
	}
}
