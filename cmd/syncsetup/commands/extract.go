package commands

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/bootstrap"
	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

// NewExtractCmd creates a new extract command
func NewExtractCmd(factory OptsFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "extract",
		Short: "Extract embedded Python and R payloads from the checkout",
		Long: `Extract scans the wrapper scripts in the checkout's script directory,
pulls out the embedded Python and R program bodies, undoes the quoting
applied when they were inlined, and writes them into the per-language
destination directories. Destinations are recreated on every run.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "extract").Logger().WithContext(ctx)

			o, err := factory(ctx)
			if err != nil {
				return err
			}
			ctx = userlog.NewContext(ctx, o.UserLogger)

			if err := bootstrap.Extract(ctx, o.Config); err != nil {
				return errors.Errorf("extracting payloads: %w", err)
			}
			return nil
		},
	}
}
