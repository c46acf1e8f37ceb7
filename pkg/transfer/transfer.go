// Package transfer pulls the credential and staging directories from the
// remote host over rsync. Failure here is user-recoverable: the error
// carries a full manual-transfer procedure for the operator.
package transfer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

// 🔧 Options describes the remote endpoint and the local landing dirs.
type Options struct {
	Host             string
	User             string
	RemoteKeyDir     string
	RemoteStagingDir string
	LocalKeyDir      string
	LocalStagingDir  string
}

// endpoint renders user@host.
func (o Options) endpoint() string {
	return o.User + "@" + o.Host
}

// 🚨 SyncError is the fatal outcome of a failed transfer, carrying the
// fallback manual procedure.
type SyncError struct {
	Opts Options
	Err  error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("syncing from %s: %v", e.Opts.endpoint(), e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// Remediation returns the manual transfer procedure.
func (e *SyncError) Remediation() string {
	return fmt.Sprintf(`verify ssh connectivity, then transfer by hand:

  ssh-keygen -t ed25519 -f ~/.ssh/id_ed25519 -N ""
  ssh-copy-id %[1]s
  scp -r %[1]s:%[2]s/ %[3]s/
  scp -r %[1]s:%[4]s/ %[5]s/
`, e.Opts.endpoint(), e.Opts.RemoteKeyDir, e.Opts.LocalKeyDir, e.Opts.RemoteStagingDir, e.Opts.LocalStagingDir)
}

// 🏃 Pull rsyncs the key and staging directories into their local homes.
func Pull(ctx context.Context, r shell.Runner, opts Options) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("endpoint", opts.endpoint()).Msg("pulling keys and staging files")

	pairs := []struct {
		remote, local string
	}{
		{opts.RemoteKeyDir, opts.LocalKeyDir},
		{opts.RemoteStagingDir, opts.LocalStagingDir},
	}

	for _, p := range pairs {
		if err := os.MkdirAll(p.local, 0700); err != nil {
			return errors.Errorf("creating %s: %w", p.local, err)
		}

		src := opts.endpoint() + ":" + filepath.Clean(p.remote) + "/"
		res, err := r.Run(ctx, shell.Command{
			Name:   "rsync",
			Args:   []string{"-az", "--delete", src, p.local + "/"},
			Stream: true,
		})
		if err != nil {
			return errors.Errorf("running rsync: %w", err)
		}
		if !res.Success() {
			return &SyncError{Opts: opts, Err: errors.Errorf("rsync exited %d", res.ExitCode)}
		}
		logger.Debug().Str("remote", p.remote).Str("local", p.local).Msg("directory synced")
	}
	return nil
}
