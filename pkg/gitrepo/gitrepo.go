// Package gitrepo keeps the production checkout in sync with its upstream.
// Fetch failures get exactly one remediation attempt: the remote is switched
// from HTTPS to the SSH-keyed form and the operation retried once. A second
// failure is fatal and carries operator remediation text.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

// 🔧 Options configures the checkout.
type Options struct {
	URL    string // HTTPS clone URL, tried first
	SSHURL string // SSH form, tried once after an HTTPS failure
	Dir    string // local checkout path
	Branch string
}

// 🚨 FetchError is the fatal outcome after both credential schemes failed.
// It carries the exact commands an operator can run by hand.
type FetchError struct {
	Opts Options
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s after HTTPS and SSH attempts: %v", e.Opts.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Remediation returns the manual recovery procedure.
func (e *FetchError) Remediation() string {
	return fmt.Sprintf(`check network access and credentials, then run by hand:

  git clone %s %s
  # or, over SSH:
  ssh-keygen -t ed25519 -f ~/.ssh/id_ed25519 -N ""
  # add ~/.ssh/id_ed25519.pub as a deploy key on the repository, then:
  git clone %s %s
`, e.Opts.URL, e.Opts.Dir, e.Opts.SSHURL, e.Opts.Dir)
}

// 🏃 Ensure makes the checkout exist and match upstream. A missing checkout
// is cloned; an existing one is fetched and hard-reset to the upstream
// branch, discarding local drift.
func Ensure(ctx context.Context, r shell.Runner, opts Options) error {
	logger := zerolog.Ctx(ctx)

	branch := opts.Branch
	if branch == "" {
		branch = "main"
	}

	if _, err := os.Stat(filepath.Join(opts.Dir, ".git")); err != nil {
		return clone(ctx, r, opts)
	}

	logger.Debug().Str("dir", opts.Dir).Msg("refreshing existing checkout")

	// fetch-via-https -> on failure -> switch-to-ssh -> fetch-via-ssh -> fatal
	res, err := r.Run(ctx, shell.Command{Name: "git", Args: []string{"fetch", "origin"}, Dir: opts.Dir})
	if err != nil {
		return errors.Errorf("running git fetch: %w", err)
	}
	if !res.Success() {
		logger.Warn().Str("dir", opts.Dir).Msg("fetch failed, switching remote to SSH")
		if _, err := r.Run(ctx, shell.Command{Name: "git", Args: []string{"remote", "set-url", "origin", opts.SSHURL}, Dir: opts.Dir}); err != nil {
			return errors.Errorf("switching remote to SSH: %w", err)
		}
		res, err = r.Run(ctx, shell.Command{Name: "git", Args: []string{"fetch", "origin"}, Dir: opts.Dir})
		if err != nil {
			return errors.Errorf("running git fetch over SSH: %w", err)
		}
		if !res.Success() {
			return &FetchError{Opts: opts, Err: errors.Errorf("git fetch exited %d", res.ExitCode)}
		}
	}

	res, err = r.Run(ctx, shell.Command{Name: "git", Args: []string{"reset", "--hard", "origin/" + branch}, Dir: opts.Dir})
	if err != nil {
		return errors.Errorf("running git reset: %w", err)
	}
	if !res.Success() {
		return errors.Errorf("resetting to origin/%s: git exited %d", branch, res.ExitCode)
	}
	return nil
}

// clone creates a fresh checkout, falling back to SSH exactly once.
func clone(ctx context.Context, r shell.Runner, opts Options) error {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("url", opts.URL).Str("dir", opts.Dir).Msg("cloning production repository")

	res, err := r.Run(ctx, shell.Command{Name: "git", Args: []string{"clone", opts.URL, opts.Dir}, Stream: true})
	if err != nil {
		return errors.Errorf("running git clone: %w", err)
	}
	if res.Success() {
		return nil
	}

	logger.Warn().Str("url", opts.URL).Msg("HTTPS clone failed, retrying over SSH")
	res, err = r.Run(ctx, shell.Command{Name: "git", Args: []string{"clone", opts.SSHURL, opts.Dir}, Stream: true})
	if err != nil {
		return errors.Errorf("running git clone over SSH: %w", err)
	}
	if !res.Success() {
		return &FetchError{Opts: opts, Err: errors.Errorf("git clone exited %d", res.ExitCode)}
	}
	return nil
}
