// Package conda provisions the isolated data-science runtime: a named conda
// environment with pinned Python dependencies, shell activation hooks, and
// the R startup profile.
package conda

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

// 🔧 Options describes the environment to provision.
type Options struct {
	EnvName          string
	PythonVersion    string
	Requirements     []string // pinned "pkg==version" lines
	RequirementsFile string
	ActivateHook     string
	DeactivateHook   string
	RProfile         string
}

// 🏃 Provision creates the environment if absent, writes and installs the
// pinned requirements, and lays down the activation hooks and R profile.
// A missing requirements file after the write step is fatal.
func Provision(ctx context.Context, r shell.Runner, opts Options) error {
	logger := zerolog.Ctx(ctx)

	if _, err := r.LookPath("conda"); err != nil {
		return errors.Errorf("conda is not installed: %w", err)
	}

	// Existence is probed by exit status of a command run inside the env,
	// not by parsing `conda env list` output.
	probe, err := r.Run(ctx, shell.Command{
		Name: "conda",
		Args: []string{"run", "-n", opts.EnvName, "python", "--version"},
	})
	if err != nil {
		return errors.Errorf("probing environment %s: %w", opts.EnvName, err)
	}

	if !probe.Success() {
		logger.Info().Str("env", opts.EnvName).Str("python", opts.PythonVersion).Msg("creating conda environment")
		res, err := r.Run(ctx, shell.Command{
			Name:   "conda",
			Args:   []string{"create", "-n", opts.EnvName, "python=" + opts.PythonVersion, "-y"},
			Stream: true,
		})
		if err != nil {
			return errors.Errorf("running conda create: %w", err)
		}
		if !res.Success() {
			return errors.Errorf("creating environment %s: conda exited %d", opts.EnvName, res.ExitCode)
		}
	} else {
		logger.Debug().Str("env", opts.EnvName).Msg("environment already exists")
	}

	if err := writeRequirements(opts); err != nil {
		return err
	}

	res, err := r.Run(ctx, shell.Command{
		Name:   "conda",
		Args:   []string{"run", "-n", opts.EnvName, "pip", "install", "-r", opts.RequirementsFile},
		Stream: true,
	})
	if err != nil {
		return errors.Errorf("running pip install: %w", err)
	}
	if !res.Success() {
		return errors.Errorf("installing requirements: pip exited %d", res.ExitCode)
	}

	if err := writeHooks(opts); err != nil {
		return err
	}

	logger.Debug().Str("env", opts.EnvName).Msg("environment provisioned")
	return nil
}

// writeRequirements materializes the pinned dependency list and verifies it
// actually landed on disk before anything depends on it.
func writeRequirements(opts Options) error {
	content := strings.Join(opts.Requirements, "\n") + "\n"
	if err := os.WriteFile(opts.RequirementsFile, []byte(content), 0644); err != nil {
		return errors.Errorf("writing requirements file: %w", err)
	}
	if _, err := os.Stat(opts.RequirementsFile); err != nil {
		return errors.Errorf("requirements file missing after write: %w", err)
	}
	return nil
}

// writeHooks lays down the activation/deactivation scripts and .Rprofile.
func writeHooks(opts Options) error {
	activate := fmt.Sprintf(`# managed by syncsetup
conda activate %s
export DATASCI_ENV=%s
`, opts.EnvName, opts.EnvName)
	if err := os.WriteFile(opts.ActivateHook, []byte(activate), 0755); err != nil {
		return errors.Errorf("writing activation hook: %w", err)
	}

	deactivate := `# managed by syncsetup
unset DATASCI_ENV
conda deactivate
`
	if err := os.WriteFile(opts.DeactivateHook, []byte(deactivate), 0755); err != nil {
		return errors.Errorf("writing deactivation hook: %w", err)
	}

	rprofile := `# managed by syncsetup
options(repos = c(CRAN = "https://cloud.r-project.org"))
options(stringsAsFactors = FALSE)
Sys.setenv(TZ = "UTC")
`
	if err := os.WriteFile(opts.RProfile, []byte(rprofile), 0644); err != nil {
		return errors.Errorf("writing .Rprofile: %w", err)
	}
	return nil
}
