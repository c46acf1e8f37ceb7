// Package install puts the fixed tool set on the host: container runtime,
// version control, database server, editor, statistical runtime, and
// productivity apps. Every step is install-if-missing and individually
// non-fatal; an unsupported platform fails only that step.
package install

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/platform"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

// 📦 Package describes one installable tool and its per-manager names.
type Package struct {
	Name     string // operator-facing name
	Binary   string // LookPath probe; empty for GUI apps probed via the manager
	Brew     string // brew formula, empty when only a cask exists
	BrewCask string // brew cask name
	Apt      string
	Dnf      string
	Pacman   string
}

// 🗃️ DefaultPackages is the fixed list the bootstrap installs.
func DefaultPackages() []Package {
	return []Package{
		{Name: "docker", Binary: "docker", BrewCask: "docker", Apt: "docker.io", Dnf: "docker", Pacman: "docker"},
		{Name: "git", Binary: "git", Brew: "git", Apt: "git", Dnf: "git", Pacman: "git"},
		{Name: "mysql", Binary: "mysqld", Brew: "mysql", Apt: "mysql-server", Dnf: "community-mysql-server", Pacman: "mariadb"},
		{Name: "vscode", Binary: "code", BrewCask: "visual-studio-code", Apt: "code", Dnf: "code", Pacman: "code"},
		{Name: "r", Binary: "R", Brew: "r", Apt: "r-base", Dnf: "R", Pacman: "r"},
		{Name: "slack", BrewCask: "slack", Apt: "", Dnf: "", Pacman: "slack-desktop"},
		{Name: "dbeaver", BrewCask: "dbeaver-community", Apt: "", Dnf: "", Pacman: "dbeaver"},
	}
}

// 🔍 Installed reports whether the package is already present.
func Installed(ctx context.Context, r shell.Runner, host platform.Host, pkg Package) bool {
	if pkg.Binary != "" {
		if _, err := r.LookPath(pkg.Binary); err == nil {
			return true
		}
		return false
	}
	if host.PackageManager == platform.Brew && pkg.BrewCask != "" {
		res, err := r.Run(ctx, shell.Command{Name: "brew", Args: []string{"list", "--cask", pkg.BrewCask}})
		return err == nil && res.Success()
	}
	return false
}

// 🔨 Ensure installs one package when absent. Unsupported platforms and
// installer failures are reported to the caller, not fatal.
func Ensure(ctx context.Context, r shell.Runner, host platform.Host, pkg Package) error {
	logger := zerolog.Ctx(ctx)

	if Installed(ctx, r, host, pkg) {
		logger.Debug().Str("package", pkg.Name).Msg("already installed")
		return nil
	}

	cmd, err := installCommand(host, pkg)
	if err != nil {
		return err
	}

	logger.Info().Str("package", pkg.Name).Str("cmd", cmd.String()).Msg("installing")
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return errors.Errorf("installing %s: %w", pkg.Name, err)
	}
	if !res.Success() {
		return errors.Errorf("installing %s: installer exited %d", pkg.Name, res.ExitCode)
	}
	return nil
}

// installCommand picks the package-manager invocation for the host.
func installCommand(host platform.Host, pkg Package) (shell.Command, error) {
	switch host.PackageManager {
	case platform.Brew:
		if pkg.BrewCask != "" {
			return shell.Command{Name: "brew", Args: []string{"install", "--cask", pkg.BrewCask}, Stream: true}, nil
		}
		if pkg.Brew != "" {
			return shell.Command{Name: "brew", Args: []string{"install", pkg.Brew}, Stream: true}, nil
		}
	case platform.Apt:
		if pkg.Apt != "" {
			return shell.Command{Name: "sudo", Args: []string{"apt-get", "install", "-y", pkg.Apt}, Stream: true}, nil
		}
	case platform.Dnf:
		if pkg.Dnf != "" {
			return shell.Command{Name: "sudo", Args: []string{"dnf", "install", "-y", pkg.Dnf}, Stream: true}, nil
		}
	case platform.Pacman:
		if pkg.Pacman != "" {
			return shell.Command{Name: "sudo", Args: []string{"pacman", "-S", "--noconfirm", pkg.Pacman}, Stream: true}, nil
		}
	}
	return shell.Command{}, errors.Errorf("package %s on %s/%s: %w", pkg.Name, host.OS, host.Distro, platform.ErrUnsupported)
}

// 🔁 EnsureAll runs Ensure for every package, collecting per-package errors
// instead of stopping at the first failure.
func EnsureAll(ctx context.Context, r shell.Runner, host platform.Host, pkgs []Package) []error {
	var errs []error
	for _, pkg := range pkgs {
		if err := Ensure(ctx, r, host, pkg); err != nil {
			zerolog.Ctx(ctx).Warn().Str("package", pkg.Name).Err(err).Msg("package install failed")
			errs = append(errs, err)
		}
	}
	return errs
}

// 🐳 PullImage pulls the pinned container image.
func PullImage(ctx context.Context, r shell.Runner, image string) error {
	res, err := r.Run(ctx, shell.Command{Name: "docker", Args: []string{"pull", image}, Stream: true})
	if err != nil {
		return errors.Errorf("pulling image %s: %w", image, err)
	}
	if !res.Success() {
		return errors.Errorf("pulling image %s: docker exited %d", image, res.ExitCode)
	}
	return nil
}
