package install_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/install"
	"github.com/ChrisPachulski/sync-and-setup/pkg/platform"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

var (
	aptHost  = platform.Host{OS: "linux", Distro: "ubuntu", PackageManager: platform.Apt}
	brewHost = platform.Host{OS: "darwin", PackageManager: platform.Brew}
)

var gitPkg = install.Package{Name: "git", Binary: "git", Brew: "git", Apt: "git", Dnf: "git", Pacman: "git"}

func TestEnsure_SkipsInstalledBinary(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{"git": "/usr/bin/git"}}

	require.NoError(t, install.Ensure(testContext(t), f, aptHost, gitPkg))
	assert.Empty(t, f.Commands)
}

func TestEnsure_InstallsMissingPackageWithApt(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{}}

	require.NoError(t, install.Ensure(testContext(t), f, aptHost, gitPkg))
	assert.True(t, f.Ran("sudo apt-get install -y git"))
}

func TestEnsure_UsesBrewCaskForApps(t *testing.T) {
	f := &shell.FakeRunner{
		Binaries: map[string]string{},
		Responses: []shell.FakeResponse{
			// Cask probe reports the app is absent
			{Prefix: "brew list --cask slack", Result: shell.Result{ExitCode: 1}},
		},
	}
	slack := install.Package{Name: "slack", BrewCask: "slack"}

	require.NoError(t, install.Ensure(testContext(t), f, brewHost, slack))
	assert.True(t, f.Ran("brew install --cask slack"))
}

func TestEnsure_UnsupportedPlatformIsReported(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{}}
	slack := install.Package{Name: "slack", BrewCask: "slack"} // no apt name

	err := install.Ensure(testContext(t), f, aptHost, slack)
	require.Error(t, err)
	assert.True(t, errors.Is(err, platform.ErrUnsupported))
}

func TestEnsure_InstallerFailureIsReported(t *testing.T) {
	f := &shell.FakeRunner{
		Binaries: map[string]string{},
		Responses: []shell.FakeResponse{
			{Prefix: "sudo apt-get install", Result: shell.Result{ExitCode: 100}},
		},
	}

	err := install.Ensure(testContext(t), f, aptHost, gitPkg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "installer exited 100")
}

func TestEnsureAll_CollectsFailuresAndContinues(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{}}
	pkgs := []install.Package{
		{Name: "broken", BrewCask: "broken"}, // unsupported on apt
		gitPkg,
	}

	errs := install.EnsureAll(testContext(t), f, aptHost, pkgs)
	assert.Len(t, errs, 1)
	assert.True(t, f.Ran("sudo apt-get install -y git"))
}

func TestPullImage(t *testing.T) {
	f := &shell.FakeRunner{}
	require.NoError(t, install.PullImage(testContext(t), f, "mysql:8.0.33"))
	assert.True(t, f.Ran("docker pull mysql:8.0.33"))

	f = &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			{Prefix: "docker pull", Result: shell.Result{ExitCode: 1}},
		},
	}
	err := install.PullImage(testContext(t), f, "mysql:8.0.33")
	require.Error(t, err)
}

func TestDefaultPackages_CoversRequiredTooling(t *testing.T) {
	names := map[string]bool{}
	for _, p := range install.DefaultPackages() {
		names[p.Name] = true
	}
	for _, want := range []string{"docker", "git", "mysql", "vscode", "r", "slack", "dbeaver"} {
		assert.True(t, names[want], "missing package %s", want)
	}
}
