package conda_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisPachulski/sync-and-setup/pkg/conda"
	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func testOpts(t *testing.T) conda.Options {
	home := t.TempDir()
	return conda.Options{
		EnvName:          "datasci",
		PythonVersion:    "3.10",
		Requirements:     []string{"pandas==1.5.3", "numpy==1.24.2"},
		RequirementsFile: filepath.Join(home, "requirements.txt"),
		ActivateHook:     filepath.Join(home, ".datasci_activate.sh"),
		DeactivateHook:   filepath.Join(home, ".datasci_deactivate.sh"),
		RProfile:         filepath.Join(home, ".Rprofile"),
	}
}

func TestProvision_CreatesMissingEnvironment(t *testing.T) {
	f := &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			// Probe fails: the environment does not exist yet
			{Prefix: "conda run -n datasci python --version", Result: shell.Result{ExitCode: 1}, Once: true},
		},
	}
	opts := testOpts(t)

	require.NoError(t, conda.Provision(testContext(t), f, opts))

	assert.True(t, f.Ran("conda create -n datasci python=3.10 -y"))
	assert.True(t, f.Ran("conda run -n datasci pip install -r "+opts.RequirementsFile))
}

func TestProvision_SkipsCreateWhenEnvExists(t *testing.T) {
	f := &shell.FakeRunner{}
	opts := testOpts(t)

	require.NoError(t, conda.Provision(testContext(t), f, opts))

	assert.False(t, f.Ran("conda create"))
	assert.True(t, f.Ran("conda run -n datasci pip install"))
}

func TestProvision_WritesPinnedRequirements(t *testing.T) {
	f := &shell.FakeRunner{}
	opts := testOpts(t)

	require.NoError(t, conda.Provision(testContext(t), f, opts))

	got, err := os.ReadFile(opts.RequirementsFile)
	require.NoError(t, err)
	assert.Equal(t, "pandas==1.5.3\nnumpy==1.24.2\n", string(got))
}

func TestProvision_WritesHooksAndRProfile(t *testing.T) {
	f := &shell.FakeRunner{}
	opts := testOpts(t)

	require.NoError(t, conda.Provision(testContext(t), f, opts))

	activate, err := os.ReadFile(opts.ActivateHook)
	require.NoError(t, err)
	assert.Contains(t, string(activate), "conda activate datasci")

	deactivate, err := os.ReadFile(opts.DeactivateHook)
	require.NoError(t, err)
	assert.Contains(t, string(deactivate), "conda deactivate")

	rprofile, err := os.ReadFile(opts.RProfile)
	require.NoError(t, err)
	assert.Contains(t, string(rprofile), "cloud.r-project.org")
}

func TestProvision_MissingCondaIsFatal(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{}}
	opts := testOpts(t)

	err := conda.Provision(testContext(t), f, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "conda is not installed")
}

func TestProvision_UnwritableRequirementsFileIsFatal(t *testing.T) {
	f := &shell.FakeRunner{}
	opts := testOpts(t)
	opts.RequirementsFile = filepath.Join(t.TempDir(), "missing-dir", "requirements.txt")

	err := conda.Provision(testContext(t), f, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requirements file")
}

func TestProvision_FailedPipInstallIsFatal(t *testing.T) {
	f := &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			{Prefix: "conda run -n datasci pip install", Result: shell.Result{ExitCode: 1}},
		},
	}
	opts := testOpts(t)

	err := conda.Provision(testContext(t), f, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pip exited 1")
}
