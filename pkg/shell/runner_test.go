package shell_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func TestExecRunner_CapturesOutputAndExitCode(t *testing.T) {
	r := shell.NewExecRunner()

	res, err := r.Run(testContext(t), shell.Command{Name: "sh", Args: []string{"-c", "echo out; echo err >&2"}})
	require.NoError(t, err)
	assert.True(t, res.Success())
	assert.Equal(t, "out\n", res.Stdout)
	assert.Equal(t, "err\n", res.Stderr)
}

func TestExecRunner_NonZeroExitIsNotAnError(t *testing.T) {
	r := shell.NewExecRunner()

	res, err := r.Run(testContext(t), shell.Command{Name: "sh", Args: []string{"-c", "exit 3"}})
	require.NoError(t, err)
	assert.False(t, res.Success())
	assert.Equal(t, 3, res.ExitCode)
}

func TestExecRunner_MissingBinaryIsAnError(t *testing.T) {
	r := shell.NewExecRunner()

	_, err := r.Run(testContext(t), shell.Command{Name: "definitely-not-a-binary-xyz"})
	require.Error(t, err)
}

func TestExecRunner_StreamMirrorsToConsole(t *testing.T) {
	var console bytes.Buffer
	r := &shell.ExecRunner{Console: &console}

	res, err := r.Run(testContext(t), shell.Command{Name: "sh", Args: []string{"-c", "echo streamed"}, Stream: true})
	require.NoError(t, err)
	assert.Equal(t, "streamed\n", res.Stdout)
	assert.Equal(t, "streamed\n", console.String())
}

func TestCommand_String(t *testing.T) {
	cmd := shell.Command{Name: "git", Args: []string{"clone", "url"}}
	assert.Equal(t, "git clone url", cmd.String())
}

func TestFakeRunner_ScriptedResponses(t *testing.T) {
	f := &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			{Prefix: "git clone https", Result: shell.Result{ExitCode: 128}, Once: true},
			{Prefix: "git clone", Result: shell.Result{ExitCode: 0}},
		},
	}
	ctx := testContext(t)

	res, err := f.Run(ctx, shell.Command{Name: "git", Args: []string{"clone", "https://x"}})
	require.NoError(t, err)
	assert.Equal(t, 128, res.ExitCode)

	// The once-response is consumed; the general one now matches
	res, err = f.Run(ctx, shell.Command{Name: "git", Args: []string{"clone", "https://x"}})
	require.NoError(t, err)
	assert.True(t, res.Success())

	// Unmatched commands succeed
	res, err = f.Run(ctx, shell.Command{Name: "rsync"})
	require.NoError(t, err)
	assert.True(t, res.Success())

	assert.Equal(t, 2, f.CountRan("git clone"))
	assert.True(t, f.Ran("rsync"))
}

func TestFakeRunner_LookPath(t *testing.T) {
	f := &shell.FakeRunner{Binaries: map[string]string{"git": "/usr/bin/git"}}

	path, err := f.LookPath("git")
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/git", path)

	_, err = f.LookPath("docker")
	require.Error(t, err)
}
