package transfer_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/ChrisPachulski/sync-and-setup/pkg/shell"
	"github.com/ChrisPachulski/sync-and-setup/pkg/transfer"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func testOpts(t *testing.T) transfer.Options {
	home := t.TempDir()
	return transfer.Options{
		Host:             "bastion.internal",
		User:             "ubuntu",
		RemoteKeyDir:     "/home/ubuntu/keys",
		RemoteStagingDir: "/home/ubuntu/staging",
		LocalKeyDir:      filepath.Join(home, "keys"),
		LocalStagingDir:  filepath.Join(home, "staging"),
	}
}

func TestPull_SyncsBothDirectories(t *testing.T) {
	f := &shell.FakeRunner{}
	opts := testOpts(t)

	require.NoError(t, transfer.Pull(testContext(t), f, opts))

	assert.Equal(t, 2, f.CountRan("rsync -az --delete"))
	assert.True(t, f.Ran("rsync -az --delete ubuntu@bastion.internal:/home/ubuntu/keys/"))
	assert.True(t, f.Ran("rsync -az --delete ubuntu@bastion.internal:/home/ubuntu/staging/"))

	// Local landing dirs are created with restrictive modes
	info, err := os.Stat(opts.LocalKeyDir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestPull_FailureCarriesRemediation(t *testing.T) {
	f := &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			{Prefix: "rsync", Result: shell.Result{ExitCode: 255}},
		},
	}
	opts := testOpts(t)

	err := transfer.Pull(testContext(t), f, opts)
	require.Error(t, err)

	var syncErr *transfer.SyncError
	require.True(t, errors.As(err, &syncErr))
	remediation := syncErr.Remediation()
	assert.Contains(t, remediation, "ssh-copy-id ubuntu@bastion.internal")
	assert.Contains(t, remediation, "scp -r ubuntu@bastion.internal:/home/ubuntu/keys/")
	assert.Contains(t, remediation, opts.LocalStagingDir)
}

func TestPull_StopsAtFirstFailure(t *testing.T) {
	f := &shell.FakeRunner{
		Responses: []shell.FakeResponse{
			{Prefix: "rsync", Result: shell.Result{ExitCode: 12}},
		},
	}
	opts := testOpts(t)

	err := transfer.Pull(testContext(t), f, opts)
	require.Error(t, err)
	assert.Equal(t, 1, f.CountRan("rsync"))
}
