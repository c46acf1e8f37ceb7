package userlog_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/ChrisPachulski/sync-and-setup/pkg/userlog"
)

func newTestLogger() (*userlog.Logger, *bytes.Buffer) {
	color.NoColor = true
	var buf bytes.Buffer
	return userlog.New(&buf, zerolog.Disabled), &buf
}

func TestLogger_StepLifecycle(t *testing.T) {
	l, buf := newTestLogger()

	l.StartStep(userlog.StepOperation{Name: "refresh production checkout", Critical: true})
	l.EndStep(nil)

	out := buf.String()
	assert.Contains(t, out, "refresh production checkout")
	assert.Contains(t, out, "✓")
}

func TestLogger_StepFailure(t *testing.T) {
	l, buf := newTestLogger()

	l.StartStep(userlog.StepOperation{Name: "sync keys"})
	l.EndStep(assert.AnError)

	out := buf.String()
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "sync keys")
	assert.Contains(t, out, assert.AnError.Error())
}

func TestLogger_FileOperation(t *testing.T) {
	l, buf := newTestLogger()

	l.LogFileOperation(userlog.FileOperation{
		Path:       "scripts/report.sh",
		Kind:       "script",
		Status:     "localized",
		IsModified: true,
	})

	out := buf.String()
	assert.Contains(t, out, "scripts/report.sh")
	assert.Contains(t, out, "localized")
	assert.Contains(t, out, "⟳")
}

func TestLogger_RemediationBlock(t *testing.T) {
	l, buf := newTestLogger()

	l.Remediation("scp -r host:/keys ~/keys\nssh-copy-id host")

	out := buf.String()
	assert.Contains(t, out, "scp -r host:/keys ~/keys")
	assert.Contains(t, out, "ssh-copy-id host")
}

func TestLogger_Levels(t *testing.T) {
	l, buf := newTestLogger()

	l.Header("bootstrapping")
	l.Info("detecting platform")
	l.Warningf("step %q failed", "pull image")
	l.Errorf("fatal: %s", "no network")
	l.Success("done")

	out := buf.String()
	assert.Contains(t, out, "syncsetup")
	assert.Contains(t, out, "detecting platform")
	assert.Contains(t, out, `step "pull image" failed`)
	assert.Contains(t, out, "fatal: no network")
	assert.Contains(t, out, "done")
}

func TestFromContext_FallsBackToNoop(t *testing.T) {
	l := userlog.FromContext(context.Background())
	assert.NotNil(t, l)

	ctx := userlog.NewContext(context.Background(), l)
	assert.Equal(t, l, userlog.FromContext(ctx))
}
