// Package shell is the process-runner boundary: every external tool the
// bootstrap touches (package managers, docker, git, rsync, conda) goes
// through a Runner so tests can script outcomes. Success is decided on exit
// status, never by matching output text.
package shell

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 Command describes one external invocation.
type Command struct {
	Name   string   // binary name or path
	Args   []string // arguments, not shell-interpreted
	Dir    string   // working directory; empty means inherit
	Env    []string // extra environment entries appended to the inherited env
	Stream bool     // mirror output to the console while running
}

// 📝 String renders the command the way an operator would type it.
func (c Command) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// 📦 Result carries the structured outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// ✅ Success reports whether the command exited zero.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// 🔌 Runner executes external commands.
type Runner interface {
	// Run executes the command and blocks until it exits. A non-zero exit
	// is not an error; callers inspect Result.ExitCode. The returned error
	// covers failures to start (binary missing, bad dir).
	Run(ctx context.Context, cmd Command) (Result, error)

	// LookPath reports the resolved path of a binary, or an error when it
	// is not installed.
	LookPath(name string) (string, error)
}

// 🏃 ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Console receives streamed output for Stream commands. Defaults to
	// os.Stdout when nil.
	Console io.Writer
}

// 🏭 NewExecRunner creates a runner that streams to stdout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Console: os.Stdout}
}

// Run implements Runner.
func (e *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("cmd", cmd.String()).Str("dir", cmd.Dir).Msg("running command")

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}

	var stdout, stderr bytes.Buffer
	if cmd.Stream {
		console := e.Console
		if console == nil {
			console = os.Stdout
		}
		c.Stdout = io.MultiWriter(&stdout, console)
		c.Stderr = io.MultiWriter(&stderr, console)
	} else {
		c.Stdout = &stdout
		c.Stderr = &stderr
	}

	start := time.Now()
	err := c.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			logger.Debug().Str("cmd", cmd.String()).Int("exit_code", res.ExitCode).Msg("command exited non-zero")
			return res, nil
		}
		return res, errors.Errorf("starting %s: %w", cmd.Name, err)
	}

	logger.Debug().Str("cmd", cmd.String()).Dur("duration", res.Duration).Msg("command finished")
	return res, nil
}

// LookPath implements Runner.
func (e *ExecRunner) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", errors.Errorf("looking up %s: %w", name, err)
	}
	return path, nil
}
