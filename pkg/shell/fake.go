package shell

import (
	"context"
	"strings"
	"sync"

	"gitlab.com/tozd/go/errors"
)

// 🧪 FakeRunner records commands and plays back scripted results. Responses
// are matched by command prefix ("git clone", "conda create", ...); the
// first matching response wins. Unmatched commands succeed with exit 0.
type FakeRunner struct {
	mu        sync.Mutex
	Commands  []Command
	Responses []FakeResponse
	Binaries  map[string]string // LookPath table; nil means everything resolves
}

// 🎬 FakeResponse is one scripted outcome.
type FakeResponse struct {
	Prefix string // matched against Command.String()
	Result Result
	Err    error
	Once   bool // consume after first match

	used bool
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Commands = append(f.Commands, cmd)

	line := cmd.String()
	for i := range f.Responses {
		r := &f.Responses[i]
		if r.used || !strings.HasPrefix(line, r.Prefix) {
			continue
		}
		if r.Once {
			r.used = true
		}
		return r.Result, r.Err
	}
	return Result{ExitCode: 0}, nil
}

// LookPath implements Runner.
func (f *FakeRunner) LookPath(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.Binaries == nil {
		return "/usr/bin/" + name, nil
	}
	path, ok := f.Binaries[name]
	if !ok {
		return "", errors.Errorf("binary %s not installed", name)
	}
	return path, nil
}

// 🔍 Ran reports whether any recorded command starts with prefix.
func (f *FakeRunner) Ran(prefix string) bool {
	return f.CountRan(prefix) > 0
}

// 🔢 CountRan counts recorded commands starting with prefix.
func (f *FakeRunner) CountRan(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := 0
	for _, c := range f.Commands {
		if strings.HasPrefix(c.String(), prefix) {
			n++
		}
	}
	return n
}
