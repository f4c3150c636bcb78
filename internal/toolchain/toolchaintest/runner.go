// SPDX-License-Identifier: MPL-2.0

// Package toolchaintest provides a scripted toolchain.Runner for tests.
package toolchaintest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/hslink/hslink/internal/toolchain"
)

// errUnscripted is the cause attached to commands the test did not script.
var errUnscripted = errors.New("command not scripted")

type (
	// Runner answers commands from a fixed script and records every call.
	// Commands are matched on their full command line joined by spaces.
	Runner struct {
		mu      sync.Mutex
		outputs map[string]string
		errs    map[string]error
		calls   []string
	}
)

// NewRunner creates an empty scripted runner.
func NewRunner() *Runner {
	return &Runner{
		outputs: make(map[string]string),
		errs:    make(map[string]error),
	}
}

// On scripts the trimmed output returned for a command line.
func (r *Runner) On(cmdline, output string) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outputs[cmdline] = strings.TrimSpace(output)
	return r
}

// Fail scripts an error returned for a command line.
func (r *Runner) Fail(cmdline string, err error) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs[cmdline] = err
	return r
}

// Run implements toolchain.Runner.
func (r *Runner) Run(_ context.Context, name string, args ...string) (string, error) {
	cmdline := strings.Join(append([]string{name}, args...), " ")

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, cmdline)

	if err, ok := r.errs[cmdline]; ok {
		return "", err
	}
	if out, ok := r.outputs[cmdline]; ok {
		return out, nil
	}
	return "", &toolchain.SpawnError{Command: cmdline, Err: errUnscripted}
}

// Calls returns the command lines run so far, in order.
func (r *Runner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
