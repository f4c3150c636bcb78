// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"
)

type (
	// Runner executes an external program and returns its trimmed standard output.
	Runner interface {
		Run(ctx context.Context, name string, args ...string) (string, error)
	}

	// ExecRunner runs programs on the host through os/exec.
	ExecRunner struct {
		// Stderr receives the program's standard error. Defaults to os.Stderr.
		Stderr io.Writer
		// Dir is the working directory. Empty means the current directory.
		Dir string
		// Env, when non-nil, replaces the inherited environment.
		Env []string
	}
)

// NewExecRunner creates a runner that forwards standard error to os.Stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stderr: os.Stderr}
}

// Run starts name with args, waits for it and returns its standard output
// with leading and trailing whitespace removed.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = nil
	cmd.Dir = r.Dir
	if r.Env != nil {
		cmd.Env = r.Env
	}

	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = r.stderr()

	line := commandLine(name, args)
	if err := cmd.Start(); err != nil {
		return "", &SpawnError{Command: line, Err: err}
	}
	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &ExitStatusError{Command: line, ExitCode: exitErr.ExitCode()}
		}
		return "", &SpawnError{Command: line, Err: err}
	}

	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", &EncodingError{Command: line}
	}
	return strings.TrimSpace(string(out)), nil
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr == nil {
		return os.Stderr
	}
	return r.Stderr
}
