// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSpawn is the sentinel error wrapped by SpawnError.
	ErrSpawn = errors.New("cannot start command")
	// ErrExitStatus is the sentinel error wrapped by ExitStatusError.
	ErrExitStatus = errors.New("command exited with non-zero status")
	// ErrEncoding is the sentinel error wrapped by EncodingError.
	ErrEncoding = errors.New("command output is not valid UTF-8")
	// ErrInvalidCompilerID is the sentinel error wrapped by InvalidCompilerIDError.
	ErrInvalidCompilerID = errors.New("invalid compiler id")
)

type (
	// SpawnError is returned when a program cannot be found or started.
	SpawnError struct {
		Command string
		Err     error
	}

	// ExitStatusError is returned when a program ran but exited unsuccessfully.
	ExitStatusError struct {
		Command  string
		ExitCode int
	}

	// EncodingError is returned when a program's standard output is not UTF-8.
	EncodingError struct {
		Command string
	}

	// InvalidCompilerIDError is returned when a compiler id does not have the
	// <flavour>-<version> shape.
	InvalidCompilerIDError struct {
		Value string
	}
)

// commandLine renders a program and its arguments for error messages.
func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return name + " " + strings.Join(args, " ")
}

// Error implements the error interface.
func (e *SpawnError) Error() string {
	return fmt.Sprintf("cannot start %q: %v", e.Command, e.Err)
}

// Unwrap returns ErrSpawn and the underlying cause for errors.Is() compatibility.
func (e *SpawnError) Unwrap() []error { return []error{ErrSpawn, e.Err} }

// Error implements the error interface.
func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%q exited with status %d", e.Command, e.ExitCode)
}

// Unwrap returns ErrExitStatus for errors.Is() compatibility.
func (e *ExitStatusError) Unwrap() error { return ErrExitStatus }

// Error implements the error interface.
func (e *EncodingError) Error() string {
	return fmt.Sprintf("output of %q is not valid UTF-8", e.Command)
}

// Unwrap returns ErrEncoding for errors.Is() compatibility.
func (e *EncodingError) Unwrap() error { return ErrEncoding }

// Error implements the error interface.
func (e *InvalidCompilerIDError) Error() string {
	return fmt.Sprintf("invalid compiler id %q: expected <flavour>-<version>", e.Value)
}

// Unwrap returns ErrInvalidCompilerID for errors.Is() compatibility.
func (e *InvalidCompilerIDError) Unwrap() error { return ErrInvalidCompilerID }
