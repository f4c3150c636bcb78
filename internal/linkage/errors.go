// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedLinkMode is the sentinel error wrapped by UnsupportedLinkModeError.
	ErrUnsupportedLinkMode = errors.New("unsupported link mode")
	// ErrUnsupportedCompiler is the sentinel error wrapped by UnsupportedCompilerError.
	ErrUnsupportedCompiler = errors.New("unsupported compiler")
	// ErrInvalidPath is the sentinel error wrapped by InvalidPathError.
	ErrInvalidPath = errors.New("invalid library path")
	// ErrUnknownFormat is returned by NewEmitter for an unrecognized output format.
	ErrUnknownFormat = errors.New("unknown directive format")
)

type (
	// UnsupportedLinkModeError is returned for static mode (not yet supported)
	// and for mode names that are not recognized at all.
	UnsupportedLinkModeError struct {
		Mode Mode
	}

	// UnsupportedCompilerError is returned when the plan was made for a
	// compiler other than GHC.
	UnsupportedCompilerError struct {
		CompilerID string
	}

	// InvalidPathError is returned when a library directory cannot be passed
	// to the linker.
	InvalidPathError struct {
		Path   string
		Reason string
	}
)

// Error implements the error interface.
func (e *UnsupportedLinkModeError) Error() string {
	if e.Mode == Static {
		return "static linking of the GHC runtime is not supported yet: gmp, libffi and iconv cannot be located"
	}
	return fmt.Sprintf("unknown link mode %q (want %q or %q)", e.Mode, Dynamic, Static)
}

// Unwrap returns ErrUnsupportedLinkMode for errors.Is() compatibility.
func (e *UnsupportedLinkModeError) Unwrap() error { return ErrUnsupportedLinkMode }

// Error implements the error interface.
func (e *UnsupportedCompilerError) Error() string {
	return fmt.Sprintf("unsupported compiler %q: only ghc is supported", e.CompilerID)
}

// Unwrap returns ErrUnsupportedCompiler for errors.Is() compatibility.
func (e *UnsupportedCompilerError) Unwrap() error { return ErrUnsupportedCompiler }

// Error implements the error interface.
func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid library path %q: %s", e.Path, e.Reason)
}

// Unwrap returns ErrInvalidPath for errors.Is() compatibility.
func (e *InvalidPathError) Unwrap() error { return ErrInvalidPath }
