// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"errors"
	"fmt"
)

var (
	// ErrHeaderNotFound is the sentinel error wrapped by HeaderNotFoundError.
	ErrHeaderNotFound = errors.New("header not found")
	// ErrParse is the sentinel error wrapped by ParseError.
	ErrParse = errors.New("cannot parse header")
	// ErrGeneration is the sentinel error wrapped by GenerationError.
	ErrGeneration = errors.New("binding generation failed")
	// ErrWrite is the sentinel error wrapped by WriteError.
	ErrWrite = errors.New("cannot write bindings")
	// ErrInvalidPattern is returned by NewBlocklist for a pattern that does
	// not compile.
	ErrInvalidPattern = errors.New("invalid blocklist pattern")
	// ErrUnknownFormat is returned for an unrecognized output format.
	ErrUnknownFormat = errors.New("unknown bindings format")
)

type (
	// HeaderNotFoundError is returned when the header file does not exist.
	HeaderNotFoundError struct {
		Path string
	}

	// ParseError is returned for malformed declarations and for quoted
	// includes that cannot be resolved.
	ParseError struct {
		File   string
		Line   int
		Reason string
	}

	// GenerationError is returned when the preprocessor fails or the
	// generated source cannot be produced.
	GenerationError struct {
		Header string
		Err    error
	}

	// WriteError is returned when the bindings cannot be written.
	WriteError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *HeaderNotFoundError) Error() string {
	return fmt.Sprintf("header %s does not exist", e.Path)
}

// Unwrap returns ErrHeaderNotFound for errors.Is() compatibility.
func (e *HeaderNotFoundError) Unwrap() error { return ErrHeaderNotFound }

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Reason)
}

// Unwrap returns ErrParse for errors.Is() compatibility.
func (e *ParseError) Unwrap() error { return ErrParse }

// Error implements the error interface.
func (e *GenerationError) Error() string {
	return fmt.Sprintf("cannot generate bindings for %s: %v", e.Header, e.Err)
}

// Unwrap returns ErrGeneration and the underlying cause.
func (e *GenerationError) Unwrap() []error { return []error{ErrGeneration, e.Err} }

// Error implements the error interface.
func (e *WriteError) Error() string {
	return fmt.Sprintf("cannot write bindings to %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrWrite and the underlying cause.
func (e *WriteError) Unwrap() []error { return []error{ErrWrite, e.Err} }
