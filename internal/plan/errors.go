// SPDX-License-Identifier: MPL-2.0

package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrPlanRead is the sentinel error wrapped by PlanReadError.
	ErrPlanRead = errors.New("cannot read install plan")
	// ErrPlanParse is the sentinel error wrapped by PlanParseError.
	ErrPlanParse = errors.New("cannot parse install plan")
	// ErrMissingConfiguredEntry is the sentinel error wrapped by MissingConfiguredEntryError.
	ErrMissingConfiguredEntry = errors.New("install plan has no usable configured entry")
)

type (
	// PlanReadError is returned when plan.json is missing or unreadable.
	PlanReadError struct {
		Path string
		Err  error
	}

	// PlanParseError is returned when plan.json does not match the expected schema.
	PlanParseError struct {
		Path string
		Err  error
	}

	// MissingConfiguredEntryError is returned when no configured entry exists
	// or the configured entry has no dist-dir.
	MissingConfiguredEntryError struct {
		Path string
		// ID is the configured entry's id when one was found without a dist-dir.
		ID string
	}
)

// Error implements the error interface.
func (e *PlanReadError) Error() string {
	return fmt.Sprintf("cannot read install plan %s: %v", e.Path, e.Err)
}

// Unwrap returns ErrPlanRead and the underlying cause.
func (e *PlanReadError) Unwrap() []error { return []error{ErrPlanRead, e.Err} }

// Error implements the error interface.
func (e *PlanParseError) Error() string {
	return fmt.Sprintf("cannot parse install plan: %v", e.Err)
}

// Unwrap returns ErrPlanParse and the underlying cause.
func (e *PlanParseError) Unwrap() []error { return []error{ErrPlanParse, e.Err} }

// Error implements the error interface.
func (e *MissingConfiguredEntryError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s: configured entry %q has no dist-dir", e.Path, e.ID)
	}
	return fmt.Sprintf("%s: no entry of type %q", e.Path, KindConfigured)
}

// Unwrap returns ErrMissingConfiguredEntry for errors.Is() compatibility.
func (e *MissingConfiguredEntryError) Unwrap() error { return ErrMissingConfiguredEntry }
