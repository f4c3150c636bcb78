// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

type (
	// ActionableError is a failure as the user sees it: the operation that
	// failed, the path or project it concerned, hints for fixing it, and the
	// catalog entry that explains the failure class.
	//
	// Build one with Failed:
	//
	//	return issue.Failed("load install plan").
	//		On("dist-newstyle/cache/plan.json").
	//		Hint("Run 'cabal build' first").
	//		Documented(issue.PlanNotFoundId).
	//		Because(err).
	//		Err()
	ActionableError struct {
		// Operation is a verb phrase such as "resolve linkage".
		Operation string
		// Resource is the file, directory or project involved. Optional.
		Resource string
		// Suggestions are printed as a bulleted list under the message.
		Suggestions []string
		// Issue links to a catalog entry. The zero value links nothing.
		Issue Id
		// Cause is the underlying error. Optional.
		Cause error
	}

	// Failure accumulates the parts of an ActionableError. Its methods
	// modify the receiver and return it for chaining.
	Failure struct {
		e ActionableError
	}
)

// Failed starts a Failure for the operation op.
func Failed(op string) *Failure {
	return &Failure{e: ActionableError{Operation: op}}
}

// On names the resource the operation was working on.
func (f *Failure) On(resource string) *Failure {
	f.e.Resource = resource
	return f
}

// Hint appends suggestions, in order.
func (f *Failure) Hint(hints ...string) *Failure {
	f.e.Suggestions = append(f.e.Suggestions, hints...)
	return f
}

// Documented links the failure to catalog entry id.
func (f *Failure) Documented(id Id) *Failure {
	f.e.Issue = id
	return f
}

// Because records cause as the underlying error, replacing any earlier one.
func (f *Failure) Because(cause error) *Failure {
	f.e.Cause = cause
	return f
}

// Err returns the error built so far. Later changes to f do not affect it.
func (f *Failure) Err() *ActionableError {
	e := f.e
	e.Suggestions = slices.Clone(f.e.Suggestions)
	return &e
}

// Error joins "failed to <operation>", the resource and the cause with ": ".
func (e *ActionableError) Error() string {
	parts := []string{"failed to " + e.Operation}
	if e.Resource != "" {
		parts = append(parts, e.Resource)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the message with its suggestions and, when the error links
// a known catalog entry, a pointer to 'hslink explain'. verbose appends the
// numbered error chain, descending into joined errors with extra indent.
func (e *ActionableError) Format(verbose bool) string {
	var b strings.Builder
	b.WriteString(e.Error())

	if len(e.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range e.Suggestions {
			b.WriteString("\n  • " + s)
		}
	}
	if entry := Get(e.Issue); entry != nil {
		fmt.Fprintf(&b, "\n\nRun 'hslink explain %s' for details.", entry.Name())
	}
	if verbose && e.Cause != nil {
		b.WriteString("\n\nError chain:")
		n := 0
		writeChain(&b, e.Cause, "  ", &n)
	}
	return b.String()
}

// writeChain numbers err and each error it wraps. The children of a joined
// error are written one level deeper and end the walk of err.
func writeChain(b *strings.Builder, err error, indent string, n *int) {
	for ; err != nil; err = errors.Unwrap(err) {
		*n++
		fmt.Fprintf(b, "\n%s%d. %s", indent, *n, err.Error())
		if joined, ok := err.(interface{ Unwrap() []error }); ok {
			for _, inner := range joined.Unwrap() {
				writeChain(b, inner, indent+"  ", n)
			}
			return
		}
	}
}
