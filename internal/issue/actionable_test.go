// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "load install plan"},
			expected: "failed to load install plan",
		},
		{
			name: "operation with resource",
			err: &ActionableError{
				Operation: "load install plan",
				Resource:  "dist-newstyle/cache/plan.json",
			},
			expected: "failed to load install plan: dist-newstyle/cache/plan.json",
		},
		{
			name: "operation with cause",
			err: &ActionableError{
				Operation: "query compiler",
				Cause:     errors.New("exit status 1"),
			},
			expected: "failed to query compiler: exit status 1",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load install plan",
				Resource:  "dist-newstyle/cache/plan.json",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load install plan: dist-newstyle/cache/plan.json: file not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := &ActionableError{Operation: "test", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if (&ActionableError{Operation: "test"}).Unwrap() != nil {
		t.Error("Unwrap() should return nil when no cause")
	}
}

func TestActionableError_Format(t *testing.T) {
	sentinel := errors.New("unsupported compiler")

	tests := []struct {
		name     string
		err      *ActionableError
		verbose  bool
		contains []string
		excludes []string
	}{
		{
			name:     "simple error non-verbose",
			err:      &ActionableError{Operation: "load config"},
			contains: []string{"failed to load config"},
			excludes: []string{"hslink explain"},
		},
		{
			name: "error with suggestions",
			err: &ActionableError{
				Operation:   "resolve linkage",
				Resource:    "./myproj",
				Suggestions: []string{"Run 'cabal build' first", "Check the dist_dir setting"},
			},
			contains: []string{
				"failed to resolve linkage: ./myproj",
				"• Run 'cabal build' first",
				"• Check the dist_dir setting",
			},
		},
		{
			name: "linked catalog issue",
			err: &ActionableError{
				Operation: "resolve linkage",
				Issue:     PlanNotFoundId,
			},
			contains: []string{"Run 'hslink explain plan-not-found' for details."},
		},
		{
			name:     "unknown issue id is ignored",
			err:      &ActionableError{Operation: "resolve linkage", Issue: Id(9999)},
			excludes: []string{"hslink explain"},
		},
		{
			name: "error chain in verbose mode",
			err: &ActionableError{
				Operation: "parse config",
				Cause:     errors.New("syntax error"),
			},
			verbose:  true,
			contains: []string{"Error chain:", "1. syntax error"},
		},
		{
			name: "no error chain in non-verbose",
			err: &ActionableError{
				Operation: "parse config",
				Cause:     errors.New("syntax error"),
			},
			contains: []string{"failed to parse config: syntax error"},
			excludes: []string{"Error chain:"},
		},
		{
			name: "nested error chain verbose",
			err: &ActionableError{
				Operation: "generate bindings",
				Cause: &ActionableError{
					Operation: "read header",
					Cause:     errors.New("file not found"),
				},
			},
			verbose: true,
			contains: []string{
				"1. failed to read header: file not found",
				"2. file not found",
			},
		},
		{
			name: "joined causes verbose",
			err: &ActionableError{
				Operation: "resolve linkage",
				Cause:     errors.Join(sentinel, fmt.Errorf("compiler %q", "eta-0.8.6")),
			},
			verbose: true,
			contains: []string{
				"  2. unsupported compiler",
				`  3. compiler "eta-0.8.6"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Format(tt.verbose)

			for _, s := range tt.contains {
				if !strings.Contains(got, s) {
					t.Errorf("Format() missing %q\ngot:\n%s", s, got)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(got, s) {
					t.Errorf("Format() should not contain %q\ngot:\n%s", s, got)
				}
			}
		})
	}
}

func TestFailed(t *testing.T) {
	cause := errors.New("parse error")

	got := Failed("load config").
		On("hslink.cue").
		Hint("Check syntax").
		Hint("Verify permissions", "Run 'hslink config dump'").
		Documented(ConfigLoadFailedId).
		Because(cause).
		Err()

	want := &ActionableError{
		Operation:   "load config",
		Resource:    "hslink.cue",
		Suggestions: []string{"Check syntax", "Verify permissions", "Run 'hslink config dump'"},
		Issue:       ConfigLoadFailedId,
		Cause:       cause,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Err() = %+v\nwant    %+v", got, want)
	}
	if !errors.Is(got, cause) {
		t.Error("errors.Is should find the cause")
	}
}

func TestFailed_OperationOnly(t *testing.T) {
	got := Failed("explain issue").Err()
	if got.Error() != "failed to explain issue" {
		t.Errorf("Error() = %q", got.Error())
	}
	if got.Resource != "" || got.Suggestions != nil || got.Issue != 0 || got.Cause != nil {
		t.Errorf("unset parts should stay zero: %+v", got)
	}
}

// A Failure describing a resource can be finished several times, each Err
// call snapshotting what was added so far.
func TestFailure_ErrSnapshots(t *testing.T) {
	f := Failed("create configuration").On("/cfg/config.cue")

	first := f.Because(errors.New("exists")).Err()
	second := f.Hint("Use --force to overwrite it").Because(errors.New("read-only")).Err()

	if first.Cause.Error() != "exists" || second.Cause.Error() != "read-only" {
		t.Errorf("causes = %v, %v", first.Cause, second.Cause)
	}
	if len(first.Suggestions) != 0 {
		t.Errorf("a hint added later leaked into an earlier error: %v", first.Suggestions)
	}
	if first.Resource != second.Resource {
		t.Errorf("resources differ: %q, %q", first.Resource, second.Resource)
	}

	second.Suggestions[0] = "changed"
	if third := f.Err(); third.Suggestions[0] != "Use --force to overwrite it" {
		t.Errorf("editing a built error changed the Failure: %v", third.Suggestions)
	}
}
