// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"testing"

	"github.com/hslink/hslink/internal/bindgen"
	"github.com/hslink/hslink/internal/issue"
	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/toolchain"
)

func TestClassifyError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		wantIssueID issue.Id
		wantInMsg   []string
	}{
		{
			name:        "missing plan maps to plan-not-found",
			err:         &plan.PlanReadError{Path: "dist-newstyle/cache/plan.json", Err: fs.ErrNotExist},
			wantIssueID: issue.PlanNotFoundId,
			wantInMsg:   []string{"Run 'cabal build' in the project first"},
		},
		{
			name:        "unreadable plan maps to permission-denied",
			err:         &plan.PlanReadError{Path: "plan.json", Err: fs.ErrPermission},
			wantIssueID: issue.PermissionDeniedId,
		},
		{
			name:        "malformed plan",
			err:         &plan.PlanParseError{Path: "plan.json", Err: errors.New("unexpected EOF")},
			wantIssueID: issue.PlanParseErrorId,
		},
		{
			name:        "no configured entry",
			err:         &plan.MissingConfiguredEntryError{Path: "plan.json"},
			wantIssueID: issue.MissingConfiguredEntryId,
		},
		{
			name:        "foreign compiler",
			err:         &linkage.UnsupportedCompilerError{CompilerID: "eta-0.8.6"},
			wantIssueID: issue.UnsupportedCompilerId,
			wantInMsg:   []string{`"eta-0.8.6"`},
		},
		{
			name:        "static mode",
			err:         &linkage.UnsupportedLinkModeError{Mode: linkage.Static},
			wantIssueID: issue.UnsupportedLinkModeId,
			wantInMsg:   []string{"Use --mode dynamic"},
		},
		{
			name:        "compiler missing from PATH",
			err:         &toolchain.SpawnError{Command: "ghc-9.4.7 --numeric-version", Err: exec.ErrNotFound},
			wantIssueID: issue.ToolchainNotFoundId,
			wantInMsg:   []string{"Check that ghc-9.4.7 is installed and on PATH"},
		},
		{
			name: "preprocessor missing from PATH",
			err: &bindgen.GenerationError{
				Header: "Safe_stub.h",
				Err:    &toolchain.SpawnError{Command: "clang -E -x c Safe_stub.h", Err: exec.ErrNotFound},
			},
			wantIssueID: issue.ToolchainNotFoundId,
			wantInMsg:   []string{"Check that clang is installed"},
		},
		{
			name:        "compiler failure",
			err:         &toolchain.ExitStatusError{Command: "ghc-9.4.7 --print-libdir", ExitCode: 2},
			wantIssueID: issue.ToolchainFailedId,
		},
		{
			name:        "missing header",
			err:         &bindgen.HeaderNotFoundError{Path: "build/Safe_stub.h"},
			wantIssueID: issue.HeaderNotFoundId,
			wantInMsg:   []string{"--header"},
		},
		{
			name:        "unparsable header",
			err:         &bindgen.ParseError{File: "Safe_stub.h", Line: 3, Reason: "unbalanced braces"},
			wantIssueID: issue.BindingGenerationFailedId,
		},
		{
			name:        "unwritable output",
			err:         &bindgen.WriteError{Path: "/ro/haskell.go", Err: fs.ErrPermission},
			wantIssueID: issue.PermissionDeniedId,
		},
		{
			name:      "canceled has no issue",
			err:       fmt.Errorf("query compiler: %w", context.Canceled),
			wantInMsg: []string{"context canceled"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ae := classifyError(tt.err, "resolve linkage", "./proj")
			if ae.Issue != tt.wantIssueID {
				t.Errorf("Issue = %d, want %d", ae.Issue, tt.wantIssueID)
			}
			if !errors.Is(ae, tt.err) {
				t.Errorf("classified error does not wrap the cause")
			}
			msg := ae.Format(false)
			if !strings.HasPrefix(msg, "failed to resolve linkage: ./proj: ") {
				t.Errorf("Format() = %q", msg)
			}
			for _, want := range tt.wantInMsg {
				if !strings.Contains(msg, want) {
					t.Errorf("Format() lacks %q:\n%s", want, msg)
				}
			}
		})
	}
}

func TestClassifyError_KeepsActionableErrors(t *testing.T) {
	t.Parallel()

	original := issue.Failed("load configuration").
		Documented(issue.ConfigLoadFailedId).
		Because(errors.New("bad")).
		Err()

	if got := classifyError(fmt.Errorf("session: %w", original), "resolve linkage", "."); got != original {
		t.Errorf("classifyError() = %+v, want the original actionable error", got)
	}
}

func TestExitError(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	if got := (&ExitError{Code: 3, Err: cause}).Error(); got != "boom" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ExitError{Code: 3}).Error(); got != "exit status 3" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(&ExitError{Code: 1, Err: cause}, cause) {
		t.Error("ExitError should unwrap to its cause")
	}
}
