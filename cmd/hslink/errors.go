// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/bindgen"
	"github.com/hslink/hslink/internal/issue"
	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/toolchain"
)

// run loads the session for args and calls fn with it. A failure is printed
// as an actionable error and returned as an ExitError with errors silenced,
// so it is reported once.
func (a *App) run(cmd *cobra.Command, opts *rootOptions, operation string, args []string, fn func(ctx context.Context, s *session) error) error {
	ctx := cmd.Context()
	s, err := a.newSession(ctx, opts, args)
	if err == nil {
		err = fn(ctx, s)
	}
	if err == nil {
		return nil
	}

	verbose, style := opts.verbose, ""
	project := "."
	if len(args) > 0 && args[0] != "" {
		project = args[0]
	}
	if s != nil {
		verbose = s.verbose
		style = string(s.cfg.UI.ColorScheme)
	}
	return a.fail(cmd, classifyError(err, operation, project), verbose, style)
}

// fail reports ae and returns the ExitError a RunE handler should return.
func (a *App) fail(cmd *cobra.Command, ae *issue.ActionableError, verbose bool, style string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	a.renderError(ae, verbose, style)
	return &ExitError{Code: 1, Err: ae}
}

// renderError prints ae and, in verbose mode, the catalog entry it links to.
func (a *App) renderError(ae *issue.ActionableError, verbose bool, style string) {
	fmt.Fprintf(a.stderr, "%s %s\n", ErrorStyle.Render("Error:"), ae.Format(verbose))
	if !verbose {
		return
	}
	entry := issue.Get(ae.Issue)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		newLogger(a.stderr, false).Warn("failed to render issue", "issue", entry.Name(), "error", err)
		return
	}
	fmt.Fprint(a.stderr, rendered)
}

// classifyError maps a command failure to an actionable error linked to the
// catalog issue that documents it. Errors that already carry context, such as
// configuration failures, are returned as they are.
func classifyError(err error, operation, project string) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}

	f := issue.Failed(operation).On(project).Because(err)

	var spawnErr *toolchain.SpawnError
	switch {
	case errors.Is(err, context.Canceled):
		// Interrupted; nothing to suggest.
	case errors.Is(err, fs.ErrPermission):
		f.Documented(issue.PermissionDeniedId).
			Hint("Check the permissions of the build directory and the output path")
	case errors.Is(err, plan.ErrPlanRead):
		f.Documented(issue.PlanNotFoundId).
			Hint("Run 'cabal build' in the project first",
				"Set dist_dir if cabal writes its output elsewhere")
	case errors.Is(err, plan.ErrPlanParse):
		f.Documented(issue.PlanParseErrorId).
			Hint("Regenerate the plan with 'cabal build'")
	case errors.Is(err, plan.ErrMissingConfiguredEntry):
		f.Documented(issue.MissingConfiguredEntryId).
			Hint("Run hslink from the directory holding the cabal project")
	case errors.Is(err, linkage.ErrUnsupportedCompiler):
		f.Documented(issue.UnsupportedCompilerId).
			Hint("Configure the project with GHC")
	case errors.Is(err, linkage.ErrUnsupportedLinkMode):
		f.Documented(issue.UnsupportedLinkModeId).
			Hint("Use --mode dynamic")
	case errors.Is(err, linkage.ErrInvalidPath):
		f.Documented(issue.PlanParseErrorId).
			Hint("Check the compiler's libdir and the dist-dir entries of the install plan")
	case errors.Is(err, bindgen.ErrHeaderNotFound):
		f.Documented(issue.HeaderNotFoundId).
			Hint("Run 'cabal build' so GHC writes the stub header",
				"Name the header with --header")
	case errors.As(err, &spawnErr):
		f.Documented(issue.ToolchainNotFoundId).
			Hint(fmt.Sprintf("Check that %s is installed and on PATH", programName(spawnErr.Command)))
	case errors.Is(err, toolchain.ErrExitStatus), errors.Is(err, toolchain.ErrEncoding):
		f.Documented(issue.ToolchainFailedId).
			Hint("Re-run with --verbose to see the commands hslink runs")
	case errors.Is(err, bindgen.ErrParse), errors.Is(err, bindgen.ErrGeneration), errors.Is(err, bindgen.ErrWrite):
		f.Documented(issue.BindingGenerationFailedId).
			Hint("Check that every #include resolves; add directories with -I")
	case errors.Is(err, errWatchNeedsOutput):
		f.Hint("Pass -o <file> or set bindgen.output in hslink.cue")
	case errors.Is(err, linkage.ErrUnknownFormat):
		f.Hint("Use one of: " + joinFormats(linkage.Formats()))
	case errors.Is(err, bindgen.ErrUnknownFormat):
		f.Hint("Use one of: " + joinFormats(bindgen.Formats()))
	}

	return f.Err()
}

// programName returns the first word of a command line.
func programName(cmdline string) string {
	name, _, _ := strings.Cut(cmdline, " ")
	return name
}

func joinFormats[F ~string](formats []F) string {
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
