// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/toolchain"
)

// planSummary is the JSON shape printed by `hslink plan --json`.
type planSummary struct {
	Path         string   `json:"path"`
	CompilerID   string   `json:"compiler_id"`
	Flavour      string   `json:"flavour,omitempty"`
	Version      string   `json:"version,omitempty"`
	Project      string   `json:"project"`
	BuildDir     string   `json:"build_dir"`
	Dependencies []string `json:"dependencies"`
	Ignored      int      `json:"ignored"`
	UnknownKinds []string `json:"unknown_kinds,omitempty"`
}

func newPlanCommand(app *App, opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan [project]",
		Short: "Show what the install plan contributes to linking",
		Long: `Show the project library, build directory and pre-existing dependencies that
hslink reads from cabal's install plan. The compiler is not queried.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "load install plan", args, func(_ context.Context, s *session) error {
				outputDir := linkage.OutputDir(s.project, s.cfg.DistDir)
				loaded, err := plan.Load(outputDir)
				if err != nil {
					return err
				}
				s.logger.Debug("loaded install plan", "path", plan.Path(outputDir), "ignored", loaded.Ignored)

				summary := summarizePlan(plan.Path(outputDir), loaded)
				if asJSON {
					enc := json.NewEncoder(app.stdout)
					enc.SetIndent("", "  ")
					return enc.Encode(summary)
				}
				printPlan(app.stdout, summary)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the summary as JSON")

	return cmd
}

func summarizePlan(path string, loaded *plan.Loaded) planSummary {
	deps := make([]string, 0, len(loaded.Dependencies))
	for _, d := range loaded.Dependencies {
		deps = append(deps, d.ID)
	}
	summary := planSummary{
		Path:         path,
		CompilerID:   loaded.CompilerID,
		Project:      loaded.ProjectID,
		BuildDir:     linkage.BuildDir(loaded),
		Dependencies: deps,
		Ignored:      loaded.Ignored,
	}
	// An unparsable compiler-id is still shown verbatim.
	if id, err := toolchain.ParseCompilerID(loaded.CompilerID); err == nil {
		summary.Flavour = id.Flavour
		summary.Version = id.Version
	}
	for _, k := range loaded.UnknownKinds {
		summary.UnknownKinds = append(summary.UnknownKinds, k.String())
	}
	return summary
}

func printPlan(w io.Writer, s planSummary) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle

	fmt.Fprintln(w, TitleStyle.Render("Install Plan"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("plan"), s.Path)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("compiler"), valueStyle.Render(s.CompilerID))
	if s.Flavour != "" {
		fmt.Fprintf(w, "%s: %s %s\n", keyStyle.Render("  flavour"), s.Flavour, SubtitleStyle.Render("version "+s.Version))
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("project"), valueStyle.Render(s.Project))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("build dir"), s.BuildDir)

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s (%d):\n", keyStyle.Render("dependencies"), len(s.Dependencies))
	if len(s.Dependencies) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none)"))
	}
	for _, id := range s.Dependencies {
		fmt.Fprintf(w, "  - %s\n", valueStyle.Render(id))
	}

	if s.Ignored > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s\n", WarningStyle.Render(fmt.Sprintf("%d other entries ignored", s.Ignored)))
		if len(s.UnknownKinds) > 0 {
			fmt.Fprintf(w, "  %s %s\n", SubtitleStyle.Render("unknown kinds:"), strings.Join(s.UnknownKinds, ", "))
		}
	}
}
