// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/issue"
)

func newExplainCommand(app *App, opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "explain [issue]",
		Short: "Describe a failure and how to fix it",
		Long: `Describe a class of failure and how to fix it. Errors name the issue to
explain; without an argument every issue is listed.`,
		Example: `  hslink explain
  hslink explain plan-not-found`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			names := make([]string, 0, len(issue.Values()))
			for _, i := range issue.Values() {
				names = append(names, i.Name()+"\t"+i.Title())
			}
			return names, cobra.ShellCompDirectiveNoFileComp
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, i := range issue.Values() {
					fmt.Fprintf(app.stdout, "%s  %s\n", CmdStyle.Render(fmt.Sprintf("%-26s", i.Name())), i.Title())
				}
				return nil
			}

			entry := issue.Lookup(args[0])
			if entry == nil {
				ae := issue.Failed("explain issue").
					On(args[0]).
					Hint("Run 'hslink explain' to list the known issues").
					Err()
				return app.fail(cmd, ae, opts.verbose, "")
			}

			rendered, err := entry.Render(app.colorScheme(cmd.Context(), opts))
			if err != nil {
				return app.fail(cmd, classifyError(err, "render issue", entry.Name()), opts.verbose, "")
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
}

// colorScheme returns the configured glamour style. A configuration that
// fails to load falls back to automatic detection so that its issue can
// still be explained.
func (a *App) colorScheme(ctx context.Context, opts *rootOptions) string {
	cfg, err := a.Config.Load(ctx, loadOptions(opts, "."))
	if err != nil {
		return ""
	}
	return string(cfg.UI.ColorScheme)
}
