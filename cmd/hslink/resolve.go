// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/linkage"
)

func newResolveCommand(app *App, opts *rootOptions) *cobra.Command {
	var (
		mode   string
		format string
	)

	cmd := &cobra.Command{
		Use:   "resolve [project]",
		Short: "Print the linker directives for a cabal project",
		Long: `Print the linker directives needed to link the project's library and its
Haskell dependencies, in link order: dependencies first, the project last.

The project must have been built with cabal so that its install plan exists
under dist-newstyle/cache/plan.json.`,
		Example: `  # One directive per line
  hslink resolve

  # A cgo preamble fragment
  hslink resolve --format cgo ./mylib

  # A shell assignment for go build
  eval "$(hslink resolve --format env)"`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "resolve linkage", args, func(ctx context.Context, s *session) error {
				m, err := s.linkMode(mode)
				if err != nil {
					return err
				}
				emitter, err := linkage.NewEmitter(linkage.Format(format), app.stdout)
				if err != nil {
					return err
				}
				_, err = app.resolver(s, emitter).Resolve(ctx, s.project, m)
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&mode, "mode", "m", "", "link mode: dynamic or static (default from config)")
	cmd.Flags().StringVarP(&format, "format", "f", string(linkage.FormatText), "output format: "+joinFormats(linkage.Formats()))

	return cmd
}

// linkMode returns the mode named by flag, or the configured one when the
// flag is empty.
func (s *session) linkMode(flag string) (linkage.Mode, error) {
	if flag == "" {
		return s.cfg.LinkMode, nil
	}
	return linkage.ParseMode(flag)
}

func (a *App) resolver(s *session, emitter linkage.Emitter) *linkage.Resolver {
	return &linkage.Resolver{
		Runner:   a.Runner,
		Emitter:  emitter,
		Logger:   s.logger,
		Compiler: s.cfg.Compiler,
		DistDir:  s.cfg.DistDir,
		Support:  s.cfg.SupportLibraries,
	}
}
