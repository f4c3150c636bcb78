// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/config"
	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/watch"
)

// errWatchNeedsOutput rejects --watch without a destination file.
var errWatchNeedsOutput = errors.New("--watch needs an output file (-o or bindgen.output)")

func newGenerateCommand(app *App, opts *rootOptions) *cobra.Command {
	bopts := &bindingOptions{}
	var (
		mode     string
		watching bool
	)

	cmd := &cobra.Command{
		Use:   "generate [project]",
		Short: "Generate Go bindings with the linker flags embedded",
		Long: `Resolve the project's linkage and generate Go bindings for its stub header in
one step. The linker directives become #cgo LDFLAGS lines of the generated
file, so 'go build' needs no further flags.

With --watch the file is regenerated whenever the install plan, the stub
header or the configuration file changes, until interrupted.`,
		Example: `  hslink generate -o internal/haskell/haskell.go --package haskell

  # Keep the bindings current while 'cabal build' runs in another terminal
  hslink generate -o internal/haskell/haskell.go --watch`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "generate bindings", args, func(ctx context.Context, s *session) error {
				inputs, err := app.generate(ctx, s, bopts, mode)
				if err != nil || !watching {
					return err
				}
				return app.watchGenerate(ctx, s, opts, args, bopts, mode, inputs)
			})
		},
	}

	bopts.register(cmd)
	cmd.Flags().StringVarP(&mode, "mode", "m", "", "link mode: dynamic or static (default from config)")
	cmd.Flags().BoolVarP(&watching, "watch", "w", false, "regenerate when the plan, header or config changes")

	return cmd
}

// generate resolves the linkage and writes the bindings. It returns the
// files the result was derived from.
func (a *App) generate(ctx context.Context, s *session, o *bindingOptions, mode string) ([]string, error) {
	m, err := s.linkMode(mode)
	if err != nil {
		return nil, err
	}
	sink := &linkage.Collector{}
	res, err := a.resolver(s, sink).Resolve(ctx, s.project, m)
	if err != nil {
		return nil, err
	}
	req, err := s.bindingRequest(o, res, linkage.Flags(sink.Directives))
	if err != nil {
		return nil, err
	}
	if err := a.generateBindings(ctx, s, o, req); err != nil {
		return nil, err
	}
	return []string{plan.Path(linkage.OutputDir(s.project, s.cfg.DistDir)), req.header}, nil
}

// watchGenerate reruns generate on every change of inputs or the config file.
// Each rerun reloads the configuration. Failures are reported and the watch
// continues.
func (a *App) watchGenerate(ctx context.Context, s *session, opts *rootOptions, args []string, o *bindingOptions, mode string, inputs []string) error {
	if o.output == "" && s.cfg.Bindgen.Output == "" {
		return errWatchNeedsOutput
	}

	files := inputs
	cfgPath, err := config.Locate(loadOptions(opts, s.project))
	if err == nil && cfgPath != "" {
		files = append(files, cfgPath)
	}

	var w *watch.Watcher
	w, err = watch.New(watch.Config{
		Files:  files,
		Logger: s.logger,
		OnChange: func(ctx context.Context, changed []string) error {
			s.logger.Info("inputs changed, regenerating", "files", changed)
			for _, f := range w.Missing() {
				s.logger.Warn("input is missing, waiting for it to reappear", "path", f)
			}
			next, err := a.newSession(ctx, opts, args)
			if err == nil {
				_, err = a.generate(ctx, next, o, mode)
			}
			if err != nil {
				a.renderError(classifyError(err, "generate bindings", s.project), s.verbose, string(s.cfg.UI.ColorScheme))
			}
			return nil
		},
	})
	if err != nil {
		return err
	}

	s.logger.Info("watching for changes", "files", w.Files())
	return w.Run(ctx)
}
