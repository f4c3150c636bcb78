// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/bindgen"
	"github.com/hslink/hslink/internal/linkage"
)

type (
	// bindingOptions are the flags shared by bindgen and generate. Empty
	// values fall back to the bindgen section of the configuration.
	bindingOptions struct {
		header      string
		includeDirs []string
		block       []string
		format      string
		output      string
		pkg         string
		system      bool
	}

	// bindingRequest is a fully resolved binding job.
	bindingRequest struct {
		header      string
		includeDirs []string
		format      bindgen.Format
		output      string
		render      bindgen.RenderOptions
	}
)

func newBindgenCommand(app *App, opts *rootOptions) *cobra.Command {
	bopts := &bindingOptions{}

	cmd := &cobra.Command{
		Use:   "bindgen [project]",
		Short: "Generate Go bindings for the project's stub header",
		Long: `Preprocess the stub header GHC writes for foreign exports and generate cgo
bindings for its function prototypes. Runtime functions whose names match the
blocklist (by default ^hs_) are left out; the generated file starts and stops
the runtime itself.

Linker flags are not embedded; use 'hslink generate' for a self-contained file
or combine with 'hslink resolve --format env'.`,
		Example: `  # Bindings for <build dir>/Safe_stub.h on stdout
  hslink bindgen

  # Another header, written to a file
  hslink bindgen --header dist-newstyle/build/Foo_stub.h -o foo/haskell.go

  # Inspect the declarations
  hslink bindgen --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "generate bindings", args, func(ctx context.Context, s *session) error {
				res, err := app.resolver(s, &linkage.Collector{}).Resolve(ctx, s.project, linkage.Dynamic)
				if err != nil {
					return err
				}
				req, err := s.bindingRequest(bopts, res, nil)
				if err != nil {
					return err
				}
				return app.generateBindings(ctx, s, bopts, req)
			})
		},
	}

	bopts.register(cmd)

	return cmd
}

func (o *bindingOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.header, "header", "", "stub header (default <build dir>/<bindgen.header>)")
	cmd.Flags().StringArrayVarP(&o.includeDirs, "include", "I", nil, "additional include directory (repeatable)")
	cmd.Flags().StringArrayVar(&o.block, "block", nil, "additional blocklist regular expression (repeatable)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: "+joinFormats(bindgen.Formats())+" (default go)")
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default stdout, or bindgen.output)")
	cmd.Flags().StringVar(&o.pkg, "package", "", "Go package name of the generated file (default bindgen.package)")
	cmd.Flags().BoolVar(&o.system, "system", false, "keep declarations that come from system headers")
}

// bindingRequest merges flags, configuration and the resolution into a job.
// The header defaults to the configured name inside the project's build
// directory, and the GHC runtime include directory always comes first.
func (s *session) bindingRequest(o *bindingOptions, res *linkage.Resolution, ldflags []string) (*bindingRequest, error) {
	format, err := bindgen.ParseFormat(o.format)
	if err != nil {
		return nil, err
	}

	bc := s.cfg.Bindgen
	header := o.header
	if header == "" {
		header = bc.Header
		if !filepath.IsAbs(header) {
			header = filepath.Join(res.BuildDir, header)
		}
	}

	includeDirs := []string{filepath.Join(res.LibDir, "rts", "include")}
	includeDirs = append(includeDirs, bc.IncludeDirs...)
	includeDirs = append(includeDirs, o.includeDirs...)

	output := o.output
	if output == "" {
		output = bc.Output
	}
	pkg := o.pkg
	if pkg == "" {
		pkg = bc.Package
	}

	return &bindingRequest{
		header:      header,
		includeDirs: includeDirs,
		format:      format,
		output:      output,
		render: bindgen.RenderOptions{
			Package:     pkg,
			IncludeDirs: includeDirs,
			LDFlags:     ldflags,
		},
	}, nil
}

// generateBindings runs the preprocessor and writes the rendered bindings.
func (a *App) generateBindings(ctx context.Context, s *session, o *bindingOptions, req *bindingRequest) error {
	cc := s.cfg.Bindgen.CC
	if cc == "" {
		cc = s.cfg.Getenv("CC")
	}
	pp, err := bindgen.NewPreprocessor(a.Runner, cc)
	if err != nil {
		return err
	}

	patterns := append(append([]string(nil), s.cfg.Bindgen.Blocklist...), o.block...)
	blocklist, err := bindgen.NewBlocklist(patterns...)
	if err != nil {
		return err
	}

	gen := &bindgen.Generator{
		Preprocessor:  pp,
		Blocklist:     blocklist,
		IncludeSystem: o.system,
		Logger:        s.logger,
	}
	set, err := gen.Generate(ctx, req.header, req.includeDirs)
	if err != nil {
		return err
	}
	s.logger.Debug("collected declarations", "functions", set.FunctionNames(), "blocklist", blocklist.Patterns())

	if req.output == "" {
		return bindgen.Render(a.stdout, set, req.format, req.render)
	}
	if err := bindgen.Write(req.output, set, req.format, req.render); err != nil {
		return err
	}
	s.logger.Info("wrote bindings", "path", req.output, "functions", len(set.Functions), "typedefs", len(set.Typedefs))
	return nil
}
