// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hslink/hslink/internal/config"
	"github.com/hslink/hslink/internal/issue"
)

// newConfigCommand creates the `hslink config` command tree.
func newConfigCommand(app *App, opts *rootOptions) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage hslink configuration",
		Long: `Manage hslink configuration.

Configuration is read from the first of:
  - the file named by --config
  - hslink.cue in the project directory
  - config.cue in the user config directory
    (Linux: ~/.config/hslink, macOS: ~/Library/Application Support/hslink,
     Windows: %APPDATA%\hslink)

HSLINK_* environment variables override file values, and variables in the
project's .env file apply where the environment does not set them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show [project]",
		Short: "Show the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "show configuration", args, func(_ context.Context, s *session) error {
				path, err := config.Locate(loadOptions(opts, s.project))
				if err != nil {
					return err
				}
				showConfig(app.stdout, path, s.cfg)
				return nil
			})
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path [project]",
		Short: "Show which configuration file is used",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			project := "."
			if len(args) > 0 {
				project = args[0]
			}
			path, err := config.Locate(loadOptions(opts, project))
			if err != nil {
				return app.fail(cmd, classifyError(err, "locate configuration", project), opts.verbose, "")
			}
			if path == "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("(using defaults)"))
				return nil
			}
			fmt.Fprintln(app.stdout, path)
			return nil
		},
	})

	var (
		force   bool
		project bool
	)
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create a default configuration file",
		Long: `Create a configuration file holding the defaults. The file goes to the user
config directory, or to ./hslink.cue with --project.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ProjectFileName
			if !project {
				var err error
				if path, err = config.DefaultPath(); err != nil {
					return app.fail(cmd, classifyError(err, "create configuration", ""), opts.verbose, "")
				}
			}
			if err := config.WriteDefault(path, force); err != nil {
				f := issue.Failed("create configuration").On(path).Because(err)
				if errors.Is(err, config.ErrConfigExists) {
					f.Hint("Use --force to overwrite it")
				}
				return app.fail(cmd, f.Err(), opts.verbose, "")
			}
			fmt.Fprintf(app.stdout, "%s %s\n", SuccessStyle.Render("Created"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&project, "project", false, "write "+config.ProjectFileName+" in the current directory")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump [project]",
		Short: "Output the effective configuration as CUE",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.run(cmd, opts, "dump configuration", args, func(_ context.Context, s *session) error {
				_, err := io.WriteString(app.stdout, config.GenerateCUE(s.cfg))
				return err
			})
		},
	})

	return cfgCmd
}

func loadOptions(opts *rootOptions, project string) config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: opts.configFile, ProjectDir: project}
}

func showConfig(w io.Writer, path string, cfg *config.Config) {
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	none := SubtitleStyle.Render("(none)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path == "" {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	} else {
		fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("Config file"), path)
	}
	fmt.Fprintln(w)

	compiler := none
	if cfg.Compiler != "" {
		compiler = valueStyle.Render(cfg.Compiler)
	}
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("compiler"), compiler)
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("link_mode"), valueStyle.Render(cfg.LinkMode.String()))
	fmt.Fprintf(w, "%s: %s\n", keyStyle.Render("dist_dir"), valueStyle.Render(cfg.DistDir))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("support_libraries"))
	if len(cfg.SupportLibraries) == 0 {
		fmt.Fprintf(w, "  %s\n", none)
	}
	for _, lib := range cfg.SupportLibraries {
		var where []string
		if lib.SearchPath != "" {
			where = append(where, "search_path: "+lib.SearchPath)
		}
		if lib.Env != "" {
			where = append(where, "env: "+lib.Env)
		}
		if len(where) == 0 {
			fmt.Fprintf(w, "  - %s\n", valueStyle.Render(lib.Name))
			continue
		}
		fmt.Fprintf(w, "  - %s (%s)\n", valueStyle.Render(lib.Name), strings.Join(where, ", "))
	}

	bc := cfg.Bindgen
	header := bc.Header
	if !filepath.IsAbs(header) {
		header += SubtitleStyle.Render(" (in the build directory)")
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("bindgen"))
	fmt.Fprintf(w, "  header: %s\n", valueStyle.Render(header))
	fmt.Fprintf(w, "  cc: %s\n", orNone(bc.CC, "$CC, then cc"))
	fmt.Fprintf(w, "  include_dirs: %s\n", listOrNone(bc.IncludeDirs))
	fmt.Fprintf(w, "  blocklist: %s\n", listOrNone(bc.Blocklist))
	fmt.Fprintf(w, "  package: %s\n", valueStyle.Render(bc.Package))
	fmt.Fprintf(w, "  output: %s\n", orNone(bc.Output, "stdout"))

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(w, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(w, "  verbose: %s\n", valueStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))
}

func orNone(v, fallback string) string {
	if v == "" {
		return SubtitleStyle.Render("(" + fallback + ")")
	}
	return SuccessStyle.Render(v)
}

func listOrNone(items []string) string {
	if len(items) == 0 {
		return SubtitleStyle.Render("(none)")
	}
	return SuccessStyle.Render(strings.Join(items, ", "))
}
