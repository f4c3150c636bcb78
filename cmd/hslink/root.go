// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "hslink",
		Short: "Link Go programs against Haskell libraries built by cabal",
		Long: TitleStyle.Render("hslink") + SubtitleStyle.Render(" - link Go programs against Haskell libraries built by cabal") + `

hslink reads the install plan cabal writes for a project, asks GHC where
its libraries live, and prints the linker directives needed to link the
project's library and every Haskell dependency into a cgo program. It can
also turn the stub header GHC writes for foreign exports into Go bindings.

` + SubtitleStyle.Render("Examples:") + `
  hslink resolve                 Print linker directives for ./
  hslink resolve -f cgo ./lib    Print #cgo LDFLAGS lines for ./lib
  hslink bindgen -o haskell.go   Generate Go bindings for the stub header
  hslink generate -o haskell.go  Bindings with the linker flags embedded
  hslink explain plan-not-found  Describe a failure and how to fix it`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default is <project>/hslink.cue, then the user config directory)")

	rootCmd.AddCommand(newResolveCommand(app, opts))
	rootCmd.AddCommand(newPlanCommand(app, opts))
	rootCmd.AddCommand(newBindgenCommand(app, opts))
	rootCmd.AddCommand(newGenerateCommand(app, opts))
	rootCmd.AddCommand(newConfigCommand(app, opts))
	rootCmd.AddCommand(newExplainCommand(app, opts))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	rootCmd := NewRootCommand(NewApp(Dependencies{}))

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
