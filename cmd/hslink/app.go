// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"

	"github.com/hslink/hslink/internal/config"
	"github.com/hslink/hslink/internal/toolchain"
)

type (
	// App wires CLI services and shared dependencies. It is the composition
	// root for the CLI layer: command handlers receive an App and reach
	// configuration and the toolchain only through it.
	App struct {
		Config ConfigProvider
		Runner toolchain.Runner
		stdout io.Writer
		stderr io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config ConfigProvider
		Runner toolchain.Runner
		Stdout io.Writer
		Stderr io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// rootOptions holds the persistent flags.
	rootOptions struct {
		verbose    bool
		configFile string
	}

	// session is the state of one command invocation after configuration
	// has been loaded for its project.
	session struct {
		project string
		cfg     *config.Config
		logger  *log.Logger
		verbose bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Runner == nil {
		deps.Runner = &toolchain.ExecRunner{Stderr: deps.Stderr}
	}

	return &App{
		Config: deps.Config,
		Runner: deps.Runner,
		stdout: deps.Stdout,
		stderr: deps.Stderr,
	}
}

// newSession loads configuration for the project named by args.
func (a *App) newSession(ctx context.Context, opts *rootOptions, args []string) (*session, error) {
	project := "."
	if len(args) > 0 && args[0] != "" {
		project = args[0]
	}

	cfg, err := a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: opts.configFile,
		ProjectDir:     project,
	})
	if err != nil {
		return nil, err
	}

	verbose := opts.verbose || cfg.UI.Verbose
	return &session{
		project: project,
		cfg:     cfg,
		logger:  newLogger(a.stderr, verbose),
		verbose: verbose,
	}, nil
}

// newLogger returns the diagnostics logger. Debug records, which trace every
// toolchain query and file the resolver reads, appear only when verbose.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
