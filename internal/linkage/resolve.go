// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/toolchain"
)

// DefaultDistDir is cabal's output directory relative to the project root.
const DefaultDistDir = "dist-newstyle"

type (
	// Resolver discovers a cabal project's build artifacts and emits the
	// directives needed to link against them.
	Resolver struct {
		Runner  toolchain.Runner
		Emitter Emitter
		Logger  *log.Logger
		// Compiler overrides the program queried for version and libdir.
		// Empty means the plan's compiler-id (e.g. "ghc-9.4.7").
		Compiler string
		// DistDir is cabal's output directory, relative to the project
		// unless absolute. Empty means DefaultDistDir.
		DistDir string
		// Support lists the native libraries a static runtime needs.
		Support []SupportLibrary
	}

	// Resolution describes what Resolve found. The generate command uses it
	// to locate the stub header and the RTS include directory.
	Resolution struct {
		Plan       *plan.Loaded
		Compiler   string
		GHCVersion string
		LibDir     string
		BuildDir   string
		Mode       Mode
	}
)

// Resolve loads the project's install plan, queries the compiler and emits
// every directive through r.Emitter, in link order.
func (r *Resolver) Resolve(ctx context.Context, projectPath string, mode Mode) (*Resolution, error) {
	logger := r.logger()

	if mode != Dynamic {
		return nil, &UnsupportedLinkModeError{Mode: mode}
	}

	outputDir := OutputDir(projectPath, r.DistDir)
	logger.Debug("loading install plan", "path", plan.Path(outputDir))

	loaded, err := plan.Load(outputDir)
	if err != nil {
		return nil, err
	}
	if loaded.Ignored > 0 {
		logger.Debug("ignored install plan entries", "count", loaded.Ignored, "unknown_kinds", loaded.UnknownKinds)
	}

	if !toolchain.SupportedCompiler(loaded.CompilerID) {
		return nil, &UnsupportedCompilerError{CompilerID: loaded.CompilerID}
	}

	compiler := r.Compiler
	if compiler == "" {
		compiler = loaded.CompilerID
	}
	tc := toolchain.New(r.Runner, compiler)

	version, err := tc.NumericVersion(ctx)
	if err != nil {
		return nil, err
	}
	libdir, err := tc.LibDir(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("queried compiler", "compiler", compiler, "version", version, "libdir", libdir)

	// The plan's library ids embed its compiler version; a different
	// compiler yields names the linker will not find.
	if planned, err := toolchain.ParseCompilerID(loaded.CompilerID); err == nil && planned.Version != version {
		logger.Warn("compiler version differs from the install plan",
			"plan", loaded.CompilerID, "compiler", compiler, "version", version)
	}

	in := Input{
		Plan:       loaded,
		GHCVersion: version,
		LibDir:     libdir,
		Mode:       mode,
		Support:    r.Support,
	}
	if err := Emit(in, r.Emitter); err != nil {
		return nil, err
	}
	if err := r.Emitter.Flush(); err != nil {
		return nil, err
	}

	logger.Debug("emitted link directives",
		"project", loaded.ProjectID,
		"dependencies", len(loaded.Dependencies),
		"mode", mode)

	return &Resolution{
		Plan:       loaded,
		Compiler:   compiler,
		GHCVersion: version,
		LibDir:     libdir,
		BuildDir:   BuildDir(loaded),
		Mode:       mode,
	}, nil
}

// OutputDir is cabal's output directory for the project at projectPath.
// distDir is relative to the project unless absolute; empty means
// DefaultDistDir.
func OutputDir(projectPath, distDir string) string {
	dist := distDir
	if dist == "" {
		dist = DefaultDistDir
	}
	if filepath.IsAbs(dist) {
		return dist
	}
	return filepath.Join(projectPath, dist)
}

func (r *Resolver) logger() *log.Logger {
	if r.Logger == nil {
		return log.Default()
	}
	return r.Logger
}
