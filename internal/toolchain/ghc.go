// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"context"
	"strings"
)

// FlavourGHC is the only compiler flavour the resolver links against.
const FlavourGHC = "ghc"

type (
	// CompilerID is a cabal compiler identifier such as "ghc-9.4.7".
	CompilerID struct {
		Flavour string
		Version string
	}

	// Toolchain queries a GHC installation through a Runner.
	Toolchain struct {
		runner   Runner
		compiler string
	}
)

// ParseCompilerID splits a cabal compiler id into flavour and version.
// The version is everything after the first '-' so that ids such as
// "ghc-9.10.1-alpha1" keep their full version string.
func ParseCompilerID(id string) (CompilerID, error) {
	flavour, version, ok := strings.Cut(id, "-")
	if !ok || flavour == "" || version == "" {
		return CompilerID{}, &InvalidCompilerIDError{Value: id}
	}
	return CompilerID{Flavour: flavour, Version: version}, nil
}

// SupportedCompiler reports whether a compiler id names a GHC toolchain.
func SupportedCompiler(id string) bool {
	return strings.HasPrefix(id, FlavourGHC)
}

// String returns the id in cabal notation.
func (c CompilerID) String() string {
	return c.Flavour + "-" + c.Version
}

// New creates a Toolchain that invokes compiler through runner.
// compiler is usually the plan's compiler id ("ghc-9.4.7"), which ghcup and
// most distributions install as a versioned executable name.
func New(runner Runner, compiler string) *Toolchain {
	return &Toolchain{runner: runner, compiler: compiler}
}

// NumericVersion returns the output of `<compiler> --numeric-version`.
func (t *Toolchain) NumericVersion(ctx context.Context) (string, error) {
	return t.runner.Run(ctx, t.compiler, "--numeric-version")
}

// LibDir returns the output of `<compiler> --print-libdir`.
func (t *Toolchain) LibDir(ctx context.Context) (string, error) {
	return t.runner.Run(ctx, t.compiler, "--print-libdir")
}
