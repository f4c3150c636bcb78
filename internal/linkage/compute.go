// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hslink/hslink/internal/plan"
)

// Input is everything Compute needs; it is gathered by Resolver.Resolve.
type Input struct {
	Plan       *plan.Loaded
	GHCVersion string
	// LibDir is the output of `ghc --print-libdir`.
	LibDir  string
	Mode    Mode
	Support []SupportLibrary
	// LookupEnv resolves SupportLibrary.Env. Defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
}

// BuildDir returns the directory holding the project's built library.
func BuildDir(p *plan.Loaded) string {
	return filepath.Join(p.DistDir, "build")
}

// Compute returns the complete directive list for in.
func Compute(in Input) ([]Directive, error) {
	c := &Collector{}
	if err := Emit(in, c); err != nil {
		return nil, err
	}
	return c.Directives, nil
}

// Emit sends the directives for in to e as they are produced. On error the
// directives already sent stay sent.
func Emit(in Input, e Emitter) error {
	if err := checkPath(in.LibDir); err != nil {
		return err
	}

	name := func(id string) string {
		return LibraryName(in.Mode, in.GHCVersion, id)
	}

	for _, dep := range in.Plan.Dependencies {
		dir := filepath.Join(in.LibDir, dep.ID)
		if err := emitLibrary(e, in.Mode, dir, name(dep.ID)); err != nil {
			return err
		}
	}

	if in.Mode == Static {
		for _, lib := range in.Support {
			if err := emitSupport(e, lib, in.LookupEnv); err != nil {
				return err
			}
		}
	}

	return emitLibrary(e, in.Mode, BuildDir(in.Plan), name(in.Plan.ProjectID))
}

func emitLibrary(e Emitter, mode Mode, dir, lib string) error {
	if err := checkPath(dir); err != nil {
		return err
	}
	if err := e.Emit(Directive{Kind: SearchPath, Value: dir}); err != nil {
		return err
	}
	if err := e.Emit(Directive{Kind: LinkLibrary, Value: lib, Mode: mode}); err != nil {
		return err
	}
	if mode == Dynamic {
		return e.Emit(Directive{Kind: RPath, Value: dir})
	}
	return nil
}

func emitSupport(e Emitter, lib SupportLibrary, lookupEnv func(string) (string, bool)) error {
	if dir, ok := lib.dir(lookupEnv); ok {
		if err := checkPath(dir); err != nil {
			return err
		}
		if err := e.Emit(Directive{Kind: SearchPath, Value: dir}); err != nil {
			return err
		}
	}
	return e.Emit(Directive{Kind: LinkLibrary, Value: lib.Name, Mode: Static})
}

// checkPath rejects directories that cannot be handed to a linker verbatim.
func checkPath(p string) error {
	switch {
	case strings.TrimSpace(p) == "":
		return &InvalidPathError{Path: p, Reason: "empty path"}
	case !utf8.ValidString(p):
		return &InvalidPathError{Path: p, Reason: "not valid UTF-8"}
	case strings.ContainsRune(p, 0):
		return &InvalidPathError{Path: p, Reason: "contains a NUL byte"}
	}
	return nil
}
