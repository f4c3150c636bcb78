// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
)

// Generator extracts declarations from a header.
type Generator struct {
	Preprocessor *Preprocessor
	// Blocklist drops declarations by name. Nil means DefaultBlocklist.
	Blocklist *Blocklist
	// IncludeSystem keeps declarations that come from system headers
	// (those the preprocessor flags as such).
	IncludeSystem bool
	Logger        *log.Logger
}

// Generate preprocesses headerPath and returns its function prototypes and
// typedefs in declaration order.
func (g *Generator) Generate(ctx context.Context, headerPath string, includeDirs []string) (*DeclarationSet, error) {
	logger := g.logger()

	info, err := os.Stat(headerPath)
	if err != nil || info.IsDir() {
		return nil, &HeaderNotFoundError{Path: headerPath}
	}
	if err := checkIncludes(headerPath, includeDirs); err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			return nil, err
		}
		return nil, &GenerationError{Header: headerPath, Err: err}
	}

	logger.Debug("preprocessing header",
		"header", headerPath,
		"command", g.Preprocessor.Args(headerPath, includeDirs))

	unit, err := g.Preprocessor.Preprocess(ctx, headerPath, includeDirs)
	if err != nil {
		return nil, &GenerationError{Header: headerPath, Err: err}
	}

	return g.Extract(headerPath, unit)
}

// Extract parses an already preprocessed translation unit.
func (g *Generator) Extract(headerPath, unit string) (*DeclarationSet, error) {
	logger := g.logger()

	toks, err := newLexer(unit, headerPath).tokens()
	if err != nil {
		return nil, err
	}
	decls, err := parseDeclarations(toks)
	if err != nil {
		return nil, err
	}

	blocklist := g.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}

	set := &DeclarationSet{
		Header:    headerPath,
		Functions: []Function{},
		Typedefs:  []Typedef{},
	}
	blocked, system := 0, 0
	for _, d := range decls {
		if d.system && !g.IncludeSystem {
			system++
			continue
		}
		switch {
		case d.function != nil:
			if blocklist.Blocked(d.function.Name) {
				blocked++
				continue
			}
			set.Functions = append(set.Functions, *d.function)
		case d.typedef != nil:
			if blocklist.Blocked(d.typedef.Name) {
				blocked++
				continue
			}
			set.Typedefs = append(set.Typedefs, *d.typedef)
		}
	}

	logger.Debug("extracted declarations",
		"header", headerPath,
		"functions", len(set.Functions),
		"typedefs", len(set.Typedefs),
		"blocked", blocked,
		"system", system)
	return set, nil
}

func (g *Generator) logger() *log.Logger {
	if g.Logger == nil {
		return log.Default()
	}
	return g.Logger
}
