// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"mvdan.cc/sh/v3/syntax"
)

const (
	// FormatText writes one directive per line in neutral form.
	FormatText Format = "text"
	// FormatCgo writes "#cgo LDFLAGS:" lines for a cgo preamble.
	FormatCgo Format = "cgo"
	// FormatEnv writes a shell assignment of CGO_LDFLAGS.
	FormatEnv Format = "env"
	// FormatTOML writes a [[directive]] array of tables.
	FormatTOML Format = "toml"
	// FormatJSON writes a JSON array of directives.
	FormatJSON Format = "json"

	// LDFlagsVar is the variable assigned by the env format.
	LDFlagsVar = "CGO_LDFLAGS"
)

type (
	// Format names an output rendering for directives.
	Format string

	// Emitter is the sink for directives. Emit is called once per directive
	// in link order; Flush is called once after the last one.
	Emitter interface {
		Emit(d Directive) error
		Flush() error
	}

	// Collector keeps directives in memory.
	Collector struct {
		Directives []Directive
	}

	// TextEmitter streams directives in neutral textual form.
	TextEmitter struct {
		w io.Writer
	}

	// CgoEmitter streams one "#cgo LDFLAGS:" line per directive.
	CgoEmitter struct {
		w io.Writer
	}

	// EnvEmitter buffers linker flags and writes a single shell-quoted
	// CGO_LDFLAGS assignment on Flush.
	EnvEmitter struct {
		w     io.Writer
		flags []string
	}

	// TOMLEmitter buffers directives and encodes them on Flush.
	TOMLEmitter struct {
		w          io.Writer
		directives []Directive
	}

	// JSONEmitter buffers directives and encodes them on Flush.
	JSONEmitter struct {
		w          io.Writer
		directives []Directive
	}

	tomlDocument struct {
		Directive []Directive `toml:"directive"`
	}
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatText, FormatCgo, FormatEnv, FormatTOML, FormatJSON}
}

// NewEmitter returns the emitter for format writing to w.
func NewEmitter(format Format, w io.Writer) (Emitter, error) {
	switch format {
	case FormatText, "":
		return &TextEmitter{w: w}, nil
	case FormatCgo:
		return &CgoEmitter{w: w}, nil
	case FormatEnv:
		return &EnvEmitter{w: w}, nil
	case FormatTOML:
		return &TOMLEmitter{w: w}, nil
	case FormatJSON:
		return &JSONEmitter{w: w}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Flag returns the compiler-driver flag that implements d.
func Flag(d Directive) string {
	switch d.Kind {
	case SearchPath:
		return "-L" + d.Value
	case LinkLibrary:
		if d.Mode == Static {
			return "-l:lib" + d.Value + ".a"
		}
		return "-l" + d.Value
	case RPath:
		return "-Wl,-rpath," + d.Value
	default:
		return ""
	}
}

// Flags maps directives to linker flags, preserving order.
func Flags(ds []Directive) []string {
	flags := make([]string, 0, len(ds))
	for _, d := range ds {
		if f := Flag(d); f != "" {
			flags = append(flags, f)
		}
	}
	return flags
}

// Emit implements Emitter.
func (c *Collector) Emit(d Directive) error {
	c.Directives = append(c.Directives, d)
	return nil
}

// Flush implements Emitter.
func (c *Collector) Flush() error { return nil }

// Emit implements Emitter.
func (e *TextEmitter) Emit(d Directive) error {
	_, err := fmt.Fprintln(e.w, d.String())
	return err
}

// Flush implements Emitter.
func (e *TextEmitter) Flush() error { return nil }

// Emit implements Emitter.
func (e *CgoEmitter) Emit(d Directive) error {
	_, err := fmt.Fprintf(e.w, "#cgo LDFLAGS: %s\n", cgoQuote(Flag(d)))
	return err
}

// Flush implements Emitter.
func (e *CgoEmitter) Flush() error { return nil }

// Emit implements Emitter.
func (e *EnvEmitter) Emit(d Directive) error {
	e.flags = append(e.flags, Flag(d))
	return nil
}

// Flush implements Emitter.
func (e *EnvEmitter) Flush() error {
	value, err := syntax.Quote(strings.Join(e.flags, " "), syntax.LangBash)
	if err != nil {
		return fmt.Errorf("quoting %s: %w", LDFlagsVar, err)
	}
	_, err = fmt.Fprintf(e.w, "export %s=%s\n", LDFlagsVar, value)
	return err
}

// Emit implements Emitter.
func (e *TOMLEmitter) Emit(d Directive) error {
	e.directives = append(e.directives, d)
	return nil
}

// Flush implements Emitter.
func (e *TOMLEmitter) Flush() error {
	enc := toml.NewEncoder(e.w)
	enc.SetIndentTables(true)
	return enc.Encode(tomlDocument{Directive: e.directives})
}

// Emit implements Emitter.
func (e *JSONEmitter) Emit(d Directive) error {
	e.directives = append(e.directives, d)
	return nil
}

// Flush implements Emitter.
func (e *JSONEmitter) Flush() error {
	directives := e.directives
	if directives == nil {
		directives = []Directive{}
	}
	enc := json.NewEncoder(e.w)
	enc.SetIndent("", "  ")
	return enc.Encode(directives)
}

// cgoQuote wraps flags containing whitespace in double quotes, which cgo's
// directive splitter understands.
func cgoQuote(flag string) string {
	if !strings.ContainsAny(flag, " \t'\"") {
		return flag
	}
	return `"` + strings.ReplaceAll(flag, `"`, `\"`) + `"`
}
