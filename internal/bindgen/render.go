// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"go/format"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/pelletier/go-toml/v2"
)

const (
	// FormatGo renders a cgo source file.
	FormatGo Format = "go"
	// FormatJSON renders the declaration set as JSON.
	FormatJSON Format = "json"
	// FormatTOML renders the declaration set as TOML.
	FormatTOML Format = "toml"

	// DefaultPackage is the Go package name of generated bindings.
	DefaultPackage = "haskell"
)

//go:embed binding.go.tmpl
var bindingTemplate string

var goFileTemplate = template.Must(template.New("binding").Parse(bindingTemplate))

// reservedNames are declared by every generated file.
var reservedNames = map[string]bool{"Start": true, "Run": true}

type (
	// Format names an output rendering for a DeclarationSet.
	Format string

	// RenderOptions configure the Go rendering. JSON and TOML ignore them.
	RenderOptions struct {
		// Package is the Go package name. Empty means DefaultPackage.
		Package string
		// IncludeDirs become #cgo CFLAGS -I entries.
		IncludeDirs []string
		// LDFlags become #cgo LDFLAGS entries, in order.
		LDFlags []string
	}

	goFile struct {
		Header     string
		Package    string
		CFlags     []string
		LDFlags    []string
		Prototypes []string
		Wrappers   []goWrapper
		Skipped    []skippedFunction
	}

	goWrapper struct {
		GoName     string
		CName      string
		Params     []goParam
		Args       string
		Void       bool
		ResultGo   string
		ResultC    string
		ResultExpr string
	}

	goParam struct {
		Name string
		Go   string
	}

	skippedFunction struct {
		Name   string
		Reason string
	}
)

// Formats lists the supported output formats.
func Formats() []Format {
	return []Format{FormatGo, FormatJSON, FormatTOML}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatGo, FormatJSON, FormatTOML:
		return f, nil
	case "":
		return FormatGo, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
}

// Render writes set to w in the given format.
func Render(w io.Writer, set *DeclarationSet, format Format, opts RenderOptions) error {
	switch format {
	case FormatGo, "":
		src, err := RenderGo(set, opts)
		if err != nil {
			return err
		}
		_, err = w.Write(src)
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(set)
	case FormatTOML:
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(set)
	default:
		return fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
}

// Write renders set to the file at path, creating parent directories.
// Nothing is written when rendering fails, and an interrupted write leaves
// the previous file in place.
func Write(path string, set *DeclarationSet, format Format, opts RenderOptions) error {
	var buf bytes.Buffer
	if err := Render(&buf, set, format, opts); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := replaceFile(path, buf.Bytes()); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// replaceFile writes data to a temp file next to path and renames it over
// path, so readers see either the old or the new content.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if !renamed {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	renamed = true
	return nil
}

// RenderGo returns a gofmt-formatted cgo source file exposing every
// function in set through an *hsrt.Runtime.
func RenderGo(set *DeclarationSet, opts RenderOptions) ([]byte, error) {
	pkg := opts.Package
	if pkg == "" {
		pkg = DefaultPackage
	}

	file := goFile{
		Header:  filepath.Base(set.Header),
		Package: pkg,
	}
	for _, dir := range opts.IncludeDirs {
		file.CFlags = append(file.CFlags, cgoArg("-I"+dir))
	}
	for _, flag := range opts.LDFlags {
		file.LDFlags = append(file.LDFlags, cgoArg(flag))
	}

	used := make(map[string]bool)
	for _, fn := range set.Functions {
		file.Prototypes = append(file.Prototypes, prototype(fn))

		w, reason := wrap(fn, used)
		if reason != "" {
			file.Skipped = append(file.Skipped, skippedFunction{Name: fn.Name, Reason: reason})
			continue
		}
		file.Wrappers = append(file.Wrappers, w)
	}

	var buf bytes.Buffer
	if err := goFileTemplate.Execute(&buf, file); err != nil {
		return nil, &GenerationError{Header: set.Header, Err: err}
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, &GenerationError{Header: set.Header, Err: err}
	}
	return src, nil
}

// prototype renders an extern declaration with unnamed parameters.
func prototype(fn Function) string {
	params := make([]string, 0, len(fn.Params)+1)
	for _, p := range fn.Params {
		params = append(params, p.Type)
	}
	if fn.Variadic {
		params = append(params, "...")
	}
	if len(params) == 0 {
		params = append(params, "void")
	}
	return fmt.Sprintf("%s %s(%s)", fn.Result, fn.Name, strings.Join(params, ", "))
}

// wrap builds the Go wrapper for fn, or explains why there is none.
func wrap(fn Function, used map[string]bool) (goWrapper, string) {
	if fn.Variadic {
		return goWrapper{}, "variadic functions cannot be called from cgo"
	}

	w := goWrapper{CName: fn.Name}

	result, ok := mapType(fn.Result)
	if !ok {
		return goWrapper{}, fmt.Sprintf("unsupported result type %q", fn.Result)
	}
	if result.Void {
		w.Void = true
	} else {
		w.ResultGo = result.Go
		w.ResultC = result.C
		if result.Pointer {
			w.ResultExpr = "unsafe.Pointer(ret)"
		} else {
			w.ResultExpr = result.Go + "(ret)"
		}
	}

	taken := map[string]bool{"rt": true, "ret": true, "err": true, "C": true}
	args := make([]string, 0, len(fn.Params))
	for i, p := range fn.Params {
		pt, ok := mapType(p.Type)
		if !ok || pt.Void {
			return goWrapper{}, fmt.Sprintf("unsupported parameter type %q", p.Type)
		}
		name := paramName(p.Name, i+1, taken)
		w.Params = append(w.Params, goParam{Name: name, Go: pt.Go})
		args = append(args, convert(pt, name))
	}
	w.Args = strings.Join(args, ", ")

	name := exportName(fn.Name)
	for reservedNames[name] || used[name] {
		name += "Hs"
	}
	used[name] = true
	w.GoName = name
	return w, ""
}

// convert returns the expression passing a Go value as its C type.
func convert(t goType, name string) string {
	switch {
	case t.C == "unsafe.Pointer":
		return name
	case strings.HasPrefix(t.C, "*"):
		return "(" + t.C + ")(" + name + ")"
	default:
		return t.C + "(" + name + ")"
	}
}

// cgoArg quotes a flag for a #cgo directive when it contains whitespace
// or quotes.
func cgoArg(flag string) string {
	if !strings.ContainsAny(flag, " \t'\"") {
		return flag
	}
	return `"` + strings.ReplaceAll(flag, `"`, `\"`) + `"`
}
