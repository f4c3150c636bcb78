// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	gotoken "go/token"
	"strconv"
	"strings"
	"unicode"
)

// goType describes how a C type crosses the cgo boundary.
type goType struct {
	// Go is the type used in the exported wrapper's signature.
	Go string
	// C is the cgo spelling of the C type (C.HsInt32, *C.char).
	C string
	// Pointer marks types passed as unsafe.Pointer.
	Pointer bool
	// Void marks a void result.
	Void bool
}

var (
	// hsTypes are the HsFFI.h scalar types.
	hsTypes = map[string]string{
		"HsInt": "int", "HsInt8": "int8", "HsInt16": "int16", "HsInt32": "int32", "HsInt64": "int64",
		"HsWord": "uint", "HsWord8": "uint8", "HsWord16": "uint16", "HsWord32": "uint32", "HsWord64": "uint64",
		"HsFloat": "float32", "HsDouble": "float64", "HsChar": "rune", "HsBool": "int",
	}

	// hsPointers are the HsFFI.h pointer types.
	hsPointers = map[string]bool{"HsPtr": true, "HsFunPtr": true, "HsStablePtr": true}

	// cScalars maps C scalar spellings to the cgo name and a Go type.
	cScalars = map[string][2]string{
		"char":               {"char", "byte"},
		"signed char":        {"schar", "int8"},
		"unsigned char":      {"uchar", "uint8"},
		"short":              {"short", "int16"},
		"short int":          {"short", "int16"},
		"unsigned short":     {"ushort", "uint16"},
		"unsigned short int": {"ushort", "uint16"},
		"int":                {"int", "int32"},
		"signed":             {"int", "int32"},
		"signed int":         {"int", "int32"},
		"unsigned":           {"uint", "uint32"},
		"unsigned int":       {"uint", "uint32"},
		"long":               {"long", "int64"},
		"long int":           {"long", "int64"},
		"unsigned long":      {"ulong", "uint64"},
		"unsigned long int":  {"ulong", "uint64"},
		"long long":          {"longlong", "int64"},
		"long long int":      {"longlong", "int64"},
		"unsigned long long": {"ulonglong", "uint64"},
		"float":              {"float", "float32"},
		"double":             {"double", "float64"},
		"size_t":             {"size_t", "uint"},
		"int8_t":             {"int8_t", "int8"},
		"int16_t":            {"int16_t", "int16"},
		"int32_t":            {"int32_t", "int32"},
		"int64_t":            {"int64_t", "int64"},
		"uint8_t":            {"uint8_t", "uint8"},
		"uint16_t":           {"uint16_t", "uint16"},
		"uint32_t":           {"uint32_t", "uint32"},
		"uint64_t":           {"uint64_t", "uint64"},
	}
)

// mapType translates a rendered C type. ok is false for types that cgo
// cannot call through directly (function pointers, arrays by value).
func mapType(c string) (goType, bool) {
	c = strings.TrimSpace(c)
	if strings.ContainsAny(c, "()[{") {
		return goType{}, false
	}

	if stars := strings.Count(c, "*"); stars > 0 {
		base := strings.TrimSpace(strings.ReplaceAll(c, "*", ""))
		base = stripQualifiers(base)
		if base == "void" && stars == 1 {
			return goType{Go: "unsafe.Pointer", C: "unsafe.Pointer", Pointer: true}, true
		}
		elem, ok := cName(base)
		if !ok {
			return goType{}, false
		}
		return goType{Go: "unsafe.Pointer", C: strings.Repeat("*", stars) + elem, Pointer: true}, true
	}

	base := stripQualifiers(c)
	if base == "void" {
		return goType{Void: true}, true
	}
	if goName, ok := hsTypes[base]; ok {
		return goType{Go: goName, C: "C." + base}, true
	}
	if hsPointers[base] {
		return goType{Go: "unsafe.Pointer", C: "C." + base, Pointer: true}, true
	}
	if s, ok := cScalars[base]; ok {
		return goType{Go: s[1], C: "C." + s[0]}, true
	}
	name, ok := cName(base)
	if !ok {
		return goType{}, false
	}
	// Other typedefs and aggregates are passed as the cgo type itself.
	return goType{Go: name, C: name}, true
}

// cName returns the cgo spelling of a non-pointer C type.
func cName(base string) (string, bool) {
	if s, ok := cScalars[base]; ok {
		return "C." + s[0], true
	}
	fields := strings.Fields(base)
	switch {
	case len(fields) == 1 && isCIdent(fields[0]):
		return "C." + fields[0], true
	case len(fields) == 2 && tagWords[fields[0]] && isCIdent(fields[1]):
		return "C." + fields[0] + "_" + fields[1], true
	}
	return "", false
}

func stripQualifiers(s string) string {
	fields := strings.Fields(s)
	out := fields[:0]
	for _, f := range fields {
		if f == "const" || f == "volatile" {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}

func isCIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isIdentPart(s[i]) || (i == 0 && isDigit(s[i])) {
			return false
		}
	}
	return true
}

// exportName converts a C function name to an exported Go identifier:
// "fibonacci_hs" becomes "FibonacciHs".
func exportName(c string) string {
	var b strings.Builder
	upper := true
	for _, r := range c {
		if r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "X"
	}
	s := b.String()
	if unicode.IsDigit(rune(s[0])) {
		s = "X" + s
	}
	return s
}

// paramName returns a Go parameter name for the C one, or argN when the C
// name is missing or unusable.
func paramName(c string, i int, taken map[string]bool) string {
	name := c
	if name == "" || !gotoken.IsIdentifier(name) || gotoken.IsKeyword(name) || taken[name] {
		name = "arg" + strconv.Itoa(i)
	}
	for taken[name] {
		name += "_"
	}
	taken[name] = true
	return name
}
