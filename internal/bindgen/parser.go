// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"strings"
)

var (
	// noiseWords are dropped wherever they appear in a declaration.
	noiseWords = map[string]bool{
		"__extension__": true, "__inline": true, "__inline__": true, "inline": true,
		"__restrict": true, "__restrict__": true, "restrict": true,
		"_Noreturn": true, "__cdecl": true, "__stdcall": true,
		"_Nullable": true, "_Nonnull": true, "_Null_unspecified": true,
	}

	// noiseCalls are dropped together with the parenthesised group after them.
	noiseCalls = map[string]bool{
		"__attribute__": true, "__attribute": true,
		"__asm__": true, "__asm": true, "asm": true,
		"__declspec": true, "_Alignas": true,
	}

	storageClasses = map[string]bool{
		"extern": true, "static": true, "auto": true, "register": true,
		"_Thread_local": true, "__thread": true,
	}

	// typeWords can never be a declarator name.
	typeWords = map[string]bool{
		"void": true, "char": true, "short": true, "int": true, "long": true,
		"float": true, "double": true, "signed": true, "unsigned": true,
		"_Bool": true, "bool": true, "_Complex": true, "__int128": true,
		"const": true, "volatile": true, "struct": true, "union": true, "enum": true,
		"typedef": true, "extern": true, "static": true,
	}

	tagWords = map[string]bool{"struct": true, "union": true, "enum": true}

	closers = map[string]string{"(": ")", "[": "]", "{": "}"}
)

type (
	// declaration is one extracted function or typedef with its origin.
	declaration struct {
		function *Function
		typedef  *Typedef
		system   bool
	}

	parser struct {
		toks []token
		pos  int
	}
)

// parseDeclarations splits a token stream into top-level declarations and
// extracts typedefs and function prototypes. Function definitions, variables
// (including function pointers) and bare struct/union/enum declarations are
// skipped.
func parseDeclarations(toks []token) ([]declaration, error) {
	p := &parser{toks: toks}
	return p.parse()
}

func (p *parser) parse() ([]declaration, error) {
	var (
		out     []declaration
		cur     []token
		linkage int
	)

	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		if tok.kind != tokPunct {
			cur = append(cur, tok)
			p.pos++
			continue
		}

		switch tok.text {
		case ";":
			p.pos++
			if d, ok := declare(cur); ok {
				out = append(out, d)
			}
			cur = nil

		case "{":
			end, err := groupEnd(p.toks, p.pos)
			if err != nil {
				return nil, err
			}
			switch {
			case isLinkageSpec(cur):
				// extern "C" { ... }: declarations inside stay top level.
				linkage++
				cur = nil
				p.pos++
			case isFunctionHead(cur):
				p.pos = end + 1
				cur = nil
			default:
				cur = append(cur, p.toks[p.pos:end+1]...)
				p.pos = end + 1
			}

		case "}":
			if linkage == 0 || len(cur) > 0 {
				return nil, tokenError(tok, "unbalanced '}'")
			}
			linkage--
			p.pos++

		case "(", "[":
			end, err := groupEnd(p.toks, p.pos)
			if err != nil {
				return nil, err
			}
			cur = append(cur, p.toks[p.pos:end+1]...)
			p.pos = end + 1

		case ")", "]":
			return nil, tokenError(tok, fmt.Sprintf("unbalanced '%s'", tok.text))

		default:
			cur = append(cur, tok)
			p.pos++
		}
	}

	if len(cur) > 0 {
		return nil, tokenError(cur[0], "unterminated declaration")
	}
	if linkage > 0 {
		return nil, &ParseError{File: lastFile(p.toks), Reason: "unterminated extern block"}
	}
	return out, nil
}

// declare turns the tokens of one ';'-terminated statement into a declaration.
func declare(raw []token) (declaration, bool) {
	toks := stripNoise(raw)
	if len(toks) == 0 {
		return declaration{}, false
	}
	origin := toks[0]

	if toks[0].kind == tokIdent && toks[0].text == "typedef" {
		td, ok := parseTypedef(toks[1:])
		if !ok {
			return declaration{}, false
		}
		td.File = origin.file
		return declaration{typedef: &td, system: origin.system}, true
	}

	fn, ok := parseFunction(toks)
	if !ok {
		return declaration{}, false
	}
	fn.File = origin.file
	fn.Line = origin.line
	return declaration{function: &fn, system: origin.system}, true
}

// parseFunction recognises `<specifiers> name ( params )`.
func parseFunction(toks []token) (Function, bool) {
	open := -1
	for i := 0; i < len(toks); i = skipGroup(toks, i) + 1 {
		if isPunct(toks[i], "(") {
			open = i
			break
		}
	}
	if open < 1 {
		return Function{}, false
	}
	nameTok := toks[open-1]
	if nameTok.kind != tokIdent || typeWords[nameTok.text] {
		return Function{}, false
	}
	end := skipGroup(toks, open)
	if end != len(toks)-1 {
		return Function{}, false
	}

	var spec []token
	for _, t := range toks[:open-1] {
		if isPunct(t, "=") {
			// An initialiser calling a function, not a prototype.
			return Function{}, false
		}
		if t.kind == tokIdent && storageClasses[t.text] {
			continue
		}
		spec = append(spec, t)
	}
	if len(spec) == 0 {
		// _Static_assert(...) and implicit-int declarations.
		return Function{}, false
	}
	result := renderType(spec)

	params, variadic := parseParams(toks[open+1 : end])
	return Function{
		Name:     nameTok.text,
		Result:   result,
		Params:   params,
		Variadic: variadic,
	}, true
}

func parseParams(inner []token) ([]Param, bool) {
	if len(inner) == 0 || (len(inner) == 1 && isIdent(inner[0], "void")) {
		return []Param{}, false
	}

	params := []Param{}
	variadic := false
	for _, part := range splitTopLevel(inner, ",") {
		if len(part) == 1 && isPunct(part[0], "...") {
			variadic = true
			continue
		}
		params = append(params, parseParam(part))
	}
	return params, variadic
}

func parseParam(part []token) Param {
	// T name[] and T name[N] decay to T *name.
	arrays := 0
	for len(part) > 0 && isPunct(part[len(part)-1], "]") {
		open := groupStart(part, len(part)-1)
		if open < 0 {
			break
		}
		part = part[:open]
		arrays++
	}

	if name, rest, ok := funcPointerName(part); ok {
		return Param{Name: name, Type: renderType(rest)}
	}

	typ := part
	name := ""
	if n := len(part); n > 1 {
		last, prev := part[n-1], part[n-2]
		if last.kind == tokIdent && !typeWords[last.text] && !(prev.kind == tokIdent && tagWords[prev.text]) {
			name = last.text
			typ = part[:n-1]
		}
	}

	typ = append([]token(nil), typ...)
	for range arrays {
		typ = append(typ, token{kind: tokPunct, text: "*"})
	}
	return Param{Name: name, Type: renderType(typ)}
}

// parseTypedef handles the declarators after the typedef keyword. Only the
// first declarator is kept when several share one typedef.
func parseTypedef(toks []token) (Typedef, bool) {
	parts := splitTopLevel(toks, ",")
	if len(parts) == 0 {
		return Typedef{}, false
	}
	first := parts[0]

	if name, rest, ok := funcPointerName(first); ok && name != "" {
		return Typedef{Name: name, Type: renderType(rest)}, true
	}

	// The name is the last top-level identifier before any array suffix or
	// function parameter list.
	end := len(first)
	for end > 0 && (isPunct(first[end-1], "]") || isPunct(first[end-1], ")")) {
		open := groupStart(first, end-1)
		if open < 0 {
			return Typedef{}, false
		}
		end = open
	}
	if end == 0 {
		return Typedef{}, false
	}
	nameTok := first[end-1]
	if nameTok.kind != tokIdent || typeWords[nameTok.text] {
		return Typedef{}, false
	}

	rest := make([]token, 0, len(first)-1)
	rest = append(rest, first[:end-1]...)
	rest = append(rest, first[end:]...)
	return Typedef{Name: nameTok.text, Type: renderType(rest)}, true
}

// funcPointerName finds a `( * name )` group and returns name together with
// the declaration minus the name.
func funcPointerName(toks []token) (string, []token, bool) {
	for i := 0; i < len(toks); i = skipGroup(toks, i) + 1 {
		if !isPunct(toks[i], "(") {
			continue
		}
		end := skipGroup(toks, i)
		inner := toks[i+1 : end]
		if len(inner) == 0 || !(isPunct(inner[0], "*") || isPunct(inner[0], "^")) {
			continue
		}
		for j := len(inner) - 1; j >= 0; j-- {
			t := inner[j]
			if t.kind == tokIdent && !typeWords[t.text] {
				rest := make([]token, 0, len(toks)-1)
				rest = append(rest, toks[:i+1+j]...)
				rest = append(rest, toks[i+1+j+1:]...)
				return t.text, rest, true
			}
		}
		return "", toks, true
	}
	return "", toks, false
}

// stripNoise removes attributes, asm labels and qualifiers that do not
// change the declared type.
func stripNoise(toks []token) []token {
	out := make([]token, 0, len(toks))
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.kind == tokIdent && noiseWords[t.text] {
			continue
		}
		if t.kind == tokIdent && noiseCalls[t.text] {
			if i+1 < len(toks) && isPunct(toks[i+1], "(") {
				i = skipGroup(toks, i+1)
			}
			continue
		}
		out = append(out, t)
	}
	return out
}

func isLinkageSpec(cur []token) bool {
	return len(cur) == 2 && isIdent(cur[0], "extern") && cur[1].kind == tokString
}

// isFunctionHead reports whether a '{' following cur opens a function body.
func isFunctionHead(cur []token) bool {
	toks := stripNoise(cur)
	if len(toks) == 0 || !isPunct(toks[len(toks)-1], ")") {
		return false
	}
	return !isIdent(toks[0], "typedef")
}

// splitTopLevel splits toks at separator tokens outside any group.
func splitTopLevel(toks []token, sep string) [][]token {
	var (
		parts [][]token
		start int
	)
	for i := 0; i < len(toks); i = skipGroup(toks, i) + 1 {
		if isPunct(toks[i], sep) {
			parts = append(parts, toks[start:i])
			start = i + 1
		}
	}
	if start < len(toks) {
		parts = append(parts, toks[start:])
	}
	return parts
}

// groupEnd returns the index of the token closing the group opened at i.
func groupEnd(toks []token, i int) (int, error) {
	stack := []string{closers[toks[i].text]}
	for j := i + 1; j < len(toks); j++ {
		t := toks[j]
		if t.kind != tokPunct {
			continue
		}
		if closer, ok := closers[t.text]; ok {
			stack = append(stack, closer)
			continue
		}
		switch t.text {
		case ")", "]", "}":
			if t.text != stack[len(stack)-1] {
				return 0, tokenError(t, fmt.Sprintf("unbalanced '%s'", t.text))
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return j, nil
			}
		}
	}
	return 0, tokenError(toks[i], fmt.Sprintf("unclosed '%s'", toks[i].text))
}

// skipGroup returns the index of the token closing the group opened at i,
// or i itself when toks[i] opens nothing. Groups inside a declaration were
// balanced by the statement splitter.
func skipGroup(toks []token, i int) int {
	if toks[i].kind != tokPunct || closers[toks[i].text] == "" {
		return i
	}
	end, err := groupEnd(toks, i)
	if err != nil {
		return len(toks) - 1
	}
	return end
}

// groupStart returns the index of the token opening the group closed at end.
func groupStart(toks []token, end int) int {
	depth := 0
	for i := end; i >= 0; i-- {
		if toks[i].kind != tokPunct {
			continue
		}
		switch toks[i].text {
		case ")", "]", "}":
			depth++
		case "(", "[", "{":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// renderType prints a declaration fragment in conventional C spelling,
// e.g. "const char *", "char **", "void (*)(int)". Aggregate bodies are
// abbreviated to "{...}".
func renderType(toks []token) string {
	var b strings.Builder
	prev := ""
	for i := 0; i < len(toks); i++ {
		s := toks[i].text
		if isPunct(toks[i], "{") {
			i = skipGroup(toks, i)
			s = "{...}"
		}
		switch {
		case b.Len() == 0:
		case s == ")" || s == "]" || s == ",":
		case prev == "(" || prev == "[":
		case s == "(" && prev == ")":
		case s == "*":
			if prev != "*" {
				b.WriteByte(' ')
			}
		case prev == "*":
		default:
			b.WriteByte(' ')
		}
		b.WriteString(s)
		prev = s
	}
	return b.String()
}

func isPunct(t token, s string) bool { return t.kind == tokPunct && t.text == s }

func isIdent(t token, s string) bool { return t.kind == tokIdent && t.text == s }

func tokenError(t token, reason string) *ParseError {
	return &ParseError{File: t.file, Line: t.line, Reason: reason}
}

func lastFile(toks []token) string {
	if len(toks) == 0 {
		return ""
	}
	return toks[len(toks)-1].file
}
