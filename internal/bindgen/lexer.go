// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"strconv"
	"strings"
)

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokChar
	tokPunct
)

type (
	tokenKind int

	// token is one lexeme of the preprocessed translation unit together
	// with the source position reported by the preprocessor.
	token struct {
		kind   tokenKind
		text   string
		file   string
		line   int
		system bool
	}

	// lexer scans preprocessor output. It understands GCC/Clang linemarkers
	// ("# 12 \"file.h\" 1 3") and "#line" directives; other directives left
	// in the output (#pragma, #ident) are skipped.
	lexer struct {
		src       string
		pos       int
		line      int
		file      string
		system    bool
		lineStart bool
	}
)

func newLexer(src, file string) *lexer {
	return &lexer{src: src, line: 1, file: file, lineStart: true}
}

// tokens scans the whole input.
func (l *lexer) tokens() ([]token, error) {
	var toks []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokEOF {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}

func (l *lexer) next() (token, error) {
	for {
		l.skipSpace()
		if l.pos >= len(l.src) {
			return l.make(tokEOF, ""), nil
		}

		c := l.src[l.pos]
		switch {
		case c == '#' && l.lineStart:
			l.directive()
			continue
		case c == '/' && l.peekAt(1) == '/':
			l.skipLine()
			continue
		case c == '/' && l.peekAt(1) == '*':
			if err := l.skipBlockComment(); err != nil {
				return token{}, err
			}
			continue
		}

		l.lineStart = false
		switch {
		case isIdentStart(c):
			return l.scanWhile(tokIdent, isIdentPart), nil
		case isDigit(c):
			return l.scanWhile(tokNumber, isNumberPart), nil
		case c == '"':
			return l.scanQuoted(tokString, '"')
		case c == '\'':
			return l.scanQuoted(tokChar, '\'')
		case c == '.' && strings.HasPrefix(l.src[l.pos:], "..."):
			tok := l.make(tokPunct, "...")
			l.pos += 3
			return tok, nil
		default:
			tok := l.make(tokPunct, string(c))
			l.pos++
			return tok, nil
		}
	}
}

func (l *lexer) make(kind tokenKind, text string) token {
	return token{kind: kind, text: text, file: l.file, line: l.line, system: l.system}
}

func (l *lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\n':
			l.line++
			l.lineStart = true
		case ' ', '\t', '\r', '\f', '\v':
		case '\\':
			// Line continuation.
			if l.peekAt(1) != '\n' {
				return
			}
			l.pos++
			l.line++
		default:
			return
		}
		l.pos++
	}
}

func (l *lexer) skipLine() {
	for l.pos < len(l.src) && l.src[l.pos] != '\n' {
		l.pos++
	}
}

func (l *lexer) skipBlockComment() error {
	start := l.line
	l.pos += 2
	for l.pos < len(l.src) {
		if l.src[l.pos] == '*' && l.peekAt(1) == '/' {
			l.pos += 2
			return nil
		}
		if l.src[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}
	return &ParseError{File: l.file, Line: start, Reason: "unterminated comment"}
}

func (l *lexer) scanWhile(kind tokenKind, pred func(byte) bool) token {
	start := l.pos
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.pos++
	}
	return l.make(kind, l.src[start:l.pos])
}

func (l *lexer) scanQuoted(kind tokenKind, quote byte) (token, error) {
	start := l.pos
	l.pos++
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case '\\':
			l.pos += 2
			continue
		case '\n':
			return token{}, &ParseError{File: l.file, Line: l.line, Reason: "unterminated literal"}
		case quote:
			l.pos++
			return l.make(kind, l.src[start:l.pos]), nil
		}
		l.pos++
	}
	return token{}, &ParseError{File: l.file, Line: l.line, Reason: "unterminated literal"}
}

// directive consumes a line starting with '#'. Linemarkers update the
// current file, line and system-header flag; the line after a marker has
// the number the marker names.
func (l *lexer) directive() {
	start := l.pos
	l.skipLine()
	text := strings.TrimSpace(l.src[start+1 : l.pos])

	text = strings.TrimSpace(strings.TrimPrefix(text, "line"))
	numEnd := strings.IndexFunc(text, func(r rune) bool { return r < '0' || r > '9' })
	if numEnd == 0 || text == "" {
		return
	}
	if numEnd < 0 {
		numEnd = len(text)
	}
	n, err := strconv.Atoi(text[:numEnd])
	if err != nil {
		return
	}

	// The newline ending the directive is counted by skipSpace.
	l.line = n - 1

	rest := strings.TrimSpace(text[numEnd:])
	end := closingQuote(rest)
	if end < 0 {
		return
	}
	if name, err := strconv.Unquote(rest[:end+1]); err == nil {
		l.file = name
	} else {
		l.file = rest[1:end]
	}
	l.system = false
	for _, flag := range strings.Fields(rest[end+1:]) {
		if flag == "3" {
			l.system = true
		}
	}
}

// closingQuote returns the index of the quote ending the string literal
// that s starts with, or -1.
func closingQuote(s string) int {
	if !strings.HasPrefix(s, `"`) {
		return -1
	}
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return -1
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumberPart(c byte) bool {
	return isIdentPart(c) || c == '.'
}
