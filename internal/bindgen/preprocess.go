// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/shell"

	"github.com/hslink/hslink/internal/toolchain"
)

// DefaultCC is the compiler driver used when neither configuration nor $CC
// names one.
const DefaultCC = "cc"

// Preprocessor runs the C preprocessor over a header.
type Preprocessor struct {
	Runner toolchain.Runner
	// Command is the compiler driver and any leading arguments,
	// e.g. ["zig", "cc"]. Empty means DefaultCC.
	Command []string
}

// NewPreprocessor splits cc like a POSIX shell would ("ccache gcc -m64")
// and falls back to $CC and then DefaultCC when cc is empty.
func NewPreprocessor(runner toolchain.Runner, cc string) (*Preprocessor, error) {
	if cc == "" {
		cc = os.Getenv("CC")
	}
	if cc == "" {
		return &Preprocessor{Runner: runner, Command: []string{DefaultCC}}, nil
	}
	fields, err := shell.Fields(cc, nil)
	if err != nil {
		return nil, fmt.Errorf("cannot parse C compiler command %q: %w", cc, err)
	}
	if len(fields) == 0 {
		fields = []string{DefaultCC}
	}
	return &Preprocessor{Runner: runner, Command: fields}, nil
}

// Args returns the full command line used to preprocess header.
func (p *Preprocessor) Args(header string, includeDirs []string) []string {
	command := p.Command
	if len(command) == 0 {
		command = []string{DefaultCC}
	}
	args := append([]string(nil), command...)
	args = append(args, "-E", "-x", "c")
	for _, dir := range includeDirs {
		args = append(args, "-I"+dir)
	}
	return append(args, header)
}

// Preprocess returns the preprocessed translation unit, linemarkers included.
func (p *Preprocessor) Preprocess(ctx context.Context, header string, includeDirs []string) (string, error) {
	args := p.Args(header, includeDirs)
	return p.Runner.Run(ctx, args[0], args[1:]...)
}

// checkIncludes reports the first `#include "file"` in header that cannot
// be found next to the header or in includeDirs. Angle-bracket includes are
// left to the preprocessor.
func checkIncludes(header string, includeDirs []string) error {
	f, err := os.Open(header)
	if err != nil {
		return err
	}
	defer f.Close()

	dirs := append([]string{filepath.Dir(header)}, includeDirs...)
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		name, ok := quotedInclude(scanner.Text())
		if !ok || includeExists(name, dirs) {
			continue
		}
		return &ParseError{
			File:   header,
			Line:   line,
			Reason: fmt.Sprintf("cannot resolve include %q (searched %s)", name, strings.Join(dirs, ", ")),
		}
	}
	return scanner.Err()
}

func quotedInclude(line string) (string, bool) {
	s := strings.TrimSpace(line)
	if !strings.HasPrefix(s, "#") {
		return "", false
	}
	s = strings.TrimSpace(s[1:])
	rest, ok := strings.CutPrefix(s, "include")
	if !ok {
		return "", false
	}
	rest = strings.TrimSpace(rest)
	if !strings.HasPrefix(rest, `"`) {
		return "", false
	}
	name, _, ok := strings.Cut(rest[1:], `"`)
	return name, ok && name != ""
}

func includeExists(name string, dirs []string) bool {
	if filepath.IsAbs(name) {
		_, err := os.Stat(name)
		return err == nil
	}
	for _, dir := range dirs {
		if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
			return true
		} else if !errors.Is(err, os.ErrNotExist) {
			return true
		}
	}
	return false
}
