// SPDX-License-Identifier: MPL-2.0

package bindgen

import (
	"fmt"
	"regexp"
)

// DefaultBlockPattern excludes the GHC runtime API (hs_init, hs_exit, ...),
// which the generated lifecycle declares itself.
const DefaultBlockPattern = "^hs_"

// Blocklist drops declarations by name.
type Blocklist struct {
	patterns []*regexp.Regexp
}

// NewBlocklist compiles patterns. No patterns means nothing is blocked.
func NewBlocklist(patterns ...string) (*Blocklist, error) {
	b := &Blocklist{patterns: make([]*regexp.Regexp, 0, len(patterns))}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %w", ErrInvalidPattern, p, err)
		}
		b.patterns = append(b.patterns, re)
	}
	return b, nil
}

// DefaultBlocklist blocks DefaultBlockPattern.
func DefaultBlocklist() *Blocklist {
	return &Blocklist{patterns: []*regexp.Regexp{regexp.MustCompile(DefaultBlockPattern)}}
}

// Blocked reports whether any pattern matches name. A nil Blocklist
// blocks nothing.
func (b *Blocklist) Blocked(name string) bool {
	if b == nil {
		return false
	}
	for _, re := range b.patterns {
		if re.MatchString(name) {
			return true
		}
	}
	return false
}

// Patterns returns the source of every pattern.
func (b *Blocklist) Patterns() []string {
	if b == nil {
		return nil
	}
	out := make([]string, len(b.patterns))
	for i, re := range b.patterns {
		out[i] = re.String()
	}
	return out
}
