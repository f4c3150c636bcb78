// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"fmt"
	"os"
)

const (
	// Static links archives (libHS<id>.a).
	Static Mode = "static"
	// Dynamic links shared objects (libHS<id>-ghc<version>.so) and records rpaths.
	Dynamic Mode = "dynamic"

	// SearchPath adds a native library search directory.
	SearchPath DirectiveKind = "search-path"
	// LinkLibrary requests a library by name.
	LinkLibrary DirectiveKind = "link-library"
	// RPath embeds a runtime library search directory in the binary.
	RPath DirectiveKind = "rpath"
)

type (
	// Mode selects static or dynamic linking.
	Mode string

	// DirectiveKind identifies what a Directive instructs the linker to do.
	DirectiveKind string

	// Directive is one instruction for the linker.
	Directive struct {
		Kind  DirectiveKind `json:"kind" toml:"kind"`
		Value string        `json:"value" toml:"value"`
		// Mode qualifies LinkLibrary directives.
		Mode Mode `json:"mode,omitempty" toml:"mode,omitempty"`
	}

	// SupportLibrary is a native library the static GHC runtime depends on.
	// Its directory comes from SearchPath, or from the environment variable
	// named by Env when SearchPath is empty. With neither set the library is
	// linked from the linker's default paths.
	SupportLibrary struct {
		Name       string `json:"name" mapstructure:"name"`
		SearchPath string `json:"search_path,omitempty" mapstructure:"search_path"`
		Env        string `json:"env,omitempty" mapstructure:"env"`
	}
)

// ParseMode converts a configuration or flag value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case Static, Dynamic:
		return m, nil
	default:
		return "", &UnsupportedLinkModeError{Mode: m}
	}
}

// String returns the mode name.
func (m Mode) String() string { return string(m) }

// String renders the directive in the neutral textual form
// ("search-path <dir>", "link-library dynamic:<name>", "rpath <dir>").
func (d Directive) String() string {
	if d.Kind == LinkLibrary {
		return fmt.Sprintf("%s %s:%s", d.Kind, d.Mode, d.Value)
	}
	return fmt.Sprintf("%s %s", d.Kind, d.Value)
}

// LibraryName returns the linker name of a GHC package library.
// Dynamic libraries carry the compiler version ("HSbase-4.17.0.0-ghc9.4.7");
// static archives do not ("HSbase-4.17.0.0").
func LibraryName(mode Mode, ghcVersion, id string) string {
	if mode == Static {
		return "HS" + id
	}
	return "HS" + id + "-ghc" + ghcVersion
}

// dir resolves the library's search directory; ok is false when none is configured.
func (s SupportLibrary) dir(lookupEnv func(string) (string, bool)) (string, bool) {
	if s.SearchPath != "" {
		return s.SearchPath, true
	}
	if s.Env == "" {
		return "", false
	}
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	v, ok := lookupEnv(s.Env)
	return v, ok && v != ""
}
