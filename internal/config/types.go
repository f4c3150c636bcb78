// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"go/token"
	"os"
	"strings"

	"github.com/hslink/hslink/internal/bindgen"
	"github.com/hslink/hslink/internal/linkage"
)

const (
	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultHeader is the stub header cabal writes for a foreign-export module.
	DefaultHeader = "Safe_stub.h"
)

var (
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidLinkMode is returned when link_mode is neither static nor dynamic.
	ErrInvalidLinkMode = errors.New("invalid link mode")
	// ErrInvalidSupportLibrary is the sentinel error wrapped by InvalidSupportLibraryError.
	ErrInvalidSupportLibrary = errors.New("invalid support library")
	// ErrInvalidBindgenConfig is the sentinel error wrapped by InvalidBindgenConfigError.
	ErrInvalidBindgenConfig = errors.New("invalid bindgen config")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidLinkModeError is returned when the configured link mode is unknown.
	InvalidLinkModeError struct {
		Value linkage.Mode
	}

	// InvalidSupportLibraryError describes a malformed support_libraries entry.
	InvalidSupportLibraryError struct {
		Index  int
		Reason string
	}

	// InvalidBindgenConfigError wraps the field errors of the bindgen section.
	InvalidBindgenConfigError struct {
		FieldErrors []error
	}

	// InvalidConfigError wraps every field error found in a Config.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// BindgenConfig configures binding generation.
	BindgenConfig struct {
		// Header is the stub header, relative to the project's build directory
		// unless absolute.
		Header string `json:"header" mapstructure:"header"`
		// CC is the C compiler command used for preprocessing. Empty means $CC,
		// then "cc".
		CC string `json:"cc,omitempty" mapstructure:"cc"`
		// IncludeDirs are added after the GHC runtime include directory.
		IncludeDirs []string `json:"include_dirs" mapstructure:"include_dirs"`
		// Blocklist holds the regular expressions of names never exposed.
		Blocklist []string `json:"blocklist" mapstructure:"blocklist"`
		// Package is the Go package name of generated bindings.
		Package string `json:"package" mapstructure:"package"`
		// Output is the default output file. Empty means stdout.
		Output string `json:"output,omitempty" mapstructure:"output"`
	}

	// UIConfig configures terminal output.
	UIConfig struct {
		// ColorScheme sets the color scheme preference.
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging and full error chains.
		Verbose bool `json:"verbose" mapstructure:"verbose"`
	}

	// Config is the merged hslink configuration.
	Config struct {
		// Compiler overrides the compiler named by the plan's compiler-id.
		Compiler string `json:"compiler,omitempty" mapstructure:"compiler"`
		// LinkMode is the default link mode for resolve and generate.
		LinkMode linkage.Mode `json:"link_mode" mapstructure:"link_mode"`
		// DistDir is cabal's output directory, relative to the project.
		DistDir string `json:"dist_dir" mapstructure:"dist_dir"`
		// SupportLibraries are linked after the dependencies in static mode.
		SupportLibraries []linkage.SupportLibrary `json:"support_libraries" mapstructure:"support_libraries"`
		// Bindgen configures binding generation.
		Bindgen BindgenConfig `json:"bindgen" mapstructure:"bindgen"`
		// UI configures terminal output.
		UI UIConfig `json:"ui" mapstructure:"ui"`

		// DotEnv holds the variables of the project's .env file.
		DotEnv map[string]string `json:"-" mapstructure:"-"`
	}
)

// LookupEnv reads the process environment first, then the project's .env
// variables.
func (c *Config) LookupEnv(key string) (string, bool) {
	if v, ok := os.LookupEnv(key); ok {
		return v, true
	}
	v, ok := c.DotEnv[key]
	return v, ok
}

// Getenv is LookupEnv without the presence flag.
func (c *Config) Getenv(key string) string {
	v, _ := c.LookupEnv(key)
	return v
}

// IsValid returns whether the Config has valid fields.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if _, err := linkage.ParseMode(string(c.LinkMode)); err != nil {
		errs = append(errs, &InvalidLinkModeError{Value: c.LinkMode})
	}
	if strings.TrimSpace(c.DistDir) == "" {
		errs = append(errs, fmt.Errorf("%w: dist_dir must be non-empty", ErrInvalidConfig))
	}
	for i, lib := range c.SupportLibraries {
		if strings.TrimSpace(lib.Name) == "" {
			errs = append(errs, &InvalidSupportLibraryError{Index: i, Reason: "name must be non-empty"})
		}
	}
	if valid, fieldErrs := c.Bindgen.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// IsValid returns whether the bindgen section is usable: the blocklist
// compiles and the package is a Go identifier.
func (c BindgenConfig) IsValid() (bool, []error) {
	var errs []error
	if _, err := bindgen.NewBlocklist(c.Blocklist...); err != nil {
		errs = append(errs, err)
	}
	if !token.IsIdentifier(c.Package) || token.IsKeyword(c.Package) {
		errs = append(errs, fmt.Errorf("package %q is not a Go identifier", c.Package))
	}
	if strings.TrimSpace(c.Header) == "" {
		errs = append(errs, errors.New("header must be non-empty"))
	}
	if len(errs) > 0 {
		return false, []error{&InvalidBindgenConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return "invalid config: " + e.FieldErrors[0].Error()
	}
	return fmt.Sprintf("invalid config: %d field error(s)", len(e.FieldErrors))
}

// Unwrap returns ErrInvalidConfig together with the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Error implements the error interface for InvalidBindgenConfigError.
func (e *InvalidBindgenConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return "invalid bindgen config: " + strings.Join(msgs, "; ")
}

// Unwrap returns ErrInvalidBindgenConfig together with the field errors.
func (e *InvalidBindgenConfigError) Unwrap() []error {
	return append([]error{ErrInvalidBindgenConfig}, e.FieldErrors...)
}

func (e *InvalidLinkModeError) Error() string {
	return fmt.Sprintf("invalid link mode %q (valid: static, dynamic)", e.Value)
}

// Unwrap returns ErrInvalidLinkMode for errors.Is() compatibility.
func (e *InvalidLinkModeError) Unwrap() error { return ErrInvalidLinkMode }

func (e *InvalidSupportLibraryError) Error() string {
	return fmt.Sprintf("support_libraries[%d]: %s", e.Index, e.Reason)
}

// Unwrap returns ErrInvalidSupportLibrary for errors.Is() compatibility.
func (e *InvalidSupportLibraryError) Unwrap() error { return ErrInvalidSupportLibrary }

// Error implements the error interface for InvalidColorSchemeError.
func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error {
	return ErrInvalidColorScheme
}

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		LinkMode:         linkage.Dynamic,
		DistDir:          linkage.DefaultDistDir,
		SupportLibraries: []linkage.SupportLibrary{},
		Bindgen: BindgenConfig{
			Header:      DefaultHeader,
			IncludeDirs: []string{},
			Blocklist:   []string{bindgen.DefaultBlockPattern},
			Package:     bindgen.DefaultPackage,
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
		},
	}
}
