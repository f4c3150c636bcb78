// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hslink/hslink/internal/issue"
	"github.com/hslink/hslink/pkg/cueutil"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "hslink"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// ProjectFileName is the per-project config file, looked up in the
	// project directory.
	ProjectFileName = AppName + "." + ConfigFileExt
	// DotEnvFileName is the project environment file.
	DotEnvFileName = ".env"
	// EnvPrefix prefixes environment overrides (HSLINK_LINK_MODE).
	EnvPrefix = "HSLINK"
)

// ErrConfigExists is returned by WriteDefault when the target already exists.
var ErrConfigExists = errors.New("config file already exists")

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the hslink configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Locate returns the config file Load would read: the explicit file, then
// hslink.cue in the project directory, then config.cue in the config
// directory. An empty path means only defaults apply.
func Locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.Failed("load configuration").
				On(opts.ConfigFilePath).
				Hint(
					"Verify the file path is correct",
					"Check that the file exists and is readable",
					"Use 'hslink config show' to see the default configuration",
				).
				Documented(issue.ConfigLoadFailedId).
				Because(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				Err()
		}
		return opts.ConfigFilePath, nil
	}

	projectPath := filepath.Join(opts.projectDir(), ProjectFileName)
	if fileExists(projectPath) {
		return projectPath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading. Precedence, highest
// first: process environment, the project's .env file, the config file,
// defaults.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := Locate(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.Failed("load configuration").
				On(resolvedPath).
				Hint(
					"Check that the file contains valid CUE syntax",
					"Verify the configuration values match the expected schema",
					"Run 'hslink config dump' to see a complete, valid file",
				).
				Documented(issue.ConfigLoadFailedId).
				Because(err).
				Err()
		}
	}

	dotenvPath := filepath.Join(opts.projectDir(), DotEnvFileName)
	dotenv, err := readDotEnv(dotenvPath)
	if err != nil {
		return nil, "", issue.Failed("load environment file").
			On(dotenvPath).
			Hint("Use KEY=value lines, one per variable").
			Documented(issue.ConfigLoadFailedId).
			Because(err).
			Err()
	}
	applyDotEnv(v, dotenv)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.DotEnv = dotenv

	if valid, errs := cfg.IsValid(); !valid {
		return nil, "", issue.Failed("validate configuration").
			On(resolvedPath).
			Hint(
				"link_mode must be \"static\" or \"dynamic\"",
				"Check "+EnvPrefix+"_* environment variables and the project "+DotEnvFileName+" file",
			).
			Documented(issue.ConfigLoadFailedId).
			Because(errors.Join(errs...)).
			Err()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("compiler", defaults.Compiler)
	v.SetDefault("link_mode", string(defaults.LinkMode))
	v.SetDefault("dist_dir", defaults.DistDir)
	v.SetDefault("support_libraries", defaults.SupportLibraries)
	v.SetDefault("bindgen.header", defaults.Bindgen.Header)
	v.SetDefault("bindgen.cc", defaults.Bindgen.CC)
	v.SetDefault("bindgen.include_dirs", defaults.Bindgen.IncludeDirs)
	v.SetDefault("bindgen.blocklist", defaults.Bindgen.Blocklist)
	v.SetDefault("bindgen.package", defaults.Bindgen.Package)
	v.SetDefault("bindgen.output", defaults.Bindgen.Output)
	v.SetDefault("ui.color_scheme", string(defaults.UI.ColorScheme))
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper.
//
// Config decodes to map[string]any for the Viper merge and uses
// Concrete(false) since every field is optional, so cueutil.ParseAndDecode
// does not fit here.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := cueutil.CheckFileSize(data, cueutil.DefaultMaxFileSize, path); err != nil {
		return err
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return cueutil.FormatError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return cueutil.FormatError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return cueutil.FormatError(err, path)
	}

	// Merge into Viper (preserves defaults, allows env overrides)
	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// readDotEnv parses path without touching the process environment. A missing
// file yields an empty map.
func readDotEnv(path string) (map[string]string, error) {
	vars, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return vars, nil
}

// applyDotEnv sets every HSLINK_ variable from the .env file that the
// process environment does not already define.
func applyDotEnv(v *viper.Viper, vars map[string]string) {
	for _, key := range v.AllKeys() {
		name := EnvName(key)
		val, ok := vars[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, val)
	}
}

// EnvName returns the environment variable overriding a config key:
// "bindgen.cc" becomes "HSLINK_BINDGEN_CC".
func EnvName(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// DefaultPath returns the user config file location.
func DefaultPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt), nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is only replaced when force is set.
func WriteDefault(path string, force bool) error {
	if !force && fileExists(path) {
		return fmt.Errorf("%w: %s", ErrConfigExists, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// hslink configuration file\n\n")

	if cfg.Compiler != "" {
		fmt.Fprintf(&sb, "compiler: %q\n", cfg.Compiler)
	}
	fmt.Fprintf(&sb, "link_mode: %q\n", cfg.LinkMode)
	fmt.Fprintf(&sb, "dist_dir: %q\n", cfg.DistDir)

	if len(cfg.SupportLibraries) > 0 {
		sb.WriteString("\nsupport_libraries: [\n")
		for _, lib := range cfg.SupportLibraries {
			fmt.Fprintf(&sb, "\t{name: %q", lib.Name)
			if lib.SearchPath != "" {
				fmt.Fprintf(&sb, ", search_path: %q", lib.SearchPath)
			}
			if lib.Env != "" {
				fmt.Fprintf(&sb, ", env: %q", lib.Env)
			}
			sb.WriteString("},\n")
		}
		sb.WriteString("]\n")
	}

	sb.WriteString("\nbindgen: {\n")
	fmt.Fprintf(&sb, "\theader: %q\n", cfg.Bindgen.Header)
	if cfg.Bindgen.CC != "" {
		fmt.Fprintf(&sb, "\tcc: %q\n", cfg.Bindgen.CC)
	}
	writeCUEList(&sb, "include_dirs", cfg.Bindgen.IncludeDirs)
	writeCUEList(&sb, "blocklist", cfg.Bindgen.Blocklist)
	fmt.Fprintf(&sb, "\tpackage: %q\n", cfg.Bindgen.Package)
	if cfg.Bindgen.Output != "" {
		fmt.Fprintf(&sb, "\toutput: %q\n", cfg.Bindgen.Output)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose: %v\n", cfg.UI.Verbose)
	sb.WriteString("}\n")

	return sb.String()
}

func writeCUEList(sb *strings.Builder, name string, items []string) {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, fmt.Sprintf("%q", item))
	}
	fmt.Fprintf(sb, "\t%s: [%s]\n", name, strings.Join(quoted, ", "))
}
