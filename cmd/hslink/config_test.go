// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/hslink/hslink/internal/config"
	"github.com/hslink/hslink/internal/testutil"
)

// isolateConfig points the user config directory at a temp dir and clears
// HSLINK_* variables that would override file values.
func isolateConfig(t *testing.T) (cfgDir, projectDir string) {
	t.Helper()
	for _, key := range []string{"compiler", "link_mode", "dist_dir", "bindgen.header", "bindgen.cc", "bindgen.include_dirs", "bindgen.blocklist", "bindgen.package", "bindgen.output", "ui.verbose", "ui.color_scheme"} {
		testutil.MustUnsetenv(t, config.EnvName(key))
	}
	root := t.TempDir()
	cfgDir = filepath.Join(root, "config")
	projectDir = filepath.Join(root, "project")
	testutil.MustMkdirAll(t, projectDir)
	config.SetConfigDirOverride(cfgDir)
	t.Cleanup(config.Reset)
	return cfgDir, projectDir
}

func TestConfigPath(t *testing.T) {
	cfgDir, project := isolateConfig(t)

	stdout, _, err := runCLI(t, Dependencies{}, "config", "path", project)
	if err != nil {
		t.Fatalf("config path error = %v", err)
	}
	if !strings.Contains(stdout, "(using defaults)") {
		t.Errorf("stdout = %q, want defaults", stdout)
	}

	userFile := filepath.Join(cfgDir, "config.cue")
	testutil.MustWriteFile(t, userFile, `link_mode: "dynamic"`+"\n")
	stdout, _, _ = runCLI(t, Dependencies{}, "config", "path", project)
	if strings.TrimSpace(stdout) != userFile {
		t.Errorf("stdout = %q, want %q", stdout, userFile)
	}

	projectFile := filepath.Join(project, config.ProjectFileName)
	testutil.MustWriteFile(t, projectFile, `dist_dir: "out"`+"\n")
	stdout, _, _ = runCLI(t, Dependencies{}, "config", "path", project)
	if strings.TrimSpace(stdout) != projectFile {
		t.Errorf("stdout = %q, want the project file %q", stdout, projectFile)
	}
}

func TestConfigPath_MissingExplicitFile(t *testing.T) {
	_, project := isolateConfig(t)

	_, stderr, err := runCLI(t, Dependencies{}, "--config", filepath.Join(project, "nope.cue"), "config", "path", project)
	if err == nil {
		t.Fatal("config path accepted a missing --config file")
	}
	if !strings.Contains(stderr, "config file not found") {
		t.Errorf("stderr =\n%s", stderr)
	}
}

func TestConfigShowAndDump(t *testing.T) {
	_, project := isolateConfig(t)
	testutil.MustWriteFile(t, filepath.Join(project, config.ProjectFileName), `
compiler: "ghc-9.6.3"
dist_dir: "build-out"
bindgen: package: "fib"
`)

	stdout, stderr, err := runCLI(t, Dependencies{}, "config", "show", project)
	if err != nil {
		t.Fatalf("config show error = %v\n%s", err, stderr)
	}
	for _, want := range []string{"Current Configuration", config.ProjectFileName, "ghc-9.6.3", "build-out", "fib", "^hs_"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config show lacks %q:\n%s", want, stdout)
		}
	}

	stdout, stderr, err = runCLI(t, Dependencies{}, "config", "dump", project)
	if err != nil {
		t.Fatalf("config dump error = %v\n%s", err, stderr)
	}
	for _, want := range []string{`compiler: "ghc-9.6.3"`, `dist_dir: "build-out"`, `package: "fib"`} {
		if !strings.Contains(stdout, want) {
			t.Errorf("config dump lacks %q:\n%s", want, stdout)
		}
	}
}

func TestConfigShow_InvalidFile(t *testing.T) {
	_, project := isolateConfig(t)
	testutil.MustWriteFile(t, filepath.Join(project, config.ProjectFileName), `link_mode: "shared"`+"\n")

	_, stderr, err := runCLI(t, Dependencies{}, "config", "show", project)
	if err == nil {
		t.Fatal("config show accepted an invalid file")
	}
	if !strings.Contains(stderr, "hslink explain config-load-failed") {
		t.Errorf("stderr =\n%s", stderr)
	}
}

func TestConfigInit(t *testing.T) {
	cfgDir, _ := isolateConfig(t)

	stdout, _, err := runCLI(t, Dependencies{}, "config", "init")
	if err != nil {
		t.Fatalf("config init error = %v", err)
	}
	path := filepath.Join(cfgDir, "config.cue")
	if !strings.Contains(stdout, path) {
		t.Errorf("stdout = %q, want the created path", stdout)
	}
	if !strings.Contains(testutil.MustReadFile(t, path), `link_mode: "dynamic"`) {
		t.Errorf("written file lacks defaults")
	}

	_, stderr, err := runCLI(t, Dependencies{}, "config", "init")
	if err == nil || !strings.Contains(stderr, "Use --force to overwrite it") {
		t.Errorf("second init: err = %v, stderr =\n%s", err, stderr)
	}

	if _, _, err := runCLI(t, Dependencies{}, "config", "init", "--force"); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestConfigInit_Project(t *testing.T) {
	_, project := isolateConfig(t)
	testutil.MustChdir(t, project)

	if _, _, err := runCLI(t, Dependencies{}, "config", "init", "--project"); err != nil {
		t.Fatalf("config init --project error = %v", err)
	}
	if !strings.Contains(testutil.MustReadFile(t, filepath.Join(project, config.ProjectFileName)), "bindgen: {") {
		t.Error("project file lacks the bindgen section")
	}
}
