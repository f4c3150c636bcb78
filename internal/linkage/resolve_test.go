// SPDX-License-Identifier: MPL-2.0

package linkage_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"slices"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/testutil"
	"github.com/hslink/hslink/internal/toolchain"
	"github.com/hslink/hslink/internal/toolchain/toolchaintest"
)

const testLibDir = "/opt/ghc/lib/ghc-9.4.7/lib"

func scriptedGHC() *toolchaintest.Runner {
	return toolchaintest.NewRunner().
		On("ghc-9.4.7 --numeric-version", "9.4.7\n").
		On("ghc-9.4.7 --print-libdir", testLibDir+"\n")
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func TestResolve_EndToEnd(t *testing.T) {
	project := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").
		PreExisting("base-4.17.0.0").
		Configured("myproj-0.1.0.0", "/out").
		Write(t, filepath.Join(project, linkage.DefaultDistDir))

	runner := scriptedGHC()
	sink := &linkage.Collector{}
	r := &linkage.Resolver{Runner: runner, Emitter: sink, Logger: quietLogger()}

	res, err := r.Resolve(context.Background(), project, linkage.Dynamic)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	base := filepath.Join(testLibDir, "base-4.17.0.0")
	build := filepath.Join("/out", "build")
	want := []linkage.Directive{
		{Kind: linkage.SearchPath, Value: base},
		{Kind: linkage.LinkLibrary, Value: "HSbase-4.17.0.0-ghc9.4.7", Mode: linkage.Dynamic},
		{Kind: linkage.RPath, Value: base},
		{Kind: linkage.SearchPath, Value: build},
		{Kind: linkage.LinkLibrary, Value: "HSmyproj-0.1.0.0-ghc9.4.7", Mode: linkage.Dynamic},
		{Kind: linkage.RPath, Value: build},
	}
	if !slices.Equal(sink.Directives, want) {
		t.Errorf("directives =\n%v\nwant\n%v", sink.Directives, want)
	}

	if res.GHCVersion != "9.4.7" || res.LibDir != testLibDir || res.BuildDir != build {
		t.Errorf("Resolution = %+v", res)
	}
	if res.Plan.ProjectID != "myproj-0.1.0.0" {
		t.Errorf("Resolution.Plan.ProjectID = %q", res.Plan.ProjectID)
	}

	wantCalls := []string{"ghc-9.4.7 --numeric-version", "ghc-9.4.7 --print-libdir"}
	if calls := runner.Calls(); !slices.Equal(calls, wantCalls) {
		t.Errorf("runner calls = %v, want %v", calls, wantCalls)
	}
}

func TestResolve_WarnsOnCompilerVersionMismatch(t *testing.T) {
	tests := []struct {
		name     string
		version  string
		wantWarn bool
	}{
		{name: "same version", version: "9.4.7", wantWarn: false},
		{name: "other version", version: "9.6.3", wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project := t.TempDir()
			testutil.NewPlan("ghc-9.4.7").
				Configured("myproj-0.1.0.0", "/out").
				Write(t, filepath.Join(project, linkage.DefaultDistDir))

			runner := toolchaintest.NewRunner().
				On("ghc --numeric-version", tt.version).
				On("ghc --print-libdir", testLibDir)
			var logs bytes.Buffer
			r := &linkage.Resolver{
				Runner:   runner,
				Emitter:  &linkage.Collector{},
				Compiler: "ghc",
				Logger:   log.NewWithOptions(&logs, log.Options{}),
			}

			if _, err := r.Resolve(context.Background(), project, linkage.Dynamic); err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got := bytes.Contains(logs.Bytes(), []byte("compiler version differs")); got != tt.wantWarn {
				t.Errorf("warning logged = %v, want %v\n%s", got, tt.wantWarn, logs.String())
			}
		})
	}
}

func TestResolve_StaticRejectedBeforeAnyWork(t *testing.T) {
	runner := scriptedGHC()
	sink := &linkage.Collector{}
	r := &linkage.Resolver{Runner: runner, Emitter: sink, Logger: quietLogger()}

	// The project directory does not even exist; static mode must fail first.
	_, err := r.Resolve(context.Background(), filepath.Join(t.TempDir(), "missing"), linkage.Static)
	if !errors.Is(err, linkage.ErrUnsupportedLinkMode) {
		t.Fatalf("Resolve(static) error = %v, want ErrUnsupportedLinkMode", err)
	}
	if len(sink.Directives) != 0 {
		t.Errorf("static mode emitted %v", sink.Directives)
	}
	if calls := runner.Calls(); len(calls) != 0 {
		t.Errorf("static mode ran commands: %v", calls)
	}
}

func TestResolve_UnsupportedCompiler(t *testing.T) {
	other := t.TempDir()
	testutil.NewPlan("eta-0.8.6").Configured("myproj-0.1.0.0", "/out").
		Write(t, filepath.Join(other, linkage.DefaultDistDir))

	runner := toolchaintest.NewRunner()
	r := &linkage.Resolver{Runner: runner, Emitter: &linkage.Collector{}, Logger: quietLogger()}

	_, err := r.Resolve(context.Background(), other, linkage.Dynamic)
	if !errors.Is(err, linkage.ErrUnsupportedCompiler) {
		t.Fatalf("Resolve() error = %v, want ErrUnsupportedCompiler", err)
	}
	if calls := runner.Calls(); len(calls) != 0 {
		t.Errorf("unsupported compiler still ran commands: %v", calls)
	}
}

func TestResolve_PlanErrorsPropagate(t *testing.T) {
	runner := scriptedGHC()
	r := &linkage.Resolver{Runner: runner, Emitter: &linkage.Collector{}, Logger: quietLogger()}

	_, err := r.Resolve(context.Background(), t.TempDir(), linkage.Dynamic)
	if !errors.Is(err, plan.ErrPlanRead) {
		t.Fatalf("Resolve() error = %v, want ErrPlanRead", err)
	}

	project := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").PreExisting("base-4.17.0.0").
		Write(t, filepath.Join(project, linkage.DefaultDistDir))
	_, err = r.Resolve(context.Background(), project, linkage.Dynamic)
	if !errors.Is(err, plan.ErrMissingConfiguredEntry) {
		t.Fatalf("Resolve() error = %v, want ErrMissingConfiguredEntry", err)
	}
}

func TestResolve_CompilerFailuresPropagate(t *testing.T) {
	project := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").Configured("myproj-0.1.0.0", "/out").
		Write(t, filepath.Join(project, linkage.DefaultDistDir))

	t.Run("compiler missing", func(t *testing.T) {
		sink := &linkage.Collector{}
		r := &linkage.Resolver{Runner: toolchaintest.NewRunner(), Emitter: sink, Logger: quietLogger()}
		_, err := r.Resolve(context.Background(), project, linkage.Dynamic)
		if !errors.Is(err, toolchain.ErrSpawn) {
			t.Fatalf("Resolve() error = %v, want ErrSpawn", err)
		}
		if len(sink.Directives) != 0 {
			t.Errorf("directives emitted despite failure: %v", sink.Directives)
		}
	})

	t.Run("libdir query fails", func(t *testing.T) {
		runner := toolchaintest.NewRunner().
			On("ghc-9.4.7 --numeric-version", "9.4.7").
			Fail("ghc-9.4.7 --print-libdir", &toolchain.ExitStatusError{Command: "ghc-9.4.7 --print-libdir", ExitCode: 1})
		r := &linkage.Resolver{Runner: runner, Emitter: &linkage.Collector{}, Logger: quietLogger()}
		_, err := r.Resolve(context.Background(), project, linkage.Dynamic)
		if !errors.Is(err, toolchain.ErrExitStatus) {
			t.Fatalf("Resolve() error = %v, want ErrExitStatus", err)
		}
	})
}

func TestResolve_CompilerOverrideAndAbsoluteDistDir(t *testing.T) {
	dist := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").Configured("myproj-0.1.0.0", "/out").Write(t, dist)

	runner := toolchaintest.NewRunner().
		On("/usr/local/bin/ghc --numeric-version", "9.4.7").
		On("/usr/local/bin/ghc --print-libdir", "/usr/local/lib/ghc")
	r := &linkage.Resolver{
		Runner:   runner,
		Emitter:  &linkage.Collector{},
		Logger:   quietLogger(),
		Compiler: "/usr/local/bin/ghc",
		DistDir:  dist,
	}
	res, err := r.Resolve(context.Background(), "/ignored/project", linkage.Dynamic)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if res.Compiler != "/usr/local/bin/ghc" || res.LibDir != "/usr/local/lib/ghc" {
		t.Errorf("Resolution = %+v", res)
	}
}

func TestResolve_TextOutput(t *testing.T) {
	project := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").
		PreExisting("base-4.17.0.0").
		Configured("myproj-0.1.0.0", "/out").
		Write(t, filepath.Join(project, linkage.DefaultDistDir))

	var out bytes.Buffer
	emitter, err := linkage.NewEmitter(linkage.FormatText, &out)
	if err != nil {
		t.Fatal(err)
	}
	r := &linkage.Resolver{Runner: scriptedGHC(), Emitter: emitter, Logger: quietLogger()}
	if _, err := r.Resolve(context.Background(), project, linkage.Dynamic); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	base := filepath.Join(testLibDir, "base-4.17.0.0")
	build := filepath.Join("/out", "build")
	want := "search-path " + base + "\n" +
		"link-library dynamic:HSbase-4.17.0.0-ghc9.4.7\n" +
		"rpath " + base + "\n" +
		"search-path " + build + "\n" +
		"link-library dynamic:HSmyproj-0.1.0.0-ghc9.4.7\n" +
		"rpath " + build + "\n"
	if out.String() != want {
		t.Errorf("output =\n%s\nwant\n%s", out.String(), want)
	}
}

func TestResolve_WithExecRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping: fake compiler is a POSIX shell script")
	}

	project := t.TempDir()
	testutil.NewPlan("ghc-9.4.7").
		PreExisting("base-4.17.0.0").
		Configured("myproj-0.1.0.0", "/out").
		Write(t, filepath.Join(project, linkage.DefaultDistDir))
	ghc := testutil.WriteFakeGHC(t, t.TempDir(), "ghc-9.4.7", "9.4.7", testLibDir)

	sink := &linkage.Collector{}
	r := &linkage.Resolver{
		Runner:   toolchain.NewExecRunner(),
		Emitter:  sink,
		Logger:   quietLogger(),
		Compiler: ghc,
	}
	if _, err := r.Resolve(context.Background(), project, linkage.Dynamic); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(sink.Directives) != 6 {
		t.Fatalf("len(directives) = %d, want 6", len(sink.Directives))
	}
	if sink.Directives[1].Value != "HSbase-4.17.0.0-ghc9.4.7" {
		t.Errorf("directives[1] = %v", sink.Directives[1])
	}
}

func TestOutputDir(t *testing.T) {
	abs := filepath.Join(t.TempDir(), "out")
	tests := []struct {
		project, dist, want string
	}{
		{"proj", "", filepath.Join("proj", linkage.DefaultDistDir)},
		{"proj", "build", filepath.Join("proj", "build")},
		{"proj", abs, abs},
	}
	for _, tt := range tests {
		if got := linkage.OutputDir(tt.project, tt.dist); got != tt.want {
			t.Errorf("OutputDir(%q, %q) = %q, want %q", tt.project, tt.dist, got, tt.want)
		}
	}
}
