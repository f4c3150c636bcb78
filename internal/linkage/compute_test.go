// SPDX-License-Identifier: MPL-2.0

package linkage

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/hslink/hslink/internal/plan"
)

func testPlan(deps ...string) *plan.Loaded {
	loaded := &plan.Loaded{
		ProjectID:  "myproj-0.1.0.0",
		CompilerID: "ghc-9.4.7",
		DistDir:    "/out",
	}
	for _, id := range deps {
		loaded.Dependencies = append(loaded.Dependencies, plan.Entry{Kind: plan.KindPreExisting, ID: id})
	}
	return loaded
}

func TestLibraryName(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{Dynamic, "HSbase-4.17.0.0-ghc9.4.7"},
		{Static, "HSbase-4.17.0.0"},
	}
	for _, tt := range tests {
		if got := LibraryName(tt.mode, "9.4.7", "base-4.17.0.0"); got != tt.want {
			t.Errorf("LibraryName(%s) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}

func TestCompute_Dynamic(t *testing.T) {
	libdir := "/opt/ghc/lib/ghc-9.4.7/lib"
	got, err := Compute(Input{
		Plan:       testPlan("base-4.17.0.0"),
		GHCVersion: "9.4.7",
		LibDir:     libdir,
		Mode:       Dynamic,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	base := filepath.Join(libdir, "base-4.17.0.0")
	build := filepath.Join("/out", "build")
	want := []Directive{
		{Kind: SearchPath, Value: base},
		{Kind: LinkLibrary, Value: "HSbase-4.17.0.0-ghc9.4.7", Mode: Dynamic},
		{Kind: RPath, Value: base},
		{Kind: SearchPath, Value: build},
		{Kind: LinkLibrary, Value: "HSmyproj-0.1.0.0-ghc9.4.7", Mode: Dynamic},
		{Kind: RPath, Value: build},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Compute() =\n%v\nwant\n%v", got, want)
	}
}

func TestCompute_ProjectLastAndDependencyOrder(t *testing.T) {
	deps := []string{"ghc-prim-0.9.0", "ghc-bignum-1.3", "base-4.17.0.0", "text-2.0.2"}
	got, err := Compute(Input{
		Plan:       testPlan(deps...),
		GHCVersion: "9.4.7",
		LibDir:     "/lib",
		Mode:       Dynamic,
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	// Three directives per library.
	if len(got) != 3*(len(deps)+1) {
		t.Fatalf("len(Compute()) = %d, want %d", len(got), 3*(len(deps)+1))
	}

	var libs []string
	for _, d := range got {
		if d.Kind == LinkLibrary {
			libs = append(libs, d.Value)
		}
	}
	want := []string{
		"HSghc-prim-0.9.0-ghc9.4.7",
		"HSghc-bignum-1.3-ghc9.4.7",
		"HSbase-4.17.0.0-ghc9.4.7",
		"HStext-2.0.2-ghc9.4.7",
		"HSmyproj-0.1.0.0-ghc9.4.7",
	}
	if !slices.Equal(libs, want) {
		t.Errorf("link order = %v, want %v", libs, want)
	}
}

func TestCompute_NoDependencies(t *testing.T) {
	got, err := Compute(Input{Plan: testPlan(), GHCVersion: "9.4.7", LibDir: "/lib", Mode: Dynamic})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len(Compute()) = %d, want 3", len(got))
	}
	if got[1].Value != "HSmyproj-0.1.0.0-ghc9.4.7" {
		t.Errorf("project library = %q", got[1].Value)
	}
}

func TestCompute_Static(t *testing.T) {
	env := map[string]string{"FFI_LIB": "/nix/libffi/lib"}
	got, err := Compute(Input{
		Plan:       testPlan("base-4.17.0.0"),
		GHCVersion: "9.4.7",
		LibDir:     "/lib",
		Mode:       Static,
		Support: []SupportLibrary{
			{Name: "gmp", SearchPath: "/nix/gmp/lib"},
			{Name: "ffi", Env: "FFI_LIB"},
			{Name: "iconv", Env: "ICONV_LIB"},
		},
		LookupEnv: func(k string) (string, bool) {
			v, ok := env[k]
			return v, ok
		},
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}

	want := []Directive{
		{Kind: SearchPath, Value: filepath.Join("/lib", "base-4.17.0.0")},
		{Kind: LinkLibrary, Value: "HSbase-4.17.0.0", Mode: Static},
		{Kind: SearchPath, Value: "/nix/gmp/lib"},
		{Kind: LinkLibrary, Value: "gmp", Mode: Static},
		{Kind: SearchPath, Value: "/nix/libffi/lib"},
		{Kind: LinkLibrary, Value: "ffi", Mode: Static},
		{Kind: LinkLibrary, Value: "iconv", Mode: Static},
		{Kind: SearchPath, Value: filepath.Join("/out", "build")},
		{Kind: LinkLibrary, Value: "HSmyproj-0.1.0.0", Mode: Static},
	}
	if !slices.Equal(got, want) {
		t.Errorf("Compute() =\n%v\nwant\n%v", got, want)
	}
	for _, d := range got {
		if d.Kind == RPath {
			t.Errorf("static mode emitted %v", d)
		}
	}
}

func TestCompute_SupportLibrariesIgnoredWhenDynamic(t *testing.T) {
	got, err := Compute(Input{
		Plan:       testPlan(),
		GHCVersion: "9.4.7",
		LibDir:     "/lib",
		Mode:       Dynamic,
		Support:    []SupportLibrary{{Name: "gmp", SearchPath: "/nix/gmp/lib"}},
	})
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	for _, d := range got {
		if d.Value == "gmp" || d.Value == "/nix/gmp/lib" {
			t.Errorf("dynamic mode emitted support library directive %v", d)
		}
	}
}

func TestCompute_InvalidPath(t *testing.T) {
	tests := []struct {
		name   string
		libdir string
		dist   string
	}{
		{name: "empty libdir", libdir: "", dist: "/out"},
		{name: "libdir not utf-8", libdir: "/lib/\xff\xfe", dist: "/out"},
		{name: "libdir with NUL", libdir: "/lib\x00x", dist: "/out"},
		{name: "dist-dir not utf-8", libdir: "/lib", dist: "/out/\xff"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testPlan("base-4.17.0.0")
			p.DistDir = tt.dist
			_, err := Compute(Input{Plan: p, GHCVersion: "9.4.7", LibDir: tt.libdir, Mode: Dynamic})
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("Compute() error = %v, want ErrInvalidPath", err)
			}
		})
	}
}

func TestEmit_StopsAtFirstEmitterError(t *testing.T) {
	boom := errors.New("sink closed")
	sink := &failingEmitter{failAfter: 2, err: boom}
	err := Emit(Input{Plan: testPlan("base-4.17.0.0"), GHCVersion: "9.4.7", LibDir: "/lib", Mode: Dynamic}, sink)
	if !errors.Is(err, boom) {
		t.Fatalf("Emit() error = %v, want %v", err, boom)
	}
	if sink.count != 2 {
		t.Errorf("directives accepted before failure = %d, want 2", sink.count)
	}
}

type failingEmitter struct {
	count     int
	failAfter int
	err       error
}

func (f *failingEmitter) Emit(Directive) error {
	if f.count == f.failAfter {
		return f.err
	}
	f.count++
	return nil
}

func (f *failingEmitter) Flush() error { return nil }

func TestParseMode(t *testing.T) {
	for _, s := range []string{"static", "dynamic"} {
		m, err := ParseMode(s)
		if err != nil || m.String() != s {
			t.Errorf("ParseMode(%q) = %q, %v", s, m, err)
		}
	}
	if _, err := ParseMode("shared"); !errors.Is(err, ErrUnsupportedLinkMode) {
		t.Errorf("ParseMode(shared) error = %v, want ErrUnsupportedLinkMode", err)
	}
}

func TestDirective_String(t *testing.T) {
	tests := []struct {
		d    Directive
		want string
	}{
		{Directive{Kind: SearchPath, Value: "/a"}, "search-path /a"},
		{Directive{Kind: LinkLibrary, Value: "HSx", Mode: Dynamic}, "link-library dynamic:HSx"},
		{Directive{Kind: LinkLibrary, Value: "HSx", Mode: Static}, "link-library static:HSx"},
		{Directive{Kind: RPath, Value: "/a"}, "rpath /a"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
