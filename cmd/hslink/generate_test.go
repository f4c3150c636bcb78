// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hslink/hslink/internal/linkage"
	"github.com/hslink/hslink/internal/plan"
	"github.com/hslink/hslink/internal/testutil"
)

// syncBuffer is written by the watcher goroutines while the test reads it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestGenerate_WatchNeedsOutput(t *testing.T) {
	p := newProject(t)
	p.withStub(t)

	stdout, stderr, err := p.run(t, "generate", "--watch", p.dir)
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("generate --watch error = %v, want *ExitError", err)
	}
	if !errors.Is(err, errWatchNeedsOutput) {
		t.Errorf("error = %v, want errWatchNeedsOutput", err)
	}
	if !strings.Contains(stdout, "func FibonacciHs(") {
		t.Errorf("the first generation should still run:\n%s", stdout)
	}
	if !strings.Contains(stderr, "--watch needs an output file") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestGenerate_WatchRegenerates(t *testing.T) {
	p := newProject(t)
	header := p.withStub(t)
	out := filepath.Join(t.TempDir(), "haskell.go")

	var stdout, stderr syncBuffer
	root := NewRootCommand(NewApp(Dependencies{
		Config: staticConfig{cfg: p.cfg},
		Runner: p.runner,
		Stdout: &stdout,
		Stderr: &stderr,
	}))
	root.SetArgs([]string{"generate", "--watch", "-o", out, p.dir})
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	waitFor(t, "watch to start", func() bool {
		return strings.Contains(stderr.String(), "watching for changes")
	})
	if !strings.Contains(stderr.String(), plan.Path(linkage.OutputDir(p.dir, p.cfg.DistDir))) {
		t.Errorf("the plan should be watched:\n%s", stderr.String())
	}

	if err := os.Remove(out); err != nil {
		t.Fatal(err)
	}
	testutil.MustWriteFile(t, header, stubHeader+"\n")

	waitFor(t, "regeneration", func() bool {
		_, err := os.Stat(out)
		return err == nil
	})
	waitFor(t, "regeneration log", func() bool {
		return strings.Count(stderr.String(), "wrote bindings") >= 2
	})

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("generate --watch error = %v\n%s", err, stderr.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("generate --watch did not stop after cancellation")
	}

	if src := testutil.MustReadFile(t, out); !strings.Contains(src, "func FibonacciHs(") {
		t.Errorf("regenerated file lacks the binding:\n%s", src)
	}
}

func TestGenerate_WatchWarnsAboutMissingInput(t *testing.T) {
	p := newProject(t)
	header := p.withStub(t)
	out := filepath.Join(t.TempDir(), "haskell.go")

	var stdout, stderr syncBuffer
	root := NewRootCommand(NewApp(Dependencies{
		Config: staticConfig{cfg: p.cfg},
		Runner: p.runner,
		Stdout: &stdout,
		Stderr: &stderr,
	}))
	root.SetArgs([]string{"generate", "--watch", "-o", out, p.dir})
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	waitFor(t, "watch to start", func() bool {
		return strings.Contains(stderr.String(), "watching for changes")
	})
	if err := os.Remove(header); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "missing input warning", func() bool {
		return strings.Contains(stderr.String(), "input is missing")
	})
	if !strings.Contains(stderr.String(), header) {
		t.Errorf("warning does not name the header:\n%s", stderr.String())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("generate --watch error = %v\n%s", err, stderr.String())
		}
	case <-time.After(10 * time.Second):
		t.Fatal("generate --watch did not stop after cancellation")
	}
}
