// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// WriteFakeGHC writes an executable shell script named name into dir that
// answers --numeric-version and --print-libdir like GHC does, and exits 1
// for anything else. Tests calling it are skipped on Windows.
func WriteFakeGHC(t testing.TB, dir, name, version, libdir string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("skipping: fake compiler is a POSIX shell script")
	}

	script := fmt.Sprintf(`#!/bin/sh
case "$1" in
  --numeric-version) echo %q ;;
  --print-libdir) echo %q ;;
  *) echo "fake ghc: unsupported flag $1" >&2; exit 1 ;;
esac
`, version, libdir)

	path := filepath.Join(dir, name)
	MustMkdirAll(t, dir)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("failed to write fake compiler %s: %v", path, err)
	}
	return path
}
