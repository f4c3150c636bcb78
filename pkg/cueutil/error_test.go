// SPDX-License-Identifier: MPL-2.0

package cueutil

import (
	"errors"
	"strings"
	"testing"
)

func TestFormatError(t *testing.T) {
	t.Parallel()

	t.Run("nil error returns nil", func(t *testing.T) {
		t.Parallel()

		if err := FormatError(nil, "plan.json"); err != nil {
			t.Errorf("expected nil, got %v", err)
		}
	})

	t.Run("non-CUE error is wrapped with filepath", func(t *testing.T) {
		t.Parallel()

		original := errors.New("boom")
		err := FormatError(original, "plan.json")
		if err == nil {
			t.Fatal("expected error")
		}
		if !strings.HasPrefix(err.Error(), "plan.json: ") {
			t.Errorf("error should start with filepath, got: %v", err)
		}
		if !errors.Is(err, original) {
			t.Errorf("error should wrap original, got: %v", err)
		}
	})
}

func TestFormatPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     []string
		expected string
	}{
		{name: "empty path", path: nil, expected: ""},
		{name: "single element", path: []string{"compiler-id"}, expected: "compiler-id"},
		{name: "nested path", path: []string{"bindgen", "header"}, expected: "bindgen.header"},
		{name: "array index", path: []string{"install-plan", "3", "id"}, expected: "install-plan[3].id"},
		{name: "nested arrays", path: []string{"install-plan", "0", "depends", "1"}, expected: "install-plan[0].depends[1]"},
		{name: "leading digits stay a field", path: []string{"0", "name"}, expected: "0.name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := formatPath(tt.path); got != tt.expected {
				t.Errorf("formatPath(%v) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestCheckFileSize(t *testing.T) {
	t.Parallel()

	data := []byte(strings.Repeat("x", 100))

	if err := CheckFileSize(data, 100, "plan.json"); err != nil {
		t.Errorf("CheckFileSize at limit: unexpected error %v", err)
	}

	err := CheckFileSize(data, 99, "plan.json")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("CheckFileSize over limit: error = %v, want ErrFileTooLarge", err)
	}
	if !strings.Contains(err.Error(), "plan.json") {
		t.Errorf("error should name the file, got: %v", err)
	}
}
