// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"encoding/json"
	"path/filepath"
	"testing"
)

// PlanFixture builds a cabal plan.json document entry by entry.
type PlanFixture struct {
	compilerID string
	entries    []map[string]any
}

// NewPlan starts a plan for the given compiler id.
func NewPlan(compilerID string) *PlanFixture {
	return &PlanFixture{compilerID: compilerID}
}

// Configured appends a configured entry. An empty distDir omits the field.
func (p *PlanFixture) Configured(id, distDir string) *PlanFixture {
	entry := map[string]any{"type": "configured", "id": id, "style": "local"}
	if distDir != "" {
		entry["dist-dir"] = distDir
	}
	p.entries = append(p.entries, entry)
	return p
}

// PreExisting appends a pre-existing entry.
func (p *PlanFixture) PreExisting(id string, depends ...string) *PlanFixture {
	if depends == nil {
		depends = []string{}
	}
	p.entries = append(p.entries, map[string]any{"type": "pre-existing", "id": id, "depends": depends})
	return p
}

// Entry appends an entry of an arbitrary kind.
func (p *PlanFixture) Entry(kind, id string) *PlanFixture {
	p.entries = append(p.entries, map[string]any{"type": kind, "id": id})
	return p
}

// JSON renders the document.
func (p *PlanFixture) JSON(t testing.TB) string {
	t.Helper()
	entries := p.entries
	if entries == nil {
		entries = []map[string]any{}
	}
	doc := map[string]any{
		"cabal-version": "3.10.2.0",
		"compiler-id":   p.compilerID,
		"os":            "linux",
		"arch":          "x86_64",
		"install-plan":  entries,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to encode plan fixture: %v", err)
	}
	return string(data)
}

// Write stores the document at <outputDir>/cache/plan.json and returns the path.
func (p *PlanFixture) Write(t testing.TB, outputDir string) string {
	t.Helper()
	path := filepath.Join(outputDir, "cache", "plan.json")
	MustWriteFile(t, path, p.JSON(t))
	return path
}
