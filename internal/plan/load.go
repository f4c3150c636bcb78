// SPDX-License-Identifier: MPL-2.0

package plan

import (
	_ "embed"
	"os"
	"path/filepath"
	"slices"

	"github.com/hslink/hslink/pkg/cueutil"
)

const (
	// CacheDir is the cache directory under cabal's output directory.
	CacheDir = "cache"
	// FileName is the plan document's file name inside CacheDir.
	FileName = "plan.json"

	// maxPlanSize bounds plan.json; large projects produce a few MB.
	maxPlanSize int64 = 64 * 1024 * 1024
)

//go:embed plan_schema.cue
var planSchema []byte

// Path returns the location of plan.json under cabal's output directory.
func Path(outputDir string) string {
	return filepath.Join(outputDir, CacheDir, FileName)
}

// Load reads the plan under outputDir (usually <project>/dist-newstyle) and
// selects the entries needed for linking.
func Load(outputDir string) (*Loaded, error) {
	path := Path(outputDir)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PlanReadError{Path: path, Err: err}
	}

	p, err := Decode(data, path)
	if err != nil {
		return nil, err
	}

	return p.Select(path)
}

// Decode validates data against the plan schema and decodes it.
// filename only appears in error messages.
func Decode(data []byte, filename string) (*Plan, error) {
	result, err := cueutil.ParseAndDecode[Plan](
		planSchema,
		data,
		"#Plan",
		cueutil.WithFilename(filename),
		cueutil.WithJSONInput(),
		cueutil.WithMaxFileSize(maxPlanSize),
	)
	if err != nil {
		return nil, &PlanParseError{Path: filename, Err: err}
	}
	return result.Value, nil
}

// Select picks the project and its pre-existing dependencies.
//
// The project is the first configured entry. Pre-existing entries become
// dependencies in plan order; everything else (later configured entries and
// kinds this version does not know) is counted in Loaded.Ignored.
// path is used for error messages only.
func (p *Plan) Select(path string) (*Loaded, error) {
	var project *Entry
	loaded := &Loaded{CompilerID: p.CompilerID}

	for i := range p.InstallPlan {
		entry := &p.InstallPlan[i]
		switch {
		case entry.Kind == KindConfigured && project == nil:
			project = entry
		case entry.Kind == KindPreExisting:
			loaded.Dependencies = append(loaded.Dependencies, *entry)
		default:
			loaded.Ignored++
			if !entry.Kind.Known() && !slices.Contains(loaded.UnknownKinds, entry.Kind) {
				loaded.UnknownKinds = append(loaded.UnknownKinds, entry.Kind)
			}
		}
	}

	if project == nil {
		return nil, &MissingConfiguredEntryError{Path: path}
	}
	if !project.HasDistDir() {
		return nil, &MissingConfiguredEntryError{Path: path, ID: project.ID}
	}

	loaded.ProjectID = project.ID
	loaded.DistDir = *project.DistDir
	return loaded, nil
}
