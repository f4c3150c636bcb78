// SPDX-License-Identifier: MPL-2.0

package plan

const (
	// KindConfigured marks the local package being built.
	KindConfigured EntryKind = "configured"
	// KindPreExisting marks a package already installed in the compiler's
	// global package database.
	KindPreExisting EntryKind = "pre-existing"
)

type (
	// EntryKind is the "type" field of an install-plan entry. Values other
	// than the two constants are preserved as-is and never rejected.
	EntryKind string

	// Entry is one unit of the install plan.
	Entry struct {
		Kind          EntryKind `json:"type"`
		ID            string    `json:"id"`
		PkgName       string    `json:"pkg-name,omitempty"`
		PkgVersion    string    `json:"pkg-version,omitempty"`
		Style         string    `json:"style,omitempty"`
		ComponentName string    `json:"component-name,omitempty"`
		DistDir       *string   `json:"dist-dir,omitempty"`
		Depends       []string  `json:"depends,omitempty"`
	}

	// Plan is the decoded plan document.
	Plan struct {
		CabalVersion string  `json:"cabal-version,omitempty"`
		CompilerID   string  `json:"compiler-id"`
		OS           string  `json:"os,omitempty"`
		Arch         string  `json:"arch,omitempty"`
		InstallPlan  []Entry `json:"install-plan"`
	}

	// Loaded is the read-only view of a plan used for linking.
	Loaded struct {
		// ProjectID is the id of the configured entry.
		ProjectID string
		// CompilerID is the plan's compiler-id, verbatim.
		CompilerID string
		// DistDir is the configured entry's build output root.
		DistDir string
		// Dependencies are the pre-existing entries in plan order.
		Dependencies []Entry
		// Ignored counts entries that are neither the project nor a
		// pre-existing dependency.
		Ignored int
		// UnknownKinds lists, once each and in plan order, the entry kinds
		// that are neither configured nor pre-existing.
		UnknownKinds []EntryKind
	}
)

// Known reports whether k is one of the kinds the loader acts on.
func (k EntryKind) Known() bool {
	return k == KindConfigured || k == KindPreExisting
}

// String returns the kind as written in plan.json.
func (k EntryKind) String() string { return string(k) }

// HasDistDir reports whether the entry carries a non-empty dist-dir.
func (e Entry) HasDistDir() bool {
	return e.DistDir != nil && *e.DistDir != ""
}
