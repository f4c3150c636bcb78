// SPDX-License-Identifier: MPL-2.0

// Package linkage computes the linker directives needed to link a Go program
// against a cabal project's GHC-built library and its pre-built dependencies.
//
// Directives are produced in a fixed order: every dependency (plan order),
// then platform support libraries (static mode only), then the project's own
// library. The project library must follow its dependencies on the link line.
//
// Resolve currently rejects static mode: the support libraries a static GHC
// runtime pulls in (gmp, libffi, iconv) have no discovery mechanism yet. The
// naming and ordering rules for static mode are still implemented by Compute.
package linkage
