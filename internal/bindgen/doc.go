// SPDX-License-Identifier: MPL-2.0

// Package bindgen turns the C header GHC writes for `foreign export`
// declarations (Safe_stub.h and friends) into a Go binding surface.
//
// The header is run through the system C preprocessor, so includes and
// macros are resolved exactly as a C compiler would. The preprocessed
// translation unit is then scanned for typedefs and function prototypes.
// Linemarkers in the preprocessor output record which file every
// declaration came from. Declarations from system headers are dropped
// unless Generator.IncludeSystem is set, and declarations whose name
// matches the blocklist (by default the GHC runtime's own hs_* API) are
// always dropped.
//
// The resulting DeclarationSet can be written as JSON, TOML, or as a cgo
// source file whose wrappers only call into Haskell through an
// *hsrt.Runtime.
package bindgen
