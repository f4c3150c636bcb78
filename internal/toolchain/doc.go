// SPDX-License-Identifier: MPL-2.0

// Package toolchain runs external toolchain programs and queries the GHC
// compiler for the facts the linkage resolver needs.
//
// Commands are executed synchronously with no standard input. Standard output
// is captured and returned trimmed; standard error is forwarded so that
// diagnostics from the compiler stay visible to the operator.
package toolchain
