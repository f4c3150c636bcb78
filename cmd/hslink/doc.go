// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the hslink command-line interface.
//
// Every command resolves its project the same way: the optional positional
// argument names the cabal project directory (default "."), configuration is
// loaded for that directory, and failures are reported as actionable errors
// linked to the issue catalog shown by `hslink explain`.
package cmd
