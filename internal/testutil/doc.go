// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for hslink tests that fail the test on
// setup errors instead of returning them.
//
// Besides filesystem and environment helpers (MustWriteFile, MustSetenv,
// MustChdir) it builds cabal project fixtures (PlanFixture) and fake GHC
// executables (WriteFakeGHC) so that resolver tests run without a real
// toolchain.
package testutil
