// SPDX-License-Identifier: MPL-2.0

// Package plan loads cabal-install's build plan (dist-newstyle/cache/plan.json)
// and reduces it to the facts needed for linking: the project being built,
// where its build output lives, and which pre-built packages it depends on.
package plan
