// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and the catalog of failure
// classes hslink documents with Markdown guidance (rendered with glamour).
package issue
