// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable, user-facing error reporting for the CLI.
//
// An ActionableError names the operation that failed, the resource involved
// (a config file, a spec document, a plugin) and suggestions for fixing it.
// Well-known failures additionally link to a Markdown issue page that the CLI
// renders with glamour in verbose mode.
package issue
