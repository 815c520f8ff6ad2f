// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE data against an embedded schema definition
// and decodes the result, reporting failures with JSON-path style locations
// such as "plugins[1].name".
package cueutil
