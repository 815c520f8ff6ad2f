// SPDX-License-Identifier: MPL-2.0

// Package platform provides cross-platform file naming rules.
package platform

import "strings"

// windowsReservedNames are device names Windows refuses as file names,
// whatever the extension.
var windowsReservedNames = map[string]bool{
	"CON": true, "PRN": true, "AUX": true, "NUL": true,
	"COM1": true, "COM2": true, "COM3": true, "COM4": true,
	"COM5": true, "COM6": true, "COM7": true, "COM8": true, "COM9": true,
	"LPT1": true, "LPT2": true, "LPT3": true, "LPT4": true,
	"LPT5": true, "LPT6": true, "LPT7": true, "LPT8": true, "LPT9": true,
}

// IsWindowsReservedName reports whether name, ignoring case and everything
// from its first dot, is a Windows device name ("con.ts", "Aux.gen.ts").
func IsWindowsReservedName(name string) bool {
	base, _, _ := strings.Cut(name, ".")
	return windowsReservedNames[strings.ToUpper(strings.TrimSpace(base))]
}

// HasWindowsReservedSegment reports whether any segment of the
// slash-separated path is a Windows device name.
func HasWindowsReservedSegment(path string) bool {
	for segment := range strings.SplitSeq(path, "/") {
		if IsWindowsReservedName(segment) {
			return true
		}
	}
	return false
}
