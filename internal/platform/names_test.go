// SPDX-License-Identifier: MPL-2.0

package platform

import "testing"

func TestIsWindowsReservedName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want bool
	}{
		{"con", true},
		{"CON.ts", true},
		{"aux.gen.ts", true},
		{"Com1.d.ts", true},
		{"lpt9", true},
		{"console.ts", false},
		{"com10.ts", false},
		{"types.gen.ts", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsWindowsReservedName(tt.name); got != tt.want {
			t.Errorf("IsWindowsReservedName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestHasWindowsReservedSegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want bool
	}{
		{"client/index.ts", false},
		{"nul/index.ts", true},
		{"@tanstack/react-query.gen.ts", false},
		{"schemas/prn.gen.ts", true},
	}
	for _, tt := range tests {
		if got := HasWindowsReservedSegment(tt.path); got != tt.want {
			t.Errorf("HasWindowsReservedSegment(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
