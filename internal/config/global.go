// SPDX-License-Identifier: MPL-2.0

package config

// configDirOverride lets tests point ConfigDir at a temporary directory.
var configDirOverride string

// Reset clears test overrides.
func Reset() {
	configDirOverride = ""
}

// SetConfigDirOverride makes ConfigDir return dir.
func SetConfigDirOverride(dir string) {
	configDirOverride = dir
}
