// SPDX-License-Identifier: MPL-2.0

// Package output writes assembled files to disk and runs the configured
// formatter and linter over them.
package output

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/platform"
)

var (
	// ErrUnsafePath is returned for file paths that would escape the output
	// directory.
	ErrUnsafePath = errors.New("output path escapes the output directory")

	// ErrReservedName is returned for file paths using a Windows device
	// name, which would make the output unusable there.
	ErrReservedName = errors.New("output path uses a reserved file name")
)

// Write stores files under dir and returns the written paths in sorted
// order. With clean set, dir is emptied first. Nothing is touched when any
// path is unsafe or reserved.
func Write(dir string, files map[string]string, clean bool) ([]string, error) {
	names := slices.Sorted(maps.Keys(files))
	for _, name := range names {
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return nil, fmt.Errorf("%w: %q", ErrUnsafePath, name)
		}
		if platform.HasWindowsReservedSegment(name) {
			return nil, fmt.Errorf("%w: %q", ErrReservedName, name)
		}
	}

	if clean {
		if err := cleanDir(dir); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	written := make([]string, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return written, fmt.Errorf("create directory for %s: %w", name, err)
		}
		if err := os.WriteFile(path, []byte(withTrailingNewline(files[name])), 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", name, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// cleanDir removes the contents of dir but keeps dir itself, so editors and
// watchers holding it stay valid.
func cleanDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clean output directory: %w", err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return fmt.Errorf("clean output directory: %w", err)
		}
	}
	return nil
}

func withTrailingNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
