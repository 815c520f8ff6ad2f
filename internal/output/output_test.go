// SPDX-License-Identifier: MPL-2.0

package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/testutil"

	"mvdan.cc/sh/v3/interp"
)

func TestWrite(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "client")
	testutil.MustWriteFile(t, filepath.Join(dir, "stale.gen.ts"), "old")

	files := map[string]string{
		"index.ts":                     "export * from './types.gen';",
		"types.gen.ts":                 "export type Id = string;\n",
		"@tanstack/react-query.gen.ts": "q",
	}
	written, err := Write(dir, files, true)
	if err != nil {
		t.Fatalf("Write() error: %v", err)
	}
	want := []string{
		filepath.Join(dir, "@tanstack", "react-query.gen.ts"),
		filepath.Join(dir, "index.ts"),
		filepath.Join(dir, "types.gen.ts"),
	}
	if !slices.Equal(written, want) {
		t.Errorf("written = %v, want %v", written, want)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "index.ts")); got != "export * from './types.gen';\n" {
		t.Errorf("index.ts = %q", got)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "types.gen.ts")); got != "export type Id = string;\n" {
		t.Errorf("types.gen.ts = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dir, "stale.gen.ts")); !os.IsNotExist(err) {
		t.Error("clean should remove stale files")
	}
}

func TestWrite_NoClean(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "keep.ts"), "keep")
	if _, err := Write(dir, map[string]string{"index.ts": ""}, false); err != nil {
		t.Fatal(err)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "keep.ts")); got != "keep" {
		t.Errorf("keep.ts = %q", got)
	}
	if got := testutil.MustReadFile(t, filepath.Join(dir, "index.ts")); got != "" {
		t.Errorf("empty file written as %q", got)
	}
}

func TestWrite_UnsafePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	testutil.MustWriteFile(t, filepath.Join(dir, "keep.ts"), "keep")
	for _, name := range []string{"../escape.ts", "/abs.ts"} {
		_, err := Write(dir, map[string]string{name: "x", "ok.ts": "x"}, true)
		if !errors.Is(err, ErrUnsafePath) {
			t.Errorf("Write(%q) error = %v, want ErrUnsafePath", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "keep.ts")); err != nil {
		t.Error("a rejected write must not clean the directory")
	}
}

func TestWrite_ReservedName(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Write(dir, map[string]string{"nul.gen.ts": "x"}, false)
	if !errors.Is(err, ErrReservedName) {
		t.Fatalf("Write() error = %v, want ErrReservedName", err)
	}
	entries, readErr := os.ReadDir(dir)
	if readErr != nil || len(entries) != 0 {
		t.Errorf("rejected write left files behind: %v", entries)
	}
}

func TestHooks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		out  config.Output
		want []string
	}{
		{"none", config.Output{}, nil},
		{"prettier", config.Output{Format: config.FormatterPrettier}, []string{"format:prettier"}},
		{"biome both", config.Output{Format: config.FormatterBiome, Lint: config.LinterBiome}, []string{"format:biome", "lint:biome"}},
		{"eslint", config.Output{Lint: config.LinterESLint}, []string{"lint:eslint"}},
		{"oxlint", config.Output{Lint: config.LinterOxlint}, []string{"lint:oxlint"}},
	}
	for _, tt := range tests {
		var names []string
		for _, h := range Hooks(tt.out) {
			names = append(names, h.Name)
		}
		if !slices.Equal(names, tt.want) {
			t.Errorf("%s: Hooks() = %v, want %v", tt.name, names, tt.want)
		}
	}
}

// recordExec captures external commands instead of running them.
type recordExec struct {
	mu    sync.Mutex
	calls [][]string
	fail  bool
}

func (r *recordExec) handler(interp.ExecHandlerFunc) interp.ExecHandlerFunc {
	return func(_ context.Context, args []string) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, args)
		if r.fail {
			return interp.ExitStatus(2)
		}
		return nil
	}
}

func TestHookRunner(t *testing.T) {
	t.Parallel()

	rec := &recordExec{}
	runner := NewHookRunner(WithExecHandler(rec.handler))
	hooks := Hooks(config.Output{Format: config.FormatterPrettier, Lint: config.LinterOxlint})
	target := "-src/client dir"

	if err := runner.RunAll(context.Background(), hooks, target); err != nil {
		t.Fatalf("RunAll() error: %v", err)
	}
	want := [][]string{
		{"npx", "prettier", "--ignore-unknown", target, "--write"},
		{"oxlint", "--fix", target},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("calls = %v", rec.calls)
	}
	for i := range want {
		if !slices.Equal(rec.calls[i], want[i]) {
			t.Errorf("call %d = %q, want %q", i, rec.calls[i], want[i])
		}
	}
}

func TestHookRunner_Failures(t *testing.T) {
	t.Parallel()

	t.Run("exit status", func(t *testing.T) {
		t.Parallel()
		rec := &recordExec{fail: true}
		runner := NewHookRunner(WithExecHandler(rec.handler))
		hooks := Hooks(config.Output{Format: config.FormatterBiome, Lint: config.LinterBiome})
		err := runner.RunAll(context.Background(), hooks, "out")

		var hookErr *HookError
		if !errors.As(err, &hookErr) || hookErr.Hook != "format:biome" || hookErr.ExitCode != 2 {
			t.Fatalf("expected format:biome failure with status 2, got %v", err)
		}
		if !errors.Is(err, ErrHook) {
			t.Error("error should match ErrHook")
		}
		if len(rec.calls) != 1 {
			t.Errorf("lint must not run after a failed format: %v", rec.calls)
		}
	})

	t.Run("script exit", func(t *testing.T) {
		t.Parallel()
		err := NewHookRunner().Run(context.Background(), Hook{Name: "custom", Script: "exit 3"}, "out")
		var hookErr *HookError
		if !errors.As(err, &hookErr) || hookErr.ExitCode != 3 {
			t.Fatalf("expected exit status 3, got %v", err)
		}
	})

	t.Run("parse error", func(t *testing.T) {
		t.Parallel()
		err := NewHookRunner().Run(context.Background(), Hook{Name: "broken", Script: "if then"}, "out")
		var hookErr *HookError
		if !errors.As(err, &hookErr) || hookErr.Cause == nil {
			t.Fatalf("expected parse failure, got %v", err)
		}
	})
}
