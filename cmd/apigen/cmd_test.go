// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/diagnostic"
	"github.com/apigen/apigen/internal/output"
	"github.com/apigen/apigen/internal/testutil"

	"mvdan.cc/sh/v3/interp"
)

const petstore = `{
  "openapi": "3.0.3",
  "info": {"title": "Petstore", "version": "1.0.0"},
  "servers": [{"url": "https://api.example.com"}],
  "paths": {
    "/pets": {
      "get": {
        "operationId": "listPets",
        "summary": "List all pets",
        "responses": {
          "200": {
            "description": "ok",
            "content": {"application/json": {"schema": {"type": "array", "items": {"$ref": "#/components/schemas/Pet"}}}}
          }
        }
      }
    }
  },
  "components": {
    "schemas": {
      "Pet": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer", "format": "int64"},
          "name": {"type": "string"}
        }
      }
    }
  }
}`

// project lays out a spec and a config file in a temp dir and returns the
// config path and the output directory it targets.
func project(t *testing.T, extra string) (configPath, outDir string) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "openapi.json")
	outDir = filepath.Join(dir, "src", "client")
	testutil.MustWriteFile(t, input, petstore)

	configPath = filepath.Join(dir, config.LocalConfigFileName)
	testutil.MustWriteFile(t, configPath, fmt.Sprintf("input: %q\nlogs: {level: \"silent\"}\n%s\n", input, extra))
	return configPath, outDir
}

func run(t *testing.T, deps Dependencies, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	deps.Stdout = &outBuf
	deps.Stderr = &errBuf
	app, err := NewApp(deps)
	if err != nil {
		t.Fatalf("NewApp() error: %v", err)
	}
	rootCmd := NewRootCommand(app)
	rootCmd.SetArgs(args)
	err = rootCmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}

// recordingProvider captures LoadOptions and fails the load.
type recordingProvider struct {
	opts config.LoadOptions
}

func (p *recordingProvider) Load(_ context.Context, opts config.LoadOptions) (*config.Config, diagnostic.List, error) {
	p.opts = opts
	return nil, nil, &config.MissingInputError{}
}

func TestGenerateWritesFiles(t *testing.T) {
	t.Parallel()

	configPath, outDir := project(t, "")
	stdout, stderr, err := run(t, Dependencies{}, "generate", "--config", configPath, "-o", outDir)
	if err != nil {
		t.Fatalf("generate error: %v\nstderr: %s", err, stderr)
	}
	if !strings.Contains(stdout, "Generated 3 file(s)") {
		t.Errorf("stdout = %q", stdout)
	}

	for _, name := range []string{"index.ts", "types.gen.ts", "sdk.gen.ts"} {
		if _, statErr := os.Stat(filepath.Join(outDir, name)); statErr != nil {
			t.Errorf("%s not written: %v", name, statErr)
		}
	}
	types := testutil.MustReadFile(t, filepath.Join(outDir, "types.gen.ts"))
	if !strings.Contains(types, "export interface Pet") {
		t.Errorf("types.gen.ts missing Pet:\n%s", types)
	}
	sdk := testutil.MustReadFile(t, filepath.Join(outDir, "sdk.gen.ts"))
	if !strings.Contains(sdk, "export const listPets") {
		t.Errorf("sdk.gen.ts missing listPets:\n%s", sdk)
	}
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	t.Parallel()

	configPath, outDir := project(t, "")
	stdout, stderr, err := run(t, Dependencies{}, "generate", "--config", configPath, "-o", outDir, "--dry-run")
	if err != nil {
		t.Fatalf("generate error: %v\nstderr: %s", err, stderr)
	}
	if stdout != "" {
		t.Errorf("dry run printed %q, want nothing", stdout)
	}
	if _, statErr := os.Stat(outDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Errorf("dry run created %s (stat err %v)", outDir, statErr)
	}
}

func TestGenerateFlagOverrides(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{}
	_, _, err := run(t, Dependencies{Config: provider},
		"generate", "--config", "custom.cue",
		"-i", "openapi.yaml", "-o", "out", "-c", "@hey-api/client-axios",
		"-p", "@hey-api/typescript", "-p", "zod", "--dry-run")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected ExitError{Code: 1}, got %v", err)
	}
	if provider.opts.ConfigFilePath != "custom.cue" {
		t.Errorf("ConfigFilePath = %q", provider.opts.ConfigFilePath)
	}
	want := map[string]any{
		"input":   "openapi.yaml",
		"output":  "out",
		"client":  "@hey-api/client-axios",
		"plugins": []string{"@hey-api/typescript", "zod"},
		"dry_run": true,
	}
	if len(provider.opts.Overrides) != len(want) {
		t.Fatalf("Overrides = %v", provider.opts.Overrides)
	}
	for key, value := range want {
		got := provider.opts.Overrides[key]
		if names, ok := value.([]string); ok {
			if gotNames, _ := got.([]string); !slices.Equal(gotNames, names) {
				t.Errorf("%s = %v, want %v", key, got, value)
			}
			continue
		}
		if got != value {
			t.Errorf("%s = %v, want %v", key, got, value)
		}
	}
}

func TestGenerateUnsetFlagsAreNotOverrides(t *testing.T) {
	t.Parallel()

	provider := &recordingProvider{}
	if _, _, err := run(t, Dependencies{Config: provider}, "generate"); err == nil {
		t.Fatal("expected the failing provider to surface an error")
	}
	if len(provider.opts.Overrides) != 0 {
		t.Errorf("Overrides = %v, want none", provider.opts.Overrides)
	}
}

func TestGenerateUnknownPlugin(t *testing.T) {
	t.Parallel()

	configPath, outDir := project(t, "")
	_, stderr, err := run(t, Dependencies{}, "generate", "--config", configPath, "-o", outDir, "-p", "nope")

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %v", err)
	}
	if !strings.Contains(stderr, "nope") || !strings.Contains(stderr, "apigen plugins list") {
		t.Errorf("stderr should name the plugin and suggest 'plugins list':\n%s", stderr)
	}
	if _, statErr := os.Stat(outDir); !errors.Is(statErr, os.ErrNotExist) {
		t.Error("failed run must not write output")
	}
}

func TestGenerateMissingOutput(t *testing.T) {
	t.Parallel()

	configPath, _ := project(t, "")
	_, stderr, err := run(t, Dependencies{}, "generate", "--config", configPath)
	if err == nil {
		t.Fatal("expected an error without an output path")
	}
	if !strings.Contains(stderr, "--output") {
		t.Errorf("stderr should suggest --output:\n%s", stderr)
	}
}

func TestGenerateRunsHooks(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls [][]string
	)
	record := func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc {
		return func(_ context.Context, args []string) error {
			mu.Lock()
			calls = append(calls, slices.Clone(args))
			mu.Unlock()
			return nil
		}
	}

	dir := t.TempDir()
	outDir := filepath.Join(dir, "client")
	configPath, _ := project(t, fmt.Sprintf("output: {path: %q, format: \"prettier\", lint: \"eslint\"}", outDir))

	_, stderr, err := run(t, Dependencies{HookOptions: []output.HookOption{output.WithExecHandler(record)}},
		"generate", "--config", configPath)
	if err != nil {
		t.Fatalf("generate error: %v\nstderr: %s", err, stderr)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("hook calls = %v, want format and lint", calls)
	}
	if !slices.Contains(calls[0], "prettier") || !slices.Contains(calls[0], outDir) {
		t.Errorf("format call = %v", calls[0])
	}
	if !slices.Contains(calls[1], "eslint") || !slices.Contains(calls[1], "--fix") {
		t.Errorf("lint call = %v", calls[1])
	}
}

func TestPluginsList(t *testing.T) {
	t.Parallel()

	stdout, _, err := run(t, Dependencies{}, "plugins", "list")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"@hey-api/typescript", "@hey-api/sdk", "@hey-api/transformers", "zod", "@tanstack/react-query", "throwOnError"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("plugins list missing %q", want)
		}
	}
}

func TestPluginsOrder(t *testing.T) {
	t.Parallel()

	stdout, stderr, err := run(t, Dependencies{}, "plugins", "order", "-p", "@tanstack/react-query")
	if err != nil {
		t.Fatalf("plugins order error: %v\nstderr: %s", err, stderr)
	}
	ts := strings.Index(stdout, "1. @hey-api/typescript")
	sdk := strings.Index(stdout, "2. @hey-api/sdk")
	query := strings.Index(stdout, "3. @tanstack/react-query")
	if ts < 0 || sdk < 0 || query < 0 {
		t.Fatalf("unexpected order output:\n%s", stdout)
	}
	if !strings.Contains(stdout, "0: @hey-api/typescript") {
		t.Errorf("levels missing:\n%s", stdout)
	}
}

func TestPluginsOrderUnknown(t *testing.T) {
	t.Parallel()

	_, stderr, err := run(t, Dependencies{}, "plugins", "order", "-p", "missing")
	if err == nil {
		t.Fatal("expected an error for an unknown plugin")
	}
	if !strings.Contains(stderr, "missing") {
		t.Errorf("stderr = %q", stderr)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	configPath, outDir := project(t, "")
	testutil.MustWriteFile(t, configPath, testutil.MustReadFile(t, configPath)+fmt.Sprintf("output: %q\n", outDir))

	tests := []struct {
		format string
		want   string
	}{
		{"cue", "output:"},
		{"yaml", "output:"},
		{"toml", "[output]"},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			t.Parallel()
			stdout, stderr, err := run(t, Dependencies{}, "config", "show", "--config", configPath, "--format", tt.format)
			if err != nil {
				t.Fatalf("config show error: %v\nstderr: %s", err, stderr)
			}
			if !strings.Contains(stdout, tt.want) || !strings.Contains(stdout, "openapi.json") {
				t.Errorf("%s output:\n%s", tt.format, stdout)
			}
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		_, stderr, err := run(t, Dependencies{}, "config", "show", "--config", configPath, "--format", "ini")
		if err == nil {
			t.Fatal("expected an error for an unknown format")
		}
		if !strings.Contains(stderr, "ini") {
			t.Errorf("stderr = %q", stderr)
		}
	})
}

func TestConfigPath(t *testing.T) {
	t.Parallel()

	configPath, _ := project(t, "")
	stdout, _, err := run(t, Dependencies{}, "config", "path", "--config", configPath)
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != configPath {
		t.Errorf("config path = %q, want %q", stdout, configPath)
	}

	if _, _, err := run(t, Dependencies{}, "config", "path", "--config", filepath.Join(t.TempDir(), "none.cue")); err == nil {
		t.Error("expected an error for a missing --config file")
	}
}

func TestInit(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stdout, _, err := run(t, Dependencies{}, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "Created") {
		t.Errorf("stdout = %q", stdout)
	}
	content := testutil.MustReadFile(t, filepath.Join(dir, config.LocalConfigFileName))
	if !strings.Contains(content, "openapi.yaml") {
		t.Errorf("starter config:\n%s", content)
	}

	stdout, _, err = run(t, Dependencies{}, "init", dir)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, "already exists") {
		t.Errorf("second init stdout = %q", stdout)
	}
}
