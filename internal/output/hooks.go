// SPDX-License-Identifier: MPL-2.0

package output

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/apigen/apigen/internal/config"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// ErrHook is the class of formatter and linter failures.
var ErrHook = errors.New("post-processing hook failed")

var (
	// Scripts receive the output directory as $1.
	formatScripts = map[config.Formatter]string{
		config.FormatterPrettier: `npx prettier --ignore-unknown "$1" --write`,
		config.FormatterBiome:    `npx @biomejs/biome format --write "$1"`,
	}
	lintScripts = map[config.Linter]string{
		config.LinterBiome:  `npx @biomejs/biome lint --apply "$1"`,
		config.LinterESLint: `npx eslint "$1" --fix`,
		config.LinterOxlint: `oxlint --fix "$1"`,
	}
)

type (
	// Hook is a shell script run over the output directory.
	Hook struct {
		Name   string
		Script string
	}

	// HookError reports a failed hook.
	HookError struct {
		Hook     string
		ExitCode int
		Cause    error
	}

	// HookOption configures a HookRunner.
	HookOption func(*HookRunner)

	// HookRunner runs hooks with an in-process shell.
	HookRunner struct {
		dir    string
		env    []string
		stdout io.Writer
		stderr io.Writer
		exec   func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc
		logger *log.Logger
	}
)

func (e *HookError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("hook %s: %v", e.Hook, e.Cause)
	}
	return fmt.Sprintf("hook %s: exit status %d", e.Hook, e.ExitCode)
}

// Unwrap returns ErrHook and the cause.
func (e *HookError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrHook}
	}
	return []error{ErrHook, e.Cause}
}

// Hooks returns the formatter hook followed by the linter hook configured
// in out.
func Hooks(out config.Output) []Hook {
	var hooks []Hook
	if script, ok := formatScripts[out.Format]; ok {
		hooks = append(hooks, Hook{Name: "format:" + string(out.Format), Script: script})
	}
	if script, ok := lintScripts[out.Lint]; ok {
		hooks = append(hooks, Hook{Name: "lint:" + string(out.Lint), Script: script})
	}
	return hooks
}

// WithDir sets the working directory. It defaults to the process's.
func WithDir(dir string) HookOption {
	return func(r *HookRunner) { r.dir = dir }
}

// WithOutput sets where hook output goes. It is discarded by default.
func WithOutput(stdout, stderr io.Writer) HookOption {
	return func(r *HookRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithExecHandler intercepts external commands started by hooks.
func WithExecHandler(h func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc) HookOption {
	return func(r *HookRunner) { r.exec = h }
}

// WithHookLogger sets the logger.
func WithHookLogger(l *log.Logger) HookOption {
	return func(r *HookRunner) { r.logger = l }
}

// NewHookRunner returns a runner inheriting the process environment.
func NewHookRunner(opts ...HookOption) *HookRunner {
	r := &HookRunner{
		env:    os.Environ(),
		stdout: io.Discard,
		stderr: io.Discard,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes hook with target as $1.
func (r *HookRunner) Run(ctx context.Context, hook Hook, target string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(hook.Script), hook.Name)
	if err != nil {
		return &HookError{Hook: hook.Name, Cause: fmt.Errorf("parse script: %w", err)}
	}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(r.env...)),
		interp.StdIO(nil, r.stdout, r.stderr),
		// "--" keeps a target starting with "-" from being read as a shell option.
		interp.Params("--", target),
	}
	if r.dir != "" {
		opts = append(opts, interp.Dir(r.dir))
	}
	if r.exec != nil {
		opts = append(opts, interp.ExecHandlers(r.exec))
	}
	runner, err := interp.New(opts...)
	if err != nil {
		return &HookError{Hook: hook.Name, Cause: fmt.Errorf("create interpreter: %w", err)}
	}

	r.logger.Debug("Running hook", "hook", hook.Name, "target", target)
	if err := runner.Run(ctx, prog); err != nil {
		var status interp.ExitStatus
		if errors.As(err, &status) {
			return &HookError{Hook: hook.Name, ExitCode: int(status)}
		}
		return &HookError{Hook: hook.Name, Cause: err}
	}
	return nil
}

// RunAll runs hooks in order and stops at the first failure.
func (r *HookRunner) RunAll(ctx context.Context, hooks []Hook, target string) error {
	for _, hook := range hooks {
		if err := r.Run(ctx, hook, target); err != nil {
			return err
		}
	}
	return nil
}
