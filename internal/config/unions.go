// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"maps"
	"time"

	"github.com/apigen/apigen/internal/diagnostic"
	"github.com/apigen/apigen/internal/spec"
)

// Diagnostic codes produced while normalizing.
const (
	CodeDeprecatedUseOptions = "deprecated_use_options"
	CodeWatchUnsupported     = "watch_unsupported_input"
	CodePluginWithoutName    = "plugin_entry_without_name"
)

// ErrUnionShape is returned when a polymorphic field holds a value of none
// of its accepted shapes.
var ErrUnionShape = errors.New("unsupported value shape")

type (
	// UserConfig is the configuration as written by the user. Fields typed
	// any accept several shapes and are resolved by Normalize:
	//
	//	client:  string | {name, bundle}
	//	input:   string | {path} | inline spec object
	//	logs:    string (directory) | {level, path}
	//	output:  string | {path, clean, format, lint}
	//	watch:   bool | int (interval in ms) | {enabled, interval, timeout}
	//	plugins: [...(string | {name, ...options})]
	UserConfig struct {
		Name               string `mapstructure:"name"`
		Base               string `mapstructure:"base"`
		Client             any    `mapstructure:"client"`
		Input              any    `mapstructure:"input"`
		Output             any    `mapstructure:"output"`
		Logs               any    `mapstructure:"logs"`
		Watch              any    `mapstructure:"watch"`
		Plugins            []any  `mapstructure:"plugins"`
		DryRun             bool   `mapstructure:"dry_run"`
		ExperimentalParser *bool  `mapstructure:"experimental_parser"`
		ExportCore         *bool  `mapstructure:"export_core"`
		UseOptions         *bool  `mapstructure:"use_options"`
		ConfigFile         string `mapstructure:"-"`
	}

	// UnionShapeError is returned when a polymorphic field has an
	// unsupported shape. It wraps ErrUnionShape and ErrConfiguration.
	UnionShapeError struct {
		Field string
		Value any
	}
)

func (e *UnionShapeError) Error() string {
	return fmt.Sprintf("%s: unsupported value %v (%T)", e.Field, e.Value, e.Value)
}

// Unwrap returns ErrUnionShape and ErrConfiguration.
func (e *UnionShapeError) Unwrap() []error { return []error{ErrUnionShape, ErrConfiguration} }

// unionPrimaryKey names the object field a plain string override targets.
var unionPrimaryKey = map[string]string{
	"client": "name",
	"input":  "path",
	"logs":   "path",
	"output": "path",
}

// Apply merges explicit overrides (typically command-line flags) into u.
// A string override of a union field that currently holds an object only
// replaces the object's primary field, so {path, clean: false} overridden
// with "./out" keeps clean: false.
func (u *UserConfig) Apply(overrides map[string]any) error {
	for key, value := range overrides {
		switch key {
		case "client":
			u.Client = mergeUnion(key, u.Client, value)
		case "input":
			u.Input = mergeUnion(key, u.Input, value)
		case "logs":
			u.Logs = mergeUnion(key, u.Logs, value)
		case "output":
			u.Output = mergeUnion(key, u.Output, value)
		case "watch":
			u.Watch = value
		case "plugins":
			names, ok := value.([]string)
			if !ok {
				return &UnionShapeError{Field: key, Value: value}
			}
			u.Plugins = make([]any, len(names))
			for i, n := range names {
				u.Plugins[i] = n
			}
		case "dry_run", "experimental_parser":
			b, ok := value.(bool)
			if !ok {
				return &UnionShapeError{Field: key, Value: value}
			}
			if key == "dry_run" {
				u.DryRun = b
			} else {
				u.ExperimentalParser = &b
			}
		default:
			return fmt.Errorf("%w: unknown override %q", ErrConfiguration, key)
		}
	}
	return nil
}

func mergeUnion(field string, current, override any) any {
	s, isString := override.(string)
	obj, isObject := current.(map[string]any)
	if !isString || !isObject {
		return override
	}
	// An inline document has no primary field to replace.
	if _, ok := obj[unionPrimaryKey[field]]; !ok && field == "input" {
		return override
	}
	merged := maps.Clone(obj)
	merged[unionPrimaryKey[field]] = s
	return merged
}

// Normalize resolves every polymorphic field, applies defaults and validates
// the result. Non-fatal findings are returned as diagnostics.
func Normalize(u UserConfig) (*Config, diagnostic.List, error) {
	var diags diagnostic.List
	cfg := DefaultConfig()
	cfg.Name = u.Name
	cfg.Base = u.Base
	cfg.DryRun = u.DryRun
	cfg.ConfigFile = u.ConfigFile

	var err error
	if cfg.Logs, err = normalizeLogs(u.Logs, cfg.Logs); err != nil {
		return nil, nil, err
	}
	if cfg.Input, err = normalizeInput(u.Input); err != nil {
		return nil, nil, err
	}
	if cfg.Output, err = normalizeOutput(u.Output, cfg.Output); err != nil {
		return nil, nil, err
	}
	if cfg.Client, err = normalizeClient(u.Client); err != nil {
		return nil, nil, err
	}
	if u.Plugins != nil {
		if cfg.Plugins, err = normalizePlugins(u.Plugins, &diags); err != nil {
			return nil, nil, err
		}
	}

	if valid, errs := cfg.IsValid(); !valid {
		return nil, nil, errs[0]
	}

	if u.ExperimentalParser != nil {
		cfg.ExperimentalParser = *u.ExperimentalParser
	}
	if u.UseOptions != nil {
		cfg.UseOptions = *u.UseOptions
	}
	if !cfg.UseOptions {
		diags.Add(diagnostic.New(diagnostic.SeverityWarning, CodeDeprecatedUseOptions, "use_options",
			"use_options set to false is deprecated and will be removed; migrate to use_options: true"))
	}

	// Only the legacy generator emits core files.
	exportCore := true
	if u.ExportCore != nil {
		exportCore = *u.ExportCore
	}
	cfg.ExportCore = cfg.IsLegacyClient() && exportCore

	if cfg.Watch, err = normalizeWatch(u.Watch, cfg.Input, cfg.Watch, &diags); err != nil {
		return nil, nil, err
	}

	return cfg, diags, nil
}

func normalizeClient(v any) (Client, error) {
	switch t := v.(type) {
	case nil:
		return Client{}, nil
	case string:
		return Client{Name: ClientName(t)}, nil
	case map[string]any:
		var c Client
		if name, ok := t["name"].(string); ok {
			c.Name = ClientName(name)
		}
		if bundle, ok := t["bundle"].(bool); ok {
			c.Bundle = bundle
		}
		return c, nil
	default:
		return Client{}, &UnionShapeError{Field: "client", Value: v}
	}
}

func normalizeInput(v any) (Input, error) {
	switch t := v.(type) {
	case nil:
		return Input{}, nil
	case string:
		return Input{Path: t}, nil
	case map[string]any:
		if path, ok := t["path"].(string); ok && path != "" {
			return Input{Path: path}, nil
		}
		if len(t) == 0 {
			return Input{}, nil
		}
		// Any other object is the document itself.
		return Input{Spec: maps.Clone(t)}, nil
	default:
		return Input{}, &UnionShapeError{Field: "input", Value: v}
	}
}

func normalizeLogs(v any, logs Logs) (Logs, error) {
	switch t := v.(type) {
	case nil:
	case string:
		logs.Path = t
	case map[string]any:
		if level, ok := t["level"].(string); ok {
			logs.Level = LogLevel(level)
		}
		if path, ok := t["path"].(string); ok {
			logs.Path = path
		}
	default:
		return logs, &UnionShapeError{Field: "logs", Value: v}
	}
	return logs, nil
}

func normalizeOutput(v any, out Output) (Output, error) {
	switch t := v.(type) {
	case nil:
	case string:
		out.Path = t
	case map[string]any:
		if path, ok := t["path"].(string); ok {
			out.Path = path
		}
		if clean, ok := t["clean"].(bool); ok {
			out.Clean = clean
		}
		// format and lint accept false as "disabled".
		if format, ok := t["format"].(string); ok {
			out.Format = Formatter(format)
		}
		if lint, ok := t["lint"].(string); ok {
			out.Lint = Linter(lint)
		}
	default:
		return out, &UnionShapeError{Field: "output", Value: v}
	}
	return out, nil
}

func normalizePlugins(entries []any, diags *diagnostic.List) ([]PluginEntry, error) {
	plugins := make([]PluginEntry, 0, len(entries))
	for i, entry := range entries {
		switch t := entry.(type) {
		case string:
			if t == "" {
				continue
			}
			plugins = append(plugins, PluginEntry{Name: t})
		case map[string]any:
			name, _ := t["name"].(string)
			if name == "" {
				diags.Add(diagnostic.New(diagnostic.SeverityWarning, CodePluginWithoutName,
					fmt.Sprintf("plugins[%d]", i), "plugin entry has no name and was ignored"))
				continue
			}
			opts := maps.Clone(t)
			delete(opts, "name")
			if len(opts) == 0 {
				opts = nil
			}
			plugins = append(plugins, PluginEntry{Name: name, Options: opts})
		default:
			return nil, &UnionShapeError{Field: fmt.Sprintf("plugins[%d]", i), Value: entry}
		}
	}
	return plugins, nil
}

func normalizeWatch(v any, input Input, watch Watch, diags *diagnostic.List) (Watch, error) {
	switch t := v.(type) {
	case nil:
	case bool:
		watch.Enabled = t
	case map[string]any:
		if enabled, ok := t["enabled"].(bool); ok {
			watch.Enabled = enabled
		}
		if ms, ok := toInt(t["interval"]); ok {
			watch.Interval = time.Duration(ms) * time.Millisecond
		}
		if ms, ok := toInt(t["timeout"]); ok {
			watch.Timeout = time.Duration(ms) * time.Millisecond
		}
	default:
		ms, ok := toInt(v)
		if !ok {
			return watch, &UnionShapeError{Field: "watch", Value: v}
		}
		watch.Enabled = true
		watch.Interval = time.Duration(ms) * time.Millisecond
	}

	if watch.Interval <= 0 {
		watch.Interval = DefaultWatchInterval
	}

	if watch.Enabled && (input.Spec != nil || spec.IsRemote(input.Path)) {
		watch.Enabled = false
		diags.Add(diagnostic.New(diagnostic.SeverityWarning, CodeWatchUnsupported, "watch",
			"watch mode needs a local input file; %s inputs are generated once", inputKind(input)))
	}
	return watch, nil
}

func inputKind(input Input) string {
	if input.Spec != nil {
		return "inline"
	}
	return "remote"
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}
