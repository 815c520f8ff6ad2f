// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Document returns the config in the file's shape, with every union in its
// object form. It is the source for the TOML and YAML renderers.
func (c *Config) Document() map[string]any {
	doc := map[string]any{
		"output": map[string]any{
			"path":  c.Output.Path,
			"clean": c.Output.Clean,
		},
		"logs": map[string]any{
			"level": string(c.Logs.Level),
		},
		"watch": map[string]any{
			"enabled":  c.Watch.Enabled,
			"interval": c.Watch.Interval.Milliseconds(),
		},
		"dry_run":             c.DryRun,
		"experimental_parser": c.ExperimentalParser,
		"export_core":         c.ExportCore,
		"use_options":         c.UseOptions,
	}

	if c.Name != "" {
		doc["name"] = c.Name
	}
	if c.Base != "" {
		doc["base"] = c.Base
	}
	if c.Client.Name != "" {
		doc["client"] = map[string]any{"name": string(c.Client.Name), "bundle": c.Client.Bundle}
	}
	switch {
	case c.Input.Path != "":
		doc["input"] = map[string]any{"path": c.Input.Path}
	case c.Input.Spec != nil:
		doc["input"] = maps.Clone(c.Input.Spec)
	}

	output := doc["output"].(map[string]any)
	if c.Output.Format != "" {
		output["format"] = string(c.Output.Format)
	}
	if c.Output.Lint != "" {
		output["lint"] = string(c.Output.Lint)
	}
	if c.Logs.Path != "" {
		doc["logs"].(map[string]any)["path"] = c.Logs.Path
	}
	if c.Watch.Timeout > 0 {
		doc["watch"].(map[string]any)["timeout"] = c.Watch.Timeout.Milliseconds()
	}

	plugins := make([]any, 0, len(c.Plugins))
	for _, p := range c.Plugins {
		if len(p.Options) == 0 {
			plugins = append(plugins, p.Name)
			continue
		}
		entry := maps.Clone(p.Options)
		entry["name"] = p.Name
		plugins = append(plugins, entry)
	}
	doc["plugins"] = plugins
	return doc
}

// RenderTOML renders the config as TOML. Plugins are always written as
// tables so the array stays homogeneous.
func RenderTOML(cfg *Config) ([]byte, error) {
	doc := cfg.Document()
	plugins := make([]map[string]any, len(cfg.Plugins))
	for i, p := range cfg.Plugins {
		entry := maps.Clone(p.Options)
		if entry == nil {
			entry = map[string]any{}
		}
		entry["name"] = p.Name
		plugins[i] = entry
	}
	doc["plugins"] = plugins

	out, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("render config as TOML: %w", err)
	}
	return out, nil
}

// RenderYAML renders the config as YAML.
func RenderYAML(cfg *Config) ([]byte, error) {
	out, err := yaml.Marshal(cfg.Document())
	if err != nil {
		return nil, fmt.Errorf("render config as YAML: %w", err)
	}
	return out, nil
}

// GenerateCUE renders the config as an apigen.config.cue file.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// apigen configuration\n\n")

	if cfg.Name != "" {
		fmt.Fprintf(&sb, "name: %q\n", cfg.Name)
	}
	if cfg.Base != "" {
		fmt.Fprintf(&sb, "base: %q\n", cfg.Base)
	}

	switch {
	case cfg.Input.Path != "":
		fmt.Fprintf(&sb, "input: %q\n", cfg.Input.Path)
	case cfg.Input.Spec != nil:
		fmt.Fprintf(&sb, "input: %s\n", cueValue(cfg.Input.Spec))
	}

	if cfg.Client.Name != "" {
		if cfg.Client.Bundle {
			fmt.Fprintf(&sb, "client: {name: %q, bundle: true}\n", cfg.Client.Name)
		} else {
			fmt.Fprintf(&sb, "client: %q\n", cfg.Client.Name)
		}
	}

	sb.WriteString("\noutput: {\n")
	fmt.Fprintf(&sb, "\tpath:  %q\n", cfg.Output.Path)
	fmt.Fprintf(&sb, "\tclean: %v\n", cfg.Output.Clean)
	if cfg.Output.Format != "" {
		fmt.Fprintf(&sb, "\tformat: %q\n", cfg.Output.Format)
	}
	if cfg.Output.Lint != "" {
		fmt.Fprintf(&sb, "\tlint: %q\n", cfg.Output.Lint)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nplugins: [\n")
	for _, p := range cfg.Plugins {
		if len(p.Options) == 0 {
			fmt.Fprintf(&sb, "\t%q,\n", p.Name)
			continue
		}
		fmt.Fprintf(&sb, "\t{name: %q", p.Name)
		for _, key := range slices.Sorted(maps.Keys(p.Options)) {
			fmt.Fprintf(&sb, ", %s: %s", cueLabel(key), cueValue(p.Options[key]))
		}
		sb.WriteString("},\n")
	}
	sb.WriteString("]\n")

	sb.WriteString("\nlogs: {\n")
	fmt.Fprintf(&sb, "\tlevel: %q\n", cfg.Logs.Level)
	if cfg.Logs.Path != "" {
		fmt.Fprintf(&sb, "\tpath:  %q\n", cfg.Logs.Path)
	}
	sb.WriteString("}\n")

	if cfg.Watch.Enabled {
		sb.WriteString("\nwatch: {\n")
		sb.WriteString("\tenabled:  true\n")
		fmt.Fprintf(&sb, "\tinterval: %d\n", cfg.Watch.Interval.Milliseconds())
		if cfg.Watch.Timeout > 0 {
			fmt.Fprintf(&sb, "\ttimeout:  %d\n", cfg.Watch.Timeout.Milliseconds())
		}
		sb.WriteString("}\n")
	}

	sb.WriteString("\n")
	if cfg.DryRun {
		sb.WriteString("dry_run: true\n")
	}
	if !cfg.ExperimentalParser {
		sb.WriteString("experimental_parser: false\n")
	}
	if !cfg.UseOptions {
		sb.WriteString("use_options: false\n")
	}
	if cfg.IsLegacyClient() {
		fmt.Fprintf(&sb, "export_core: %v\n", cfg.ExportCore)
	}

	return sb.String()
}

// cueValue renders v as CUE. JSON is valid CUE for every value the config
// can hold.
func cueValue(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%q", fmt.Sprint(v))
	}
	return string(out)
}

// cueLabel quotes keys that are not plain identifiers. A leading underscore
// is quoted too: bare _x is a hidden field in CUE.
func cueLabel(key string) string {
	for i, r := range key {
		isLetter := (r == '_' && i > 0) || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		if !isLetter && (i == 0 || r < '0' || r > '9') {
			return fmt.Sprintf("%q", key)
		}
	}
	if key == "" {
		return `""`
	}
	return key
}
