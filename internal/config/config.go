// SPDX-License-Identifier: MPL-2.0

package config

import (
	"maps"
	"time"
)

const (
	// AppName is the application name.
	AppName = "apigen"

	// DefaultWatchInterval is the watch debounce interval when none is configured.
	DefaultWatchInterval = time.Second
)

// DefaultPlugins are requested when the config lists none.
var DefaultPlugins = []string{"@hey-api/typescript", "@hey-api/sdk"}

type (
	// Client selects the HTTP client the generated code imports.
	Client struct {
		Name ClientName
		// Bundle vendors the client next to the generated code instead of
		// importing it from a package.
		Bundle bool
	}

	// Input is the API description to generate from. Exactly one of Path and
	// Spec is set: Path for files and URLs, Spec for inline documents.
	Input struct {
		Path string
		Spec map[string]any
	}

	// Output controls where and how generated files are written.
	Output struct {
		Path   string
		Clean  bool
		Format Formatter
		Lint   Linter
	}

	// Logs configures the logger.
	Logs struct {
		Level LogLevel
		// Path is a directory; when set, logs are also appended to
		// <Path>/apigen.log.
		Path string
	}

	// Watch configures regeneration on input change.
	Watch struct {
		Enabled  bool
		Interval time.Duration
		// Timeout stops watching after the given duration. Zero means never.
		Timeout time.Duration
	}

	// PluginEntry is one requested plugin with its user options.
	PluginEntry struct {
		Name    string
		Options map[string]any
	}

	// Config is a normalized generation request. Every shape-polymorphic
	// field of UserConfig has been resolved to a single concrete form.
	Config struct {
		Name   string
		Base   string
		Client Client
		Input  Input
		Output Output
		Logs   Logs
		Watch  Watch
		// Plugins lists the requested plugins in request order.
		Plugins            []PluginEntry
		DryRun             bool
		ExperimentalParser bool
		ExportCore         bool
		UseOptions         bool
		// ConfigFile is the file the config was loaded from, if any.
		ConfigFile string
	}
)

// DefaultConfig returns the configuration used when nothing is set.
// Input and Output are left empty and must be provided.
func DefaultConfig() *Config {
	plugins := make([]PluginEntry, len(DefaultPlugins))
	for i, name := range DefaultPlugins {
		plugins[i] = PluginEntry{Name: name}
	}
	return &Config{
		Output:             Output{Clean: true},
		Logs:               Logs{Level: LogLevelInfo},
		Watch:              Watch{Interval: DefaultWatchInterval},
		Plugins:            plugins,
		ExperimentalParser: true,
		UseOptions:         true,
	}
}

// PluginNames returns the requested plugin names in request order,
// duplicates included.
func (c *Config) PluginNames() []string {
	names := make([]string, len(c.Plugins))
	for i, p := range c.Plugins {
		names[i] = p.Name
	}
	return names
}

// PluginOverrides returns the user options keyed by plugin name. Entries
// without options are omitted. A plugin requested twice keeps its last
// options.
func (c *Config) PluginOverrides() map[string]map[string]any {
	out := make(map[string]map[string]any)
	for _, p := range c.Plugins {
		if len(p.Options) > 0 {
			out[p.Name] = maps.Clone(p.Options)
		}
	}
	return out
}

// IsLegacyClient reports whether generation is handled by the legacy
// generator.
func (c *Config) IsLegacyClient() bool {
	return c.Client.Name.IsLegacy()
}

// InputSource returns a printable description of the input.
func (c *Config) InputSource() string {
	if c.Input.Path != "" {
		return c.Input.Path
	}
	if c.Input.Spec != nil {
		return "inline"
	}
	return ""
}

// IsValid validates the normalized config.
func (c *Config) IsValid() (bool, []error) {
	if c.Input.Path == "" && c.Input.Spec == nil {
		return false, []error{&MissingInputError{}}
	}
	if c.Output.Path == "" {
		return false, []error{&MissingOutputError{}}
	}

	var errs []error
	for _, check := range []func() (bool, []error){
		c.Client.Name.IsValid,
		c.Logs.Level.IsValid,
		c.Output.Format.IsValid,
		c.Output.Lint.IsValid,
	} {
		if valid, fieldErrs := check(); !valid {
			errs = append(errs, fieldErrs...)
		}
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}
