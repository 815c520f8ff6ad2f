// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"

	"github.com/apigen/apigen/internal/diagnostic"
)

// LoadOptions defines explicit configuration loading inputs.
type LoadOptions struct {
	// ConfigFilePath forces loading from a specific config file when set.
	ConfigFilePath string
	// ConfigDirPath overrides the global config directory lookup when set.
	ConfigDirPath string
	// WorkDir is where apigen.config.cue is looked up. Empty means the
	// process working directory.
	WorkDir string
	// Overrides are applied last, keyed like the config file
	// (e.g. "output", "dry_run").
	Overrides map[string]any
}

// Provider loads configuration from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, diagnostic.List, error)
}

type fileProvider struct{}

// NewProvider creates a configuration provider backed by the filesystem.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads, normalizes and validates the configuration.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, diagnostic.List, error) {
	return loadWithOptions(ctx, opts)
}
