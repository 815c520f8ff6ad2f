// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/apigen/apigen/internal/cueutil"
	"github.com/apigen/apigen/internal/diagnostic"

	"github.com/spf13/viper"
)

const (
	// LocalConfigFileName is looked up in the working directory first.
	LocalConfigFileName = "apigen.config.cue"
	// ConfigFileName is the file name inside ConfigDir.
	ConfigFileName = "config.cue"

	envPrefix = "APIGEN"
)

//go:embed config_schema.cue
var configSchema []byte

// ConfigDir returns the apigen configuration directory: %APPDATA%\apigen on
// Windows, ~/Library/Application Support/apigen on macOS and
// $XDG_CONFIG_HOME/apigen (default ~/.config/apigen) elsewhere.
//
//nolint:revive // ConfigDir reads better than Dir at call sites
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, "Library", "Application Support")
	default:
		base = os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			base = filepath.Join(home, ".config")
		}
	}
	return filepath.Join(base, AppName), nil
}

// Locate returns the config file that Load would read, or "" when none exists.
func Locate(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", fmt.Errorf("config file not found: %s", opts.ConfigFilePath)
		}
		return opts.ConfigFilePath, nil
	}

	local := LocalConfigFileName
	if opts.WorkDir != "" {
		local = filepath.Join(opts.WorkDir, LocalConfigFileName)
	}
	if fileExists(local) {
		return local, nil
	}

	dir := opts.ConfigDirPath
	if dir == "" {
		var err error
		if dir, err = ConfigDir(); err != nil {
			return "", err
		}
	}
	if global := filepath.Join(dir, ConfigFileName); fileExists(global) {
		return global, nil
	}
	return "", nil
}

// loadUserConfig layers defaults, APIGEN_* environment variables, the config
// file and explicit overrides (highest priority) into a UserConfig.
func loadUserConfig(ctx context.Context, opts LoadOptions) (*UserConfig, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultConfig()
	v.SetDefault("plugins", DefaultPlugins)
	v.SetDefault("dry_run", defaults.DryRun)
	v.SetDefault("experimental_parser", defaults.ExperimentalParser)
	v.SetDefault("export_core", true)
	v.SetDefault("use_options", defaults.UseOptions)

	path, err := Locate(opts)
	if err != nil {
		return nil, err
	}
	var fileMap map[string]any
	if path != "" {
		if fileMap, err = loadCUEIntoViper(v, path); err != nil {
			return nil, err
		}
	}

	var u UserConfig
	if err := v.Unmarshal(&u); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	u.ConfigFile = path

	// Viper lower-cases nested keys. Inline documents and plugin options are
	// case-sensitive, so take them from the decoded file as written.
	if input, ok := fileMap["input"].(map[string]any); ok {
		u.Input = input
	}
	if plugins, ok := fileMap["plugins"].([]any); ok {
		u.Plugins = plugins
	}

	if err := u.Apply(opts.Overrides); err != nil {
		return nil, err
	}
	return &u, nil
}

// loadWithOptions loads and normalizes without touching package state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, diagnostic.List, error) {
	u, err := loadUserConfig(ctx, opts)
	if err != nil {
		return nil, nil, err
	}
	return Normalize(*u)
}

// loadCUEIntoViper validates a CUE file against #Config, merges it into v and
// returns the decoded map.
func loadCUEIntoViper(v *viper.Viper, path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return nil, err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return nil, fmt.Errorf("failed to merge config: %w", err)
	}
	return configMap, nil
}

// CreateDefaultConfig writes a starter apigen.config.cue into dir unless one
// exists. It returns the file path and whether it was created.
func CreateDefaultConfig(dir string) (string, bool, error) {
	path := filepath.Join(dir, LocalConfigFileName)
	if fileExists(path) {
		return path, false, nil
	}

	cfg := DefaultConfig()
	cfg.Input.Path = "./openapi.yaml"
	cfg.Output.Path = "./src/client"
	cfg.Client.Name = ClientFetch

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(GenerateCUE(cfg)), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}
	return path, true, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
