// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/apigen/apigen/internal/config"

	"github.com/spf13/cobra"
)

// Config output formats of `apigen config show`.
const (
	formatCUE  = "cue"
	formatTOML = "toml"
	formatYAML = "yaml"
)

// newConfigCommand creates the `apigen config` command tree.
func newConfigCommand(app *App, root *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect apigen configuration",
		Long: `Inspect apigen configuration.

Configuration is read from the first of:
  - the file given with --config
  - ./apigen.config.cue
  - the user config directory: ~/.config/apigen/config.cue on Linux,
    ~/Library/Application Support/apigen/config.cue on macOS and
    %APPDATA%\apigen\config.cue on Windows

APIGEN_* environment variables fill in values the file leaves unset.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd, app, root, format)
		},
	}
	showCmd.Flags().StringVarP(&format, "format", "f", formatCUE, "output format: cue, toml or yaml")
	cfgCmd.AddCommand(showCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show the configuration file that would be read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd, root)
		},
	})

	return cfgCmd
}

func showConfig(cmd *cobra.Command, app *App, root *rootFlagValues, format string) error {
	cfg, diags, err := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: root.configPath})
	if err != nil {
		return fail(cmd, root.verbose, actionable("load configuration", root.configPath, err))
	}
	app.Diagnostics.Render(cmd.ErrOrStderr(), diags, root.verbose)

	var rendered string
	switch format {
	case formatCUE:
		rendered = config.GenerateCUE(cfg)
	case formatTOML:
		data, renderErr := config.RenderTOML(cfg)
		if renderErr != nil {
			return fail(cmd, root.verbose, actionable("render configuration", formatTOML, renderErr))
		}
		rendered = string(data)
	case formatYAML:
		data, renderErr := config.RenderYAML(cfg)
		if renderErr != nil {
			return fail(cmd, root.verbose, actionable("render configuration", formatYAML, renderErr))
		}
		rendered = string(data)
	default:
		return fail(cmd, root.verbose, actionable("render configuration", format,
			fmt.Errorf("unknown format %q (expected cue, toml or yaml)", format)))
	}

	if root.verbose {
		source := cfg.ConfigFile
		if source == "" {
			source = "(defaults and flags only)"
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", SubtitleStyle.Render("Config file:"), source)
	}
	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}

func showConfigPath(cmd *cobra.Command, root *rootFlagValues) error {
	path, err := config.Locate(config.LoadOptions{ConfigFilePath: root.configPath})
	if err != nil {
		return fail(cmd, root.verbose, actionable("locate configuration", root.configPath, err))
	}

	w := cmd.OutOrStdout()
	if path != "" {
		fmt.Fprintln(w, path)
		return nil
	}

	fmt.Fprintln(w, SubtitleStyle.Render("No configuration file found. Looked for:"))
	fmt.Fprintf(w, "  %s\n", config.LocalConfigFileName)
	if dir, dirErr := config.ConfigDir(); dirErr == nil {
		fmt.Fprintf(w, "  %s\n", filepath.Join(dir, config.ConfigFileName))
	}
	return nil
}
