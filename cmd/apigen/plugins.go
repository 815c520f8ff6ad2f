// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/plugin"

	"github.com/spf13/cobra"
)

func newPluginsCommand(app *App, root *rootFlagValues) *cobra.Command {
	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "Inspect the registered plugins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pluginsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered plugins with their dependencies, tags and default options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			listPlugins(cmd.OutOrStdout(), app.Registry)
			return nil
		},
	})

	var requested []string
	orderCmd := &cobra.Command{
		Use:   "order",
		Short: "Show the execution order of a plugin request",
		Long: `Show the execution order of a plugin request.

Plugins named with -p are resolved with their default options. Without -p,
the plugins of the current configuration are used.

Plugins on the same level do not depend on each other.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showOrder(cmd, app, root, requested)
		},
	}
	orderCmd.Flags().StringArrayVarP(&requested, "plugin", "p", nil, "plugin to request (repeatable)")
	pluginsCmd.AddCommand(orderCmd)

	return pluginsCmd
}

func listPlugins(w io.Writer, registry *plugin.Registry) {
	fmt.Fprintln(w, TitleStyle.Render("Registered plugins"))
	for _, desc := range registry.Descriptors() {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", CmdStyle.Render(desc.Name), SubtitleStyle.Render(desc.Description))
		if len(desc.Dependencies) > 0 {
			fmt.Fprintf(w, "  depends on: %s\n", strings.Join(desc.Dependencies, ", "))
		}
		if len(desc.Tags) > 0 {
			fmt.Fprintf(w, "  tags:       %s\n", strings.Join(desc.Tags, ", "))
		}
		for _, key := range slices.Sorted(maps.Keys(desc.Options)) {
			fmt.Fprintf(w, "  %s %v\n", VerboseStyle.Render(key+":"), desc.Options[key])
		}
	}
}

func showOrder(cmd *cobra.Command, app *App, root *rootFlagValues, requested []string) error {
	var (
		res *plugin.Resolution
		err error
	)
	if len(requested) > 0 {
		res, err = plugin.Resolve(requested, app.Registry, nil)
	} else {
		cfg, diags, loadErr := app.Config.Load(cmd.Context(), config.LoadOptions{ConfigFilePath: root.configPath})
		if loadErr != nil {
			return fail(cmd, root.verbose, actionable("load configuration", root.configPath, loadErr))
		}
		app.Diagnostics.Render(cmd.ErrOrStderr(), diags, root.verbose)
		requested = cfg.PluginNames()
		res, err = plugin.ResolveConfig(cfg, app.Registry)
	}
	if err != nil {
		return fail(cmd, root.verbose, actionable("resolve plugins", strings.Join(requested, ", "), err))
	}
	app.Diagnostics.Render(cmd.ErrOrStderr(), res.Diagnostics, root.verbose)

	levels, err := res.Levels()
	if err != nil {
		return fail(cmd, root.verbose, actionable("order plugins", strings.Join(requested, ", "), err))
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, TitleStyle.Render("Execution order"))
	for i, name := range res.Order {
		fmt.Fprintf(w, "  %d. %s", i+1, CmdStyle.Render(name))
		if deps := res.Plugins[name].Dependencies; len(deps) > 0 {
			fmt.Fprintf(w, " %s", SubtitleStyle.Render("(after "+strings.Join(deps, ", ")+")"))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, TitleStyle.Render("Levels"))
	for i, level := range levels {
		fmt.Fprintf(w, "  %d: %s\n", i, strings.Join(level, ", "))
	}
	return nil
}
