// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/generate"
	"github.com/apigen/apigen/internal/logging"
	"github.com/apigen/apigen/internal/output"
	"github.com/apigen/apigen/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// generateFlagValues holds the flags of `apigen generate`.
type generateFlagValues struct {
	input   string
	output  string
	client  string
	plugins []string
	dryRun  bool
	watch   bool
}

func newGenerateCommand(app *App, root *rootFlagValues) *cobra.Command {
	flags := &generateFlagValues{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a client from an API description",
		Long: `Generate a client from an API description.

The document is parsed with the parser matching its declared version, the
requested plugins run in dependency order and the assembled files are
written to the output directory. Configured formatter and linter hooks run
afterwards.

Examples:
  apigen generate -i ./openapi.yaml -o ./src/client
  apigen generate -i https://example.com/openapi.json -o ./client -c @hey-api/client-axios
  apigen generate -p @hey-api/typescript -p @hey-api/transformers -p @hey-api/sdk
  apigen generate --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, app, root, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "API description file or URL")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output directory")
	cmd.Flags().StringVarP(&flags.client, "client", "c", "", "HTTP client the generated code imports")
	cmd.Flags().StringArrayVarP(&flags.plugins, "plugin", "p", nil, "plugin to run (repeatable, replaces the configured list)")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "run the plugins without writing files")
	cmd.Flags().BoolVarP(&flags.watch, "watch", "w", false, "regenerate when the input changes")
	return cmd
}

// overrides collects the flags the user actually set, keyed like the
// config file.
func (f *generateFlagValues) overrides(cmd *cobra.Command) map[string]any {
	overrides := make(map[string]any)
	set := cmd.Flags().Changed
	if set("input") {
		overrides["input"] = f.input
	}
	if set("output") {
		overrides["output"] = f.output
	}
	if set("client") {
		overrides["client"] = f.client
	}
	if set("plugin") {
		overrides["plugins"] = f.plugins
	}
	if set("dry-run") {
		overrides["dry_run"] = f.dryRun
	}
	if set("watch") {
		overrides["watch"] = f.watch
	}
	return overrides
}

func runGenerate(cmd *cobra.Command, app *App, root *rootFlagValues, flags *generateFlagValues) error {
	ctx := cmd.Context()
	stderr := cmd.ErrOrStderr()

	cfg, diags, err := app.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: root.configPath,
		Overrides:      flags.overrides(cmd),
	})
	if err != nil {
		return fail(cmd, root.verbose, actionable("load configuration", root.configPath, err))
	}
	app.Diagnostics.Render(stderr, diags, root.verbose)

	logger, closer, err := logging.New(stderr, cfg.Logs)
	if err != nil {
		return fail(cmd, root.verbose, actionable("open log", cfg.Logs.Path, err))
	}
	defer func() {
		if closeErr := closer.Close(); closeErr != nil {
			fmt.Fprintf(stderr, "%s closing log file: %v\n", warningIcon, closeErr)
		}
	}()
	if root.verbose && cfg.Logs.Level != config.LogLevelSilent {
		logger.SetLevel(log.DebugLevel)
	}
	logger.Debug("Loaded configuration",
		"file", cfg.ConfigFile,
		"input", cfg.InputSource(),
		"output", cfg.Output.Path,
		"client", cfg.Client.Name,
		"plugins", cfg.PluginNames(),
		"dry_run", cfg.DryRun,
		"watch", cfg.Watch.Enabled,
	)

	if err := app.generateOnce(ctx, cmd.OutOrStdout(), stderr, cfg, logger, root.verbose); err != nil {
		return fail(cmd, root.verbose, err)
	}
	if !cfg.Watch.Enabled {
		return nil
	}

	w, err := watch.New(watch.Config{
		Inputs:   []string{cfg.Input.Path},
		Interval: cfg.Watch.Interval,
		Timeout:  cfg.Watch.Timeout,
		Logger:   logger,
		OnChange: func(ctx context.Context, _ []string) error {
			return app.generateOnce(ctx, cmd.OutOrStdout(), stderr, cfg, logger, root.verbose)
		},
	})
	if err != nil {
		return fail(cmd, root.verbose, actionable("watch input", cfg.Input.Path, err))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Watching %s for changes (Ctrl+C to stop)\n",
		infoIcon, CmdStyle.Render(cfg.Input.Path))
	if err := w.Run(ctx); err != nil {
		return fail(cmd, root.verbose, actionable("watch input", cfg.Input.Path, err))
	}
	return nil
}

// generateOnce runs the pipeline for cfg, writes the files and runs the
// output hooks. Errors are returned as actionable errors.
func (a *App) generateOnce(ctx context.Context, stdout, stderr io.Writer, cfg *config.Config, logger *log.Logger, verbose bool) error {
	res, err := generate.Run(ctx, cfg, a.Registry,
		generate.WithLogger(logger),
		generate.WithHTTPClient(a.HTTPClient),
	)
	if err != nil {
		return actionable("generate client", cfg.InputSource(), err)
	}
	a.Diagnostics.Render(stderr, res.Diagnostics, verbose)

	switch {
	case res.Skipped:
		return nil
	case cfg.DryRun:
		logger.Debug("Dry run, nothing written", "plugins", len(res.Order))
		return nil
	}

	written, err := output.Write(cfg.Output.Path, res.Files, cfg.Output.Clean)
	if err != nil {
		return actionable("write output", cfg.Output.Path, err)
	}
	if verbose {
		for _, path := range written {
			fmt.Fprintf(stdout, "  %s\n", VerboseStyle.Render(path))
		}
	}

	if hooks := output.Hooks(cfg.Output); len(hooks) > 0 {
		opts := append([]output.HookOption{
			output.WithOutput(stdout, stderr),
			output.WithHookLogger(logger),
		}, a.HookOptions...)
		if err := output.NewHookRunner(opts...).RunAll(ctx, hooks, cfg.Output.Path); err != nil {
			return actionable("run output hooks", cfg.Output.Path, err)
		}
	}

	fmt.Fprintf(stdout, "%s Generated %d file(s) in %s\n", successIcon, len(written), CmdStyle.Render(cfg.Output.Path))
	return nil
}
