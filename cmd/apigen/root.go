// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for apigen.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/apigen/apigen/internal/config"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	verbose    bool
	configPath string
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	root := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Generate TypeScript API clients from OpenAPI documents",
		Long: TitleStyle.Render(config.AppName) + SubtitleStyle.Render(" - Generate TypeScript API clients from OpenAPI documents") + `

apigen reads a Swagger 2.0, OpenAPI 3.0 or OpenAPI 3.1 document and runs a
pipeline of plugins over it. Each plugin contributes generated files: types,
JSON schemas, an SDK, response transformers, Zod validators or TanStack
Query helpers.

Configuration is read from apigen.config.cue in the working directory, then
from the user configuration directory. Flags override both.

` + SubtitleStyle.Render("Examples:") + `
  apigen generate -i ./openapi.yaml -o ./src/client
  apigen generate -p @hey-api/sdk -p zod --dry-run
  apigen plugins list
  apigen plugins order -p @tanstack/react-query
  apigen config show --format yaml`,
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&root.verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&root.configPath, "config", "", "config file (default is ./apigen.config.cue, then the user config directory)")

	rootCmd.AddCommand(
		newGenerateCommand(app, root),
		newPluginsCommand(app, root),
		newConfigCommand(app, root),
		newInitCommand(root),
	)
	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI. It is called by main.main().
func Execute() {
	app, err := NewApp(Dependencies{})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}

	// fang overrides rootCmd.Version, so the version goes through WithVersion.
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}
