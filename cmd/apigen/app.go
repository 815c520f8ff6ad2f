// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/diagnostic"
	"github.com/apigen/apigen/internal/output"
	"github.com/apigen/apigen/internal/plugin"
	"github.com/apigen/apigen/internal/plugins"
)

type (
	// App wires CLI services and shared dependencies. Every Cobra handler
	// receives the App and reaches configuration, the plugin registry and
	// the output hooks through it.
	App struct {
		Config      config.Provider
		Registry    *plugin.Registry
		Diagnostics DiagnosticRenderer
		HTTPClient  *http.Client
		HookOptions []output.HookOption
		stdout      io.Writer
		stderr      io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Registry    *plugin.Registry
		Diagnostics DiagnosticRenderer
		HTTPClient  *http.Client
		// HookOptions are appended to the defaults of every HookRunner,
		// so tests can intercept the formatter and linter commands.
		HookOptions []output.HookOption
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// DiagnosticRenderer renders non-fatal findings.
	DiagnosticRenderer interface {
		Render(w io.Writer, diags diagnostic.List, verbose bool)
	}

	defaultDiagnosticRenderer struct{}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) (*App, error) {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Registry == nil {
		deps.Registry = plugins.Registry()
	}
	if deps.Diagnostics == nil {
		deps.Diagnostics = defaultDiagnosticRenderer{}
	}
	if deps.HTTPClient == nil {
		deps.HTTPClient = http.DefaultClient
	}

	return &App{
		Config:      deps.Config,
		Registry:    deps.Registry,
		Diagnostics: deps.Diagnostics,
		HTTPClient:  deps.HTTPClient,
		HookOptions: deps.HookOptions,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
	}, nil
}

// Render prints warnings and errors. Info diagnostics are shown only in
// verbose mode.
func (defaultDiagnosticRenderer) Render(w io.Writer, diags diagnostic.List, verbose bool) {
	for _, d := range diags {
		switch d.Severity {
		case diagnostic.SeverityError:
			fmt.Fprintf(w, "%s %s\n", errorIcon, d.String())
		case diagnostic.SeverityWarning:
			fmt.Fprintf(w, "%s %s\n", warningIcon, d.String())
		default:
			if verbose {
				fmt.Fprintf(w, "%s %s\n", infoIcon, VerboseStyle.Render(d.String()))
			}
		}
	}
}
