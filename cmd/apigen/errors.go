// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/generate"
	"github.com/apigen/apigen/internal/issue"
	"github.com/apigen/apigen/internal/openapi"
	"github.com/apigen/apigen/internal/output"
	"github.com/apigen/apigen/internal/plugin"
	"github.com/apigen/apigen/internal/spec"

	"github.com/spf13/cobra"
)

var issueSuggestions = map[issue.Id][]string{
	issue.MissingInputId:             {"Pass the document with --input, or set input in apigen.config.cue"},
	issue.MissingOutputId:            {"Pass the target directory with --output, or set output in apigen.config.cue"},
	issue.InvalidClientId:            {"Use one of @hey-api/client-fetch, @hey-api/client-axios or @hey-api/client-next"},
	issue.ConfigLoadFailedId:         {"Run 'apigen config path' to see which file is read", "Run 'apigen init' to create a starter config"},
	issue.UnknownPluginId:            {"Run 'apigen plugins list' to see registered plugins"},
	issue.CircularPluginDependencyId: {"Run 'apigen plugins order -p <name>' to inspect the dependency chain"},
	issue.ReservedPluginOptionId:     {"Remove plugin options whose names start with '_'"},
	issue.UnsupportedSpecVersionId:   {"Declare swagger: \"2.0\" or openapi: \"3.0.x\" / \"3.1.x\" at the top of the document"},
	issue.SpecParseFailedId:          {"Validate the document with an OpenAPI linter"},
	issue.PluginHandlerFailedId:      {"Check the options of the failing plugin"},
	issue.OutputWriteFailedId:        {"Check that the output path is inside the project and writable"},
}

// classifyError maps an error chain to its catalogued issue, or zero.
func classifyError(err error) issue.Id {
	switch {
	case errors.Is(err, config.ErrMissingInput):
		return issue.MissingInputId
	case errors.Is(err, config.ErrMissingOutput):
		return issue.MissingOutputId
	case errors.Is(err, config.ErrInvalidClient):
		return issue.InvalidClientId
	case errors.Is(err, plugin.ErrUnknownPlugin):
		return issue.UnknownPluginId
	case errors.Is(err, plugin.ErrCircularDependency):
		return issue.CircularPluginDependencyId
	case errors.Is(err, plugin.ErrReservedFieldOverride):
		return issue.ReservedPluginOptionId
	case errors.Is(err, openapi.ErrUnsupportedSpecVersion):
		return issue.UnsupportedSpecVersionId
	case errors.Is(err, openapi.ErrParse), errors.Is(err, spec.ErrInvalidDocument), errors.Is(err, spec.ErrFetch):
		return issue.SpecParseFailedId
	case errors.Is(err, generate.ErrHandler):
		return issue.PluginHandlerFailedId
	case errors.Is(err, output.ErrUnsafePath), errors.Is(err, output.ErrReservedName), errors.Is(err, output.ErrHook):
		return issue.OutputWriteFailedId
	case errors.Is(err, config.ErrConfiguration):
		return issue.ConfigLoadFailedId
	}
	return 0
}

// actionable wraps err with the operation and resource that failed and the
// suggestions of its catalogued issue. An err that already is actionable is
// returned unchanged.
func actionable(operation, resource string, err error) error {
	if err == nil {
		return nil
	}
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return err
	}
	id := classifyError(err)
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithIssue(id).
		WithSuggestions(issueSuggestions[id]...).
		Wrap(err).
		BuildError()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// fail renders err and its issue page on stderr and returns an ExitError so
// Cobra and fang stay quiet.
func fail(cmd *cobra.Command, verbose bool, err error) error {
	stderr := cmd.ErrOrStderr()
	fmt.Fprintf(stderr, "%s %s\n", errorIcon, formatErrorForDisplay(err, verbose))

	var ae *issue.ActionableError
	if verbose && errors.As(err, &ae) && ae.Issue != 0 {
		if page := issue.Get(ae.Issue); page != nil {
			if rendered, renderErr := page.Render("dark"); renderErr == nil {
				fmt.Fprint(stderr, rendered)
			}
		}
	}

	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	return &ExitError{Code: 1, Err: err}
}
