// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

const (
	// ClientAxios targets the axios-based client package.
	ClientAxios ClientName = "@hey-api/client-axios"
	// ClientFetch targets the Fetch API client package.
	ClientFetch ClientName = "@hey-api/client-fetch"
	// ClientNext targets the Next.js client package.
	ClientNext ClientName = "@hey-api/client-next"
	// ClientLegacyAngular is the legacy Angular service generator.
	ClientLegacyAngular ClientName = "legacy/angular"
	// ClientLegacyAxios is the legacy axios service generator.
	ClientLegacyAxios ClientName = "legacy/axios"
	// ClientLegacyFetch is the legacy fetch service generator.
	ClientLegacyFetch ClientName = "legacy/fetch"
	// ClientLegacyNode is the legacy node-fetch service generator.
	ClientLegacyNode ClientName = "legacy/node"
	// ClientLegacyXHR is the legacy XMLHttpRequest service generator.
	ClientLegacyXHR ClientName = "legacy/xhr"

	// LogLevelDebug logs the normalized config and the resolved plugin order.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the default level.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn only logs warnings and errors.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError only logs errors.
	LogLevelError LogLevel = "error"
	// LogLevelSilent disables logging.
	LogLevelSilent LogLevel = "silent"

	// FormatterPrettier formats output with prettier.
	FormatterPrettier Formatter = "prettier"
	// FormatterBiome formats output with biome.
	FormatterBiome Formatter = "biome"

	// LinterBiome lints output with biome.
	LinterBiome Linter = "biome"
	// LinterESLint lints output with eslint.
	LinterESLint Linter = "eslint"
	// LinterOxlint lints output with oxlint.
	LinterOxlint Linter = "oxlint"

	legacyClientPrefix = "legacy/"
)

var (
	// ErrConfiguration matches every configuration error, including plugin
	// resolution failures.
	ErrConfiguration = errors.New("configuration error")
	// ErrMissingInput is returned when no spec input is configured.
	ErrMissingInput = errors.New("missing input")
	// ErrMissingOutput is returned when no output path is configured.
	ErrMissingOutput = errors.New("missing output")
	// ErrInvalidClient is returned when a ClientName is not in the allow-list.
	ErrInvalidClient = errors.New("invalid client")
	// ErrInvalidLogLevel is returned when a LogLevel value is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidFormatter is returned when a Formatter value is not recognized.
	ErrInvalidFormatter = errors.New("invalid formatter")
	// ErrInvalidLinter is returned when a Linter value is not recognized.
	ErrInvalidLinter = errors.New("invalid linter")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	clientNames = []ClientName{
		ClientAxios, ClientFetch, ClientNext,
		ClientLegacyAngular, ClientLegacyAxios, ClientLegacyFetch, ClientLegacyNode, ClientLegacyXHR,
	}
)

type (
	// ClientName identifies the HTTP client the generated code targets.
	ClientName string

	// InvalidClientError is returned when a ClientName is not recognized.
	// It wraps ErrInvalidClient and ErrConfiguration.
	InvalidClientError struct {
		Value ClientName
	}

	// MissingInputError is returned when a config has no spec input.
	MissingInputError struct{}

	// MissingOutputError is returned when a config has no output path.
	MissingOutputError struct{}

	// LogLevel sets the logger verbosity.
	LogLevel string

	// InvalidLogLevelError is returned when a LogLevel value is not recognized.
	InvalidLogLevelError struct {
		Value LogLevel
	}

	// Formatter names the code formatter run after generation. Empty disables it.
	Formatter string

	// InvalidFormatterError is returned when a Formatter value is not recognized.
	InvalidFormatterError struct {
		Value Formatter
	}

	// Linter names the linter run after generation. Empty disables it.
	Linter string

	// InvalidLinterError is returned when a Linter value is not recognized.
	InvalidLinterError struct {
		Value Linter
	}

	// InvalidConfigError collects field-level validation errors.
	InvalidConfigError struct {
		FieldErrors []error
	}
)

// ClientNames returns every accepted client name.
func ClientNames() []ClientName {
	return slices.Clone(clientNames)
}

// IsLegacy reports whether the client is served by the legacy generator.
func (c ClientName) IsLegacy() bool {
	return strings.HasPrefix(string(c), legacyClientPrefix)
}

// IsValid returns whether the ClientName is in the allow-list. The zero
// value is valid and means "no client selected".
func (c ClientName) IsValid() (bool, []error) {
	if c == "" || slices.Contains(clientNames, c) {
		return true, nil
	}
	return false, []error{&InvalidClientError{Value: c}}
}

func (e *InvalidClientError) Error() string {
	names := make([]string, len(clientNames))
	for i, n := range clientNames {
		names[i] = string(n)
	}
	return fmt.Sprintf("invalid client %q (valid: %s)", e.Value, strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidClient and ErrConfiguration.
func (e *InvalidClientError) Unwrap() []error { return []error{ErrInvalidClient, ErrConfiguration} }

func (e *MissingInputError) Error() string {
	return "missing input: which API specification should the client be generated from?"
}

// Unwrap returns ErrMissingInput and ErrConfiguration.
func (e *MissingInputError) Unwrap() []error { return []error{ErrMissingInput, ErrConfiguration} }

func (e *MissingOutputError) Error() string {
	return "missing output: where should the client be generated?"
}

// Unwrap returns ErrMissingOutput and ErrConfiguration.
func (e *MissingOutputError) Unwrap() []error { return []error{ErrMissingOutput, ErrConfiguration} }

// IsValid returns whether the LogLevel is recognized.
func (l LogLevel) IsValid() (bool, []error) {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError, LogLevelSilent:
		return true, nil
	default:
		return false, []error{&InvalidLogLevelError{Value: l}}
	}
}

func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error, silent)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel and ErrConfiguration.
func (e *InvalidLogLevelError) Unwrap() []error { return []error{ErrInvalidLogLevel, ErrConfiguration} }

// IsValid returns whether the Formatter is recognized. Empty is valid.
func (f Formatter) IsValid() (bool, []error) {
	switch f {
	case "", FormatterPrettier, FormatterBiome:
		return true, nil
	default:
		return false, []error{&InvalidFormatterError{Value: f}}
	}
}

func (e *InvalidFormatterError) Error() string {
	return fmt.Sprintf("invalid formatter %q (valid: prettier, biome)", e.Value)
}

// Unwrap returns ErrInvalidFormatter and ErrConfiguration.
func (e *InvalidFormatterError) Unwrap() []error { return []error{ErrInvalidFormatter, ErrConfiguration} }

// IsValid returns whether the Linter is recognized. Empty is valid.
func (l Linter) IsValid() (bool, []error) {
	switch l {
	case "", LinterBiome, LinterESLint, LinterOxlint:
		return true, nil
	default:
		return false, []error{&InvalidLinterError{Value: l}}
	}
}

func (e *InvalidLinterError) Error() string {
	return fmt.Sprintf("invalid linter %q (valid: biome, eslint, oxlint)", e.Value)
}

// Unwrap returns ErrInvalidLinter and ErrConfiguration.
func (e *InvalidLinterError) Unwrap() []error { return []error{ErrInvalidLinter, ErrConfiguration} }

func (e *InvalidConfigError) Error() string {
	if len(e.FieldErrors) == 1 {
		return e.FieldErrors[0].Error()
	}
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig, ErrConfiguration and every field error.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig, ErrConfiguration}, e.FieldErrors...)
}
