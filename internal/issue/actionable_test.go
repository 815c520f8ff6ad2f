// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "resolve plugins"},
			expected: "failed to resolve plugins",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load spec", Resource: "./openapi.yaml"},
			expected: "failed to load spec: ./openapi.yaml",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "load spec",
				Resource:  "./openapi.yaml",
				Cause:     errors.New("file not found"),
			},
			expected: "failed to load spec: ./openapi.yaml: file not found",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_FormatVerboseChain(t *testing.T) {
	t.Parallel()

	root := errors.New("version 3.2.0")
	err := NewErrorContext().
		WithOperation("parse spec").
		WithSuggestion("Check the openapi field").
		Wrap(errors.Join(root)).
		Build()

	short := err.Format(false)
	if !strings.Contains(short, "• Check the openapi field") {
		t.Errorf("Format(false) missing suggestion: %q", short)
	}
	if strings.Contains(short, "Error chain") {
		t.Errorf("Format(false) should not include the chain: %q", short)
	}
	if long := err.Format(true); !strings.Contains(long, "Error chain:") {
		t.Errorf("Format(true) missing chain: %q", long)
	}
}

func TestErrorContext_BuildErrorWithoutOperation(t *testing.T) {
	t.Parallel()

	if err := NewErrorContext().WithResource("x").BuildError(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestErrorContext_WithIssueAndUnwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	ae := NewErrorContext().
		WithOperation("run plugin").
		WithIssue(PluginHandlerFailedId).
		WithSuggestions("a", "b").
		Wrap(cause).
		Build()

	if ae.Issue != PluginHandlerFailedId {
		t.Errorf("Issue = %d, want %d", ae.Issue, PluginHandlerFailedId)
	}
	if len(ae.Suggestions) != 2 {
		t.Errorf("expected 2 suggestions, got %v", ae.Suggestions)
	}
	if !errors.Is(ae, cause) {
		t.Error("errors.Is should find the cause")
	}
	if WrapWithOperation(nil, "x") != nil {
		t.Error("WrapWithOperation(nil) should be nil")
	}
}
