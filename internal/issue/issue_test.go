// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValuesOrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != int(OutputWriteFailedId) {
		t.Fatalf("expected %d issues, got %d", OutputWriteFailedId, len(values))
	}
	for i, iss := range values {
		if iss.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, iss.Id(), i+1)
		}
		if strings.TrimSpace(string(iss.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", iss.Id())
		}
	}
}

func TestGetUnknown(t *testing.T) {
	t.Parallel()

	if Get(0) != nil {
		t.Error("Get(0) should be nil")
	}
}

func TestMarkdownIncludesDocLinks(t *testing.T) {
	t.Parallel()

	iss := &Issue{id: 99, mdMsg: "# Title", docLinks: []HttpLink{"https://example.com/docs"}}
	md := iss.Markdown()
	if !strings.Contains(md, "## See also") || !strings.Contains(md, "https://example.com/docs") {
		t.Errorf("Markdown() missing links: %q", md)
	}
}

func TestRenderUsesRenderer(t *testing.T) {
	// Not parallel: swaps the package-level renderer.
	original := render
	defer func() { render = original }()

	var gotStyle string
	render = func(in, style string) (string, error) {
		gotStyle = style
		return "rendered:" + in, nil
	}

	out, err := Get(UnsupportedSpecVersionId).Render("notty")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if gotStyle != "notty" {
		t.Errorf("style = %q, want notty", gotStyle)
	}
	if !strings.HasPrefix(out, "rendered:") || !strings.Contains(out, "OpenAPI 3.1.0") {
		t.Errorf("unexpected render output: %q", out)
	}
}
