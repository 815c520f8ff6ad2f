// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/slices"
)

// Catalogued issues. Zero is reserved for "no issue".
const (
	MissingInputId Id = iota + 1
	MissingOutputId
	InvalidClientId
	ConfigLoadFailedId
	UnknownPluginId
	CircularPluginDependencyId
	ReservedPluginOptionId
	UnsupportedSpecVersionId
	SpecParseFailedId
	PluginHandlerFailedId
	OutputWriteFailedId
)

type (
	// Id identifies a catalogued issue.
	Id int

	// MarkdownMsg is the Markdown body of an issue page.
	MarkdownMsg string

	// HttpLink is a documentation link attached to an issue.
	HttpLink string

	// Issue is a catalogued failure with Markdown guidance.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
	}
)

// Id returns the issue identifier.
func (i *Issue) Id() Id {
	return i.id
}

// MarkdownMsg returns the raw Markdown body.
func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// DocLinks returns a copy of the documentation links.
func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

// Markdown returns the body with a "See also" section for the doc links.
func (i *Issue) Markdown() string {
	var sb strings.Builder
	sb.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 {
		sb.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			sb.WriteString("- <")
			sb.WriteString(string(link))
			sb.WriteString(">\n")
		}
	}
	return sb.String()
}

// Render renders the issue for a terminal using the given glamour style
// ("dark", "light", "notty", or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(i.Markdown(), stylePath)
}

var (
	render = glamour.Render

	issues = map[Id]*Issue{
		MissingInputId: {
			id: MissingInputId,
			mdMsg: `
# Missing input!

apigen needs an API description to generate a client from.

## Things you can try:
- Pass the spec on the command line:
~~~
$ apigen generate -i ./openapi.yaml -o ./src/client
~~~
- Or set it in apigen.config.cue:
~~~cue
input: "./openapi.yaml"
~~~`,
		},
		MissingOutputId: {
			id: MissingOutputId,
			mdMsg: `
# Missing output!

apigen does not know where to write the generated client.

## Things you can try:
~~~cue
output: {
	path:  "./src/client"
	clean: true
}
~~~`,
		},
		InvalidClientId: {
			id: InvalidClientId,
			mdMsg: `
# Invalid client!

The selected HTTP client is not one apigen can target.

## Valid clients:
- @hey-api/client-fetch, @hey-api/client-axios, @hey-api/client-next
- legacy/fetch, legacy/axios, legacy/node, legacy/xhr, legacy/angular`,
		},
		ConfigLoadFailedId: {
			id: ConfigLoadFailedId,
			mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ apigen config show
~~~
- Check field names: the config uses snake_case keys (dry_run, export_core).`,
		},
		UnknownPluginId: {
			id: UnknownPluginId,
			mdMsg: `
# Unknown plugin!

A requested plugin, or one of its dependencies, is not registered.

## Things you can try:
- List the built-in plugins:
~~~
$ apigen plugins list
~~~
- Check the spelling, including the scope (e.g. ` + "`@hey-api/sdk`" + `).`,
		},
		CircularPluginDependencyId: {
			id: CircularPluginDependencyId,
			mdMsg: `
# Circular plugin dependency!

Two or more plugins depend on each other, so no execution order exists.

## Things you can try:
- Inspect the dependency chain printed above.
- Remove the dependency that closes the loop from your custom plugin.`,
		},
		ReservedPluginOptionId: {
			id: ReservedPluginOptionId,
			mdMsg: `
# Reserved plugin option!

Options starting with an underscore are owned by the plugin engine and cannot
be overridden from configuration.

## Things you can try:
- Remove the underscore-prefixed key from the plugin entry.`,
		},
		UnsupportedSpecVersionId: {
			id: UnsupportedSpecVersionId,
			mdMsg: `
# Unsupported specification version!

apigen understands these dialects:
- Swagger 2.0 (top-level ` + "`swagger`" + ` field)
- OpenAPI 3.0.0 to 3.0.4
- OpenAPI 3.1.0 and 3.1.1

## Things you can try:
- Check the ` + "`openapi`" + ` field at the top of your document.`,
		},
		SpecParseFailedId: {
			id: SpecParseFailedId,
			mdMsg: `
# Failed to parse the specification!

The document was recognised but is not valid for its dialect.

## Things you can try:
- Validate the document with your usual OpenAPI linter.
- Run with --verbose to see the full error chain.`,
		},
		PluginHandlerFailedId: {
			id: PluginHandlerFailedId,
			mdMsg: `
# Plugin failed!

A plugin reported an error while generating code. Plugins that were scheduled
after it did not run and no files were written.`,
		},
		OutputWriteFailedId: {
			id: OutputWriteFailedId,
			mdMsg: `
# Failed to write output!

The client was generated but could not be written to disk.

## Things you can try:
- Check permissions on the output directory.
- Disable cleaning with ` + "`output: {clean: false}`" + ` if the directory is shared.`,
		},
	}
)

// Values returns every catalogued issue ordered by Id.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range issues {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the issue for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
