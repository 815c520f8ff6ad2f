// SPDX-License-Identifier: MPL-2.0

package ir

type (
	// Info is the document's info block.
	Info struct {
		Title       string
		Version     string
		Description string
	}

	// Server is a base URL the API is served from.
	Server struct {
		URL         string
		Description string
	}

	// Schema is a dialect-neutral JSON schema. Named component schemas carry
	// Name; inline schemas leave it empty. A reference to another component
	// sets only Ref.
	Schema struct {
		Name        string
		Ref         string
		Type        string
		Format      string
		Description string
		Nullable    bool
		Deprecated  bool
		Enum        []any
		Items       *Schema
		Properties  []Property
		// AdditionalProperties is the value schema of a map type.
		AdditionalProperties *Schema
		AllOf                []*Schema
		OneOf                []*Schema
		AnyOf                []*Schema
	}

	// Property is one object member. Properties keep document order when the
	// parser can observe it and are sorted by name otherwise.
	Property struct {
		Name     string
		Schema   *Schema
		Required bool
	}

	// Parameter is an operation parameter.
	Parameter struct {
		Name     string
		In       string
		Required bool
		Schema   *Schema
	}

	// Response is one documented response of an operation.
	Response struct {
		Status      string
		Description string
		Schema      *Schema
	}

	// Operation is a single method on a path.
	Operation struct {
		ID          string
		Method      string
		Path        string
		Summary     string
		Description string
		Tags        []string
		Deprecated  bool
		Parameters  []Parameter
		// Body is the request body schema; HasBody is set even when the body
		// has no schema.
		Body      *Schema
		HasBody   bool
		Responses []Response
	}

	// Model is the parsed document.
	Model struct {
		Info       Info
		Servers    []Server
		Schemas    []*Schema
		Operations []*Operation
	}
)

// Schema returns the named component schema.
func (m *Model) Schema(name string) (*Schema, bool) {
	for _, s := range m.Schemas {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// SuccessResponse returns the first 2xx response, falling back to "default".
func (o *Operation) SuccessResponse() (Response, bool) {
	for _, r := range o.Responses {
		if len(r.Status) == 3 && r.Status[0] == '2' {
			return r, true
		}
	}
	for _, r := range o.Responses {
		if r.Status == "default" {
			return r, true
		}
	}
	return Response{}, false
}

// ParametersIn returns the parameters located in the given place ("path",
// "query", "header" or "cookie").
func (o *Operation) ParametersIn(in string) []Parameter {
	var out []Parameter
	for _, p := range o.Parameters {
		if p.In == in {
			out = append(out, p)
		}
	}
	return out
}

// Walk calls fn for s and every nested schema, depth first. Walking stops
// descending when fn returns false.
func (s *Schema) Walk(fn func(*Schema) bool) {
	if s == nil || !fn(s) {
		return
	}
	s.Items.Walk(fn)
	s.AdditionalProperties.Walk(fn)
	for _, p := range s.Properties {
		p.Schema.Walk(fn)
	}
	for _, group := range [][]*Schema{s.AllOf, s.OneOf, s.AnyOf} {
		for _, child := range group {
			child.Walk(fn)
		}
	}
}
