// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"context"
	"errors"
	"slices"

	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/spec"

	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel/high/base"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
	"github.com/pb33f/libopenapi/orderedmap"
	"gopkg.in/yaml.v3"
)

func parseOpenAPI31(ctx context.Context, doc *spec.Document) (*ir.Model, error) {
	data, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	document, err := libopenapi.NewDocument(data)
	if err != nil {
		return nil, err
	}
	built, errs := document.BuildV3Model()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if built == nil {
		return nil, errors.New("document produced no model")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := &built.Model
	model := &ir.Model{}
	if info := m.Info; info != nil {
		model.Info = ir.Info{Title: info.Title, Version: info.Version, Description: info.Description}
	}
	for _, srv := range m.Servers {
		if srv != nil {
			model.Servers = append(model.Servers, ir.Server{URL: srv.URL, Description: srv.Description})
		}
	}

	if c := m.Components; c != nil && c.Schemas != nil {
		names, schemas := entries(orderedmap.First(c.Schemas))
		slices.Sort(names)
		for _, name := range names {
			s := schemaFromProxy(schemas[name])
			if s == nil {
				s = &ir.Schema{}
			}
			s.Name = name
			model.Schemas = append(model.Schemas, s)
		}
	}

	if m.Paths == nil || m.Paths.PathItems == nil {
		return model, nil
	}
	paths, items := entries(orderedmap.First(m.Paths.PathItems))
	slices.Sort(paths)
	for _, path := range paths {
		item := items[path]
		if item == nil {
			continue
		}
		ops := map[string]*v3.Operation{
			"get": item.Get, "put": item.Put, "post": item.Post, "delete": item.Delete,
			"options": item.Options, "head": item.Head, "patch": item.Patch, "trace": item.Trace,
		}
		pathParams := libParameters(item.Parameters)
		for _, method := range methods {
			if op := ops[method]; op != nil {
				model.Operations = append(model.Operations, libOperation(method, path, op, pathParams))
			}
		}
	}
	return model, nil
}

func libOperation(method, path string, op *v3.Operation, pathParams []ir.Parameter) *ir.Operation {
	out := &ir.Operation{
		ID:          operationID(op.OperationId, method, path),
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  isTrue(op.Deprecated),
		Parameters:  mergeParameters(pathParams, libParameters(op.Parameters)),
	}

	if body := op.RequestBody; body != nil {
		out.HasBody = true
		out.Body = libContentSchema(body.Content)
	}

	if r := op.Responses; r != nil {
		if r.Codes != nil {
			codes, responses := entries(orderedmap.First(r.Codes))
			for _, status := range codes {
				if resp := responses[status]; resp != nil {
					out.Responses = append(out.Responses, ir.Response{
						Status:      status,
						Description: resp.Description,
						Schema:      libContentSchema(resp.Content),
					})
				}
			}
		}
		if resp := r.Default; resp != nil {
			out.Responses = append(out.Responses, ir.Response{
				Status:      "default",
				Description: resp.Description,
				Schema:      libContentSchema(resp.Content),
			})
		}
		sortResponses(out.Responses)
	}
	return out
}

func libParameters(params []*v3.Parameter) []ir.Parameter {
	out := make([]ir.Parameter, 0, len(params))
	for _, p := range params {
		if p == nil {
			continue
		}
		schema := schemaFromProxy(p.Schema)
		if schema == nil && p.Content != nil {
			schema = libContentSchema(p.Content)
		}
		out = append(out, ir.Parameter{Name: p.Name, In: p.In, Required: isTrue(p.Required), Schema: schema})
	}
	return out
}

func libContentSchema(content *orderedmap.Map[string, *v3.MediaType]) *ir.Schema {
	if content == nil {
		return nil
	}
	types, media := entries(orderedmap.First(content))
	mt := media[jsonMediaType(types)]
	if mt == nil {
		return nil
	}
	return schemaFromProxy(mt.Schema)
}

// schemaFromProxy converts a libopenapi schema. Component references stay
// references; 3.1 type arrays and const are folded into the IR's nullable,
// oneOf and enum forms.
func schemaFromProxy(proxy *base.SchemaProxy) *ir.Schema {
	if proxy == nil {
		return nil
	}
	if proxy.IsReference() {
		return &ir.Schema{Ref: refName(proxy.GetReference())}
	}
	v := proxy.Schema()
	if v == nil {
		return nil
	}

	s := &ir.Schema{
		Format:      v.Format,
		Description: v.Description,
		Nullable:    isTrue(v.Nullable),
		Deprecated:  isTrue(v.Deprecated),
	}

	var types []string
	for _, name := range v.Type {
		if name == "null" {
			s.Nullable = true
			continue
		}
		types = append(types, name)
	}
	if len(types) == 1 {
		s.Type = types[0]
	} else {
		for _, name := range types {
			s.OneOf = append(s.OneOf, &ir.Schema{Type: name})
		}
	}

	for _, node := range v.Enum {
		s.Enum = append(s.Enum, nodeValue(node))
	}
	if v.Const != nil {
		s.Enum = []any{nodeValue(v.Const)}
	}

	if v.Items != nil && v.Items.IsA() {
		s.Items = schemaFromProxy(v.Items.A)
	}
	if ap := v.AdditionalProperties; ap != nil {
		if ap.IsA() {
			s.AdditionalProperties = schemaFromProxy(ap.A)
		} else if ap.B {
			s.AdditionalProperties = &ir.Schema{}
		}
	}

	if v.Properties != nil {
		names, props := entries(orderedmap.First(v.Properties))
		for _, name := range names {
			s.Properties = append(s.Properties, ir.Property{
				Name:     name,
				Schema:   schemaFromProxy(props[name]),
				Required: slices.Contains(v.Required, name),
			})
		}
	}

	for _, group := range []struct {
		proxies []*base.SchemaProxy
		dst     *[]*ir.Schema
	}{
		{v.AllOf, &s.AllOf},
		{v.OneOf, &s.OneOf},
		{v.AnyOf, &s.AnyOf},
	} {
		for _, child := range group.proxies {
			*group.dst = append(*group.dst, schemaFromProxy(child))
		}
	}
	return s
}

// entries walks an ordered map from its first pair, returning the keys in
// document order and the values by key.
func entries[V any](first orderedmap.Pair[string, V]) ([]string, map[string]V) {
	var keys []string
	values := make(map[string]V)
	for pair := first; pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key())
		values[pair.Key()] = pair.Value()
	}
	return keys, values
}

func nodeValue(node *yaml.Node) any {
	if node == nil {
		return nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return node.Value
	}
	return v
}

func isTrue(b *bool) bool {
	return b != nil && *b
}
