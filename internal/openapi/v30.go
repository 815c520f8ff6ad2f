// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/spec"

	"github.com/getkin/kin-openapi/openapi3"
)

func parseOpenAPI30(ctx context.Context, doc *spec.Document) (*ir.Model, error) {
	data, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	loader.Context = ctx
	t, err := loader.LoadFromData(data)
	if err != nil {
		return nil, err
	}
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	model := &ir.Model{}
	if t.Info != nil {
		model.Info = ir.Info{Title: t.Info.Title, Version: t.Info.Version, Description: t.Info.Description}
	}
	for _, srv := range t.Servers {
		if srv != nil {
			model.Servers = append(model.Servers, ir.Server{URL: srv.URL, Description: srv.Description})
		}
	}

	if t.Components != nil {
		for _, name := range slices.Sorted(maps.Keys(t.Components.Schemas)) {
			s := schemaFromKin(t.Components.Schemas[name])
			if s == nil {
				s = &ir.Schema{}
			}
			s.Name = name
			model.Schemas = append(model.Schemas, s)
		}
	}

	if t.Paths == nil {
		return model, nil
	}
	paths := t.Paths.Map()
	for _, path := range slices.Sorted(maps.Keys(paths)) {
		item := paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		pathParams := kinParameters(item.Parameters)
		for _, method := range methods {
			op, ok := ops[strings.ToUpper(method)]
			if !ok || op == nil {
				continue
			}
			model.Operations = append(model.Operations, kinOperation(method, path, op, pathParams))
		}
	}
	return model, nil
}

func kinOperation(method, path string, op *openapi3.Operation, pathParams []ir.Parameter) *ir.Operation {
	out := &ir.Operation{
		ID:          operationID(op.OperationID, method, path),
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
		Parameters:  mergeParameters(pathParams, kinParameters(op.Parameters)),
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		out.HasBody = true
		out.Body = kinContentSchema(op.RequestBody.Value.Content)
	}

	if op.Responses != nil {
		responses := op.Responses.Map()
		for _, status := range slices.Sorted(maps.Keys(responses)) {
			ref := responses[status]
			if ref == nil || ref.Value == nil {
				continue
			}
			resp := ir.Response{Status: status, Schema: kinContentSchema(ref.Value.Content)}
			if ref.Value.Description != nil {
				resp.Description = *ref.Value.Description
			}
			out.Responses = append(out.Responses, resp)
		}
		sortResponses(out.Responses)
	}
	return out
}

func kinParameters(params openapi3.Parameters) []ir.Parameter {
	out := make([]ir.Parameter, 0, len(params))
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		p := ref.Value
		schema := schemaFromKin(p.Schema)
		if schema == nil {
			schema = kinContentSchema(p.Content)
		}
		out = append(out, ir.Parameter{Name: p.Name, In: p.In, Required: p.Required, Schema: schema})
	}
	return out
}

func kinContentSchema(content openapi3.Content) *ir.Schema {
	media := content[jsonMediaType(slices.Collect(maps.Keys(content)))]
	if media == nil {
		return nil
	}
	return schemaFromKin(media.Schema)
}

func schemaFromKin(ref *openapi3.SchemaRef) *ir.Schema {
	if ref == nil {
		return nil
	}
	if ref.Ref != "" {
		return &ir.Schema{Ref: refName(ref.Ref)}
	}
	v := ref.Value
	if v == nil {
		return nil
	}

	s := &ir.Schema{
		Type:        firstType(v.Type.Slice()),
		Format:      v.Format,
		Description: v.Description,
		Nullable:    v.Nullable,
		Deprecated:  v.Deprecated,
		Enum:        v.Enum,
		Items:       schemaFromKin(v.Items),
	}
	if v.AdditionalProperties.Schema != nil {
		s.AdditionalProperties = schemaFromKin(v.AdditionalProperties.Schema)
	} else if has := v.AdditionalProperties.Has; has != nil && *has {
		s.AdditionalProperties = &ir.Schema{}
	}
	for _, name := range slices.Sorted(maps.Keys(v.Properties)) {
		s.Properties = append(s.Properties, ir.Property{
			Name:     name,
			Schema:   schemaFromKin(v.Properties[name]),
			Required: slices.Contains(v.Required, name),
		})
	}
	for _, group := range []struct {
		refs openapi3.SchemaRefs
		dst  *[]*ir.Schema
	}{
		{v.AllOf, &s.AllOf},
		{v.OneOf, &s.OneOf},
		{v.AnyOf, &s.AnyOf},
	} {
		for _, child := range group.refs {
			*group.dst = append(*group.dst, schemaFromKin(child))
		}
	}
	return s
}
