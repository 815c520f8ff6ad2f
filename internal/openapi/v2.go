// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/spec"

	"github.com/getkin/kin-openapi/openapi2"
)

func parseSwagger2(_ context.Context, doc *spec.Document) (*ir.Model, error) {
	data, err := doc.JSON()
	if err != nil {
		return nil, err
	}
	var t openapi2.T
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, err
	}
	if t.Swagger != "2.0" {
		return nil, fmt.Errorf("swagger version %q is not 2.0", t.Swagger)
	}

	model := &ir.Model{
		Info: ir.Info{
			Title:       t.Info.Title,
			Version:     t.Info.Version,
			Description: t.Info.Description,
		},
	}

	if t.Host != "" {
		scheme := "https"
		if len(t.Schemes) > 0 {
			scheme = t.Schemes[0]
		}
		model.Servers = append(model.Servers, ir.Server{URL: scheme + "://" + t.Host + t.BasePath})
	} else if t.BasePath != "" {
		model.Servers = append(model.Servers, ir.Server{URL: t.BasePath})
	}

	for _, name := range slices.Sorted(maps.Keys(t.Definitions)) {
		s := schemaFromSwagger(t.Definitions[name])
		if s == nil {
			s = &ir.Schema{}
		}
		s.Name = name
		model.Schemas = append(model.Schemas, s)
	}

	for _, path := range slices.Sorted(maps.Keys(t.Paths)) {
		item := t.Paths[path]
		if item == nil {
			continue
		}
		ops := item.Operations()
		pathParams, err := swaggerParameters(&t, item.Parameters)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		for _, method := range methods {
			op, ok := ops[strings.ToUpper(method)]
			if !ok || op == nil {
				continue
			}
			params, err := swaggerParameters(&t, op.Parameters)
			if err != nil {
				return nil, fmt.Errorf("%s %s: %w", strings.ToUpper(method), path, err)
			}
			model.Operations = append(model.Operations, swaggerOperation(method, path, op, mergeParameters(pathParams, params)))
		}
	}
	return model, nil
}

func swaggerOperation(method, path string, op *openapi2.Operation, params []ir.Parameter) *ir.Operation {
	out := &ir.Operation{
		ID:          operationID(op.OperationID, method, path),
		Method:      method,
		Path:        path,
		Summary:     op.Summary,
		Description: op.Description,
		Tags:        op.Tags,
		Deprecated:  op.Deprecated,
	}

	// Swagger 2.0 carries the request body as an "in: body" parameter;
	// formData parameters also make up a body.
	for _, p := range params {
		switch p.In {
		case "body":
			out.HasBody = true
			out.Body = p.Schema
		case "formData":
			out.HasBody = true
			if out.Body == nil {
				out.Body = &ir.Schema{Type: "object"}
			}
			out.Body.Properties = append(out.Body.Properties, ir.Property{Name: p.Name, Schema: p.Schema, Required: p.Required})
		default:
			out.Parameters = append(out.Parameters, p)
		}
	}

	for _, status := range slices.Sorted(maps.Keys(op.Responses)) {
		resp := op.Responses[status]
		if resp == nil {
			continue
		}
		out.Responses = append(out.Responses, ir.Response{
			Status:      status,
			Description: resp.Description,
			Schema:      schemaFromSwagger(resp.Schema),
		})
	}
	sortResponses(out.Responses)
	return out
}

func swaggerParameters(t *openapi2.T, params openapi2.Parameters) ([]ir.Parameter, error) {
	out := make([]ir.Parameter, 0, len(params))
	for _, p := range params {
		if p == nil {
			continue
		}
		if p.Ref != "" {
			shared, ok := t.Parameters[refName(p.Ref)]
			if !ok {
				return nil, fmt.Errorf("unresolved parameter reference %q", p.Ref)
			}
			p = shared
		}
		param := ir.Parameter{Name: p.Name, In: p.In, Required: p.Required}
		if p.Schema != nil {
			param.Schema = schemaFromSwagger(p.Schema)
		} else {
			param.Schema = &ir.Schema{
				Type:   firstType(p.Type.Slice()),
				Format: p.Format,
				Enum:   p.Enum,
				Items:  schemaFromSwagger(p.Items),
			}
		}
		out = append(out, param)
	}
	return out, nil
}

func schemaFromSwagger(ref *openapi2.SchemaRef) *ir.Schema {
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
		Deprecated:  v.Deprecated,
		Enum:        v.Enum,
		Items:       schemaFromSwagger(v.Items),
		Nullable:    v.Extensions["x-nullable"] == true,
	}
	if v.AdditionalProperties.Schema != nil {
		s.AdditionalProperties = schemaFromKin(v.AdditionalProperties.Schema)
	} else if has := v.AdditionalProperties.Has; has != nil && *has {
		s.AdditionalProperties = &ir.Schema{}
	}
	for _, name := range slices.Sorted(maps.Keys(v.Properties)) {
		s.Properties = append(s.Properties, ir.Property{
			Name:     name,
			Schema:   schemaFromSwagger(v.Properties[name]),
			Required: slices.Contains(v.Required, name),
		})
	}
	for _, child := range v.AllOf {
		s.AllOf = append(s.AllOf, schemaFromSwagger(child))
	}
	return s
}

func firstType(types []string) string {
	if len(types) == 0 {
		return ""
	}
	return types[0]
}
