// SPDX-License-Identifier: MPL-2.0

package plugins

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

// Values of the schemas plugin's "type" option.
const (
	// SchemaTypeJSON emits plain JSON schemas.
	SchemaTypeJSON = "json"
	// SchemaTypeForm also keeps descriptions and deprecation markers, which
	// form builders display.
	SchemaTypeForm = "form"
)

func schemasPlugin() plugin.Descriptor {
	return plugin.Descriptor{
		Name:        Schemas,
		Description: "JSON schema constants for component schemas",
		Options:     plugin.Options{"type": SchemaTypeJSON},
		Handler:     handleSchemas,
	}
}

func handleSchemas(ctx *ir.Context, p *plugin.Resolved) error {
	kind := p.StringOption("type", SchemaTypeJSON)
	if kind != SchemaTypeJSON && kind != SchemaTypeForm {
		return fmt.Errorf("option type: unsupported value %q", kind)
	}

	m := newModule(newOutputFile(ctx, "schemas", "schemas.gen"))
	if err := ctx.Subscribe(ir.EventSchema, func(ev ir.Payload) error {
		value, err := json.MarshalIndent(schemaDocument(ev.Schema, kind == SchemaTypeForm), "", "  ")
		if err != nil {
			return fmt.Errorf("schema %s: %w", ev.Schema.Name, err)
		}
		m.add(compiler.Const{
			Name:    typeName(ev.Schema.Name) + "Schema",
			Value:   string(value),
			Export:  true,
			AsConst: true,
		})
		return nil
	}); err != nil {
		return err
	}
	return m.onAfter(ctx)
}

// schemaDocument converts s back to a JSON schema object. Component
// references point at #/components/schemas whatever the input dialect.
func schemaDocument(s *ir.Schema, form bool) map[string]any {
	out := map[string]any{}
	if s == nil {
		return out
	}
	if s.Ref != "" {
		out["$ref"] = "#/components/schemas/" + s.Ref
		return out
	}
	if s.Type != "" {
		out["type"] = s.Type
	}
	if s.Format != "" {
		out["format"] = s.Format
	}
	if s.Nullable {
		out["nullable"] = true
	}
	if len(s.Enum) > 0 {
		out["enum"] = slices.Clone(s.Enum)
	}
	if form {
		if s.Description != "" {
			out["description"] = s.Description
		}
		if s.Deprecated {
			out["deprecated"] = true
		}
	}
	if s.Items != nil {
		out["items"] = schemaDocument(s.Items, form)
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		var required []string
		for _, p := range s.Properties {
			props[p.Name] = schemaDocument(p.Schema, form)
			if p.Required {
				required = append(required, p.Name)
			}
		}
		out["properties"] = props
		if len(required) > 0 {
			out["required"] = required
		}
	}
	if s.AdditionalProperties != nil {
		out["additionalProperties"] = schemaDocument(s.AdditionalProperties, form)
	}
	for key, group := range map[string][]*ir.Schema{"allOf": s.AllOf, "oneOf": s.OneOf, "anyOf": s.AnyOf} {
		if len(group) == 0 {
			continue
		}
		docs := make([]any, len(group))
		for i, child := range group {
			docs[i] = schemaDocument(child, form)
		}
		out[key] = docs
	}
	return out
}
