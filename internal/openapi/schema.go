// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"slices"
	"strings"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
)

// methods lists HTTP methods in path item field order. Operations of a path
// are emitted in this order.
var methods = []string{"get", "put", "post", "delete", "options", "head", "patch", "trace"}

// refName returns the last segment of a local JSON pointer reference.
func refName(ref string) string {
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

// operationID returns id, or a camelCase name built from the method and
// path when the document has none.
func operationID(id, method, path string) string {
	if id != "" {
		return id
	}
	return compiler.CamelCase(method + " " + strings.NewReplacer("{", " by ", "}", " ").Replace(path))
}

// mergeParameters overlays operation parameters on path-level ones; a
// parameter is identified by name and location.
func mergeParameters(pathLevel, opLevel []ir.Parameter) []ir.Parameter {
	out := slices.Clone(pathLevel)
	for _, p := range opLevel {
		i := slices.IndexFunc(out, func(q ir.Parameter) bool { return q.Name == p.Name && q.In == p.In })
		if i >= 0 {
			out[i] = p
			continue
		}
		out = append(out, p)
	}
	return out
}

func sortResponses(responses []ir.Response) {
	slices.SortFunc(responses, func(a, b ir.Response) int { return strings.Compare(a.Status, b.Status) })
}

// jsonMediaType picks the media type to read a body schema from: JSON when
// offered, otherwise the first media type by name.
func jsonMediaType(types []string) string {
	if len(types) == 0 {
		return ""
	}
	for _, t := range types {
		if t == "application/json" {
			return t
		}
	}
	for _, t := range types {
		if strings.HasSuffix(t, "+json") {
			return t
		}
	}
	return slices.Min(types)
}
