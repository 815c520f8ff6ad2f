// SPDX-License-Identifier: MPL-2.0

// Package openapi detects the dialect of an API description and parses it
// into the IR model. Swagger 2.0 and OpenAPI 3.0 are parsed with
// kin-openapi; OpenAPI 3.1 is parsed with libopenapi.
package openapi

import (
	"context"
	"fmt"
	"regexp"

	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/spec"
)

const (
	// DialectSwagger2 is Swagger 2.0.
	DialectSwagger2 Dialect = "2.0"
	// DialectOpenAPI30 is OpenAPI 3.0.x.
	DialectOpenAPI30 Dialect = "3.0"
	// DialectOpenAPI31 is OpenAPI 3.1.x.
	DialectOpenAPI31 Dialect = "3.1"
)

var (
	openAPI30 = regexp.MustCompile(`^3\.0\.[0-4]$`)
	openAPI31 = regexp.MustCompile(`^3\.1\.[01]$`)

	parsers = map[Dialect]parseFunc{
		DialectSwagger2:  parseSwagger2,
		DialectOpenAPI30: parseOpenAPI30,
		DialectOpenAPI31: parseOpenAPI31,
	}
)

type (
	// Dialect identifies a supported document dialect.
	Dialect string

	parseFunc func(ctx context.Context, doc *spec.Document) (*ir.Model, error)
)

// String returns a display name for the dialect.
func (d Dialect) String() string {
	if d == DialectSwagger2 {
		return "Swagger 2.0"
	}
	return "OpenAPI " + string(d)
}

// Detect returns the dialect of doc. A top-level swagger key selects the
// legacy parser whatever openapi says.
func Detect(doc *spec.Document) (Dialect, error) {
	if doc.Has("swagger") {
		return DialectSwagger2, nil
	}

	raw, ok := doc.Data["openapi"]
	if !ok {
		return "", &UnsupportedSpecVersionError{}
	}
	version, isString := raw.(string)
	if !isString {
		return "", &UnsupportedSpecVersionError{Version: fmt.Sprint(raw)}
	}
	switch {
	case openAPI30.MatchString(version):
		return DialectOpenAPI30, nil
	case openAPI31.MatchString(version):
		return DialectOpenAPI31, nil
	default:
		return "", &UnsupportedSpecVersionError{Version: version}
	}
}

// Dispatch parses the context's document with the parser for its dialect
// and installs the result as the context's model. The model is untouched
// when detection or parsing fails.
func Dispatch(ctx context.Context, irctx *ir.Context) error {
	doc := irctx.Spec()
	dialect, err := Detect(doc)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("parse canceled: %w", err)
	}

	model, err := parsers[dialect](ctx, doc)
	if err != nil {
		return &ParseError{Dialect: dialect, Source: doc.Source, Cause: err}
	}
	*irctx.Model() = *model
	return nil
}
