// SPDX-License-Identifier: MPL-2.0

package openapi

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/spec"
)

const petstore30 = `
openapi: 3.0.3
info:
  title: Petstore
  version: 1.0.0
servers:
  - url: https://petstore.example.com/v1
paths:
  /pets/{petId}:
    parameters:
      - name: petId
        in: path
        required: true
        schema:
          type: string
    get:
      operationId: showPetById
      tags: [pets]
      responses:
        "200":
          description: A pet
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Pet"
    delete:
      responses:
        "204":
          description: Deleted
  /pets:
    post:
      operationId: createPet
      requestBody:
        content:
          application/json:
            schema:
              $ref: "#/components/schemas/Pet"
      responses:
        default:
          description: Error
        "201":
          description: Created
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
            format: int32
      responses:
        "200":
          description: Pets
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Pet"
components:
  schemas:
    Pet:
      type: object
      required: [id, name]
      properties:
        name:
          type: string
        id:
          type: integer
          format: int64
        born:
          type: string
          format: date-time
          nullable: true
    Error:
      type: object
      properties:
        message:
          type: string
`

const petstore20 = `
swagger: "2.0"
openapi: "3.1.0"
info:
  title: Legacy
  version: "2"
host: api.example.com
basePath: /v2
schemes: [http]
paths:
  /pets:
    post:
      operationId: addPet
      parameters:
        - name: body
          in: body
          required: true
          schema:
            $ref: "#/definitions/Pet"
        - $ref: "#/parameters/trace"
      responses:
        "200":
          description: ok
          schema:
            $ref: "#/definitions/Pet"
parameters:
  trace:
    name: X-Trace
    in: header
    type: string
definitions:
  Pet:
    type: object
    required: [name]
    properties:
      name:
        type: string
      tags:
        type: array
        items:
          type: string
`

const petstore31 = `
openapi: 3.1.0
info:
  title: Modern
  version: "3"
paths:
  /pets:
    get:
      summary: List pets
      parameters:
        - $ref: "#/components/parameters/Limit"
      responses:
        "200":
          $ref: "#/components/responses/PetList"
        default:
          description: unexpected error
components:
  parameters:
    Limit:
      name: limit
      in: query
      schema:
        type: integer
  responses:
    PetList:
      description: pets
      content:
        application/json:
          schema:
            type: array
            items:
              $ref: "#/components/schemas/Pet"
  schemas:
    Pet:
      type: object
      properties:
        kind:
          const: cat
        nickname:
          type: [string, "null"]
        status:
          type: string
          enum: [available, sold]
    Base:
      type: object
    Mixed:
      type: [integer, string]
      additionalProperties: true
      allOf:
        - $ref: "#/components/schemas/Base"
`

func mustParse(t *testing.T, source string) *spec.Document {
	t.Helper()
	doc, err := spec.Parse("test.yaml", []byte(source))
	if err != nil {
		t.Fatalf("spec.Parse() error: %v", err)
	}
	return doc
}

func TestDetect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		data        map[string]any
		want        Dialect
		wantVersion string
		wantErr     bool
	}{
		{"swagger wins over openapi", map[string]any{"swagger": "2.0", "openapi": "3.1.0"}, DialectSwagger2, "", false},
		{"3.0.0", map[string]any{"openapi": "3.0.0"}, DialectOpenAPI30, "", false},
		{"3.0.4", map[string]any{"openapi": "3.0.4"}, DialectOpenAPI30, "", false},
		{"3.1.0", map[string]any{"openapi": "3.1.0"}, DialectOpenAPI31, "", false},
		{"3.1.1", map[string]any{"openapi": "3.1.1"}, DialectOpenAPI31, "", false},
		{"3.0.5", map[string]any{"openapi": "3.0.5"}, "", "3.0.5", true},
		{"3.2.0", map[string]any{"openapi": "3.2.0"}, "", "3.2.0", true},
		{"non-string", map[string]any{"openapi": 3.1}, "", "3.1", true},
		{"missing", map[string]any{"info": map[string]any{}}, "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := spec.FromObject("inline", tt.data)
			if err != nil {
				t.Fatal(err)
			}
			got, err := Detect(doc)
			if tt.wantErr {
				var unsupported *UnsupportedSpecVersionError
				if !errors.As(err, &unsupported) {
					t.Fatalf("expected UnsupportedSpecVersionError, got %v", err)
				}
				if unsupported.Version != tt.wantVersion {
					t.Errorf("Version = %q, want %q", unsupported.Version, tt.wantVersion)
				}
				if !errors.Is(err, ErrUnsupportedSpecVersion) || !errors.Is(err, ErrParse) {
					t.Errorf("error should match ErrUnsupportedSpecVersion and ErrParse")
				}
				return
			}
			if err != nil {
				t.Fatalf("Detect() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDispatch_OpenAPI30(t *testing.T) {
	t.Parallel()

	irctx := ir.NewContext(nil, mustParse(t, petstore30), nil)
	if err := Dispatch(context.Background(), irctx); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	m := irctx.Model()

	if m.Info.Title != "Petstore" || len(m.Servers) != 1 || m.Servers[0].URL != "https://petstore.example.com/v1" {
		t.Errorf("info/servers = %+v %+v", m.Info, m.Servers)
	}

	var names []string
	for _, s := range m.Schemas {
		names = append(names, s.Name)
	}
	if !slices.Equal(names, []string{"Error", "Pet"}) {
		t.Errorf("schemas = %v, want sorted names", names)
	}

	var ids []string
	for _, op := range m.Operations {
		ids = append(ids, op.Method+" "+op.ID)
	}
	want := []string{"get listPets", "post createPet", "get showPetById", "delete deletePetsByPetId"}
	if !slices.Equal(ids, want) {
		t.Errorf("operations = %v\nwant %v", ids, want)
	}

	pet, _ := m.Schema("Pet")
	if len(pet.Properties) != 3 || pet.Properties[0].Name != "born" || !pet.Properties[0].Schema.Nullable {
		t.Errorf("Pet properties = %+v", pet.Properties)
	}
	if !pet.Properties[1].Required || pet.Properties[0].Required {
		t.Error("required flags not applied")
	}

	create := m.Operations[1]
	if !create.HasBody || create.Body == nil || create.Body.Ref != "Pet" {
		t.Errorf("createPet body = %+v", create.Body)
	}
	if r, ok := create.SuccessResponse(); !ok || r.Status != "201" {
		t.Errorf("createPet success response = %+v", r)
	}

	show := m.Operations[2]
	if len(show.Parameters) != 1 || show.Parameters[0].Name != "petId" || !show.Parameters[0].Required {
		t.Errorf("path-level parameters not inherited: %+v", show.Parameters)
	}
}

func TestDispatch_Swagger2(t *testing.T) {
	t.Parallel()

	irctx := ir.NewContext(nil, mustParse(t, petstore20), nil)
	if err := Dispatch(context.Background(), irctx); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	m := irctx.Model()
	if len(m.Servers) != 1 || m.Servers[0].URL != "http://api.example.com/v2" {
		t.Errorf("servers = %+v", m.Servers)
	}
	if len(m.Operations) != 1 {
		t.Fatalf("operations = %+v", m.Operations)
	}
	op := m.Operations[0]
	if !op.HasBody || op.Body.Ref != "Pet" {
		t.Errorf("body = %+v", op.Body)
	}
	if len(op.Parameters) != 1 || op.Parameters[0].Name != "X-Trace" || op.Parameters[0].Schema.Type != "string" {
		t.Errorf("parameters = %+v", op.Parameters)
	}
	pet, ok := m.Schema("Pet")
	if !ok || len(pet.Properties) != 2 || pet.Properties[1].Schema.Items.Type != "string" {
		t.Errorf("Pet = %+v", pet)
	}
}

func TestDispatch_OpenAPI31(t *testing.T) {
	t.Parallel()

	irctx := ir.NewContext(nil, mustParse(t, petstore31), nil)
	if err := Dispatch(context.Background(), irctx); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	m := irctx.Model()
	if m.Info.Title != "Modern" {
		t.Errorf("info = %+v", m.Info)
	}
	if len(m.Operations) != 1 {
		t.Fatalf("operations = %+v", m.Operations)
	}
	op := m.Operations[0]
	if op.ID != "getPets" {
		t.Errorf("generated operation id = %q", op.ID)
	}
	if len(op.Parameters) != 1 || op.Parameters[0].Name != "limit" {
		t.Errorf("referenced parameter not resolved: %+v", op.Parameters)
	}
	if r, ok := op.SuccessResponse(); !ok || r.Schema == nil || r.Schema.Items.Ref != "Pet" {
		t.Errorf("referenced response not resolved: %+v", r)
	}

	pet, _ := m.Schema("Pet")
	kind, nickname := pet.Properties[0].Schema, pet.Properties[1].Schema
	if len(kind.Enum) != 1 || kind.Enum[0] != "cat" {
		t.Errorf("const not mapped to enum: %+v", kind)
	}
	if nickname.Type != "string" || !nickname.Nullable {
		t.Errorf("type array not mapped: %+v", nickname)
	}
}

func TestDispatch_FailureLeavesModelUntouched(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		source   string
		sentinel error
	}{
		{"unsupported version", "openapi: 3.2.0\ninfo: {title: x, version: '1'}\npaths: {}\n", ErrUnsupportedSpecVersion},
		{"no discriminant", "info: {title: x}\n", ErrUnsupportedSpecVersion},
		{"invalid 3.0 document", "openapi: 3.0.1\npaths: {}\n", ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			irctx := ir.NewContext(nil, mustParse(t, tt.source), nil)
			sentinel := &ir.Schema{Name: "Existing"}
			irctx.Model().Schemas = []*ir.Schema{sentinel}

			err := Dispatch(context.Background(), irctx)
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("expected %v, got %v", tt.sentinel, err)
			}
			m := irctx.Model()
			if len(m.Schemas) != 1 || m.Schemas[0] != sentinel || len(m.Operations) != 0 {
				t.Errorf("model mutated on failure: %+v", m)
			}
		})
	}
}

func TestOperationID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id, method, path, want string
	}{
		{"explicit", "get", "/x", "explicit"},
		{"", "get", "/pets", "getPets"},
		{"", "delete", "/pets/{petId}", "deletePetsByPetId"},
		{"", "post", "/v1/user-groups", "postV1UserGroups"},
	}
	for _, tt := range tests {
		if got := operationID(tt.id, tt.method, tt.path); got != tt.want {
			t.Errorf("operationID(%q, %q, %q) = %q, want %q", tt.id, tt.method, tt.path, got, tt.want)
		}
	}
}

func TestDispatch_OpenAPI31Schemas(t *testing.T) {
	t.Parallel()

	irctx := ir.NewContext(nil, mustParse(t, petstore31), nil)
	if err := Dispatch(context.Background(), irctx); err != nil {
		t.Fatalf("Dispatch() error: %v", err)
	}
	m := irctx.Model()

	var names []string
	for _, s := range m.Schemas {
		names = append(names, s.Name)
	}
	if !slices.Equal(names, []string{"Base", "Mixed", "Pet"}) {
		t.Errorf("schema names = %v", names)
	}

	mixed, _ := m.Schema("Mixed")
	if mixed.Type != "" || len(mixed.OneOf) != 2 || mixed.OneOf[1].Type != "string" {
		t.Errorf("multi-type = %+v", mixed)
	}
	if mixed.AdditionalProperties == nil {
		t.Error("additionalProperties: true should yield an empty schema")
	}
	if len(mixed.AllOf) != 1 || mixed.AllOf[0].Ref != "Base" {
		t.Errorf("allOf = %+v", mixed.AllOf)
	}

	pet, _ := m.Schema("Pet")
	status := pet.Properties[2].Schema
	if !slices.Equal(status.Enum, []any{"available", "sold"}) {
		t.Errorf("enum = %v", status.Enum)
	}

	op := m.Operations[0]
	if len(op.Responses) != 2 || op.Responses[1].Status != "default" || op.Responses[1].Description != "unexpected error" {
		t.Errorf("responses = %+v", op.Responses)
	}
}
