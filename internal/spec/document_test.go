// SPDX-License-Identifier: MPL-2.0

package spec

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

const petstoreYAML = `openapi: 3.0.3
info:
  title: Petstore
  version: "1.0"
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        200:
          description: ok
`

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		wantErr bool
		version string
	}{
		{"yaml", petstoreYAML, false, "3.0.3"},
		{"json", `{"swagger": "2.0", "info": {"title": "x"}}`, false, ""},
		{"empty", "   \n", true, ""},
		{"scalar", "just a string", true, ""},
		{"list", "- a\n- b\n", true, ""},
		{"malformed", "{not: [valid", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc, err := Parse("test", []byte(tt.raw))
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidDocument) {
					t.Fatalf("expected ErrInvalidDocument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got, _ := doc.String("openapi"); got != tt.version {
				t.Errorf("openapi = %q, want %q", got, tt.version)
			}
		})
	}
}

func TestParseNormalizesIntegerKeys(t *testing.T) {
	t.Parallel()

	doc, err := Parse("petstore.yaml", []byte(petstoreYAML))
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	raw, err := doc.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	var roundTrip map[string]any
	if err := json.Unmarshal(raw, &roundTrip); err != nil {
		t.Fatalf("JSON() produced invalid JSON: %v", err)
	}

	responses := doc.Data["paths"].(map[string]any)["/pets"].(map[string]any)["get"].(map[string]any)["responses"].(map[string]any)
	if _, ok := responses["200"]; !ok {
		t.Errorf("expected string key \"200\", got %v", responses)
	}
}

func TestFromObject(t *testing.T) {
	t.Parallel()

	doc, err := FromObject("inline", map[string]any{
		"swagger": "2.0",
		"paths":   map[any]any{200: "x"},
	})
	if err != nil {
		t.Fatalf("FromObject() error: %v", err)
	}
	if !doc.Has("swagger") {
		t.Error("expected swagger discriminant")
	}
	if len(doc.Raw) == 0 {
		t.Error("expected JSON raw bytes")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "openapi.yaml")
	if err := os.WriteFile(path, []byte(petstoreYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	doc, err := Load(context.Background(), nil, path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if doc.Source != path {
		t.Errorf("Source = %q, want %q", doc.Source, path)
	}

	if _, err := Load(context.Background(), nil, filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRemote(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(petstoreYAML))
	}))
	defer srv.Close()

	doc, err := Load(context.Background(), srv.Client(), srv.URL+"/openapi.yaml")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if v, _ := doc.String("openapi"); v != "3.0.3" {
		t.Errorf("openapi = %q", v)
	}

	_, err = Load(context.Background(), srv.Client(), srv.URL+"/missing")
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) || fetchErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected FetchError with 404, got %v", err)
	}
	if !errors.Is(err, ErrFetch) {
		t.Error("expected errors.Is(err, ErrFetch)")
	}
}

func TestIsRemote(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]bool{
		"https://example.com/openapi.json": true,
		"http://localhost:8080/spec":       true,
		"./openapi.yaml":                   false,
		"/abs/openapi.yaml":                false,
		"file:///abs/openapi.yaml":         false,
		"C:\\specs\\openapi.yaml":          false,
	} {
		if got := IsRemote(in); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", in, got, want)
		}
	}
}
