// SPDX-License-Identifier: MPL-2.0

// Package spec loads raw API description documents. A Document keeps the
// original bytes for dialect parsers that re-read them and a generic decoded
// object for discriminant inspection. JSON and YAML are both accepted.
package spec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MaxDocumentSize bounds how much of a document is read (32MB).
const MaxDocumentSize int64 = 32 * 1024 * 1024

var (
	// ErrInvalidDocument is returned when the bytes are not a JSON/YAML object.
	ErrInvalidDocument = errors.New("invalid spec document")
	// ErrFetch is returned when a remote document cannot be retrieved.
	ErrFetch = errors.New("failed to fetch spec document")
)

type (
	// Document is a decoded API description.
	Document struct {
		// Source is the path or URL the document was read from, or "inline".
		Source string
		// Raw holds the bytes as read. Inline documents carry their JSON form.
		Raw []byte
		// Data is the decoded top-level object with string keys throughout.
		Data map[string]any
	}

	// FetchError is returned when a remote document cannot be retrieved.
	// It wraps ErrFetch for errors.Is() compatibility.
	FetchError struct {
		URL        string
		StatusCode int
		Cause      error
	}
)

func (e *FetchError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
	}
	return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
}

// Unwrap returns ErrFetch and the underlying cause.
func (e *FetchError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrFetch, e.Cause}
	}
	return []error{ErrFetch}
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	u, err := url.Parse(source)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Load reads and decodes the document at source, which is either a local
// path or an http(s) URL.
func Load(ctx context.Context, client *http.Client, source string) (*Document, error) {
	var (
		raw []byte
		err error
	)
	if IsRemote(source) {
		raw, err = fetch(ctx, client, source)
	} else {
		raw, err = readFile(source)
	}
	if err != nil {
		return nil, err
	}
	return Parse(source, raw)
}

// Parse decodes raw JSON or YAML bytes.
func Parse(source string, raw []byte) (*Document, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, fmt.Errorf("%w: %s: empty document", ErrInvalidDocument, source)
	}

	var decoded any
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, source, err)
	}
	data, ok := normalize(decoded).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s: top level must be an object", ErrInvalidDocument, source)
	}
	return &Document{Source: source, Raw: raw, Data: data}, nil
}

// FromObject wraps an already-decoded document, such as one given inline in
// configuration.
func FromObject(source string, data map[string]any) (*Document, error) {
	normalized, _ := normalize(data).(map[string]any)
	raw, err := json.Marshal(normalized)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDocument, source, err)
	}
	return &Document{Source: source, Raw: raw, Data: normalized}, nil
}

// JSON returns the document encoded as JSON. YAML-only constructs such as
// non-string keys have already been normalized away.
func (d *Document) JSON() ([]byte, error) {
	return json.Marshal(d.Data)
}

// String returns the top-level field key when it holds a string.
func (d *Document) String(key string) (string, bool) {
	v, ok := d.Data[key].(string)
	return v, ok
}

// Has reports whether the top-level field key is present.
func (d *Document) Has(key string) bool {
	_, ok := d.Data[key]
	return ok
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spec document: %w", err)
	}
	defer f.Close()
	return readLimited(f, path)
}

func fetch(ctx context.Context, client *http.Client, source string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, &FetchError{URL: source, Cause: err}
	}
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, */*;q=0.8")

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: source, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{URL: source, StatusCode: resp.StatusCode}
	}
	return readLimited(resp.Body, source)
}

func readLimited(r io.Reader, name string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return nil, fmt.Errorf("read spec document %s: %w", name, err)
	}
	if int64(len(data)) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidDocument, name, MaxDocumentSize)
	}
	return data, nil
}

// normalize converts YAML mappings with non-string keys (e.g. response codes
// written as bare integers) into map[string]any, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = normalize(val)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = normalize(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = normalize(val)
		}
		return out
	default:
		return v
	}
}
