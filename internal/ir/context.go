// SPDX-License-Identifier: MPL-2.0

// Package ir holds the intermediate representation shared by every plugin
// of a generation run: the normalized config, the raw document, the parsed
// model, the file registry and the event bus that turns the model into
// declarations.
//
// A Context is single-use and owned by one goroutine; nothing in it is
// synchronized.
package ir

import (
	"context"
	"errors"
	"fmt"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/spec"
)

const (
	// EventBefore fires once before the model is walked.
	EventBefore Event = "before"
	// EventSchema fires once per component schema.
	EventSchema Event = "schema"
	// EventOperation fires once per operation.
	EventOperation Event = "operation"
	// EventServer fires once per server.
	EventServer Event = "server"
	// EventAfter fires once after the model is walked.
	EventAfter Event = "after"
)

// ErrInvalidEvent is returned when subscribing to an unknown event.
var ErrInvalidEvent = errors.New("invalid event")

type (
	// Event names a materialization phase.
	Event string

	// Payload is what a listener receives. Only the field matching Event
	// is set.
	Payload struct {
		Event     Event
		Schema    *Schema
		Operation *Operation
		Server    *Server
	}

	// Listener handles one event. A non-nil error aborts materialization.
	Listener func(Payload) error

	// PluginSet is the resolved plugin set as seen by handlers.
	PluginSet interface {
		// Names returns the plugin names in execution order.
		Names() []string
		// Options returns the merged options of a resolved plugin.
		Options(name string) (map[string]any, bool)
	}

	// Context is the state of one generation run.
	Context struct {
		config    *config.Config
		spec      *spec.Document
		model     *Model
		plugins   PluginSet
		files     map[string]*File
		fileOrder []string
		listeners map[Event][]Listener
	}
)

// IsValid reports whether e is a known event.
func (e Event) IsValid() (bool, []error) {
	switch e {
	case EventBefore, EventSchema, EventOperation, EventServer, EventAfter:
		return true, nil
	default:
		return false, []error{fmt.Errorf("%w: %q", ErrInvalidEvent, e)}
	}
}

// NewContext creates the context for one run. The model starts empty and is
// filled by the dialect parser.
func NewContext(cfg *config.Config, doc *spec.Document, plugins PluginSet) *Context {
	return &Context{
		config:    cfg,
		spec:      doc,
		model:     &Model{},
		plugins:   plugins,
		files:     make(map[string]*File),
		listeners: make(map[Event][]Listener),
	}
}

// Config returns the normalized configuration.
func (c *Context) Config() *config.Config { return c.config }

// Spec returns the raw document.
func (c *Context) Spec() *spec.Document { return c.spec }

// Model returns the parsed model.
func (c *Context) Model() *Model { return c.model }

// Plugins returns the resolved plugin set.
func (c *Context) Plugins() PluginSet { return c.plugins }

// CreateFile registers a file, or returns the existing file with the same
// id. The spec of a repeated call is ignored.
func (c *Context) CreateFile(spec FileSpec) *File {
	if f, ok := c.files[spec.ID]; ok {
		return f
	}
	f := newFile(spec)
	c.files[spec.ID] = f
	c.fileOrder = append(c.fileOrder, spec.ID)
	return f
}

// File looks up a file by id.
func (c *Context) File(id string) (*File, bool) {
	f, ok := c.files[id]
	return f, ok
}

// Files returns every file in creation order.
func (c *Context) Files() []*File {
	out := make([]*File, len(c.fileOrder))
	for i, id := range c.fileOrder {
		out[i] = c.files[id]
	}
	return out
}

// Subscribe registers a listener. Listeners of an event run in subscription
// order.
func (c *Context) Subscribe(event Event, listener Listener) error {
	if valid, errs := event.IsValid(); !valid {
		return errs[0]
	}
	c.listeners[event] = append(c.listeners[event], listener)
	return nil
}

// Materialize walks the model and broadcasts before, schema, operation,
// server and after events. The context is checked between phases.
func (c *Context) Materialize(ctx context.Context) error {
	phases := []struct {
		event    Event
		payloads func() []Payload
	}{
		{EventBefore, func() []Payload { return []Payload{{Event: EventBefore}} }},
		{EventSchema, func() []Payload {
			out := make([]Payload, len(c.model.Schemas))
			for i, s := range c.model.Schemas {
				out[i] = Payload{Event: EventSchema, Schema: s}
			}
			return out
		}},
		{EventOperation, func() []Payload {
			out := make([]Payload, len(c.model.Operations))
			for i, op := range c.model.Operations {
				out[i] = Payload{Event: EventOperation, Operation: op}
			}
			return out
		}},
		{EventServer, func() []Payload {
			out := make([]Payload, len(c.model.Servers))
			for i := range c.model.Servers {
				out[i] = Payload{Event: EventServer, Server: &c.model.Servers[i]}
			}
			return out
		}},
		{EventAfter, func() []Payload { return []Payload{{Event: EventAfter}} }},
	}

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("materialize canceled: %w", err)
		}
		listeners := c.listeners[phase.event]
		if len(listeners) == 0 {
			continue
		}
		for _, payload := range phase.payloads() {
			for _, listener := range listeners {
				if err := listener(payload); err != nil {
					return fmt.Errorf("%s listener: %w", phase.event, err)
				}
			}
		}
	}
	return nil
}
