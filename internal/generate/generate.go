// SPDX-License-Identifier: MPL-2.0

// Package generate drives a generation run: it resolves plugins, loads and
// parses the input document, runs plugin handlers, materializes the model
// and assembles the output files.
package generate

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/apigen/apigen/internal/config"
	"github.com/apigen/apigen/internal/diagnostic"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/openapi"
	"github.com/apigen/apigen/internal/plugin"
	"github.com/apigen/apigen/internal/spec"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
)

// CodeLegacyClientSkipped is reported when a config is left to the legacy
// generator.
const CodeLegacyClientSkipped = "legacy_client_skipped"

type (
	// Materializer turns the parsed model into declarations. The default
	// broadcasts model events to the handlers' subscribers.
	Materializer func(ctx context.Context, irctx *ir.Context) error

	// Option configures Run and RunAll.
	Option func(*options)

	options struct {
		materialize Materializer
		logger      *log.Logger
		httpClient  *http.Client
	}

	// Result is the outcome of one run.
	Result struct {
		Config *config.Config
		// Files maps output paths (relative to the output directory) to file
		// contents. It is empty for dry and skipped runs; dry runs still
		// execute every handler.
		Files map[string]string
		// Order is the plugin execution order.
		Order []string
		// Plugins holds the resolved plugin records.
		Plugins     map[string]*plugin.Resolved
		Diagnostics diagnostic.List
		// Dialect is the detected document dialect.
		Dialect openapi.Dialect
		// Skipped is set when the run was left to the legacy generator.
		Skipped bool
	}
)

// WithMaterializer replaces the materialization step.
func WithMaterializer(m Materializer) Option {
	return func(o *options) {
		o.materialize = m
	}
}

// WithLogger sets the logger. Runs log nothing by default.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithHTTPClient sets the client used to fetch remote documents.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) {
		o.httpClient = c
	}
}

func newOptions(opts []Option) *options {
	o := &options{
		materialize: func(ctx context.Context, irctx *ir.Context) error { return irctx.Materialize(ctx) },
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run performs one generation run for cfg. Cancellation is honoured
// between stages, never while plugin handlers run.
func Run(ctx context.Context, cfg *config.Config, registry *plugin.Registry, opts ...Option) (*Result, error) {
	o := newOptions(opts)
	logger := o.logger.With("input", cfg.InputSource())
	result := &Result{Config: cfg, Files: map[string]string{}}

	if cfg.IsLegacyClient() || !cfg.ExperimentalParser {
		reason := fmt.Sprintf("client %q", cfg.Client.Name)
		if !cfg.ExperimentalParser {
			reason = "experimental_parser: false"
		}
		result.Skipped = true
		result.Diagnostics.Add(diagnostic.New(diagnostic.SeverityWarning, CodeLegacyClientSkipped, cfg.InputSource(),
			"%s selects the legacy generator, which is not available; nothing was generated", reason))
		logger.Warn("Skipping legacy generation", "reason", reason)
		return result, nil
	}

	res, err := plugin.ResolveConfig(cfg, registry)
	if err != nil {
		return nil, fmt.Errorf("resolve plugins: %w", err)
	}
	result.Order = res.Order
	result.Plugins = res.Plugins
	result.Diagnostics.Add(res.Diagnostics...)
	logger.Debug("Resolved plugins", "order", res.Order)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation canceled: %w", err)
	}
	doc, err := loadDocument(ctx, cfg, o.httpClient)
	if err != nil {
		return nil, err
	}

	irctx := ir.NewContext(cfg, doc, res)
	if result.Dialect, err = openapi.Detect(doc); err != nil {
		return nil, err
	}
	if err := openapi.Dispatch(ctx, irctx); err != nil {
		return nil, err
	}
	model := irctx.Model()
	logger.Debug("Parsed document", "dialect", result.Dialect,
		"schemas", len(model.Schemas), "operations", len(model.Operations))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation canceled: %w", err)
	}
	if err := Execute(irctx, res); err != nil {
		return nil, err
	}
	if err := o.materialize(ctx, irctx); err != nil {
		return nil, fmt.Errorf("materialize: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("generation canceled: %w", err)
	}
	result.Files = Assemble(irctx)
	logger.Debug("Assembled output", "files", len(result.Files), "dry_run", cfg.DryRun)
	return result, nil
}

// RunAll runs independent configs concurrently. The first failure cancels
// the remaining runs; results are returned in cfgs order.
func RunAll(ctx context.Context, cfgs []*config.Config, registry *plugin.Registry, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(cfgs))
	g, gctx := errgroup.WithContext(ctx)
	for i, cfg := range cfgs {
		g.Go(func() error {
			res, err := Run(gctx, cfg, registry, opts...)
			if err != nil {
				return fmt.Errorf("generate %s: %w", cfg.InputSource(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func loadDocument(ctx context.Context, cfg *config.Config, client *http.Client) (*spec.Document, error) {
	if cfg.Input.Spec != nil {
		return spec.FromObject(cfg.InputSource(), cfg.Input.Spec)
	}
	return spec.Load(ctx, client, cfg.Input.Path)
}
