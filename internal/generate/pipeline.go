// SPDX-License-Identifier: MPL-2.0

package generate

import (
	"errors"
	"fmt"

	"github.com/apigen/apigen/internal/compiler"
	"github.com/apigen/apigen/internal/ir"
	"github.com/apigen/apigen/internal/plugin"
)

const (
	// IndexFileID is the registry id of the synthesized re-export file.
	IndexFileID = "_index"
	// IndexFilePath is the path of the re-export file.
	IndexFilePath = "index"

	fileSeparator = "\n\n"
)

// ErrHandler is the class of plugin handler failures.
var ErrHandler = errors.New("plugin handler failed")

// HandlerError is returned when a plugin handler fails. The remaining
// plugins are not run.
type HandlerError struct {
	Plugin string
	Cause  error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("plugin %q: %v", e.Plugin, e.Cause)
}

// Unwrap returns ErrHandler and the cause.
func (e *HandlerError) Unwrap() []error {
	return []error{ErrHandler, e.Cause}
}

// Execute runs every resolved plugin's handler against irctx, one at a
// time in resolution order. The first failure stops the run.
func Execute(irctx *ir.Context, res *plugin.Resolution) error {
	if err := res.Verify(); err != nil {
		return fmt.Errorf("invalid plugin order: %w", err)
	}
	for _, name := range res.Order {
		p := res.Plugins[name]
		if p.Handler == nil {
			continue
		}
		if err := p.Handler(irctx, p); err != nil {
			return &HandlerError{Plugin: name, Cause: err}
		}
	}
	return nil
}

// Assemble serializes the registry into a map of output path to contents
// and synthesizes index.ts, which re-exports every non-empty file that has
// not opted out. Dry runs return an empty map.
func Assemble(irctx *ir.Context) map[string]string {
	out := make(map[string]string)
	if cfg := irctx.Config(); cfg != nil && cfg.DryRun {
		return out
	}

	index := irctx.CreateFile(ir.FileSpec{ID: IndexFileID, Path: IndexFilePath})
	for _, f := range irctx.Files() {
		name := f.NameWithoutExtension()
		if name == index.NameWithoutExtension() {
			continue
		}
		if !f.IsEmpty() && f.ExportFromIndex() {
			index.Add(compiler.ExportAll{Module: "./" + name})
		}
		out[name+".ts"] = f.String(fileSeparator)
	}
	out[index.NameWithoutExtension()+".ts"] = index.String(fileSeparator)
	return out
}
