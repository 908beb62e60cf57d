// Package sql emits the SQL-backed artifacts for the generator: row
// structs, insertable structs and model implementations built on the
// dialect/sql runtime.
//
// Usage:
//
//	import (
//	    "github.com/relgen/relgen/compiler/gen"
//	    "github.com/relgen/relgen/compiler/gen/sql"
//	)
//
//	report, err := sql.Generate(ctx, cfg)
//
// Generated code structure:
//
//	{generated}/
//	├── manifest.go         # Table registry, order preserving
//	├── {table}.go          # Table constants and row struct
//	├── insertable/
//	│   └── {table}.go      # Insert payload struct
//	└── models/
//	    └── {table}.go      # Model with CRUD and finder methods
package sql

import (
	"context"

	"github.com/dave/jennifer/jen"

	"github.com/relgen/relgen/compiler/gen"
)

// Generate is the convenience entry point: it wires the SQL emitter into a
// generator and runs the full pipeline for the config.
func Generate(ctx context.Context, cfg *gen.Config) (*gen.Report, error) {
	g := gen.NewGenerator(cfg)
	g.WithEmitter(NewEmitter(g))
	return g.Run(ctx)
}

// Emitter implements gen.Emitter for SQL databases. One instance renders
// every artifact of a run through the shared helper.
type Emitter struct {
	helper gen.GeneratorHelper
}

// NewEmitter creates a new SQL emitter. The helper parameter is normally
// the *gen.Generator driving the run.
func NewEmitter(helper gen.GeneratorHelper) *Emitter {
	return &Emitter{helper: helper}
}

// Name returns the emitter name.
func (e *Emitter) Name() string {
	return "sql"
}

// GenEntity generates the table constants and row struct ({table}.go).
func (e *Emitter) GenEntity(t *gen.Type) *jen.File {
	return genEntity(e.helper, t)
}

// GenInsertable generates the insert payload struct (insertable/{table}.go).
func (e *Emitter) GenInsertable(t *gen.Type) *jen.File {
	return genInsertable(e.helper, t)
}

// GenModel generates the model implementation (models/{table}.go).
func (e *Emitter) GenModel(t *gen.Type) *jen.File {
	return genModel(e.helper, t)
}

// Verify Emitter implements gen.Emitter at compile time.
var _ gen.Emitter = (*Emitter)(nil)
