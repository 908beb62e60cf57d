// Package gen plans and runs one code-generation pass over a parsed schema
// catalog.
//
// The pipeline is strictly sequential: parse the schema, build the Graph
// (filtering, naming, type mapping, relations), render every artifact into
// memory, check the plan for write conflicts, then write row structs,
// insertables, models and manifests in that order, firing post-phase hooks
// between writes. Planning errors abort before any file is written; outputs
// are byte-identical across runs on the same input.
//
// The package is emitter-agnostic. An Emitter renders the three artifact
// kinds for one table; the SQL emitter lives in gen/sql and is plugged in
// through Generator.WithEmitter, which keeps the dependency pointing from
// the dialect to the core.
//
//	cfg := gen.MustNewConfig(
//	    gen.WithSchemaPath("schema.rs"),
//	    gen.WithGeneratedRoot("db"),
//	    gen.WithPackage("github.com/org/project/db"),
//	)
//	g := gen.NewGenerator(cfg)
//	g.WithEmitter(sql.NewEmitter(g))
//	report, err := g.Run(ctx)
package gen
