package gen

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/dave/jennifer/jen"

	"github.com/relgen/relgen/compiler/load"
)

// Generator runs one generation pass: parse, plan, emit, write, hook. The
// phases are strictly sequential; outputs are byte-identical across runs on
// the same input. An Emitter must be plugged in before Run; the SQL emitter
// lives in gen/sql and is set externally to avoid an import cycle.
type Generator struct {
	cfg     *Config
	emitter Emitter
	graph   *Graph
}

// NewGenerator creates a generator for the config.
// You must call WithEmitter() before calling Run().
//
// Example:
//
//	import "github.com/relgen/relgen/compiler/gen/sql"
//
//	g := gen.NewGenerator(cfg)
//	g.WithEmitter(sql.NewEmitter(g))
//	report, err := g.Run(ctx)
func NewGenerator(cfg *Config) *Generator {
	return &Generator{cfg: cfg}
}

// WithEmitter sets the artifact emitter.
func (g *Generator) WithEmitter(e Emitter) *Generator {
	if e != nil {
		g.emitter = e
	}
	return g
}

// Run executes the pipeline. Planning errors (parse, unknown type, naming
// collision, write conflict) abort before any file is written. Write errors
// abort mid-run; the report then lists the full plan and exactly what made
// it to disk, so the unwritten remainder is recoverable. Hook failures
// never abort the run; they are collected in the report.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	c := g.cfg
	if c == nil {
		return nil, NewConfigError("Config", nil, "nil config")
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if g.emitter == nil {
		return nil, NewConfigError("Emitter", nil, "no emitter set: call WithEmitter() before Run()")
	}
	log := c.logger()

	spec, err := g.load()
	if err != nil {
		return nil, err
	}
	graph, err := NewGraph(c, spec)
	if err != nil {
		return nil, err
	}
	g.graph = graph
	log.Info().Int("tables", len(graph.Nodes)).Int("skipped", graph.Skipped).Msg("catalog built")

	structs, models, err := g.emit(graph)
	if err != nil {
		return nil, err
	}
	manifests, err := g.manifests(graph)
	if err != nil {
		return nil, err
	}

	w := &writer{generatedRoot: c.GeneratedRoot, customRoot: c.CustomRoot}
	plan := make([]*artifact, 0, len(structs)+len(models)+len(manifests))
	plan = append(plan, structs...)
	plan = append(plan, models...)
	plan = append(plan, manifests...)
	if err := w.checkConflicts(plan); err != nil {
		return nil, err
	}

	report := &Report{
		TablesProcessed: len(graph.Nodes),
		TablesSkipped:   graph.Skipped,
		FilesPlanned:    make([]string, 0, len(plan)),
	}
	for _, a := range plan {
		report.FilesPlanned = append(report.FilesPlanned, a.path)
	}
	hooks := &hookRunner{dir: c.GeneratedRoot, log: log}

	written, err := w.write(structs)
	report.FilesWritten = append(report.FilesWritten, written...)
	if err != nil {
		return report, err
	}
	log.Info().Int("files", len(written)).Msg("structs written")
	report.HookFailures = append(report.HookFailures, hooks.runPhase(ctx, HookPostStructs, c.Hooks)...)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	if len(models) > 0 {
		written, err = w.write(models)
		report.FilesWritten = append(report.FilesWritten, written...)
		if err != nil {
			return report, err
		}
		log.Info().Int("files", len(written)).Msg("models written")
	}
	report.HookFailures = append(report.HookFailures, hooks.runPhase(ctx, HookPostModels, c.Hooks)...)
	if err := ctx.Err(); err != nil {
		return report, err
	}

	written, err = w.write(manifests)
	report.FilesWritten = append(report.FilesWritten, written...)
	if err != nil {
		return report, err
	}
	if c.Table == "" {
		tables := make(map[string]bool, len(graph.Nodes))
		for _, t := range graph.Nodes {
			tables[t.Name] = true
		}
		deleted, err := w.deleteStale(tables)
		report.FilesDeleted = deleted
		if err != nil {
			return report, err
		}
		if len(deleted) > 0 {
			log.Info().Strs("files", deleted).Msg("stale artifacts removed")
		}
	}
	report.HookFailures = append(report.HookFailures, hooks.runPhase(ctx, HookPostAny, c.Hooks)...)

	log.Info().
		Int("written", len(report.FilesWritten)).
		Int("deleted", len(report.FilesDeleted)).
		Int("hook_failures", len(report.HookFailures)).
		Msg("generation complete")
	return report, nil
}

// load parses the schema source, preferring in-memory source over the path.
func (g *Generator) load() (*load.SchemaSpec, error) {
	if len(g.cfg.Source) > 0 {
		return load.Parse(g.cfg.Source)
	}
	return load.ParseFile(g.cfg.SchemaPath)
}

// emit renders every planned artifact into memory. Nothing touches disk
// here; a render failure on the last table still means zero output files.
func (g *Generator) emit(graph *Graph) (structs, models []*artifact, err error) {
	for _, t := range graph.Nodes {
		entity, err := render(g.emitter.GenEntity(t), t.Names.FileName)
		if err != nil {
			return nil, nil, err
		}
		structs = append(structs, &artifact{
			kind:    kindRowStruct,
			table:   t.Name,
			path:    filepath.Join(g.cfg.GeneratedRoot, t.Names.FileName),
			content: entity,
		})
		ins, err := render(g.emitter.GenInsertable(t), t.Names.FileName)
		if err != nil {
			return nil, nil, err
		}
		structs = append(structs, &artifact{
			kind:    kindInsertable,
			table:   t.Name,
			path:    filepath.Join(g.cfg.GeneratedRoot, "insertable", t.Names.FileName),
			content: ins,
		})
		if g.cfg.StructsOnly {
			continue
		}
		model, err := render(g.emitter.GenModel(t), t.Names.FileName)
		if err != nil {
			return nil, nil, err
		}
		models = append(models, &artifact{
			kind:    kindModel,
			table:   t.Name,
			path:    filepath.Join(g.cfg.GeneratedRoot, "models", t.Names.FileName),
			content: model,
		})
	}
	return structs, models, nil
}

// manifests renders the generated-tree manifest and, when a custom root is
// configured, its additive manifest. Entries of untouched custom files are
// never dropped.
func (g *Generator) manifests(graph *Graph) ([]*artifact, error) {
	c := g.cfg
	tables := make([]string, len(graph.Nodes))
	for i, t := range graph.Nodes {
		tables[i] = t.Name
	}
	genPath := filepath.Join(c.GeneratedRoot, "manifest.go")
	content, err := generatedManifest(genPath, c.pkgName(), c.Header, tables, c.Table != "")
	if err != nil {
		return nil, err
	}
	arts := []*artifact{{kind: kindManifest, path: genPath, content: content}}

	if c.CustomRoot != "" {
		files, err := customModuleFiles(c.CustomRoot)
		if err != nil {
			return nil, err
		}
		customPath := filepath.Join(c.CustomRoot, "manifest.go")
		content, err := customManifest(customPath, filepath.Base(c.CustomRoot), files)
		if err != nil {
			return nil, err
		}
		if content != nil {
			arts = append(arts, &artifact{kind: kindManifest, path: customPath, content: content})
		}
	}
	return arts, nil
}

// render serializes a Jennifer file. Jennifer output is already formatted
// and import-managed.
func render(f *jen.File, name string) ([]byte, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, fmt.Errorf("gen: render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// NewFile creates a new Jennifer file with the generated-file marker and
// the configured extra header.
func (g *Generator) NewFile(pkg string) *jen.File {
	f := jen.NewFile(pkg)
	f.HeaderComment("Code generated by relgen. DO NOT EDIT.")
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	return f
}

// GoType returns the Jennifer code for a field's Go type.
func (g *Generator) GoType(f *Field) jen.Code {
	if f.Nillable {
		if f.Type.PkgPath != "" {
			return jen.Op("*").Qual(f.Type.PkgPath, f.Type.Ident)
		}
		// Id("*type") avoids the whitespace Op("*") introduces in struct
		// field positions.
		return jen.Id("*" + f.Type.Ident)
	}
	return g.BaseType(f)
}

// BaseType returns the Jennifer code for a field's base type.
func (g *Generator) BaseType(f *Field) jen.Code {
	switch {
	case f.Type.PkgPath != "":
		return jen.Qual(f.Type.PkgPath, f.Type.Ident)
	case f.Type.Ident == "[]byte":
		return jen.Index().Byte()
	default:
		return jen.Id(f.Type.Ident)
	}
}

// StructTags returns the struct tags for a row-struct field.
func (g *Generator) StructTags(f *Field) map[string]string {
	jsonTag := f.Name
	if f.Nillable {
		jsonTag += ",omitempty"
	}
	return map[string]string{"db": f.Name, "json": jsonTag}
}

// Pkg returns the generated root package name.
func (g *Generator) Pkg() string {
	return g.cfg.pkgName()
}

// PackagePath returns the import path of the generated root package.
func (g *Generator) PackagePath() string {
	return g.cfg.Package
}

// InsertablePkgPath returns the import path of the insertable package.
func (g *Generator) InsertablePkgPath() string {
	return g.cfg.insertablePkg()
}

// RuntimePkg returns the import path of the runtime error package.
func (g *Generator) RuntimePkg() string {
	return "github.com/relgen/relgen"
}

// SQLPkg returns the import path of the dialect/sql runtime package.
func (g *Generator) SQLPkg() string {
	return "github.com/relgen/relgen/dialect/sql"
}

// Graph returns the catalog under generation.
func (g *Generator) Graph() *Graph {
	return g.graph
}

// Verify Generator implements GeneratorHelper at compile time.
var _ GeneratorHelper = (*Generator)(nil)
