package gen

import "github.com/dave/jennifer/jen"

// Emitter defines the interface for dialect-specific code emission. The
// generator orchestrates a run; the emitter renders each artifact for one
// table. The SQL emitter lives in gen/sql; it is plugged in externally to
// avoid an import cycle.
type Emitter interface {
	// Name returns the emitter name (e.g. "sql").
	Name() string
	// GenEntity renders the row struct and table constants ({table}.go).
	GenEntity(t *Type) *jen.File
	// GenInsertable renders the insertable struct (insertable/{table}.go).
	GenInsertable(t *Type) *jen.File
	// GenModel renders the model implementation (models/{table}.go).
	GenModel(t *Type) *jen.File
}

// GeneratorHelper provides helper methods for emitter implementations.
// Generator implements this interface, allowing emitter packages to render
// types, tags and import paths without importing the full generator.
type GeneratorHelper interface {
	// NewFile creates a new Jennifer file with the standard header comment.
	NewFile(pkg string) *jen.File

	// GoType returns the Jennifer code for a field's Go type, pointer
	// wrapped for nillable fields.
	GoType(f *Field) jen.Code

	// BaseType returns the Jennifer code for a field's base type.
	BaseType(f *Field) jen.Code

	// StructTags returns the struct tags for a field.
	StructTags(f *Field) map[string]string

	// Pkg returns the generated root package name.
	Pkg() string

	// PackagePath returns the import path of the generated root package.
	PackagePath() string

	// InsertablePkgPath returns the import path of the insertable package.
	InsertablePkgPath() string

	// RuntimePkg returns the import path of the runtime error package.
	RuntimePkg() string

	// SQLPkg returns the import path of the dialect/sql runtime package.
	SQLPkg() string

	// Graph returns the catalog under generation.
	Graph() *Graph
}
