package gen

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Config holds one generation run's settings. Build it with NewConfig and
// the With* options; a zero Config fails validation.
type Config struct {
	// SchemaPath locates the schema definition source.
	SchemaPath string
	// Source overrides SchemaPath with in-memory schema definition source.
	Source []byte

	// GeneratedRoot is the machine-owned output directory. Row structs land
	// at its top level, insertables and models in subdirectories.
	GeneratedRoot string
	// CustomRoot is the hand-written tree. Generation never writes into it
	// except to append entries to its manifest.
	CustomRoot string
	// Package is the import path of the generated root package, used by
	// model files to import the row structs.
	Package string
	// Header is an extra comment line placed under the generated-file
	// marker in every emitted file.
	Header string

	// IgnoreTables lists tables excluded from generation, matched
	// case-insensitively.
	IgnoreTables []string
	// Table restricts the run to a single table. Artifacts of other tables
	// are left untouched and stale-file cleanup is skipped.
	Table string
	// StructsOnly suppresses model generation; row structs and insertables
	// are still emitted.
	StructsOnly bool

	// Hooks are post-phase commands. See HookSpec for phases and ordering.
	Hooks []HookSpec

	// Logger receives structured progress events. Nil means silent.
	Logger *zerolog.Logger
}

// validate checks the config before a run. Every violation reports the
// offending option.
func (c *Config) validate() error {
	if c.SchemaPath == "" && len(c.Source) == 0 {
		return NewConfigError("SchemaPath", nil, "schema source required")
	}
	if c.GeneratedRoot == "" {
		return NewConfigError("GeneratedRoot", nil, "generated output directory required")
	}
	if c.Package == "" && !c.StructsOnly {
		return NewConfigError("Package", nil, "generated package import path required for model generation")
	}
	for _, h := range c.Hooks {
		if !h.Phase.valid() {
			return NewConfigError("Hooks", string(h.Phase), "unknown hook phase")
		}
	}
	return nil
}

// logger returns the configured logger or a disabled one.
func (c *Config) logger() zerolog.Logger {
	if c.Logger == nil {
		return zerolog.Nop()
	}
	return *c.Logger
}

// pkgName is the package name of the generated root, derived from the
// output directory.
func (c *Config) pkgName() string {
	return filepath.Base(c.GeneratedRoot)
}

// insertablePkg is the import path of the insertable subpackage.
func (c *Config) insertablePkg() string {
	return path.Join(c.Package, "insertable")
}

// modelsPkg is the import path of the models subpackage.
func (c *Config) modelsPkg() string {
	return path.Join(c.Package, "models")
}

// ignored reports whether the table is on the ignore list. Matching is
// case-insensitive; generation itself stays case-preserving.
func (c *Config) ignored(table string) bool {
	for _, ig := range c.IgnoreTables {
		if strings.EqualFold(ig, table) {
			return true
		}
	}
	return false
}
