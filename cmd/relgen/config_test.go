package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relgen/relgen/compiler/gen"
)

func writeConfig(t *testing.T, src string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relgen.yaml")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestLoadFileConfig(t *testing.T) {
	path := writeConfig(t, `
schema: db/schema.rs
generated_root: internal/db
custom_root: internal/models
package: github.com/org/project/internal/db
header: "source: db/schema.rs"
ignore_tables:
  - schema_migrations
  - ar_internal_metadata
structs_only: true
hooks:
  - phase: post_structs
    command: gofmt -w .
  - phase: post_any
    command: go vet ./...
`)
	fc, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "db/schema.rs", fc.Schema)
	assert.Equal(t, "internal/db", fc.GeneratedRoot)
	assert.Equal(t, "internal/models", fc.CustomRoot)
	assert.Equal(t, "github.com/org/project/internal/db", fc.Package)
	assert.Equal(t, "source: db/schema.rs", fc.Header)
	assert.Equal(t, []string{"schema_migrations", "ar_internal_metadata"}, fc.IgnoreTables)
	assert.True(t, fc.StructsOnly)
	require.Len(t, fc.Hooks, 2)
	assert.Equal(t, "post_structs", fc.Hooks[0].Phase)
	assert.Equal(t, "gofmt -w .", fc.Hooks[0].Command)
}

func TestFileConfigOptions(t *testing.T) {
	fc := &fileConfig{
		Schema:        "schema.rs",
		GeneratedRoot: "db",
		Package:       "example.com/db",
		IgnoreTables:  []string{"schema_migrations"},
		Hooks: []hookSpec{
			{Phase: "post_any", Command: "true"},
		},
	}
	cfg, err := gen.NewConfig(fc.options()...)
	require.NoError(t, err)
	assert.Equal(t, "schema.rs", cfg.SchemaPath)
	assert.Equal(t, "db", cfg.GeneratedRoot)
	assert.Equal(t, "example.com/db", cfg.Package)
	assert.Equal(t, []string{"schema_migrations"}, cfg.IgnoreTables)
	require.Len(t, cfg.Hooks, 1)
	assert.Equal(t, gen.HookPostAny, cfg.Hooks[0].Phase)
}

func TestFileConfigOptionsRejectBadHookPhase(t *testing.T) {
	fc := &fileConfig{
		Schema:        "schema.rs",
		GeneratedRoot: "db",
		Hooks:         []hookSpec{{Phase: "pre_structs", Command: "true"}},
	}
	_, err := gen.NewConfig(fc.options()...)
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}

func TestFileConfigFlagsWin(t *testing.T) {
	fc := &fileConfig{Schema: "from-file.rs", GeneratedRoot: "db"}
	opts := append(fc.options(), gen.WithSchemaPath("from-flag.rs"))
	cfg, err := gen.NewConfig(opts...)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.rs", cfg.SchemaPath)
}

func TestLoadFileConfigErrors(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := writeConfig(t, "schema: [not: valid")
	_, err = loadFileConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}
