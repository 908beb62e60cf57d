package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/relgen/relgen/compiler/gen"
)

// fileConfig is the YAML configuration file format. The file is a CLI
// convenience only; the engine sees the resulting gen.Config and never
// reads YAML itself.
//
// Example:
//
//	schema: db/schema.rs
//	generated_root: internal/db
//	custom_root: internal/models
//	package: github.com/org/project/internal/db
//	ignore_tables:
//	  - schema_migrations
//	hooks:
//	  - phase: post_any
//	    command: gofmt -w .
type fileConfig struct {
	Schema        string     `yaml:"schema"`
	GeneratedRoot string     `yaml:"generated_root"`
	CustomRoot    string     `yaml:"custom_root"`
	Package       string     `yaml:"package"`
	Header        string     `yaml:"header"`
	IgnoreTables  []string   `yaml:"ignore_tables"`
	StructsOnly   bool       `yaml:"structs_only"`
	Hooks         []hookSpec `yaml:"hooks"`
}

type hookSpec struct {
	Phase   string `yaml:"phase"`
	Command string `yaml:"command"`
}

// loadFileConfig reads and parses the YAML configuration at path.
func loadFileConfig(path string) (*fileConfig, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(src, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// options translates the file config into engine options. Empty fields
// contribute nothing, so CLI flags applied afterwards win only where the
// file is silent and override where both are set (flags apply last).
func (fc *fileConfig) options() []gen.Option {
	var opts []gen.Option
	if fc.Schema != "" {
		opts = append(opts, gen.WithSchemaPath(fc.Schema))
	}
	if fc.GeneratedRoot != "" {
		opts = append(opts, gen.WithGeneratedRoot(fc.GeneratedRoot))
	}
	if fc.CustomRoot != "" {
		opts = append(opts, gen.WithCustomRoot(fc.CustomRoot))
	}
	if fc.Package != "" {
		opts = append(opts, gen.WithPackage(fc.Package))
	}
	if fc.Header != "" {
		opts = append(opts, gen.WithHeader(fc.Header))
	}
	if len(fc.IgnoreTables) > 0 {
		opts = append(opts, gen.WithIgnoreTables(fc.IgnoreTables...))
	}
	if fc.StructsOnly {
		opts = append(opts, gen.WithStructsOnly())
	}
	for _, h := range fc.Hooks {
		opts = append(opts, gen.WithHooks(gen.HookSpec{
			Phase:   gen.HookPhase(h.Phase),
			Command: h.Command,
		}))
	}
	return opts
}
