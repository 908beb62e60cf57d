package gen

import (
	"errors"

	"github.com/rs/zerolog"
)

// Option configures code generation.
type Option func(*Config) error

// WithSchemaPath sets the schema definition file to read.
func WithSchemaPath(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewConfigError("SchemaPath", nil, "path cannot be empty")
		}
		c.SchemaPath = path
		return nil
	}
}

// WithSource sets in-memory schema definition source, taking precedence
// over WithSchemaPath.
func WithSource(src []byte) Option {
	return func(c *Config) error {
		if len(src) == 0 {
			return NewConfigError("Source", nil, "source cannot be empty")
		}
		c.Source = src
		return nil
	}
}

// WithGeneratedRoot sets the machine-owned output directory.
func WithGeneratedRoot(dir string) Option {
	return func(c *Config) error {
		if dir == "" {
			return NewConfigError("GeneratedRoot", nil, "directory cannot be empty")
		}
		c.GeneratedRoot = dir
		return nil
	}
}

// WithCustomRoot sets the hand-written tree whose manifest is maintained
// additively. Empty disables custom-manifest maintenance.
func WithCustomRoot(dir string) Option {
	return func(c *Config) error {
		c.CustomRoot = dir
		return nil
	}
}

// WithPackage sets the import path of the generated root package.
// For example: "github.com/org/project/db".
func WithPackage(pkg string) Option {
	return func(c *Config) error {
		if pkg == "" {
			return NewConfigError("Package", nil, "package cannot be empty")
		}
		c.Package = pkg
		return nil
	}
}

// WithHeader sets an extra header comment line for every generated file.
func WithHeader(header string) Option {
	return func(c *Config) error {
		c.Header = header
		return nil
	}
}

// WithIgnoreTables adds tables to skip, matched case-insensitively.
func WithIgnoreTables(tables ...string) Option {
	return func(c *Config) error {
		c.IgnoreTables = append(c.IgnoreTables, tables...)
		return nil
	}
}

// WithTable restricts the run to a single table. Other tables' artifacts
// are left untouched and stale-file cleanup is skipped.
func WithTable(table string) Option {
	return func(c *Config) error {
		if table == "" {
			return NewConfigError("Table", nil, "table cannot be empty")
		}
		c.Table = table
		return nil
	}
}

// WithStructsOnly suppresses model generation.
func WithStructsOnly() Option {
	return func(c *Config) error {
		c.StructsOnly = true
		return nil
	}
}

// WithHooks adds post-phase commands. Commands run sequentially within a
// phase, in registration order.
func WithHooks(hooks ...HookSpec) Option {
	return func(c *Config) error {
		for _, h := range hooks {
			if !h.Phase.valid() {
				return NewConfigError("Hooks", string(h.Phase), "unknown hook phase")
			}
		}
		c.Hooks = append(c.Hooks, hooks...)
		return nil
	}
}

// WithLogger sets the logger for progress events.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Config) error {
		c.Logger = &l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
