package gen

import (
	"errors"
	"fmt"
)

// Sentinel errors for generation-plan failures. Every one of them aborts the
// run before a single file is written.
var (
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("gen: missing configuration")
	// ErrSchemaNotFound indicates a schema with no usable tables, or a
	// requested table absent from it.
	ErrSchemaNotFound = errors.New("gen: schema not found")
	// ErrUnsupportedType indicates a declared column type with no Go mapping.
	ErrUnsupportedType = errors.New("gen: unsupported column type")
	// ErrNamingCollision indicates two tables resolving to the same
	// generated symbol.
	ErrNamingCollision = errors.New("gen: naming collision")
	// ErrWriteConflict indicates a planned output path outside the generated
	// tree or inside the custom tree.
	ErrWriteConflict = errors.New("gen: write conflict")
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("gen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("gen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{Option: option, Value: value, Message: message}
}

// SchemaNotFoundError is returned when the parsed schema contains no tables
// after the ignore filter, or when a single-table run names a table the
// schema does not declare.
type SchemaNotFoundError struct {
	Path  string // schema source location, when known
	Table string // requested table for single-table runs
}

// Error implements the error interface.
func (e *SchemaNotFoundError) Error() string {
	switch {
	case e.Table != "" && e.Path != "":
		return fmt.Sprintf("gen: table %q not found in schema %s", e.Table, e.Path)
	case e.Table != "":
		return fmt.Sprintf("gen: table %q not found in schema", e.Table)
	case e.Path != "":
		return fmt.Sprintf("gen: no tables found in schema %s", e.Path)
	}
	return "gen: no tables found in schema"
}

// Is reports whether the target matches the sentinel error for SchemaNotFoundError.
func (e *SchemaNotFoundError) Is(target error) bool {
	return target == ErrSchemaNotFound
}

// NewSchemaNotFoundError creates an error for a schema with no usable tables.
func NewSchemaNotFoundError(path string) *SchemaNotFoundError {
	return &SchemaNotFoundError{Path: path}
}

// NewTableNotFoundError creates an error for a single-table run whose target
// the schema does not declare.
func NewTableNotFoundError(path, table string) *SchemaNotFoundError {
	return &SchemaNotFoundError{Path: path, Table: table}
}

// UnsupportedTypeError is returned when a column declares a type the mapper
// does not know. The whole run aborts; no partial output is produced.
type UnsupportedTypeError struct {
	Table    string
	Column   string
	Declared string
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("gen: unsupported type %q on column %s.%s", e.Declared, e.Table, e.Column)
	}
	return fmt.Sprintf("gen: unsupported type %q", e.Declared)
}

// Is reports whether the target matches the sentinel error for UnsupportedTypeError.
func (e *UnsupportedTypeError) Is(target error) bool {
	return target == ErrUnsupportedType
}

// NewUnsupportedTypeError creates a new UnsupportedTypeError.
func NewUnsupportedTypeError(table, column, declared string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Table: table, Column: column, Declared: declared}
}

// NamingCollisionError is returned when two tables map to the same generated
// symbol, for example two plural table names sharing one singular form.
type NamingCollisionError struct {
	Symbol string
	Tables [2]string
}

// Error implements the error interface.
func (e *NamingCollisionError) Error() string {
	return fmt.Sprintf("gen: tables %q and %q both generate symbol %s", e.Tables[0], e.Tables[1], e.Symbol)
}

// Is reports whether the target matches the sentinel error for NamingCollisionError.
func (e *NamingCollisionError) Is(target error) bool {
	return target == ErrNamingCollision
}

// NewNamingCollisionError creates a new NamingCollisionError.
func NewNamingCollisionError(symbol, table1, table2 string) *NamingCollisionError {
	return &NamingCollisionError{Symbol: symbol, Tables: [2]string{table1, table2}}
}

// WriteConflictError is returned when a planned output path escapes the
// generated root or lands inside the custom tree. The check runs against the
// full plan before any file is written.
type WriteConflictError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e *WriteConflictError) Error() string {
	return fmt.Sprintf("gen: refusing to write %s: %s", e.Path, e.Message)
}

// Is reports whether the target matches the sentinel error for WriteConflictError.
func (e *WriteConflictError) Is(target error) bool {
	return target == ErrWriteConflict
}

// NewWriteConflictError creates a new WriteConflictError.
func NewWriteConflictError(path, message string) *WriteConflictError {
	return &WriteConflictError{Path: path, Message: message}
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsSchemaNotFound reports whether the error is a SchemaNotFoundError.
func IsSchemaNotFound(err error) bool {
	var nfErr *SchemaNotFoundError
	return errors.As(err, &nfErr)
}

// IsUnsupportedType reports whether the error is an UnsupportedTypeError.
func IsUnsupportedType(err error) bool {
	var utErr *UnsupportedTypeError
	return errors.As(err, &utErr)
}

// IsNamingCollision reports whether the error is a NamingCollisionError.
func IsNamingCollision(err error) bool {
	var ncErr *NamingCollisionError
	return errors.As(err, &ncErr)
}

// IsWriteConflict reports whether the error is a WriteConflictError.
func IsWriteConflict(err error) bool {
	var wcErr *WriteConflictError
	return errors.As(err, &wcErr)
}
