package gen

import (
	"strings"

	"github.com/relgen/relgen/compiler/load"
)

// GoType is the Go realization of a declared column type.
type GoType struct {
	// Ident is the Go type identifier, unqualified ("int32", "Time", "UUID").
	Ident string
	// PkgPath is the import path qualifying Ident; empty for builtins.
	PkgPath string
	// Nillable reports whether the field is rendered as a pointer. Slice
	// types stay value types; a nil slice already scans from NULL.
	Nillable bool
}

// String returns the type as it appears in source, for error messages and
// debug output.
func (t GoType) String() string {
	name := t.Ident
	if t.PkgPath != "" {
		if i := strings.LastIndexByte(t.PkgPath, '/'); i >= 0 {
			name = t.PkgPath[i+1:] + "." + t.Ident
		} else {
			name = t.PkgPath + "." + t.Ident
		}
	}
	if t.Nillable {
		return "*" + name
	}
	return name
}

func (t GoType) slice() bool {
	return strings.HasPrefix(t.Ident, "[]") || t.Ident == "RawMessage"
}

var goTypes = map[string]GoType{
	"Int2":     {Ident: "int16"},
	"SmallInt": {Ident: "int16"},
	"Int4":     {Ident: "int32"},
	"Integer":  {Ident: "int32"},
	"Serial":   {Ident: "int32"},
	"Int8":     {Ident: "int64"},
	"BigInt":   {Ident: "int64"},
	"BigSerial": {Ident: "int64"},

	"Uint2": {Ident: "uint16"},
	"Uint4": {Ident: "uint32"},
	"Uint8": {Ident: "uint64"},

	"Float4": {Ident: "float32"},
	"Float":  {Ident: "float32"},
	"Float8": {Ident: "float64"},
	"Double": {Ident: "float64"},

	"Bool": {Ident: "bool"},

	"Text":    {Ident: "string"},
	"Varchar": {Ident: "string"},
	"Char":    {Ident: "string"},
	"Bpchar":  {Ident: "string"},
	"Citext":  {Ident: "string"},

	"Bytea":     {Ident: "[]byte"},
	"Blob":      {Ident: "[]byte"},
	"Binary":    {Ident: "[]byte"},
	"Varbinary": {Ident: "[]byte"},

	"Date":        {Ident: "Time", PkgPath: "time"},
	"Time":        {Ident: "Time", PkgPath: "time"},
	"Timestamp":   {Ident: "Time", PkgPath: "time"},
	"Timestamptz": {Ident: "Time", PkgPath: "time"},

	"Uuid": {Ident: "UUID", PkgPath: "github.com/google/uuid"},

	"Json":  {Ident: "RawMessage", PkgPath: "encoding/json"},
	"Jsonb": {Ident: "RawMessage", PkgPath: "encoding/json"},
}

// unsignedOf maps the type argument of Unsigned<...> wrappers.
var unsignedOf = map[string]string{
	"Int2": "Uint2", "SmallInt": "Uint2",
	"Int4": "Uint4", "Integer": "Uint4",
	"Int8": "Uint8", "BigInt": "Uint8",
}

// mapColumn resolves the Go type for a declared column. Unknown declared
// types fail with an UnsupportedTypeError carrying the column coordinates.
func mapColumn(table string, c *load.Column) (GoType, error) {
	declared := c.Type
	if strings.HasPrefix(declared, "Unsigned<") && strings.HasSuffix(declared, ">") {
		inner := declared[len("Unsigned<") : len(declared)-1]
		u, ok := unsignedOf[inner]
		if !ok {
			return GoType{}, NewUnsupportedTypeError(table, c.Name, c.Type)
		}
		declared = u
	}
	t, ok := goTypes[declared]
	if !ok {
		return GoType{}, NewUnsupportedTypeError(table, c.Name, c.Type)
	}
	t.Nillable = c.Nullable && !t.slice()
	return t, nil
}
