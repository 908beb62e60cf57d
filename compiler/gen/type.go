package gen

import (
	"github.com/relgen/relgen/compiler/load"
)

// The following types and their exported methods are consumed by the
// emitters to generate the assets.
type (
	// Names holds every derived identifier for one table. All symbols and
	// file names derive from the exact declared table name; the singular
	// form is used only for struct naming.
	Names struct {
		// Stem is the exact table name as declared, case preserved.
		Stem string
		// Symbol is the PascalCase form of the exact table name. It
		// prefixes the generated table and column constants.
		Symbol string
		// StructName is the PascalCase singular form, used for the row
		// struct, the insertable struct and the model type.
		StructName string
		// Local is the camelCase form of the exact table name, used for
		// file-local helpers in generated code.
		Local string
		// FileName is the artifact file name, identical in every output
		// directory: the exact table name plus ".go".
		FileName string
	}

	// Type represents one table in the catalog: its resolved names, mapped
	// columns and outgoing relations.
	Type struct {
		// Name holds the raw table name.
		Name string
		// Names holds the derived identifiers.
		Names Names
		// ID holds the primary-key field when the table declares exactly
		// one; nil for composite or absent keys.
		ID *Field
		// Fields holds all columns in declaration order, the key included.
		Fields []*Field
		// Relations holds the foreign keys declared or inferred on this
		// table, pointing at other tables in the catalog.
		Relations []*Relation

		fields map[string]*Field
	}

	// Field holds one mapped column.
	Field struct {
		// Name is the column name in the database schema.
		Name string
		// Type holds the resolved Go type.
		Type GoType
		// StructField is the PascalCase field name on the row struct.
		StructField string
		// Nillable indicates the column is nullable and rendered as a
		// pointer in the row struct.
		Nillable bool
		// HasDefault indicates the database populates the column when it
		// is omitted from an insert.
		HasDefault bool
		// PrimaryKey indicates primary-key membership.
		PrimaryKey bool
		// Declared is the schema type as written in the source.
		Declared string
	}

	// Relation is a foreign key from one table to another. The reference is
	// kept by name so that single-table runs emit the same finders as full
	// runs.
	Relation struct {
		// Column is the foreign-key column on the owning table.
		Column string
		// Field is the mapped foreign-key field on the owning table.
		Field *Field
		// RefTable is the referenced table name.
		RefTable string
		// RefColumn is the referenced column, "id" unless declared
		// otherwise.
		RefColumn string
	}
)

// newType maps one parsed table into a catalog node. Column order is
// preserved; relations are attached later by the graph builder.
func newType(t *load.Table) (*Type, error) {
	typ := &Type{
		Name:   t.Name,
		Names:  resolveNames(t.Name),
		fields: make(map[string]*Field, len(t.Columns)),
	}
	for _, c := range t.Columns {
		gt, err := mapColumn(t.Name, c)
		if err != nil {
			return nil, err
		}
		f := &Field{
			Name:        c.Name,
			Type:        gt,
			StructField: pascal(c.Name),
			Nillable:    gt.Nillable,
			HasDefault:  c.HasDefault,
			PrimaryKey:  c.PrimaryKey,
			Declared:    c.Type,
		}
		typ.Fields = append(typ.Fields, f)
		typ.fields[f.Name] = f
	}
	if len(t.PrimaryKey) == 1 {
		typ.ID = typ.fields[t.PrimaryKey[0]]
	}
	return typ, nil
}

// resolveNames derives every identifier for a table name. The exact declared
// name drives file names and constant prefixes; singularization is applied
// only to the struct name.
func resolveNames(table string) Names {
	return Names{
		Stem:       table,
		Symbol:     pascal(table),
		StructName: pascal(singular(table)),
		Local:      camel(table),
		FileName:   table + ".go",
	}
}

// Field returns the field with the given column name, or nil.
func (t *Type) Field(name string) *Field {
	return t.fields[name]
}

// InsertFields returns the columns the insertable struct carries: every
// declared column except default-having primary-key columns. The result can
// be empty; the insertable struct is then empty as well.
func (t *Type) InsertFields() []*Field {
	fields := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.PrimaryKey && f.HasDefault {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

// HasID reports whether the table has a single-column primary key, the
// precondition for by-ID model operations.
func (t *Type) HasID() bool { return t.ID != nil }

// CreatedAt returns the created_at field when the table declares one with a
// time-ordered type, enabling the creation-time finders.
func (t *Type) CreatedAt() *Field { return t.timeField("created_at") }

// UpdatedAt returns the updated_at field when the table declares one with a
// time-ordered type, enabling the update-time finders and setter touch.
func (t *Type) UpdatedAt() *Field { return t.timeField("updated_at") }

func (t *Type) timeField(name string) *Field {
	f := t.fields[name]
	if f == nil {
		return nil
	}
	switch f.Type.Ident {
	case "int64", "Time":
		return f
	}
	return nil
}

// BoolFields returns the non-key boolean columns, each of which gets a
// transactional setter on the model.
func (t *Type) BoolFields() []*Field {
	var fields []*Field
	for _, f := range t.Fields {
		if f.Type.Ident == "bool" && !f.Nillable && !f.PrimaryKey {
			fields = append(fields, f)
		}
	}
	return fields
}

// Columns returns the column names in declaration order.
func (t *Type) Columns() []string {
	cols := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		cols[i] = f.Name
	}
	return cols
}

// EpochTime reports whether the field stores time as an integer epoch
// rather than a native timestamp.
func (f *Field) EpochTime() bool { return f.Type.Ident == "int64" }
