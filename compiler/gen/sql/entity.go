package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/relgen/relgen/compiler/gen"
)

// genEntity generates the table constants and row struct ({table}.go).
// All symbols derive from the exact table name; only the row struct uses
// the singular form.
func genEntity(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile(h.Pkg())
	sym := t.Names.Symbol

	f.Commentf("%sTable is the %s table name.", sym, t.Name)
	f.Const().Id(sym + "Table").Op("=").Lit(t.Name)

	f.Commentf("%sColumns holds the columns of the %s table in declaration order.", sym, t.Name)
	f.Var().Id(sym + "Columns").Op("=").Index().String().ValuesFunc(func(g *jen.Group) {
		for _, fd := range t.Fields {
			g.Lit(fd.Name)
		}
	})

	if t.HasID() {
		f.Commentf("%sPrimaryKey is the primary-key column of the %s table.", sym, t.Name)
		f.Const().Id(sym + "PrimaryKey").Op("=").Lit(t.ID.Name)
	}

	f.Commentf("%s is the row type for the %s table.", t.Names.StructName, t.Name)
	f.Type().Id(t.Names.StructName).StructFunc(func(g *jen.Group) {
		for _, fd := range t.Fields {
			g.Id(fd.StructField).Add(h.GoType(fd)).Tag(h.StructTags(fd))
		}
	})

	return f
}
