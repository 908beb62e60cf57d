package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/relgen/relgen/compiler/gen"
)

// genInsertable generates the insert payload struct (insertable/{table}.go).
// Database-defaulted key columns are omitted; the database assigns them. A
// table whose every column is defaulted gets an empty struct, which the
// runtime turns into a defaults-only insert.
func genInsertable(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile("insertable")
	name := "New" + t.Names.StructName

	f.Commentf("%s carries the insertable columns of the %s table.", name, t.Name)
	f.Type().Id(name).StructFunc(func(g *jen.Group) {
		for _, fd := range t.InsertFields() {
			g.Id(fd.StructField).Add(h.GoType(fd)).Tag(h.StructTags(fd))
		}
	})

	return f
}
