package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/relgen/relgen/compiler/gen"
)

// genModel generates the model implementation (models/{table}.go): a thin
// typed wrapper over the dialect/sql runtime. Every mutation runs inside a
// transaction owned by the runtime and returns the refetched row.
func genModel(h gen.GeneratorHelper, t *gen.Type) *jen.File {
	f := h.NewFile("models")
	var (
		root      = h.PackagePath()
		rt        = h.SQLPkg()
		modelName = t.Names.StructName + "Model"
		specFn    = t.Names.Local + "Spec"
		scanFn    = "scan" + t.Names.StructName
	)

	f.Commentf("%s provides data access to the %s table.", modelName, t.Name)
	f.Type().Id(modelName).Struct(
		jen.Id("drv").Op("*").Qual(rt, "Driver"),
	)

	f.Commentf("New%s returns a model bound to drv.", modelName)
	f.Func().Id("New" + modelName).Params(
		jen.Id("drv").Op("*").Qual(rt, "Driver"),
	).Op("*").Id(modelName).Block(
		jen.Return(jen.Op("&").Id(modelName).Values(jen.Dict{
			jen.Id("drv"): jen.Id("drv"),
		})),
	)

	genSpecFunc(f, t, root, rt, specFn)
	genScanFunc(f, t, root, scanFn)

	genGetAll(f, t, root, rt, modelName, specFn, scanFn)
	if t.HasID() {
		genGetByID(h, f, t, root, rt, modelName, specFn, scanFn)
	}
	genCreate(h, f, t, root, rt, modelName, specFn, scanFn)
	if t.HasID() {
		genUpdateByID(h, f, t, root, rt, modelName, specFn, scanFn)
		genDeleteByID(h, f, t, rt, modelName, specFn)
	}
	genCount(f, t, rt, modelName, specFn)

	for _, r := range t.Relations {
		genRelationFinder(h, f, t, r, root, rt, modelName, specFn, scanFn)
	}
	if created := t.CreatedAt(); created != nil {
		genCreatedFinders(h, f, t, created, root, rt, modelName, specFn, scanFn)
	}
	if updated := t.UpdatedAt(); updated != nil {
		genUpdatedFinders(h, f, t, updated, root, rt, modelName, specFn, scanFn)
	}
	if t.HasID() {
		for _, b := range t.BoolFields() {
			genBoolSetter(h, f, t, b, root, rt, modelName, specFn, scanFn)
		}
	}

	return f
}

// genSpecFunc emits the file-local TableSpec constructor the runtime calls
// operate on.
func genSpecFunc(f *jen.File, t *gen.Type, root, rt, specFn string) {
	sym := t.Names.Symbol
	dict := jen.Dict{
		jen.Id("Table"):   jen.Qual(root, sym+"Table"),
		jen.Id("Columns"): jen.Qual(root, sym+"Columns"),
	}
	if t.HasID() {
		dict[jen.Id("ID")] = jen.Qual(root, sym+"PrimaryKey")
	}
	f.Func().Id(specFn).Params().Qual(rt, "TableSpec").Block(
		jen.Return(jen.Qual(rt, "TableSpec").Values(dict)),
	)
}

// genScanFunc emits the row scanner shared by every operation. Columns are
// scanned in declaration order, matching the generated column list.
func genScanFunc(f *jen.File, t *gen.Type, root, scanFn string) {
	f.Func().Id(scanFn).Params(
		jen.Id("rows").Op("*").Qual("database/sql", "Rows"),
	).Params(jen.Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Var().Id("v").Qual(root, t.Names.StructName),
		jen.Err().Op(":=").Id("rows").Dot("Scan").CallFunc(func(g *jen.Group) {
			for _, fd := range t.Fields {
				g.Op("&").Id("v").Dot(fd.StructField)
			}
		}),
		jen.Return(jen.Id("v"), jen.Err()),
	)
}

func genGetAll(f *jen.File, t *gen.Type, root, rt, modelName, specFn, scanFn string) {
	if t.HasID() {
		f.Commentf("GetAll returns every row ordered by %s ascending.", t.ID.Name)
	} else {
		f.Comment("GetAll returns every row.")
	}
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("GetAll").Params(
		jen.Id("ctx").Qual("context", "Context"),
	).Params(jen.Index().Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "All").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id(scanFn),
		)),
	)
}

func genGetByID(h gen.GeneratorHelper, f *jen.File, t *gen.Type, root, rt, modelName, specFn, scanFn string) {
	f.Commentf("GetByID returns the row with the given %s, or a NotFoundError.", t.ID.Name)
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("GetByID").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(h.BaseType(t.ID)),
	).Params(jen.Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "ByID").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id("id"), jen.Id(scanFn),
		)),
	)
}

// insertColumns renders the column-name slice of the insertable payload,
// nil when the payload is empty.
func insertColumns(t *gen.Type) jen.Code {
	fields := t.InsertFields()
	if len(fields) == 0 {
		return jen.Nil()
	}
	return jen.Index().String().ValuesFunc(func(g *jen.Group) {
		for _, fd := range fields {
			g.Lit(fd.Name)
		}
	})
}

// insertArgs renders the payload values in column order, nil when empty.
func insertArgs(t *gen.Type) jen.Code {
	fields := t.InsertFields()
	if len(fields) == 0 {
		return jen.Nil()
	}
	return jen.Index().Any().ValuesFunc(func(g *jen.Group) {
		for _, fd := range fields {
			g.Id("payload").Dot(fd.StructField)
		}
	})
}

func genCreate(h gen.GeneratorHelper, f *jen.File, t *gen.Type, root, rt, modelName, specFn, scanFn string) {
	f.Comment("Create inserts payload in a transaction and returns the stored row,")
	f.Comment("defaults applied. Uniqueness breaches surface as UniqueViolationError.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("Create").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("payload").Qual(h.InsertablePkgPath(), "New"+t.Names.StructName),
	).Params(jen.Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "Create").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(),
			insertColumns(t), insertArgs(t), jen.Id(scanFn),
		)),
	)
}

func genUpdateByID(h gen.GeneratorHelper, f *jen.File, t *gen.Type, root, rt, modelName, specFn, scanFn string) {
	f.Comment("UpdateByID overwrites the insertable columns of the row in a")
	f.Comment("transaction and returns the updated row. A missing row returns a")
	f.Comment("NotFoundError before any write.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("UpdateByID").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(h.BaseType(t.ID)),
		jen.Id("payload").Qual(h.InsertablePkgPath(), "New"+t.Names.StructName),
	).Params(jen.Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "UpdateByID").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id("id"),
			insertColumns(t), insertArgs(t), jen.Id(scanFn),
		)),
	)
}

func genDeleteByID(h gen.GeneratorHelper, f *jen.File, t *gen.Type, rt, modelName, specFn string) {
	f.Comment("DeleteByID removes the row in a transaction. A missing row returns a")
	f.Comment("NotFoundError and nothing is deleted.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("DeleteByID").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(h.BaseType(t.ID)),
	).Error().Block(
		jen.Return(jen.Qual(rt, "DeleteByID").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id("id"),
		)),
	)
}

func genCount(f *jen.File, t *gen.Type, rt, modelName, specFn string) {
	f.Commentf("Count returns the number of rows in the %s table.", t.Name)
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("Count").Params(
		jen.Id("ctx").Qual("context", "Context"),
	).Params(jen.Int64(), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "Count").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(),
		)),
	)
}

// orderByID renders the stable ordering option for list results.
func orderByID(t *gen.Type, root, rt string) jen.Code {
	if !t.HasID() {
		return nil
	}
	return jen.Qual(rt, "OrderAsc").Call(jen.Qual(root, t.Names.Symbol+"PrimaryKey"))
}

func genRelationFinder(h gen.GeneratorHelper, f *jen.File, t *gen.Type, r *gen.Relation, root, rt, modelName, specFn, scanFn string) {
	method := "GetBy" + r.Field.StructField
	f.Commentf("%s returns the rows referencing %s through %s.", method, r.RefTable, r.Column)
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id(method).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("v").Add(h.BaseType(r.Field)),
	).Params(jen.Index().Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "Query").CallFunc(func(g *jen.Group) {
			g.Id("ctx")
			g.Id("m").Dot("drv")
			g.Id(specFn).Call()
			g.Id(scanFn)
			g.Qual(rt, "Where").Call(jen.Qual(rt, "EQ").Call(jen.Lit(r.Column), jen.Id("v")))
			if ord := orderByID(t, root, rt); ord != nil {
				g.Add(ord)
			}
		})),
	)
}

func genCreatedFinders(h gen.GeneratorHelper, f *jen.File, t *gen.Type, created *gen.Field, root, rt, modelName, specFn, scanFn string) {
	list := jen.Index().Qual(root, t.Names.StructName)
	query := func(extra ...jen.Code) *jen.Statement {
		return jen.Return(jen.Qual(rt, "Query").CallFunc(func(g *jen.Group) {
			g.Id("ctx")
			g.Id("m").Dot("drv")
			g.Id(specFn).Call()
			g.Id(scanFn)
			for _, e := range extra {
				g.Add(e)
			}
		}))
	}

	f.Comment("CreatedAfter returns the rows created strictly after ts, newest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("CreatedAfter").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("ts").Add(h.BaseType(created)),
	).Params(list.Clone(), jen.Error()).Block(
		query(
			jen.Qual(rt, "Where").Call(jen.Qual(rt, "GT").Call(jen.Lit(created.Name), jen.Id("ts"))),
			jen.Qual(rt, "OrderDesc").Call(jen.Lit(created.Name)),
		),
	)

	f.Comment("CreatedBefore returns the rows created strictly before ts, newest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("CreatedBefore").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("ts").Add(h.BaseType(created)),
	).Params(list.Clone(), jen.Error()).Block(
		query(
			jen.Qual(rt, "Where").Call(jen.Qual(rt, "LT").Call(jen.Lit(created.Name), jen.Id("ts"))),
			jen.Qual(rt, "OrderDesc").Call(jen.Lit(created.Name)),
		),
	)

	f.Comment("CreatedBetween returns the rows created in [start, end], oldest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("CreatedBetween").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("start").Add(h.BaseType(created)),
		jen.Id("end").Add(h.BaseType(created)),
	).Params(list.Clone(), jen.Error()).Block(
		query(
			jen.Qual(rt, "Where").Call(
				jen.Qual(rt, "GTE").Call(jen.Lit(created.Name), jen.Id("start")),
				jen.Qual(rt, "LTE").Call(jen.Lit(created.Name), jen.Id("end")),
			),
			jen.Qual(rt, "OrderAsc").Call(jen.Lit(created.Name)),
		),
	)

	f.Comment("Recent returns the most recently created rows, newest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("Recent").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("limit").Int64(),
	).Params(list.Clone(), jen.Error()).Block(
		query(
			jen.Qual(rt, "OrderDesc").Call(jen.Lit(created.Name)),
			jen.Qual(rt, "Limit").Call(jen.Id("limit")),
		),
	)
}

func genUpdatedFinders(h gen.GeneratorHelper, f *jen.File, t *gen.Type, updated *gen.Field, root, rt, modelName, specFn, scanFn string) {
	list := jen.Index().Qual(root, t.Names.StructName)

	f.Comment("UpdatedAfter returns the rows updated strictly after ts, newest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("UpdatedAfter").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("ts").Add(h.BaseType(updated)),
	).Params(list.Clone(), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "Query").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id(scanFn),
			jen.Qual(rt, "Where").Call(jen.Qual(rt, "GT").Call(jen.Lit(updated.Name), jen.Id("ts"))),
			jen.Qual(rt, "OrderDesc").Call(jen.Lit(updated.Name)),
		)),
	)

	f.Comment("RecentlyUpdated returns the most recently updated rows, newest first.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id("RecentlyUpdated").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("limit").Int64(),
	).Params(list.Clone(), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "Query").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id(scanFn),
			jen.Qual(rt, "OrderDesc").Call(jen.Lit(updated.Name)),
			jen.Qual(rt, "Limit").Call(jen.Id("limit")),
		)),
	)
}

func genBoolSetter(h gen.GeneratorHelper, f *jen.File, t *gen.Type, b *gen.Field, root, rt, modelName, specFn, scanFn string) {
	method := "Set" + b.StructField
	updated := t.UpdatedAt()

	cols := jen.Index().String().ValuesFunc(func(g *jen.Group) {
		g.Lit(b.Name)
		if updated != nil {
			g.Lit(updated.Name)
		}
	})
	args := jen.Index().Any().ValuesFunc(func(g *jen.Group) {
		g.Id("value")
		if updated != nil {
			if updated.EpochTime() {
				g.Qual("time", "Now").Call().Dot("Unix").Call()
			} else {
				g.Qual("time", "Now").Call().Dot("UTC").Call()
			}
		}
	})

	if updated != nil {
		f.Commentf("%s flips the %s flag in a transaction, touching %s, and returns", method, b.Name, updated.Name)
	} else {
		f.Commentf("%s flips the %s flag in a transaction and returns", method, b.Name)
	}
	f.Comment("the updated row. A missing row returns a NotFoundError.")
	f.Func().Params(jen.Id("m").Op("*").Id(modelName)).Id(method).Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("id").Add(h.BaseType(t.ID)),
		jen.Id("value").Bool(),
	).Params(jen.Qual(root, t.Names.StructName), jen.Error()).Block(
		jen.Return(jen.Qual(rt, "UpdateByID").Call(
			jen.Id("ctx"), jen.Id("m").Dot("drv"), jen.Id(specFn).Call(), jen.Id("id"),
			cols, args, jen.Id(scanFn),
		)),
	)
}
