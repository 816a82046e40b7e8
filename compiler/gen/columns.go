package gen

import (
	"github.com/dave/jennifer/jen"
)

// genColumns generates the column subpackage of a table: the table-name
// constant, one column singleton per field, and the ordered Columns
// slice. Generated queries and transports reference columns through
// these singletons instead of string literals.
func (g *Generator) genColumns(t *Table) *jen.File {
	f := g.columnFile(t)

	f.Commentf("Table is the external name of the %s table.", t.DisplayName())
	f.Const().Id("Table").Op("=").Lit(t.TableName())

	for _, fld := range t.Fields {
		f.Commentf("%s holds the metadata of the %q column.", fld.Name, fld.ColumnName())
		f.Var().Id(fld.Name).Op("=").Qual(runtimePkg, "Column").Values(columnDict(fld))
	}

	f.Comment("Columns lists the table columns in declaration order.")
	f.Var().Id("Columns").Op("=").Index().Qual(runtimePkg, "Column").ValuesFunc(func(group *jen.Group) {
		for _, fld := range t.Fields {
			group.Line().Id(fld.Name)
		}
		group.Line()
	})
	return f
}

// columnDict builds the composite literal of one column singleton.
func columnDict(fld *Field) jen.Dict {
	d := jen.Dict{
		jen.Id("Name"):  jen.Lit(fld.ColumnName()),
		jen.Id("Index"): jen.Lit(fld.Index),
		jen.Id("Type"):  jen.Qual(coltypePkg, fld.ColumnType().ConstName()),
	}
	if fld.Nullable || fld.Type.Nillable {
		d[jen.Id("Nullable")] = jen.Lit(true)
	}
	return d
}
