package gen

import (
	"github.com/dave/jennifer/jen"
)

// genTable generates the table bindings file ({table}_table.go): the
// tessera.Table contract on the record, the row decode counterpart, and
// the key extraction helpers.
func (g *Generator) genTable(t *Table) *jen.File {
	f := g.schemaFile()
	genTableMeta(f, t)
	genToRow(f, t)
	genFromRow(f, t)
	genIntoPk(f, t)

	f.Var().Defs(
		jen.Id("_").Qual(runtimePkg, "Table").Op("=").Id(t.Name).Values(),
	)
	return f
}

// genTableMeta emits TableName and TableColumns, both delegating to the
// column subpackage.
func genTableMeta(f *jen.File, t *Table) {
	colPkg := t.columnPkgPath()

	f.Commentf("TableName returns the external name of the %s table.", t.DisplayName())
	f.Func().Params(jen.Id(t.Name)).Id("TableName").Params().String().Block(
		jen.Return(jen.Qual(colPkg, "Table")),
	)

	f.Comment("TableColumns returns the column singletons in declaration order.")
	f.Func().Params(jen.Id(t.Name)).Id("TableColumns").Params().Index().Qual(runtimePkg, "Column").Block(
		jen.Return(jen.Qual(colPkg, "Columns")),
	)
}

// genToRow emits the row encode path: one column per field in
// declaration order, dispatching on the encoding mode and aborting on
// the first failing column.
func genToRow(f *jen.File, t *Table) {
	recv := t.Receiver()

	f.Commentf("ToRow encodes the record into a row, one column per %s field in", t.DisplayName())
	f.Comment("declaration order.")
	f.Func().Params(jen.Id(recv).Id(t.Name)).Id("ToRow").Params().
		Params(jen.Qual(runtimePkg, "Row"), jen.Error()).
		BlockFunc(func(group *jen.Group) {
			group.Id("b").Op(":=").Qual(runtimePkg, "NewRowBuilder").Call(jen.Lit(len(t.Fields)))
			for _, fld := range t.Fields {
				method, arg := "AddColumn", jen.Code(jen.Id(recv).Dot(fld.Name))
				switch {
				case !fld.Serde.IsZero():
					method = "SerializeColumn"
				case !fld.With.IsZero():
					arg = slotExpr(fld, arg)
				}
				group.If(
					jen.Err().Op(":=").Id("b").Dot(method).Call(arg),
					jen.Err().Op("!=").Nil(),
				).Block(
					jen.Return(jen.Qual(runtimePkg, "Row").Values(), jen.Err()),
				)
			}
			group.Return(jen.Id("b").Dot("Row").Call(), jen.Nil())
		})
}

// genFromRow emits the package-level decode counterpart of ToRow,
// mirroring the three encoding modes and aborting on the first failing
// column.
func genFromRow(f *jen.File, t *Table) {
	name := t.Name + "FromRow"

	f.Commentf("%s decodes a row into a %s record. The row columns must", name, t.DisplayName())
	f.Comment("be laid out in declaration order.")
	f.Func().Id(name).Params(jen.Id("r").Qual(runtimePkg, "Row")).
		Params(jen.Id(t.Name), jen.Error()).
		BlockFunc(func(group *jen.Group) {
			group.Var().Id("out").Id(t.Name)
			for _, fld := range t.Fields {
				genFieldDecode(group, t, fld)
			}
			group.Return(jen.Id("out"), jen.Nil())
		})
}

// genFieldDecode emits the decode statements of a single column.
// Wrapper fields decode through a temporary of the wrapper type and
// convert back to the declared type.
func genFieldDecode(group *jen.Group, t *Table, fld *Field) {
	dst := jen.Id("out").Dot(fld.Name)
	fail := jen.Return(jen.Id("out"), jen.Err())

	switch {
	case !fld.Serde.IsZero():
		group.If(
			jen.Err().Op(":=").Id("r").Dot("DecodeSerialized").Call(jen.Lit(fld.Index), jen.Op("&").Add(dst)),
			jen.Err().Op("!=").Nil(),
		).Block(fail)
	case !fld.With.IsZero():
		tmp := "w" + fld.Name
		group.Var().Id(tmp).Add(refCode(fld.With))
		group.If(
			jen.Err().Op(":=").Id("r").Dot("Decode").Call(jen.Lit(fld.Index), jen.Op("&").Id(tmp)),
			jen.Err().Op("!=").Nil(),
		).Block(fail)
		group.Add(dst).Op("=").Add(declExpr(fld, jen.Id(tmp)))
	default:
		group.If(
			jen.Err().Op(":=").Id("r").Dot("Decode").Call(jen.Lit(fld.Index), jen.Op("&").Add(dst)),
			jen.Err().Op("!=").Nil(),
		).Block(fail)
	}
}

// genIntoPk emits the key extraction helpers: IntoPk on the value and
// Pk on the pointer, both producing the complete key through FromParts.
func genIntoPk(f *jen.File, t *Table) {
	recv := t.Receiver()
	args := func(group *jen.Group) {
		for _, pf := range t.PkFields() {
			group.Add(slotExpr(pf, jen.Id(recv).Dot(pf.Name)))
		}
	}

	f.Comment("IntoPk extracts the complete primary key of the record.")
	f.Func().Params(jen.Id(recv).Id(t.Name)).Id("IntoPk").Params().Id(t.PkType).Block(
		jen.Return(jen.Id(t.PkType + "FromParts").CallFunc(args)),
	)

	f.Comment("Pk extracts the complete primary key without copying the record.")
	f.Func().Params(jen.Id(recv).Op("*").Id(t.Name)).Id("Pk").Params().Id(t.PkType).Block(
		jen.Return(jen.Id(t.PkType + "FromParts").CallFunc(args)),
	)
}
