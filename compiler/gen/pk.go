package gen

import (
	"fmt"

	"github.com/dave/jennifer/jen"
)

// genPk generates the key file of a table ({table}_pk.go): the complete
// key type, the builder states of the partial-key lattice, the
// advancement methods, and the parts bridges.
func (g *Generator) genPk(t *Table) *jen.File {
	f := g.schemaFile()
	states := t.PkLattice()

	genStateTypes(f, t, states)
	genEmptyKey(f, t, states[0])
	for _, s := range states {
		if !s.Terminal() {
			genAdvance(f, t, s, states[s.Index+1])
		}
	}
	genPartsBridge(f, t, states[len(states)-1])
	for _, s := range states[1:] {
		genPartialParts(f, t, s)
	}
	genAssertions(f, t, states)
	return f
}

// genStateTypes emits the complete key type followed by the builder
// states, fully unset first.
func genStateTypes(f *jen.File, t *Table, states []State) {
	complete := states[len(states)-1]
	f.Commentf("%s is the complete primary key of %s. Its fields are laid out", t.PkType, t.Name)
	f.Comment("in primary-key index order, which may differ from declaration order.")
	f.Type().Id(t.PkType).StructFunc(func(group *jen.Group) {
		for _, pf := range complete.Populated {
			group.Id(pf.Name).Add(slotCode(pf))
		}
	})

	for _, s := range states[:len(states)-1] {
		switch s.Index {
		case 0:
			f.Commentf("%s is the key prefix of %s with no components populated:", s.TypeName, t.Name)
			f.Comment("the starting state of the key builder. Its zero value is ready to use.")
		case 1:
			f.Commentf("%s is the key prefix of %s with the first component populated.", s.TypeName, t.Name)
		default:
			f.Commentf("%s is the key prefix of %s with the first %d components populated.", s.TypeName, t.Name, s.Index)
		}
		f.Type().Id(s.TypeName).StructFunc(func(group *jen.Group) {
			for _, pf := range s.Populated {
				group.Id(pf.Name).Add(slotCode(pf))
			}
		})
	}
}

// genEmptyKey emits the EmptyKey method returning the fully unset state.
func genEmptyKey(f *jen.File, t *Table, empty State) {
	f.Commentf("EmptyKey returns the empty key prefix of %s.", t.Name)
	f.Func().Params(jen.Id(t.Name)).Id("EmptyKey").Params().Id(empty.TypeName).Block(
		jen.Return(jen.Id(empty.TypeName).Values()),
	)
}

// genAdvance emits the advancement method of one non-terminal state,
// and the static constructor mirror for the first state. The method is
// named after the key field it populates; supplying components out of
// key order is impossible because the method that sets slot k exists
// only on the state with k populated slots.
func genAdvance(f *jen.File, t *Table, s, next State) {
	field := s.Next
	param := paramName(field)

	values := func(group *jen.Group) {
		for _, pf := range s.Populated {
			group.Add(jen.Id(pf.Name).Op(":").Id("k").Dot(pf.Name))
		}
		group.Add(jen.Id(field.Name).Op(":").Add(slotExpr(field, jen.Id(param))))
	}

	f.Commentf("%s populates the %q key component and advances the builder.", field.Name, field.ColumnName())
	recv := jen.Id(s.TypeName)
	if s.Index > 0 {
		recv = jen.Id("k").Id(s.TypeName)
	}
	f.Func().Params(recv).Id(field.Name).
		Params(jen.Id(param).Add(typeCode(field.Type))).
		Id(next.TypeName).
		Block(jen.Return(jen.Id(next.TypeName).ValuesFunc(values)))

	if s.Index == 0 {
		ctor := fmt.Sprintf("New%s%s", t.PkType, field.Name)
		f.Commentf("%s starts a %s key with the %q component, mirroring the", ctor, t.Name, field.ColumnName())
		f.Commentf("%s method on the empty prefix.", field.Name)
		f.Func().Id(ctor).
			Params(jen.Id(param).Add(typeCode(field.Type))).
			Id(next.TypeName).
			Block(jen.Return(jen.Id(next.TypeName).ValuesFunc(values)))
	}
}

// genPartsBridge emits the PrimaryKey contract on the complete key and
// the lossless reverse constructor.
func genPartsBridge(f *jen.File, t *Table, complete State) {
	f.Commentf("KeyParts implements tessera.PrimaryKey: the encoded key components of")
	f.Commentf("%s in primary-key index order.", t.Name)
	f.Func().Params(jen.Id("k").Id(t.PkType)).Id("KeyParts").Params().
		Params(jen.Index().Qual(runtimePkg, "Value"), jen.Error()).
		Block(jen.Return(jen.Qual(runtimePkg, "EncodeKeyParts").CallFunc(func(group *jen.Group) {
			for _, pf := range complete.Populated {
				group.Add(jen.Id("k").Dot(pf.Name))
			}
		})))

	ctor := t.PkType + "FromParts"
	f.Commentf("%s assembles a complete %s key from its parts, in", ctor, t.Name)
	f.Comment("primary-key index order.")
	f.Func().Id(ctor).ParamsFunc(func(group *jen.Group) {
		for _, pf := range complete.Populated {
			group.Add(jen.Id(paramName(pf)).Add(slotCode(pf)))
		}
	}).Id(t.PkType).Block(
		jen.Return(jen.Id(t.PkType).ValuesFunc(func(group *jen.Group) {
			for _, pf := range complete.Populated {
				group.Add(jen.Id(pf.Name).Op(":").Id(paramName(pf)))
			}
		})),
	)
}

// genPartialParts emits the PartialKey contract for one populated
// state: exactly the leading components, no trailing markers.
func genPartialParts(f *jen.File, t *Table, s State) {
	f.Commentf("PartialKeyParts implements tessera.PartialKey: the encoded prefix of the")
	if s.Terminal() {
		f.Commentf("%s key. The complete key is a valid prefix of itself.", t.Name)
	} else {
		f.Commentf("%s key held by this builder state.", t.Name)
	}
	f.Func().Params(jen.Id("k").Id(s.TypeName)).Id("PartialKeyParts").Params().
		Params(jen.Index().Qual(runtimePkg, "Value"), jen.Error()).
		Block(jen.Return(jen.Qual(runtimePkg, "EncodeKeyParts").CallFunc(func(group *jen.Group) {
			for _, pf := range s.Populated {
				group.Add(jen.Id("k").Dot(pf.Name))
			}
		})))
}

// genAssertions pins the generated key types to the runtime contracts.
func genAssertions(f *jen.File, t *Table, states []State) {
	f.Var().DefsFunc(func(group *jen.Group) {
		group.Add(jen.Id("_").Qual(runtimePkg, "PrimaryKey").Op("=").Id(t.PkType).Values())
		for _, s := range states[1:] {
			group.Add(jen.Id("_").Qual(runtimePkg, "PartialKey").Op("=").Id(s.TypeName).Values())
		}
	})
}
