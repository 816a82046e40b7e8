package gen

import (
	"go/token"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tesseradb/tessera/compiler/load"
	"github.com/tesseradb/tessera/schema/coltype"
)

var titler = cases.Title(language.Und, cases.NoLower)

// DisplayName returns the table name as it reads in generated doc
// comments, with the leading rune title-cased.
func (t *Table) DisplayName() string {
	return titler.String(t.Name)
}

// Import paths of the runtime packages referenced by generated code.
const (
	runtimePkg = "github.com/tesseradb/tessera"
	coltypePkg = "github.com/tesseradb/tessera/schema/coltype"
)

// columnPkgPath returns the import path of the table's column subpackage.
func (t *Table) columnPkgPath() string {
	return t.Package + "/" + t.ColumnModule
}

// typeCode returns the Jennifer code of a declared field type.
func typeCode(info *coltype.TypeInfo) jen.Code {
	base := baseTypeCode(info)
	if !info.Nillable {
		return base
	}
	if info.PkgPath == "" {
		// For unqualified types, "*" folds into the identifier to avoid
		// whitespace between the star and the type in struct fields.
		return jen.Id("*" + info.Ident)
	}
	return jen.Op("*").Add(base)
}

// baseTypeCode returns the Jennifer code of the type without pointer.
func baseTypeCode(info *coltype.TypeInfo) jen.Code {
	if info.PkgPath != "" {
		name := info.Ident
		if idx := strings.LastIndex(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		return jen.Qual(info.PkgPath, name)
	}
	return jen.Id(info.Ident)
}

// refCode returns the Jennifer code of a with/serde type reference.
func refCode(r load.Ref) jen.Code {
	if r.PkgPath != "" {
		return jen.Qual(r.PkgPath, r.Ident)
	}
	return jen.Id(r.Ident)
}

// slotCode returns the Jennifer code of a key slot type: the wrapper
// where one is set, the declared type otherwise.
func slotCode(f *Field) jen.Code {
	if !f.With.IsZero() {
		return refCode(f.With)
	}
	return typeCode(f.Type)
}

// declExpr converts a value expression of the slot type back to the
// declared field type.
func declExpr(f *Field, value jen.Code) jen.Code {
	if f.With.IsZero() {
		return value
	}
	if f.Type.Nillable {
		return jen.Parens(typeCode(f.Type)).Call(value)
	}
	return jen.Add(baseTypeCode(f.Type)).Call(value)
}

// slotExpr converts a value expression of the declared field type to
// the slot type.
func slotExpr(f *Field, value jen.Code) jen.Code {
	if !f.With.IsZero() {
		return jen.Add(refCode(f.With)).Call(value)
	}
	return value
}

// paramName returns the parameter name used for a field in generated
// builder methods: the field name with its leading exported run
// lowered ("TenantID" becomes "tenantID", "ID" becomes "id").
func paramName(f *Field) string {
	name := []rune(f.Name)
	i := 0
	for i < len(name) && unicode.IsUpper(name[i]) {
		i++
	}
	if i < len(name) && i > 1 {
		// Keep the last upper rune with the word it starts ("IDType"
		// becomes "idType", not "idtype").
		i--
	}
	for j := 0; j < i; j++ {
		name[j] = unicode.ToLower(name[j])
	}
	p := string(name)
	if token.IsKeyword(p) {
		p = "_" + p
	}
	return p
}
