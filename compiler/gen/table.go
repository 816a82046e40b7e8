package gen

import (
	"fmt"
	"go/token"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"

	"github.com/tesseradb/tessera/compiler/load"
	"github.com/tesseradb/tessera/schema/coltype"
)

type (
	// Table represents one annotated table type and the information the
	// emitter needs about it.
	Table struct {
		*Config
		schema *load.Schema
		// Name holds the table type name.
		Name string
		// Fields holds the columns in declaration order.
		Fields []*Field
		fields map[string]*Field
		// PkType is the name of the generated key type.
		PkType string
		// ColumnModule is the name of the generated column subpackage.
		ColumnModule string
	}

	// Field holds the information of a table column used by the emitter.
	Field struct {
		def *load.Field
		typ *Table
		// Name is the Go field name.
		Name string
		// Type holds the declared type information of the field.
		Type *coltype.TypeInfo
		// Index is the ordinal position of the column in declaration order.
		Index int
		// PkIndex holds the primary-key index, or nil for non-key fields.
		PkIndex *int
		// With is the wrapper newtype, if one is set.
		With load.Ref
		// Serde is the serialization bridge type, if one is set.
		Serde load.Ref
		// Nullable reports if the column accepts nulls.
		Nullable bool
	}
)

// reservedFieldNames are identifiers the generator claims: the column
// subpackage declarations and the methods emitted on the record and on
// the key states. A field with one of these names would shadow a
// singleton or redeclare a method.
var reservedFieldNames = map[string]bool{
	"Table":           true,
	"Columns":         true,
	"TableName":       true,
	"TableColumns":    true,
	"ToRow":           true,
	"IntoPk":          true,
	"Pk":              true,
	"EmptyKey":        true,
	"KeyParts":        true,
	"PartialKeyParts": true,
}

// NewTable creates a table from a loaded schema and validates it. The
// first structural error short-circuits: no code is generated for a
// schema that fails validation.
func NewTable(c *Config, schema *load.Schema) (*Table, error) {
	t := &Table{
		Config:       c,
		schema:       schema,
		Name:         schema.Name,
		PkType:       schema.PkType,
		ColumnModule: schema.ColumnModule,
		Fields:       make([]*Field, 0, len(schema.Fields)),
		fields:       make(map[string]*Field, len(schema.Fields)),
	}
	if err := validTableName(t.Name); err != nil {
		return nil, err
	}
	// Schemas built in code, rather than loaded from source, may leave
	// the generated names unset.
	if t.PkType == "" {
		t.PkType = t.Name + "Pk"
	}
	if t.ColumnModule == "" {
		t.ColumnModule = inflect.Underscore(t.Name)
	}
	if len(schema.TypeParams) > 0 {
		return nil, NewValidationError(t.Name, "", schema.Pos, "generic table types are not supported")
	}
	for i, f := range schema.Fields {
		tf := &Field{
			def:      f,
			typ:      t,
			Name:     f.Name,
			Type:     f.Info,
			Index:    i,
			PkIndex:  f.Pk,
			With:     f.With,
			Serde:    f.Serde,
			Nullable: f.Nullable,
		}
		if !tf.With.IsZero() && !tf.Serde.IsZero() {
			return nil, NewValidationError(t.Name, tf.Name, f.Pos, "only one of 'with' and 'serde' are supported, not both")
		}
		if _, ok := t.fields[tf.Name]; ok {
			return nil, NewValidationError(t.Name, tf.Name, f.Pos, fmt.Sprintf("field %q redeclared for table %q", tf.Name, t.Name))
		}
		if reservedFieldNames[tf.Name] {
			return nil, NewValidationError(t.Name, tf.Name, f.Pos, fmt.Sprintf("field name %q collides with a generated declaration", tf.Name))
		}
		t.fields[tf.Name] = tf
		t.Fields = append(t.Fields, tf)
	}
	if err := t.checkPks(); err != nil {
		return nil, err
	}
	return t, nil
}

// TableName returns the external table name.
func (t *Table) TableName() string { return t.schema.TableName() }

// Pos returns the source position of the table type name.
func (t *Table) Pos() token.Position { return t.schema.Pos }

// PkFields returns the primary-key fields ordered by their key index.
// The sort is stable, so the user's declaration order stays secondary
// to the indices.
func (t *Table) PkFields() []*Field {
	pks := make([]*Field, 0, len(t.Fields))
	for _, f := range t.Fields {
		if f.IsPk() {
			pks = append(pks, f)
		}
	}
	sort.SliceStable(pks, func(i, j int) bool {
		return *pks[i].PkIndex < *pks[j].PkIndex
	})
	return pks
}

// checkPks enforces the primary-key invariants: at least one key field,
// and indices forming a dense prefix of the natural numbers from 0.
func (t *Table) checkPks() error {
	pks := t.PkFields()
	if len(pks) == 0 {
		return NewValidationError(t.Name, "", t.schema.Pos,
			"no primary key columns specified, 1 or more is required")
	}
	for expected, f := range pks {
		switch index := *f.PkIndex; {
		case index == expected:
		case index < expected:
			return NewValidationError(t.Name, f.Name, f.def.Pos,
				fmt.Sprintf("found duplicate pk index %d", index))
		default:
			return NewValidationError(t.Name, f.Name, f.def.Pos,
				fmt.Sprintf("pk indices aren't incremental, found %d, expected %d", index, expected))
		}
	}
	return nil
}

// Receiver returns the receiver name of the table type in generated
// methods.
func (t *Table) Receiver() string {
	r, _ := utf8.DecodeRuneInString(t.Name)
	recv := string(unicode.ToLower(r))
	if token.IsKeyword(recv) {
		recv = "_" + recv
	}
	return recv
}

// IsPk reports if the field is a primary-key component.
func (f *Field) IsPk() bool { return f.PkIndex != nil }

// ColumnName returns the external column name.
func (f *Field) ColumnName() string { return f.def.ColumnName() }

// ColumnType returns the storage type recorded in the column metadata.
// Serialized columns are stored as bytes regardless of declared type.
func (f *Field) ColumnType() coltype.Type {
	if !f.Serde.IsZero() {
		return coltype.TypeBytes
	}
	return f.Type.Type
}

// validTableName checks the table type is named by a valid Go
// identifier. Unexported records are allowed; the generated key types
// follow the record's visibility.
func validTableName(name string) error {
	r, _ := utf8.DecodeRuneInString(name)
	if name == "" || !unicode.IsLetter(r) && r != '_' {
		return NewSchemaError(name, "", "table type must be a valid identifier", nil)
	}
	return nil
}
