// Package load parses annotated table structs from user packages into
// the intermediate form consumed by the code generator.
package load

import (
	"fmt"
	"go/token"
	"strconv"
	"strings"

	"github.com/go-openapi/inflect"

	"github.com/tesseradb/tessera/schema/coltype"
)

// Directive is the doc-comment marker that opts a struct into generation.
const Directive = "tessera:table"

// TagKey is the struct-tag key holding per-field options.
const TagKey = "tessera"

// Schema represents one annotated table struct, loaded from source.
type Schema struct {
	// Name is the struct name.
	Name string
	// Pos is the source position of the struct name, used for
	// diagnostics attributed to the record.
	Pos token.Position
	// Table is the external table name. Empty means the struct name.
	Table string
	// PkType is the resolved name of the generated key type.
	PkType string
	// ColumnModule is the resolved name of the generated column
	// subpackage.
	ColumnModule string
	// TypeParams holds the names of the struct's type parameters, if any.
	TypeParams []string
	// Fields holds the columns in declaration order.
	Fields []*Field
}

// TableName returns the external table name, defaulting to the struct name.
func (s *Schema) TableName() string {
	if s.Table != "" {
		return s.Table
	}
	return s.Name
}

// Ref is a reference to a named type in the user's source, as used by
// the with/serde field options.
type Ref struct {
	// Ident is the type name without package qualifier.
	Ident string
	// PkgPath is the import path of the type's package. Empty for types
	// declared in the schema package itself.
	PkgPath string
}

// IsZero reports if the reference is unset.
func (r Ref) IsZero() bool { return r.Ident == "" }

// Field represents one column of an annotated struct.
type Field struct {
	// Name is the Go field name.
	Name string
	// Pos is the source position of the field name.
	Pos token.Position
	// Info holds the declared type of the field.
	Info *coltype.TypeInfo
	// Column is the column name override from the rename option.
	// Empty means the field name.
	Column string
	// Pk holds the primary-key index if the field is a key component.
	Pk *int
	// With is the newtype wrapper used for encoding and as the key slot
	// type.
	With Ref
	// Serde is the serialization bridge type: set when the field's
	// encode/decode routes through serialization.
	Serde Ref
	// Nullable reports if the column accepts nulls. Pointer fields are
	// nullable implicitly.
	Nullable bool
}

// ColumnName returns the external column name, defaulting to the field name.
func (f *Field) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// resolveNames fills the PkType and ColumnModule defaults from the
// struct name.
func (s *Schema) resolveNames() {
	if s.PkType == "" {
		s.PkType = s.Name + "Pk"
	}
	if s.ColumnModule == "" {
		s.ColumnModule = inflect.Underscore(s.Name)
	}
}

// parseDirective parses the options following the tessera:table marker.
// The grammar is a space-separated list of key=value pairs.
func (s *Schema) parseDirective(args string) error {
	for _, opt := range strings.Fields(args) {
		key, value, ok := strings.Cut(opt, "=")
		if !ok {
			return fmt.Errorf("directive option %q: expected key=value", opt)
		}
		switch key {
		case "table":
			s.Table = strings.Trim(value, `"`)
		case "pk_type":
			if !validIdent(value) {
				return fmt.Errorf("directive option pk_type: %q is not a valid identifier", value)
			}
			s.PkType = value
		case "column_module":
			if !validIdent(value) {
				return fmt.Errorf("directive option column_module: %q is not a valid identifier", value)
			}
			s.ColumnModule = value
		default:
			return fmt.Errorf("unknown directive option %q", key)
		}
	}
	return nil
}

// parseTag parses the per-field options of a tessera struct tag. The
// caller resolves type references afterwards, since resolution needs the
// file's import table.
func (f *Field) parseTag(tag string, resolve func(string) (Ref, error)) error {
	var with, serde string
	for _, opt := range strings.Split(tag, ",") {
		if opt = strings.TrimSpace(opt); opt == "" {
			continue
		}
		key, value, hasValue := strings.Cut(opt, "=")
		switch key {
		case "pk":
			if !hasValue {
				return fmt.Errorf("field %q: pk option requires an index", f.Name)
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("field %q: pk index %q must be a non-negative integer", f.Name, value)
			}
			f.Pk = &n
		case "with":
			if !hasValue || value == "" {
				return fmt.Errorf("field %q: with option requires a type", f.Name)
			}
			with = value
		case "serde":
			if !hasValue || value == "" {
				return fmt.Errorf("field %q: serde option requires a type", f.Name)
			}
			serde = value
		case "rename":
			if !hasValue || value == "" {
				return fmt.Errorf("field %q: rename option requires a name", f.Name)
			}
			f.Column = value
		case "nullable":
			if hasValue {
				return fmt.Errorf("field %q: nullable option takes no value", f.Name)
			}
			f.Nullable = true
		default:
			return fmt.Errorf("field %q: unknown option %q", f.Name, key)
		}
	}
	if with != "" && serde != "" {
		return fmt.Errorf("field %q: only one of 'with' and 'serde' are supported, not both", f.Name)
	}
	var err error
	if with != "" {
		if f.With, err = resolve(with); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	if serde != "" {
		if f.Serde, err = resolve(serde); err != nil {
			return fmt.Errorf("field %q: %w", f.Name, err)
		}
	}
	return nil
}

func validIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
