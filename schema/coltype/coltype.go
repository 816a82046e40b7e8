// Package coltype defines the column type system shared by the runtime
// contracts and the code generator.
package coltype

// Type is the storage type of a table column.
type Type uint8

// List of column types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeInt64
	TypeFloat64
	TypeString
	TypeBytes
	TypeTime
	TypeUUID
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeBool:    "bool",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeTime:    "time.Time",
	TypeUUID:    "uuid.UUID",
}

// String returns the Go literal name of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// Valid reports if the given type is a valid column type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is a numeric type.
func (t Type) Numeric() bool {
	return t == TypeInt64 || t == TypeFloat64
}

// ConstName returns the constant name of the type, as referenced
// by generated code (e.g. "TypeString").
func (t Type) ConstName() string {
	switch t {
	case TypeBool:
		return "TypeBool"
	case TypeInt64:
		return "TypeInt64"
	case TypeFloat64:
		return "TypeFloat64"
	case TypeString:
		return "TypeString"
	case TypeBytes:
		return "TypeBytes"
	case TypeTime:
		return "TypeTime"
	case TypeUUID:
		return "TypeUUID"
	default:
		return "TypeInvalid"
	}
}

// TypeInfo holds the type information of a column as it appears in the
// user's source: the storage type plus the declared Go type expression.
type TypeInfo struct {
	Type Type
	// Ident is the declared Go type as written in the schema
	// (e.g. "string", "ShardID", "*time.Time").
	Ident string
	// PkgPath is the import path of the declared type, if it is not a
	// builtin or defined in the schema package itself.
	PkgPath string
	// Nillable reports if the declared type is a pointer.
	Nillable bool
}

// String returns the declared Go type of the column.
func (t TypeInfo) String() string {
	if t.Ident != "" {
		return t.Ident
	}
	return t.Type.String()
}

// goTypes maps Go type literals to their storage type. All integer
// widths share the int64 storage class, unsigned included; the value
// codec range-checks on the way back out.
var goTypes = map[string]Type{
	"bool":      TypeBool,
	"int":       TypeInt64,
	"int8":      TypeInt64,
	"int16":     TypeInt64,
	"int32":     TypeInt64,
	"int64":     TypeInt64,
	"uint":      TypeInt64,
	"uint8":     TypeInt64,
	"uint16":    TypeInt64,
	"uint32":    TypeInt64,
	"uint64":    TypeInt64,
	"float32":   TypeFloat64,
	"float64":   TypeFloat64,
	"string":    TypeString,
	"[]byte":    TypeBytes,
	"time.Time": TypeTime,
	"uuid.UUID": TypeUUID,
}

// FromGoType resolves the storage type for a Go type literal. Unknown
// types resolve to TypeBytes, the storage class of serialized columns.
func FromGoType(ident string) Type {
	if t, ok := goTypes[ident]; ok {
		return t
	}
	return TypeBytes
}
