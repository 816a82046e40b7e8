// Package tessera holds the runtime contracts that generated table
// bindings compile against: column metadata, row conversion, and the
// primary-key interfaces satisfied by generated key types.
//
// The code generator itself lives under compiler/; see cmd/tessera for
// the command-line entry point.
package tessera

import "github.com/tesseradb/tessera/schema/coltype"

// Column carries the metadata of a single table column. The generator
// emits one Column singleton per field in the table's column subpackage.
type Column struct {
	// Name is the column name in the external table.
	Name string
	// Index is the ordinal position of the column in declaration order.
	Index int
	// Type is the storage type of the column.
	Type coltype.Type
	// Nullable reports if the column accepts nulls.
	Nullable bool
}

// Table is implemented by every generated table binding.
//
// Decoding is direction-specific and cannot be expressed on the value
// receiver, so the generator emits a package-level <Table>FromRow
// function next to each implementation.
type Table interface {
	// TableName returns the external table name.
	TableName() string
	// TableColumns returns the column singletons in declaration order.
	TableColumns() []Column
	// ToRow encodes the record into a row, one column per field in
	// declaration order. The first failing column aborts the encode.
	ToRow() (Row, error)
}

// PrimaryKey is implemented by the complete key type generated for a
// table. KeyParts returns the encoded key components in primary-key
// index order; the generated <PkType>FromParts function provides the
// reverse direction losslessly.
type PrimaryKey interface {
	KeyParts() ([]Value, error)
}

// PartialKey is implemented by every generated key state with at least
// one populated component, the complete key included. PartialKeyParts
// returns exactly the populated prefix, with no trailing markers.
type PartialKey interface {
	PartialKeyParts() ([]Value, error)
}
