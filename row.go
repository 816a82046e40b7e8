package tessera

import (
	"github.com/vmihailenco/msgpack/v5"

	"github.com/tesseradb/tessera/schema/coltype"
)

// Row is an ordered sequence of column values, one per table column in
// declaration order.
type Row struct {
	values []Value
}

// NewRow creates a row from the given values. Used by transport layers
// that already hold decoded column values.
func NewRow(values []Value) Row {
	return Row{values: values}
}

// Len returns the number of columns in the row.
func (r Row) Len() int { return len(r.values) }

// Value returns the value at the given column position.
func (r Row) Value(i int) Value { return r.values[i] }

// Values returns the underlying value slice.
func (r Row) Values() []Value { return r.values }

// Decode decodes the value at the given position into dst using the
// default codec. dst must be a non-nil pointer, or implement ValueDecoder.
func (r Row) Decode(i int, dst any) error {
	if i < 0 || i >= len(r.values) {
		return NewConvertError(i, coltype.TypeInvalid, "column index out of range", nil)
	}
	if err := DecodeValue(r.values[i], dst); err != nil {
		return NewConvertError(i, r.values[i].Type(), "decode", err)
	}
	return nil
}

// DecodeSerialized decodes a serialized column at the given position into
// dst. It is the decode half of the serde bridge: the stored bytes are
// unmarshaled with msgpack.
func (r Row) DecodeSerialized(i int, dst any) error {
	if i < 0 || i >= len(r.values) {
		return NewConvertError(i, coltype.TypeInvalid, "column index out of range", nil)
	}
	v := r.values[i]
	if v.IsNull() {
		return NewConvertError(i, v.Type(), "decode serialized", ErrNullValue)
	}
	if v.Type() != coltype.TypeBytes {
		return NewConvertError(i, v.Type(), "decode serialized", ErrTypeMismatch)
	}
	if err := msgpack.Unmarshal(v.bs, dst); err != nil {
		return NewConvertError(i, v.Type(), "decode serialized", err)
	}
	return nil
}

// RowBuilder assembles a row column by column. Each Add* method appends
// the next column in declaration order; the first failing column aborts
// the build.
type RowBuilder struct {
	values []Value
}

// NewRowBuilder creates a builder for a row with the given column count.
func NewRowBuilder(n int) *RowBuilder {
	return &RowBuilder{values: make([]Value, 0, n)}
}

// AddColumn encodes v with the default codec and appends it.
func (b *RowBuilder) AddColumn(v any) error {
	val, err := EncodeValue(v)
	if err != nil {
		return NewConvertError(len(b.values), val.Type(), "encode", err)
	}
	b.values = append(b.values, val)
	return nil
}

// SerializeColumn appends v as a serialized column: the encode half of
// the serde bridge, marshaling v with msgpack into a bytes value.
func (b *RowBuilder) SerializeColumn(v any) error {
	buf, err := msgpack.Marshal(v)
	if err != nil {
		return NewConvertError(len(b.values), coltype.TypeBytes, "encode serialized", err)
	}
	b.values = append(b.values, Bytes(buf))
	return nil
}

// Row returns the assembled row.
func (b *RowBuilder) Row() Row {
	return Row{values: b.values}
}
