package tessera

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/tesseradb/tessera/schema/coltype"
)

// Value is a single encoded column value: one of the storage kinds of the
// column type system, or a typed null.
type Value struct {
	typ  coltype.Type
	null bool

	b  bool
	i  int64
	f  float64
	s  string
	bs []byte
	t  time.Time
	u  uuid.UUID
}

// Type returns the column type of the value.
func (v Value) Type() coltype.Type { return v.typ }

// IsNull reports if the value is a typed null.
func (v Value) IsNull() bool { return v.null }

// Null returns a typed null value.
func Null(t coltype.Type) Value { return Value{typ: t, null: true} }

// Bool returns a bool value.
func Bool(b bool) Value { return Value{typ: coltype.TypeBool, b: b} }

// Int64 returns an int64 value.
func Int64(i int64) Value { return Value{typ: coltype.TypeInt64, i: i} }

// Float64 returns a float64 value.
func Float64(f float64) Value { return Value{typ: coltype.TypeFloat64, f: f} }

// String returns a string value.
func String(s string) Value { return Value{typ: coltype.TypeString, s: s} }

// Bytes returns a bytes value.
func Bytes(b []byte) Value { return Value{typ: coltype.TypeBytes, bs: b} }

// Time returns a time value.
func Time(t time.Time) Value { return Value{typ: coltype.TypeTime, t: t} }

// UUID returns a uuid value.
func UUID(u uuid.UUID) Value { return Value{typ: coltype.TypeUUID, u: u} }

// GoValue returns the Go representation of the value, or nil for nulls.
func (v Value) GoValue() any {
	if v.null {
		return nil
	}
	switch v.typ {
	case coltype.TypeBool:
		return v.b
	case coltype.TypeInt64:
		return v.i
	case coltype.TypeFloat64:
		return v.f
	case coltype.TypeString:
		return v.s
	case coltype.TypeBytes:
		return v.bs
	case coltype.TypeTime:
		return v.t
	case coltype.TypeUUID:
		return v.u
	default:
		return nil
	}
}

// ValueEncoder is implemented by types that encode themselves to a column
// value. Wrapper newtypes referenced from `with` tags implement it.
type ValueEncoder interface {
	EncodeValue() (Value, error)
}

// ValueDecoder is implemented by types that decode themselves from a
// column value. The counterpart of ValueEncoder for the decode path.
type ValueDecoder interface {
	DecodeValue(Value) error
}

// EncodeValue converts a Go value to its column representation. Types
// implementing ValueEncoder take precedence over the builtin mapping.
// Nil pointers encode to typed nulls.
func EncodeValue(v any) (Value, error) {
	if enc, ok := v.(ValueEncoder); ok {
		return enc.EncodeValue()
	}
	switch v := v.(type) {
	case bool:
		return Bool(v), nil
	case int:
		return Int64(int64(v)), nil
	case int8:
		return Int64(int64(v)), nil
	case int16:
		return Int64(int64(v)), nil
	case int32:
		return Int64(int64(v)), nil
	case int64:
		return Int64(v), nil
	case uint:
		return encodeUint(uint64(v))
	case uint8:
		return Int64(int64(v)), nil
	case uint16:
		return Int64(int64(v)), nil
	case uint32:
		return Int64(int64(v)), nil
	case uint64:
		return encodeUint(v)
	case float32:
		return Float64(float64(v)), nil
	case float64:
		return Float64(v), nil
	case string:
		return String(v), nil
	case []byte:
		return Bytes(v), nil
	case time.Time:
		return Time(v), nil
	case uuid.UUID:
		return UUID(v), nil
	case *bool:
		return encodePtr(v, coltype.TypeBool)
	case *int:
		return encodePtr(v, coltype.TypeInt64)
	case *int8:
		return encodePtr(v, coltype.TypeInt64)
	case *int16:
		return encodePtr(v, coltype.TypeInt64)
	case *int32:
		return encodePtr(v, coltype.TypeInt64)
	case *int64:
		return encodePtr(v, coltype.TypeInt64)
	case *uint:
		return encodePtr(v, coltype.TypeInt64)
	case *uint8:
		return encodePtr(v, coltype.TypeInt64)
	case *uint16:
		return encodePtr(v, coltype.TypeInt64)
	case *uint32:
		return encodePtr(v, coltype.TypeInt64)
	case *uint64:
		return encodePtr(v, coltype.TypeInt64)
	case *float32:
		return encodePtr(v, coltype.TypeFloat64)
	case *float64:
		return encodePtr(v, coltype.TypeFloat64)
	case *string:
		return encodePtr(v, coltype.TypeString)
	case *time.Time:
		return encodePtr(v, coltype.TypeTime)
	case *uuid.UUID:
		return encodePtr(v, coltype.TypeUUID)
	case nil:
		return Null(coltype.TypeInvalid), nil
	default:
		return Value{}, fmt.Errorf("%w: cannot encode %T", ErrConvert, v)
	}
}

// DecodeValue converts a column value back to a Go destination. The
// destination must be a non-nil pointer. Types implementing ValueDecoder
// take precedence over the builtin mapping. Nulls decode only into
// pointer destinations, which are set to nil.
func DecodeValue(v Value, dst any) error {
	if dec, ok := dst.(ValueDecoder); ok {
		return dec.DecodeValue(v)
	}
	switch dst := dst.(type) {
	case *bool:
		if err := checkKind(v, coltype.TypeBool); err != nil {
			return err
		}
		*dst = v.b
	case *int:
		if err := checkKind(v, coltype.TypeInt64); err != nil {
			return err
		}
		*dst = int(v.i)
	case *int8:
		return decodeInt(v, dst, math.MinInt8, math.MaxInt8)
	case *int16:
		return decodeInt(v, dst, math.MinInt16, math.MaxInt16)
	case *int32:
		return decodeInt(v, dst, math.MinInt32, math.MaxInt32)
	case *int64:
		if err := checkKind(v, coltype.TypeInt64); err != nil {
			return err
		}
		*dst = v.i
	case *uint:
		return decodeInt(v, dst, 0, math.MaxInt64)
	case *uint8:
		return decodeInt(v, dst, 0, math.MaxUint8)
	case *uint16:
		return decodeInt(v, dst, 0, math.MaxUint16)
	case *uint32:
		return decodeInt(v, dst, 0, math.MaxUint32)
	case *uint64:
		return decodeInt(v, dst, 0, math.MaxInt64)
	case *float32:
		if err := checkKind(v, coltype.TypeFloat64); err != nil {
			return err
		}
		*dst = float32(v.f)
	case *float64:
		if err := checkKind(v, coltype.TypeFloat64); err != nil {
			return err
		}
		*dst = v.f
	case *string:
		if err := checkKind(v, coltype.TypeString); err != nil {
			return err
		}
		*dst = v.s
	case *[]byte:
		if err := checkKind(v, coltype.TypeBytes); err != nil {
			return err
		}
		*dst = v.bs
	case *time.Time:
		if err := checkKind(v, coltype.TypeTime); err != nil {
			return err
		}
		*dst = v.t
	case *uuid.UUID:
		if err := checkKind(v, coltype.TypeUUID); err != nil {
			return err
		}
		*dst = v.u
	case **bool:
		return decodePtr(v, dst)
	case **int:
		return decodePtr(v, dst)
	case **int8:
		return decodePtr(v, dst)
	case **int16:
		return decodePtr(v, dst)
	case **int32:
		return decodePtr(v, dst)
	case **int64:
		return decodePtr(v, dst)
	case **uint:
		return decodePtr(v, dst)
	case **uint8:
		return decodePtr(v, dst)
	case **uint16:
		return decodePtr(v, dst)
	case **uint32:
		return decodePtr(v, dst)
	case **uint64:
		return decodePtr(v, dst)
	case **float32:
		return decodePtr(v, dst)
	case **float64:
		return decodePtr(v, dst)
	case **string:
		return decodePtr(v, dst)
	case **time.Time:
		return decodePtr(v, dst)
	case **uuid.UUID:
		return decodePtr(v, dst)
	default:
		return fmt.Errorf("%w: cannot decode into %T", ErrConvert, dst)
	}
	return nil
}

func checkKind(v Value, want coltype.Type) error {
	if v.null {
		return fmt.Errorf("%w: %s column", ErrNullValue, want)
	}
	if v.typ != want {
		return fmt.Errorf("%w: have %s, want %s", ErrTypeMismatch, v.typ, want)
	}
	return nil
}

// encodeUint widens an unsigned value into the int64 storage class.
func encodeUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return Value{}, fmt.Errorf("%w: uint value %d overflows int64", ErrConvert, u)
	}
	return Int64(int64(u)), nil
}

// encodePtr encodes through the pointed-to value, or to a typed null for
// nil pointers.
func encodePtr[T any](p *T, kind coltype.Type) (Value, error) {
	if p == nil {
		return Null(kind), nil
	}
	return EncodeValue(*p)
}

// decodeInt narrows an int64 value into a smaller or unsigned integer
// destination, rejecting values outside the destination's range.
func decodeInt[T int8 | int16 | int32 | uint | uint8 | uint16 | uint32 | uint64](v Value, dst *T, min, max int64) error {
	if err := checkKind(v, coltype.TypeInt64); err != nil {
		return err
	}
	if v.i < min || v.i > max {
		return fmt.Errorf("%w: int64 value %d overflows %T", ErrConvert, v.i, *dst)
	}
	*dst = T(v.i)
	return nil
}

// decodePtr decodes nulls to nil and non-nulls through the element type.
func decodePtr[T any](v Value, dst **T) error {
	if v.null {
		*dst = nil
		return nil
	}
	var x T
	if err := DecodeValue(v, &x); err != nil {
		return err
	}
	*dst = &x
	return nil
}

// EncodeKeyParts encodes the given key components in order. Generated key
// types use it to implement the PrimaryKey and PartialKey contracts.
func EncodeKeyParts(parts ...any) ([]Value, error) {
	values := make([]Value, len(parts))
	for i, p := range parts {
		v, err := EncodeValue(p)
		if err != nil {
			return nil, NewConvertError(i, v.Type(), "encode key part", err)
		}
		values[i] = v
	}
	return values, nil
}
