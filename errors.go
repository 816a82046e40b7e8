package tessera

import (
	"errors"
	"fmt"

	"github.com/tesseradb/tessera/schema/coltype"
)

// Standard sentinel errors for row and value conversion.
var (
	// ErrConvert is returned when a value cannot be converted to or from
	// its column representation.
	ErrConvert = errors.New("tessera: value conversion failed")

	// ErrNullValue is returned when a null value is decoded into a
	// non-nillable destination.
	ErrNullValue = errors.New("tessera: unexpected null value")

	// ErrTypeMismatch is returned when a value's column type does not
	// match the requested destination type.
	ErrTypeMismatch = errors.New("tessera: value type mismatch")
)

// ConvertError represents a failure to convert a single column value.
// The row encode and decode paths stop at the first ConvertError; later
// columns are not attempted.
type ConvertError struct {
	// Column is the ordinal position of the failing column within the row.
	Column int
	// Type is the column type involved in the conversion, if known.
	Type coltype.Type
	// Message describes the failing conversion.
	Message string
	// Cause holds the underlying error, if any.
	Cause error
}

// Error returns the error string.
func (e *ConvertError) Error() string {
	msg := fmt.Sprintf("tessera: convert column %d", e.Column)
	if e.Type.Valid() {
		msg += fmt.Sprintf(" (%s)", e.Type)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *ConvertError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for ConvertError.
func (e *ConvertError) Is(target error) bool {
	return target == ErrConvert
}

// NewConvertError creates a new ConvertError.
func NewConvertError(column int, typ coltype.Type, message string, cause error) *ConvertError {
	return &ConvertError{
		Column:  column,
		Type:    typ,
		Message: message,
		Cause:   cause,
	}
}

// IsConvertError reports whether the error is a ConvertError.
func IsConvertError(err error) bool {
	var convErr *ConvertError
	return errors.As(err, &convErr)
}
