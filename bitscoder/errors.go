// Package bitscoder implements a declarative codec for fixed-layout binary
// messages. A codec is built from an ordered sequence of fields with explicit
// bit widths; Encode packs named values onto a contiguous big-endian bit
// stream and Decode recovers them from the same layout.
package bitscoder

import "errors"

// Common errors
var (
	ErrWidth         = errors.New("field width out of range")
	ErrFieldParam    = errors.New("invalid field parameter")
	ErrEmptyLayout   = errors.New("layout has no fields")
	ErrDuplicateName = errors.New("duplicate field name")
	ErrReservedName  = errors.New("field name uses reserved prefix")
	ErrRange         = errors.New("value does not fit field width")
	ErrValueType     = errors.New("value has wrong type for field")
	ErrMissingValue  = errors.New("no value supplied for field")
	ErrUnknownField  = errors.New("value supplied for unknown field")
	ErrTruncated     = errors.New("input shorter than layout")
	ErrMalformedHex  = errors.New("malformed hex input")
	ErrBadSchema     = errors.New("invalid layout schema")
)

// anonPrefix starts every auto-generated name for anonymous fields. User
// field names may not begin with it.
const anonPrefix = "___"
