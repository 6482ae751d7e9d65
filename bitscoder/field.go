package bitscoder

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/robert-malhotra/go-bitscoder/internal/bitstream"
)

// Kind discriminates the value encoding of a Field.
type Kind int

const (
	// KindPad is anonymous filler; encodes as zero bits, decodes as uint64.
	KindPad Kind = iota
	// KindInt is a signed two's-complement integer.
	KindInt
	// KindUint is an unsigned integer.
	KindUint
	// KindBool is a single bit.
	KindBool
	// KindFloat is a signed fixed-point decimal scaled by 10^Frac.
	KindFloat
	// KindUfloat is an unsigned fixed-point decimal scaled by 10^Frac.
	KindUfloat
	// KindString is a byte-sized text field with fill padding.
	KindString
	// KindTime is a Unix timestamp counted in Precision-second ticks.
	KindTime
)

// String returns the schema name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPad:
		return "pad"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindBool:
		return "bool"
	case KindFloat:
		return "float"
	case KindUfloat:
		return "ufloat"
	case KindString:
		return "string"
	case KindTime:
		return "time"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// FillMode selects which end of a string field receives fill bytes.
type FillMode int

const (
	// FillPrefix places fill bytes before the text.
	FillPrefix FillMode = iota
	// FillSuffix places fill bytes after the text.
	FillSuffix
)

// Encoding selects the byte encoding of a string field.
type Encoding int

const (
	// UTF8 encodes text as UTF-8 bytes.
	UTF8 Encoding = iota
	// UTF16 encodes text as big-endian UTF-16 code units. UTF-16 fields
	// always fill with zero code units regardless of FillChar.
	UTF16
)

// Field is one fixed-width unit of the wire layout. Width is the number of
// bits the field occupies on the stream and is constant for the field's
// lifetime. An empty Name makes the field anonymous; anonymous fields are
// reported under auto-generated ___n names and contribute zero bits when
// encoding.
type Field struct {
	Name  string
	Kind  Kind
	Width int

	// Frac is the number of decimal places for KindFloat and KindUfloat.
	Frac int
	// Precision is the tick size in seconds for KindTime (e.g. 1, 0.001).
	Precision float64
	// Fill and FillChar control string padding for KindString.
	Fill     FillMode
	FillChar byte
	// Encoding is the text encoding for KindString.
	Encoding Encoding
}

// Int returns a signed two's-complement integer field of the given bit width.
func Int(width int, name string) Field {
	return Field{Name: name, Kind: KindInt, Width: width}
}

// Uint returns an unsigned integer field of the given bit width.
func Uint(width int, name string) Field {
	return Field{Name: name, Kind: KindUint, Width: width}
}

// Bool returns a one-bit boolean field.
func Bool(name string) Field {
	return Field{Name: name, Kind: KindBool, Width: 1}
}

// Float returns a signed fixed-point field: values are scaled by 10^frac,
// rounded half away from zero, and stored as a width-bit two's-complement
// integer. Decoding divides back by 10^frac, so round trips are exact only
// to frac decimal places.
func Float(width, frac int, name string) Field {
	return Field{Name: name, Kind: KindFloat, Width: width, Frac: frac}
}

// Ufloat returns an unsigned fixed-point field. See Float.
func Ufloat(width, frac int, name string) Field {
	return Field{Name: name, Kind: KindUfloat, Width: width, Frac: frac}
}

// Pad returns an anonymous filler field of the given bit width. It encodes
// as zero bits and decodes to a uint64 under its auto-generated name.
func Pad(width int) Field {
	return Field{Kind: KindPad, Width: width}
}

// StringOption configures a String field.
type StringOption func(*Field)

// WithFillMode sets which end of the field receives fill bytes.
func WithFillMode(m FillMode) StringOption {
	return func(f *Field) {
		if m == FillPrefix || m == FillSuffix {
			f.Fill = m
		}
	}
}

// WithFillChar sets the fill byte for UTF-8 string fields.
func WithFillChar(c byte) StringOption {
	return func(f *Field) {
		f.FillChar = c
	}
}

// WithEncoding sets the text encoding of the field.
func WithEncoding(e Encoding) StringOption {
	return func(f *Field) {
		if e == UTF8 || e == UTF16 {
			f.Encoding = e
		}
	}
}

// String returns a text field occupying width bits. Width must be a positive
// multiple of 8 (16 for UTF-16) and may exceed 64. Shorter values are padded
// with fill bytes (NUL by default, at the front by default); the fill is
// stripped again on decode.
func String(width int, name string, opts ...StringOption) Field {
	f := Field{Name: name, Kind: KindString, Width: width, Fill: FillPrefix, FillChar: 0, Encoding: UTF8}
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// Time returns a timestamp field. The value is stored as an unsigned count
// of precision-second ticks since the Unix epoch, so decoded times are
// truncated to the declared precision.
func Time(width int, precision float64, name string) Field {
	return Field{Name: name, Kind: KindTime, Width: width, Precision: precision}
}

// validate checks the construction-time invariants of the field.
func (f Field) validate() error {
	if strings.HasPrefix(f.Name, anonPrefix) {
		return fmt.Errorf("name %q: %w (prefix %q is auto-generated)", f.Name, ErrReservedName, anonPrefix)
	}
	switch f.Kind {
	case KindString:
		unit := 8
		if f.Encoding == UTF16 {
			unit = 16
		}
		if f.Width < unit || f.Width%unit != 0 {
			return fmt.Errorf("%s field %q: width %d must be a positive multiple of %d: %w",
				f.Kind, f.Name, f.Width, unit, ErrWidth)
		}
	case KindBool:
		if f.Width != 1 {
			return fmt.Errorf("bool field %q: width %d must be 1: %w", f.Name, f.Width, ErrWidth)
		}
	case KindPad:
		if f.Name != "" {
			return fmt.Errorf("pad field %q: padding is anonymous: %w", f.Name, ErrFieldParam)
		}
		if f.Width < 1 || f.Width > 64 {
			return fmt.Errorf("pad field: width %d outside [1, 64]: %w", f.Width, ErrWidth)
		}
	default:
		if f.Width < 1 || f.Width > 64 {
			return fmt.Errorf("%s field %q: width %d outside [1, 64]: %w", f.Kind, f.Name, f.Width, ErrWidth)
		}
	}
	switch f.Kind {
	case KindFloat, KindUfloat:
		if f.Frac < 0 {
			return fmt.Errorf("%s field %q: frac %d must be non-negative: %w", f.Kind, f.Name, f.Frac, ErrFieldParam)
		}
	case KindTime:
		if !(f.Precision > 0) {
			return fmt.Errorf("time field %q: precision %v must be positive: %w", f.Name, f.Precision, ErrFieldParam)
		}
	}
	return nil
}

// intBounds returns the inclusive signed range of a width-bit two's
// complement integer.
func intBounds(width int) (int64, int64) {
	if width == 64 {
		return math.MinInt64, math.MaxInt64
	}
	return -(int64(1) << (width - 1)), int64(1)<<(width-1) - 1
}

// uintMax returns the maximum value of a width-bit unsigned integer.
func uintMax(width int) uint64 {
	if width == 64 {
		return math.MaxUint64
	}
	return uint64(1)<<width - 1
}

// signExtend reinterprets the low width bits of u as a signed two's
// complement integer.
func signExtend(u uint64, width int) int64 {
	return int64(u<<(64-width)) >> (64 - width)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), uint64(n) <= math.MaxInt64
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), n <= math.MaxInt64
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case uint:
		return uint64(n), true
	case uint8:
		return uint64(n), true
	case uint16:
		return uint64(n), true
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int:
		return uint64(n), n >= 0
	case int8:
		return uint64(n), n >= 0
	case int16:
		return uint64(n), n >= 0
	case int32:
		return uint64(n), n >= 0
	case int64:
		return uint64(n), n >= 0
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		if i, ok := asInt64(v); ok {
			return float64(i), true
		}
		return 0, false
	}
}

// appendBits renders the value onto the stream as exactly f.Width bits.
func (f Field) appendBits(w *bitstream.Writer, v any) error {
	switch f.Kind {
	case KindPad:
		w.WriteBits(0, f.Width)
		return nil

	case KindInt:
		n, ok := asInt64(v)
		if !ok {
			return fmt.Errorf("int field %q: %T: %w", f.Name, v, ErrValueType)
		}
		min, max := intBounds(f.Width)
		if n < min || n > max {
			return fmt.Errorf("int field %q: %d outside [%d, %d]: %w", f.Name, n, min, max, ErrRange)
		}
		w.WriteBits(uint64(n), f.Width)
		return nil

	case KindUint:
		u, ok := asUint64(v)
		if !ok {
			return fmt.Errorf("uint field %q: %T: %w", f.Name, v, ErrValueType)
		}
		if max := uintMax(f.Width); u > max {
			return fmt.Errorf("uint field %q: %d outside [0, %d]: %w", f.Name, u, max, ErrRange)
		}
		w.WriteBits(u, f.Width)
		return nil

	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return fmt.Errorf("bool field %q: %T: %w", f.Name, v, ErrValueType)
		}
		var bit uint64
		if b {
			bit = 1
		}
		w.WriteBits(bit, 1)
		return nil

	case KindFloat:
		x, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("float field %q: %T: %w", f.Name, v, ErrValueType)
		}
		scaled := math.Round(x * math.Pow10(f.Frac))
		limit := math.Ldexp(1, f.Width-1)
		if scaled < -limit || scaled > limit-1 {
			min, max := intBounds(f.Width)
			return fmt.Errorf("float field %q: %v scales to %.0f outside [%d, %d]: %w",
				f.Name, x, scaled, min, max, ErrRange)
		}
		w.WriteBits(uint64(int64(scaled)), f.Width)
		return nil

	case KindUfloat:
		x, ok := asFloat64(v)
		if !ok {
			return fmt.Errorf("ufloat field %q: %T: %w", f.Name, v, ErrValueType)
		}
		scaled := math.Round(x * math.Pow10(f.Frac))
		if scaled < 0 || scaled > math.Ldexp(1, f.Width)-1 {
			return fmt.Errorf("ufloat field %q: %v scales to %.0f outside [0, %d]: %w",
				f.Name, x, scaled, uintMax(f.Width), ErrRange)
		}
		w.WriteBits(uint64(scaled), f.Width)
		return nil

	case KindString:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("string field %q: %T: %w", f.Name, v, ErrValueType)
		}
		raw := f.encodeText(s)
		size := f.Width / 8
		if len(raw) > size {
			return fmt.Errorf("string field %q: %d bytes exceed %d-byte field: %w",
				f.Name, len(raw), size, ErrRange)
		}
		buf := make([]byte, size)
		fill := f.fillByte()
		for i := range buf {
			buf[i] = fill
		}
		if f.Fill == FillPrefix {
			copy(buf[size-len(raw):], raw)
		} else {
			copy(buf, raw)
		}
		w.WriteBytes(buf)
		return nil

	case KindTime:
		t, ok := v.(time.Time)
		if !ok {
			return fmt.Errorf("time field %q: %T: %w", f.Name, v, ErrValueType)
		}
		ticks, ok := f.timeTicks(t)
		if !ok {
			return fmt.Errorf("time field %q: %v outside field range at precision %v: %w",
				f.Name, t, f.Precision, ErrRange)
		}
		w.WriteBits(ticks, f.Width)
		return nil

	default:
		return fmt.Errorf("field %q: %w: unhandled kind %s", f.Name, ErrValueType, f.Kind)
	}
}

// readValue slices exactly f.Width bits off the stream and reconstructs the
// field's value. Every bit pattern of the declared width is valid, so the
// only failure mode is stream exhaustion.
func (f Field) readValue(r *bitstream.Reader) (any, error) {
	if f.Kind == KindString {
		b, err := r.ReadBytes(f.Width / 8)
		if err != nil {
			return nil, err
		}
		return f.decodeText(b), nil
	}
	u, err := r.ReadBits(f.Width)
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case KindPad, KindUint:
		return u, nil
	case KindInt:
		return signExtend(u, f.Width), nil
	case KindBool:
		return u != 0, nil
	case KindFloat:
		return float64(signExtend(u, f.Width)) / math.Pow10(f.Frac), nil
	case KindUfloat:
		return float64(u) / math.Pow10(f.Frac), nil
	case KindTime:
		if p := f.Precision; p >= 1 && p == math.Trunc(p) {
			return time.Unix(int64(u)*int64(p), 0).UTC(), nil
		}
		ns := math.Round(float64(u) * f.Precision * 1e9)
		return time.Unix(0, int64(ns)).UTC(), nil
	default:
		return nil, fmt.Errorf("field %q: %w: unhandled kind %s", f.Name, ErrValueType, f.Kind)
	}
}

// zero returns the value an all-zero bit pattern of this field decodes to.
// Anonymous fields report it after an encode.
func (f Field) zero() any {
	switch f.Kind {
	case KindInt:
		return int64(0)
	case KindBool:
		return false
	case KindFloat, KindUfloat:
		return float64(0)
	case KindString:
		return ""
	case KindTime:
		return time.Unix(0, 0).UTC()
	default:
		return uint64(0)
	}
}

// timeTicks converts t to an unsigned tick count at the field's precision,
// truncating toward the epoch. Whole-second precisions use integer math so
// tick boundaries never wobble through float conversion.
func (f Field) timeTicks(t time.Time) (uint64, bool) {
	p := f.Precision
	var ticks uint64
	if p >= 1 && p == math.Trunc(p) {
		sec := t.Unix()
		if sec < 0 {
			return 0, false
		}
		ticks = uint64(sec) / uint64(p)
	} else {
		scaled := math.Floor(float64(t.UnixNano()) / 1e9 / p)
		if scaled < 0 || scaled > math.Ldexp(1, f.Width)-1 {
			return 0, false
		}
		ticks = uint64(scaled)
	}
	if ticks > uintMax(f.Width) {
		return 0, false
	}
	return ticks, true
}

func (f Field) fillByte() byte {
	if f.Encoding == UTF16 {
		return 0
	}
	return f.FillChar
}

func (f Field) encodeText(s string) []byte {
	if f.Encoding == UTF16 {
		units := utf16.Encode([]rune(s))
		raw := make([]byte, 2*len(units))
		for i, u := range units {
			binary.BigEndian.PutUint16(raw[2*i:], u)
		}
		return raw
	}
	return []byte(s)
}

func (f Field) decodeText(b []byte) string {
	unit := 1
	if f.Encoding == UTF16 {
		unit = 2
	}
	b = trimFill(b, f.fillByte(), unit, f.Fill)
	if f.Encoding == UTF16 {
		units := make([]uint16, len(b)/2)
		for i := range units {
			units[i] = binary.BigEndian.Uint16(b[2*i:])
		}
		return string(utf16.Decode(units))
	}
	return string(b)
}

// trimFill strips fill from one end of b in whole code units so multi-byte
// encodings stay aligned.
func trimFill(b []byte, fill byte, unit int, mode FillMode) []byte {
	isFill := func(off int) bool {
		for i := 0; i < unit; i++ {
			if b[off+i] != fill {
				return false
			}
		}
		return true
	}
	if mode == FillPrefix {
		for len(b) >= unit && isFill(0) {
			b = b[unit:]
		}
	} else {
		for len(b) >= unit && isFill(len(b)-unit) {
			b = b[:len(b)-unit]
		}
	}
	return b
}
