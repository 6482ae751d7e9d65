package bitscoder

import (
	"encoding/hex"
	"fmt"
	"maps"
	"sync"

	"github.com/robert-malhotra/go-bitscoder/internal/bitstream"
)

// Codec packs and unpacks a fixed sequence of fields as one contiguous bit
// stream. The field sequence is the wire contract: a matched encode/decode
// pair must be built from the same sequence.
//
// Encode and Decode take and return explicit value maps, so a Codec may be
// shared between goroutines; only the cached Map snapshot is synchronized
// internally.
type Codec struct {
	fields []Field
	names  []string // display names, ___n for anonymous fields
	known  map[string]int
	order  ByteOrder
	bits   int // total layout width including the trailing pad

	mu   sync.Mutex
	last map[string]any
}

// New builds a codec from an ordered field sequence. Field widths, names and
// kind parameters are validated here; named fields must be unique. When the
// declared widths do not total a whole number of bytes, an anonymous padding
// field is appended so the layout always spans whole bytes and the trailing
// bits are reported under an auto-generated name on decode.
func New(fields []Field, opts ...Option) (*Codec, error) {
	if len(fields) == 0 {
		return nil, ErrEmptyLayout
	}
	o := defaultCodecOptions()
	for _, opt := range opts {
		opt(o)
	}

	fs := make([]Field, len(fields))
	copy(fs, fields)
	bits := 0
	for i := range fs {
		if err := fs[i].validate(); err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		bits += fs[i].Width
	}
	if rem := bits % 8; rem != 0 {
		fs = append(fs, Pad(8-rem))
		bits += 8 - rem
	}

	names := make([]string, len(fs))
	known := make(map[string]int, len(fs))
	anon := 0
	for i, f := range fs {
		if f.Name == "" {
			anon++
			names[i] = fmt.Sprintf("%s%d", anonPrefix, anon)
			continue
		}
		if _, dup := known[f.Name]; dup {
			return nil, fmt.Errorf("%q: %w", f.Name, ErrDuplicateName)
		}
		known[f.Name] = i
		names[i] = f.Name
	}

	return &Codec{
		fields: fs,
		names:  names,
		known:  known,
		order:  o.order,
		bits:   bits,
	}, nil
}

// BitLen returns the total layout width in bits, including the trailing pad.
func (c *Codec) BitLen() int {
	return c.bits
}

// Size returns the encoded length in bytes.
func (c *Codec) Size() int {
	return c.bits / 8
}

// Fields returns a copy of the field sequence, including any auto-appended
// trailing pad.
func (c *Codec) Fields() []Field {
	fs := make([]Field, len(c.fields))
	copy(fs, c.fields)
	return fs
}

// Encode packs the named values into a byte buffer. Every named field must
// be present in values; anonymous fields contribute zero bits. Keys that
// name no field are rejected. The output length is always Size() bytes and
// depends only on the layout, never on the values.
//
// On success the effective name→value mapping (inputs plus zeros for
// anonymous fields) becomes the Map snapshot; on error the snapshot is left
// untouched.
func (c *Codec) Encode(values map[string]any) ([]byte, error) {
	for name := range values {
		if _, ok := c.known[name]; !ok {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownField)
		}
	}

	w := bitstream.NewWriter()
	snap := make(map[string]any, len(c.fields))
	for i := range c.fields {
		f := &c.fields[i]
		if f.Name == "" {
			writeZeros(w, f.Width)
			snap[c.names[i]] = f.zero()
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			return nil, fmt.Errorf("%q: %w", f.Name, ErrMissingValue)
		}
		if err := f.appendBits(w, v); err != nil {
			return nil, err
		}
		snap[f.Name] = v
	}

	out := w.Bytes()
	if c.order == LittleEndian {
		reverse(out)
	}
	c.setSnapshot(snap)
	return out, nil
}

// Decode unpacks a byte buffer against the layout and returns the name→value
// mapping, anonymous fields included under their ___n names. The total
// length is validated before any field is decoded; on error the Map snapshot
// is left untouched. Bytes beyond the layout's end are ignored.
func (c *Codec) Decode(data []byte) (map[string]any, error) {
	if len(data)*8 < c.bits {
		return nil, fmt.Errorf("layout needs %d bits, input has %d: %w",
			c.bits, len(data)*8, ErrTruncated)
	}
	buf := data
	if c.order == LittleEndian {
		buf = make([]byte, len(data))
		copy(buf, data)
		reverse(buf)
	}

	r := bitstream.NewReader(buf)
	out := make(map[string]any, len(c.fields))
	for i := range c.fields {
		v, err := c.fields[i].readValue(r)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", c.names[i], err)
		}
		out[c.names[i]] = v
	}
	c.setSnapshot(maps.Clone(out))
	return out, nil
}

// DecodeHex decodes a hexadecimal text rendering of the buffer (two
// characters per byte, either case, no separators).
func (c *Codec) DecodeHex(s string) (map[string]any, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedHex, err)
	}
	return c.Decode(data)
}

// Map returns a copy of the name→value mapping produced by the most recent
// successful Encode or Decode, or an empty map before the first operation.
func (c *Codec) Map() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return map[string]any{}
	}
	return maps.Clone(c.last)
}

func (c *Codec) setSnapshot(m map[string]any) {
	c.mu.Lock()
	c.last = m
	c.mu.Unlock()
}

// writeZeros appends n zero bits; n may exceed a single register width.
func writeZeros(w *bitstream.Writer, n int) {
	for n > 64 {
		w.WriteBits(0, 64)
		n -= 64
	}
	w.WriteBits(0, n)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
