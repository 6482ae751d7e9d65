package bitstream

import (
	"encoding/binary"
	"fmt"
)

// Reader consumes bits MSB-first from a byte slice. The read position is a
// bit offset; fields of arbitrary width may straddle byte boundaries.
type Reader struct {
	buf []byte
	pos int // bit offset of the next read
}

// NewReader returns a reader positioned at the first bit of buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Remaining returns the number of unread bits.
func (r *Reader) Remaining() int {
	return len(r.buf)*8 - r.pos
}

// ReadBits reads n bits (0 ≤ n ≤ 64) and returns them right-aligned in a
// uint64. It fails if fewer than n bits remain.
func (r *Reader) ReadBits(n int) (uint64, error) {
	if n == 0 {
		return 0, nil
	}
	end := r.pos + n
	if end > len(r.buf)*8 {
		return 0, fmt.Errorf("bitstream: read of %d bits at bit %d overruns %d-byte buffer",
			n, r.pos, len(r.buf))
	}
	// Byte-aligned reads of whole register widths.
	if r.pos%8 == 0 {
		off := r.pos / 8
		switch n {
		case 8:
			r.pos = end
			return uint64(r.buf[off]), nil
		case 16:
			r.pos = end
			return uint64(binary.BigEndian.Uint16(r.buf[off:])), nil
		case 32:
			r.pos = end
			return uint64(binary.BigEndian.Uint32(r.buf[off:])), nil
		case 64:
			r.pos = end
			return binary.BigEndian.Uint64(r.buf[off:]), nil
		}
	}
	var v uint64
	for i := r.pos; i < end; i++ {
		bit := (r.buf[i/8] >> (7 - i%8)) & 1
		v = v<<1 | uint64(bit)
	}
	r.pos = end
	return v, nil
}

// ReadBytes reads n whole bytes from the current bit position, which need
// not be byte-aligned.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	if r.pos+8*n > len(r.buf)*8 {
		return nil, fmt.Errorf("bitstream: read of %d bytes at bit %d overruns %d-byte buffer",
			n, r.pos, len(r.buf))
	}
	if r.pos%8 == 0 {
		off := r.pos / 8
		r.pos += 8 * n
		out := make([]byte, n)
		copy(out, r.buf[off:off+n])
		return out, nil
	}
	out := make([]byte, n)
	for i := range out {
		v, err := r.ReadBits(8)
		if err != nil {
			return nil, err
		}
		out[i] = byte(v)
	}
	return out, nil
}
