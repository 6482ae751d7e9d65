// Package bitstream provides MSB-first bit-level reading and writing over
// byte buffers. Fields are laid end-to-end on the stream with no byte
// alignment; the first bit written or read is the most significant bit of
// the first byte.
package bitstream

// Writer is an append-only bit accumulator. Bits are packed MSB-first into
// each byte; Bytes flushes any partial final byte with zero fill.
type Writer struct {
	buf  []byte
	cur  byte // partial byte being filled
	free int  // unused bits remaining in cur, 8 when cur is empty
	bits int  // total bits written
}

// NewWriter returns an empty bit accumulator.
func NewWriter() *Writer {
	return &Writer{free: 8}
}

// WriteBits appends the low n bits of v, most significant bit first.
// n must be in [0, 64]; bits of v above the low n are ignored.
func (w *Writer) WriteBits(v uint64, n int) {
	if n <= 0 {
		return
	}
	if n < 64 {
		v &= (1 << n) - 1
	}
	w.bits += n
	for n > 0 {
		if n <= w.free {
			w.cur |= byte(v << (w.free - n))
			w.free -= n
			n = 0
		} else {
			w.cur |= byte(v >> (n - w.free))
			n -= w.free
			w.free = 0
		}
		if w.free == 0 {
			w.buf = append(w.buf, w.cur)
			w.cur = 0
			w.free = 8
		}
	}
}

// WriteBytes appends p one byte at a time. The stream need not be
// byte-aligned; each byte is spread across the boundary as needed.
func (w *Writer) WriteBytes(p []byte) {
	if w.free == 8 {
		// Aligned: append directly.
		w.buf = append(w.buf, p...)
		w.bits += 8 * len(p)
		return
	}
	for _, b := range p {
		w.WriteBits(uint64(b), 8)
	}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return w.bits
}

// Bytes returns the packed stream, zero-filling any partial final byte.
// The writer remains usable; further writes continue from the same bit
// position.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf), len(w.buf)+1)
	copy(out, w.buf)
	if w.free < 8 {
		out = append(out, w.cur)
	}
	return out
}
