package bitstream

import (
	"bytes"
	"testing"
)

func TestWriterSingleByte(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0xAB, 8)

	if got := w.Len(); got != 8 {
		t.Errorf("Len: expected 8, got %d", got)
	}
	if got := w.Bytes(); !bytes.Equal(got, []byte{0xAB}) {
		t.Errorf("expected [0xAB], got % 02x", got)
	}
}

func TestWriterCrossesByteBoundary(t *testing.T) {
	// 3 + 8 + 5 bits: 001 00001001 00011 -> 0x21 0x23.
	w := NewWriter()
	w.WriteBits(0b001, 3)
	w.WriteBits(0b00001001, 8)
	w.WriteBits(0b00011, 5)

	if got := w.Bytes(); !bytes.Equal(got, []byte{0x21, 0x23}) {
		t.Errorf("expected [0x21 0x23], got % 02x", got)
	}
}

func TestWriterZeroFillsPartialByte(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0b101, 3)

	if got := w.Len(); got != 3 {
		t.Errorf("Len: expected 3, got %d", got)
	}
	if got := w.Bytes(); !bytes.Equal(got, []byte{0xA0}) {
		t.Errorf("expected [0xA0], got % 02x", got)
	}
}

func TestWriterMasksHighBits(t *testing.T) {
	// Only the low n bits of v may reach the stream.
	w := NewWriter()
	w.WriteBits(0xFFFF, 4)
	w.WriteBits(0, 4)

	if got := w.Bytes(); !bytes.Equal(got, []byte{0xF0}) {
		t.Errorf("expected [0xF0], got % 02x", got)
	}
}

func TestWriterFullRegister(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0x123456789ABCDEF0, 64)

	expected := []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	if got := w.Bytes(); !bytes.Equal(got, expected) {
		t.Errorf("expected % 02x, got % 02x", expected, got)
	}
}

func TestWriterWriteBytesAligned(t *testing.T) {
	w := NewWriter()
	w.WriteBytes([]byte{0xDE, 0xAD})

	if got := w.Len(); got != 16 {
		t.Errorf("Len: expected 16, got %d", got)
	}
	if got := w.Bytes(); !bytes.Equal(got, []byte{0xDE, 0xAD}) {
		t.Errorf("expected [0xDE 0xAD], got % 02x", got)
	}
}

func TestWriterWriteBytesUnaligned(t *testing.T) {
	// 1111 then 00001111: each byte straddles the boundary.
	w := NewWriter()
	w.WriteBits(0b1111, 4)
	w.WriteBytes([]byte{0x0F})

	if got := w.Bytes(); !bytes.Equal(got, []byte{0xF0, 0xF0}) {
		t.Errorf("expected [0xF0 0xF0], got % 02x", got)
	}
}

func TestWriterBytesDoesNotConsume(t *testing.T) {
	w := NewWriter()
	w.WriteBits(0xF, 4)

	if got := w.Bytes(); !bytes.Equal(got, []byte{0xF0}) {
		t.Fatalf("first Bytes: expected [0xF0], got % 02x", got)
	}

	w.WriteBits(0xF, 4)
	if got := w.Bytes(); !bytes.Equal(got, []byte{0xFF}) {
		t.Errorf("second Bytes: expected [0xFF], got % 02x", got)
	}
}
