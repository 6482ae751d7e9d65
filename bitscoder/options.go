package bitscoder

// ByteOrder selects the byte order of the packed stream.
type ByteOrder int

const (
	// BigEndian emits the stream in field order, first field in the most
	// significant bits of the first byte. This is the default.
	BigEndian ByteOrder = iota
	// LittleEndian reverses the packed byte sequence on encode and
	// reverses the input before decode.
	LittleEndian
)

// Option configures codec construction options.
type Option func(*codecOptions)

type codecOptions struct {
	order ByteOrder
}

func defaultCodecOptions() *codecOptions {
	return &codecOptions{
		order: BigEndian,
	}
}

// WithByteOrder sets the byte order of the packed stream.
func WithByteOrder(order ByteOrder) Option {
	return func(o *codecOptions) {
		if order == BigEndian || order == LittleEndian {
			o.order = order
		}
	}
}
