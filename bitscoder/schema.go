package bitscoder

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Schema is the YAML form of a codec layout. It lets both ends of a wire
// contract share one declarative description of the message format:
//
//	byteorder: big
//	fields:
//	  - name: temperature
//	    type: int
//	    bits: 6
//	  - name: is_nice
//	    type: bool
//	  - name: lat
//	    type: float
//	    bits: 18
//	    frac: 3
//	  - type: pad
//	    bits: 5
//
// There are no defaults beyond the zero values noted per field; an unknown
// type or byteorder is an error, never a silent fallback.
type Schema struct {
	// ByteOrder is "big" (default when empty) or "little".
	ByteOrder string `yaml:"byteorder,omitempty"`

	// Fields is the wire-order field sequence.
	Fields []SchemaField `yaml:"fields"`
}

// SchemaField describes one field of the layout.
type SchemaField struct {
	// Name is the field identifier. Empty means anonymous.
	Name string `yaml:"name,omitempty"`

	// Type is one of: int, uint, bool, float, ufloat, string, time, pad.
	Type string `yaml:"type"`

	// Bits is the field width. Ignored for bool (always 1).
	Bits int `yaml:"bits,omitempty"`

	// Frac is the number of decimal places (float, ufloat).
	Frac int `yaml:"frac,omitempty"`

	// Precision is the tick size in seconds (time).
	Precision float64 `yaml:"precision,omitempty"`

	// Fill is "prefix" (default) or "suffix" (string).
	Fill string `yaml:"fill,omitempty"`

	// FillChar is a single fill character (string, UTF-8 only).
	FillChar string `yaml:"fill_char,omitempty"`

	// Encoding is "utf-8" (default) or "utf-16" (string).
	Encoding string `yaml:"encoding,omitempty"`
}

// ParseSchema builds a codec from a YAML layout document.
func ParseSchema(data []byte) (*Codec, error) {
	var s Schema
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadSchema, err)
	}
	return s.Codec()
}

// LoadSchema reads a YAML layout document from r and builds a codec.
func LoadSchema(r io.Reader) (*Codec, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	return ParseSchema(data)
}

// Codec builds the codec described by the schema.
func (s *Schema) Codec() (*Codec, error) {
	var opts []Option
	switch s.ByteOrder {
	case "", "big":
	case "little":
		opts = append(opts, WithByteOrder(LittleEndian))
	default:
		return nil, fmt.Errorf("%w: byteorder %q (want big or little)", ErrBadSchema, s.ByteOrder)
	}

	fields := make([]Field, 0, len(s.Fields))
	for i, sf := range s.Fields {
		f, err := sf.field()
		if err != nil {
			return nil, fmt.Errorf("field %d: %w", i, err)
		}
		fields = append(fields, f)
	}
	return New(fields, opts...)
}

func (sf *SchemaField) field() (Field, error) {
	switch sf.Type {
	case "int":
		return Int(sf.Bits, sf.Name), nil
	case "uint":
		return Uint(sf.Bits, sf.Name), nil
	case "bool":
		return Bool(sf.Name), nil
	case "float":
		return Float(sf.Bits, sf.Frac, sf.Name), nil
	case "ufloat":
		return Ufloat(sf.Bits, sf.Frac, sf.Name), nil
	case "time":
		return Time(sf.Bits, sf.Precision, sf.Name), nil
	case "pad":
		if sf.Name != "" {
			return Field{}, fmt.Errorf("%w: pad fields cannot be named", ErrBadSchema)
		}
		return Pad(sf.Bits), nil
	case "string":
		var opts []StringOption
		switch sf.Fill {
		case "", "prefix":
		case "suffix":
			opts = append(opts, WithFillMode(FillSuffix))
		default:
			return Field{}, fmt.Errorf("%w: fill %q (want prefix or suffix)", ErrBadSchema, sf.Fill)
		}
		if sf.FillChar != "" {
			if len(sf.FillChar) != 1 {
				return Field{}, fmt.Errorf("%w: fill_char %q must be a single byte", ErrBadSchema, sf.FillChar)
			}
			opts = append(opts, WithFillChar(sf.FillChar[0]))
		}
		switch sf.Encoding {
		case "", "utf-8":
		case "utf-16":
			opts = append(opts, WithEncoding(UTF16))
		default:
			return Field{}, fmt.Errorf("%w: encoding %q (want utf-8 or utf-16)", ErrBadSchema, sf.Encoding)
		}
		return String(sf.Bits, sf.Name, opts...), nil
	default:
		return Field{}, fmt.Errorf("%w: unknown field type %q", ErrBadSchema, sf.Type)
	}
}
