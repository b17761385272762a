package matfile

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"unicode/utf16"
)

// File is a decoded MAT-file.
type File struct {
	Header    string
	Variables []Variable
}

// Lookup returns the variable called name.
func (f *File) Lookup(name string) (Variable, bool) {
	for _, v := range f.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Names returns variable names in file order.
func (f *File) Names() []string {
	names := make([]string, len(f.Variables))
	for i, v := range f.Variables {
		names[i] = v.Name
	}
	return names
}

// Read decodes a little-endian, uncompressed Level 5 MAT-file.
func Read(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read MAT-file: %w", err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidFile, len(raw))
	}
	switch string(raw[126:128]) {
	case "IM":
	case "MI":
		return nil, fmt.Errorf("%w: big-endian files", ErrUnsupported)
	default:
		return nil, fmt.Errorf("%w: missing endian indicator", ErrInvalidFile)
	}
	if v := byteOrder.Uint16(raw[124:126]); v != version5 {
		return nil, fmt.Errorf("%w: version 0x%04x", ErrUnsupported, v)
	}

	file := &File{Header: strings.TrimRight(string(raw[:headerTextSize]), " \x00")}
	elements := &elementReader{data: raw[headerSize:]}
	for !elements.done() {
		typ, body, err := elements.next()
		if err != nil {
			return nil, err
		}
		switch typ {
		case miMATRIX:
			v, err := decodeMatrix(body)
			if err != nil {
				return nil, err
			}
			file.Variables = append(file.Variables, v)
		case miCOMPRESSED:
			return nil, fmt.Errorf("%w: compressed variables", ErrUnsupported)
		default:
			return nil, fmt.Errorf("%w: top-level element type %d", ErrInvalidFile, typ)
		}
	}
	return file, nil
}

type elementReader struct {
	data []byte
	pos  int
}

func (r *elementReader) done() bool {
	return r.pos >= len(r.data)
}

// next returns the type and payload of the next data element, handling both
// the full 8-byte tag and the packed small-element form.
func (r *elementReader) next() (uint32, []byte, error) {
	if len(r.data)-r.pos < 8 {
		return 0, nil, fmt.Errorf("%w: truncated element tag at offset %d", ErrInvalidFile, r.pos)
	}
	tag := r.data[r.pos : r.pos+8]
	first := byteOrder.Uint32(tag[0:4])

	if small := first >> 16; small != 0 {
		if small > 4 {
			return 0, nil, fmt.Errorf("%w: small element of %d bytes", ErrInvalidFile, small)
		}
		r.pos += 8
		return first & 0xffff, tag[4 : 4+small], nil
	}

	size := int(byteOrder.Uint32(tag[4:8]))
	start := r.pos + 8
	end := start + size
	if size < 0 || end > len(r.data) {
		return 0, nil, fmt.Errorf("%w: element at offset %d overruns file", ErrInvalidFile, r.pos)
	}
	r.pos = end
	// Compressed elements are not padded.
	if first != miCOMPRESSED {
		r.pos += padding(size)
	}
	return first, r.data[start:end], nil
}

func decodeMatrix(body []byte) (Variable, error) {
	sub := &elementReader{data: body}

	typ, flags, err := sub.next()
	if err != nil {
		return Variable{}, err
	}
	if typ != miUINT32 || len(flags) != 8 {
		return Variable{}, fmt.Errorf("%w: malformed array flags", ErrInvalidFile)
	}
	word := byteOrder.Uint32(flags[0:4])
	v := Variable{
		Class:   Class(word & 0xff),
		Logical: (word>>8)&flagLogical != 0,
	}
	if (word>>8)&flagComplex != 0 {
		return Variable{}, fmt.Errorf("%w: complex arrays", ErrUnsupported)
	}

	typ, dims, err := sub.next()
	if err != nil {
		return Variable{}, err
	}
	if typ != miINT32 || len(dims)%4 != 0 {
		return Variable{}, fmt.Errorf("%w: malformed dimensions", ErrInvalidFile)
	}
	for i := 0; i < len(dims); i += 4 {
		v.Dims = append(v.Dims, int(int32(byteOrder.Uint32(dims[i:]))))
	}

	typ, name, err := sub.next()
	if err != nil {
		return Variable{}, err
	}
	if typ != miINT8 {
		return Variable{}, fmt.Errorf("%w: malformed array name", ErrInvalidFile)
	}
	v.Name = string(name)

	var dataType uint32
	var data []byte
	if !sub.done() {
		if dataType, data, err = sub.next(); err != nil {
			return Variable{}, err
		}
	}

	switch v.Class {
	case ClassDouble:
		values, err := numericValues(dataType, data)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", v.Name, err)
		}
		v.Float64 = values
	case ClassUint8:
		values, err := numericValues(dataType, data)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", v.Name, err)
		}
		v.Uint8 = make([]uint8, len(values))
		for i, f := range values {
			v.Uint8[i] = uint8(f)
		}
	case ClassChar:
		text, err := charValue(dataType, data)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", v.Name, err)
		}
		v.Text = text
	default:
		return Variable{}, fmt.Errorf("%w: %s: class %s", ErrUnsupported, v.Name, v.Class)
	}

	if err := v.Validate(); err != nil && !errors.Is(err, ErrUnsupported) {
		return Variable{}, err
	}
	return v, nil
}

// numericValues widens any MAT numeric storage type to float64. MATLAB
// routinely stores integer-valued doubles in the smallest type that fits.
func numericValues(typ uint32, data []byte) ([]float64, error) {
	width, ok := map[uint32]int{
		miINT8: 1, miUINT8: 1, miINT16: 2, miUINT16: 2, miINT32: 4,
		miUINT32: 4, miSINGLE: 4, miDOUBLE: 8, miINT64: 8, miUINT64: 8,
	}[typ]
	if len(data) == 0 {
		return []float64{}, nil
	}
	if !ok {
		return nil, fmt.Errorf("%w: numeric data type %d", ErrUnsupported, typ)
	}
	if len(data)%width != 0 {
		return nil, fmt.Errorf("%w: %d bytes of %d-byte values", ErrInvalidFile, len(data), width)
	}

	out := make([]float64, len(data)/width)
	for i := range out {
		b := data[i*width:]
		switch typ {
		case miINT8:
			out[i] = float64(int8(b[0]))
		case miUINT8:
			out[i] = float64(b[0])
		case miINT16:
			out[i] = float64(int16(byteOrder.Uint16(b)))
		case miUINT16:
			out[i] = float64(byteOrder.Uint16(b))
		case miINT32:
			out[i] = float64(int32(byteOrder.Uint32(b)))
		case miUINT32:
			out[i] = float64(byteOrder.Uint32(b))
		case miSINGLE:
			out[i] = float64(math.Float32frombits(byteOrder.Uint32(b)))
		case miDOUBLE:
			out[i] = math.Float64frombits(byteOrder.Uint64(b))
		case miINT64:
			out[i] = float64(int64(byteOrder.Uint64(b)))
		case miUINT64:
			out[i] = float64(byteOrder.Uint64(b))
		}
	}
	return out, nil
}

func charValue(typ uint32, data []byte) (string, error) {
	switch typ {
	case 0:
		return "", nil
	case miUINT16:
		if len(data)%2 != 0 {
			return "", fmt.Errorf("%w: odd-length UTF-16 data", ErrInvalidFile)
		}
		units := make([]uint16, len(data)/2)
		for i := range units {
			units[i] = byteOrder.Uint16(data[2*i:])
		}
		return string(utf16.Decode(units)), nil
	case miUTF8, miUINT8, miINT8:
		return string(data), nil
	default:
		return "", fmt.Errorf("%w: char data type %d", ErrUnsupported, typ)
	}
}
