package matfile

import (
	"errors"
	"fmt"
)

var (
	// ErrShape reports array data whose length does not match its dimensions.
	ErrShape = errors.New("array shape mismatch")
	// ErrInvalidFile reports input that is not a readable Level 5 MAT-file.
	ErrInvalidFile = errors.New("invalid MAT-file")
	// ErrUnsupported reports valid MAT-file content outside the supported subset.
	ErrUnsupported = errors.New("unsupported MAT-file content")
)

// Class is a MATLAB array class (mxClassID).
type Class uint8

const (
	ClassChar   Class = 4
	ClassDouble Class = 6
	ClassUint8  Class = 9
)

func (c Class) String() string {
	switch c {
	case ClassChar:
		return "char"
	case ClassDouble:
		return "double"
	case ClassUint8:
		return "uint8"
	default:
		return fmt.Sprintf("class(%d)", uint8(c))
	}
}

// data element types (miXXX)
const (
	miINT8       uint32 = 1
	miUINT8      uint32 = 2
	miINT16      uint32 = 3
	miUINT16     uint32 = 4
	miINT32      uint32 = 5
	miUINT32     uint32 = 6
	miSINGLE     uint32 = 7
	miDOUBLE     uint32 = 9
	miINT64      uint32 = 12
	miUINT64     uint32 = 13
	miMATRIX     uint32 = 14
	miCOMPRESSED uint32 = 15
	miUTF8       uint32 = 16
)

const (
	headerSize     = 128
	headerTextSize = 116
	version5       = 0x0100

	flagLogical = 0x02
	flagGlobal  = 0x04
	flagComplex = 0x08

	maxNameLength = 63
)

// Variable is one named top-level array.
type Variable struct {
	Name    string
	Class   Class
	Logical bool
	// Dims are the array dimensions, rows first.
	Dims []int
	// Float64 carries double data in column-major order.
	Float64 []float64
	// Uint8 carries uint8 and logical data in column-major order.
	Uint8 []uint8
	// Text carries char data.
	Text string
}

// Column builds an N x 1 double array.
func Column(name string, values []float64) Variable {
	data := make([]float64, len(values))
	copy(data, values)
	return Variable{Name: name, Class: ClassDouble, Dims: []int{len(values), 1}, Float64: data}
}

// LogicalColumn builds an N x 1 logical array.
func LogicalColumn(name string, values []bool) Variable {
	data := make([]uint8, len(values))
	for i, v := range values {
		if v {
			data[i] = 1
		}
	}
	return Variable{Name: name, Class: ClassUint8, Logical: true, Dims: []int{len(values), 1}, Uint8: data}
}

// String builds a 1 x len char row vector. An empty string is stored as a
// 0 x 0 char array, matching MATLAB.
func String(name, value string) Variable {
	n := len(utf16Units(value))
	dims := []int{1, n}
	if n == 0 {
		dims = []int{0, 0}
	}
	return Variable{Name: name, Class: ClassChar, Dims: dims, Text: value}
}

// Len returns the number of elements implied by the dimensions.
func (v Variable) Len() int {
	if len(v.Dims) == 0 {
		return 0
	}
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// IsColumn reports whether the array is N x 1.
func (v Variable) IsColumn() bool {
	return len(v.Dims) == 2 && v.Dims[1] == 1
}

// Bools returns logical or uint8 data as booleans.
func (v Variable) Bools() []bool {
	out := make([]bool, len(v.Uint8))
	for i, b := range v.Uint8 {
		out[i] = b != 0
	}
	return out
}

// Validate checks the name and that the data length matches the dimensions.
func (v Variable) Validate() error {
	if err := validateName(v.Name); err != nil {
		return err
	}
	if len(v.Dims) < 2 {
		return fmt.Errorf("%w: %s: need at least 2 dimensions, got %d", ErrShape, v.Name, len(v.Dims))
	}
	for _, d := range v.Dims {
		if d < 0 {
			return fmt.Errorf("%w: %s: negative dimension %v", ErrShape, v.Name, v.Dims)
		}
	}

	var have int
	switch v.Class {
	case ClassDouble:
		have = len(v.Float64)
	case ClassUint8:
		have = len(v.Uint8)
	case ClassChar:
		have = len(utf16Units(v.Text))
	default:
		return fmt.Errorf("%w: %s: class %s", ErrUnsupported, v.Name, v.Class)
	}
	if want := v.Len(); have != want {
		return fmt.Errorf("%w: %s: dims %v need %d elements, have %d", ErrShape, v.Name, v.Dims, want, have)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty variable name", ErrUnsupported)
	}
	if len(name) > maxNameLength {
		return fmt.Errorf("%w: variable name %q longer than %d characters", ErrUnsupported, name, maxNameLength)
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r == '_' || (r >= '0' && r <= '9')):
		default:
			return fmt.Errorf("%w: invalid variable name %q", ErrUnsupported, name)
		}
	}
	return nil
}
