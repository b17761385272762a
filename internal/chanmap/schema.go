package chanmap

import (
	"errors"
	"fmt"

	"chanmap/internal/matfile"
)

// ErrSchema reports a MAT-file that does not follow the channel map schema.
var ErrSchema = errors.New("channel map schema violation")

// FromMAT checks a decoded MAT-file against the channel map schema and
// returns its contents. Extra variables are ignored.
func FromMAT(file *matfile.File) (*ChannelMap, error) {
	get := func(name string, class matfile.Class) (matfile.Variable, error) {
		v, ok := file.Lookup(name)
		if !ok {
			return v, fmt.Errorf("%w: missing %s", ErrSchema, name)
		}
		if v.Class != class {
			return v, fmt.Errorf("%w: %s is %s, expected %s", ErrSchema, name, v.Class, class)
		}
		return v, nil
	}
	column := func(name string) ([]float64, error) {
		v, err := get(name, matfile.ClassDouble)
		if err != nil {
			return nil, err
		}
		if !v.IsColumn() {
			return nil, fmt.Errorf("%w: %s has dims %v, expected N x 1", ErrShape, name, v.Dims)
		}
		return v.Float64, nil
	}

	m := &ChannelMap{}
	var err error
	if m.ChanMap, err = column(FieldChanMap); err != nil {
		return nil, err
	}
	if m.ChanMap0Ind, err = column(FieldChanMap0Ind); err != nil {
		return nil, err
	}
	if m.XCoords, err = column(FieldXCoords); err != nil {
		return nil, err
	}
	if m.YCoords, err = column(FieldYCoords); err != nil {
		return nil, err
	}
	if m.KCoords, err = column(FieldKCoords); err != nil {
		return nil, err
	}

	connected, err := get(FieldConnected, matfile.ClassUint8)
	if err != nil {
		return nil, err
	}
	if !connected.Logical {
		return nil, fmt.Errorf("%w: %s is not logical", ErrSchema, FieldConnected)
	}
	if !connected.IsColumn() {
		return nil, fmt.Errorf("%w: %s has dims %v, expected N x 1", ErrShape, FieldConnected, connected.Dims)
	}
	m.Connected = connected.Bools()

	name, err := get(FieldName, matfile.ClassChar)
	if err != nil {
		return nil, err
	}
	m.Name = name.Text

	if err := m.Validate(); err != nil {
		return nil, err
	}
	for i := range m.ChanMap0Ind {
		if m.ChanMap[i] != m.ChanMap0Ind[i]+1 {
			return nil, fmt.Errorf("%w: %s[%d]=%v is not %s[%d]+1", ErrSchema, FieldChanMap, i, m.ChanMap[i], FieldChanMap0Ind, i)
		}
	}
	return m, nil
}
