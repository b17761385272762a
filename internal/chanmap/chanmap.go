package chanmap

import (
	"errors"
	"fmt"

	"chanmap/internal/matfile"
	"chanmap/internal/spikeglx"
)

var (
	// ErrChannelCountMismatch reports a declared channel count that differs
	// from the number of geometry records.
	ErrChannelCountMismatch = errors.New("channel count mismatch")
	// ErrShape reports columns whose lengths disagree.
	ErrShape = matfile.ErrShape
)

// Field names of the Kilosort channel map file.
const (
	FieldChanMap     = "chanMap"
	FieldChanMap0Ind = "chanMap0ind"
	FieldConnected   = "connected"
	FieldName        = "name"
	FieldXCoords     = "xcoords"
	FieldYCoords     = "ycoords"
	FieldKCoords     = "kcoords"
)

// Fields lists the schema in file order.
var Fields = []string{
	FieldChanMap,
	FieldChanMap0Ind,
	FieldConnected,
	FieldName,
	FieldXCoords,
	FieldYCoords,
	FieldKCoords,
}

// ChannelMap is a Kilosort channel map. Index i of every slice describes the
// i-th saved channel.
type ChannelMap struct {
	ChanMap     []float64
	ChanMap0Ind []float64
	Connected   []bool
	XCoords     []float64
	YCoords     []float64
	KCoords     []float64
	Name        string
}

// Assemble lays out entries as a channel map. channelCount is the count
// declared in the metadata and must equal len(entries). X coordinates are
// offset by the entry's shank times the shank pitch.
func Assemble(header spikeglx.ShankHeader, entries []spikeglx.ChannelEntry, channelCount int, baseName string) (*ChannelMap, error) {
	if channelCount != len(entries) {
		return nil, fmt.Errorf("%w: metadata declares %d channels but geometry has %d entries",
			ErrChannelCountMismatch, channelCount, len(entries))
	}

	n := channelCount
	m := &ChannelMap{
		ChanMap:     make([]float64, n),
		ChanMap0Ind: make([]float64, n),
		Connected:   make([]bool, n),
		XCoords:     make([]float64, n),
		YCoords:     make([]float64, n),
		KCoords:     make([]float64, n),
		Name:        baseName,
	}
	for i, entry := range entries {
		m.ChanMap0Ind[i] = float64(i)
		m.ChanMap[i] = float64(i) + 1
		m.Connected[i] = entry.Connected
		m.XCoords[i] = float64(entry.Shank)*header.ShankPitch + entry.X
		m.YCoords[i] = entry.Y
		m.KCoords[i] = float64(entry.Shank) + 1
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Len returns the number of channels.
func (m *ChannelMap) Len() int {
	return len(m.ChanMap0Ind)
}

// ConnectedCount returns how many channels are flagged connected.
func (m *ChannelMap) ConnectedCount() int {
	n := 0
	for _, c := range m.Connected {
		if c {
			n++
		}
	}
	return n
}

// Validate checks that every column has the same length.
func (m *ChannelMap) Validate() error {
	n := len(m.ChanMap0Ind)
	lengths := map[string]int{
		FieldChanMap:   len(m.ChanMap),
		FieldConnected: len(m.Connected),
		FieldXCoords:   len(m.XCoords),
		FieldYCoords:   len(m.YCoords),
		FieldKCoords:   len(m.KCoords),
	}
	for _, field := range Fields {
		got, ok := lengths[field]
		if !ok {
			continue
		}
		if got != n {
			return fmt.Errorf("%w: %s has %d rows, expected %d", ErrShape, field, got, n)
		}
	}
	return nil
}

// Variables returns the MAT-file variables in schema order.
func (m *ChannelMap) Variables() ([]matfile.Variable, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return []matfile.Variable{
		matfile.Column(FieldChanMap, m.ChanMap),
		matfile.Column(FieldChanMap0Ind, m.ChanMap0Ind),
		matfile.LogicalColumn(FieldConnected, m.Connected),
		matfile.String(FieldName, m.Name),
		matfile.Column(FieldXCoords, m.XCoords),
		matfile.Column(FieldYCoords, m.YCoords),
		matfile.Column(FieldKCoords, m.KCoords),
	}, nil
}
