package spikeglx

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	recordOpen      = "("
	recordClose     = ")"
	headerSeparator = ","
	entrySeparator  = ":"

	headerFieldCount = 4
	entryFieldCount  = 4
)

var (
	errNegative   = errors.New("must be non-negative")
	errShankRange = errors.New("shank index out of range")
	errConnected  = errors.New("connected flag must be 0 or 1")
	errNoShanks   = errors.New("shank count must be at least 1")
)

// ShankHeader is the first snsGeomMap record: probe type, shank count,
// shank pitch and shank width.
type ShankHeader struct {
	// ProbeType is the placeholder first field; it is carried for display
	// only and never interpreted.
	ProbeType  string
	NShank     int
	ShankPitch float64
	ShankWidth float64
}

// ChannelEntry is one saved channel's geometry record. Its position in
// Geometry.Entries is the channel index.
type ChannelEntry struct {
	Shank     int
	X         float64
	Y         float64
	Connected bool
}

// Geometry is a parsed snsGeomMap value.
type Geometry struct {
	Header  ShankHeader
	Entries []ChannelEntry
}

// ShankIndices returns each entry's shank index in channel order.
func (g Geometry) ShankIndices() []int {
	out := make([]int, len(g.Entries))
	for i, entry := range g.Entries {
		out[i] = entry.Shank
	}
	return out
}

// GeometryFromMeta parses the snsGeomMap value of m.
func GeometryFromMeta(m Meta) (Geometry, error) {
	raw, err := m.Value(KeyGeomMap)
	if err != nil {
		return Geometry{}, err
	}
	return ParseGeomMap(raw)
}

// ParseGeomMap tokenizes "(h,n,pitch,width)(s:x:y:c)...(s:x:y:c)".
//
// The value is split on ')' first. The header is the first segment and the
// terminator leaves an empty last segment, so both are taken by position.
// Every other segment is one channel record.
func ParseGeomMap(raw string) (Geometry, error) {
	segments, err := splitRecords(strings.TrimSpace(raw))
	if err != nil {
		return Geometry{}, err
	}

	header, err := parseHeader(segments[0])
	if err != nil {
		return Geometry{}, err
	}

	records := segments[1:]
	entries := make([]ChannelEntry, 0, len(records))
	for i, record := range records {
		entry, err := parseEntry(i, record, header.NShank)
		if err != nil {
			return Geometry{}, err
		}
		entries = append(entries, entry)
	}
	return Geometry{Header: header, Entries: entries}, nil
}

// splitRecords is the outer tokenizer stage. It returns the record bodies
// with their opening '(' removed; index 0 is the header.
func splitRecords(raw string) ([]string, error) {
	segments := strings.Split(raw, recordClose)
	last := len(segments) - 1
	if segments[last] != "" {
		return nil, &FieldError{Key: KeyGeomMap, Record: "trailer", Value: segments[last], Err: errors.New("value must end with ')'")}
	}
	segments = segments[:last]
	if len(segments) == 0 {
		return nil, &FieldError{Key: KeyGeomMap, Record: "header", Err: errors.New("header record missing")}
	}

	bodies := make([]string, len(segments))
	for i, segment := range segments {
		body, ok := strings.CutPrefix(segment, recordOpen)
		if !ok {
			return nil, &FieldError{Key: KeyGeomMap, Record: recordLabel(i - 1), Value: segment, Err: errors.New("record must start with '('")}
		}
		bodies[i] = body
	}
	return bodies, nil
}

func parseHeader(body string) (ShankHeader, error) {
	fields := strings.Split(body, headerSeparator)
	if len(fields) < headerFieldCount {
		return ShankHeader{}, &FieldError{Key: KeyGeomMap, Record: "header", Value: body,
			Err: fmt.Errorf("expected %d comma-separated fields, got %d", headerFieldCount, len(fields))}
	}

	nShank, err := strconv.Atoi(strings.TrimSpace(fields[1]))
	if err != nil {
		return ShankHeader{}, &FieldError{Key: KeyGeomMap, Record: "header", Field: "nShank", Value: fields[1], Err: err}
	}
	if nShank < 1 {
		return ShankHeader{}, &FieldError{Key: KeyGeomMap, Record: "header", Field: "nShank", Value: fields[1], Err: errNoShanks}
	}
	pitch, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return ShankHeader{}, &FieldError{Key: KeyGeomMap, Record: "header", Field: "shankPitch", Value: fields[2], Err: err}
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
	if err != nil {
		return ShankHeader{}, &FieldError{Key: KeyGeomMap, Record: "header", Field: "shankWidth", Value: fields[3], Err: err}
	}

	return ShankHeader{
		ProbeType:  strings.TrimSpace(fields[0]),
		NShank:     nShank,
		ShankPitch: pitch,
		ShankWidth: width,
	}, nil
}

// parseEntry is the inner tokenizer stage for one channel record.
func parseEntry(index int, body string, nShank int) (ChannelEntry, error) {
	label := recordLabel(index)
	fields := strings.Split(body, entrySeparator)
	if len(fields) != entryFieldCount {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Value: body,
			Err: fmt.Errorf("expected %d colon-separated fields, got %d", entryFieldCount, len(fields))}
	}

	shank, err := strconv.Atoi(strings.TrimSpace(fields[0]))
	if err != nil {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "shank", Value: fields[0], Err: err}
	}
	if shank < 0 || shank >= nShank {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "shank", Value: fields[0], Err: errShankRange}
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "x", Value: fields[1], Err: err}
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
	if err != nil {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "y", Value: fields[2], Err: err}
	}
	flag, err := strconv.Atoi(strings.TrimSpace(fields[3]))
	if err != nil {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "connected", Value: fields[3], Err: err}
	}
	if flag != 0 && flag != 1 {
		return ChannelEntry{}, &FieldError{Key: KeyGeomMap, Record: label, Field: "connected", Value: fields[3], Err: errConnected}
	}

	return ChannelEntry{Shank: shank, X: x, Y: y, Connected: flag == 1}, nil
}

func recordLabel(index int) string {
	if index < 0 {
		return "header"
	}
	return "entry " + strconv.Itoa(index)
}
