package spikeglx

import (
	"fmt"
	"strconv"
	"strings"
)

// ChannelCounts holds the number of saved channels of each imec type.
type ChannelCounts struct {
	AP int
	LF int
	SY int
}

// Total returns the number of channels stored per timepoint.
func (c ChannelCounts) Total() int {
	return c.AP + c.LF + c.SY
}

// ChannelCountsFromMeta extracts the AP, LF and SY counts from snsApLfSy.
func ChannelCountsFromMeta(m Meta) (ChannelCounts, error) {
	raw, err := m.Value(KeyChannelCounts)
	if err != nil {
		return ChannelCounts{}, err
	}
	return ParseChannelCounts(raw)
}

// ParseChannelCounts parses an "<AP>,<LF>,<SY>" value. It returns either all
// three counts or an error.
func ParseChannelCounts(raw string) (ChannelCounts, error) {
	fields := strings.Split(strings.TrimSpace(raw), ",")
	if len(fields) != 3 {
		return ChannelCounts{}, wrap(ErrFormat, "counts", KeyChannelCounts,
			fmt.Sprintf("expected 3 comma-separated fields, got %d", len(fields)), nil)
	}

	var values [3]int
	for i, name := range [...]string{"AP", "LF", "SY"} {
		n, err := strconv.Atoi(strings.TrimSpace(fields[i]))
		if err != nil {
			return ChannelCounts{}, &FieldError{Key: KeyChannelCounts, Field: name, Value: fields[i], Err: err}
		}
		if n < 0 {
			return ChannelCounts{}, &FieldError{Key: KeyChannelCounts, Field: name, Value: fields[i], Err: errNegative}
		}
		values[i] = n
	}
	return ChannelCounts{AP: values[0], LF: values[1], SY: values[2]}, nil
}
