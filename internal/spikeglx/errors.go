package spikeglx

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingFile   = errors.New("metadata file not found")
	ErrMalformedLine = errors.New("malformed metadata line")
	ErrDuplicateKey  = errors.New("duplicate metadata key")
	ErrMissingKey    = errors.New("missing metadata key")
	ErrFormat        = errors.New("invalid metadata format")
)

// FieldError pinpoints the record and field that failed to parse inside a
// structured metadata value.
type FieldError struct {
	Key    string
	Record string
	Field  string
	Value  string
	Err    error
}

func (e *FieldError) Error() string {
	var b strings.Builder
	b.WriteString(ErrFormat.Error())
	b.WriteString(": ")
	b.WriteString(e.Key)
	if e.Record != "" {
		b.WriteByte(' ')
		b.WriteString(e.Record)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, " (%q)", e.Value)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrFormat}
	}
	return []error{ErrFormat, e.Err}
}

// wrap tags err with a sentinel marker and a "stage: operation: message"
// detail so the CLI can report where a conversion broke.
func wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "metadata"
	}
	return strings.Join(parts, ": ")
}
