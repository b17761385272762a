package spikeglx

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// Well-known metadata keys consumed by the channel map conversion.
const (
	KeyChannelCounts = "snsApLfSy"
	KeyGeomMap       = "snsGeomMap"
)

// keyMarker prefixes keys that SpikeGLX considers user-editable.
const keyMarker = '~'

const maxLineBytes = 4 << 20

// Meta maps metadata tags to their raw string values. Values stay untyped;
// the helpers that need a field convert it themselves.
type Meta map[string]string

// ParseOptions tunes metadata parsing.
type ParseOptions struct {
	// StrictDuplicates rejects a key that appears twice instead of keeping
	// the last value.
	StrictDuplicates bool
}

// ReadMetaFile parses the metadata file at path. A missing file is reported
// before any parsing happens; an empty file yields an empty Meta.
func ReadMetaFile(path string, opts ParseOptions) (Meta, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, wrap(ErrMissingFile, "read", path, "", nil)
		}
		return nil, fmt.Errorf("open metadata %s: %w", path, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat metadata %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, wrap(ErrMissingFile, "read", path, "is a directory", nil)
	}

	meta, err := ParseMeta(file, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return meta, nil
}

// ParseMeta reads KEY=VALUE lines from r. Empty lines are skipped; every
// other line, including one of only spaces, must contain '='. Each line is
// split on its first '=' and one leading '~' is stripped from the key, which
// may leave the key empty.
func ParseMeta(r io.Reader, opts ParseOptions) (Meta, error) {
	meta := Meta{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, wrap(ErrMalformedLine, "parse", fmt.Sprintf("line %d", lineNo), "missing '=' separator", nil)
		}
		if len(key) > 0 && key[0] == keyMarker {
			key = key[1:]
		}
		if _, exists := meta[key]; exists && opts.StrictDuplicates {
			return nil, wrap(ErrDuplicateKey, "parse", fmt.Sprintf("line %d", lineNo), key, nil)
		}
		meta[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan metadata: %w", err)
	}
	return meta, nil
}

// Lookup returns the raw value stored under key.
func (m Meta) Lookup(key string) (string, bool) {
	value, ok := m[key]
	return value, ok
}

// Value returns the value stored under key or an error wrapping
// ErrMissingKey.
func (m Meta) Value(key string) (string, error) {
	value, ok := m[key]
	if !ok {
		return "", wrap(ErrMissingKey, "lookup", key, "", nil)
	}
	return value, nil
}

// Len reports the number of distinct keys.
func (m Meta) Len() int {
	return len(m)
}

// Keys returns the keys in lexical order.
func (m Meta) Keys() []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
