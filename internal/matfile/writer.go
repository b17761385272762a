package matfile

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"
	"unicode/utf16"
)

var byteOrder = binary.LittleEndian

// EncodeOptions controls the descriptive header text.
type EncodeOptions struct {
	// Created is stamped into the header; zero means time.Now.
	Created time.Time
	// Producer names the writing program in the header text.
	Producer string
}

// Encode writes a complete MAT-file containing vars, in order.
func Encode(w io.Writer, opts EncodeOptions, vars ...Variable) error {
	seen := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		if err := v.Validate(); err != nil {
			return err
		}
		if _, dup := seen[v.Name]; dup {
			return fmt.Errorf("%w: duplicate variable name %q", ErrUnsupported, v.Name)
		}
		seen[v.Name] = struct{}{}
	}

	var buf bytes.Buffer
	writeHeader(&buf, opts)
	for _, v := range vars {
		writeMatrix(&buf, v)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeHeader(buf *bytes.Buffer, opts EncodeOptions) {
	created := opts.Created
	if created.IsZero() {
		created = time.Now()
	}
	producer := strings.TrimSpace(opts.Producer)
	if producer == "" {
		producer = "chanmap"
	}

	text := fmt.Sprintf("MATLAB 5.0 MAT-file, Platform: %s, Created on: %s",
		producer, created.UTC().Format("Mon Jan _2 15:04:05 2006"))
	if len(text) > headerTextSize {
		text = text[:headerTextSize]
	}
	buf.WriteString(text)
	buf.WriteString(strings.Repeat(" ", headerTextSize-len(text)))

	// subsystem data offset: none
	buf.Write(make([]byte, 8))

	var tail [4]byte
	byteOrder.PutUint16(tail[0:2], version5)
	// Written as the uint16 'MI'; reads back as "IM" on little-endian.
	byteOrder.PutUint16(tail[2:4], uint16('M')<<8|uint16('I'))
	buf.Write(tail[:])
}

func writeMatrix(buf *bytes.Buffer, v Variable) {
	var body bytes.Buffer

	var flags [8]byte
	word := uint32(v.Class)
	if v.Logical {
		word |= flagLogical << 8
	}
	byteOrder.PutUint32(flags[0:4], word)
	writeElement(&body, miUINT32, flags[:])

	dims := make([]byte, 4*len(v.Dims))
	for i, d := range v.Dims {
		byteOrder.PutUint32(dims[4*i:], uint32(int32(d)))
	}
	writeElement(&body, miINT32, dims)

	writeElement(&body, miINT8, []byte(v.Name))

	switch v.Class {
	case ClassDouble:
		data := make([]byte, 8*len(v.Float64))
		for i, f := range v.Float64 {
			byteOrder.PutUint64(data[8*i:], math.Float64bits(f))
		}
		writeElement(&body, miDOUBLE, data)
	case ClassUint8:
		writeElement(&body, miUINT8, v.Uint8)
	case ClassChar:
		units := utf16Units(v.Text)
		data := make([]byte, 2*len(units))
		for i, u := range units {
			byteOrder.PutUint16(data[2*i:], u)
		}
		writeElement(&body, miUINT16, data)
	}

	writeTag(buf, miMATRIX, uint32(body.Len()))
	buf.Write(body.Bytes())
}

// writeElement emits a full-format tag followed by data padded to 8 bytes.
func writeElement(buf *bytes.Buffer, typ uint32, data []byte) {
	writeTag(buf, typ, uint32(len(data)))
	buf.Write(data)
	if pad := padding(len(data)); pad > 0 {
		buf.Write(make([]byte, pad))
	}
}

func writeTag(buf *bytes.Buffer, typ, size uint32) {
	var tag [8]byte
	byteOrder.PutUint32(tag[0:4], typ)
	byteOrder.PutUint32(tag[4:8], size)
	buf.Write(tag[:])
}

func padding(n int) int {
	if rem := n % 8; rem != 0 {
		return 8 - rem
	}
	return 0
}

func utf16Units(s string) []uint16 {
	return utf16.Encode([]rune(s))
}
