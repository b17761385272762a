package spikeglx_test

import (
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chanmap/internal/spikeglx"
)

func TestParseGeomMap(t *testing.T) {
	geom, err := spikeglx.ParseGeomMap("(NP2014,2,250,70)(0:0:0:1)(1:10:20:0)(0:5:5:1)")
	if err != nil {
		t.Fatalf("ParseGeomMap returned error: %v", err)
	}

	wantHeader := spikeglx.ShankHeader{ProbeType: "NP2014", NShank: 2, ShankPitch: 250, ShankWidth: 70}
	if geom.Header != wantHeader {
		t.Fatalf("unexpected header: %+v", geom.Header)
	}
	wantEntries := []spikeglx.ChannelEntry{
		{Shank: 0, X: 0, Y: 0, Connected: true},
		{Shank: 1, X: 10, Y: 20, Connected: false},
		{Shank: 0, X: 5, Y: 5, Connected: true},
	}
	if diff := cmp.Diff(wantEntries, geom.Entries); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%s", diff)
	}
	if got := geom.ShankIndices(); !cmp.Equal(got, []int{0, 1, 0}) {
		t.Fatalf("unexpected shank indices: %v", got)
	}
}

func TestParseGeomMapHeaderOnly(t *testing.T) {
	geom, err := spikeglx.ParseGeomMap("(h,1,0,0)")
	if err != nil {
		t.Fatalf("ParseGeomMap returned error: %v", err)
	}
	if len(geom.Entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(geom.Entries))
	}
}

func TestParseGeomMapFractionalCoordinates(t *testing.T) {
	geom, err := spikeglx.ParseGeomMap("(h,1,0,32)(0:27.5:-15.25:1)")
	if err != nil {
		t.Fatalf("ParseGeomMap returned error: %v", err)
	}
	if geom.Entries[0].X != 27.5 || geom.Entries[0].Y != -15.25 {
		t.Fatalf("unexpected coordinates: %+v", geom.Entries[0])
	}
}

func TestParseGeomMapErrors(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{name: "three entry fields", raw: "(h,1,250,70)(0:0:0:1)(0:1:1)", field: "entry 1"},
		{name: "five entry fields", raw: "(h,1,250,70)(0:0:0:1:9)", field: "entry 0"},
		{name: "short header", raw: "(h,1,250)(0:0:0:1)", field: "header"},
		{name: "bad shank count", raw: "(h,x,250,70)(0:0:0:1)", field: "nShank"},
		{name: "zero shanks", raw: "(h,0,250,70)", field: "nShank"},
		{name: "bad pitch", raw: "(h,1,abc,70)(0:0:0:1)", field: "shankPitch"},
		{name: "shank out of range", raw: "(h,2,250,70)(2:0:0:1)", field: "shank"},
		{name: "negative shank", raw: "(h,2,250,70)(-1:0:0:1)", field: "shank"},
		{name: "bad x", raw: "(h,1,250,70)(0:a:0:1)", field: "x"},
		{name: "bad connected", raw: "(h,1,250,70)(0:0:0:2)", field: "connected"},
		{name: "missing terminator", raw: "(h,1,250,70)(0:0:0:1", field: "trailer"},
		{name: "missing open paren", raw: "(h,1,250,70)0:0:0:1)", field: "entry 0"},
		{name: "empty", raw: "", field: "header"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := spikeglx.ParseGeomMap(tc.raw)
			if !errors.Is(err, spikeglx.ErrFormat) {
				t.Fatalf("expected ErrFormat for %q, got %v", tc.raw, err)
			}
			var fieldErr *spikeglx.FieldError
			if !errors.As(err, &fieldErr) {
				t.Fatalf("expected *FieldError, got %T", err)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Fatalf("expected %q in error %q", tc.field, err)
			}
		})
	}
}

func TestParseGeomMapKeepsNumericCause(t *testing.T) {
	_, err := spikeglx.ParseGeomMap("(h,1,250,70)(0:0:zz:1)")
	var numErr *strconv.NumError
	if !errors.As(err, &numErr) {
		t.Fatalf("expected strconv.NumError in chain, got %v", err)
	}
}

func TestGeometryFromMetaMissingKey(t *testing.T) {
	_, err := spikeglx.GeometryFromMeta(spikeglx.Meta{"snsApLfSy": "3,0,1"})
	if !errors.Is(err, spikeglx.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "snsGeomMap") {
		t.Fatalf("expected key name in %q", err)
	}
}
