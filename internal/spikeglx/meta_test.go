package spikeglx_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chanmap/internal/spikeglx"
)

func TestParseMetaStripsMarkerAndKeepsValues(t *testing.T) {
	input := strings.Join([]string{
		"appVersion=20230425",
		"~imroTbl=(24,384)(0 0 0 500 250)",
		"",
		"fileName=D:/data/run_g0_t0.imec0.ap.bin",
		"userNotes=a=b",
	}, "\r\n")

	meta, err := spikeglx.ParseMeta(strings.NewReader(input), spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseMeta returned error: %v", err)
	}

	want := spikeglx.Meta{
		"appVersion": "20230425",
		"imroTbl":    "(24,384)(0 0 0 500 250)",
		"fileName":   "D:/data/run_g0_t0.imec0.ap.bin",
		"userNotes":  "a=b",
	}
	if diff := cmp.Diff(want, meta); diff != "" {
		t.Fatalf("unexpected meta (-want +got):\n%s", diff)
	}
	if got := meta.Keys(); !cmp.Equal(got, []string{"appVersion", "fileName", "imroTbl", "userNotes"}) {
		t.Fatalf("unexpected key order: %v", got)
	}
}

func TestParseMetaStripsOnlyOneMarker(t *testing.T) {
	meta, err := spikeglx.ParseMeta(strings.NewReader("~~key=v\n"), spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseMeta returned error: %v", err)
	}
	if _, ok := meta.Lookup("~key"); !ok {
		t.Fatalf("expected key with one marker left, got %v", meta.Keys())
	}
}

func TestParseMetaLastDuplicateWins(t *testing.T) {
	meta, err := spikeglx.ParseMeta(strings.NewReader("nSavedChans=385\n~nSavedChans=10\n"), spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseMeta returned error: %v", err)
	}
	if meta.Len() != 1 {
		t.Fatalf("expected one key, got %d", meta.Len())
	}
	if v, _ := meta.Lookup("nSavedChans"); v != "10" {
		t.Fatalf("expected last value to win, got %q", v)
	}
}

func TestParseMetaStrictRejectsDuplicates(t *testing.T) {
	_, err := spikeglx.ParseMeta(strings.NewReader("a=1\n~a=2\n"), spikeglx.ParseOptions{StrictDuplicates: true})
	if !errors.Is(err, spikeglx.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in %q", err)
	}
}

func TestParseMetaMalformedLine(t *testing.T) {
	_, err := spikeglx.ParseMeta(strings.NewReader("a=1\nno separator here\n"), spikeglx.ParseOptions{})
	if !errors.Is(err, spikeglx.ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in %q", err)
	}
}

func TestParseMetaWhitespaceLineIsMalformed(t *testing.T) {
	_, err := spikeglx.ParseMeta(strings.NewReader("a=1\n   \nb=2\n"), spikeglx.ParseOptions{})
	if !errors.Is(err, spikeglx.ErrMalformedLine) {
		t.Fatalf("expected ErrMalformedLine, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Fatalf("expected line number in %q", err)
	}
}

func TestParseMetaAcceptsEmptyKey(t *testing.T) {
	meta, err := spikeglx.ParseMeta(strings.NewReader("~=x\nsnsApLfSy=1,0,0\n"), spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("ParseMeta returned error: %v", err)
	}
	if got, ok := meta.Lookup(""); !ok || got != "x" {
		t.Fatalf("expected empty key to hold %q, got %q (present=%v)", "x", got, ok)
	}
	if meta.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", meta.Len())
	}
}

func TestReadMetaFileMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.ap.meta")
	_, err := spikeglx.ReadMetaFile(path, spikeglx.ParseOptions{})
	if !errors.Is(err, spikeglx.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestReadMetaFileEmptyThenMissingKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.ap.meta")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	meta, err := spikeglx.ReadMetaFile(path, spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("expected empty file to parse, got %v", err)
	}
	if meta.Len() != 0 {
		t.Fatalf("expected empty meta, got %d keys", meta.Len())
	}

	if _, err := spikeglx.ChannelCountsFromMeta(meta); !errors.Is(err, spikeglx.ErrMissingKey) {
		t.Fatalf("expected ErrMissingKey, got %v", err)
	}
}
