package convert_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"chanmap/internal/chanmap"
	"chanmap/internal/convert"
	"chanmap/internal/spikeglx"
	"chanmap/internal/testsupport"
)

func TestLoadAssemblesSample(t *testing.T) {
	path := testsupport.WriteSampleMeta(t, t.TempDir())

	loaded, err := convert.Load(path, "", spikeglx.ParseOptions{})
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.BaseName != "run_g0_t0.imec0.ap" {
		t.Fatalf("unexpected base name %q", loaded.BaseName)
	}
	if loaded.Counts != (spikeglx.ChannelCounts{AP: 3, LF: 0, SY: 1}) {
		t.Fatalf("unexpected counts %+v", loaded.Counts)
	}
	if diff := cmp.Diff([]float64{0, 260, 5}, loaded.Map.XCoords); diff != "" {
		t.Fatalf("xcoords mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{1, 2, 1}, loaded.Map.KCoords); diff != "" {
		t.Fatalf("kcoords mismatch (-want +got):\n%s", diff)
	}
	if loaded.Map.Name != loaded.BaseName {
		t.Fatalf("expected name %q, got %q", loaded.BaseName, loaded.Map.Name)
	}
}

func TestLoadBaseNameOverride(t *testing.T) {
	path := testsupport.WriteSampleMeta(t, t.TempDir())
	loaded, err := convert.Load(path, "  mouse42  ", spikeglx.ParseOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if loaded.BaseName != "mouse42" || loaded.Map.Name != "mouse42" {
		t.Fatalf("expected trimmed override, got %q / %q", loaded.BaseName, loaded.Map.Name)
	}
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    error
	}{
		{name: "empty file", content: "", want: spikeglx.ErrMissingKey},
		{name: "missing geometry", content: "snsApLfSy=3,0,1\n", want: spikeglx.ErrMissingKey},
		{name: "missing counts", content: "snsGeomMap=" + testsupport.SampleGeomMap + "\n", want: spikeglx.ErrMissingKey},
		{name: "malformed line", content: "snsApLfSy=3,0,1\nnot a pair\n", want: spikeglx.ErrMalformedLine},
		{
			name:    "three entry fields",
			content: "snsApLfSy=1,0,0\nsnsGeomMap=(NP2014,1,250,70)(0:0:0)\n",
			want:    spikeglx.ErrFormat,
		},
		{
			name:    "count mismatch",
			content: "snsApLfSy=2,0,0\nsnsGeomMap=(NP2014,1,250,70)(0:0:0:1)\n",
			want:    chanmap.ErrChannelCountMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := testsupport.WriteMeta(t, t.TempDir(), "probe.meta", tc.content)
			_, err := convert.Load(path, "", spikeglx.ParseOptions{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := convert.Load("/nonexistent/probe.meta", "", spikeglx.ParseOptions{})
	if !errors.Is(err, spikeglx.ErrMissingFile) {
		t.Fatalf("expected ErrMissingFile, got %v", err)
	}
}

func TestLoadStrictDuplicates(t *testing.T) {
	content := testsupport.SampleMeta + "snsApLfSy=3,0,1\n"
	path := testsupport.WriteMeta(t, t.TempDir(), "probe.meta", content)

	if _, err := convert.Load(path, "", spikeglx.ParseOptions{}); err != nil {
		t.Fatalf("lenient load should succeed: %v", err)
	}
	_, err := convert.Load(path, "", spikeglx.ParseOptions{StrictDuplicates: true})
	if !errors.Is(err, spikeglx.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestLoadRejectsEmptyBaseName(t *testing.T) {
	path := testsupport.WriteSampleMeta(t, t.TempDir())
	_, err := convert.Load(path, "???", spikeglx.ParseOptions{})
	if !errors.Is(err, convert.ErrBaseName) {
		t.Fatalf("expected ErrBaseName, got %v", err)
	}
}
