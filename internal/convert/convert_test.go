package convert_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/go-cmp/cmp"

	"chanmap/internal/chanmap"
	"chanmap/internal/convert"
	"chanmap/internal/history"
	"chanmap/internal/matfile"
	"chanmap/internal/testsupport"
)

var fixedClock = func() time.Time { return time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC) }

func readChannelMap(t *testing.T, path string) *chanmap.ChannelMap {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	file, err := matfile.Read(f)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if diff := cmp.Diff(chanmap.Fields, file.Names()); diff != "" {
		t.Fatalf("unexpected variables (-want +got):\n%s", diff)
	}
	m, err := chanmap.FromMAT(file)
	if err != nil {
		t.Fatalf("FromMAT: %v", err)
	}
	return m
}

func TestConvertWritesNextToMeta(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	dir := t.TempDir()
	metaPath := testsupport.WriteSampleMeta(t, dir)

	result, err := convert.New(cfg, nil, convert.WithClock(fixedClock)).Convert(context.Background(), convert.Request{MetaPath: metaPath})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	want := filepath.Join(dir, "run_g0_t0.imec0.ap_kilosortChanMap.mat")
	if result.OutputPath != want {
		t.Fatalf("unexpected output path %q", result.OutputPath)
	}
	if result.OutputFile() != "run_g0_t0.imec0.ap_kilosortChanMap.mat" || result.OutputDir() != dir {
		t.Fatalf("unexpected file/dir split %q %q", result.OutputFile(), result.OutputDir())
	}
	if result.RunID == "" || result.Channels != 3 || result.ConnectedCount != 2 || result.ShankCount != 2 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Recorded {
		t.Fatal("expected no history record without a recorder")
	}

	m := readChannelMap(t, want)
	checks := []struct {
		field string
		got   any
		want  any
	}{
		{"chanMap", m.ChanMap, []float64{1, 2, 3}},
		{"chanMap0ind", m.ChanMap0Ind, []float64{0, 1, 2}},
		{"connected", m.Connected, []bool{true, false, true}},
		{"xcoords", m.XCoords, []float64{0, 260, 5}},
		{"ycoords", m.YCoords, []float64{0, 20, 40}},
		{"kcoords", m.KCoords, []float64{1, 2, 1}},
		{"name", m.Name, "run_g0_t0.imec0.ap"},
	}
	for _, c := range checks {
		if diff := cmp.Diff(c.want, c.got); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", c.field, diff)
		}
	}

	if _, err := os.Stat(want + ".lock"); err != nil {
		t.Fatalf("expected lock file to stay beside output: %v", err)
	}
	relock := flock.New(want + ".lock")
	ok, err := relock.TryLock()
	if err != nil || !ok {
		t.Fatalf("expected lock to be released after convert: ok=%v err=%v", ok, err)
	}
	_ = relock.Unlock()
}

func TestConvertUsesConfiguredOutputDirAndName(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithOutputDir())
	if err := os.MkdirAll(cfg.Paths.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg.Output.Suffix = "_chanMap.mat"
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())

	result, err := convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath, BaseName: "mouse 7/left"})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	want := filepath.Join(cfg.Paths.OutputDir, "mouse 7-left_chanMap.mat")
	if result.OutputPath != want {
		t.Fatalf("unexpected output path %q want %q", result.OutputPath, want)
	}
	if m := readChannelMap(t, want); m.Name != "mouse 7/left" {
		t.Fatalf("expected unsanitized name in file, got %q", m.Name)
	}
}

func TestConvertExplicitOutputPath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "custom.mat")

	result, err := convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath, OutputPath: out})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if result.OutputPath != out {
		t.Fatalf("unexpected output path %q", result.OutputPath)
	}
	readChannelMap(t, out)
}

func TestConvertFailuresWriteNothing(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{name: "missing geometry", content: "snsApLfSy=3,0,1\n"},
		{name: "three entry fields", content: "snsApLfSy=1,0,0\nsnsGeomMap=(NP2014,1,250,70)(0:0:0)\n"},
		{name: "empty", content: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testsupport.NewConfig(t)
			dir := t.TempDir()
			metaPath := testsupport.WriteMeta(t, dir, "probe.meta", tc.content)

			if _, err := convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath}); err == nil {
				t.Fatal("expected error")
			}
			entries, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 1 {
				t.Fatalf("expected only the metadata file, found %d entries", len(entries))
			}
		})
	}
}

func TestConvertMissingOutputDir(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "absent", "map.mat")

	_, err := convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath, OutputPath: out})
	if !errors.Is(err, convert.ErrOutputDir) {
		t.Fatalf("expected ErrOutputDir, got %v", err)
	}
}

func TestConvertRespectsOverwrite(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Output.Overwrite = false
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "map.mat")
	if err := os.WriteFile(out, []byte("keep"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath, OutputPath: out})
	if !errors.Is(err, convert.ErrOutputExists) {
		t.Fatalf("expected ErrOutputExists, got %v", err)
	}
	got, _ := os.ReadFile(out)
	if string(got) != "keep" {
		t.Fatalf("existing output was modified: %q", got)
	}
}

func TestConvertLockedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())
	out := filepath.Join(t.TempDir(), "map.mat")

	held := flock.New(out + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("failed to take lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = convert.New(cfg, nil).Convert(context.Background(), convert.Request{MetaPath: metaPath, OutputPath: out})
	if !errors.Is(err, convert.ErrOutputLocked) {
		t.Fatalf("expected ErrOutputLocked, got %v", err)
	}
	testsupport.AssertNoFile(t, out)
}

func TestConvertRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenHistory(t, cfg)
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())

	result, err := convert.New(cfg, nil, convert.WithRecorder(store), convert.WithClock(fixedClock)).
		Convert(context.Background(), convert.Request{MetaPath: metaPath})
	if err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if !result.Recorded {
		t.Fatal("expected conversion to be recorded")
	}

	entry, err := store.GetByRunID(context.Background(), result.RunID)
	if err != nil || entry == nil {
		t.Fatalf("expected history entry, got %+v, %v", entry, err)
	}
	if entry.ChannelCount != 3 || entry.ShankCount != 2 || entry.ShankPitch != 250 || entry.SYCount != 1 {
		t.Fatalf("unexpected entry %+v", entry)
	}
	if !entry.CreatedAt.Equal(fixedClock()) {
		t.Fatalf("unexpected created_at %v", entry.CreatedAt)
	}
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, history.Entry) (*history.Entry, error) {
	return nil, errors.New("disk full")
}

func TestConvertSurvivesHistoryFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	metaPath := testsupport.WriteSampleMeta(t, t.TempDir())

	result, err := convert.New(cfg, nil, convert.WithRecorder(failingRecorder{})).
		Convert(context.Background(), convert.Request{MetaPath: metaPath})
	if err != nil {
		t.Fatalf("history failure should not fail the conversion: %v", err)
	}
	if result.Recorded {
		t.Fatal("expected Recorded=false")
	}
	if _, err := os.Stat(result.OutputPath); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}
