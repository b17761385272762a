package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// SampleGeomMap describes a two-shank probe with 250 um pitch and three
// channels, the second disconnected.
const SampleGeomMap = "(NP2014,2,250,70)(0:0:0:1)(1:10:20:0)(0:5:40:1)"

// SampleMeta is a minimal metadata file matching SampleGeomMap.
var SampleMeta = strings.Join([]string{
	"imSampRate=30000",
	"nSavedChans=4",
	"snsApLfSy=3,0,1",
	"~snsGeomMap=" + SampleGeomMap,
	"",
}, "\n")

// WriteMeta writes content to dir/name and returns the path.
func WriteMeta(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteSampleMeta writes SampleMeta as run_g0_t0.imec0.ap.meta under dir.
func WriteSampleMeta(t testing.TB, dir string) string {
	t.Helper()
	return WriteMeta(t, dir, "run_g0_t0.imec0.ap.meta", SampleMeta)
}

// AssertNoFile fails the test when path exists.
func AssertNoFile(t testing.TB, path string) {
	t.Helper()

	if _, err := os.Stat(path); err == nil {
		t.Fatalf("expected %s to be absent", path)
	} else if !os.IsNotExist(err) {
		t.Fatalf("stat %s: %v", path, err)
	}
}
