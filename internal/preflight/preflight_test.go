package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chanmap/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckOutputDir(t *testing.T) {
	if err := CheckOutputDir(t.TempDir()); err != nil {
		t.Fatalf("expected temp dir to pass, got %v", err)
	}
	err := CheckOutputDir(filepath.Join(t.TempDir(), "missing"))
	if !errors.Is(err, ErrOutputDir) {
		t.Fatalf("expected ErrOutputDir, got %v", err)
	}
}

func TestRunAll(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StateDir = t.TempDir()

	results := RunAll(&cfg)
	if len(results) != 1 {
		t.Fatalf("expected only the state dir check, got %d results", len(results))
	}
	if len(Failed(results)) != 0 {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}

	cfg.Paths.OutputDir = filepath.Join(t.TempDir(), "missing")
	results = RunAll(&cfg)
	if len(results) != 2 {
		t.Fatalf("expected output dir check, got %d results", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Output directory" {
		t.Fatalf("expected output dir failure, got %+v", failed)
	}
}

func TestRunAllNilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatalf("expected nil results, got %+v", results)
	}
}
