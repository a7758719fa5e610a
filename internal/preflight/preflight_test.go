package preflight

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"webfonts/internal/config"
	"webfonts/internal/services"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	result := CheckDirectoryAccess("test", t.TempDir())
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed || result.Detail == "" {
		t.Fatalf("expected failure with detail, got %+v", result)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	font := filepath.Join(dir, "font.ttf")
	if err := os.WriteFile(font, []byte("ttf"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := CheckSource(font); err != nil {
		t.Fatalf("expected readable source to pass: %v", err)
	}
	if err := CheckSource(filepath.Join(dir, "missing.ttf")); !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource for missing file, got %v", err)
	}
	if err := CheckSource(dir); !errors.Is(err, services.ErrMissingSource) {
		t.Fatalf("expected ErrMissingSource for directory, got %v", err)
	}
}

func TestCheckWritableAncestor(t *testing.T) {
	base := t.TempDir()
	result := CheckWritableAncestor("out", filepath.Join(base, "a", "b"))
	if !result.Passed {
		t.Fatalf("expected pass via ancestor, got %s", result.Detail)
	}

	file := filepath.Join(base, "file")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckWritableAncestor("out", filepath.Join(file, "child")); result.Passed {
		t.Fatal("expected failure when ancestor is a file")
	}
}

func TestRunAll(t *testing.T) {
	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.SourceDir = filepath.Join(base, "src")
	cfg.Paths.OutputDir = filepath.Join(base, "dist")
	cfg.Paths.ScratchDir = filepath.Join(base, "scratch")
	cfg.Paths.StateDir = filepath.Join(base, "state")

	results := RunAll(&cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Source directory" {
		t.Fatalf("expected only the missing source dir to fail, got %+v", failed)
	}
	if RunAll(nil) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
