package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiscoverInputs(t *testing.T) {
	dir := t.TempDir()

	for _, name := range []string{"a.txt", "b.txt", "notes.md", "data.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	// Files in subdirectories must not be picked up.
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatalf("failed to create subdirectory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(sub, "c.txt"), []byte("x"), 0644); err != nil {
		t.Fatalf("failed to write nested file: %v", err)
	}

	files, err := DiscoverInputs(dir, ".txt")
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}

	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(files), files)
	}
	seen := make(map[string]bool)
	for _, f := range files {
		seen[filepath.Base(f)] = true
	}
	if !seen["a.txt"] || !seen["b.txt"] {
		t.Fatalf("unexpected file set: %v", files)
	}
}

func TestDiscoverInputsMissingDirectory(t *testing.T) {
	if _, err := DiscoverInputs("/nonexistent/dir", ".txt"); err == nil {
		t.Fatalf("expected an error for a missing directory")
	}
}

func TestDiscoverInputsEmptyResult(t *testing.T) {
	files, err := DiscoverInputs(t.TempDir(), ".txt")
	if err != nil {
		t.Fatalf("discover failed: %v", err)
	}
	if len(files) != 0 {
		t.Fatalf("expected no files, got %v", files)
	}
}
