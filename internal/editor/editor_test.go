package editor

import (
	"os"
	"path/filepath"
	"testing"
)

func TestPreferredEditor(t *testing.T) {
	t.Setenv("VISUAL", "code -w")
	t.Setenv("EDITOR", "vi")
	if got, err := PreferredEditor(); err != nil || got != "code -w" {
		t.Fatalf("PreferredEditor=%q err=%v", got, err)
	}
	t.Setenv("VISUAL", "")
	if got, _ := PreferredEditor(); got != "vi" {
		t.Fatalf("PreferredEditor=%q want vi", got)
	}
}

func TestEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taste.md")
	if err := os.WriteFile(path, []byte("# Taste\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "sed -i s/Taste/Flavour/")
	out, changed, err := Edit(path)
	if err != nil {
		t.Fatalf("Edit: %v", err)
	}
	if !changed || string(out) != "# Flavour\n" {
		t.Fatalf("changed=%v out=%q", changed, out)
	}

	t.Setenv("EDITOR", "true")
	if _, changed, err := Edit(path); err != nil || changed {
		t.Fatalf("no-op edit: changed=%v err=%v", changed, err)
	}
}

func TestEditMissingFile(t *testing.T) {
	t.Setenv("EDITOR", "true")
	if _, _, err := Edit(filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
