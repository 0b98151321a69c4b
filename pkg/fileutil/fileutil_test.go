package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFindFileCaseInsensitive(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Cave.BMP"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	path, err := FindFileCaseInsensitive(dir, "cave.bmp")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if filepath.Base(path) != "Cave.BMP" {
		t.Errorf("path = %q, want Cave.BMP", path)
	}

	if _, err := FindFileCaseInsensitive(dir, "missing.bmp"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestFindFileCaseInsensitiveFS(t *testing.T) {
	dir := t.TempDir()
	os.MkdirAll(filepath.Join(dir, "sub"), 0o755)
	os.WriteFile(filepath.Join(dir, "sub", "Theme.MID"), []byte("x"), 0o644)

	path, err := FindFileCaseInsensitiveFS(os.DirFS(dir), "sub", "theme.mid")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if path != "sub/Theme.MID" {
		t.Errorf("path = %q, want sub/Theme.MID", path)
	}
}

func TestFindFirstByExt(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "readme.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "story.TWEE"), []byte("x"), 0o644)

	path, err := FindFirstByExt(dir, ".twee", ".tw")
	if err != nil {
		t.Fatalf("find error: %v", err)
	}
	if filepath.Base(path) != "story.TWEE" {
		t.Errorf("path = %q", path)
	}

	if _, err := FindFirstByExt(dir, ".mid"); err == nil {
		t.Error("expected error when no file matches")
	}
}
