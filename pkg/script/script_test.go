package script

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNormalizeStripsBOM(t *testing.T) {
	content, err := Normalize([]byte("\xef\xbb\xbf::Start\ntext"))
	if err != nil {
		t.Fatalf("normalize error: %v", err)
	}
	if content != "::Start\ntext" {
		t.Errorf("content = %q, BOM not stripped", content)
	}
}

func TestNormalizeLineEndings(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"a\r\nb", "a\nb"},
		{"a\rb", "a\nb"},
		{"a\nb", "a\nb"},
		{"a\r\n\r\nb", "a\n\nb"},
	}

	for _, tt := range tests {
		content, err := Normalize([]byte(tt.input))
		if err != nil {
			t.Fatalf("normalize(%q) error: %v", tt.input, err)
		}
		if content != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.input, content, tt.want)
		}
	}
}

func TestLoadStoryFindsTweeFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "Story.TWEE"), []byte("::Start\nhi"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, err := NewLoader(dir).LoadStory("")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.FileName != "Story.TWEE" {
		t.Errorf("file name = %q", loaded.FileName)
	}
	if loaded.Content != "::Start\nhi" {
		t.Errorf("content = %q", loaded.Content)
	}
}

func TestLoadStoryExplicitEntry(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.twee"), []byte("a"), 0o644)
	os.WriteFile(filepath.Join(dir, "b.twee"), []byte("b"), 0o644)

	loaded, err := NewLoader(dir).LoadStory("B.twee")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	if loaded.Content != "b" {
		t.Errorf("content = %q, want b", loaded.Content)
	}
}

func TestLoadStoryMissing(t *testing.T) {
	if _, err := NewLoader(t.TempDir()).LoadStory(""); err == nil {
		t.Fatal("expected error for empty directory")
	}
}
