// Package script loads Twee story sources from a game directory.
package script

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/Doom2fan/TwineThing/pkg/fileutil"
)

// Script is a loaded story source.
type Script struct {
	FileName string // base name of the source file
	Content  string // BOM-stripped, \n-normalised content
	Size     int64  // size on disk
}

// Loader reads story sources from a game directory.
type Loader struct {
	gamePath string
}

// NewLoader creates a Loader for the given game directory.
func NewLoader(gamePath string) *Loader {
	return &Loader{
		gamePath: gamePath,
	}
}

// LoadStory finds and loads the story source. An explicit entry file
// wins; otherwise the first .twee or .tw file in the game directory
// is used.
func (l *Loader) LoadStory(entryFile string) (*Script, error) {
	var path string
	var err error

	if entryFile != "" {
		path, err = fileutil.FindFileCaseInsensitive(l.gamePath, entryFile)
	} else {
		path, err = fileutil.FindFirstByExt(l.gamePath, ".twee", ".tw")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find story source: %w", err)
	}

	return l.loadScript(path)
}

// loadScript reads a single story file.
func (l *Loader) loadScript(path string) (*Script, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	content, err := Normalize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return &Script{
		FileName: filepath.Base(path),
		Content:  content,
		Size:     info.Size(),
	}, nil
}

// Normalize strips a UTF-8 byte order mark (Twine exports commonly
// carry one) and normalises line endings to \n.
func Normalize(data []byte) (string, error) {
	decoder := unicode.UTF8BOM.NewDecoder()
	reader := transform.NewReader(strings.NewReader(string(data)), decoder)

	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to decode UTF-8: %w", err)
	}

	content := string(decoded)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	return content, nil
}
