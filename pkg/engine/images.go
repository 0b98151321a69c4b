package engine

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"

	"github.com/Doom2fan/TwineThing/pkg/fileutil"
)

// DirImageLoader loads story images from a directory. Names are
// resolved case-insensitively with .bmp preferred over .png.
type DirImageLoader struct {
	Dir string
}

// Load implements ImageLoader.
func (l DirImageLoader) Load(name string) (image.Image, error) {
	var path string
	var err error
	for _, ext := range []string{".bmp", ".png"} {
		path, err = fileutil.FindFileCaseInsensitive(l.Dir, name+ext)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("image %q not found in %s", name, l.Dir)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".png") {
		img, err := png.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("failed to decode PNG %s: %w", path, err)
		}
		return img, nil
	}

	img, err := bmp.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode BMP %s: %w", path, err)
	}
	return img, nil
}
