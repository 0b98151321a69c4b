// Package config loads the per-game TOML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the game directory.
const FileName = "game.toml"

// Config is the per-game configuration.
type Config struct {
	GameName string `toml:"gameName"`

	// Window geometry in 8x8 tiles.
	WindowWidth  int `toml:"windowWidth"`
	WindowHeight int `toml:"windowHeight"`

	// TextLines is the height of the text panel in lines.
	TextLines int `toml:"textLines"`

	// LineMaxLen is the wrap width in characters. Defaults to
	// WindowWidth - 2 when unset.
	LineMaxLen int `toml:"lineMaxLen"`

	EntryFile string `toml:"entryFile"` // story source; autodetected when empty

	ImagesDir string `toml:"imagesDir"`
	MusicDir  string `toml:"musicDir"`
	SoundFont string `toml:"soundFont"`

	Beeps bool `toml:"beeps"`
}

// Default returns the configuration used when no game.toml exists.
func Default() Config {
	return Config{
		GameName:     "TwineThing",
		WindowWidth:  32,
		WindowHeight: 24,
		TextLines:    6,
		ImagesDir:    "images",
		MusicDir:     "music",
		Beeps:        true,
	}
}

// Load reads game.toml from the game directory. Keys absent from the
// file keep their defaults; a missing file is not an error, a
// malformed one is.
func Load(gamePath string) (Config, error) {
	cfg := Default()

	path := filepath.Join(gamePath, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.fillDerived()
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	cfg.fillDerived()

	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// fillDerived computes defaults that depend on other keys.
func (c *Config) fillDerived() {
	if c.LineMaxLen <= 0 {
		c.LineMaxLen = c.WindowWidth - 2
	}
}

func (c *Config) validate() error {
	if c.WindowWidth < 8 || c.WindowHeight < 8 {
		return fmt.Errorf("window must be at least 8x8 tiles, got %dx%d",
			c.WindowWidth, c.WindowHeight)
	}
	if c.TextLines <= 0 {
		return fmt.Errorf("textLines must be positive, got %d", c.TextLines)
	}
	if c.LineMaxLen <= 0 {
		return fmt.Errorf("lineMaxLen must be positive, got %d", c.LineMaxLen)
	}
	return nil
}
