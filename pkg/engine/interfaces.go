package engine

import "image"

// ImageLoader resolves and decodes a named story image.
// Implementations are injected so tests can run without assets.
type ImageLoader interface {
	// Load decodes the named image (no extension, no directory).
	Load(name string) (image.Image, error)
}

// MusicPlayer abstracts music playback.
type MusicPlayer interface {
	// Play starts the named track, replacing current playback.
	Play(name string, track int) error

	// Stop halts playback.
	Stop()
}

// Beeper plays the selection cue.
type Beeper interface {
	Beep()
}

// NopMusicPlayer ignores all music commands. It stands in when no
// soundfont is configured or the soundfont fails to load.
type NopMusicPlayer struct{}

func (NopMusicPlayer) Play(name string, track int) error { return nil }
func (NopMusicPlayer) Stop()                             {}

// NopBeeper is silent.
type NopBeeper struct{}

func (NopBeeper) Beep() {}
