package engine

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/Doom2fan/TwineThing/pkg/fileutil"
)

// findMusicFile resolves a music file name inside the music
// directory, ignoring case.
func findMusicFile(dir, filename string) (string, error) {
	return fileutil.FindFileCaseInsensitive(dir, filename)
}

// SquareBeeper plays a short square-wave blip for selection cues,
// synthesised once at startup so no sound asset is needed.
type SquareBeeper struct {
	audioCtx *audio.Context
	samples  []byte
}

// NewSquareBeeper pre-renders the beep waveform.
func NewSquareBeeper(audioCtx *audio.Context) *SquareBeeper {
	const (
		freq     = 880.0
		duration = 0.06 // seconds
		volume   = 0.25
	)

	frames := int(duration * SampleRate)
	samples := make([]byte, frames*4)
	period := float64(SampleRate) / freq
	for i := 0; i < frames; i++ {
		v := int16(volume * 32767)
		if math.Mod(float64(i), period) >= period/2 {
			v = -v
		}
		samples[i*4] = byte(v)
		samples[i*4+1] = byte(v >> 8)
		samples[i*4+2] = byte(v)
		samples[i*4+3] = byte(v >> 8)
	}

	return &SquareBeeper{
		audioCtx: audioCtx,
		samples:  samples,
	}
}

// Beep implements Beeper.
func (b *SquareBeeper) Beep() {
	player := b.audioCtx.NewPlayerFromBytes(b.samples)
	player.Play()
}
