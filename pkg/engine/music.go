package engine

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/sinshu/go-meltysynth/meltysynth"
)

// SampleRate is the audio sample rate used for synthesis.
const SampleRate = 44100

// MIDIMusicPlayer renders MIDI files through a soundfont synthesizer
// into an Ebitengine audio player. Track numbers take part in file
// resolution: NAME_TRACK.mid is tried before NAME.mid.
type MIDIMusicPlayer struct {
	synth    *meltysynth.Synthesizer
	audioCtx *audio.Context
	musicDir string

	player *audio.Player
	stream *musicStream

	mu sync.Mutex
}

// NewMIDIMusicPlayer loads the soundfont and prepares the
// synthesizer. musicDir is where story music files live.
func NewMIDIMusicPlayer(soundFontPath, musicDir string, audioCtx *audio.Context) (*MIDIMusicPlayer, error) {
	sf2Data, err := os.ReadFile(soundFontPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read soundfont %s: %w", soundFontPath, err)
	}

	soundFont, err := meltysynth.NewSoundFont(bytes.NewReader(sf2Data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse soundfont %s: %w", soundFontPath, err)
	}

	settings := meltysynth.NewSynthesizerSettings(SampleRate)
	synth, err := meltysynth.NewSynthesizer(soundFont, settings)
	if err != nil {
		return nil, fmt.Errorf("failed to create synthesizer: %w", err)
	}

	return &MIDIMusicPlayer{
		synth:    synth,
		audioCtx: audioCtx,
		musicDir: musicDir,
	}, nil
}

// Play implements MusicPlayer. Current playback stops first.
func (mp *MIDIMusicPlayer) Play(name string, track int) error {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopInternal()

	path, err := mp.resolve(name, track)
	if err != nil {
		return err
	}

	midiData, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read MIDI file %s: %w", path, err)
	}
	midi, err := meltysynth.NewMidiFile(bytes.NewReader(midiData))
	if err != nil {
		return fmt.Errorf("invalid MIDI file %s: %w", path, err)
	}

	sequencer := meltysynth.NewMidiFileSequencer(mp.synth)
	sequencer.Play(midi, true) // music loops until replaced or stopped

	mp.stream = &musicStream{sequencer: sequencer}
	player, err := mp.audioCtx.NewPlayer(mp.stream)
	if err != nil {
		return fmt.Errorf("failed to create audio player: %w", err)
	}
	mp.player = player
	mp.player.Play()
	return nil
}

// Stop implements MusicPlayer.
func (mp *MIDIMusicPlayer) Stop() {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.stopInternal()
}

func (mp *MIDIMusicPlayer) stopInternal() {
	if mp.stream != nil {
		mp.stream.Stop()
		mp.stream = nil
	}
	if mp.player != nil {
		mp.player.Close()
		mp.player = nil
	}
}

// resolve finds the MIDI file for a name/track pair,
// case-insensitively.
func (mp *MIDIMusicPlayer) resolve(name string, track int) (string, error) {
	candidates := []string{
		fmt.Sprintf("%s_%d.mid", name, track),
		name + ".mid",
	}
	for _, candidate := range candidates {
		if path, err := findMusicFile(mp.musicDir, candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("music %q (track %d) not found in %s", name, track, mp.musicDir)
}

// musicStream implements io.Reader for the audio player, rendering
// int16 interleaved stereo from the sequencer. After Stop it returns
// silence.
type musicStream struct {
	sequencer *meltysynth.MidiFileSequencer
	stopped   bool
	mu        sync.Mutex
}

// Read implements io.Reader.
func (s *musicStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.sequencer == nil {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	// 16-bit stereo: 4 bytes per sample frame.
	samples := len(p) / 4
	if samples == 0 {
		return 0, nil
	}

	left := make([]float32, samples)
	right := make([]float32, samples)
	s.sequencer.Render(left, right)

	for i := 0; i < samples; i++ {
		l := int16(clamp(left[i], -1, 1) * 32767)
		r := int16(clamp(right[i], -1, 1) * 32767)
		binary.LittleEndian.PutUint16(p[i*4:], uint16(l))
		binary.LittleEndian.PutUint16(p[i*4+2:], uint16(r))
	}
	return len(p), nil
}

// Stop makes subsequent reads return silence.
func (s *musicStream) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
}

func clamp(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
