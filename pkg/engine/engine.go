// Package engine drives the retro presentation surface: a fixed-tile
// image, a six-line text panel and a beep-cued selection list, all
// rendered with Ebitengine. Each frame runs one VM tick; keyboard
// events are translated into PlayerInput calls between ticks.
package engine

import (
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/Doom2fan/TwineThing/pkg/config"
	"github.com/Doom2fan/TwineThing/pkg/logger"
	"github.com/Doom2fan/TwineThing/pkg/vm"
)

// ErrTerminated is returned when the engine is terminated.
var ErrTerminated = errors.New("engine terminated")

// TileSize is the pixel size of one window tile.
const TileSize = 8

// Engine is the ebiten game that hosts the VM. It implements both
// ebiten.Game and vm.Host; the VM's callbacks mutate display state
// that Draw renders.
type Engine struct {
	machine *vm.VM
	cfg     config.Config
	log     *slog.Logger

	images ImageLoader
	music  MusicPlayer
	beeper Beeper

	// Display state, written by VM callbacks during Update.
	bgImage    *ebiten.Image
	textLines  []string
	selections []vm.Selection
	cursor     int
	textDirty  bool
	textPanel  *ebiten.Image

	fatalMsg   string
	terminated atomic.Bool
	timeout    time.Duration
	startTime  time.Time
}

// New creates an engine. AttachVM must be called before Run.
func New(cfg config.Config, images ImageLoader, music MusicPlayer, beeper Beeper) *Engine {
	return &Engine{
		cfg:    cfg,
		log:    logger.GetLogger(),
		images: images,
		music:  music,
		beeper: beeper,
	}
}

// AttachVM connects the VM the engine drives. Separate from New
// because the VM itself needs the engine as its host.
func (e *Engine) AttachVM(machine *vm.VM) {
	e.machine = machine
}

// SetTimeout sets the execution timeout. Zero means no timeout.
func (e *Engine) SetTimeout(timeout time.Duration) {
	e.timeout = timeout
}

// FatalMessage returns the message of the VM error that terminated
// the run, or "".
func (e *Engine) FatalMessage() string {
	return e.fatalMsg
}

// Run opens the window and runs the game loop until the player quits
// (Escape), the timeout expires or the story hits a fatal error. A
// story that ends normally leaves its last screen up until then.
func (e *Engine) Run() error {
	e.startTime = time.Now()
	ebiten.SetWindowTitle(e.cfg.GameName)
	ebiten.SetWindowSize(e.cfg.WindowWidth*TileSize*2, e.cfg.WindowHeight*TileSize*2)

	if err := ebiten.RunGame(e); err != nil && !errors.Is(err, ErrTerminated) {
		return err
	}
	return nil
}

// Update implements ebiten.Game. One frame is one VM tick.
func (e *Engine) Update() error {
	if e.checkTermination() {
		e.music.Stop()
		return ErrTerminated
	}

	e.handleInput()
	e.machine.Run()

	if e.machine.State() == vm.Stopped && e.fatalMsg != "" {
		e.terminated.Store(true)
	}
	return nil
}

// handleInput translates keyboard events into VM input between ticks.
func (e *Engine) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		e.terminated.Store(true)
		return
	}

	switch e.machine.State() {
	case vm.ScreenPause:
		if confirmPressed() {
			e.machine.PlayerInput(0)
		}

	case vm.WaitingForSelection:
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && e.cursor > 0 {
			e.cursor--
			e.beeper.Beep()
			e.textDirty = true
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && e.cursor < len(e.selections)-1 {
			e.cursor++
			e.beeper.Beep()
			e.textDirty = true
		}
		if confirmPressed() {
			e.beeper.Beep()
			e.machine.PlayerInput(e.cursor)
		}
	}
}

func confirmPressed() bool {
	return inpututil.IsKeyJustPressed(ebiten.KeyEnter) ||
		inpututil.IsKeyJustPressed(ebiten.KeySpace) ||
		inpututil.IsKeyJustPressed(ebiten.KeyZ)
}

// checkTermination reports whether the run should end.
func (e *Engine) checkTermination() bool {
	if e.terminated.Load() {
		return true
	}
	if e.timeout > 0 && time.Since(e.startTime) >= e.timeout {
		e.log.Info("timeout exceeded", "timeout", e.timeout)
		e.terminated.Store(true)
		return true
	}
	return false
}

// Layout implements ebiten.Game: the logical screen is the tile grid.
func (e *Engine) Layout(outsideWidth, outsideHeight int) (int, int) {
	return e.cfg.WindowWidth * TileSize, e.cfg.WindowHeight * TileSize
}

// Draw implements ebiten.Game.
func (e *Engine) Draw(screen *ebiten.Image) {
	if e.bgImage != nil {
		screen.DrawImage(e.bgImage, &ebiten.DrawImageOptions{})
	}
	e.drawTextPanel(screen)
}

// SetText implements vm.Host.
func (e *Engine) SetText(text string) {
	e.textLines = splitLines(text)
	e.textDirty = true
}

// SetImage implements vm.Host. An empty name hides the image; a
// missing asset is logged and skipped, it does not stop the story.
func (e *Engine) SetImage(name string) {
	if name == "" {
		e.bgImage = nil
		return
	}
	img, err := e.images.Load(name)
	if err != nil {
		e.log.Error("failed to load image", "name", name, "error", err)
		return
	}
	e.bgImage = ebiten.NewImageFromImage(img)
}

// SetMusic implements vm.Host. An empty name stops the music.
func (e *Engine) SetMusic(name string, track int) {
	if name == "" {
		e.music.Stop()
		return
	}
	if err := e.music.Play(name, track); err != nil {
		e.log.Error("failed to play music", "name", name, "track", track, "error", err)
	}
}

// SetSelections implements vm.Host. An empty list hides the
// selection UI.
func (e *Engine) SetSelections(selections []vm.Selection) {
	e.selections = selections
	e.cursor = 0
	e.textDirty = true
}

// FatalError implements vm.Host. The run ends with the message
// reported to the user.
func (e *Engine) FatalError(message string) {
	e.log.Error("story error", "message", message)
	e.fatalMsg = message
	e.terminated.Store(true)
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	return append(lines, text[start:])
}
