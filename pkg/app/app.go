// Package app wires the pieces together: CLI parsing, logging,
// configuration, story loading, compilation and the game loop.
package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/Doom2fan/TwineThing/pkg/cli"
	"github.com/Doom2fan/TwineThing/pkg/compiler"
	"github.com/Doom2fan/TwineThing/pkg/config"
	"github.com/Doom2fan/TwineThing/pkg/engine"
	"github.com/Doom2fan/TwineThing/pkg/logger"
	"github.com/Doom2fan/TwineThing/pkg/script"
	"github.com/Doom2fan/TwineThing/pkg/vm"
)

// Application is the program's top-level runner.
type Application struct {
	config *cli.Config
	game   config.Config
	log    *slog.Logger
	story  *compiler.GameData
}

// New creates an Application.
func New() *Application {
	return &Application{}
}

// Run executes the application with the given command line arguments.
func (app *Application) Run(args []string) error {
	// 1. Command line
	parsed, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = parsed

	if app.config.ShowHelp {
		cli.PrintHelp()
		return nil
	}
	if app.config.GamePath == "" {
		cli.PrintHelp()
		return fmt.Errorf("no game path given")
	}

	// 2. Logger
	if err := logger.InitLogger(app.config.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.log.Info("application started", "gamePath", app.config.GamePath)

	// 3. Game configuration
	app.game, err = config.Load(app.config.GamePath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.log.Info("config loaded", "game", app.game.GameName,
		"window", fmt.Sprintf("%dx%d", app.game.WindowWidth, app.game.WindowHeight))

	// 4. Story source
	entryFile := app.config.EntryFile
	if entryFile == "" {
		entryFile = app.game.EntryFile
	}
	source, err := script.NewLoader(app.config.GamePath).LoadStory(entryFile)
	if err != nil {
		return fmt.Errorf("failed to load story: %w", err)
	}
	app.log.Info("story loaded", "file", source.FileName, "size", source.Size)

	// 5. Compile
	app.story, err = compiler.Compile(source.Content)
	if err != nil {
		return fmt.Errorf("failed to compile %s: %w", source.FileName, err)
	}
	app.log.Info("story compiled", "passages", len(app.story.Passages))

	// 6. Run
	if app.config.Headless {
		return app.runHeadless()
	}
	return app.runEngine()
}

// runEngine runs the story in the Ebitengine window.
func (app *Application) runEngine() error {
	audioCtx := audio.NewContext(engine.SampleRate)

	var music engine.MusicPlayer = engine.NopMusicPlayer{}
	if app.game.SoundFont != "" {
		player, err := engine.NewMIDIMusicPlayer(
			app.resolvePath(app.game.SoundFont),
			app.resolvePath(app.game.MusicDir),
			audioCtx,
		)
		if err != nil {
			// Music is not worth failing the whole game over.
			app.log.Error("music disabled", "error", err)
		} else {
			music = player
		}
	}

	var beeper engine.Beeper = engine.NopBeeper{}
	if app.game.Beeps {
		beeper = engine.NewSquareBeeper(audioCtx)
	}

	images := engine.DirImageLoader{Dir: app.resolvePath(app.game.ImagesDir)}

	host := engine.New(app.game, images, music, beeper)
	host.SetTimeout(app.config.Timeout)

	machine := vm.New(app.story, host,
		vm.WithLineWidth(app.game.LineMaxLen),
		vm.WithLogger(app.log))
	host.AttachVM(machine)

	if err := host.Run(); err != nil {
		return fmt.Errorf("engine failed: %w", err)
	}
	if msg := host.FatalMessage(); msg != "" {
		return fmt.Errorf("story error: %s", msg)
	}
	app.log.Info("application terminated normally")
	return nil
}

// runHeadless plays the story on the terminal, for development and
// CI.
func (app *Application) runHeadless() error {
	host := newConsoleHost(os.Stdin, os.Stdout)
	machine := vm.New(app.story, host,
		vm.WithLineWidth(app.game.LineMaxLen),
		vm.WithLogger(app.log))

	return host.Play(machine, app.config.Timeout)
}

// resolvePath resolves a config-relative path against the game
// directory.
func (app *Application) resolvePath(path string) string {
	if path == "" {
		return app.config.GamePath
	}
	return filepath.Join(app.config.GamePath, path)
}
