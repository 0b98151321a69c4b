// Package vm provides the tree-walking virtual machine that executes
// a compiled Twee story. The VM is tick-driven: the host calls Run
// once per event-loop iteration and the VM executes commands until a
// suspension point (a screen pause, a pending selection list, the end
// of the story, or a fatal error). Player input is delivered between
// ticks through PlayerInput.
package vm

import (
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/Doom2fan/TwineThing/pkg/compiler"
	"github.com/Doom2fan/TwineThing/pkg/compiler/ast"
	"github.com/Doom2fan/TwineThing/pkg/logger"
)

// MaxCallDepth is the maximum passage call stack depth.
const MaxCallDepth = 10

// TextLines is the number of text lines shown per page.
const TextLines = 6

// DefaultLineWidth is the wrap width used when the host does not
// configure one (a 32-tile window minus a one-tile border each side).
const DefaultLineWidth = 30

// State is the VM execution state.
type State int

const (
	// Running executes commands on each Run tick.
	Running State = iota
	// ScreenPause waits for a keypress before showing the next text
	// page or resuming execution.
	ScreenPause
	// WaitingForSelection waits for the player to pick a selection.
	WaitingForSelection
	// Stopped is terminal: the story finished or failed.
	Stopped
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Running:
		return "Running"
	case ScreenPause:
		return "ScreenPause"
	case WaitingForSelection:
		return "WaitingForSelection"
	case Stopped:
		return "Stopped"
	}
	return "Unknown"
}

// Selection is one entry of the pending selection list.
type Selection struct {
	Text   string
	Target string
}

// Host is the callback surface the VM drives. Implementations must
// return promptly; all side effects are observed in call order.
// FatalError, when invoked, is always the last side effect of a Run
// call.
type Host interface {
	SetText(text string)
	SetImage(name string)
	SetMusic(name string, track int)
	SetSelections(selections []Selection)
	FatalError(message string)
}

// stackFrame is one passage call frame.
type stackFrame struct {
	passage  *compiler.Passage
	returnPC int
}

// VM executes a compiled story against a variable store, a passage
// call stack, a text buffer and a pending selection list.
type VM struct {
	game    *compiler.GameData
	passage *compiler.Passage
	pc      int

	vars       map[string]Value
	callStack  []stackFrame
	textBuf    strings.Builder
	pending    []string // wrapped lines of the pages still to show
	selections []Selection

	state     State
	host      Host
	builtins  map[string]BuiltinFunc
	random    *rand.Rand
	lineWidth int
	log       *slog.Logger
}

// Option is a functional option for configuring the VM.
type Option func(*VM)

// WithLineWidth sets the wrap width for the text panel,
// conventionally the window width in tiles minus two.
func WithLineWidth(width int) Option {
	return func(vm *VM) {
		vm.lineWidth = width
	}
}

// WithLogger sets a custom logger.
func WithLogger(log *slog.Logger) Option {
	return func(vm *VM) {
		vm.log = log
	}
}

// WithRandom sets the random source used by builtins; tests pass a
// seeded source.
func WithRandom(r *rand.Rand) Option {
	return func(vm *VM) {
		vm.random = r
	}
}

// New creates a VM positioned at the first command of the Start
// passage. The game data must come from compiler.Compile, which
// guarantees the Start passage exists.
func New(game *compiler.GameData, host Host, opts ...Option) *VM {
	start := game.Passages[compiler.StartPassage]

	vm := &VM{
		game:      game,
		passage:   start,
		pc:        0,
		vars:      make(map[string]Value),
		callStack: make([]stackFrame, 0, MaxCallDepth),
		state:     Running,
		host:      host,
		builtins:  make(map[string]BuiltinFunc),
		random:    rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), uint64(time.Now().UnixNano()))),
		lineWidth: DefaultLineWidth,
		log:       logger.GetLogger(),
	}

	for _, opt := range opts {
		opt(vm)
	}

	vm.registerDefaultBuiltins()
	return vm
}

// State returns the current execution state.
func (vm *VM) State() State {
	return vm.state
}

// Run advances the VM until its next suspension point. It is a no-op
// unless the state is Running.
func (vm *VM) Run() {
	for vm.state == Running {
		if vm.pc >= len(vm.passage.Commands) {
			vm.finishPassage()
			continue
		}

		cmd := vm.passage.Commands[vm.pc]
		vm.log.Debug("execute", "passage", vm.passage.Name, "pc", vm.pc, "cmd", cmd.String())
		if err := vm.execute(cmd); err != nil {
			vm.fatal(err)
			return
		}
	}
}

// PlayerInput delivers a confirm/dismiss event. In ScreenPause any
// input advances the paging; in WaitingForSelection the index picks a
// selection. Input is ignored in Running and Stopped.
func (vm *VM) PlayerInput(selection int) {
	switch vm.state {
	case ScreenPause:
		if len(vm.pending) > 0 {
			vm.showPage()
		} else {
			vm.state = Running
		}

	case WaitingForSelection:
		if selection < 0 || selection >= len(vm.selections) {
			return
		}
		target := vm.selections[selection].Target
		// Target existence was checked when the selection was added.
		vm.passage = vm.game.Passages[target]
		vm.pc = 0
		vm.selections = nil
		vm.host.SetSelections(nil)
		vm.state = Running
	}
}

// finishPassage handles running off the end of a command list. Leftover
// text is flushed first; when it fits on one page and selections are
// pending, the selection list is sent right after that page with no
// keypress in between, otherwise the player gets to read before
// anything else happens.
func (vm *VM) finishPassage() {
	if vm.textBuf.Len() > 0 {
		vm.flushText()
		if len(vm.pending) > 0 || len(vm.selections) == 0 {
			return
		}
		vm.state = Running
	}
	if len(vm.selections) > 0 {
		vm.host.SetSelections(vm.selections)
		vm.state = WaitingForSelection
		return
	}
	vm.state = Stopped
}

// execute runs a single command. It owns the instruction pointer: the
// common case advances by one, control flow overrides it.
func (vm *VM) execute(cmd ast.Command) error {
	switch c := cmd.(type) {
	case *ast.PrintText:
		vm.textBuf.WriteString(c.Text)
		vm.pc++

	case *ast.Pause:
		vm.pc++
		if vm.textBuf.Len() > 0 {
			vm.flushText()
		}

	case *ast.JumpToPassage:
		target, ok := vm.game.Get(c.Target)
		if !ok {
			return vm.errorf("Unknown jump target %q.", c.Target)
		}
		vm.passage = target
		vm.pc = 0

	case *ast.CallPassage:
		target, ok := vm.game.Get(c.Target)
		if !ok {
			return vm.errorf("Unknown call target %q.", c.Target)
		}
		if len(vm.callStack) >= MaxCallDepth {
			return vm.errorf("Call stack overflow: depth exceeds maximum of %d.", MaxCallDepth)
		}
		vm.callStack = append(vm.callStack, stackFrame{passage: vm.passage, returnPC: vm.pc + 1})
		vm.passage = target
		vm.pc = 0

	case *ast.ReturnPassage:
		if len(vm.callStack) == 0 {
			return vm.errorf("Return with an empty call stack.")
		}
		frame := vm.callStack[len(vm.callStack)-1]
		vm.callStack = vm.callStack[:len(vm.callStack)-1]
		vm.passage = frame.passage
		vm.pc = frame.returnPC

	case *ast.SetMusic:
		track, err := vm.eval(c.Track)
		if err != nil {
			return err
		}
		vm.host.SetMusic(c.Name, int(track.AsInt()))
		vm.pc++

	case *ast.SetImage:
		vm.host.SetImage(c.Name)
		vm.pc++

	case *ast.AddSelection:
		if _, ok := vm.game.Get(c.Target); !ok {
			return vm.errorf("Unknown selection target %q.", c.Target)
		}
		vm.selections = append(vm.selections, Selection{Text: c.Text, Target: c.Target})
		vm.pc++

	case *ast.If:
		cond, err := vm.eval(c.Condition)
		if err != nil {
			return err
		}
		if cond.AsBool() {
			vm.pc++
		} else {
			vm.pc += c.SkipCount
		}

	case *ast.SetVariable:
		value, err := vm.eval(c.Value)
		if err != nil {
			return err
		}
		vm.vars[c.Name] = value
		vm.pc++

	case *ast.PrintResult:
		value, err := vm.eval(c.Expr)
		if err != nil {
			return err
		}
		vm.textBuf.WriteString(value.AsString())
		vm.pc++
	}
	return nil
}

// flushText wraps the text buffer, shows the first page and pauses.
// A trailing newline in the buffer (narrative text usually ends with
// one) would render as a blank line, so it is dropped.
func (vm *VM) flushText() {
	text := strings.TrimRight(vm.textBuf.String(), "\n")
	vm.pending = WrapText(text, vm.lineWidth)
	vm.textBuf.Reset()
	vm.showPage()
	vm.state = ScreenPause
}

// showPage emits up to TextLines pending lines. When more remain, the
// window slides by TextLines-1 so the last line of this page is the
// first line of the next.
func (vm *VM) showPage() {
	if len(vm.pending) <= TextLines {
		vm.host.SetText(strings.Join(vm.pending, "\n"))
		vm.pending = nil
		return
	}
	vm.host.SetText(strings.Join(vm.pending[:TextLines], "\n"))
	vm.pending = vm.pending[TextLines-1:]
}

// fatal reports a runtime error through the host and stops the VM.
// The callback is the last side effect of the Run call that failed.
func (vm *VM) fatal(err error) {
	vm.log.Error("fatal VM error", "error", err, "passage", vm.passage.Name, "pc", vm.pc)
	vm.textBuf.Reset()
	vm.pending = nil
	vm.selections = nil
	vm.state = Stopped
	vm.host.FatalError(err.Error())
}
