package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Doom2fan/TwineThing/pkg/vm"
)

// consoleHost implements vm.Host on the terminal for headless runs.
type consoleHost struct {
	in         *bufio.Scanner
	out        io.Writer
	selections []vm.Selection
	fatalMsg   string
}

func newConsoleHost(in io.Reader, out io.Writer) *consoleHost {
	return &consoleHost{
		in:  bufio.NewScanner(in),
		out: out,
	}
}

// Play drives the VM from the terminal until the story stops.
func (h *consoleHost) Play(machine *vm.VM, timeout time.Duration) error {
	deadline := time.Time{}
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}

	for {
		if !deadline.IsZero() && time.Now().After(deadline) {
			fmt.Fprintln(h.out, "[timeout]")
			return nil
		}

		machine.Run()

		switch machine.State() {
		case vm.ScreenPause:
			fmt.Fprint(h.out, "[more]")
			if !h.in.Scan() {
				return nil
			}
			machine.PlayerInput(0)

		case vm.WaitingForSelection:
			choice, ok := h.readChoice()
			if !ok {
				return nil
			}
			machine.PlayerInput(choice)

		case vm.Stopped:
			if h.fatalMsg != "" {
				return fmt.Errorf("story error: %s", h.fatalMsg)
			}
			fmt.Fprintln(h.out, "[the end]")
			return nil
		}
	}
}

// readChoice prompts until the player enters a valid selection
// number.
func (h *consoleHost) readChoice() (int, bool) {
	for {
		fmt.Fprint(h.out, "> ")
		if !h.in.Scan() {
			return 0, false
		}
		input := strings.TrimSpace(h.in.Text())
		choice, err := strconv.Atoi(input)
		if err != nil || choice < 1 || choice > len(h.selections) {
			fmt.Fprintf(h.out, "enter a number between 1 and %d\n", len(h.selections))
			continue
		}
		return choice - 1, true
	}
}

// SetText implements vm.Host.
func (h *consoleHost) SetText(text string) {
	fmt.Fprintln(h.out, text)
}

// SetImage implements vm.Host.
func (h *consoleHost) SetImage(name string) {
	if name != "" {
		fmt.Fprintf(h.out, "[image: %s]\n", name)
	}
}

// SetMusic implements vm.Host.
func (h *consoleHost) SetMusic(name string, track int) {
	if name == "" {
		fmt.Fprintln(h.out, "[music stops]")
		return
	}
	fmt.Fprintf(h.out, "[music: %s #%d]\n", name, track)
}

// SetSelections implements vm.Host.
func (h *consoleHost) SetSelections(selections []vm.Selection) {
	h.selections = selections
	for i, sel := range selections {
		fmt.Fprintf(h.out, "%d) %s\n", i+1, sel.Text)
	}
}

// FatalError implements vm.Host.
func (h *consoleHost) FatalError(message string) {
	h.fatalMsg = message
}
