// Package compiler runs the Twee compilation pipeline: passage
// splitting, tokenizing and parsing, producing the immutable program
// the VM executes.
package compiler

import (
	"errors"

	"github.com/Doom2fan/TwineThing/pkg/compiler/ast"
	"github.com/Doom2fan/TwineThing/pkg/compiler/parser"
	"github.com/Doom2fan/TwineThing/pkg/compiler/preprocessor"
)

// StartPassage is the entry point every story must define.
const StartPassage = "Start"

// ErrNoStartPassage is returned when a story has no "Start" passage.
var ErrNoStartPassage = errors.New(`story has no "Start" passage`)

// Passage is a named, parsed passage. The command sequence is
// immutable after compilation.
type Passage struct {
	Name      string
	Commands  []ast.Command
	StartLine int
}

// GameData is a compiled story: the passage table keyed by name.
type GameData struct {
	Passages map[string]*Passage
}

// Get looks up a passage by name.
func (g *GameData) Get(name string) (*Passage, bool) {
	p, ok := g.Passages[name]
	return p, ok
}

// Compile splits the source into passages and parses each body. The
// source must already be BOM-stripped with "\n" line endings. Parse
// failures come back as a *CompileError carrying the passage name,
// position and rendered source context; a missing Start passage is
// ErrNoStartPassage.
func Compile(source string) (*GameData, error) {
	game := &GameData{Passages: make(map[string]*Passage)}

	for _, raw := range preprocessor.Split(source) {
		cmds, err := parser.New(raw.Name, raw.Body, raw.StartLine).ParsePassage()
		if err != nil {
			return nil, wrapParseError(err, source)
		}
		game.Passages[raw.Name] = &Passage{
			Name:      raw.Name,
			Commands:  cmds,
			StartLine: raw.StartLine,
		}
	}

	if _, ok := game.Passages[StartPassage]; !ok {
		return nil, ErrNoStartPassage
	}
	return game, nil
}

// wrapParseError attaches rendered source context to a parse error.
func wrapParseError(err error, source string) error {
	var perr *parser.Error
	if !errors.As(err, &perr) {
		return err
	}
	return &CompileError{
		Message: perr.Error(),
		Passage: perr.Passage,
		Line:    perr.Line,
		Column:  perr.Column,
		Context: GenerateErrorContext(source, perr.Line, perr.Column),
		Cause:   perr,
	}
}
