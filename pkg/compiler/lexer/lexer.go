// Package lexer provides lexical analysis for Twee passage bodies.
//
// The lexer runs one of two sub-grammars depending on the CommandMode
// flag. In narrative mode everything is story text apart from the
// markers << >> [ ] | and a line-leading *. In command mode the input
// is tokenized like a conventional expression language: identifiers,
// numbers, strings and operators, with whitespace skipped. The flag is
// owned by the caller; the parser flips it before each read.
package lexer

import (
	"github.com/Doom2fan/TwineThing/pkg/compiler/token"
)

// Lexer tokenizes a single passage body.
type Lexer struct {
	input        string
	position     int  // current position in input
	readPosition int  // current reading position (after current char)
	ch           byte // current char
	line         int  // current line number
	column       int  // current column number

	// CommandMode selects the command-expression sub-grammar.
	// The parser sets it before each read.
	CommandMode bool
}

// New creates a new Lexer over a passage body. startLine is the
// 1-based file line of the body's first line, so tokens carry
// file-level positions.
func New(input string, startLine int) *Lexer {
	l := &Lexer{
		input:  input,
		line:   startLine,
		column: 0,
	}
	l.readChar()
	return l
}

// NextToken returns the next token under the current sub-grammar.
func (l *Lexer) NextToken() token.Token {
	if l.CommandMode {
		return l.nextCommandToken()
	}
	return l.nextNarrativeToken()
}

// Peek returns the next count tokens without consuming them. The
// lexer position, line and column are restored afterwards; the slice
// is padded with EOF tokens past the end of input.
func (l *Lexer) Peek(count int) []token.Token {
	saved := l.snapshot()
	toks := make([]token.Token, 0, count)
	for i := 0; i < count; i++ {
		toks = append(toks, l.NextToken())
	}
	l.restore(saved)
	return toks
}

// ConsumeNewline eats a single newline (with an optional preceding
// carriage return) if one is next. Commands and selections swallow
// the newline that follows them so it does not render as blank text.
func (l *Lexer) ConsumeNewline() {
	if l.ch == '\r' && l.peekChar() == '\n' {
		l.readChar()
	}
	if l.ch == '\n' {
		l.readChar()
	}
}

// lexerState is a restorable cursor for Peek.
type lexerState struct {
	position     int
	readPosition int
	ch           byte
	line         int
	column       int
	commandMode  bool
}

func (l *Lexer) snapshot() lexerState {
	return lexerState{
		position:     l.position,
		readPosition: l.readPosition,
		ch:           l.ch,
		line:         l.line,
		column:       l.column,
		commandMode:  l.CommandMode,
	}
}

func (l *Lexer) restore(s lexerState) {
	l.position = s.position
	l.readPosition = s.readPosition
	l.ch = s.ch
	l.line = s.line
	l.column = s.column
	l.CommandMode = s.commandMode
}

// nextNarrativeToken scans the story-text sub-grammar.
func (l *Lexer) nextNarrativeToken() token.Token {
	tok := token.Token{Line: l.line, Column: l.column}

	switch {
	case l.ch == 0:
		tok.Type = token.EOF
		return tok
	case l.ch == '<' && l.peekChar() == '<':
		l.readChar()
		l.readChar()
		tok.Type = token.COMMAND_START
		tok.Literal = "<<"
		return tok
	case l.ch == '>' && l.peekChar() == '>':
		l.readChar()
		l.readChar()
		tok.Type = token.COMMAND_END
		tok.Literal = ">>"
		return tok
	case l.ch == '[':
		l.readChar()
		tok.Type = token.SPECIAL_OPEN
		tok.Literal = "["
		return tok
	case l.ch == ']':
		l.readChar()
		tok.Type = token.SPECIAL_CLOSE
		tok.Literal = "]"
		return tok
	case l.ch == '|':
		l.readChar()
		tok.Type = token.SPECIAL_SEP
		tok.Literal = "|"
		return tok
	case l.ch == '*' && l.column == 1:
		l.readChar()
		tok.Type = token.ASTERISK
		tok.Literal = "*"
		return tok
	}

	// Everything else is story text, up to the next marker. A '*'
	// that does not begin a line is plain text and must not stop the
	// scan, so it is only a boundary at column 1.
	start := l.position
	for l.ch != 0 {
		if l.ch == '[' || l.ch == ']' || l.ch == '|' {
			break
		}
		if l.ch == '<' && l.peekChar() == '<' {
			break
		}
		if l.ch == '>' && l.peekChar() == '>' {
			break
		}
		if l.ch == '*' && l.column == 1 && l.position != start {
			break
		}
		l.readChar()
	}
	tok.Type = token.TEXT
	tok.Literal = l.input[start:l.position]
	return tok
}

// nextCommandToken scans the expression sub-grammar.
func (l *Lexer) nextCommandToken() token.Token {
	l.skipWhitespace()

	tok := token.Token{Line: l.line, Column: l.column}

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		return tok
	case '<':
		switch l.peekChar() {
		case '<':
			return l.twoCharToken(token.COMMAND_START)
		case '=':
			return l.twoCharToken(token.LTE)
		case '>':
			return l.twoCharToken(token.NOT_EQ2)
		}
		return l.oneCharToken(token.LT)
	case '>':
		switch l.peekChar() {
		case '>':
			return l.twoCharToken(token.COMMAND_END)
		case '=':
			return l.twoCharToken(token.GTE)
		}
		return l.oneCharToken(token.GT)
	case '=':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.EQ)
		}
		return l.oneCharToken(token.ASSIGN)
	case '!':
		if l.peekChar() == '=' {
			return l.twoCharToken(token.NOT_EQ)
		}
		return l.oneCharToken(token.UNKNOWN)
	case '+':
		return l.oneCharToken(token.PLUS)
	case '-':
		return l.oneCharToken(token.MINUS)
	case '*':
		return l.oneCharToken(token.MULT)
	case '/':
		return l.oneCharToken(token.DIV)
	case '%':
		return l.oneCharToken(token.MOD)
	case '(':
		return l.oneCharToken(token.LPAREN)
	case ')':
		return l.oneCharToken(token.RPAREN)
	case ',':
		return l.oneCharToken(token.COMMA)
	case '"':
		return l.readString(tok)
	}

	if isLetter(l.ch) {
		tok.Literal = l.readIdentifier()
		tok.Type = token.LookupIdent(tok.Literal)
		return tok
	}
	if isDigit(l.ch) {
		tok.Type = token.NUMBER
		tok.Literal = l.readNumber()
		return tok
	}
	return l.oneCharToken(token.UNKNOWN)
}

// readString scans a double-quoted string. A backslash passes the
// following character through uninterpreted; both bytes stay in the
// literal, and the surrounding quotes are kept for the parser to
// strip. An unterminated string yields an ILLEGAL token.
func (l *Lexer) readString(tok token.Token) token.Token {
	start := l.position
	l.readChar() // opening quote
	for l.ch != '"' {
		if l.ch == 0 {
			tok.Type = token.ILLEGAL
			tok.Literal = l.input[start:l.position]
			return tok
		}
		if l.ch == '\\' {
			l.readChar()
			if l.ch == 0 {
				continue
			}
		}
		l.readChar()
	}
	l.readChar() // closing quote
	tok.Type = token.STRING
	tok.Literal = l.input[start:l.position]
	return tok
}

// readIdentifier reads [A-Za-z_][A-Za-z0-9_]*.
func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readNumber reads [0-9]+.
func (l *Lexer) readNumber() string {
	start := l.position
	for isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) oneCharToken(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Literal: string(l.ch), Line: l.line, Column: l.column}
	l.readChar()
	return tok
}

func (l *Lexer) twoCharToken(t token.TokenType) token.Token {
	tok := token.Token{Type: t, Line: l.line, Column: l.column}
	first := l.ch
	l.readChar()
	tok.Literal = string(first) + string(l.ch)
	l.readChar()
	return tok
}

// skipWhitespace skips whitespace characters (command mode only).
func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
	l.column++

	if l.ch == '\n' {
		l.line++
		l.column = 0
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
