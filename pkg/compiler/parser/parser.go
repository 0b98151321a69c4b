// Package parser lowers Twee passage bodies into command sequences.
//
// The parser is recursive descent. It owns the lexer's CommandMode
// flag: narrative constructs are read in narrative mode, expressions
// and command operands in command mode, and the flag is set explicitly
// before each sub-parse so nested calls cannot leave the lexer in the
// wrong sub-grammar.
package parser

import (
	"strconv"
	"strings"

	"github.com/Doom2fan/TwineThing/pkg/compiler/ast"
	"github.com/Doom2fan/TwineThing/pkg/compiler/lexer"
	"github.com/Doom2fan/TwineThing/pkg/compiler/token"
)

// Parser parses one passage body.
type Parser struct {
	l       *lexer.Lexer
	passage string
}

// New creates a parser for the named passage. startLine is the file
// line of the first body line.
func New(name, body string, startLine int) *Parser {
	return &Parser{
		l:       lexer.New(body, startLine),
		passage: name,
	}
}

// ParsePassage parses the whole passage body into a command sequence.
func (p *Parser) ParsePassage() ([]ast.Command, error) {
	cmds, _, err := p.parseCommands(false)
	return cmds, err
}

// binaryOpEntry pairs a token with the operator it constructs.
type binaryOpEntry struct {
	tok token.TokenType
	op  ast.BinaryOp
}

// binaryLevels lists the infix operators from lowest to highest
// precedence. All levels are left-associative.
var binaryLevels = [][]binaryOpEntry{
	{{token.OR, ast.Or}, {token.AND, ast.And}},
	{{token.EQ, ast.Eq}, {token.IS, ast.Eq}, {token.NOT_EQ, ast.NotEq}, {token.NOT_EQ2, ast.NotEq}},
	{{token.LT, ast.Lt}, {token.GT, ast.Gt}, {token.LTE, ast.Le}, {token.GTE, ast.Ge}},
	{{token.PLUS, ast.Add}, {token.MINUS, ast.Sub}},
	{{token.MULT, ast.Mul}, {token.DIV, ast.Div}, {token.MOD, ast.Rem}},
}

// parseCommands is the narrative-mode dispatch loop. With insideIf it
// stops at <<endif>> and reports whether one was found; at top level
// it stops at end of input.
func (p *Parser) parseCommands(insideIf bool) ([]ast.Command, bool, error) {
	var cmds []ast.Command

	for {
		p.l.CommandMode = false
		tok := p.l.NextToken()

		switch tok.Type {
		case token.EOF:
			if insideIf {
				return nil, false, p.unterminatedIf(tok)
			}
			return cmds, false, nil

		case token.TEXT:
			cmds = append(cmds, &ast.PrintText{Text: tok.Literal})

		case token.COMMAND_START:
			sub, endif, err := p.parseCommand()
			if err != nil {
				return nil, false, err
			}
			if endif {
				if !insideIf {
					return nil, false, p.unexpected(tok, token.TEXT)
				}
				return cmds, true, nil
			}
			cmds = append(cmds, sub...)

		case token.SPECIAL_OPEN:
			if p.specialAhead() {
				cmd, err := p.parseSpecial()
				if err != nil {
					return nil, false, err
				}
				cmds = append(cmds, cmd)
			} else {
				// A bare bracket is story text.
				cmds = append(cmds, &ast.PrintText{Text: tok.Literal})
			}

		case token.SPECIAL_CLOSE, token.SPECIAL_SEP:
			cmds = append(cmds, &ast.PrintText{Text: tok.Literal})

		case token.ASTERISK:
			cmd, ok, err := p.parseSelection()
			if err != nil {
				return nil, false, err
			}
			if ok {
				cmds = append(cmds, cmd)
			} else {
				// Not a selection bullet after all; the asterisk is
				// plain story text.
				cmds = append(cmds, &ast.PrintText{Text: tok.Literal})
			}

		default:
			return nil, false, p.unexpected(tok,
				token.TEXT, token.COMMAND_START, token.SPECIAL_OPEN, token.ASTERISK)
		}
	}
}

// parseCommand parses everything between << and >>. It returns the
// produced commands (an <<if>> yields the If command followed by its
// body) and whether the command was <<endif>>.
func (p *Parser) parseCommand() ([]ast.Command, bool, error) {
	p.l.CommandMode = true
	name := p.l.NextToken()
	if name.Type != token.IDENT {
		return nil, false, p.unexpected(name, token.IDENT)
	}

	switch name.Literal {
	case "pause":
		if err := p.expectCommandEnd(); err != nil {
			return nil, false, err
		}
		return []ast.Command{&ast.Pause{}}, false, nil

	case "jump":
		target, err := p.parsePassageTarget()
		if err != nil {
			return nil, false, err
		}
		return []ast.Command{&ast.JumpToPassage{Target: target}}, false, nil

	case "call":
		target, err := p.parsePassageTarget()
		if err != nil {
			return nil, false, err
		}
		return []ast.Command{&ast.CallPassage{Target: target}}, false, nil

	case "return":
		if err := p.expectCommandEnd(); err != nil {
			return nil, false, err
		}
		return []ast.Command{&ast.ReturnPassage{}}, false, nil

	case "music":
		cmd, err := p.parseMusic()
		if err != nil {
			return nil, false, err
		}
		return []ast.Command{cmd}, false, nil

	case "if":
		cmds, err := p.parseIf()
		if err != nil {
			return nil, false, err
		}
		return cmds, false, nil

	case "endif":
		if err := p.expectCommandEnd(); err != nil {
			return nil, false, err
		}
		return nil, true, nil

	case "set":
		cmd, err := p.parseSet()
		if err != nil {
			return nil, false, err
		}
		return []ast.Command{cmd}, false, nil

	case "print":
		expr, err := p.parseExpression()
		if err != nil {
			return nil, false, err
		}
		if err := p.expectCommandEnd(); err != nil {
			return nil, false, err
		}
		return []ast.Command{&ast.PrintResult{Expr: expr}}, false, nil
	}

	return nil, false, p.unknownCommand(name)
}

// parsePassageTarget reads a jump/call operand: the raw text up to
// the closing >>, trimmed.
func (p *Parser) parsePassageTarget() (string, error) {
	p.l.CommandMode = false
	tok := p.l.NextToken()
	if tok.Type != token.TEXT {
		return "", p.unexpected(tok, token.TEXT)
	}
	target := strings.TrimSpace(tok.Literal)
	if err := p.expectCommandEnd(); err != nil {
		return "", err
	}
	return target, nil
}

// parseMusic parses `music "NAME"` with an optional `, trackExpr`.
// The track defaults to literal 0.
func (p *Parser) parseMusic() (ast.Command, error) {
	p.l.CommandMode = true
	tok := p.l.NextToken()
	if tok.Type != token.STRING {
		return nil, p.unexpected(tok, token.STRING)
	}
	cmd := &ast.SetMusic{
		Name:  stripQuotes(tok.Literal),
		Track: &ast.IntLiteral{Value: 0},
	}

	if p.peek().Type == token.COMMA {
		p.l.NextToken()
		track, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		cmd.Track = track
	}

	if err := p.expectCommandEnd(); err != nil {
		return nil, err
	}
	return cmd, nil
}

// parseIf parses `if <expr>>>` followed by the body up to the
// matching <<endif>>. The whole construct compiles to a single If
// command whose skip count steps past the body, followed by the body
// commands. Bodies may contain further <<if>> constructs; each inner
// one consumes its own <<endif>>.
func (p *Parser) parseIf() ([]ast.Command, error) {
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectCommandEnd(); err != nil {
		return nil, err
	}

	// parseCommands reports EOF inside the body as an unterminated-if
	// error, so a normal return means the endif was found.
	body, _, err := p.parseCommands(true)
	if err != nil {
		return nil, err
	}

	cmds := make([]ast.Command, 0, len(body)+1)
	cmds = append(cmds, &ast.If{Condition: cond, SkipCount: len(body) + 1})
	cmds = append(cmds, body...)
	return cmds, nil
}

// parseSet parses `set IDENT = <expr>`.
func (p *Parser) parseSet() (ast.Command, error) {
	p.l.CommandMode = true
	name := p.l.NextToken()
	if name.Type != token.IDENT {
		return nil, p.unexpected(name, token.IDENT)
	}
	if tok := p.l.NextToken(); tok.Type != token.ASSIGN {
		return nil, p.unexpected(tok, token.ASSIGN)
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if err := p.expectCommandEnd(); err != nil {
		return nil, err
	}
	return &ast.SetVariable{Name: name.Literal, Value: value}, nil
}

// specialAhead reports whether a special body follows an opening
// bracket: an identifier directly followed by another bracket. Plain
// bracketed text like "[sub]" is not a special.
func (p *Parser) specialAhead() bool {
	p.l.CommandMode = true
	ahead := p.l.Peek(2)
	return ahead[0].Type == token.IDENT && ahead[1].Literal == "["
}

// parseSpecial parses a bracketed special after the opening [. The
// only special is [img[NAME]]; any other name matching the special
// shape is an error.
func (p *Parser) parseSpecial() (ast.Command, error) {
	p.l.CommandMode = true
	name := p.l.NextToken()
	if name.Type != token.IDENT {
		return nil, p.unexpected(name, token.IDENT)
	}
	if name.Literal != "img" {
		return nil, p.unknownSpecial(name)
	}

	p.l.CommandMode = false
	if tok := p.l.NextToken(); tok.Type != token.SPECIAL_OPEN {
		return nil, p.unexpected(tok, token.SPECIAL_OPEN)
	}
	tok := p.l.NextToken()
	if tok.Type != token.TEXT {
		return nil, p.unexpected(tok, token.TEXT)
	}
	imgName := strings.TrimSpace(tok.Literal)
	for i := 0; i < 2; i++ {
		if tok := p.l.NextToken(); tok.Type != token.SPECIAL_CLOSE {
			return nil, p.unexpected(tok, token.SPECIAL_CLOSE)
		}
	}
	p.l.ConsumeNewline()
	return &ast.SetImage{Name: imgName}, nil
}

// parseSelection handles a line-leading asterisk. It is a selection
// only when followed by exactly one space and [[; anything else
// leaves the input untouched and reports ok=false so the asterisk
// falls back to plain text.
func (p *Parser) parseSelection() (ast.Command, bool, error) {
	p.l.CommandMode = false
	ahead := p.l.Peek(3)
	if ahead[0].Type != token.TEXT || ahead[0].Literal != " " ||
		ahead[1].Type != token.SPECIAL_OPEN || ahead[2].Type != token.SPECIAL_OPEN {
		return nil, false, nil
	}
	for i := 0; i < 3; i++ {
		p.l.NextToken()
	}

	text, err := p.parseUntil(token.SPECIAL_SEP)
	if err != nil {
		return nil, false, err
	}
	target, err := p.parseUntil(token.SPECIAL_CLOSE)
	if err != nil {
		return nil, false, err
	}
	if tok := p.l.NextToken(); tok.Type != token.SPECIAL_CLOSE {
		return nil, false, p.unexpected(tok, token.SPECIAL_CLOSE)
	}
	p.l.ConsumeNewline()

	return &ast.AddSelection{Text: text, Target: strings.TrimSpace(target)}, true, nil
}

// parseUntil reads optional text up to the given closing token and
// consumes that token.
func (p *Parser) parseUntil(closing token.TokenType) (string, error) {
	tok := p.l.NextToken()
	text := ""
	if tok.Type == token.TEXT {
		text = tok.Literal
		tok = p.l.NextToken()
	}
	if tok.Type != closing {
		return "", p.unexpected(tok, token.TEXT, closing)
	}
	return text, nil
}

// expectCommandEnd consumes the closing >> of a command and the one
// newline that follows it, so commands do not leave blank lines in
// the narrative text.
func (p *Parser) expectCommandEnd() error {
	p.l.CommandMode = true
	tok := p.l.NextToken()
	if tok.Type != token.COMMAND_END {
		return p.unexpected(tok, token.COMMAND_END)
	}
	p.l.ConsumeNewline()
	return nil
}

// parseExpression parses a full expression in command mode.
func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0)
}

// parseBinary parses the infix level at the given index of
// binaryLevels; past the last level it falls through to unary. Each
// level loops while its own operators appear, which yields left
// associativity.
func (p *Parser) parseBinary(level int) (ast.Expression, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}

	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}

	for {
		op, ok := matchBinary(level, p.peek().Type)
		if !ok {
			return left, nil
		}
		p.l.NextToken()
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Op: op, Left: left, Right: right}
	}
}

func matchBinary(level int, t token.TokenType) (ast.BinaryOp, bool) {
	for _, entry := range binaryLevels[level] {
		if entry.tok == t {
			return entry.op, true
		}
	}
	return 0, false
}

// parseUnary parses prefix `not` and unary minus.
func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.peek().Type {
	case token.NOT:
		p.l.NextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Op: ast.LogicalNot, Operand: operand}, nil
	case token.MINUS:
		p.l.NextToken()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{Op: ast.Negate, Operand: operand}, nil
	}
	return p.parseAtom()
}

// parseAtom parses a literal, variable, function call or
// parenthesised group.
func (p *Parser) parseAtom() (ast.Expression, error) {
	p.l.CommandMode = true
	tok := p.l.NextToken()

	switch tok.Type {
	case token.NUMBER:
		value, err := strconv.ParseInt(tok.Literal, 10, 32)
		if err != nil {
			return nil, p.unexpected(tok, token.NUMBER)
		}
		return &ast.IntLiteral{Value: int32(value)}, nil

	case token.STRING:
		return &ast.StringLiteral{Value: stripQuotes(tok.Literal)}, nil

	case token.TRUE:
		return &ast.BoolLiteral{Value: true}, nil

	case token.FALSE:
		return &ast.BoolLiteral{Value: false}, nil

	case token.IDENT:
		if p.peek().Type == token.LPAREN {
			return p.parseCall(tok.Literal)
		}
		return &ast.Variable{Name: tok.Literal}, nil

	case token.LPAREN:
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if tok := p.l.NextToken(); tok.Type != token.RPAREN {
			return nil, p.unexpected(tok, token.RPAREN)
		}
		return expr, nil
	}

	return nil, p.unexpected(tok,
		token.NUMBER, token.STRING, token.TRUE, token.FALSE, token.IDENT, token.LPAREN)
}

// parseCall parses a comma-separated argument list after the function
// name.
func (p *Parser) parseCall(name string) (ast.Expression, error) {
	p.l.NextToken() // (

	call := &ast.FunctionCall{Name: name}
	if p.peek().Type == token.RPAREN {
		p.l.NextToken()
		return call, nil
	}

	for {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)

		tok := p.l.NextToken()
		switch tok.Type {
		case token.COMMA:
			continue
		case token.RPAREN:
			return call, nil
		default:
			return nil, p.unexpected(tok, token.COMMA, token.RPAREN)
		}
	}
}

// peek returns the next command-mode token without consuming it.
func (p *Parser) peek() token.Token {
	p.l.CommandMode = true
	return p.l.Peek(1)[0]
}

// stripQuotes removes the surrounding quotes of a string literal.
// Escape pairs inside stay as written.
func stripQuotes(literal string) string {
	if len(literal) >= 2 && literal[0] == '"' && literal[len(literal)-1] == '"' {
		return literal[1 : len(literal)-1]
	}
	return literal
}
