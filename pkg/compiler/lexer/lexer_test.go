package lexer

import (
	"testing"

	"github.com/Doom2fan/TwineThing/pkg/compiler/token"
)

func TestNarrativeTokens(t *testing.T) {
	input := "Hello there.\n<<pause>>\n* [[Left|L]]\na 2*3 star"

	l := New(input, 1)

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.TEXT, "Hello there.\n"},
		{token.COMMAND_START, "<<"},
		{token.TEXT, "pause"},
		{token.COMMAND_END, ">>"},
		{token.TEXT, "\n"},
		{token.ASTERISK, "*"},
		{token.TEXT, " "},
		{token.SPECIAL_OPEN, "["},
		{token.SPECIAL_OPEN, "["},
		{token.TEXT, "Left"},
		{token.SPECIAL_SEP, "|"},
		{token.TEXT, "L"},
		{token.SPECIAL_CLOSE, "]"},
		{token.SPECIAL_CLOSE, "]"},
		{token.TEXT, "\na 2*3 star"},
		{token.EOF, ""},
	}

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestCommandTokens(t *testing.T) {
	input := `set x = 2 + 30 * -1`

	l := New(input, 1)
	l.CommandMode = true

	tests := []struct {
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{token.IDENT, "set"},
		{token.IDENT, "x"},
		{token.ASSIGN, "="},
		{token.NUMBER, "2"},
		{token.PLUS, "+"},
		{token.NUMBER, "30"},
		{token.MULT, "*"},
		{token.MINUS, "-"},
		{token.NUMBER, "1"},
		{token.EOF, ""},
	}

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestMaximalMunchOperators(t *testing.T) {
	input := `<= >= == != <> < > = if x <> y`

	l := New(input, 1)
	l.CommandMode = true

	expected := []token.TokenType{
		token.LTE, token.GTE, token.EQ, token.NOT_EQ, token.NOT_EQ2,
		token.LT, token.GT, token.ASSIGN,
		token.IDENT, token.IDENT, token.NOT_EQ2, token.IDENT,
		token.EOF,
	}

	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, want, tok.Type, tok.Literal)
		}
	}
}

func TestReservedWordsCaseInsensitive(t *testing.T) {
	input := `true FALSE Or AND not IS truely`

	l := New(input, 1)
	l.CommandMode = true

	expected := []struct {
		typ     token.TokenType
		literal string
	}{
		{token.TRUE, "true"},
		{token.FALSE, "FALSE"},
		{token.OR, "Or"},
		{token.AND, "AND"},
		{token.NOT, "not"},
		{token.IS, "IS"},
		{token.IDENT, "truely"},
	}

	for i, want := range expected {
		tok := l.NextToken()
		if tok.Type != want.typ || tok.Literal != want.literal {
			t.Fatalf("tests[%d] - expected (%q, %q), got (%q, %q)",
				i, want.typ, want.literal, tok.Type, tok.Literal)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	tests := []struct {
		input           string
		expectedType    token.TokenType
		expectedLiteral string
	}{
		{`"hello"`, token.STRING, `"hello"`},
		{`""`, token.STRING, `""`},
		// Escapes are transparent: backslash and the next character
		// stay in the literal.
		{`"a\"b"`, token.STRING, `"a\"b"`},
		{`"a\\b"`, token.STRING, `"a\\b"`},
		{`"unterminated`, token.ILLEGAL, `"unterminated`},
	}

	for i, tt := range tests {
		l := New(tt.input, 1)
		l.CommandMode = true
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q",
				i, tt.expectedType, tok.Type)
		}
		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestAsteriskOnlyAtLineStart(t *testing.T) {
	l := New("*first\nmid*dle\n*last", 1)

	tok := l.NextToken()
	if tok.Type != token.ASTERISK {
		t.Fatalf("expected ASTERISK at line start, got %q (%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.TEXT || tok.Literal != "first\nmid*dle\n" {
		t.Fatalf("expected mid-line asterisk inside TEXT, got %q (%q)", tok.Type, tok.Literal)
	}
	tok = l.NextToken()
	if tok.Type != token.ASTERISK {
		t.Fatalf("expected ASTERISK on last line, got %q (%q)", tok.Type, tok.Literal)
	}
}

func TestPeekDoesNotConsume(t *testing.T) {
	l := New("one<<two>>", 1)

	peeked := l.Peek(3)
	if len(peeked) != 3 {
		t.Fatalf("expected 3 peeked tokens, got %d", len(peeked))
	}
	if peeked[0].Type != token.TEXT || peeked[0].Literal != "one" {
		t.Errorf("peek[0] wrong: %q (%q)", peeked[0].Type, peeked[0].Literal)
	}
	if peeked[1].Type != token.COMMAND_START {
		t.Errorf("peek[1] wrong: %q", peeked[1].Type)
	}

	// The same tokens come back from NextToken, with positions.
	for i := 0; i < 3; i++ {
		tok := l.NextToken()
		if tok != peeked[i] {
			t.Errorf("token %d differs after peek: %+v vs %+v", i, tok, peeked[i])
		}
	}
}

func TestPeekPastEOFPadsWithEOF(t *testing.T) {
	l := New("x", 1)
	l.CommandMode = true

	peeked := l.Peek(3)
	if peeked[0].Type != token.IDENT {
		t.Errorf("peek[0] = %q, want IDENT", peeked[0].Type)
	}
	for i := 1; i < 3; i++ {
		if peeked[i].Type != token.EOF {
			t.Errorf("peek[%d] = %q, want EOF", i, peeked[i].Type)
		}
	}
}

func TestLineAndColumnTracking(t *testing.T) {
	l := New("ab\ncd", 5)

	tok := l.NextToken()
	if tok.Line != 5 || tok.Column != 1 {
		t.Errorf("first token at %d:%d, want 5:1", tok.Line, tok.Column)
	}

	// A token after the newline reports the next file line.
	l2 := New("a\n<<x>>", 5)
	l2.NextToken() // "a\n"
	tok = l2.NextToken()
	if tok.Type != token.COMMAND_START || tok.Line != 6 {
		t.Errorf("command start at line %d, want 6", tok.Line)
	}
}
