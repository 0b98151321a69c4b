package parser

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Doom2fan/TwineThing/pkg/compiler/ast"
)

func parsePassage(t *testing.T, body string) []ast.Command {
	t.Helper()
	cmds, err := New("Test", body, 1).ParsePassage()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	return cmds
}

func TestParseTextAndPause(t *testing.T) {
	cmds := parsePassage(t, "Hello<<pause>>")

	want := []ast.Command{
		&ast.PrintText{Text: "Hello"},
		&ast.Pause{},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseJumpCallReturn(t *testing.T) {
	cmds := parsePassage(t, "<<jump The Cave>><<call Sub>><<return>>")

	want := []ast.Command{
		&ast.JumpToPassage{Target: "The Cave"},
		&ast.CallPassage{Target: "Sub"},
		&ast.ReturnPassage{},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseCommandSwallowsNewline(t *testing.T) {
	cmds := parsePassage(t, "<<pause>>\nAfter")

	want := []ast.Command{
		&ast.Pause{},
		&ast.PrintText{Text: "After"},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseMusic(t *testing.T) {
	tests := []struct {
		body string
		want ast.Command
	}{
		{`<<music "theme">>`, &ast.SetMusic{
			Name:  "theme",
			Track: &ast.IntLiteral{Value: 0},
		}},
		{`<<music "dungeon", 2>>`, &ast.SetMusic{
			Name:  "dungeon",
			Track: &ast.IntLiteral{Value: 2},
		}},
		{`<<music "", 0>>`, &ast.SetMusic{
			Name:  "",
			Track: &ast.IntLiteral{Value: 0},
		}},
	}

	for _, tt := range tests {
		cmds := parsePassage(t, tt.body)
		if len(cmds) != 1 || !reflect.DeepEqual(cmds[0], tt.want) {
			t.Errorf("parse(%q) = %v, want [%v]", tt.body, cmds, tt.want)
		}
	}
}

func TestParseSetAndPrint(t *testing.T) {
	cmds := parsePassage(t, `<<set x = 2>><<print x * 3 + 1>>`)

	want := []ast.Command{
		&ast.SetVariable{Name: "x", Value: &ast.IntLiteral{Value: 2}},
		&ast.PrintResult{Expr: &ast.BinaryExpression{
			Op: ast.Add,
			Left: &ast.BinaryExpression{
				Op:    ast.Mul,
				Left:  &ast.Variable{Name: "x"},
				Right: &ast.IntLiteral{Value: 3},
			},
			Right: &ast.IntLiteral{Value: 1},
		}},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseImageSpecial(t *testing.T) {
	cmds := parsePassage(t, "[img[cave]]\ntext")

	want := []ast.Command{
		&ast.SetImage{Name: "cave"},
		&ast.PrintText{Text: "text"},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseBracketedTextIsNotSpecial(t *testing.T) {
	cmds := parsePassage(t, "[sub]")

	want := []ast.Command{
		&ast.PrintText{Text: "["},
		&ast.PrintText{Text: "sub"},
		&ast.PrintText{Text: "]"},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseSelection(t *testing.T) {
	cmds := parsePassage(t, "* [[Go left|Left]]\n* [[Go right|Right]]")

	want := []ast.Command{
		&ast.AddSelection{Text: "Go left", Target: "Left"},
		&ast.AddSelection{Text: "Go right", Target: "Right"},
	}
	if !reflect.DeepEqual(cmds, want) {
		t.Errorf("commands = %v, want %v", cmds, want)
	}
}

func TestParseAsteriskFallsBackToText(t *testing.T) {
	tests := []struct {
		body string
	}{
		{"* plain text"},
		{"*no space"},
		{"*  [[Two|Spaces]]"},
	}

	for _, tt := range tests {
		cmds := parsePassage(t, tt.body)
		if len(cmds) == 0 {
			t.Errorf("parse(%q) produced no commands", tt.body)
			continue
		}
		first, ok := cmds[0].(*ast.PrintText)
		if !ok || first.Text != "*" {
			t.Errorf("parse(%q) first command = %v, want PrintText(\"*\")", tt.body, cmds[0])
		}
	}
}

func TestParseIfCompilesToSkip(t *testing.T) {
	cmds := parsePassage(t, "<<if x > 1>>big<<pause>><<endif>>after")

	if len(cmds) != 4 {
		t.Fatalf("expected 4 commands, got %d: %v", len(cmds), cmds)
	}
	ifCmd, ok := cmds[0].(*ast.If)
	if !ok {
		t.Fatalf("first command is %T, want *ast.If", cmds[0])
	}
	// Skip steps from the If past "big" and pause to "after".
	if ifCmd.SkipCount != 3 {
		t.Errorf("skip count = %d, want 3", ifCmd.SkipCount)
	}
	if _, ok := cmds[3].(*ast.PrintText); !ok {
		t.Errorf("command 3 is %T, want *ast.PrintText", cmds[3])
	}
}

func TestParseIfEmptyBody(t *testing.T) {
	cmds := parsePassage(t, "<<if true>><<endif>>")

	if len(cmds) != 1 {
		t.Fatalf("expected 1 command, got %d: %v", len(cmds), cmds)
	}
	ifCmd := cmds[0].(*ast.If)
	if ifCmd.SkipCount != 1 {
		t.Errorf("skip count = %d, want 1", ifCmd.SkipCount)
	}
}

func TestParseNestedIf(t *testing.T) {
	cmds := parsePassage(t, "<<if a>>x<<if b>>y<<endif>>z<<endif>>")

	// Outer if, "x", inner if, "y", "z".
	if len(cmds) != 5 {
		t.Fatalf("expected 5 commands, got %d: %v", len(cmds), cmds)
	}
	outer := cmds[0].(*ast.If)
	if outer.SkipCount != 5 {
		t.Errorf("outer skip = %d, want 5", outer.SkipCount)
	}
	inner, ok := cmds[2].(*ast.If)
	if !ok {
		t.Fatalf("command 2 is %T, want *ast.If", cmds[2])
	}
	if inner.SkipCount != 2 {
		t.Errorf("inner skip = %d, want 2", inner.SkipCount)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"<<print 1 + 2 * 3>>", "Print((1 + (2 * 3)))"},
		{"<<print 1 < 2 == true>>", "Print(((1 < 2) == true))"},
		{"<<print not a and b>>", "Print(((not a) and b))"},
		{"<<print a or b == c>>", "Print((a or (b == c)))"},
		{"<<print 1 - 2 - 3>>", "Print(((1 - 2) - 3))"},
		{"<<print -x + 1>>", "Print(((-x) + 1))"},
		{"<<print a is b>>", "Print((a == b))"},
		{"<<print a <> b>>", "Print((a != b))"},
		{"<<print 10 % 3>>", "Print((10 % 3))"},
		{"<<print (1 + 2) * 3>>", "Print(((1 + 2) * 3))"},
		{"<<print random(1, 6) + 1>>", "Print((random(1, 6) + 1))"},
	}

	for _, tt := range tests {
		cmds := parsePassage(t, tt.body)
		if len(cmds) != 1 {
			t.Errorf("parse(%q) produced %d commands", tt.body, len(cmds))
			continue
		}
		if got := cmds[0].String(); got != tt.want {
			t.Errorf("parse(%q) = %s, want %s", tt.body, got, tt.want)
		}
	}
}

func TestParseStringEscapesAreTransparent(t *testing.T) {
	cmds := parsePassage(t, `<<set s = "a\"b">>`)

	set := cmds[0].(*ast.SetVariable)
	lit := set.Value.(*ast.StringLiteral)
	if lit.Value != `a\"b` {
		t.Errorf("string value = %q, want %q", lit.Value, `a\"b`)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		body string
		kind ErrorKind
	}{
		{"<<frobnicate>>", UnknownCommand},
		{"[foo[bar]]", UnknownSpecial},
		{"<<if true>>never closed", UnterminatedIf},
		{"<<set 1 = 2>>", UnexpectedToken},
		{"<<print 1 +>>", UnexpectedToken},
		{"<<endif>>", UnexpectedToken},
	}

	for _, tt := range tests {
		_, err := New("Test", tt.body, 1).ParsePassage()
		if err == nil {
			t.Errorf("parse(%q) succeeded, want error", tt.body)
			continue
		}
		var perr *Error
		if !errors.As(err, &perr) {
			t.Errorf("parse(%q) error is %T, want *Error", tt.body, err)
			continue
		}
		if perr.Kind != tt.kind {
			t.Errorf("parse(%q) error kind = %d, want %d (%v)", tt.body, perr.Kind, tt.kind, err)
		}
		if perr.Passage != "Test" {
			t.Errorf("parse(%q) error passage = %q, want Test", tt.body, perr.Passage)
		}
		if perr.Line <= 0 || perr.Column < 0 {
			t.Errorf("parse(%q) error position = %d:%d", tt.body, perr.Line, perr.Column)
		}
	}
}

func TestParseErrorPositions(t *testing.T) {
	// The bad command starts on body line 2; the passage body begins
	// at file line 10.
	_, err := New("Test", "fine text\n<<bogus>>", 10).ParsePassage()
	if err == nil {
		t.Fatal("expected parse error")
	}
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("error is %T, want *Error", err)
	}
	if perr.Line != 11 {
		t.Errorf("error line = %d, want 11", perr.Line)
	}
}
