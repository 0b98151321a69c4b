package compiler

import (
	"fmt"
	"strings"
)

// CompileError is a load-time failure with source location and a
// rendered excerpt of the offending lines.
type CompileError struct {
	Message string
	Passage string
	Line    int // 1-indexed file line
	Column  int // 1-indexed column
	Context string
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	if e.Context != "" {
		return fmt.Sprintf("%s\n%s", e.Message, e.Context)
	}
	return e.Message
}

// Unwrap exposes the underlying parser error for errors.As.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// GenerateErrorContext renders the source lines around an error: two
// lines of context on each side, the error line marked with ">" and a
// "^" pointer under the column.
//
// Example output:
//
//	  1 | :: Start
//	  2 | Hello.
//	> 3 | <<jmup Next>>
//	        ^
//	  4 | * [[Go|Next]]
func GenerateErrorContext(source string, line, column int) string {
	if source == "" || line <= 0 {
		return ""
	}

	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}

	start := line - 3
	if start < 0 {
		start = 0
	}
	end := line + 2
	if end > len(lines) {
		end = len(lines)
	}

	lineNumWidth := len(fmt.Sprintf("%d", end))

	var buf strings.Builder
	for i := start; i < end; i++ {
		lineNum := i + 1
		if lineNum == line {
			buf.WriteString(fmt.Sprintf("> %*d | %s\n", lineNumWidth, lineNum, lines[i]))
			indent := 2 + lineNumWidth + 3
			if column > 0 {
				buf.WriteString(fmt.Sprintf("%s%s^\n",
					strings.Repeat(" ", indent), strings.Repeat(" ", column-1)))
			} else {
				buf.WriteString(fmt.Sprintf("%s^\n", strings.Repeat(" ", indent)))
			}
		} else {
			buf.WriteString(fmt.Sprintf("  %*d | %s\n", lineNumWidth, lineNum, lines[i]))
		}
	}
	return buf.String()
}
