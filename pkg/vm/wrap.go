package vm

import "strings"

// WrapText word-wraps text to the given width. Explicit newlines are
// kept; words longer than the width are hard-broken. A non-positive
// width disables wrapping.
func WrapText(text string, width int) []string {
	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(paragraph, width)...)
	}
	return lines
}

func wrapLine(line string, width int) []string {
	if width <= 0 || len(line) <= width {
		return []string{line}
	}

	var lines []string
	var current strings.Builder
	for _, word := range strings.Split(line, " ") {
		for len(word) > width {
			// A word wider than the panel gets hard-broken.
			if current.Len() > 0 {
				lines = append(lines, current.String())
				current.Reset()
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current.Len() == 0:
			current.WriteString(word)
		case current.Len()+1+len(word) <= width:
			current.WriteByte(' ')
			current.WriteString(word)
		default:
			lines = append(lines, current.String())
			current.Reset()
			current.WriteString(word)
		}
	}
	lines = append(lines, current.String())
	return lines
}
