// Package preprocessor splits a Twee source file into its passages.
//
// A passage begins on a line whose first two characters are "::"; the
// remainder of that line, trimmed, is the passage name. The body runs
// to the next "::" line. Anything before the first "::" line is
// ignored.
package preprocessor

import (
	"strings"
)

// RawPassage is one unparsed passage.
type RawPassage struct {
	Name string
	Body string
	// StartLine is the 1-based file line of the first body line, so
	// downstream tokens carry file-level positions.
	StartLine int
}

// Split separates source text into passages. The input is expected to
// have normalised "\n" line endings (see pkg/script); a leading BOM
// must already be stripped.
func Split(source string) []RawPassage {
	lines := strings.Split(source, "\n")

	var passages []RawPassage
	var current *RawPassage
	var body []string

	flush := func() {
		if current == nil {
			return
		}
		current.Body = trimBody(strings.Join(body, "\n"))
		passages = append(passages, *current)
		current = nil
		body = nil
	}

	for i, line := range lines {
		if strings.HasPrefix(line, "::") {
			flush()
			current = &RawPassage{
				Name:      strings.TrimSpace(line[2:]),
				StartLine: i + 2,
			}
			continue
		}
		if current != nil {
			body = append(body, line)
		}
	}
	flush()

	return passages
}

// trimBody strips trailing newline, carriage-return and space
// characters from a passage body.
func trimBody(body string) string {
	return strings.TrimRight(body, "\n\r ")
}
