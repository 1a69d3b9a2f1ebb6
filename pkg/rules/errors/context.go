package errors

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/rules/ast"
)

// ExtractContext extracts the lines surrounding the given location from
// the source text for error display. The engine parses from memory, so
// context comes from the source bytes rather than re-reading a file.
func ExtractContext(source []byte, location ast.Location, contextLines int) string {
	if !location.IsValid() || len(source) == 0 {
		return ""
	}

	lines := strings.Split(string(source), "\n")
	errorLine := location.Line - 1 // 0-based
	if errorLine < 0 || errorLine >= len(lines) {
		return ""
	}

	startLine := errorLine - contextLines
	if startLine < 0 {
		startLine = 0
	}
	endLine := errorLine + contextLines
	if endLine >= len(lines) {
		endLine = len(lines) - 1
	}

	var sb strings.Builder
	maxLineNumWidth := len(fmt.Sprintf("%d", endLine+1))

	for i := startLine; i <= endLine; i++ {
		prefix := "  "
		if i == errorLine {
			prefix = "->"
		}
		sb.WriteString(fmt.Sprintf("%s %*d | %s\n", prefix, maxLineNumWidth, i+1, lines[i]))

		// Column indicator under the error line.
		if i == errorLine && location.Column > 0 {
			padding := strings.Repeat(" ", location.Column-1)
			sb.WriteString(fmt.Sprintf("   %s | %s^\n", strings.Repeat(" ", maxLineNumWidth), padding))
		}
	}

	return sb.String()
}

// WithContext enriches a ParseError with a source excerpt, showing two
// lines of context on either side of the error.
func WithContext(err *ParseError, source []byte) *ParseError {
	if err.Context == "" {
		err.Context = ExtractContext(source, err.Location, 2)
	}
	return err
}
