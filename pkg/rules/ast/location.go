package ast

import "fmt"

// Location identifies a position in a rule or document source.
// It enables precise error reporting with file, line, and column information.
type Location struct {
	File   string // Name of the source (file path or caller-supplied label)
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// String returns a human-readable representation of the location.
// Format: "file:line:column"
func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return "<unknown>"
	}
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// IsValid returns true if the location carries usable position information.
func (l Location) IsValid() bool {
	return l.Line > 0
}
