package parser

import "fmt"

// SyntaxError reports a malformed statement or an unterminated block.
// Parsing stops at the first one; no partial program is returned.
type SyntaxError struct {
	Line   int
	Reason string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Reason)
}

func errorAt(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
