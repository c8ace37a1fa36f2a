package mapping

import "fmt"

// ParseError represents error thrown if mapping text is malformed
type ParseError struct {
	Line   int
	Reason string
}

// Error is used to satisfy golang error interface
func (e ParseError) Error() string {
	return fmt.Sprintf("Mapping line %v: %v", e.Line, e.Reason)
}

// newParseError returns new ParseError at <line> with formatted reason
func newParseError(line int, format string, args ...any) ParseError {
	return ParseError{Line: line, Reason: fmt.Sprintf(format, args...)}
}
