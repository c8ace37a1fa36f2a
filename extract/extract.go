// Package extract executes compiled stylesheets and queries against source records.
package extract

import (
	"context"
	"fmt"
)

// Transformer represents engine which turns one source item into an output document
type Transformer interface {
	Transform(ctx context.Context, input []byte) ([]byte, error)
}

// EndpointError represents error thrown if SPARQL endpoint responded with non-2xx status
type EndpointError struct {
	Status int
	Body   string
}

// Error is used to satisfy golang error interface
func (e EndpointError) Error() string {
	return fmt.Sprintf("Endpoint responded with status %v: %v", e.Status, e.Body)
}

// ProcessorError represents error thrown if XSLT processor exited with non-zero code
type ProcessorError struct {
	ExitCode int
	Stderr   string
}

// Error is used to satisfy golang error interface
func (e ProcessorError) Error() string {
	return fmt.Sprintf("XSLT processor exited with code %v: %v", e.ExitCode, e.Stderr)
}

// maxErrBody is the maximum length of response body or stderr kept in errors
const maxErrBody = 512

// truncate returns <text> cut to maxErrBody characters
func truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= maxErrBody {
		return text
	}
	return string(runes[:maxErrBody]) + "..."
}
