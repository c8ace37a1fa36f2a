// Package translate walks a parsed mapping and drives a backend Handler which emits the target document.
package translate

import (
	"fmt"

	"schemaorg_pipeline/mapping"
)

// Handler represents backend which realizes mapping events as a target document.
//
// Events arrive in document order. Every OnNestedObjectStart is followed by exactly one OnNestedObjectEnd before any
// event of the same or shallower level. Handlers accumulate state and must not be reused across translations.
type Handler interface {
	OnPrefixDeclaration(prefix, iri string) error
	OnRootType(t mapping.TypeAnnotation) error
	OnPropertyPath(property string, path mapping.Path) error
	OnPropertyLiteral(property, literal string) error
	OnNestedObjectStart(property string, path mapping.Path, t *mapping.TypeAnnotation) error
	OnNestedObjectEnd() error

	// Document returns accumulated emission wrapped in the backend envelope
	Document() (string, error)
}

// Factory returns new Handler for every call
type Factory func() Handler

// UnsupportedDirectiveError represents error thrown if backend can't realize a mapping event
type UnsupportedDirectiveError struct {
	Backend   string
	Directive string
	Reason    string
}

// Error is used to satisfy golang error interface
func (e UnsupportedDirectiveError) Error() string {
	return fmt.Sprintf("%v backend can not realize %v: %v", e.Backend, e.Directive, e.Reason)
}
