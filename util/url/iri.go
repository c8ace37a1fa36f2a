package url

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// IsAbsolute returns true if <iri> has a scheme and is not a prefixed name such as db:Drug.
//
// Prefixed names parse as URL's with opaque part, so the check requires an authority or a path after the scheme.
func IsAbsolute(iri string) bool {
	u, err := url.Parse(iri)
	if err != nil || u.Scheme == "" {
		return false
	}
	return strings.HasPrefix(iri, u.Scheme+"://") || strings.HasPrefix(iri, "urn:")
}

// Validate returns error if <iri> is not an absolute IRI which can be bound into a query
func Validate(iri string) error {
	if strings.ContainsAny(iri, "<>\"{}|^`\\ \t\n") {
		return errors.Newf("IRI %q contains characters not allowed in IRI reference", iri)
	}
	if !IsAbsolute(iri) {
		return errors.Newf("IRI %q is not absolute", iri)
	}
	return nil
}

// FileName returns <iri> escaped to be used as a file name
func FileName(iri string) string {
	return url.QueryEscape(iri)
}
