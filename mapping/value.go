package mapping

import (
	"regexp"
	"strings"

	"schemaorg_pipeline/util/parse"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

var (
	// propertyRx represents allowed property key, it has to be usable as XML element name and SPARQL local name
	propertyRx = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)
	// nameRx represents plain path segment, it may contain but not end with a dot
	nameRx = regexp.MustCompile(`^[A-Za-z_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)
	// prefixedNameRx represents path segment qualified with a namespace prefix
	prefixedNameRx = regexp.MustCompile(
		`^[A-Za-z_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?:[A-Za-z0-9_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)
	// prefixRx represents namespace prefix declared with @prefix
	prefixRx = regexp.MustCompile(`^[A-Za-z_](?:[A-Za-z0-9_.-]*[A-Za-z0-9_-])?$`)
)

// valueKind represents shape of a value written after the colon
type valueKind uint8

const (
	pathValue valueKind = iota
	literalValue
	tupleValue
)

// value represents disambiguated raw value
type value struct {
	kind    valueKind
	path    Path
	literal string
	args    [2]string
}

// parseValue returns disambiguated <raw> value found at <line>.
//
// A value starting with / is a path, a quoted value or any other bare token is a literal, (a, b) is a directive
// argument tuple.
func parseValue(line int, raw string) (value, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == "":
		return value{}, newParseError(line, "missing value")
	case strings.HasPrefix(raw, "/"):
		path, err := ParsePath(raw)
		if err != nil {
			return value{}, newParseError(line, "%v", err.Error())
		}
		return value{kind: pathValue, path: path}, nil
	case strings.HasPrefix(raw, `"`), strings.HasPrefix(raw, "'"):
		literal, ok := unquote(raw)
		if !ok {
			return value{}, newParseError(line, "unterminated quoted literal %v", raw)
		}
		return value{kind: literalValue, literal: literal}, nil
	case strings.HasPrefix(raw, "("):
		args, err := parseTuple(line, raw)
		if err != nil {
			return value{}, err
		}
		return value{kind: tupleValue, args: args}, nil
	}
	return value{kind: literalValue, literal: raw}, nil
}

// parseTuple returns both arguments of (a, b) directive argument tuple <raw> found at <line>
func parseTuple(line int, raw string) ([2]string, error) {
	if !strings.HasSuffix(raw, ")") {
		return [2]string{}, newParseError(line, "unterminated directive argument tuple %v", raw)
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
	first, second, found := parse.CutOutside(inner, ',')
	extra := strings.ContainsRune(second, ',') && !isQuoted(strings.TrimSpace(second))
	if !found || extra {
		return [2]string{}, newParseError(line, "directive argument tuple %v should have exactly 2 arguments", raw)
	}
	args := lo.Map([]string{first, second}, func(arg string, _ int) string {
		arg = strings.TrimSpace(arg)
		if unquoted, ok := unquote(arg); ok {
			return unquoted
		}
		return arg
	})
	if args[0] == "" || args[1] == "" {
		return [2]string{}, newParseError(line, "directive argument tuple %v has an empty argument", raw)
	}
	return [2]string{args[0], args[1]}, nil
}

// ParsePath parses a path expression such as /db:brand/dcterms:title into a Path
func ParsePath(raw string) (Path, error) {
	if !strings.HasPrefix(raw, "/") {
		return Path{}, errors.Newf("path %q should start with /", raw)
	}
	if raw == "/" {
		return Path{}, errors.Newf("path %q has no segments", raw)
	}

	segments := strings.Split(strings.TrimPrefix(raw, "/"), "/")
	for _, segment := range segments {
		if segment == "" {
			return Path{}, errors.Newf("path %q has an empty segment", raw)
		}
		if segment != "." && !nameRx.MatchString(segment) && !prefixedNameRx.MatchString(segment) {
			return Path{}, errors.Newf("path %q has invalid segment %q", raw, segment)
		}
	}

	return Path{Raw: raw, Segments: segments}, nil
}

// isQuoted returns true if <raw> starts and ends with the same quote character
func isQuoted(raw string) bool {
	_, ok := unquote(raw)
	return ok
}

// unquote returns <raw> without surrounding quotes and true if <raw> is a terminated quoted literal
func unquote(raw string) (string, bool) {
	if len(raw) < 2 {
		return raw, false
	}
	quote := raw[0]
	if quote != '"' && quote != '\'' || raw[len(raw)-1] != quote {
		return raw, false
	}
	return raw[1 : len(raw)-1], true
}
