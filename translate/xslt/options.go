package xslt

import (
	"schemaorg_pipeline/translate"
)

// options holds handler configuration
type options struct {
	prefixes   [][2]string
	undeclared func(prefix string)
}

// Option represents handler configuration function
type Option func(*options)

// WithPrefix returns Option which binds <name> to namespace <iri> on the stylesheet element, making it usable in
// path expressions without @prefix in the mapping
func WithPrefix(name, iri string) Option {
	return func(o *options) {
		o.prefixes = append(o.prefixes, [2]string{name, iri})
	}
}

// WithUndeclaredPrefixFunc returns Option which sets <callback> called by Document once for every prefix used in
// path expressions but bound neither by @prefix nor by WithPrefix.
//
// The stylesheet is still returned, XSLT processor rejects it on the first use of such prefix.
func WithUndeclaredPrefixFunc(callback func(prefix string)) Option {
	return func(o *options) {
		o.undeclared = callback
	}
}

// NewFactory returns translate.Factory which builds a new Handler configured with <opts> for every call
func NewFactory(opts ...Option) translate.Factory {
	return func() translate.Handler {
		return New(opts...)
	}
}
