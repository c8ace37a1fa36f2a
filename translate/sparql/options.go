package sparql

import (
	"schemaorg_pipeline/translate"
	"schemaorg_pipeline/util/copier"
)

// Prefix represents namespace declaration of the query prologue
type Prefix struct {
	Name string
	IRI  string
}

// options holds handler configuration
type options struct {
	Prefixes     []Prefix
	InstanceType string
}

// Option represents handler configuration function
type Option func(*options)

// WithPrefix returns Option which declares <name> bound to <iri> in the query prologue
func WithPrefix(name, iri string) Option {
	return func(o *options) {
		o.Prefixes = append(o.Prefixes, Prefix{Name: name, IRI: iri})
	}
}

// WithInstanceType returns Option which sets source vocabulary type of the subject.
//
// It is used when the mapping declares root type without a source name, or no root type at all.
func WithInstanceType(sourceName string) Option {
	return func(o *options) {
		o.InstanceType = sourceName
	}
}

// newOptions returns options built from <opts>
func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewFactory returns translate.Factory which builds a new Handler configured with <opts> for every call.
//
// Each handler gets its own copy of the configuration.
func NewFactory(opts ...Option) translate.Factory {
	o := newOptions(opts)
	return func() translate.Handler {
		return newHandler(copier.PDeep(o))
	}
}
