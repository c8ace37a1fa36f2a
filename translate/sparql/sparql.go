// Package sparql realizes mapping events as a SPARQL CONSTRUCT query with a single unbound ?subject parameter.
package sparql

import (
	"fmt"
	"strings"

	"schemaorg_pipeline/mapping"
	"schemaorg_pipeline/translate"
	"schemaorg_pipeline/util/url"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	// Backend is the name of this backend in errors and configuration
	Backend = "sparql"
	// SubjectVar is the single unbound variable of every emitted query
	SubjectVar = "?subject"
	// SchemaNamespace is the IRI bound to the schema prefix
	SchemaNamespace = "http://schema.org/"
	// RDFNamespace is the IRI bound to the rdf prefix
	RDFNamespace = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
)

// Handler represents translate.Handler emitting SPARQL CONSTRUCT query
type Handler struct {
	opts      options
	prefixes  []Prefix
	construct []string
	where     strings.Builder
	scopes    []scope
	groups    int
	counters  map[string]int
	rootType  *mapping.TypeAnnotation
}

// scope represents subject of the root or a nested object
type scope struct {
	subject string
	// group is true if the scope opened an OPTIONAL group to close at the end
	group bool
}

// New returns new Handler configured with <opts>
func New(opts ...Option) *Handler {
	return newHandler(newOptions(opts))
}

// newHandler returns new Handler with <o> configuration
func newHandler(o options) *Handler {
	h := &Handler{
		opts:     o,
		scopes:   []scope{{subject: SubjectVar}},
		counters: map[string]int{},
	}
	// Configured prefixes never override built-in ones
	h.prefixes = []Prefix{{Name: "schema", IRI: SchemaNamespace}, {Name: "rdf", IRI: RDFNamespace}}
	for _, p := range o.Prefixes {
		if _, found := h.prefix(p.Name); !found {
			h.prefixes = append(h.prefixes, p)
		}
	}
	return h
}

// OnPrefixDeclaration adds PREFIX clause to the query prologue
func (h *Handler) OnPrefixDeclaration(prefix, iri string) error {
	if prev, found := h.prefix(prefix); found {
		if prev.IRI == iri {
			return nil
		}
		return translate.UnsupportedDirectiveError{
			Backend:   Backend,
			Directive: fmt.Sprintf("%v (%v, %v)", mapping.PrefixKey, prefix, iri),
			Reason:    fmt.Sprintf("prefix is already bound to %v", prev.IRI),
		}
	}
	h.prefixes = append(h.prefixes, Prefix{Name: prefix, IRI: iri})
	return nil
}

// OnRootType sets declared schema.org type of the subject
func (h *Handler) OnRootType(t mapping.TypeAnnotation) error {
	if h.rootType != nil {
		return translate.UnsupportedDirectiveError{
			Backend:   Backend,
			Directive: fmt.Sprintf("%v %v", mapping.TypeKey, t.Name),
			Reason:    fmt.Sprintf("root type is already set to %v", h.rootType.Name),
		}
	}
	h.rootType = &t
	return nil
}

// OnPropertyPath binds a fresh variable to the value of <path> and constructs <property> triple with it
func (h *Handler) OnPropertyPath(property string, path mapping.Path) error {
	subject := h.subject()
	variable := h.variable(property)

	if path.IsSelf() {
		// The subject is bound in the current group, so the binding can't fail
		h.whereLine(bind(subject, variable))
	} else {
		pattern, err := h.pattern(subject, path, variable)
		if err != nil {
			return err
		}
		h.whereLine(fmt.Sprintf("OPTIONAL { %v }", pattern))
	}
	h.construct = append(h.construct, triple(subject, "schema:"+property, variable))
	return nil
}

// OnPropertyLiteral constructs <property> triple with constant string <literal>
func (h *Handler) OnPropertyLiteral(property, literal string) error {
	h.construct = append(h.construct, triple(h.subject(), "schema:"+property, stringLiteral(literal)))
	return nil
}

// OnNestedObjectStart binds a fresh variable to the value of <path> and makes it the subject of the nested scope
func (h *Handler) OnNestedObjectStart(property string, path mapping.Path, t *mapping.TypeAnnotation) error {
	subject := h.subject()
	variable := h.variable(property)

	paired := t != nil && t.IsPaired()
	switch {
	case path.IsSelf() && !paired:
		// Nested object is the current node, its patterns stay in the current group
		h.whereLine(bind(subject, variable))
		h.scopes = append(h.scopes, scope{subject: variable})
	case path.IsSelf():
		// Type constraint binds the subject inside the new group before it is aliased
		h.openGroup()
		h.whereLine(triple(subject, "rdf:type", term(t.SourceName)))
		h.whereLine(bind(subject, variable))
		h.scopes = append(h.scopes, scope{subject: variable, group: true})
	default:
		pattern, err := h.pattern(subject, path, variable)
		if err != nil {
			return err
		}
		h.openGroup()
		h.whereLine(pattern)
		if paired {
			h.whereLine(triple(variable, "rdf:type", term(t.SourceName)))
		}
		h.scopes = append(h.scopes, scope{subject: variable, group: true})
	}

	h.construct = append(h.construct, triple(subject, "schema:"+property, variable))
	if t != nil {
		h.construct = append(h.construct, triple(variable, "rdf:type", schemaTerm(t.Name)))
	}
	return nil
}

// OnNestedObjectEnd restores the subject of the enclosing scope
func (h *Handler) OnNestedObjectEnd() error {
	if len(h.scopes) < 2 {
		return errors.New("Nested object end without start")
	}
	closed := h.scopes[len(h.scopes)-1]
	h.scopes = h.scopes[:len(h.scopes)-1]
	if closed.group {
		h.groups--
		h.whereLine("}")
	}
	return nil
}

// Document returns complete CONSTRUCT query
func (h *Handler) Document() (string, error) {
	if len(h.scopes) > 1 {
		open := lo.Map(h.scopes[1:], func(s scope, _ int) string { return s.subject })
		return "", errors.Newf("Nested objects are not closed: %v", strings.Join(open, ", "))
	}

	construct := h.construct
	var typeConstraint string
	if h.rootType != nil {
		construct = append([]string{triple(SubjectVar, "rdf:type", schemaTerm(h.rootType.Name))}, construct...)
	}
	if source := h.sourceType(); source != "" {
		typeConstraint = "  " + triple(SubjectVar, "rdf:type", term(source)) + "\n"
	}

	var out strings.Builder
	for _, p := range h.prefixes {
		out.WriteString(fmt.Sprintf("PREFIX %v: <%v>\n", p.Name, p.IRI))
	}
	out.WriteString("\nCONSTRUCT {\n")
	for _, t := range construct {
		out.WriteString("  " + t + "\n")
	}
	out.WriteString("}\nWHERE {\n")
	out.WriteString(typeConstraint)
	out.WriteString(h.where.String())
	out.WriteString("}\n")

	return out.String(), nil
}

// sourceType returns source vocabulary type of the subject or empty string if unknown
func (h *Handler) sourceType() string {
	if h.rootType != nil && h.rootType.IsPaired() {
		return h.rootType.SourceName
	}
	return h.opts.InstanceType
}

// prefix returns declared prefix with <name>
func (h *Handler) prefix(name string) (Prefix, bool) {
	return lo.Find(h.prefixes, func(p Prefix) bool { return p.Name == name })
}

// subject returns variable which is the subject of the current scope
func (h *Handler) subject() string {
	return h.scopes[len(h.scopes)-1].subject
}

// variable returns fresh variable for <property>, numbered by the amount of previous variables for it
func (h *Handler) variable(property string) string {
	name := strings.ReplaceAll(property, "-", "_")
	h.counters[name]++
	return fmt.Sprintf("?%v_%v", name, h.counters[name])
}

// pattern returns triple pattern binding <variable> to the value of non-self <path> from <subject>
func (h *Handler) pattern(subject string, path mapping.Path, variable string) (string, error) {
	steps := path.Steps()
	if unprefixed, found := lo.Find(steps, func(step string) bool { return !strings.Contains(step, ":") }); found {
		return "", translate.UnsupportedDirectiveError{
			Backend:   Backend,
			Directive: fmt.Sprintf("path %v", path),
			Reason:    fmt.Sprintf("segment %q has no namespace prefix", unprefixed),
		}
	}
	return triple(subject, strings.Join(steps, "/"), variable), nil
}

// openGroup starts OPTIONAL group in the WHERE clause
func (h *Handler) openGroup() {
	h.whereLine("OPTIONAL {")
	h.groups++
}

// whereLine appends <text> to the WHERE clause, indented by the amount of open groups
func (h *Handler) whereLine(text string) {
	h.where.WriteString(strings.Repeat("  ", h.groups+1))
	h.where.WriteString(text)
	h.where.WriteString("\n")
}

// triple returns triple pattern of <s>, <p> and <o>
func triple(s, p, o string) string {
	return fmt.Sprintf("%v %v %v .", s, p, o)
}

// bind returns assignment of <subject> to <variable>
func bind(subject, variable string) string {
	return fmt.Sprintf("BIND(%v AS %v)", subject, variable)
}

// schemaTerm returns schema.org type <name> as prefixed name, keeping names which already have a prefix or are IRI's
func schemaTerm(name string) string {
	if strings.Contains(name, ":") {
		return term(name)
	}
	return "schema:" + name
}

// term returns <name> as IRI reference if it is absolute, or as prefixed name otherwise
func term(name string) string {
	if url.IsAbsolute(name) {
		return "<" + name + ">"
	}
	return name
}

// literalReplacer escapes characters not allowed in a quoted SPARQL string
var literalReplacer = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

// stringLiteral returns <text> as quoted SPARQL string literal
func stringLiteral(text string) string {
	return `"` + literalReplacer.Replace(text) + `"`
}
