// Package mapping parses the indentation-structured mapping language into an ordered forest of declaration nodes.
//
// A mapping file looks like this:
//
//	@prefix:      (db, http://bio2rdf.org/drugbank_vocabulary:)
//	@type:        (Drug, db:Drug)
//	name:         /dcterms:title
//	cost:         /db:product
//	    @type:        DrugCost
//	    costPerUnit:  /db:price
//	    costCurrency: USD
package mapping

import (
	"strings"

	"github.com/samber/lo"
)

// Kind represents mapping node kind
type Kind uint8

const (
	PathProjection Kind = iota
	LiteralValue
	NestedObject
	PrefixDirective
	TypeDirective
)

// String returns readable name of the kind
func (k Kind) String() string {
	switch k {
	case PathProjection:
		return "PathProjection"
	case LiteralValue:
		return "LiteralValue"
	case NestedObject:
		return "NestedObject"
	case PrefixDirective:
		return "PrefixDirective"
	case TypeDirective:
		return "TypeDirective"
	}
	return "Unknown"
}

// IsDirective returns true if kind is one of the @ directives
func (k Kind) IsDirective() bool {
	return k == PrefixDirective || k == TypeDirective
}

// Reserved directive keys
const (
	TypeKey   = "@type"
	PrefixKey = "@prefix"
)

// TypeAnnotation represents declared output type of a scope.
//
// SourceName is set only for the paired form (declared name, source vocabulary name).
type TypeAnnotation struct {
	Name       string
	SourceName string
}

// IsPaired returns true if annotation was declared as (declared name, source vocabulary name) pair
func (t TypeAnnotation) IsPaired() bool {
	return t.SourceName != ""
}

// Path represents parsed path expression such as /clinical_study/sponsors/lead_sponsor
type Path struct {
	Raw      string   // As written in the mapping, with leading slash
	Segments []string // Non-empty segments, "." for the current node
}

// IsSelf returns true if path only refers to the current node (/.)
func (p Path) IsSelf() bool {
	return lo.EveryBy(p.Segments, func(segment string) bool { return segment == "." })
}

// Steps returns path segments without "." steps
func (p Path) Steps() []string {
	return lo.Reject(p.Segments, func(segment string, _ int) bool { return segment == "." })
}

// Prefixes returns namespace prefixes used by path segments in order of first appearance
func (p Path) Prefixes() []string {
	prefixes := lo.FilterMap(p.Segments, func(segment string, _ int) (string, bool) {
		prefix, _, found := strings.Cut(segment, ":")
		return prefix, found
	})
	return lo.Uniq(prefixes)
}

// String returns path as written in the mapping
func (p Path) String() string {
	return p.Raw
}

// Node represents one parsed declaration (property, directive or nested block)
type Node struct {
	Key      string
	Kind     Kind
	Path     Path            // Set for PathProjection and NestedObject
	Literal  string          // Set for LiteralValue and the single-name TypeDirective
	Args     [2]string       // Directive tuple arguments
	Type     *TypeAnnotation // Declared output type of a NestedObject scope
	Children []int           // Arena indexes of child nodes in declaration order
	Parent   int             // Arena index of parent node or -1 for roots
	Depth    int
	Line     int
}

// Forest represents ordered forest of mapping nodes stored in an arena.
//
// Nodes refer to each other by index, roots are top level declarations in order.
type Forest struct {
	Nodes []Node
	Roots []int
	Type  *TypeAnnotation // Declared output type of the root scope
}

// Node returns pointer to the node at <idx>
func (f *Forest) Node(idx int) *Node {
	return &f.Nodes[idx]
}

// ChildrenOf returns children of the node at <idx>, or roots if <idx> is negative
func (f *Forest) ChildrenOf(idx int) []int {
	if idx < 0 {
		return f.Roots
	}
	return f.Nodes[idx].Children
}

// TypeOf returns type annotation of the scope opened by node at <idx>, or root scope type if <idx> is negative
func (f *Forest) TypeOf(idx int) *TypeAnnotation {
	if idx < 0 {
		return f.Type
	}
	return f.Nodes[idx].Type
}

// Len returns amount of nodes in the forest
func (f *Forest) Len() int {
	return len(f.Nodes)
}
