// Package xslt realizes mapping events as an XSLT 1.0 stylesheet which turns a source XML document into an
// intermediate <instance> document.
package xslt

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"schemaorg_pipeline/mapping"
	"schemaorg_pipeline/translate"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

const (
	// Backend is the name of this backend in errors and configuration
	Backend = "xslt"
	// Namespace is the XSLT namespace IRI bound to the xsl prefix
	Namespace = "http://www.w3.org/1999/XSL/Transform"
	// RootElement is the name of the element wrapping every output document
	RootElement = "instance"
	// TypeAttr is the name of the attribute carrying declared type
	TypeAttr = "type"
)

// bodyIndent is the indentation level of the first element inside the output root
const bodyIndent = 3

// Handler represents translate.Handler emitting XSLT stylesheet
type Handler struct {
	body     strings.Builder
	open     []string
	nsOrder  []string
	ns       map[string]string
	used     []string
	rootType *mapping.TypeAnnotation
	opts     options
}

// New returns new Handler configured with <opts>
func New(opts ...Option) *Handler {
	h := &Handler{
		ns: map[string]string{"xsl": Namespace},
	}
	for _, opt := range opts {
		opt(&h.opts)
	}
	// Configured prefixes never override xsl or each other
	for _, p := range h.opts.prefixes {
		if _, found := h.ns[p[0]]; !found {
			h.ns[p[0]] = p[1]
			h.nsOrder = append(h.nsOrder, p[0])
		}
	}
	return h
}

// Factory returns new Handler as translate.Handler
func Factory() translate.Handler {
	return New()
}

// OnPrefixDeclaration collects namespace declaration to emit on the stylesheet root
func (h *Handler) OnPrefixDeclaration(prefix, iri string) error {
	if prev, ok := h.ns[prefix]; ok {
		if prev == iri {
			return nil
		}
		return translate.UnsupportedDirectiveError{
			Backend:   Backend,
			Directive: fmt.Sprintf("%v (%v, %v)", mapping.PrefixKey, prefix, iri),
			Reason:    fmt.Sprintf("prefix is already bound to %v", prev),
		}
	}
	h.ns[prefix] = iri
	h.nsOrder = append(h.nsOrder, prefix)
	return nil
}

// OnRootType sets type attribute of the output root element
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

// OnPropertyPath emits one <property> element per node matched by <path>
func (h *Handler) OnPropertyPath(property string, path mapping.Path) error {
	h.use(path)
	h.line(fmt.Sprintf(`<xsl:for-each select="%v">`, escape(selectExpr(path))), 0)
	h.line(fmt.Sprintf(`<%v><xsl:value-of select="."/></%v>`, property, property), 1)
	h.line("</xsl:for-each>", 0)
	return nil
}

// OnPropertyLiteral emits constant <property> element
func (h *Handler) OnPropertyLiteral(property, literal string) error {
	h.line(fmt.Sprintf("<%v>%v</%v>", property, escape(literal), property), 0)
	return nil
}

// OnNestedObjectStart opens iteration over <path> and <property> element for each matched node
func (h *Handler) OnNestedObjectStart(property string, path mapping.Path, t *mapping.TypeAnnotation) error {
	h.use(path)
	h.line(fmt.Sprintf(`<xsl:for-each select="%v">`, escape(selectExpr(path))), 0)
	if t != nil {
		h.line(fmt.Sprintf(`<%v %v="%v">`, property, TypeAttr, escape(t.Name)), 1)
	} else {
		h.line(fmt.Sprintf("<%v>", property), 1)
	}
	h.open = append(h.open, property)
	return nil
}

// OnNestedObjectEnd closes element and iteration opened by the last OnNestedObjectStart
func (h *Handler) OnNestedObjectEnd() error {
	if len(h.open) == 0 {
		return errors.New("Nested object end without start")
	}
	property := h.open[len(h.open)-1]
	h.open = h.open[:len(h.open)-1]
	h.line(fmt.Sprintf("</%v>", property), 1)
	h.line("</xsl:for-each>", 0)
	return nil
}

// Document returns complete stylesheet
func (h *Handler) Document() (string, error) {
	if len(h.open) > 0 {
		return "", errors.Newf("Nested objects are not closed: %v", strings.Join(h.open, ", "))
	}

	if h.opts.undeclared != nil {
		lo.ForEach(h.Undeclared(), func(prefix string, _ int) { h.opts.undeclared(prefix) })
	}

	var out strings.Builder
	out.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")

	decls := lo.Map(append([]string{"xsl"}, h.nsOrder...), func(prefix string, _ int) string {
		return fmt.Sprintf(`xmlns:%v="%v"`, prefix, escape(h.ns[prefix]))
	})
	out.WriteString(fmt.Sprintf(`<xsl:stylesheet version="1.0" %v>`, strings.Join(decls, " ")) + "\n")
	out.WriteString(`  <xsl:output method="xml" indent="yes" encoding="UTF-8"/>` + "\n")
	out.WriteString(`  <xsl:template match="/">` + "\n")
	if h.rootType != nil {
		out.WriteString(fmt.Sprintf(`    <%v %v="%v">`, RootElement, TypeAttr, escape(h.rootType.Name)) + "\n")
	} else {
		out.WriteString(fmt.Sprintf("    <%v>", RootElement) + "\n")
	}
	out.WriteString(h.body.String())
	out.WriteString(fmt.Sprintf("    </%v>", RootElement) + "\n")
	out.WriteString("  </xsl:template>\n")
	out.WriteString("</xsl:stylesheet>\n")

	return out.String(), nil
}

// Undeclared returns prefixes used in path expressions which have no namespace bound, in order of first use
func (h *Handler) Undeclared() []string {
	return lo.Filter(h.used, func(prefix string, _ int) bool {
		_, found := h.ns[prefix]
		return !found
	})
}

// use records namespace prefixes of <path>
func (h *Handler) use(path mapping.Path) {
	h.used = lo.Uniq(append(h.used, path.Prefixes()...))
}

// line appends <text> to the body, indented by the nesting level plus <extra> levels
func (h *Handler) line(text string, extra int) {
	level := bodyIndent + len(h.open)*2 + extra
	h.body.WriteString(strings.Repeat("  ", level))
	h.body.WriteString(text)
	h.body.WriteString("\n")
}

// selectExpr returns XPath expression of <path> relative to the current context node
func selectExpr(path mapping.Path) string {
	if path.IsSelf() {
		return "."
	}
	return strings.Join(path.Segments, "/")
}

// escape returns <text> with XML special characters replaced by entities
func escape(text string) string {
	var buf bytes.Buffer
	// Writes to bytes.Buffer never fail
	_ = xml.EscapeText(&buf, []byte(text))
	return buf.String()
}
