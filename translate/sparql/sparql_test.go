package sparql

import (
	"regexp"
	"strings"
	"testing"

	"schemaorg_pipeline/mapping"
	"schemaorg_pipeline/translate"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

var varRx = regexp.MustCompile(`\?[A-Za-z_][A-Za-z0-9_]*`)

// clauses returns CONSTRUCT and WHERE clauses of <query>
func clauses(query string) (construct, where string) {
	_, rest, _ := strings.Cut(query, "CONSTRUCT {")
	construct, where, _ = strings.Cut(rest, "WHERE {")
	return
}

func TestTranslate(t *testing.T) {
	text := `@type:   (Drug, db:Drug)
name:    /dcterms:title
cost:    /db:product
    @type:        DrugCost
    costPerUnit:  /db:price
    costCurrency: USD`

	h := New(WithPrefix("db", "http://bio2rdf.org/drugbank_vocabulary:"),
		WithPrefix("dcterms", "http://purl.org/dc/terms/"))
	query, err := translate.Translate(h, text)
	assert.NoError(t, err, "should translate mapping")

	expected := `PREFIX schema: <http://schema.org/>
PREFIX rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#>
PREFIX db: <http://bio2rdf.org/drugbank_vocabulary:>
PREFIX dcterms: <http://purl.org/dc/terms/>

CONSTRUCT {
  ?subject rdf:type schema:Drug .
  ?subject schema:name ?name_1 .
  ?subject schema:cost ?cost_1 .
  ?cost_1 rdf:type schema:DrugCost .
  ?cost_1 schema:costPerUnit ?costPerUnit_1 .
  ?cost_1 schema:costCurrency "USD" .
}
WHERE {
  ?subject rdf:type db:Drug .
  OPTIONAL { ?subject dcterms:title ?name_1 . }
  OPTIONAL {
    ?subject db:product ?cost_1 .
    OPTIONAL { ?cost_1 db:price ?costPerUnit_1 . }
  }
}
`
	assert.Exactly(t, expected, query, "should produce this query")
}

func TestTranslateDistinctVariables(t *testing.T) {
	text := `@prefix:  (ct, http://clinicaltrials.gov/schema/)
sponsor:  /ct:lead_sponsor
    name:  /ct:agency
sponsor:  /ct:collaborator
    name:  /ct:agency
    alias-name: /ct:agency_alias`

	query, err := translate.Translate(New(), text)
	assert.NoError(t, err, "should translate mapping")

	construct, where := clauses(query)
	assert.Contains(t, construct, "?subject schema:sponsor ?sponsor_1 .", "should bind first sponsor")
	assert.Contains(t, construct, "?subject schema:sponsor ?sponsor_2 .", "should bind second sponsor")
	assert.Contains(t, construct, "?sponsor_1 schema:name ?name_1 .", "should bind name of first sponsor")
	assert.Contains(t, construct, "?sponsor_2 schema:name ?name_2 .", "should bind name of second sponsor")
	assert.Contains(t, construct, "?sponsor_2 schema:alias-name ?alias_name_1 .",
		"should sanitize variable name but keep property name")

	vars := lo.Uniq(varRx.FindAllString(query, -1))
	bound := lo.Filter(vars, func(v string, _ int) bool {
		return strings.Contains(where, " "+v+" .") || strings.Contains(where, "AS "+v+")")
	})
	assert.Exactly(t, []string{"?subject"}, lo.Without(vars, bound...), "should have the only unbound variable")
}

func TestTranslatePrefixOnce(t *testing.T) {
	text := `@prefix:  (db, http://bio2rdf.org/drugbank_vocabulary:)
name:     /db:name
brand:    /db:brand
    @prefix:  (db, http://bio2rdf.org/drugbank_vocabulary:)
    name:     /db:title`

	query, err := translate.Translate(New(WithPrefix("db", "http://bio2rdf.org/drugbank_vocabulary:")), text)
	assert.NoError(t, err, "should translate mapping")
	assert.Exactly(t, 1, strings.Count(query, "PREFIX db:"), "should declare prefix once")
	assert.Exactly(t, 1, strings.Count(query, "PREFIX schema:"), "should always declare schema prefix")
	assert.Exactly(t, 1, strings.Count(query, "PREFIX rdf:"), "should always declare rdf prefix")
}

func TestTranslateConflictingPrefix(t *testing.T) {
	query, err := translate.Translate(New(WithPrefix("db", "http://a/")), "@prefix: (db, http://b/)")
	var unsupportedErr translate.UnsupportedDirectiveError
	assert.True(t, errors.As(err, &unsupportedErr), "should return UnsupportedDirectiveError")
	assert.Exactly(t, Backend, unsupportedErr.Backend, "should name the backend")
	assert.Exactly(t, "", query, "should not return partial output")

	_, err = translate.Translate(New(), "@prefix: (schema, http://example.org/)")
	assert.True(t, errors.As(err, &unsupportedErr), "should not allow to rebind schema prefix")
}

func TestTranslateInstanceType(t *testing.T) {
	h := New(WithInstanceType("http://bio2rdf.org/drugbank_vocabulary:Drug"))
	query, err := translate.Translate(h, "@type: Drug\n@prefix: (dcterms, http://purl.org/dc/terms/)\nname: /dcterms:title")
	assert.NoError(t, err, "should translate mapping")

	construct, where := clauses(query)
	assert.Contains(t, construct, "?subject rdf:type schema:Drug .", "should construct declared type")
	assert.Contains(t, where, "?subject rdf:type <http://bio2rdf.org/drugbank_vocabulary:Drug> .",
		"should constrain subject with configured instance type")

	h = New(WithInstanceType("db:Other"))
	query, err = translate.Translate(h, "@type: (Drug, db:Drug)")
	assert.NoError(t, err, "should translate mapping")
	_, where = clauses(query)
	assert.Contains(t, where, "?subject rdf:type db:Drug .", "paired type should take precedence")
	assert.NotContains(t, where, "db:Other", "should not use configured instance type")

	query, err = translate.Translate(New(), "@type: Drug")
	assert.NoError(t, err, "should translate mapping")
	_, where = clauses(query)
	assert.Exactly(t, "\n}\n", where, "should not constrain subject without source type")
}

func TestTranslateNestedPairedType(t *testing.T) {
	text := `manufacturer: /db:manufacturer
    @type:  (Organization, db:Manufacturer)
    name:   /.`

	query, err := translate.Translate(New(), text)
	assert.NoError(t, err, "should translate mapping")

	construct, where := clauses(query)
	assert.Contains(t, construct, "?manufacturer_1 rdf:type schema:Organization .", "should construct nested type")
	assert.Contains(t, where, "    ?manufacturer_1 rdf:type db:Manufacturer .\n",
		"should constrain nested subject inside its block")
	assert.Exactly(t, `
  OPTIONAL {
    ?subject db:manufacturer ?manufacturer_1 .
    ?manufacturer_1 rdf:type db:Manufacturer .
    BIND(?manufacturer_1 AS ?name_1)
  }
}
`, where, "should bind current node in the group binding nested subject")
}

func TestTranslateSelfNested(t *testing.T) {
	text := `identifier: /.
    @type:  PropertyValue
    value:  /db:id
    name:   /.
drug:       /.
    @type:  (Drug, db:Drug)
    name:   /.`

	query, err := translate.Translate(New(), text)
	assert.NoError(t, err, "should translate mapping")

	construct, where := clauses(query)
	assert.Exactly(t, `
  ?subject schema:identifier ?identifier_1 .
  ?identifier_1 rdf:type schema:PropertyValue .
  ?identifier_1 schema:value ?value_1 .
  ?identifier_1 schema:name ?name_1 .
  ?subject schema:drug ?drug_1 .
  ?drug_1 rdf:type schema:Drug .
  ?drug_1 schema:name ?name_2 .
}
`, construct, "should construct nested objects of current node")
	assert.Exactly(t, `
  BIND(?subject AS ?identifier_1)
  OPTIONAL { ?identifier_1 db:id ?value_1 . }
  BIND(?identifier_1 AS ?name_1)
  OPTIONAL {
    ?subject rdf:type db:Drug .
    BIND(?subject AS ?drug_1)
    BIND(?drug_1 AS ?name_2)
  }
}
`, where, "should bind every variable after its subject in the same group")
}

func TestTranslatePrefixedType(t *testing.T) {
	text := `@type:  schema:Drug
cost:   /db:product
    @type:  http://schema.org/DrugCost`

	query, err := translate.Translate(New(), text)
	assert.NoError(t, err, "should translate mapping")

	construct, _ := clauses(query)
	assert.Contains(t, construct, "?subject rdf:type schema:Drug .", "should keep prefixed type name")
	assert.Contains(t, construct, "?cost_1 rdf:type <http://schema.org/DrugCost> .", "should keep type IRI")
	assert.NotContains(t, construct, "schema:schema:", "should not prefix type twice")
}

func TestTranslateLiteral(t *testing.T) {
	query, err := translate.Translate(New(), `note: "He said "hi" \ left"`)
	assert.NoError(t, err, "should translate mapping")
	assert.Contains(t, query, `?subject schema:note "He said \"hi\" \\ left" .`, "should escape literal")

	_, where := clauses(query)
	assert.Exactly(t, "\n}\n", where, "literal should not add WHERE patterns")
}

func TestTranslateUnprefixedSegment(t *testing.T) {
	_, err := translate.Translate(New(), "name: /title")
	var unsupportedErr translate.UnsupportedDirectiveError
	assert.True(t, errors.As(err, &unsupportedErr), "should reject segment without namespace prefix")
}

func TestFactory(t *testing.T) {
	factory := NewFactory(WithPrefix("db", "http://bio2rdf.org/drugbank_vocabulary:"), WithInstanceType("db:Drug"))

	h1 := factory().(*Handler)
	h1.opts.Prefixes[0].IRI = "http://changed/"
	h2 := factory().(*Handler)
	assert.Exactly(t, "http://bio2rdf.org/drugbank_vocabulary:", h2.opts.Prefixes[0].IRI,
		"handlers should not share configuration")
	assert.Exactly(t, "db:Drug", h2.opts.InstanceType, "should keep instance type")

	text := "@type: Drug\nname: /db:name\nname: /db:synonym"
	q1, err := translate.Compile(factory, text)
	assert.NoError(t, err, "should compile mapping")
	q2, err := translate.Compile(factory, text)
	assert.NoError(t, err, "should compile mapping")
	assert.Exactly(t, q1, q2, "should be deterministic with fresh handlers")
	assert.Contains(t, q2, "?name_2", "should count variables per handler")
	assert.NotContains(t, q2, "?name_3", "should not carry counters between handlers")
}

func TestHandlerMisuse(t *testing.T) {
	h := New()
	assert.Error(t, h.OnNestedObjectEnd(), "should reject end without start")

	path := mapping.Path{Raw: "/db:a", Segments: []string{"db:a"}}
	assert.NoError(t, h.OnNestedObjectStart("cost", path, nil), "should open nested object")
	_, err := h.Document()
	assert.Error(t, err, "should reject unbalanced document")

	assert.NoError(t, h.OnRootType(mapping.TypeAnnotation{Name: "Drug"}), "should set root type")
	assert.Error(t, h.OnRootType(mapping.TypeAnnotation{Name: "Other"}), "should reject second root type")
}
