package translate

import (
	"schemaorg_pipeline/mapping"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Translate returns document emitted by <handler> for the mapping <text>.
//
// <handler> should be freshly constructed, see Compile.
func Translate(handler Handler, text string) (string, error) {
	forest, err := mapping.Parse(text)
	if err != nil {
		return "", errors.Wrap(err, "Parse mapping")
	}
	if err := Walk(forest, handler); err != nil {
		return "", errors.Wrap(err, "Translate mapping")
	}
	doc, err := handler.Document()
	if err != nil {
		return "", errors.Wrap(err, "Build document")
	}
	return doc, nil
}

// Compile returns document emitted by a new handler from <factory> for the mapping <text>
func Compile(factory Factory, text string) (string, error) {
	return Translate(factory(), text)
}

// Walk sends events of <forest> to <handler> in pre-order.
//
// In every scope @prefix directives come first, then the scope type, then properties in declaration order.
func Walk(forest mapping.Forest, handler Handler) error {
	w := walker{forest: forest, handler: handler}
	scope := w.forest.Roots

	if err := w.prefixes(scope); err != nil {
		return err
	}
	if forest.Type != nil {
		if err := handler.OnRootType(*forest.Type); err != nil {
			return errors.Wrapf(err, "Root %v", mapping.TypeKey)
		}
	}
	return w.properties(scope)
}

// walker holds the state of a single Walk call
type walker struct {
	forest  mapping.Forest
	handler Handler
}

// prefixes sends prefix declarations found among <scope> nodes
func (w walker) prefixes(scope []int) error {
	for _, idx := range lo.Filter(scope, w.isKind(mapping.PrefixDirective)) {
		node := w.forest.Node(idx)
		if err := w.handler.OnPrefixDeclaration(node.Args[0], node.Args[1]); err != nil {
			return errors.Wrapf(err, "Line %v", node.Line)
		}
	}
	return nil
}

// properties sends property events of <scope> nodes, descending into nested objects
func (w walker) properties(scope []int) error {
	for _, idx := range scope {
		node := w.forest.Node(idx)

		var err error
		switch node.Kind {
		case mapping.PathProjection:
			err = w.handler.OnPropertyPath(node.Key, node.Path)
		case mapping.LiteralValue:
			err = w.handler.OnPropertyLiteral(node.Key, node.Literal)
		case mapping.NestedObject:
			err = w.nested(node)
		}
		if err != nil {
			return errors.Wrapf(err, "Line %v", node.Line)
		}
	}
	return nil
}

// nested sends balanced start and end events around the children of <node>
func (w walker) nested(node *mapping.Node) error {
	if err := w.handler.OnNestedObjectStart(node.Key, node.Path, node.Type); err != nil {
		return err
	}
	if err := w.prefixes(node.Children); err != nil {
		return err
	}
	if err := w.properties(node.Children); err != nil {
		return err
	}
	return w.handler.OnNestedObjectEnd()
}

// isKind returns predicate for lo.Filter which is true for nodes of <kind>
func (w walker) isKind(kind mapping.Kind) func(int, int) bool {
	return func(idx int, _ int) bool {
		return w.forest.Nodes[idx].Kind == kind
	}
}
