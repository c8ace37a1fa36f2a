package mapping

import (
	"strings"

	"schemaorg_pipeline/util/parse"
	"schemaorg_pipeline/util/scan"

	"github.com/samber/lo"
)

// byteOrderMark is written by some editors at the start of UTF-8 files
const byteOrderMark = "\uFEFF"

// frame represents open indentation scope
type frame struct {
	width      int // Indentation width of the line which opened the scope
	node       int // Arena index of the node which opened the scope, -1 for the root scope
	childWidth int // Indentation width of the scope children, -1 until the first child is found
}

// parser holds the state of a single Parse call
type parser struct {
	forest Forest
	stack  []frame
}

// Parse parses mapping <text> into a Forest.
//
// Blank lines and lines starting with # are ignored. Returns ParseError on malformed input, never a partial forest.
func Parse(text string) (Forest, error) {
	p := parser{
		stack: []frame{{width: -1, node: -1, childWidth: 0}},
	}

	sc := scan.New([]rune(strings.TrimPrefix(text, byteOrderMark)), 0)
	for sc.Lines(true) {
		if err := p.line(sc.LineNo, sc.Line); err != nil {
			return Forest{}, err
		}
	}

	return p.forest, nil
}

// line parses single non-blank <line> with number <lineNo> and attaches it to the forest
func (p *parser) line(lineNo int, line string) error {
	content := strings.TrimSpace(line)
	if strings.HasPrefix(content, "#") {
		return nil
	}
	if parse.HasTabIndent(line) {
		return newParseError(lineNo, "tab character in indentation")
	}

	key, rawValue, found := strings.Cut(content, ":")
	if !found {
		return newParseError(lineNo, "missing ':' separator in %q", content)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return newParseError(lineNo, "missing key before ':'")
	}

	// Close every scope which is not shallower than this line
	width := parse.GetIndent(line)
	for len(p.stack) > 1 && p.top().width >= width {
		p.stack = p.stack[:len(p.stack)-1]
	}
	parent := p.top()
	switch {
	case parent.childWidth < 0:
		parent.childWidth = width
	case parent.childWidth != width:
		if parent.node < 0 {
			return newParseError(lineNo, "unexpected indentation of %v spaces at top level", width)
		}
		return newParseError(lineNo, "indentation of %v spaces does not match any open level (expected %v)",
			width, parent.childWidth)
	}

	if parent.node >= 0 {
		if err := p.openNested(lineNo, parent.node); err != nil {
			return err
		}
	}

	node, err := newNode(lineNo, key, rawValue, len(p.stack)-1, parent.node)
	if err != nil {
		return err
	}
	if node.Kind == TypeDirective {
		if err := p.attachType(lineNo, parent.node, node); err != nil {
			return err
		}
	}

	idx := len(p.forest.Nodes)
	p.forest.Nodes = append(p.forest.Nodes, node)
	if parent.node < 0 {
		p.forest.Roots = append(p.forest.Roots, idx)
	} else {
		p.forest.Nodes[parent.node].Children = append(p.forest.Nodes[parent.node].Children, idx)
	}
	p.stack = append(p.stack, frame{width: width, node: idx, childWidth: -1})

	return nil
}

// top returns pointer to the innermost open scope
func (p *parser) top() *frame {
	return &p.stack[len(p.stack)-1]
}

// openNested turns node at <idx> into a nested object because line <lineNo> is indented under it
func (p *parser) openNested(lineNo int, idx int) error {
	node := p.forest.Node(idx)
	switch node.Kind {
	case PathProjection, NestedObject:
		node.Kind = NestedObject
		return nil
	case LiteralValue:
		return newParseError(lineNo, "%q has a literal value and can not contain nested declarations (line %v)",
			node.Key, node.Line)
	}
	return newParseError(lineNo, "directive %v can not contain nested declarations (line %v)", node.Key, node.Line)
}

// attachType sets type annotation of <typeNode> to the scope opened by node at <scopeIdx> (root scope if negative)
func (p *parser) attachType(lineNo int, scopeIdx int, typeNode Node) error {
	siblings := p.forest.ChildrenOf(scopeIdx)
	if prevIdx, found := lo.Find(siblings, func(idx int) bool {
		return p.forest.Nodes[idx].Kind == TypeDirective
	}); found {
		return newParseError(lineNo, "%v is already declared for this scope at line %v", TypeKey,
			p.forest.Nodes[prevIdx].Line)
	}

	annotation := &TypeAnnotation{Name: typeNode.Literal}
	if typeNode.Literal == "" {
		annotation = &TypeAnnotation{Name: typeNode.Args[0], SourceName: typeNode.Args[1]}
	}
	if scopeIdx < 0 {
		p.forest.Type = annotation
	} else {
		p.forest.Nodes[scopeIdx].Type = annotation
	}
	return nil
}

// newNode returns node for <key> and <rawValue> found at <lineNo> with <depth> and <parent> index
func newNode(lineNo int, key, rawValue string, depth int, parent int) (Node, error) {
	val, err := parseValue(lineNo, rawValue)
	if err != nil {
		return Node{}, err
	}
	node := Node{Key: key, Parent: parent, Depth: depth, Line: lineNo}

	switch {
	case key == TypeKey:
		node.Kind = TypeDirective
		switch val.kind {
		case literalValue:
			if val.literal == "" {
				return Node{}, newParseError(lineNo, "%v expects a non-empty type name", key)
			}
			node.Literal = val.literal
		case tupleValue:
			node.Args = val.args
		default:
			return Node{}, newParseError(lineNo, "%v expects a type name or (name, source type name), got path %v",
				key, val.path)
		}
	case key == PrefixKey:
		node.Kind = PrefixDirective
		if val.kind != tupleValue {
			return Node{}, newParseError(lineNo, "%v expects (prefix, IRI)", key)
		}
		if !prefixRx.MatchString(val.args[0]) {
			return Node{}, newParseError(lineNo, "invalid namespace prefix %q", val.args[0])
		}
		node.Args = [2]string{val.args[0], strings.TrimSuffix(strings.TrimPrefix(val.args[1], "<"), ">")}
	case strings.HasPrefix(key, "@"):
		return Node{}, newParseError(lineNo, "unknown directive %v", key)
	case !propertyRx.MatchString(key):
		return Node{}, newParseError(lineNo, "invalid property name %q", key)
	default:
		switch val.kind {
		case pathValue:
			node.Kind = PathProjection
			node.Path = val.path
		case literalValue:
			node.Kind = LiteralValue
			node.Literal = val.literal
		case tupleValue:
			return Node{}, newParseError(lineNo, "directive argument tuple is not allowed for property %q", key)
		}
	}

	return node, nil
}
