package doctree

import "strings"

// Kind tags the variant of a DocNode.
type Kind int

const (
	KindOther Kind = iota
	KindHeading
	KindText
	KindInlineCode
)

func (k Kind) String() string {
	switch k {
	case KindHeading:
		return "heading"
	case KindText:
		return "text"
	case KindInlineCode:
		return "inline_code"
	default:
		return "other"
	}
}

// Keys used in the Attributes and Data bags.
const (
	AttrID = "id"
	DataID = "id"
)

// DocTree is the root of a parsed document.
type DocTree struct {
	Title       string         // Document title (from frontmatter, metadata or filename)
	Frontmatter map[string]any // Parsed frontmatter, nil if the source had none
	Children    []*DocNode
}

// DocNode is a node in the document tree.
type DocNode struct {
	Kind     Kind
	Level    int    // Heading level 1-6, 0 for other kinds
	Value    string // Literal content of text and inline code nodes
	Children []*DocNode

	// Attributes is the rendering bag, consumed when emitting markup.
	Attributes map[string]string
	// Data holds metadata for later transforms.
	Data map[string]string
}

// NewHeading returns a heading node with the given children.
func NewHeading(level int, children ...*DocNode) *DocNode {
	return &DocNode{Kind: KindHeading, Level: level, Children: children}
}

// NewText returns a text node.
func NewText(value string) *DocNode {
	return &DocNode{Kind: KindText, Value: value}
}

// NewInlineCode returns an inline code node.
func NewInlineCode(value string) *DocNode {
	return &DocNode{Kind: KindInlineCode, Value: value}
}

// NewOther returns a node of any other kind with the given children.
func NewOther(children ...*DocNode) *DocNode {
	return &DocNode{Kind: KindOther, Children: children}
}

// SetAttribute writes a rendering attribute, creating the bag on first write.
func (n *DocNode) SetAttribute(key, value string) {
	if n.Attributes == nil {
		n.Attributes = make(map[string]string)
	}
	n.Attributes[key] = value
}

// SetData writes a metadata value, creating the bag on first write.
func (n *DocNode) SetData(key, value string) {
	if n.Data == nil {
		n.Data = make(map[string]string)
	}
	n.Data[key] = value
}

// ID returns the anchor id assigned to the node, or "".
func (n *DocNode) ID() string {
	if n.Attributes == nil {
		return ""
	}
	return n.Attributes[AttrID]
}

// Walk visits every node of the tree in document pre-order.
func Walk(tree *DocTree, fn func(*DocNode)) {
	if tree == nil {
		return
	}
	for _, child := range tree.Children {
		walk(child, fn)
	}
}

func walk(n *DocNode, fn func(*DocNode)) {
	fn(n)
	for _, child := range n.Children {
		walk(child, fn)
	}
}

// Headings returns all heading nodes in document order.
func Headings(tree *DocTree) []*DocNode {
	var out []*DocNode
	Walk(tree, func(n *DocNode) {
		if n.Kind == KindHeading {
			out = append(out, n)
		}
	})
	return out
}

// TextContent returns the text of n and all of its descendants.
func TextContent(n *DocNode) string {
	var sb strings.Builder
	walk(n, func(d *DocNode) {
		if d.Kind == KindText || d.Kind == KindInlineCode {
			sb.WriteString(d.Value)
		}
	})
	return strings.TrimSpace(sb.String())
}
