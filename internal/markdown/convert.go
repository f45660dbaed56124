package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/headslug/internal/doctree"
)

// Binding pairs a heading in the document tree with the goldmark node it
// was converted from.
type Binding struct {
	Node    *doctree.DocNode
	Heading *ast.Heading
}

// FromAST converts a goldmark AST into a document tree. Every goldmark node
// is represented; headings are additionally returned as bindings in
// document order.
func FromAST(root ast.Node, src []byte) (*doctree.DocTree, []Binding) {
	tree := &doctree.DocTree{}
	var bindings []Binding

	var convert func(n ast.Node) *doctree.DocNode
	convert = func(n ast.Node) *doctree.DocNode {
		switch node := n.(type) {
		case *ast.Text:
			return doctree.NewText(textValue(node, src))
		case *ast.String:
			return doctree.NewText(string(node.Value))
		case *ast.CodeSpan:
			return doctree.NewInlineCode(codeSpanText(node, src))
		case *ast.Heading:
			dn := doctree.NewHeading(node.Level)
			bindings = append(bindings, Binding{Node: dn, Heading: node})
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				dn.Children = append(dn.Children, convert(c))
			}
			return dn
		default:
			dn := doctree.NewOther()
			for c := n.FirstChild(); c != nil; c = c.NextSibling() {
				dn.Children = append(dn.Children, convert(c))
			}
			return dn
		}
	}

	for c := root.FirstChild(); c != nil; c = c.NextSibling() {
		tree.Children = append(tree.Children, convert(c))
	}
	return tree, bindings
}

// textValue returns the literal text of a node as the HTML renderer would
// print it: backslash escapes and entity references are resolved and a line
// break becomes "\n". Raw segments are left alone.
func textValue(n *ast.Text, src []byte) string {
	v := n.Segment.Value(src)
	if !n.IsRaw() {
		v = util.UnescapePunctuations(v)
		v = util.ResolveNumericReferences(v)
		v = util.ResolveEntityNames(v)
	}
	s := string(v)
	if n.SoftLineBreak() || n.HardLineBreak() {
		s += "\n"
	}
	return s
}

// codeSpanText gets the literal content of an inline code span.
func codeSpanText(n *ast.CodeSpan, src []byte) string {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return buf.String()
}

// Apply copies the ids assigned in the document tree onto the goldmark
// headings so the HTML renderer emits them.
func Apply(bindings []Binding) {
	for _, b := range bindings {
		if id := b.Node.ID(); id != "" {
			b.Heading.SetAttributeString("id", []byte(id))
		}
	}
}
