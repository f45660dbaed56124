// Package headingid assigns unique anchor ids to the headings of a document.
//
// Assign walks the tree in document order and, for every heading, derives a
// slug from the heading's text, disambiguates it against the slugs already
// emitted for the same document, and stores it in the node's rendering
// attributes and metadata under "id".
//
// Heading text is taken from the heading's direct text and inline code
// children only. Text nested inside links, emphasis or other inline
// elements is not collected, so "## [Install](#)" slugs to the fallback.
package headingid

import (
	"strings"

	"github.com/dgallion1/headslug/internal/doctree"
	"github.com/dgallion1/headslug/internal/slug"
)

// Assign sets a unique id on every heading in tree. Uniqueness state lives
// only for the duration of the call.
func Assign(tree *doctree.DocTree) {
	reg := slug.NewRegistry()
	doctree.Walk(tree, func(n *doctree.DocNode) {
		if n.Kind != doctree.KindHeading {
			return
		}
		assignOne(n, reg)
	})
}

func assignOne(n *doctree.DocNode, reg *slug.Registry) {
	id := reg.Slug(HeadingText(n))
	n.SetAttribute(doctree.AttrID, id)
	n.SetData(doctree.DataID, id)
}

// HeadingText concatenates the values of n's direct text and inline code
// children.
func HeadingText(n *doctree.DocNode) string {
	var sb strings.Builder
	for _, c := range n.Children {
		switch c.Kind {
		case doctree.KindText, doctree.KindInlineCode:
			sb.WriteString(c.Value)
		}
	}
	return sb.String()
}

// Slug returns the base slug for a single heading text, without
// disambiguation.
func Slug(text string) string {
	return slug.Make(text)
}
