// Package toc builds tables of contents from a document tree whose headings
// already carry ids.
package toc

import (
	"github.com/dgallion1/headslug/internal/doctree"
)

// Entry is one heading in document order.
type Entry struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
	Slug  string `json:"slug"`
}

// Item is a node of the nested table of contents.
type Item struct {
	Entry
	Breadcrumb []string `json:"breadcrumb"` // Slugs of the enclosing headings, outermost first
	Children   []*Item  `json:"children,omitempty"`
}

// Entries lists every heading of tree in document order. Text is the full
// text content of the heading, including nested inline elements.
func Entries(tree *doctree.DocTree) []Entry {
	var out []Entry
	for _, h := range doctree.Headings(tree) {
		out = append(out, Entry{
			Level: h.Level,
			Text:  doctree.TextContent(h),
			Slug:  h.ID(),
		})
	}
	return out
}

// Build nests entries by level. An entry becomes a child of the nearest
// preceding entry with a lower level; skipped levels are not padded.
func Build(entries []Entry) []*Item {
	type stackEntry struct {
		item  *Item
		level int
	}

	// Root is level 0, all headings nest under it.
	root := &Item{}
	stack := []stackEntry{{item: root, level: 0}}

	for _, e := range entries {
		// Pop stack until we find a parent with lower level.
		for len(stack) > 1 && stack[len(stack)-1].level >= e.Level {
			stack = stack[:len(stack)-1]
		}

		breadcrumb := make([]string, 0, len(stack)-1)
		for _, s := range stack[1:] {
			breadcrumb = append(breadcrumb, s.item.Slug)
		}

		item := &Item{Entry: e, Breadcrumb: breadcrumb}
		parent := stack[len(stack)-1].item
		parent.Children = append(parent.Children, item)
		stack = append(stack, stackEntry{item: item, level: e.Level})
	}

	return root.Children
}
