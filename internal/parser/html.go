package parser

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/headslug/internal/doctree"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

type htmlBinding struct {
	node    *doctree.DocNode
	element *html.Node
}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*Document, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	tree := &doctree.DocTree{
		Title: titleFromFilename(filename),
	}

	// Extract title from <title> tag if present.
	if title := findTitle(doc); title != "" {
		tree.Title = title
	}

	var bindings []htmlBinding

	var convert func(*html.Node) *doctree.DocNode
	convert = func(n *html.Node) *doctree.DocNode {
		switch n.Type {
		case html.TextNode:
			return doctree.NewText(n.Data)
		case html.ElementNode:
			if level := headingLevel(n.Data); level > 0 {
				heading := doctree.NewHeading(level)
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.ElementNode && c.Data == "code" {
						heading.Children = append(heading.Children, doctree.NewInlineCode(rawText(c)))
						continue
					}
					heading.Children = append(heading.Children, convert(c))
				}
				bindings = append(bindings, htmlBinding{node: heading, element: n})
				return heading
			}
		}
		other := doctree.NewOther()
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			other.Children = append(other.Children, convert(c))
		}
		return other
	}

	// Find <body> or use whole document.
	root := findBody(doc)
	if root == nil {
		root = doc
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		tree.Children = append(tree.Children, convert(c))
	}

	return &Document{
		Tree:   tree,
		Format: FormatHTML,
		render: func(w io.Writer) error {
			for _, b := range bindings {
				if id := b.node.ID(); id != "" {
					setAttr(b.element, "id", id)
				}
			}
			if err := html.Render(w, doc); err != nil {
				return fmt.Errorf("render html: %w", err)
			}
			return nil
		},
	}, nil
}

func headingLevel(tag string) int {
	switch tag {
	case "h1":
		return 1
	case "h2":
		return 2
	case "h3":
		return 3
	case "h4":
		return 4
	case "h5":
		return 5
	case "h6":
		return 6
	}
	return 0
}

func setAttr(n *html.Node, key, val string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}

func textContent(n *html.Node) string {
	return strings.TrimSpace(rawText(n))
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
