package parser

import (
	"fmt"
	"io"

	"github.com/yuin/goldmark/text"

	"github.com/dgallion1/headslug/internal/markdown"
)

// MarkdownParser handles Markdown and MDX files using goldmark.
type MarkdownParser struct {
	UnsafeHTML bool
}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	fm, body, err := markdown.SplitFrontmatter(src)
	if err != nil {
		return nil, fmt.Errorf("split frontmatter: %w", err)
	}

	md := markdown.New(p.UnsafeHTML)
	root := md.Parser().Parse(text.NewReader(body))

	tree, bindings := markdown.FromAST(root, body)
	tree.Frontmatter = fm
	tree.Title = markdown.Title(fm)
	if tree.Title == "" {
		tree.Title = titleFromFilename(filename)
	}

	return &Document{
		Tree:   tree,
		Format: FormatMarkdown,
		render: func(w io.Writer) error {
			markdown.Apply(bindings)
			if err := md.Renderer().Render(w, body, root); err != nil {
				return fmt.Errorf("render markdown: %w", err)
			}
			return nil
		},
	}, nil
}
