package markdown

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/dgallion1/headslug/internal/doctree"
	"github.com/dgallion1/headslug/internal/headingid"
)

var treeKey = parser.NewContextKey()

// headingIDTransformer assigns heading ids after parsing.
type headingIDTransformer struct{}

func (t *headingIDTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	tree, bindings := FromAST(node, reader.Source())
	headingid.Assign(tree)
	Apply(bindings)
	pc.Set(treeKey, tree)
}

// HeadingIDExtension is a goldmark extension that gives every heading a
// unique slug id.
type HeadingIDExtension struct{}

func (e *HeadingIDExtension) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&headingIDTransformer{}, 100),
	))
}

// NewExtension creates the heading id extension.
func NewExtension() goldmark.Extender {
	return &HeadingIDExtension{}
}

// TreeFromContext returns the document tree built by the extension during
// parsing, or nil when the extension did not run.
func TreeFromContext(pc parser.Context) *doctree.DocTree {
	tree, _ := pc.Get(treeKey).(*doctree.DocTree)
	return tree
}

// New returns a goldmark instance with GFM enabled. Raw HTML in the source
// is only passed through when unsafe is set.
func New(unsafe bool, extenders ...goldmark.Extender) goldmark.Markdown {
	var rendererOpts []renderer.Option
	if unsafe {
		rendererOpts = append(rendererOpts, html.WithUnsafe())
	}
	return goldmark.New(
		goldmark.WithExtensions(append([]goldmark.Extender{extension.GFM}, extenders...)...),
		goldmark.WithRendererOptions(rendererOpts...),
	)
}
