package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/headslug/internal/doctree"
)

// ErrUnsupportedFormat is returned for files with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported file extension")

// ErrNotRenderable is returned by Render for formats without markup output.
var ErrNotRenderable = errors.New("format cannot be rendered to html")

// Format names the source format of a document.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatDOCX     Format = "docx"
	FormatPDF      Format = "pdf"
)

// Parser converts raw document bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Document is a parsed document tree plus, for markup formats, a way to
// render it back out with the ids assigned in the tree.
type Document struct {
	Tree   *doctree.DocTree
	Format Format

	render func(w io.Writer) error
}

// Renderable reports whether Render produces HTML for this document.
func (d *Document) Renderable() bool {
	return d.render != nil
}

// Render writes the document as HTML. Ids present on heading nodes of the
// tree are copied onto the rendered heading elements.
func (d *Document) Render(w io.Writer) error {
	if d.render == nil {
		return fmt.Errorf("%s: %w", d.Format, ErrNotRenderable)
	}
	return d.render(w)
}

// Options tune parser behavior.
type Options struct {
	// UnsafeHTML passes raw HTML in Markdown through to the output.
	UnsafeHTML bool
	// PDFFallbackPdftotext shells out to pdftotext when the PDF library fails.
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".mdx":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown", ".mdx":
		return &MarkdownParser{UnsafeHTML: opts.UnsafeHTML}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// titleFromFilename strips the directory and extension.
func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
