package parser

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"

	"github.com/dgallion1/headslug/internal/doctree"
)

// maxHeadingLevel caps outline depth to the HTML heading range.
const maxHeadingLevel = 6

// PDFParser handles PDF files. The document outline (bookmarks) supplies the
// headings; without one each page becomes a "Page N" heading. It tries the
// Go library first, then falls back to pdftotext if enabled.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "headslug-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	tree := &doctree.DocTree{
		Title: titleFromFilename(filename),
	}

	outline, pages, err := readPDF(tmpPath)
	if err != nil && p.FallbackPdftotext {
		var text string
		text, err = extractPdftotext(tmpPath)
		pages = splitPages(text)
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf: %w", err)
	}

	if len(outline.Child) > 0 {
		tree.Children = outlineNodes(outline.Child, 1)
	} else {
		tree.Children = pageNodes(pages)
	}

	return &Document{Tree: tree, Format: FormatPDF}, nil
}

// readPDF returns the outline and the plain text of each page.
func readPDF(path string) (outline pdflib.Outline, pages []string, err error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return outline, nil, err
	}
	defer f.Close()

	outline = reader.Outline()

	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return outline, pages, nil
}

// outlineNodes flattens the outline into headings in document order,
// nesting depth becoming heading level.
func outlineNodes(items []pdflib.Outline, depth int) []*doctree.DocNode {
	level := min(depth, maxHeadingLevel)
	var out []*doctree.DocNode
	for _, item := range items {
		out = append(out, doctree.NewHeading(level, doctree.NewText(item.Title)))
		out = append(out, outlineNodes(item.Child, depth+1)...)
	}
	return out
}

func pageNodes(pages []string) []*doctree.DocNode {
	var out []*doctree.DocNode
	for i, page := range pages {
		page = strings.TrimSpace(page)
		if page == "" {
			continue
		}
		out = append(out,
			doctree.NewHeading(1, doctree.NewText(fmt.Sprintf("Page %d", i+1))),
			doctree.NewOther(doctree.NewText(page)),
		)
	}
	return out
}

func extractPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}

func splitPages(text string) []string {
	return strings.Split(text, "\f")
}
