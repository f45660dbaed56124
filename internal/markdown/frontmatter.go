package markdown

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document opened a YAML
// frontmatter block but never closed it.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// SplitFrontmatter separates `---` delimited YAML frontmatter from the
// Markdown body. Without frontmatter, fm is nil and body is src.
func SplitFrontmatter(src []byte) (fm map[string]any, body []byte, err error) {
	nl := "\n"
	switch {
	case bytes.HasPrefix(src, []byte("---\r\n")):
		nl = "\r\n"
	case bytes.HasPrefix(src, []byte("---\n")):
	default:
		return nil, src, nil
	}

	rest := src[len("---")+len(nl):]
	closeLine := []byte("---" + nl)

	var raw []byte
	switch {
	case bytes.HasPrefix(rest, closeLine):
		body = rest[len(closeLine):]
	case bytes.Equal(rest, []byte("---")):
		body = nil
	default:
		closeSeq := []byte(nl + "---" + nl)
		if idx := bytes.Index(rest, closeSeq); idx >= 0 {
			raw = rest[:idx+len(nl)]
			body = rest[idx+len(closeSeq):]
		} else if bytes.HasSuffix(rest, []byte(nl+"---")) {
			raw = rest[:len(rest)-len("---")]
			body = nil
		} else {
			return nil, nil, ErrMissingClosingDelimiter
		}
	}

	fm = map[string]any{}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := yaml.Unmarshal(raw, &fm); err != nil {
			return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
		}
		if fm == nil {
			fm = map[string]any{}
		}
	}
	return fm, body, nil
}

// Title returns the string "title" field of fm, or "".
func Title(fm map[string]any) string {
	t, _ := fm["title"].(string)
	return t
}
