// Package slug turns heading text into URL-safe anchor identifiers.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fallback is emitted when text yields no URL-safe characters.
const Fallback = "section"

// combiningMarks is the Combining Diacritical Marks block.
var combiningMarks = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize decomposes s (NFD) and drops combining diacritical marks,
// so "seção" becomes "secao".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningMarks)))
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Make derives the base slug for s: normalized, lower-cased, every run of
// characters outside [a-z0-9] collapsed to one hyphen, hyphens trimmed.
// It never returns "".
func Make(s string) string {
	s = strings.ToLower(Normalize(s))
	s = nonSlug.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return Fallback
	}
	return s
}
