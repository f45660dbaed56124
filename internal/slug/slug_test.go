package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_StripsDiacritics(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"seção", "secao"},
		{"Visão Geral", "Visao Geral"},
		{"Introdução", "Introducao"},
		{"crème brûlée", "creme brulee"},
		{"naïve résumé", "naive resume"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Seção 1", "secao-1"},
		{"Visão Geral", "visao-geral"},
		{"Hello, World!", "hello-world"},
		{"  leading and trailing  ", "leading-and-trailing"},
		{"multiple   spaces\tand\ttabs", "multiple-spaces-and-tabs"},
		{"--already-hyphenated--", "already-hyphenated"},
		{"snake_case_name", "snake-case-name"},
		{"Go 1.25 release", "go-1-25-release"},
		{"C++ & Rust", "c-rust"},
		{"İstanbul", "istanbul"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), "Make(%q)", tt.in)
	}
}

func TestMake_FallbackNeverEmpty(t *testing.T) {
	for _, in := range []string{"", "   ", "!!!", "日本語", "—"} {
		assert.Equal(t, Fallback, Make(in), "Make(%q)", in)
	}
}

func TestRegistry_FirstOccurrenceUnchanged(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "visao-geral", r.Slug("Visão Geral"))
	assert.Equal(t, "visao-geral-1", r.Slug("Visão Geral"))
	assert.Equal(t, "visao-geral-2", r.Slug("visao geral"))
}

func TestRegistry_SkipsTakenCandidates(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "intro", r.Unique("intro"))
	assert.Equal(t, "intro-1", r.Unique("intro-1"))
	assert.Equal(t, "intro-2", r.Unique("intro"))
	assert.Equal(t, "intro-1-1", r.Unique("intro-1"))
	assert.Equal(t, 4, r.Len())
}

func TestRegistry_FallbackDisambiguated(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, "section", r.Slug(""))
	assert.Equal(t, "section-1", r.Slug("???"))
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := NewRegistry()
	b := NewRegistry()
	assert.Equal(t, "introducao", a.Slug("Introdução"))
	assert.Equal(t, "introducao", b.Slug("Introdução"))
}
