package doctree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWalk_PreOrder(t *testing.T) {
	tree := &DocTree{
		Children: []*DocNode{
			NewHeading(1, NewText("A")),
			NewOther(
				NewHeading(2, NewText("B")),
				NewOther(NewHeading(3, NewText("C"))),
			),
			NewHeading(2, NewText("D")),
		},
	}

	var got []string
	for _, h := range Headings(tree) {
		got = append(got, TextContent(h))
	}
	assert.Equal(t, []string{"A", "B", "C", "D"}, got)
}

func TestWalk_NilTree(t *testing.T) {
	called := false
	Walk(nil, func(*DocNode) { called = true })
	assert.False(t, called)
}

func TestSetAttribute_CreatesBag(t *testing.T) {
	n := NewHeading(1)
	require.Nil(t, n.Attributes)
	require.Nil(t, n.Data)

	n.SetAttribute(AttrID, "intro")
	n.SetData(DataID, "intro")

	assert.Equal(t, "intro", n.ID())
	assert.Equal(t, "intro", n.Data[DataID])
}

func TestID_Empty(t *testing.T) {
	assert.Equal(t, "", NewHeading(2).ID())
}

func TestTextContent_Recursive(t *testing.T) {
	n := NewHeading(2,
		NewText("Using "),
		NewInlineCode("go test"),
		NewOther(NewText(" with flags")),
	)
	assert.Equal(t, "Using go test with flags", TextContent(n))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "heading", KindHeading.String())
	assert.Equal(t, "text", KindText.String())
	assert.Equal(t, "inline_code", KindInlineCode.String())
	assert.Equal(t, "other", KindOther.String())
}
