package renderer

import (
	"testing"

	"github.com/conneroisu/glyph/internal/markup"
	"github.com/conneroisu/glyph/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		node     *types.AbstractNode
		extra    types.Attrs
		expected string
	}{
		{
			name: "svg with one path",
			node: &types.AbstractNode{
				Tag:   "svg",
				Attrs: types.A("viewBox", "0 0 24 24"),
				Children: []*types.AbstractNode{
					{Tag: "path", Attrs: types.A("d", "M1 1")},
				},
			},
			expected: `<svg viewBox="0 0 24 24"><path d="M1 1" /></svg>`,
		},
		{
			name:     "self-closing without attributes",
			node:     &types.AbstractNode{Tag: "path"},
			expected: `<path />`,
		},
		{
			name:     "empty children renders self-closing",
			node:     &types.AbstractNode{Tag: "g", Attrs: types.A("id", "x"), Children: []*types.AbstractNode{}},
			expected: `<g id="x" />`,
		},
		{
			name: "children concatenate in order",
			node: &types.AbstractNode{
				Tag: "svg",
				Children: []*types.AbstractNode{
					{Tag: "circle", Attrs: types.A("r", "1")},
					{Tag: "rect", Attrs: types.A("width", "2")},
					{Tag: "path", Attrs: types.A("d", "M3 3")},
				},
			},
			expected: `<svg><circle r="1" /><rect width="2" /><path d="M3 3" /></svg>`,
		},
		{
			name: "extra attributes override at root and append new keys",
			node: &types.AbstractNode{
				Tag:   "svg",
				Attrs: types.A("width", "24", "viewBox", "0 0 24 24"),
			},
			extra:    types.A("width", "1em", "height", "1em"),
			expected: `<svg width="1em" viewBox="0 0 24 24" height="1em" />`,
		},
		{
			name: "extra attributes never reach nested elements",
			node: &types.AbstractNode{
				Tag: "svg",
				Children: []*types.AbstractNode{
					{Tag: "svg", Attrs: types.A("x", "0")},
				},
			},
			extra:    types.A("focusable", "false"),
			expected: `<svg focusable="false"><svg x="0" /></svg>`,
		},
		{
			name:     "quotes and ampersands are escaped",
			node:     &types.AbstractNode{Tag: "text", Attrs: types.A("data-x", `a"b&c`)},
			expected: `<text data-x="a&quot;b&amp;c" />`,
		},
		{
			name:     "nil node",
			node:     nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Render(tt.node, tt.extra))
		})
	}
}

func TestRenderDoesNotMutateNode(t *testing.T) {
	node := &types.AbstractNode{Tag: "svg", Attrs: types.A("fill", "red")}

	out := Render(node, types.A("fill", "currentColor", "width", "1em"))

	assert.Equal(t, `<svg fill="currentColor" width="1em" />`, out)
	assert.Equal(t, types.A("fill", "red"), node.Attrs)
}

func TestRenderDefinition(t *testing.T) {
	def := &types.IconDefinition{
		Name: "dot",
		Type: "fill",
		Icon: &types.AbstractNode{Tag: "svg", Children: []*types.AbstractNode{{Tag: "circle", Attrs: types.A("r", "4")}}},
	}

	assert.Equal(t, `<svg focusable="false"><circle r="4" /></svg>`, RenderDefinition(def, types.A("focusable", "false")))
	assert.Equal(t, "", RenderDefinition(nil, nil))
}

func TestRenderEscapesPlainTextValues(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		rendered string
	}{
		{name: "ampersand", value: "a&b", rendered: `a&amp;b`},
		{name: "quote", value: `say "hi"`, rendered: `say &quot;hi&quot;`},
		{name: "entity text stays literal", value: "a&amp;b", rendered: `a&amp;amp;b`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := &types.AbstractNode{Tag: "svg", Attrs: types.A("aria-label", tt.value)}

			out := Render(node, nil)
			assert.Equal(t, `<svg aria-label="`+tt.rendered+`" />`, out)

			parsed, err := markup.ParseIcon(out)
			require.NoError(t, err)
			label, ok := parsed.Attrs.Get("aria-label")
			require.True(t, ok)
			assert.Equal(t, tt.value, label)
		})
	}
}
