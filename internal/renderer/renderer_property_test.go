//go:build property
// +build property

package renderer

import (
	"strings"
	"testing"

	"github.com/conneroisu/glyph/internal/types"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestRenderProperties tests structural properties of the renderer
func TestRenderProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	tagGen := gen.RegexMatch(`^[a-z]{1,8}$`)
	valueGen := gen.RegexMatch(`^[a-zA-Z0-9 .-]{0,12}$`)

	// Property: a childless element is always self-closing
	properties.Property("childless elements self-close", prop.ForAll(
		func(tag, value string) bool {
			out := Render(&types.AbstractNode{Tag: tag, Attrs: types.A("d", value)}, nil)
			return strings.HasPrefix(out, "<"+tag) && strings.HasSuffix(out, " />")
		},
		tagGen, valueGen,
	))

	// Property: every child is rendered once and the root is closed once
	properties.Property("children are all rendered", prop.ForAll(
		func(tag string, n int) bool {
			node := &types.AbstractNode{Tag: tag}
			for i := 0; i < n; i++ {
				node.Children = append(node.Children, &types.AbstractNode{Tag: "path"})
			}
			out := Render(node, nil)
			if n == 0 {
				return out == "<"+tag+" />"
			}
			return strings.Count(out, "<path />") == n && strings.HasSuffix(out, "</"+tag+">")
		},
		tagGen, gen.IntRange(0, 20),
	))

	// Property: extra root attributes always win and never duplicate keys
	properties.Property("extra attributes take precedence", prop.ForAll(
		func(original, override string) bool {
			node := &types.AbstractNode{Tag: "svg", Attrs: types.A("fill", original)}
			out := Render(node, types.A("fill", override))
			return out == `<svg fill="`+override+`" />` && strings.Count(out, "fill=") == 1
		},
		valueGen, valueGen,
	))

	// Property: rendering is deterministic
	properties.Property("deterministic output", prop.ForAll(
		func(tag, value string) bool {
			node := &types.AbstractNode{
				Tag:      tag,
				Attrs:    types.A("a", value, "b", value),
				Children: []*types.AbstractNode{{Tag: "g", Attrs: types.A("c", value)}},
			}
			return Render(node, nil) == Render(node, nil)
		},
		tagGen, valueGen,
	))

	properties.TestingRun(t)
}
