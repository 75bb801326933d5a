// Package renderer serializes icon structural trees into markup.
//
// The same renderer is used at build time (glyph generate writes .svg files)
// and at runtime (the artifact cache renders before materializing), so both
// paths produce byte-identical markup for the same definition.
package renderer

import (
	"strings"

	"github.com/conneroisu/glyph/internal/types"
)

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;")

// Render serializes node. extraRootAttrs are merged into the attributes of
// the root element only, taking precedence on collision; nested elements are
// rendered with their own attributes. Elements without children are
// self-closing.
//
// Attribute values are plain text, the form markup.ParseIcon produces, so
// both & and " are escaped. A value that already holds an entity such as
// "&amp;" is escaped again and parses back to the same literal text.
func Render(node *types.AbstractNode, extraRootAttrs types.Attrs) string {
	if node == nil {
		return ""
	}

	var sb strings.Builder
	writeNode(&sb, node, node.Attrs.Merge(extraRootAttrs))
	return sb.String()
}

// RenderDefinition renders the icon tree of def.
func RenderDefinition(def *types.IconDefinition, extraRootAttrs types.Attrs) string {
	if def == nil {
		return ""
	}
	return Render(def.Icon, extraRootAttrs)
}

func writeNode(sb *strings.Builder, node *types.AbstractNode, attrs types.Attrs) {
	sb.WriteByte('<')
	sb.WriteString(node.Tag)
	for _, attr := range attrs {
		sb.WriteByte(' ')
		sb.WriteString(attr.Key)
		sb.WriteString(`="`)
		attrEscaper.WriteString(sb, attr.Value)
		sb.WriteByte('"')
	}

	if len(node.Children) == 0 {
		sb.WriteString(" />")
		return
	}

	sb.WriteByte('>')
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		writeNode(sb, child, child.Attrs)
	}
	sb.WriteString("</")
	sb.WriteString(node.Tag)
	sb.WriteByte('>')
}
