// Package markup is the element-construction adapter of the icon pipeline.
//
// It turns markup into artifacts (*html.Node trees rooted at an <svg>
// element), deep-copies artifacts before they are handed out, serializes them
// back to markup, and converts fetched SVG sources into the structural
// AbstractNode model.
package markup

import (
	"errors"
	"strings"

	"github.com/conneroisu/glyph/internal/types"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ErrNoRootElement is returned when markup contains no <svg> element.
var ErrNoRootElement = errors.New("markup: no svg element found")

// Materialize parses markup and returns its first <svg> element, detached
// from the parse tree.
func Materialize(markup string) (*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}

	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		if svg := findSVG(n); svg != nil {
			if svg.Parent != nil {
				svg.Parent.RemoveChild(svg)
			}
			return svg, nil
		}
	}
	return nil, ErrNoRootElement
}

func findSVG(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "svg" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findSVG(c); found != nil {
			return found
		}
	}
	return nil
}

// Clone returns a deep copy of n and its descendants. The copy is detached.
func Clone(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	clone := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		clone.Attr = make([]html.Attribute, len(n.Attr))
		copy(clone.Attr, n.Attr)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		clone.AppendChild(Clone(c))
	}
	return clone
}

// SetAttr sets an attribute on n, replacing an existing value in place.
func SetAttr(n *html.Node, key, value string) {
	for i := range n.Attr {
		if n.Attr[i].Namespace == "" && n.Attr[i].Key == key {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: value})
}

// GetAttr returns the value of an un-namespaced attribute.
func GetAttr(n *html.Node, key string) (string, bool) {
	for _, attr := range n.Attr {
		if attr.Namespace == "" && attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

// Serialize renders n back into markup.
func Serialize(n *html.Node) (string, error) {
	var sb strings.Builder
	if err := html.Render(&sb, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ParseIcon parses an SVG source into the structural model. Only elements
// and their attributes are kept; text, comments and doctypes are dropped.
func ParseIcon(source string) (*types.AbstractNode, error) {
	svg, err := Materialize(source)
	if err != nil {
		return nil, err
	}
	return toAbstract(svg), nil
}

func toAbstract(n *html.Node) *types.AbstractNode {
	node := &types.AbstractNode{Tag: n.Data}
	for _, attr := range n.Attr {
		key := attr.Key
		if attr.Namespace != "" {
			key = attr.Namespace + ":" + attr.Key
		}
		node.Attrs = node.Attrs.Set(key, attr.Val)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			node.Children = append(node.Children, toAbstract(c))
		}
	}
	return node
}
