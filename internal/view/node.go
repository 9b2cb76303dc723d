// Package view builds the portal's HTML as html.Node trees. Builders are pure:
// they take data and a role and return a detached node that the caller renders
// once, either as a full page or as a fragment for a container.
package view

import (
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// attrs turns key/value pairs into attributes, in order. Pairs with an empty
// value are dropped, except for boolean attributes passed as "key", "key".
func attrs(kv ...string) []html.Attribute {
	out := make([]html.Attribute, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if kv[i+1] == "" {
			continue
		}
		out = append(out, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	return out
}

func el(tag atom.Atom, at []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		DataAtom: tag,
		Data:     tag.String(),
		Attr:     at,
	}
	appendAll(n, children...)
	return n
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// appendAll appends children to n, skipping nils so builders can inline
// optional parts.
func appendAll(n *html.Node, children ...*html.Node) {
	for _, c := range children {
		if c != nil {
			n.AppendChild(c)
		}
	}
}

// Fragment groups nodes that are rendered side by side without a wrapper.
type Fragment []*html.Node

// Render writes n as HTML.
func Render(w io.Writer, n *html.Node) error {
	return html.Render(w, n)
}

// RenderFragment writes each node of f in order.
func RenderFragment(w io.Writer, f Fragment) error {
	for _, n := range f {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}
