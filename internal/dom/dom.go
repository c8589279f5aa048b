// Package dom is the node-creation helper for the host document.
//
// The host document is a golang.org/x/net/html tree. This package creates
// correctly namespaced elements, text nodes and invisible anchors, and wraps
// the sibling-level insertion and attribute operations the content manager
// needs.
package dom

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// NewElement creates a detached element. An empty namespace means HTML.
func NewElement(tag, namespace string) *html.Node {
	n := &html.Node{
		Type:      html.ElementNode,
		Data:      tag,
		Namespace: namespace,
	}
	if namespace == "" {
		n.DataAtom = atom.Lookup([]byte(tag))
	}
	return n
}

// NewText creates a detached text node.
func NewText(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// NewAnchor creates an invisible marker. The label only shows up when the
// tree is serialized, which keeps rendered output debuggable.
func NewAnchor(label string) *html.Node {
	return &html.Node{Type: html.CommentNode, Data: label}
}

// IsAnchor reports whether n is a comment node used as a marker.
func IsAnchor(n *html.Node) bool {
	return n != nil && n.Type == html.CommentNode
}

// NewRoot creates a detached container element used as the host of a
// top-level component.
func NewRoot(tag string) *html.Node {
	return NewElement(tag, "")
}

// InsertAfter inserts n directly after ref under ref's parent.
func InsertAfter(ref, n *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// Prepend inserts n as the first child of parent.
func Prepend(parent, n *html.Node) {
	parent.InsertBefore(n, parent.FirstChild)
}

// Detach removes n from its parent if it has one.
func Detach(n *html.Node) {
	if n != nil && n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// GetAttr returns the value of an attribute.
func GetAttr(n *html.Node, name string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or appends an attribute.
func SetAttr(n *html.Node, name, value string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr[i].Val = value
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute if present.
func RemoveAttr(n *html.Node, name string) {
	for i := range n.Attr {
		if n.Attr[i].Key == name {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// Children returns the direct children of n.
func Children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// RemoveChildren detaches every child of n.
func RemoveChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
}

// SetInnerHTML replaces the children of n with the parsed markup.
func SetInnerHTML(n *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), n)
	if err != nil {
		return fmt.Errorf("failed to parse inner html: %w", err)
	}
	RemoveChildren(n)
	for _, c := range nodes {
		n.AppendChild(c)
	}
	return nil
}

// TextContent concatenates the text of n and all its descendants.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(TextContent(c))
	}
	return b.String()
}

// FindAll returns every element below n (n excluded) for which match
// returns true, in document order. Subtrees for which skip returns true are
// not entered.
func FindAll(n *html.Node, match, skip func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			if match(c) {
				out = append(out, c)
			}
			if skip != nil && skip(c) {
				continue
			}
			walk(c)
		}
	}
	walk(n)
	return out
}

// Render serializes the children of n. Anchors are omitted unless
// withAnchors is set.
func Render(n *html.Node, withAnchors bool) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderNode(&buf, c, withAnchors)
	}
	return buf.String()
}

// RenderNode serializes n itself, including its own tag.
func RenderNode(n *html.Node, withAnchors bool) string {
	var buf bytes.Buffer
	renderNode(&buf, n, withAnchors)
	return buf.String()
}

func renderNode(buf *bytes.Buffer, n *html.Node, withAnchors bool) {
	if !withAnchors {
		n = stripAnchors(n)
		if n == nil {
			return
		}
	}
	// html.Render only fails on writer errors, which bytes.Buffer never returns.
	_ = html.Render(buf, n)
}

// stripAnchors returns a copy of n without comment nodes, or nil if n itself
// is a comment.
func stripAnchors(n *html.Node) *html.Node {
	if n.Type == html.CommentNode {
		return nil
	}
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if stripped := stripAnchors(child); stripped != nil {
			c.AppendChild(stripped)
		}
	}
	return c
}
