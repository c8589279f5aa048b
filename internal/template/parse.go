package template

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses markup into a fragment node. The markup is parsed as the
// content of a <body> element, so directive attributes such as `*repeat`
// or `[class.active]` survive untouched.
func Parse(src string) (*Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), context)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	root := &Node{Type: FragmentNode}
	for _, n := range nodes {
		if converted := convert(n); converted != nil {
			root.Children = append(root.Children, converted)
		}
	}
	return root, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// compiled-in templates.
func MustParse(src string) *Node {
	n, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return n
}

func convert(n *html.Node) *Node {
	switch n.Type {
	case html.ElementNode:
		el := &Node{
			Type:      ElementNode,
			Tag:       n.Data,
			Namespace: n.Namespace,
		}
		for _, a := range n.Attr {
			el.Attrs = append(el.Attrs, Attr{Namespace: a.Namespace, Name: a.Key, Value: a.Val})
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if converted := convert(c); converted != nil {
				el.Children = append(el.Children, converted)
			}
		}
		return el
	case html.TextNode:
		return &Node{Type: TextNode, Data: n.Data}
	case html.CommentNode:
		return &Node{Type: CommentNode, Data: n.Data}
	default:
		return nil
	}
}
