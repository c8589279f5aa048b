package content

import (
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/template"
)

// SlotAttr is the attribute that tags a child with the content root it was
// routed to.
const SlotAttr = "slot"

// Nested is a child component mounted on a host element. Children appended
// to that element are routed into the component's content roots.
type Nested interface {
	// ContentRoots returns the elements that accept projected children.
	ContentRoots() []*html.Node
	// AssignSlot picks the named content root for a child template when
	// there is more than one.
	AssignSlot(tmpl *template.Node) (name string, root *html.Node, err error)
	// Destroy tears the child component down.
	Destroy()
}

// SetNested registers the nested component mounted on el.
func (m *Manager) SetNested(el *html.Node, n Nested) {
	m.nested[el] = n
}

// NestedAt returns the nested component mounted on el.
func (m *Manager) NestedAt(el *html.Node) (Nested, bool) {
	n, ok := m.nested[el]
	return n, ok
}

// route picks the content root for child. With several roots the child is
// tagged with the slot name; text is wrapped in a span to carry the tag.
// It returns the root and, when the child was wrapped, the wrapper.
func (m *Manager) route(n Nested, child Item, tmpl *template.Node) (*html.Node, *html.Node, error) {
	const op = "content.route"

	roots := n.ContentRoots()
	switch len(roots) {
	case 0:
		return nil, nil, fault.Resolution(op, "nested component has no content root for %s", describe(child))
	case 1:
		return roots[0], nil, nil
	}

	name, root, err := n.AssignSlot(tmpl)
	if err != nil {
		return nil, nil, err
	}
	if root == nil {
		return nil, nil, fault.Resolution(op, "no content root named '%s'", name)
	}

	node, ok := child.(*html.Node)
	if !ok {
		// Subtrees route their anchor; their content follows it.
		return root, nil, nil
	}
	switch node.Type {
	case html.ElementNode:
		dom.SetAttr(node, SlotAttr, name)
		return root, nil, nil
	case html.TextNode:
		span := dom.NewElement("span", "")
		dom.SetAttr(span, SlotAttr, name)
		span.AppendChild(node)
		m.wrapper[node] = span
		return root, span, nil
	default:
		return root, nil, nil
	}
}
