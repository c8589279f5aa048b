// Package content tracks the rendered nodes of one builder.
//
// A Manager maps every rendered item to its parent, its ordered children,
// its originating template node and the module instances linked to it, and
// keeps the host document in step with those maps. An item is either a
// host node (*html.Node) or a Subtree, a nested builder that renders its
// own content after an anchor. Items with a nil parent sit at the builder
// root, directly after the manager's anchor.
package content

import (
	"fmt"

	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/template"
)

// Item is a rendered node: a *html.Node or a Subtree.
type Item any

// Subtree is a nested builder acting as a placeholder item.
type Subtree interface {
	// Anchor is the marker the subtree renders after. It always exists.
	Anchor() *html.Node
	// LastNode is the last host node of the subtree's content, or its
	// anchor when the subtree renders nothing.
	LastNode() *html.Node
	// Teardown removes the subtree's content and anchor, bottom-up.
	Teardown()
}

// Module is a linked module instance as far as the manager is concerned.
type Module interface {
	Cleanup()
}

// Manager is the content/tree manager of one builder.
type Manager struct {
	anchor *html.Node

	roots    []Item
	parent   map[Item]Item
	children map[Item][]Item
	template map[Item]*template.Node
	links    map[Item][]Module
	owner    map[Module]Item
	nested   map[*html.Node]Nested
	wrapper  map[*html.Node]*html.Node
}

// NewManager creates a manager whose root items render after anchor.
func NewManager(anchor *html.Node) *Manager {
	return &Manager{
		anchor:   anchor,
		parent:   make(map[Item]Item),
		children: make(map[Item][]Item),
		template: make(map[Item]*template.Node),
		links:    make(map[Item][]Module),
		owner:    make(map[Module]Item),
		nested:   make(map[*html.Node]Nested),
		wrapper:  make(map[*html.Node]*html.Node),
	}
}

// Anchor returns the builder anchor.
func (m *Manager) Anchor() *html.Node {
	return m.anchor
}

// Append adds child as the last child of parent (nil for the builder root).
func (m *Manager) Append(parent Item, child Item, tmpl *template.Node) error {
	const op = "content.Append"
	if err := m.checkNew(op, child); err != nil {
		return err
	}

	if parent == nil {
		ref := m.LastNode()
		m.roots = append(m.roots, child)
		m.record(nil, child, tmpl)
		placeAfter(ref, child)
		return nil
	}

	host, ok := parent.(*html.Node)
	if !ok {
		return fault.Contract(op, "parent %T is not a host node", parent)
	}
	if _, known := m.template[host]; !known {
		return fault.Resolution(op, "parent <%s> is not managed by this builder", host.Data)
	}

	target := host
	node := hostNode(child)
	if nested, ok := m.nested[host]; ok {
		root, wrapped, err := m.route(nested, child, tmpl)
		if err != nil {
			return err
		}
		target = root
		if wrapped != nil {
			node = wrapped
		}
	}

	m.children[host] = append(m.children[host], child)
	m.record(host, child, tmpl)
	target.AppendChild(node)
	return nil
}

// Prepend adds child as the first item of the builder root.
func (m *Manager) Prepend(child Item, tmpl *template.Node) error {
	if err := m.checkNew("content.Prepend", child); err != nil {
		return err
	}
	m.roots = append([]Item{child}, m.roots...)
	m.record(nil, child, tmpl)
	placeAfter(m.anchor, child)
	return nil
}

// InsertAfter adds child right after the root item ref.
func (m *Manager) InsertAfter(ref Item, child Item, tmpl *template.Node) error {
	const op = "content.InsertAfter"
	if err := m.checkNew(op, child); err != nil {
		return err
	}
	idx := m.rootIndex(ref)
	if idx < 0 {
		return fault.Resolution(op, "reference item %T is not a root item", ref)
	}
	after := lastHostNode(ref)

	m.roots = append(m.roots, nil)
	copy(m.roots[idx+2:], m.roots[idx+1:])
	m.roots[idx+1] = child
	m.record(nil, child, tmpl)
	placeAfter(after, child)
	return nil
}

// Remove tears item down: its children first, then its linked modules,
// then the item itself, which leaves the host document.
func (m *Manager) Remove(item Item) {
	if _, known := m.template[item]; !known {
		return
	}
	for _, child := range append([]Item(nil), m.children[item]...) {
		m.Remove(child)
	}

	for _, mod := range m.links[item] {
		mod.Cleanup()
		delete(m.owner, mod)
	}
	delete(m.links, item)

	switch v := item.(type) {
	case Subtree:
		v.Teardown()
	case *html.Node:
		if nested, ok := m.nested[v]; ok {
			nested.Destroy()
			delete(m.nested, v)
		}
		if w, ok := m.wrapper[v]; ok {
			dom.Detach(w)
			delete(m.wrapper, v)
		}
		dom.Detach(v)
	}

	if p := m.parent[item]; p != nil {
		m.children[p] = without(m.children[p], item)
	} else {
		m.roots = without(m.roots, item)
	}
	delete(m.parent, item)
	delete(m.children, item)
	delete(m.template, item)
}

// RemoveAll removes every root item in reverse order.
func (m *Manager) RemoveAll() {
	for i := len(m.roots) - 1; i >= 0; i-- {
		m.Remove(m.roots[i])
	}
}

// Roots returns the builder root items in order.
func (m *Manager) Roots() []Item {
	return append([]Item(nil), m.roots...)
}

// Children returns the children of parent, or the root items for nil.
func (m *Manager) Children(parent Item) []Item {
	if parent == nil {
		return m.Roots()
	}
	return append([]Item(nil), m.children[parent]...)
}

// Parent returns the parent of item; nil means the builder root.
func (m *Manager) Parent(item Item) Item {
	return m.parent[item]
}

// Template returns the template node item originates from.
func (m *Manager) Template(item Item) *template.Node {
	return m.template[item]
}

// Len returns the number of managed items.
func (m *Manager) Len() int {
	return len(m.template)
}

// Link binds a module instance to item. An instance links to exactly one
// item, once.
func (m *Manager) Link(item Item, mod Module) error {
	const op = "content.Link"
	if _, known := m.template[item]; !known {
		return fault.Resolution(op, "cannot link module %T to an unmanaged item", mod)
	}
	if _, linked := m.owner[mod]; linked {
		return fault.Contract(op, "module %T is already linked", mod)
	}
	m.owner[mod] = item
	m.links[item] = append(m.links[item], mod)
	return nil
}

// Links returns the modules linked to item in link order.
func (m *Manager) Links(item Item) []Module {
	return append([]Module(nil), m.links[item]...)
}

// LastNode returns the last host node of the builder root, walking into
// subtrees, or the anchor when the root is empty.
func (m *Manager) LastNode() *html.Node {
	for i := len(m.roots) - 1; i >= 0; i-- {
		if n := lastHostNode(m.roots[i]); n != nil {
			return n
		}
	}
	return m.anchor
}

func (m *Manager) checkNew(op string, child Item) error {
	switch child.(type) {
	case *html.Node, Subtree:
	default:
		return fault.Contract(op, "unsupported item %T", child)
	}
	if _, known := m.template[child]; known {
		return fault.Contract(op, "item %s is already managed", describe(child))
	}
	return nil
}

func (m *Manager) record(parent Item, child Item, tmpl *template.Node) {
	if parent != nil {
		m.parent[child] = parent
	}
	m.template[child] = tmpl
}

func (m *Manager) rootIndex(item Item) int {
	for i, r := range m.roots {
		if r == item {
			return i
		}
	}
	return -1
}

// hostNode returns the node that goes into the host document for item.
func hostNode(item Item) *html.Node {
	switch v := item.(type) {
	case *html.Node:
		return v
	case Subtree:
		return v.Anchor()
	}
	return nil
}

// lastHostNode returns the last host node item occupies in the document.
func lastHostNode(item Item) *html.Node {
	switch v := item.(type) {
	case *html.Node:
		return v
	case Subtree:
		return v.LastNode()
	}
	return nil
}

func placeAfter(ref *html.Node, item Item) {
	n := hostNode(item)
	if ref.Parent == nil {
		// A detached anchor has no siblings to keep in order.
		return
	}
	dom.InsertAfter(ref, n)
}

func without(items []Item, item Item) []Item {
	out := items[:0]
	for _, it := range items {
		if it != item {
			out = append(out, it)
		}
	}
	return out
}

func describe(item Item) string {
	if n, ok := item.(*html.Node); ok {
		switch n.Type {
		case html.TextNode:
			return "#text"
		case html.CommentNode:
			return "#comment"
		default:
			return fmt.Sprintf("<%s>", n.Data)
		}
	}
	return fmt.Sprintf("%T", item)
}
