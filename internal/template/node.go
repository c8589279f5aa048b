package template

import "strings"

// NodeType distinguishes the kinds of template nodes.
type NodeType int

const (
	// FragmentNode is the root of a parsed template. It has no tag.
	FragmentNode NodeType = iota
	// ElementNode is a tagged element with attributes and children.
	ElementNode
	// TextNode holds character data, possibly containing expressions.
	TextNode
	// CommentNode holds a markup comment.
	CommentNode
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case FragmentNode:
		return "fragment"
	case ElementNode:
		return "element"
	case TextNode:
		return "text"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// Attr is a single attribute of an element. Order is significant: module
// resolution scans attributes in source order.
type Attr struct {
	Namespace string
	Name      string
	Value     string
}

// Node is one node of a template tree.
//
// Parsed trees are shared by every component instance of a definition and
// must be treated as immutable. The mutating helpers (SetAttr, RemoveAttr)
// exist for clones that act as per-node attribute buffers during a build.
type Node struct {
	Type      NodeType
	Tag       string
	Namespace string
	Data      string
	Attrs     []Attr
	Children  []*Node
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := &Node{
		Type:      n.Type,
		Tag:       n.Tag,
		Namespace: n.Namespace,
		Data:      n.Data,
	}
	if len(n.Attrs) > 0 {
		c.Attrs = make([]Attr, len(n.Attrs))
		copy(c.Attrs, n.Attrs)
	}
	if len(n.Children) > 0 {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return c
}

// Equal reports whether two trees are structurally identical: same types,
// tags, namespaces, data, attributes in the same order and equal children.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.Type != other.Type || n.Tag != other.Tag || n.Namespace != other.Namespace || n.Data != other.Data {
		return false
	}
	if len(n.Attrs) != len(other.Attrs) || len(n.Children) != len(other.Children) {
		return false
	}
	for i := range n.Attrs {
		if n.Attrs[i] != other.Attrs[i] {
			return false
		}
	}
	for i := range n.Children {
		if !n.Children[i].Equal(other.Children[i]) {
			return false
		}
	}
	return true
}

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr sets or appends an attribute. Only call it on clones.
func (n *Node) SetAttr(name, value string) {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
}

// RemoveAttr removes the named attribute and reports whether it was present.
// Only call it on clones.
func (n *Node) RemoveAttr(name string) bool {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs = append(n.Attrs[:i], n.Attrs[i+1:]...)
			return true
		}
	}
	return false
}

// AttrNames returns the attribute names in source order.
func (n *Node) AttrNames() []string {
	names := make([]string, len(n.Attrs))
	for i, a := range n.Attrs {
		names[i] = a.Name
	}
	return names
}

// String renders a short description for logs, e.g. `<li *repeat>`.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Type {
	case ElementNode:
		var b strings.Builder
		b.WriteString("<")
		b.WriteString(n.Tag)
		for _, a := range n.Attrs {
			b.WriteString(" ")
			b.WriteString(a.Name)
		}
		b.WriteString(">")
		return b.String()
	case TextNode:
		return "#text"
	case CommentNode:
		return "#comment"
	default:
		return "#fragment"
	}
}
