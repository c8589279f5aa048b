package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/vk/weavego/internal/dom"
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/template"
)

// fakeSubtree renders a fixed list of nodes after its anchor.
type fakeSubtree struct {
	anchor   *html.Node
	nodes    []*html.Node
	torn     bool
	onRemove func()
}

func newFakeSubtree(labels ...string) *fakeSubtree {
	s := &fakeSubtree{anchor: dom.NewAnchor("sub")}
	for _, l := range labels {
		s.nodes = append(s.nodes, dom.NewElement(l, ""))
	}
	return s
}

func (s *fakeSubtree) render() {
	ref := s.anchor
	for _, n := range s.nodes {
		dom.InsertAfter(ref, n)
		ref = n
	}
}

func (s *fakeSubtree) Anchor() *html.Node { return s.anchor }
func (s *fakeSubtree) LastNode() *html.Node {
	if len(s.nodes) == 0 {
		return s.anchor
	}
	return s.nodes[len(s.nodes)-1]
}
func (s *fakeSubtree) Teardown() {
	s.torn = true
	for _, n := range s.nodes {
		dom.Detach(n)
	}
	dom.Detach(s.anchor)
	if s.onRemove != nil {
		s.onRemove()
	}
}

type recordingModule struct {
	name string
	log  *[]string
}

func (m *recordingModule) Cleanup() { *m.log = append(*m.log, m.name) }

type fakeNested struct {
	roots     []*html.Node
	destroyed bool
}

func (n *fakeNested) ContentRoots() []*html.Node { return n.roots }
func (n *fakeNested) AssignSlot(tmpl *template.Node) (string, *html.Node, error) {
	name, _ := tmpl.Attr("slot")
	for _, r := range n.roots {
		if v, _ := dom.GetAttr(r, "name"); v == name {
			return name, r, nil
		}
	}
	return name, nil, nil
}
func (n *fakeNested) Destroy() { n.destroyed = true }

func newHost() (*html.Node, *Manager) {
	host := dom.NewRoot("main")
	anchor := dom.NewAnchor("builder")
	host.AppendChild(anchor)
	return host, NewManager(anchor)
}

var tmpl = &template.Node{Type: template.ElementNode, Tag: "p"}

func TestManager_RootOrdering(t *testing.T) {
	// --- Arrange ---
	host, m := newHost()
	a, b, c := dom.NewElement("a", ""), dom.NewElement("b", ""), dom.NewElement("i", "")

	// --- Act ---
	require.NoError(t, m.Append(nil, a, tmpl))
	require.NoError(t, m.Append(nil, c, tmpl))
	require.NoError(t, m.InsertAfter(a, b, tmpl))
	first := dom.NewElement("em", "")
	require.NoError(t, m.Prepend(first, tmpl))

	// --- Assert ---
	assert.Equal(t, "<em></em><a></a><b></b><i></i>", dom.Render(host, false))
	assert.Equal(t, []Item{first, a, b, c}, m.Roots())
	assert.Same(t, c, m.LastNode())
}

func TestManager_InsertAfterSubtreeGoesAfterItsContent(t *testing.T) {
	host, m := newHost()
	sub := newFakeSubtree("x", "y")
	require.NoError(t, m.Append(nil, sub, tmpl))
	sub.render()

	tail := dom.NewElement("z", "")
	require.NoError(t, m.InsertAfter(sub, tail, tmpl))

	assert.Equal(t, "<x></x><y></y><z></z>", dom.Render(host, false))
	assert.Same(t, tail, m.LastNode())
}

func TestManager_LastNodeFallsBackToEmptySubtreeAnchor(t *testing.T) {
	_, m := newHost()
	assert.Same(t, m.Anchor(), m.LastNode())

	sub := newFakeSubtree()
	require.NoError(t, m.Append(nil, sub, tmpl))

	assert.Same(t, sub.anchor, m.LastNode())
}

func TestManager_RemoveIsBottomUp(t *testing.T) {
	// --- Arrange ---
	host, m := newHost()
	var log []string
	parent := dom.NewElement("ul", "")
	child := dom.NewElement("li", "")
	sub := newFakeSubtree("span")
	sub.onRemove = func() { log = append(log, "subtree") }

	require.NoError(t, m.Append(nil, parent, tmpl))
	require.NoError(t, m.Append(parent, child, tmpl))
	require.NoError(t, m.Append(child, sub, tmpl))
	sub.render()
	require.NoError(t, m.Link(parent, &recordingModule{name: "parent", log: &log}))
	require.NoError(t, m.Link(child, &recordingModule{name: "child", log: &log}))

	// --- Act ---
	m.Remove(parent)

	// --- Assert ---
	assert.Equal(t, []string{"subtree", "child", "parent"}, log)
	assert.True(t, sub.torn)
	assert.Equal(t, 0, m.Len())
	assert.Empty(t, m.Roots())
	assert.Equal(t, "", dom.Render(host, false))
}

func TestManager_LinkTwiceIsContractViolation(t *testing.T) {
	_, m := newHost()
	a, b := dom.NewElement("a", ""), dom.NewElement("b", "")
	require.NoError(t, m.Append(nil, a, tmpl))
	require.NoError(t, m.Append(nil, b, tmpl))
	var log []string
	mod := &recordingModule{name: "m", log: &log}

	require.NoError(t, m.Link(a, mod))
	err := m.Link(a, mod)
	require.ErrorIs(t, err, fault.ErrModuleContractViolation)
	err = m.Link(b, mod)
	require.ErrorIs(t, err, fault.ErrModuleContractViolation)
	assert.Len(t, m.Links(a), 1)
}

func TestManager_AppendTwiceIsContractViolation(t *testing.T) {
	_, m := newHost()
	a := dom.NewElement("a", "")
	require.NoError(t, m.Append(nil, a, tmpl))
	require.ErrorIs(t, m.Append(nil, a, tmpl), fault.ErrModuleContractViolation)
}

func TestManager_SlotRouting(t *testing.T) {
	t.Run("zero content roots rejects children", func(t *testing.T) {
		_, m := newHost()
		el := dom.NewElement("x-card", "")
		require.NoError(t, m.Append(nil, el, tmpl))
		m.SetNested(el, &fakeNested{})

		err := m.Append(el, dom.NewText("hi"), tmpl)

		require.ErrorIs(t, err, fault.ErrResolutionFailure)
	})

	t.Run("single root is used without tagging", func(t *testing.T) {
		_, m := newHost()
		el := dom.NewElement("x-card", "")
		root := dom.NewElement("slot", "")
		el.AppendChild(root)
		require.NoError(t, m.Append(nil, el, tmpl))
		m.SetNested(el, &fakeNested{roots: []*html.Node{root}})

		child := dom.NewElement("b", "")
		require.NoError(t, m.Append(el, child, tmpl))

		assert.Same(t, root, child.Parent)
		_, tagged := dom.GetAttr(child, SlotAttr)
		assert.False(t, tagged)
		assert.Same(t, el, m.Parent(child))
	})

	t.Run("several roots tag elements and wrap text", func(t *testing.T) {
		_, m := newHost()
		el := dom.NewElement("x-card", "")
		header, body := dom.NewElement("slot", ""), dom.NewElement("slot", "")
		dom.SetAttr(header, "name", "header")
		dom.SetAttr(body, "name", "")
		el.AppendChild(header)
		el.AppendChild(body)
		nested := &fakeNested{roots: []*html.Node{header, body}}
		require.NoError(t, m.Append(nil, el, tmpl))
		m.SetNested(el, nested)

		title := dom.NewElement("h1", "")
		headerTmpl := &template.Node{Type: template.ElementNode, Tag: "h1", Attrs: []template.Attr{{Name: "slot", Value: "header"}}}
		require.NoError(t, m.Append(el, title, headerTmpl))
		text := dom.NewText("body text")
		require.NoError(t, m.Append(el, text, &template.Node{Type: template.TextNode}))

		assert.Same(t, header, title.Parent)
		slot, _ := dom.GetAttr(title, SlotAttr)
		assert.Equal(t, "header", slot)
		require.NotNil(t, text.Parent)
		assert.Equal(t, "span", text.Parent.Data)
		span := text.Parent
		assert.Same(t, body, span.Parent)

		m.Remove(el)
		assert.True(t, nested.destroyed)
		assert.Nil(t, span.Parent, "the wrapper leaves the document with its text")
	})
}
