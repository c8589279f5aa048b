package app

import (
	"fmt"

	"github.com/vk/weavego/internal/dag"
	"github.com/vk/weavego/internal/template"
)

// checkNesting fails when a component would end up mounted inside itself,
// directly or through other components.
func (a *App) checkNesting() error {
	a.mu.Lock()
	g := dag.New()
	for name := range a.defs {
		g.AddNode(name)
	}
	for name, def := range a.defs {
		var walkErr error
		walk(def.Template, func(n *template.Node) {
			if walkErr != nil || n.Type != template.ElementNode {
				return
			}
			if _, nested := a.defs[n.Tag]; nested {
				walkErr = g.AddEdge(name, n.Tag)
			}
		})
		if walkErr != nil {
			a.mu.Unlock()
			return walkErr
		}
	}
	a.mu.Unlock()

	if err := g.DetectCycles(); err != nil {
		return fmt.Errorf("invalid component nesting: %w", err)
	}
	return nil
}

func walk(n *template.Node, fn func(*template.Node)) {
	fn(n)
	for _, c := range n.Children {
		walk(c, fn)
	}
}
