package expr

import (
	"sync"

	"github.com/hashicorp/hcl/v2"
)

// Container gathers the HCL expressions of one template value (a text node
// or an attribute may hold several `{{ }}` segments) and caches the analysis
// of what they reference.
//
// Compiled templates are shared between every component instance of a
// definition, so the analysis is guarded for concurrent readers.
type Container struct {
	analyzeOnce sync.Once

	mu          sync.RWMutex
	expressions []hcl.Expression

	references      []hcl.Traversal
	rootNames       []string
	calledFunctions []string
}

// NewContainer creates a new, empty expression container.
func NewContainer() *Container {
	return &Container{}
}

// Add adds one or more expressions to the container for analysis.
// It safely ignores any nil expressions. Add must not run concurrently with
// the getters; containers are filled once, at compile time.
func (c *Container) Add(exprs ...hcl.Expression) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.analyzeOnce = sync.Once{}

	for _, expr := range exprs {
		if expr != nil {
			c.expressions = append(c.expressions, expr)
		}
	}
}

// Expressions returns the collected expressions in insertion order.
func (c *Container) Expressions() []hcl.Expression {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expressions
}

func (c *Container) analyze() {
	c.analyzeOnce.Do(func() {
		c.mu.RLock()
		refs, funcs := extractReferencesAndFunctions(c.expressions...)
		c.mu.RUnlock()

		c.mu.Lock()
		c.references = refs
		c.rootNames = rootNames(refs)
		c.calledFunctions = funcs
		c.mu.Unlock()
	})
}

// References returns all unique variable traversals found in the expressions.
func (c *Container) References() []hcl.Traversal {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.references
}

// RootNames returns the unique, sorted root variable names referenced.
func (c *Container) RootNames() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rootNames
}

// CalledFunctions returns all unique function calls found in the expressions.
func (c *Container) CalledFunctions() []string {
	c.analyze()
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calledFunctions
}
