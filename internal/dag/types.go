package dag

import "sync"

// Graph is a collection of nodes and the edges between them.
// All operations on the graph are concurrency-safe.
type Graph struct {
	// mutex protects the nodes map during concurrent access.
	mutex sync.RWMutex
	// nodes stores all nodes in the graph, keyed by their unique ID.
	nodes map[string]*node
}

// node is one vertex. It is un-exported to enforce interaction with the
// graph via the public API (using string IDs).
type node struct {
	id string
	// uses holds the nodes this node points to.
	uses map[string]*node
	// usedBy holds the nodes pointing to this node.
	usedBy map[string]*node
}
