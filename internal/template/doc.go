// Package template holds the immutable template tree that components are
// rendered from, and the markup parser that produces it.
//
// Parsing is delegated to golang.org/x/net/html; the result is converted into
// a small tree of *Node values that support deep cloning and structural
// equality, the two operations the build engine relies on for attribute
// buffers and for reconciling structural directives.
package template
