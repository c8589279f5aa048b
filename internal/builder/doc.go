/*
Package builder renders template trees into the host document and keeps the
rendered nodes in step with the data they were rendered from.

A Static builder renders a fixed list of template nodes after its anchor.
Building is a multi-phase process:

 1. Skeleton: a depth-first pass creates bare elements, empty text nodes and
    a Manipulator placeholder for every element that carries a structural
    directive. Elements whose tag names a component get that component
    mounted on them. <template> elements without a directive render only
    their children.

 2. Buffers: every element keeps a mutable clone of its template node.
    Modules claim attributes from that buffer.

 3. Fixed point: passes run the Write modules, then the ReadWrite modules,
    then the Read modules. A Write or ReadWrite module that reports an
    attribute mutation restarts the pass at the Write stage. A build that
    does not settle within MaxPasses passes fails with
    fault.ErrIterationOverflow.

 4. Native binding: attributes no module claimed, and the content of every
    text node, are rendered with their `{{ }}` expressions substituted. An
    expression module is linked wherever the rendered value differs from the
    source, so later updates can refresh it.

Finally the Manipulator placeholders are processed, in tree order.

A Manipulator wraps one structural element. Processing resolves the
directive and builds one Static builder per (template, scope) pair it
yields. On update, when the directive reports a change, the fresh pairs are
reconciled against the current builders: pairs that compare equal (same
scope bindings and structurally equal templates) keep their builder and its
rendered nodes, the others are removed or inserted.
*/
package builder
