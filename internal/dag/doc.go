// Package dag holds the nesting graph of component definitions: one node
// per definition and an edge from every definition to each definition its
// template uses as a tag. A component whose template reaches itself again
// would mount forever, so the app rejects graphs with cycles before it
// mounts anything.
package dag
