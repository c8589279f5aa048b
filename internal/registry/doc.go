// Package registry holds the module descriptors of one application and
// resolves which module applies to a template attribute or node.
//
// There are three module kinds, each kept in its own ordered list:
//
//   - static modules act on a single rendered node through one attribute,
//   - structural modules (directives such as `*repeat`) add, remove or
//     multiply subtrees,
//   - expression modules evaluate `{{ }}` content in text and attributes.
//
// A registry is an explicit instance owned by the application. Modules are
// Go packages that implement Module and add their descriptors in Register.
// Registering the same descriptor name twice is a programmer error and
// panics.
package registry
