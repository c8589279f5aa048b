package registry

import "regexp"

// Access declares which build stage a static module runs in.
// The values are ordered: updates run Write modules first, then ReadWrite,
// then Read.
type Access int

const (
	// Write modules create scope bindings, e.g. `let-name`.
	Write Access = iota
	// ReadWrite modules may add or change attributes on the node's buffer,
	// which restarts fixed-point resolution.
	ReadWrite
	// Read modules only affect the rendered node.
	Read
)

// String returns the access name used in logs.
func (a Access) String() string {
	switch a {
	case Write:
		return "write"
	case ReadWrite:
		return "readwrite"
	case Read:
		return "read"
	default:
		return "unknown"
	}
}

// Kind discriminates the descriptor variants.
type Kind int

const (
	Static Kind = iota
	Structural
	Expression
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case Static:
		return "static"
	case Structural:
		return "structural"
	case Expression:
		return "expression"
	default:
		return "unknown"
	}
}

// Descriptor is the static metadata of a module. The set of variants is
// closed: StaticDescriptor, StructuralDescriptor and ExpressionDescriptor.
type Descriptor interface {
	Kind() Kind
	DescriptorName() string
	Matches(attr string) bool
	sealed()
}

// StaticDescriptor describes a per-attribute module.
type StaticDescriptor struct {
	Name    string
	Pattern *regexp.Regexp
	Access  Access
	// MutatesAttributes declares that Process may change the node's
	// attribute buffer.
	MutatesAttributes bool
	// ForbiddenInStructural rejects the module inside content produced by a
	// structural directive.
	ForbiddenInStructural bool
	New                   func(*Context) (StaticModule, error)
}

// StructuralDescriptor describes a directive that produces subtrees.
type StructuralDescriptor struct {
	Name    string
	Pattern *regexp.Regexp
	New     func(*Context) (StructuralModule, error)
}

// ExpressionDescriptor describes a module that renders `{{ }}` content.
// Text nodes are matched against the name TextAttr.
type ExpressionDescriptor struct {
	Name    string
	Pattern *regexp.Regexp
	New     func(*Context) (ExpressionModule, error)
}

// TextAttr is the pseudo attribute name used to resolve expression modules
// for text nodes.
const TextAttr = "#text"

func (d *StaticDescriptor) Kind() Kind                 { return Static }
func (d *StaticDescriptor) DescriptorName() string     { return d.Name }
func (d *StaticDescriptor) Matches(attr string) bool   { return d.Pattern.MatchString(attr) }
func (d *StaticDescriptor) sealed()                    {}
func (d *StructuralDescriptor) Kind() Kind             { return Structural }
func (d *StructuralDescriptor) DescriptorName() string { return d.Name }
func (d *StructuralDescriptor) Matches(attr string) bool {
	return d.Pattern.MatchString(attr)
}
func (d *StructuralDescriptor) sealed()                {}
func (d *ExpressionDescriptor) Kind() Kind             { return Expression }
func (d *ExpressionDescriptor) DescriptorName() string { return d.Name }
func (d *ExpressionDescriptor) Matches(attr string) bool {
	return d.Pattern.MatchString(attr)
}
func (d *ExpressionDescriptor) sealed() {}
