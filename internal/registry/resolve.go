package registry

import (
	"github.com/vk/weavego/internal/fault"
	"github.com/vk/weavego/internal/template"
)

// Resolved is a static descriptor that claimed one attribute of a buffer.
type Resolved struct {
	Descriptor *StaticDescriptor
	Attribute  template.Attr
	Match      []string
}

// ResolveStatic claims the attributes of buffer that belong to modules of
// the given access type.
//
// Attributes are scanned in order over a snapshot of the buffer. For each
// attribute the first matching descriptor overall is chosen; it is claimed
// only when its access equals access, otherwise the attribute stays for its
// own stage. Claimed attributes are removed from buffer so they cannot be
// claimed twice.
func (r *Registry) ResolveStatic(buffer *template.Node, access Access, inStructural bool) ([]Resolved, error) {
	const op = "registry.ResolveStatic"

	var out []Resolved
	snapshot := append([]template.Attr(nil), buffer.Attrs...)
	for _, attr := range snapshot {
		d := r.firstStatic(attr.Name)
		if d == nil || d.Access != access {
			continue
		}
		if d.MutatesAttributes && d.Access != ReadWrite {
			return nil, fault.Contract(op, "%s module '%s' declares attribute mutation", d.Access, d.Name)
		}
		if d.ForbiddenInStructural && inStructural {
			return nil, fault.Contract(op, "module '%s' (attribute '%s') is not allowed inside a structural directive", d.Name, attr.Name)
		}
		buffer.RemoveAttr(attr.Name)
		out = append(out, Resolved{
			Descriptor: d,
			Attribute:  attr,
			Match:      d.Pattern.FindStringSubmatch(attr.Name),
		})
	}
	return out, nil
}

// ClaimsStatic reports whether a static module would claim an attribute
// named name.
func (r *Registry) ClaimsStatic(name string) bool {
	return r.firstStatic(name) != nil
}

func (r *Registry) firstStatic(name string) *StaticDescriptor {
	for _, d := range r.static {
		if d.Matches(name) {
			return d
		}
	}
	return nil
}

func (r *Registry) firstStructural(name string) *StructuralDescriptor {
	for _, d := range r.structural {
		if d.Matches(name) {
			return d
		}
	}
	return nil
}

// IsStructural reports whether any attribute of n names a structural
// directive.
func (r *Registry) IsStructural(n *template.Node) bool {
	if n == nil || n.Type != template.ElementNode {
		return false
	}
	for _, a := range n.Attrs {
		if r.firstStructural(a.Name) != nil {
			return true
		}
	}
	return false
}

// ResolvedStructural is the directive that claimed a structural attribute.
type ResolvedStructural struct {
	Descriptor *StructuralDescriptor
	Attribute  template.Attr
	Match      []string
}

// ResolveStructural finds the single structural directive on buffer and
// removes its attribute. A second structural attribute is a contract
// violation; none at all is a resolution failure.
func (r *Registry) ResolveStructural(buffer *template.Node) (*ResolvedStructural, error) {
	const op = "registry.ResolveStructural"

	var found *ResolvedStructural
	for _, attr := range buffer.Attrs {
		d := r.firstStructural(attr.Name)
		if d == nil {
			continue
		}
		if found != nil {
			return nil, fault.Contract(op, "element %s carries structural directives '%s' and '%s'", buffer.Tag, found.Attribute.Name, attr.Name)
		}
		found = &ResolvedStructural{
			Descriptor: d,
			Attribute:  attr,
			Match:      d.Pattern.FindStringSubmatch(attr.Name),
		}
	}
	if found == nil {
		return nil, fault.Resolution(op, "element %s has no structural directive", buffer.Tag)
	}
	buffer.RemoveAttr(found.Attribute.Name)
	return found, nil
}

// ResolveExpression returns the first expression descriptor matching name,
// or nil. Text nodes use TextAttr.
func (r *Registry) ResolveExpression(name string) *ExpressionDescriptor {
	for _, d := range r.expression {
		if d.Matches(name) {
			return d
		}
	}
	return nil
}
