package registry

import (
	"errors"
	"fmt"
	"strings"
)

// validate checks descriptor metadata at registration time. Contract rules
// that depend on where a module is used are enforced during resolution.
func validate(d Descriptor) error {
	var errs []string

	switch v := d.(type) {
	case *StaticDescriptor:
		if v == nil {
			return errors.New("nil static descriptor")
		}
		if v.Pattern == nil {
			errs = append(errs, "missing pattern")
		}
		if v.New == nil {
			errs = append(errs, "missing constructor")
		}
		if v.Access < Write || v.Access > Read {
			errs = append(errs, fmt.Sprintf("unknown access %d", v.Access))
		}
	case *StructuralDescriptor:
		if v == nil {
			return errors.New("nil structural descriptor")
		}
		if v.Pattern == nil {
			errs = append(errs, "missing pattern")
		}
		if v.New == nil {
			errs = append(errs, "missing constructor")
		}
	case *ExpressionDescriptor:
		if v == nil {
			return errors.New("nil expression descriptor")
		}
		if v.Pattern == nil {
			errs = append(errs, "missing pattern")
		}
		if v.New == nil {
			errs = append(errs, "missing constructor")
		}
	default:
		return fmt.Errorf("unsupported descriptor %T", d)
	}

	if d.DescriptorName() == "" {
		errs = append(errs, "missing name")
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid %s descriptor '%s': %s", d.Kind(), d.DescriptorName(), strings.Join(errs, ", "))
	}
	return nil
}
