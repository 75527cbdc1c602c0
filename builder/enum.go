package builder

import (
	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

// buildEnum resolves enumeration members into a homogeneous value list.
// Members without an explicit value take the next integer in
// declaration order; an explicit numeric value advances that counter.
func (b *Builder) buildEnum(d typedesc.Descriptor) (ir.Node, error) {
	members := d.EnumMembers()
	if len(members) == 0 {
		return nil, ir.Structuralf("Empty enums are not supported: %s", d.Text())
	}

	var kind ir.ScalarKind
	kindSet := false
	setKind := func(k ir.ScalarKind) error {
		if kindSet && kind != k {
			return ir.Structuralf("Mixed enum types are not supported: %s", d.Text())
		}
		kind, kindSet = k, true
		return nil
	}

	next := float64(0)
	values := make([]any, 0, len(members))
	for _, m := range members {
		switch v := m.Value.(type) {
		case nil:
			if err := setKind(ir.ScalarNumber); err != nil {
				return nil, err
			}
			values = append(values, next)
			next++
		case float64:
			if err := setKind(ir.ScalarNumber); err != nil {
				return nil, err
			}
			values = append(values, v)
			next = v + 1
		case string:
			if err := setKind(ir.ScalarString); err != nil {
				return nil, err
			}
			values = append(values, v)
		default:
			return nil, ir.Structuralf("Enum member '%s' has a value that cannot be statically resolved: %s", m.Name, d.Text())
		}
	}
	return &ir.Enum{ScalarKind: kind, Values: values}, nil
}
