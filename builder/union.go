package builder

import (
	"strconv"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

// buildUnion normalizes a union descriptor. Nullish members become the
// nullable flag, a lone survivor unwraps, the true/false literal pair
// collapses to the boolean primitive, homogeneous literal sets collapse
// to enums, and anything else becomes a Union with discriminator
// detection applied.
func (b *Builder) buildUnion(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	flat := flattenMembers(d)
	if len(flat) == 0 {
		return nil, ir.Unsupported(d.Text())
	}

	var rest []typedesc.Descriptor
	nullable := false
	for _, m := range flat {
		switch m.Kind() {
		case typedesc.KindNull, typedesc.KindUndefined:
			nullable = true
		default:
			rest = append(rest, m)
		}
	}

	// Only nullish members: the bare null type.
	if len(rest) == 0 {
		return &ir.Union{Nullable: true}, nil
	}

	// A single survivor unwraps. Nullish members survive as the
	// single-member nullable union, the IR's nullable carrier.
	if len(rest) == 1 {
		n, err := b.nested(rest[0], ctx)
		if err != nil {
			return nil, err
		}
		return wrapNullable(n, nullable), nil
	}

	// Exactly the two boolean literals collapse to the boolean
	// primitive.
	if len(rest) == 2 {
		v0, ok0 := boolLit(rest[0])
		v1, ok1 := boolLit(rest[1])
		if ok0 && ok1 && v0 != v1 {
			return wrapNullable(ir.Boolean(), nullable), nil
		}
	}

	// Homogeneous literal sets collapse to enums.
	if e := literalEnum(rest); e != nil {
		return wrapNullable(e, nullable), nil
	}

	members, err := b.unionMembers(rest, ctx)
	if err != nil {
		return nil, err
	}
	return &ir.Union{
		Members:       members,
		Nullable:      nullable,
		Discriminator: b.detectDiscriminator(rest, ctx),
	}, nil
}

// flattenMembers splices anonymous nested unions into one flat member
// list, matching the host language's own union semantics. Named unions
// keep their identity so the reference rule can apply to them.
func flattenMembers(d typedesc.Descriptor) []typedesc.Descriptor {
	var out []typedesc.Descriptor
	for _, m := range d.Members() {
		if m != nil && m.Kind() == typedesc.KindUnion && m.Name() == "" {
			out = append(out, flattenMembers(m)...)
			continue
		}
		out = append(out, m)
	}
	return out
}

func (b *Builder) unionMembers(rest []typedesc.Descriptor, ctx *buildContext) ([]ir.Node, error) {
	nodes := make([]ir.Node, 0, len(rest))
	for _, m := range rest {
		n, err := b.nested(m, ctx)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	return collapseBoolPair(nodes), nil
}

// collapseBoolPair replaces a true/false literal pair inside a member
// list with a single boolean primitive at the pair's first position.
func collapseBoolPair(nodes []ir.Node) []ir.Node {
	trueIdx, falseIdx := -1, -1
	for i, n := range nodes {
		lit, ok := n.(*ir.Literal)
		if !ok || lit.ScalarKind != ir.ScalarBoolean {
			continue
		}
		if v, _ := lit.Value.(bool); v {
			if trueIdx < 0 {
				trueIdx = i
			}
		} else if falseIdx < 0 {
			falseIdx = i
		}
	}
	if trueIdx < 0 || falseIdx < 0 {
		return nodes
	}
	first, second := trueIdx, falseIdx
	if first > second {
		first, second = second, first
	}
	nodes[first] = ir.Boolean()
	return append(nodes[:second], nodes[second+1:]...)
}

// literalEnum collapses an all-string or all-number literal member list
// into an enum. Returns nil when the members are not homogeneous
// literals.
func literalEnum(members []typedesc.Descriptor) *ir.Enum {
	values := make([]any, 0, len(members))
	allString, allNumber := true, true
	for _, m := range members {
		if m.Kind() != typedesc.KindLiteral {
			return nil
		}
		switch v := m.Literal().(type) {
		case string:
			allNumber = false
			values = append(values, v)
		case float64:
			allString = false
			values = append(values, v)
		default:
			return nil
		}
	}
	switch {
	case allString:
		return &ir.Enum{ScalarKind: ir.ScalarString, Values: values}
	case allNumber:
		return &ir.Enum{ScalarKind: ir.ScalarNumber, Values: values}
	}
	return nil
}

// wrapNullable applies the nullable flag, folding into an existing
// union rather than double wrapping.
func wrapNullable(n ir.Node, nullable bool) ir.Node {
	if !nullable {
		return n
	}
	if u, ok := n.(*ir.Union); ok {
		u.Nullable = true
		return u
	}
	return ir.Nullable(n)
}

func boolLit(d typedesc.Descriptor) (bool, bool) {
	if d.Kind() != typedesc.KindLiteral {
		return false, false
	}
	v, ok := d.Literal().(bool)
	return v, ok
}

// detectDiscriminator finds a property common to every object-like
// member whose type is a literal in each member, with pairwise-distinct
// values. The first qualifying property in the first member's
// declaration order wins. A mapping is attached only when every member
// resolves to a document-level name.
func (b *Builder) detectDiscriminator(members []typedesc.Descriptor, ctx *buildContext) *ir.Discriminator {
	if len(members) < 2 {
		return nil
	}
	for _, m := range members {
		if m.Kind() != typedesc.KindObject {
			return nil
		}
	}

	for _, cand := range members[0].Properties() {
		if cand.Hidden {
			continue
		}
		if disc := tryDiscriminator(cand.Name, members, ctx); disc != nil {
			return disc
		}
	}
	return nil
}

func tryDiscriminator(property string, members []typedesc.Descriptor, ctx *buildContext) *ir.Discriminator {
	seen := make(map[string]bool, len(members))
	mapping := make(map[string]string, len(members))
	allNamed := true

	for _, m := range members {
		p, ok := findProperty(m, property)
		if !ok {
			return nil
		}
		key, ok := literalKey(p.Desc)
		if !ok {
			return nil
		}
		if seen[key] {
			return nil
		}
		seen[key] = true

		if name := m.Name(); name != "" && ctx.available[name] {
			mapping[key] = name
		} else {
			allNamed = false
		}
	}

	disc := &ir.Discriminator{PropertyName: property}
	if allNamed {
		disc.Mapping = mapping
	}
	return disc
}

func findProperty(d typedesc.Descriptor, name string) (typedesc.Property, bool) {
	for _, p := range d.Properties() {
		if p.Hidden {
			continue
		}
		if p.Name == name {
			return p, true
		}
	}
	return typedesc.Property{}, false
}

// literalKey renders a string or number literal descriptor as a mapping
// key. Boolean literals do not discriminate.
func literalKey(d typedesc.Descriptor) (string, bool) {
	if d == nil || d.Kind() != typedesc.KindLiteral {
		return "", false
	}
	switch v := d.Literal().(type) {
	case string:
		return v, true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	}
	return "", false
}
