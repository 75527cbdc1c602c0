package openapi

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/typeglot/typeglot/ir"
)

// Parse loads an OpenAPI document from JSON or YAML bytes and
// reconstructs the IR from its components.schemas.
func Parse(data []byte) (*ir.Document, error) {
	t, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return nil, &ir.ParseError{Format: "openapi", Err: err}
	}
	return ParseDocument(t)
}

// ParseDocument reconstructs the IR from an in-memory document. Entries
// are registered in sorted name order, and $ref strings resolve only
// against the document's own components.
func ParseDocument(t *openapi3.T) (*ir.Document, error) {
	doc := ir.NewDocument()
	if t == nil || t.Components == nil {
		return doc, nil
	}
	names := make([]string, 0, len(t.Components.Schemas))
	for name := range t.Components.Schemas {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		n, err := parseRef(t.Components.Schemas[name], name)
		if err != nil {
			return nil, err
		}
		stripSelfTitle(n, name)
		if err := doc.Add(name, n); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func parseRef(sr *openapi3.SchemaRef, context string) (ir.Node, error) {
	if sr == nil {
		return ir.MapOf(nil), nil
	}
	if sr.Ref != "" {
		name, ok := strings.CutPrefix(sr.Ref, refPrefix)
		if !ok {
			return nil, &ir.ParseError{
				Format:  "openapi",
				Context: context,
				Message: fmt.Sprintf("unsupported reference %q; only %s references are supported", sr.Ref, refPrefix),
			}
		}
		return ir.Ref(name), nil
	}
	return parseSchema(sr.Value, context)
}

func parseSchema(s *openapi3.Schema, context string) (ir.Node, error) {
	if s == nil {
		return ir.MapOf(nil), nil
	}
	nullable, types := splitNullable(s)
	node, err := parseShape(s, types, &nullable, context)
	if err != nil {
		return nil, err
	}

	m := parseMeta(s)
	if prim, ok := node.(*ir.Primitive); ok && m != nil && m.Format == prim.Format {
		m.Format = ""
	}
	setMeta(node, m)
	if nullable {
		node = nullableNode(node)
	}
	return node, nil
}

// splitNullable resolves both nullable conventions: the 3.0 flag and a
// "null" entry in the 3.1 type list.
func splitNullable(s *openapi3.Schema) (bool, []string) {
	nullable := s.Nullable
	var types []string
	if s.Type != nil {
		for _, t := range *s.Type {
			if t == "null" {
				nullable = true
				continue
			}
			types = append(types, t)
		}
	}
	return nullable, types
}

func parseShape(s *openapi3.Schema, types []string, nullable *bool, context string) (ir.Node, error) {
	if len(s.AllOf) > 0 {
		members, err := parseBranches(s.AllOf, context)
		if err != nil {
			return nil, err
		}
		// A single-branch allOf with the nullable flag is the 3.0
		// projection of a nullable reference; unwrap it so the common
		// tail re-applies the carrier union.
		if len(members) == 1 && *nullable {
			return members[0], nil
		}
		return ir.IntersectionOf(members...), nil
	}
	if len(s.OneOf) > 0 {
		return parseUnion(s, s.OneOf, nullable, context)
	}
	if len(s.AnyOf) > 0 {
		return parseUnion(s, s.AnyOf, nullable, context)
	}
	if len(s.Enum) > 0 {
		return parseEnum(s, nullable, context)
	}

	if len(types) > 1 {
		members := make([]ir.Node, 0, len(types))
		for _, t := range types {
			prim := scalarNode(t, s.Format)
			if prim == nil {
				return nil, &ir.ParseError{
					Format:  "openapi",
					Context: context,
					Message: fmt.Sprintf("unsupported type list %v", types),
				}
			}
			members = append(members, prim)
		}
		return ir.UnionOf(members...), nil
	}

	var base string
	if len(types) == 1 {
		base = types[0]
	}
	switch base {
	case "object":
		return parseObject(s, context)
	case "array":
		if s.Items == nil {
			return ir.ArrayOf(ir.MapOf(nil)), nil
		}
		element, err := parseRef(s.Items, context+"[]")
		if err != nil {
			return nil, err
		}
		return ir.ArrayOf(element), nil
	case "string", "number", "integer", "boolean":
		return scalarNode(base, s.Format), nil
	case "":
		if len(s.Properties) > 0 || s.AdditionalProperties.Has != nil || s.AdditionalProperties.Schema != nil {
			return parseObject(s, context)
		}
		if *nullable {
			return &ir.Union{}, nil
		}
		return ir.MapOf(nil), nil
	}
	return nil, &ir.ParseError{
		Format:  "openapi",
		Context: context,
		Message: fmt.Sprintf("unsupported type %q", base),
	}
}

func parseUnion(s *openapi3.Schema, branches openapi3.SchemaRefs, nullable *bool, context string) (ir.Node, error) {
	kept := make(openapi3.SchemaRefs, 0, len(branches))
	for _, b := range branches {
		if isNullBranch(b) {
			*nullable = true
			continue
		}
		kept = append(kept, b)
	}
	members, err := parseBranches(kept, context)
	if err != nil {
		return nil, err
	}
	switch {
	case len(members) == 0:
		if *nullable {
			return &ir.Union{}, nil
		}
		return nil, &ir.ParseError{
			Format:  "openapi",
			Context: context,
			Message: "union with no branches",
		}
	case len(members) == 1 && s.Discriminator == nil:
		return members[0], nil
	}
	return &ir.Union{
		Members:       members,
		Discriminator: parseDiscriminator(s.Discriminator),
	}, nil
}

func parseBranches(branches openapi3.SchemaRefs, context string) ([]ir.Node, error) {
	members := make([]ir.Node, 0, len(branches))
	for i, b := range branches {
		n, err := parseRef(b, fmt.Sprintf("%s[%d]", context, i))
		if err != nil {
			return nil, err
		}
		members = append(members, n)
	}
	return members, nil
}

func isNullBranch(sr *openapi3.SchemaRef) bool {
	if sr == nil || sr.Ref != "" || sr.Value == nil {
		return false
	}
	s := sr.Value
	return s.Type != nil && len(*s.Type) == 1 && (*s.Type)[0] == "null"
}

func parseEnum(s *openapi3.Schema, nullable *bool, context string) (ir.Node, error) {
	values := make([]any, 0, len(s.Enum))
	for _, v := range s.Enum {
		if v == nil {
			*nullable = true
			continue
		}
		values = append(values, normalizeValue(v))
	}
	if len(values) == 0 {
		return &ir.Union{}, nil
	}
	if len(values) == 1 {
		switch v := values[0].(type) {
		case string:
			return ir.StringLit(v), nil
		case float64:
			return ir.NumberLit(v), nil
		case bool:
			return ir.BoolLit(v), nil
		}
		return nil, &ir.ParseError{
			Format:  "openapi",
			Context: context,
			Message: fmt.Sprintf("unsupported enum value %v", values[0]),
		}
	}

	strs, nums, bools := 0, 0, 0
	for _, v := range values {
		switch v.(type) {
		case string:
			strs++
		case float64:
			nums++
		case bool:
			bools++
		}
	}
	switch {
	case strs == len(values):
		return &ir.Enum{ScalarKind: ir.ScalarString, Values: values}, nil
	case nums == len(values):
		return &ir.Enum{ScalarKind: ir.ScalarNumber, Values: values}, nil
	case bools == len(values):
		// true|false written out as an enum is just the boolean type.
		return ir.Boolean(), nil
	}
	return nil, &ir.ParseError{
		Format:  "openapi",
		Context: context,
		Message: "enum values mix strings and numbers",
	}
}

// normalizeValue coerces a decoded enum value into the canonical
// string/float64/bool literal set. Non-canonical numeric representations
// widen to float64; values that resist coercion return unchanged so the
// caller's unsupported-value path still fires.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		return val
	case bool:
		return val
	default:
		str := fmt.Sprintf("%v", v)
		var f float64
		if _, err := fmt.Sscanf(str, "%g", &f); err == nil {
			return f
		}
		return v
	}
}

func parseObject(s *openapi3.Schema, context string) (ir.Node, error) {
	extra := s.AdditionalProperties
	if len(s.Properties) == 0 {
		switch {
		case extra.Has != nil && *extra.Has:
			return ir.MapOf(nil), nil
		case extra.Schema != nil:
			value, err := parseRef(extra.Schema, context+"[*]")
			if err != nil {
				return nil, err
			}
			return ir.MapOf(value), nil
		}
		return &ir.Object{}, nil
	}

	names := make([]string, 0, len(s.Properties))
	for name := range s.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	required := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		required[name] = true
	}

	obj := &ir.Object{Properties: make([]ir.Property, 0, len(names))}
	for _, name := range names {
		child, err := parseRef(s.Properties[name], context+"."+name)
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, ir.Property{
			Name:     name,
			Schema:   child,
			Required: required[name],
		})
	}
	switch {
	case extra.Has != nil && *extra.Has:
		obj.Extra = &ir.Additional{Any: true}
	case extra.Schema != nil:
		value, err := parseRef(extra.Schema, context+"[*]")
		if err != nil {
			return nil, err
		}
		obj.Extra = &ir.Additional{Schema: value}
	}
	return obj, nil
}

func parseDiscriminator(d *openapi3.Discriminator) *ir.Discriminator {
	if d == nil {
		return nil
	}
	out := &ir.Discriminator{PropertyName: d.PropertyName}
	if len(d.Mapping) > 0 {
		out.Mapping = make(map[string]string, len(d.Mapping))
		for value, target := range d.Mapping {
			out.Mapping[value] = strings.TrimPrefix(target, refPrefix)
		}
	}
	return out
}

// scalarNode maps a wire type name to a primitive, or nil for
// non-scalar names. A bare integer defaults to int64.
func scalarNode(base, format string) ir.Node {
	switch base {
	case "string":
		return ir.Formatted(ir.ScalarString, format)
	case "number":
		return ir.Formatted(ir.ScalarNumber, format)
	case "integer":
		if format == "" {
			format = "int64"
		}
		return ir.Formatted(ir.ScalarNumber, format)
	case "boolean":
		return ir.Boolean()
	}
	return nil
}

func parseMeta(s *openapi3.Schema) *ir.Metadata {
	m := &ir.Metadata{
		Title:       s.Title,
		Description: s.Description,
		Default:     s.Default,
		Example:     s.Example,
		Deprecated:  s.Deprecated,
		MultipleOf:  s.MultipleOf,
		MaxLength:   s.MaxLength,
		Pattern:     s.Pattern,
		Format:      s.Format,
	}
	if s.ExclusiveMin {
		m.ExclusiveMinimum = s.Min
	} else {
		m.Minimum = s.Min
	}
	if s.ExclusiveMax {
		m.ExclusiveMaximum = s.Max
	} else {
		m.Maximum = s.Max
	}
	if s.MinLength > 0 {
		v := s.MinLength
		m.MinLength = &v
	}
	if len(s.Extensions) > 0 {
		keys := make([]string, 0, len(s.Extensions))
		for key := range s.Extensions {
			if strings.HasPrefix(key, "x-") {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)
		for _, key := range keys {
			m.Tags = append(m.Tags, ir.Tag{
				Name:  strings.TrimPrefix(key, "x-"),
				Value: fmt.Sprint(s.Extensions[key]),
			})
		}
	}
	if m.IsZero() {
		return nil
	}
	return m
}

// setMeta attaches metadata to a node. Empty metadata is stored as nil
// so reconstructed nodes match freshly built ones.
func setMeta(n ir.Node, m *ir.Metadata) {
	if m.IsZero() {
		m = nil
	}
	switch v := n.(type) {
	case *ir.Primitive:
		v.Metadata = m
	case *ir.Literal:
		v.Metadata = m
	case *ir.Enum:
		v.Metadata = m
	case *ir.Array:
		v.Metadata = m
	case *ir.Map:
		v.Metadata = m
	case *ir.Object:
		v.Metadata = m
	case *ir.Union:
		v.Metadata = m
	case *ir.Intersection:
		v.Metadata = m
	case *ir.Reference:
		v.Metadata = m
	}
}

// nullableNode marks a node nullable, folding into an existing union
// instead of double-wrapping.
func nullableNode(n ir.Node) ir.Node {
	if u, ok := n.(*ir.Union); ok {
		u.Nullable = true
		return u
	}
	return ir.Nullable(n)
}

// stripSelfTitle drops the title an emitter stamps on every root so a
// round trip does not grow synthetic metadata. Nullable carriers are
// looked through because the title lands on the rendered member.
func stripSelfTitle(n ir.Node, name string) {
	if m := n.Meta(); m != nil && m.Title == name {
		m.Title = ""
		if m.IsZero() {
			setMeta(n, nil)
		}
	}
	if u, ok := n.(*ir.Union); ok && len(u.Members) == 1 {
		stripSelfTitle(u.Members[0], name)
	}
}
