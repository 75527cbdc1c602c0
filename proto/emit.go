package proto

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/typeglot/typeglot/ir"
)

// EmptyMessage is the sentinel request/response message referenced by
// service methods that leave their type unset.
const EmptyMessage = "Empty"

// DefaultService names a service whose spec carries no name.
const DefaultService = "Service"

// Options configures the emitter.
type Options struct {
	// Package names the emitted package. Empty omits the declaration.
	Package string

	// Services are externally annotated call sites to render as service
	// blocks. The document itself carries no call information.
	Services []ServiceSpec
}

// Emit renders the document as a proto3 model. Objects and
// intersections become messages, string enums become enum declarations,
// and anything else at the document root is unsupported.
func Emit(doc *ir.Document, opts Options) (*Model, error) {
	e := &emitter{doc: doc, model: &Model{Syntax: "proto3", Package: opts.Package}}
	for _, name := range doc.Names() {
		n, _ := doc.Get(name)
		if err := e.declare(name, n); err != nil {
			return nil, err
		}
	}
	e.services(opts.Services)
	return e.model, nil
}

type emitter struct {
	doc   *ir.Document
	model *Model
}

func (e *emitter) declare(name string, n ir.Node) error {
	switch v := n.(type) {
	case *ir.Object:
		return e.message(name, v)
	case *ir.Intersection:
		merged, err := e.mergeIntersection(name, v)
		if err != nil {
			return err
		}
		return e.message(name, merged)
	case *ir.Enum:
		return e.enum(name, v)
	}
	return ir.Unsupported(fmt.Sprintf("%s '%s' as a top-level protobuf declaration",
		strings.ToLower(n.Kind().String()), name))
}

func (e *emitter) message(name string, obj *ir.Object) error {
	if obj.Extra != nil {
		return ir.Unsupported(fmt.Sprintf("object '%s' mixing named properties with an index signature", name))
	}

	// Reserve the slot up front so lifted nested messages land after
	// their parent in declaration order.
	idx := len(e.model.Messages)
	e.model.Messages = append(e.model.Messages, Message{})

	msg := Message{Name: name, Comments: comments(obj.Meta())}
	number := int32(1)
	for _, p := range obj.Properties {
		f, err := e.fieldFor(name, p)
		if err != nil {
			return err
		}
		f.Number = number
		number++
		msg.Fields = append(msg.Fields, f)
	}
	e.model.Messages[idx] = msg
	return nil
}

// fieldFor picks the field shape with map taking precedence over
// repeated, and repeated over optional. A repeated or map field drops
// nullability: protobuf cannot mark either optional.
func (e *emitter) fieldFor(parent string, p ir.Property) (Field, error) {
	f := Field{Name: p.Name, Comments: fieldComments(p)}

	shape := p.Schema
	optional := !p.Required
	if u, ok := shape.(*ir.Union); ok && u.Nullable && len(u.Members) == 1 {
		optional = true
		shape = u.Members[0]
	}

	switch s := shape.(type) {
	case *ir.Map:
		f.KeyType = "string"
		if s.Value == nil {
			f.Type = "bytes"
			return f, nil
		}
		valueType, err := e.typeName(parent, p.Name, s.Value)
		if err != nil {
			return Field{}, err
		}
		f.Type = valueType
		return f, nil

	case *ir.Array:
		elemType, err := e.typeName(parent, p.Name, s.Element)
		if err != nil {
			return Field{}, err
		}
		f.Repeated = true
		f.Type = elemType
		return f, nil
	}

	typeName, err := e.typeName(parent, p.Name, shape)
	if err != nil {
		return Field{}, err
	}
	f.Type = typeName
	f.Optional = optional
	return f, nil
}

func (e *emitter) typeName(parent, field string, n ir.Node) (string, error) {
	switch v := n.(type) {
	case *ir.Primitive:
		return scalarKeyword(v.ScalarKind, v.Format), nil
	case *ir.Literal:
		return scalarKeyword(v.ScalarKind, ""), nil
	case *ir.Enum:
		// Inline enums have no declaration to point at.
		return scalarKeyword(v.ScalarKind, ""), nil
	case *ir.Reference:
		return v.Name, nil
	case *ir.Object:
		lifted := parent + exportName(field)
		if err := e.message(lifted, v); err != nil {
			return "", err
		}
		return lifted, nil
	case *ir.Intersection:
		lifted := parent + exportName(field)
		merged, err := e.mergeIntersection(lifted, v)
		if err != nil {
			return "", err
		}
		if err := e.message(lifted, merged); err != nil {
			return "", err
		}
		return lifted, nil
	case *ir.Union:
		if v.Nullable && len(v.Members) == 1 {
			// Nested nullability has no rendering of its own.
			return e.typeName(parent, field, v.Members[0])
		}
		return "", ir.Unsupported(fmt.Sprintf("union in field '%s.%s'", parent, field))
	case *ir.Map:
		return "", ir.Unsupported(fmt.Sprintf("nested map in field '%s.%s'", parent, field))
	case *ir.Array:
		return "", ir.Unsupported(fmt.Sprintf("nested array in field '%s.%s'", parent, field))
	}
	return "", ir.Unsupported(strings.ToLower(n.Kind().String()))
}

func (e *emitter) mergeIntersection(name string, x *ir.Intersection) (*ir.Object, error) {
	merged := &ir.Object{}
	index := make(map[string]int)
	for _, member := range x.Members {
		obj, err := e.objectMember(name, member)
		if err != nil {
			return nil, err
		}
		for _, p := range obj.Properties {
			if i, ok := index[p.Name]; ok {
				merged.Properties[i] = p
				continue
			}
			index[p.Name] = len(merged.Properties)
			merged.Properties = append(merged.Properties, p)
		}
		if obj.Extra != nil {
			merged.Extra = obj.Extra
		}
	}
	return merged, nil
}

func (e *emitter) objectMember(name string, n ir.Node) (*ir.Object, error) {
	switch v := n.(type) {
	case *ir.Object:
		return v, nil
	case *ir.Reference:
		target, ok := e.doc.Get(v.Name)
		if !ok {
			return nil, ir.Unsupported(fmt.Sprintf("unresolved intersection member '%s' in '%s'", v.Name, name))
		}
		return e.objectMember(name, target)
	case *ir.Intersection:
		return e.mergeIntersection(name, v)
	}
	return nil, ir.Unsupported(fmt.Sprintf("intersection with a non-object member in '%s'", name))
}

func (e *emitter) enum(name string, v *ir.Enum) error {
	if v.ScalarKind != ir.ScalarString {
		return ir.Unsupported(fmt.Sprintf("non-string enum '%s' as a top-level protobuf declaration", name))
	}
	en := Enum{Name: name, Comments: comments(v.Meta())}
	for i, value := range v.Values {
		s, ok := value.(string)
		if !ok {
			return ir.Unsupported(fmt.Sprintf("enum '%s' with non-string value %v", name, value))
		}
		en.Values = append(en.Values, EnumValue{Name: identFor(s), Number: int32(i)})
	}
	e.model.Enums = append(e.model.Enums, en)
	return nil
}

func (e *emitter) services(specs []ServiceSpec) {
	needEmpty := false
	for _, spec := range specs {
		svc := ServiceSpec{Name: spec.Name}
		if svc.Name == "" {
			svc.Name = DefaultService
		}
		for _, m := range spec.Methods {
			method := MethodSpec{
				Name:         m.Name,
				RequestType:  m.RequestType,
				ResponseType: m.ResponseType,
			}
			if method.RequestType == "" {
				method.RequestType = EmptyMessage
				needEmpty = true
			}
			if method.ResponseType == "" {
				method.ResponseType = EmptyMessage
				needEmpty = true
			}
			svc.Methods = append(svc.Methods, method)
		}
		e.model.Services = append(e.model.Services, svc)
	}
	if needEmpty && !e.hasMessage(EmptyMessage) {
		e.model.Messages = append(e.model.Messages, Message{Name: EmptyMessage})
	}
}

func (e *emitter) hasMessage(name string) bool {
	for _, m := range e.model.Messages {
		if m.Name == name {
			return true
		}
	}
	return false
}

func scalarKeyword(kind ir.ScalarKind, format string) string {
	switch kind {
	case ir.ScalarString:
		if format == "byte" || format == "binary" {
			return "bytes"
		}
		return "string"
	case ir.ScalarNumber:
		switch format {
		case "int32", "int64", "uint32", "uint64", "float", "double":
			return format
		}
		return "int32"
	case ir.ScalarBoolean:
		return "bool"
	}
	return "string"
}

// comments renders metadata as comment lines: description lines first,
// then one @tag line per custom tag.
func comments(m *ir.Metadata) []string {
	if m.IsZero() {
		return nil
	}
	var out []string
	if m.Description != "" {
		out = append(out, strings.Split(strings.TrimRight(m.Description, "\n"), "\n")...)
	}
	for _, t := range m.Tags {
		if t.Value == "" {
			out = append(out, "@"+t.Name)
			continue
		}
		out = append(out, "@"+t.Name+" "+t.Value)
	}
	return out
}

// fieldComments prefers the property's own metadata and falls back to
// metadata carried on its schema node.
func fieldComments(p ir.Property) []string {
	if lines := comments(p.Meta); len(lines) > 0 {
		return lines
	}
	return comments(p.Schema.Meta())
}

// identFor renders an enum value as a proto identifier: ASCII letters,
// digits and underscores survive, anything else becomes an underscore,
// and a leading digit gains one.
func identFor(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if b.Len() == 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

func exportName(field string) string {
	r, size := utf8.DecodeRuneInString(field)
	if r == utf8.RuneError {
		return field
	}
	return string(unicode.ToUpper(r)) + field[size:]
}
