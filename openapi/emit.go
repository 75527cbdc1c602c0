// Package openapi projects IR documents into OpenAPI component schemas
// and reconstructs IR documents from OpenAPI input. Both directions use
// the kin-openapi models, so emitted output serializes with the same
// shapes the loader accepts.
package openapi

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/typeglot/typeglot/ir"
)

// Supported document versions. The version selects the nullable
// projection convention.
const (
	Version30 = "3.0"
	Version31 = "3.1"
)

// Union rendering keywords.
const (
	OneOf = "oneOf"
	AnyOf = "anyOf"
)

// Options configures the emitter.
type Options struct {
	// Version is "3.0" or "3.1". Defaults to "3.1".
	Version string

	// UnionStyle is "oneOf" or "anyOf". Defaults to "oneOf".
	UnionStyle string
}

// Emit renders every document entry into components-style schemas.
func Emit(doc *ir.Document, opts Options) (openapi3.Schemas, error) {
	return NewEmitter(opts).Emit(doc)
}

// EmitDocument renders the document as a minimal self-contained
// OpenAPI document keyed by components.schemas.
func EmitDocument(doc *ir.Document, opts Options) (*openapi3.T, error) {
	return NewEmitter(opts).EmitDocument(doc)
}

// Emitter renders IR documents as OpenAPI schemas.
type Emitter struct {
	opts Options
}

// NewEmitter returns an Emitter with defaults applied.
func NewEmitter(opts Options) *Emitter {
	if opts.Version == "" {
		opts.Version = Version31
	}
	if opts.UnionStyle == "" {
		opts.UnionStyle = OneOf
	}
	return &Emitter{opts: opts}
}

// Emit renders every document entry into components-style schemas. Each
// root receives title = <name> unless its metadata already supplies a
// title.
func (e *Emitter) Emit(doc *ir.Document) (openapi3.Schemas, error) {
	schemas := make(openapi3.Schemas, doc.Len())
	for _, name := range doc.Names() {
		n, _ := doc.Get(name)
		sr, err := e.schema(n)
		if err != nil {
			return nil, fmt.Errorf("schema %q: %w", name, err)
		}
		if sr.Value != nil && sr.Value.Title == "" {
			sr.Value.Title = name
		}
		schemas[name] = sr
	}
	return schemas, nil
}

// EmitDocument wraps Emit's schemas into a minimal self-contained
// document keyed by components.schemas.
func (e *Emitter) EmitDocument(doc *ir.Document) (*openapi3.T, error) {
	schemas, err := e.Emit(doc)
	if err != nil {
		return nil, err
	}
	version := "3.0.3"
	if e.opts.Version == Version31 {
		version = "3.1.0"
	}
	return &openapi3.T{
		OpenAPI:    version,
		Info:       &openapi3.Info{Title: "Schemas", Version: "0.1.0"},
		Paths:      openapi3.NewPaths(),
		Components: &openapi3.Components{Schemas: schemas},
	}, nil
}

func (e *Emitter) schema(n ir.Node) (*openapi3.SchemaRef, error) {
	switch v := n.(type) {
	case *ir.Reference:
		return openapi3.NewSchemaRef(refPrefix+v.Name, nil), nil

	case *ir.Primitive:
		s := &openapi3.Schema{
			Type:   &openapi3.Types{scalarType(v.ScalarKind, v.Format)},
			Format: v.Format,
		}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil

	case *ir.Literal:
		s := &openapi3.Schema{
			Type: &openapi3.Types{v.ScalarKind.String()},
			Enum: []any{v.Value},
		}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil

	case *ir.Enum:
		s := &openapi3.Schema{
			Type: &openapi3.Types{v.ScalarKind.String()},
			Enum: append([]any(nil), v.Values...),
		}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil

	case *ir.Array:
		items, err := e.schema(v.Element)
		if err != nil {
			return nil, err
		}
		s := &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: items,
		}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil

	case *ir.Map:
		s := &openapi3.Schema{Type: &openapi3.Types{"object"}}
		if v.Value == nil {
			has := true
			s.AdditionalProperties = openapi3.AdditionalProperties{Has: &has}
		} else {
			value, err := e.schema(v.Value)
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = openapi3.AdditionalProperties{Schema: value}
		}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil

	case *ir.Object:
		return e.object(v)

	case *ir.Union:
		return e.union(v)

	case *ir.Intersection:
		members := make(openapi3.SchemaRefs, 0, len(v.Members))
		for _, m := range v.Members {
			sr, err := e.schema(m)
			if err != nil {
				return nil, err
			}
			members = append(members, sr)
		}
		s := &openapi3.Schema{AllOf: members}
		e.applyMeta(s, v.Meta())
		return schemaRef(s), nil
	}
	return nil, ir.Unsupported(fmt.Sprintf("%T", n))
}

func (e *Emitter) object(v *ir.Object) (*openapi3.SchemaRef, error) {
	s := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas, len(v.Properties)),
	}
	for _, p := range v.Properties {
		sr, err := e.schema(p.Schema)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", p.Name, err)
		}
		// Property-level metadata merges into the property's schema. A
		// bare $ref cannot carry metadata, so it is left as-is.
		if sr.Value != nil {
			e.applyMeta(sr.Value, p.Meta)
		}
		s.Properties[p.Name] = sr
		if p.Required {
			s.Required = append(s.Required, p.Name)
		}
	}
	if v.Extra != nil {
		if v.Extra.Any {
			has := true
			s.AdditionalProperties = openapi3.AdditionalProperties{Has: &has}
		} else {
			sr, err := e.schema(v.Extra.Schema)
			if err != nil {
				return nil, err
			}
			s.AdditionalProperties = openapi3.AdditionalProperties{Schema: sr}
		}
	}
	e.applyMeta(s, v.Meta())
	return schemaRef(s), nil
}

func (e *Emitter) union(v *ir.Union) (*openapi3.SchemaRef, error) {
	// The bare null type: a nullable union with no members.
	if len(v.Members) == 0 {
		if !v.Nullable {
			return nil, ir.Unsupported("union with no members")
		}
		if e.opts.Version == Version30 {
			return schemaRef(&openapi3.Schema{Nullable: true}), nil
		}
		return schemaRef(&openapi3.Schema{Type: &openapi3.Types{"null"}}), nil
	}

	// The single-member form is the nullable carrier: render the member
	// and project nullability onto it.
	if len(v.Members) == 1 {
		sr, err := e.schema(v.Members[0])
		if err != nil {
			return nil, err
		}
		if v.Nullable {
			sr = e.nullabilize(sr)
		}
		if sr.Value != nil {
			e.applyMeta(sr.Value, v.Meta())
		}
		return sr, nil
	}

	members := make(openapi3.SchemaRefs, 0, len(v.Members))
	for _, m := range v.Members {
		sr, err := e.schema(m)
		if err != nil {
			return nil, err
		}
		members = append(members, sr)
	}

	s := &openapi3.Schema{}
	e.setBranches(s, members)
	if v.Discriminator != nil {
		s.Discriminator = &openapi3.Discriminator{
			PropertyName: v.Discriminator.PropertyName,
			Mapping:      refMapping(v.Discriminator.Mapping),
		}
	}
	e.applyMeta(s, v.Meta())
	sr := schemaRef(s)
	if v.Nullable {
		sr = e.nullabilize(sr)
	}
	return sr, nil
}

// nullabilize applies the version-specific nullable projection to an
// already-rendered schema. Under 3.0 the node gains nullable:true;
// under 3.1 a primitive's type list gains "null" and a oneOf/anyOf
// gains an appended null branch.
func (e *Emitter) nullabilize(sr *openapi3.SchemaRef) *openapi3.SchemaRef {
	if sr.Value == nil {
		// A bare $ref carries no keywords of its own, so it is wrapped.
		if e.opts.Version == Version30 {
			return schemaRef(&openapi3.Schema{
				AllOf:    openapi3.SchemaRefs{sr},
				Nullable: true,
			})
		}
		s := &openapi3.Schema{}
		e.setBranches(s, openapi3.SchemaRefs{sr, nullSchema()})
		return schemaRef(s)
	}

	s := sr.Value
	if e.opts.Version == Version30 {
		s.Nullable = true
		return sr
	}
	switch {
	case len(s.OneOf) > 0:
		s.OneOf = append(s.OneOf, nullSchema())
	case len(s.AnyOf) > 0:
		s.AnyOf = append(s.AnyOf, nullSchema())
	case s.Type != nil:
		types := append(openapi3.Types{}, *s.Type...)
		types = append(types, "null")
		s.Type = &types
	default:
		wrapped := &openapi3.Schema{}
		e.setBranches(wrapped, openapi3.SchemaRefs{sr, nullSchema()})
		return schemaRef(wrapped)
	}
	return sr
}

func (e *Emitter) setBranches(s *openapi3.Schema, members openapi3.SchemaRefs) {
	if e.opts.UnionStyle == AnyOf {
		s.AnyOf = members
		return
	}
	s.OneOf = members
}

// applyMeta merges descriptive metadata onto a structurally derived
// schema without overwriting any field the structural walk already set.
func (e *Emitter) applyMeta(s *openapi3.Schema, m *ir.Metadata) {
	if m.IsZero() {
		return
	}
	if m.Title != "" && s.Title == "" {
		s.Title = m.Title
	}
	if m.Description != "" && s.Description == "" {
		s.Description = m.Description
	}
	if m.Default != nil && s.Default == nil {
		s.Default = m.Default
	}
	if m.Example != nil && s.Example == nil {
		s.Example = m.Example
	}
	if m.Deprecated {
		s.Deprecated = true
	}
	if m.Minimum != nil && s.Min == nil {
		s.Min = m.Minimum
	}
	if m.Maximum != nil && s.Max == nil {
		s.Max = m.Maximum
	}
	if m.ExclusiveMinimum != nil && s.Min == nil {
		s.Min = m.ExclusiveMinimum
		s.ExclusiveMin = true
	}
	if m.ExclusiveMaximum != nil && s.Max == nil {
		s.Max = m.ExclusiveMaximum
		s.ExclusiveMax = true
	}
	if m.MultipleOf != nil && s.MultipleOf == nil {
		s.MultipleOf = m.MultipleOf
	}
	if m.MinLength != nil && s.MinLength == 0 {
		s.MinLength = *m.MinLength
	}
	if m.MaxLength != nil && s.MaxLength == nil {
		s.MaxLength = m.MaxLength
	}
	if m.Pattern != "" && s.Pattern == "" {
		s.Pattern = m.Pattern
	}
	if m.Format != "" && s.Format == "" {
		s.Format = m.Format
	}
	for _, tag := range m.Tags {
		key := "x-" + tag.Name
		if s.Extensions == nil {
			s.Extensions = make(map[string]any, len(m.Tags))
		}
		if _, ok := s.Extensions[key]; !ok {
			s.Extensions[key] = tag.Value
		}
	}
}

const refPrefix = "#/components/schemas/"

func schemaRef(s *openapi3.Schema) *openapi3.SchemaRef {
	return openapi3.NewSchemaRef("", s)
}

func nullSchema() *openapi3.SchemaRef {
	return schemaRef(&openapi3.Schema{Type: &openapi3.Types{"null"}})
}

// refMapping turns a literal-to-name mapping into the ref form the
// discriminator keyword expects.
func refMapping(mapping map[string]string) map[string]string {
	if mapping == nil {
		return nil
	}
	out := make(map[string]string, len(mapping))
	for value, name := range mapping {
		out[value] = refPrefix + name
	}
	return out
}

// scalarType picks the wire type for a primitive. Integer formats use
// the dedicated integer type.
func scalarType(kind ir.ScalarKind, format string) string {
	if kind == ir.ScalarNumber && (format == "int32" || format == "int64") {
		return "integer"
	}
	return kind.String()
}
