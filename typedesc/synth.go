package typedesc

import (
	"fmt"
	"strings"
)

// Synth is a self-contained Descriptor assembled field by field.
// Providers build Synth trees from parsed source; tests build them
// directly. Trees may be cyclic: a property's Desc may point back at an
// ancestor Synth.
type Synth struct {
	// TypeKind classifies the descriptor.
	TypeKind Kind

	// TypeName is the declared name or alias, if any.
	TypeName string

	// RawText overrides the synthesized Text rendering. Providers set
	// it to the original source text of the type.
	RawText string

	// Element is the array element or the tagged scalar's base.
	Element Descriptor

	// Parts are union or intersection members.
	Parts []Descriptor

	// Props are the declared object properties.
	Props []Property

	// IndexValue is the index-signature value type, or nil.
	IndexValue Descriptor

	// EnumVals are the enumeration members.
	EnumVals []EnumMember

	// LitValue is the literal value (string, float64, or bool).
	LitValue any

	// TagFormat is the host-resolved format tag, when known.
	TagFormat string
}

func (d *Synth) Kind() Kind                { return d.TypeKind }
func (d *Synth) Name() string              { return d.TypeName }
func (d *Synth) Elem() Descriptor          { return d.Element }
func (d *Synth) Members() []Descriptor     { return d.Parts }
func (d *Synth) Properties() []Property    { return d.Props }
func (d *Synth) Index() Descriptor         { return d.IndexValue }
func (d *Synth) EnumMembers() []EnumMember { return d.EnumVals }
func (d *Synth) Literal() any              { return d.LitValue }
func (d *Synth) Tagged() string            { return d.TagFormat }

// Text returns RawText when set, otherwise a synthesized rendering good
// enough for error messages.
func (d *Synth) Text() string {
	if d.RawText != "" {
		return d.RawText
	}
	if d.TypeName != "" {
		return d.TypeName
	}
	switch d.TypeKind {
	case KindLiteral:
		if s, ok := d.LitValue.(string); ok {
			return fmt.Sprintf("%q", s)
		}
		return fmt.Sprint(d.LitValue)
	case KindArray:
		if d.Element != nil {
			return d.Element.Text() + "[]"
		}
	case KindUnion, KindIntersection:
		sep := " | "
		if d.TypeKind == KindIntersection {
			sep = " & "
		}
		parts := make([]string, len(d.Parts))
		for i, m := range d.Parts {
			parts[i] = m.Text()
		}
		return strings.Join(parts, sep)
	case KindObject:
		return "object"
	}
	return d.TypeKind.String()
}

// Constructor kit. Providers and tests assemble descriptor trees with
// these; fields that have no constructor argument (TypeName, RawText,
// IndexValue) are set directly on the returned Synth.

// Scalar returns a descriptor for a non-composite kind.
func Scalar(k Kind) *Synth {
	return &Synth{TypeKind: k}
}

// Lit returns a literal descriptor. Value must be a string, float64, or
// bool.
func Lit(value any) *Synth {
	return &Synth{TypeKind: KindLiteral, LitValue: value}
}

// List returns an array descriptor.
func List(element Descriptor) *Synth {
	return &Synth{TypeKind: KindArray, Element: element}
}

// Object returns an object descriptor with declared properties.
func Object(props ...Property) *Synth {
	return &Synth{TypeKind: KindObject, Props: props}
}

// Union returns a union descriptor.
func Union(members ...Descriptor) *Synth {
	return &Synth{TypeKind: KindUnion, Parts: members}
}

// Intersect returns an intersection descriptor.
func Intersect(members ...Descriptor) *Synth {
	return &Synth{TypeKind: KindIntersection, Parts: members}
}

// Enum returns an enumeration descriptor.
func Enum(members ...EnumMember) *Synth {
	return &Synth{TypeKind: KindEnum, EnumVals: members}
}

// Tagged returns a format-tagged scalar with a host-resolved format.
func Tagged(base Descriptor, format string) *Synth {
	return &Synth{TypeKind: KindTagged, Element: base, TagFormat: format}
}

// Opaque returns an opaque host type known only by name.
func Opaque(name string) *Synth {
	return &Synth{TypeKind: KindOpaque, TypeName: name}
}

// Field returns a required Property.
func Field(name string, desc Descriptor) Property {
	return Property{Name: name, Desc: desc}
}

// OptField returns an optional Property.
func OptField(name string, desc Descriptor) Property {
	return Property{Name: name, Desc: desc, Optional: true}
}
