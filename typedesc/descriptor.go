// Package typedesc defines the capability interface through which the
// builder queries host type information. The core never depends on a
// specific compiler or reflection API: a host implements Descriptor
// over whatever type facts it has, and the builder consumes it. Base
// provides no-op defaults so hosts implement only the capabilities they
// actually have, and the Synth kit assembles descriptor trees by hand
// for providers and tests.
package typedesc

import "github.com/typeglot/typeglot/ir"

// Kind classifies what a descriptor represents.
type Kind int

const (
	// Scalar and special kinds.
	KindString Kind = iota
	KindNumber
	KindBoolean
	KindNull
	KindUndefined
	KindAny
	KindUnknown
	KindSymbol
	KindDate

	// Composite kinds.
	KindLiteral
	KindArray
	KindObject
	KindUnion
	KindIntersection
	KindEnum

	// KindTagged is a scalar carrying a secondary format tag.
	KindTagged

	// KindOpaque is a host type the structured queries cannot open
	// (a global class, an unresolved generic). The builder classifies
	// it by Name.
	KindOpaque
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindUndefined:
		return "undefined"
	case KindAny:
		return "any"
	case KindUnknown:
		return "unknown"
	case KindSymbol:
		return "symbol"
	case KindDate:
		return "date"
	case KindLiteral:
		return "literal"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindUnion:
		return "union"
	case KindIntersection:
		return "intersection"
	case KindEnum:
		return "enum"
	case KindTagged:
		return "tagged"
	case KindOpaque:
		return "opaque"
	default:
		return "invalid"
	}
}

// FormatTag is the name of the format wrapper type recognized by the
// builder's tier-2 text extraction: when a host cannot resolve the
// generic argument of a format-tagged scalar, the builder scans the
// descriptor's Text for the first quoted literal after this anchor.
const FormatTag = "Format"

// Descriptor is the capability interface over one unit of host type
// information. Methods return zero values for capabilities that do not
// apply to the descriptor's kind.
type Descriptor interface {
	// Kind classifies the descriptor.
	Kind() Kind

	// Name returns the declared name or alias, if any.
	Name() string

	// Text returns a free-form textual rendering of the type. Used in
	// error messages and as the tier-2 fallback for format extraction.
	Text() string

	// Elem returns the element descriptor for arrays, and the base
	// scalar for format-tagged descriptors. Nil when not applicable.
	Elem() Descriptor

	// Members returns union or intersection members in declaration
	// order.
	Members() []Descriptor

	// Properties returns the object-like property list in declaration
	// order.
	Properties() []Property

	// Index returns the index-signature value descriptor, or nil when
	// the object declares none.
	Index() Descriptor

	// EnumMembers returns enumeration members in declaration order.
	EnumMembers() []EnumMember

	// Literal returns the literal value (string, float64, or bool) for
	// literal descriptors.
	Literal() any

	// Tagged returns the host-resolved format tag for format-tagged
	// descriptors. Empty when the host could not resolve the generic
	// argument; the builder then falls back to Text parsing.
	Tagged() string
}

// Property is one object-like property as the host reports it.
type Property struct {
	// Name is the property name.
	Name string

	// Desc is the property's type descriptor.
	Desc Descriptor

	// Optional marks the property as absent-able.
	Optional bool

	// Hidden marks private, ignored, or package-scoped properties. The
	// builder drops hidden properties before computing the required
	// list, so they never appear in output nor influence it.
	Hidden bool

	// Meta is pre-parsed documentation metadata for the property, or
	// nil.
	Meta *ir.Metadata
}

// EnumMember is one enumeration member.
type EnumMember struct {
	// Name is the member name.
	Name string

	// Value is the member's literal value: a string or float64 when
	// statically resolved, nil when the member has no explicit value
	// (auto-increment), or Unresolved when a value exists but cannot
	// be statically resolved.
	Value any
}

type unresolvedValue struct{}

// Unresolved marks an enum member whose value exists but cannot be
// statically resolved to a literal. The builder reports such members as
// a StructuralError naming the member.
var Unresolved any = unresolvedValue{}

// Named pairs a document-level name with its descriptor. The builder
// consumes a list of Named as the document roots.
type Named struct {
	Name string
	Desc Descriptor
}

// Base provides zero-value implementations of every Descriptor method
// except Kind, so hosts implement only what they have.
type Base struct{}

func (Base) Name() string              { return "" }
func (Base) Text() string              { return "" }
func (Base) Elem() Descriptor          { return nil }
func (Base) Members() []Descriptor     { return nil }
func (Base) Properties() []Property    { return nil }
func (Base) Index() Descriptor         { return nil }
func (Base) EnumMembers() []EnumMember { return nil }
func (Base) Literal() any              { return nil }
func (Base) Tagged() string            { return "" }
