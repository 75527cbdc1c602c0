// Package ir defines the canonical Schema Intermediate Representation.
// These nodes are format-agnostic representations of a data model that
// emitters project into OpenAPI documents, Protobuf definitions, or
// TypeScript declaration text, and that parsers reconstruct from those
// formats on the reverse path.
package ir

// NodeKind identifies the variant of a schema node.
type NodeKind int

const (
	KindPrimitive NodeKind = iota // Base scalar (string, number, boolean)
	KindLiteral                   // Single literal value
	KindEnum                      // Homogeneous ordered literal set
	KindArray                     // Ordered collection
	KindMap                       // String-keyed dynamic record
	KindObject                    // Structured type with named properties
	KindUnion                     // One-of-several members
	KindIntersection              // All-of-several members
	KindReference                 // Named pointer into the enclosing document
)

// String returns the string representation of the node kind.
func (k NodeKind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindLiteral:
		return "Literal"
	case KindEnum:
		return "Enum"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindObject:
		return "Object"
	case KindUnion:
		return "Union"
	case KindIntersection:
		return "Intersection"
	case KindReference:
		return "Reference"
	default:
		return "Unknown"
	}
}

// Node is the base interface for all schema nodes. The variant set is
// closed: emitters and parsers dispatch with exhaustive type switches,
// so adding a variant means updating every consumer.
type Node interface {
	// Kind returns the node kind for type switching.
	Kind() NodeKind

	// Meta returns metadata attached to this node, or nil.
	Meta() *Metadata

	// Ensure only types in this package can implement Node.
	sealed()
}

// nodeBase carries the optional metadata shared by every variant.
type nodeBase struct {
	// Metadata holds descriptive annotations, or nil.
	Metadata *Metadata
}

func (b *nodeBase) Meta() *Metadata { return b.Metadata }
func (*nodeBase) sealed()           {}

// ScalarKind identifies the base kind shared by primitives, literals,
// and enums.
type ScalarKind int

const (
	ScalarString ScalarKind = iota
	ScalarNumber
	ScalarBoolean
)

// String returns the JSON-Schema type name for the scalar kind.
func (k ScalarKind) String() string {
	switch k {
	case ScalarString:
		return "string"
	case ScalarNumber:
		return "number"
	case ScalarBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}
