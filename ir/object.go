package ir

// Object represents a structured type with named properties.
type Object struct {
	nodeBase

	// Properties contains the declared properties in declaration order.
	Properties []Property

	// Extra models an index signature declared alongside the properties.
	// Nil when the object has no index signature. An object with ONLY an
	// index signature (no declared properties) is represented as a Map,
	// not an Object.
	Extra *Additional
}

// Kind returns KindObject.
func (n *Object) Kind() NodeKind { return KindObject }

// ObjectOf returns an Object with the given properties.
func ObjectOf(properties ...Property) *Object {
	return &Object{Properties: properties}
}

// Property is a single named object property.
type Property struct {
	// Name is the serialized property name.
	Name string

	// Schema is the property's type.
	Schema Node

	// Required is false for optional properties.
	Required bool

	// Meta holds metadata attached to the property itself, or nil.
	// Property metadata is distinct from metadata on Schema.
	Meta *Metadata
}

// Prop returns a required Property.
func Prop(name string, schema Node) Property {
	return Property{Name: name, Schema: schema, Required: true}
}

// OptProp returns an optional Property.
func OptProp(name string, schema Node) Property {
	return Property{Name: name, Schema: schema}
}

// Additional describes an object's index signature.
type Additional struct {
	// Any marks a fully dynamic signature. When set, Schema is nil.
	Any bool

	// Schema is the typed value schema when Any is false.
	Schema Node
}
