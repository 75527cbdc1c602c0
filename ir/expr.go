package ir

// Array represents an ordered collection.
type Array struct {
	nodeBase

	// Element is the array element type.
	Element Node
}

// Kind returns KindArray.
func (n *Array) Kind() NodeKind { return KindArray }

// ArrayOf returns an Array over the given element type.
func ArrayOf(element Node) *Array {
	return &Array{Element: element}
}

// Map represents a dynamic record. The key type is fixed to string.
type Map struct {
	nodeBase

	// Value is the value type. A nil Value means the value type is
	// unconstrained ("any"), the fully dynamic record.
	Value Node
}

// Kind returns KindMap.
func (n *Map) Kind() NodeKind { return KindMap }

// MapOf returns a Map with the given value type. Pass nil for an
// unconstrained value type.
func MapOf(value Node) *Map {
	return &Map{Value: value}
}

// Union represents a one-of-several composition.
//
// Nullability: a source type of the form `T | null` is represented as a
// single-member Union with Nullable set. Emitters unwrap the member and
// apply their format's nullable projection.
type Union struct {
	nodeBase

	// Members are the union alternatives. A single-member union is the
	// nullable carrier described above.
	Members []Node

	// Nullable records that a null or undefined member was present in
	// the source union.
	Nullable bool

	// Discriminator is present when every member is object-like and
	// shares a literal-typed property with pairwise-distinct values.
	Discriminator *Discriminator
}

// Kind returns KindUnion.
func (n *Union) Kind() NodeKind { return KindUnion }

// UnionOf returns a Union over the given members.
func UnionOf(members ...Node) *Union {
	return &Union{Members: members}
}

// Nullable wraps a node in the single-member nullable Union form.
func Nullable(member Node) *Union {
	return &Union{Members: []Node{member}, Nullable: true}
}

// Discriminator identifies which union member applies by the literal
// value of a shared property.
type Discriminator struct {
	// PropertyName is the shared literal-typed property.
	PropertyName string

	// Mapping maps each member's literal value to its document-level
	// type name. Nil when any member does not resolve to a
	// document-level name.
	Mapping map[string]string
}

// Intersection represents an all-of-several composition. Members are
// kept separate in the IR; merging is deferred to emitters because
// allOf/inheritance semantics differ by target format.
type Intersection struct {
	nodeBase

	// Members are the intersected parts.
	Members []Node
}

// Kind returns KindIntersection.
func (n *Intersection) Kind() NodeKind { return KindIntersection }

// IntersectionOf returns an Intersection over the given members.
func IntersectionOf(members ...Node) *Intersection {
	return &Intersection{Members: members}
}

// Reference points to a document entry by name. It never owns the
// referenced node; ownership stays with the Document, which is what
// makes cyclic type graphs representable.
type Reference struct {
	nodeBase

	// Name is the document-level type name.
	Name string
}

// Kind returns KindReference.
func (n *Reference) Kind() NodeKind { return KindReference }

// Ref returns a Reference to a named document entry.
func Ref(name string) *Reference {
	return &Reference{Name: name}
}
