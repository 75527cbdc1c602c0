package ir

// Document is an ordered collection of named schema nodes: the unit of
// conversion. The graph reachable from its entries may be cyclic
// through Reference nodes even though the name space is a flat map,
// because ownership is by name lookup, never by node pointer.
//
// A Document is built once per conversion request, is immutable once
// built, and is consumed read-only by emitters.
type Document struct {
	names []string
	nodes map[string]Node
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{nodes: make(map[string]Node)}
}

// Add registers a node under a unique name, preserving insertion order.
// A duplicate name is a StructuralError; nothing may be emitted from a
// document that failed to build.
func (d *Document) Add(name string, n Node) error {
	if _, ok := d.nodes[name]; ok {
		return DuplicateName(name)
	}
	if d.nodes == nil {
		d.nodes = make(map[string]Node)
	}
	d.names = append(d.names, name)
	d.nodes[name] = n
	return nil
}

// Get returns the node registered under name.
func (d *Document) Get(name string) (Node, bool) {
	n, ok := d.nodes[name]
	return n, ok
}

// Has reports whether name is registered.
func (d *Document) Has(name string) bool {
	_, ok := d.nodes[name]
	return ok
}

// Names returns the registered names in insertion order. The returned
// slice is shared; callers must not modify it.
func (d *Document) Names() []string { return d.names }

// Len returns the number of registered entries.
func (d *Document) Len() int { return len(d.names) }

// Validate checks referential integrity: every Reference reachable from
// a document entry must name a document entry. Returns all problems
// found, not just the first. References are not followed during the
// walk, so cyclic documents validate without looping.
func (d *Document) Validate() []error {
	var errs []error
	for _, name := range d.names {
		errs = append(errs, d.checkRefs(d.nodes[name], name)...)
	}
	return errs
}

func (d *Document) checkRefs(n Node, context string) []error {
	if n == nil {
		return nil
	}
	var errs []error
	switch v := n.(type) {
	case *Reference:
		if _, ok := d.nodes[v.Name]; !ok {
			errs = append(errs, Structuralf("%s references unknown type '%s'", context, v.Name))
		}
	case *Array:
		errs = append(errs, d.checkRefs(v.Element, context)...)
	case *Map:
		errs = append(errs, d.checkRefs(v.Value, context)...)
	case *Object:
		for _, p := range v.Properties {
			errs = append(errs, d.checkRefs(p.Schema, context+"."+p.Name)...)
		}
		if v.Extra != nil {
			errs = append(errs, d.checkRefs(v.Extra.Schema, context)...)
		}
	case *Union:
		for _, m := range v.Members {
			errs = append(errs, d.checkRefs(m, context)...)
		}
	case *Intersection:
		for _, m := range v.Members {
			errs = append(errs, d.checkRefs(m, context)...)
		}
	case *Primitive, *Literal, *Enum:
		// Leaves carry no references.
	}
	return errs
}
