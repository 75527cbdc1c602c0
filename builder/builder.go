// Package builder turns host type descriptors into IR documents. It is
// the normalization engine of the forward path: unions collapse into
// their canonical forms, enums resolve their member values, objects
// with only an index signature become maps, format tags are extracted,
// and nested occurrences of document-level names become references so
// cyclic type graphs stay finite.
package builder

import (
	"strings"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

// Options configures a build.
type Options struct {
	// CoerceSymbols maps symbol-like descriptors to string primitives
	// instead of failing the build.
	CoerceSymbols bool

	// DateSchema overrides the node produced for date descriptors.
	// When nil, dates become Primitive{string, "date-time"}.
	DateSchema func() ir.Node
}

// Builder builds IR documents from type descriptors.
type Builder struct {
	opts Options
}

// New returns a Builder with the given options.
func New(opts Options) *Builder {
	return &Builder{opts: opts}
}

// Document builds a document from named roots. Each root is expanded in
// full exactly once; every nested occurrence of a root name becomes a
// Reference. Duplicate root names fail before anything is built.
func (b *Builder) Document(roots []typedesc.Named) (*ir.Document, error) {
	ctx := &buildContext{
		available:  make(map[string]bool, len(roots)),
		inProgress: make(map[string]bool),
	}
	for _, r := range roots {
		if ctx.available[r.Name] {
			return nil, ir.DuplicateName(r.Name)
		}
		ctx.available[r.Name] = true
	}

	doc := ir.NewDocument()
	for _, r := range roots {
		n, err := b.build(r.Desc, ctx)
		if err != nil {
			return nil, err
		}
		if err := doc.Add(r.Name, n); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// buildContext threads the reference rule's name sets and the recursion
// depth through the walk.
type buildContext struct {
	available  map[string]bool
	inProgress map[string]bool
	depth      int
}

// build converts one descriptor. Callers descending into children go
// through nested so the depth tracks nesting.
func (b *Builder) build(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	if d == nil {
		return nil, ir.Unsupported("<nil>")
	}

	// Reference rule: a document-level name becomes a Reference when it
	// is already being expanded (a cycle) or when it occurs anywhere
	// below the root (a nested occurrence). Only the root entry itself
	// expands inline.
	if name := d.Name(); name != "" && ctx.available[name] {
		if ctx.inProgress[name] || ctx.depth > 0 {
			return ir.Ref(name), nil
		}
		ctx.inProgress[name] = true
		defer delete(ctx.inProgress, name)
	}

	switch d.Kind() {
	case typedesc.KindString:
		return ir.String(), nil
	case typedesc.KindNumber:
		return ir.Number(), nil
	case typedesc.KindBoolean:
		return ir.Boolean(), nil
	case typedesc.KindAny, typedesc.KindUnknown:
		// The fully dynamic value: a record with an unconstrained
		// value type.
		return ir.MapOf(nil), nil
	case typedesc.KindNull, typedesc.KindUndefined:
		// The bare null type: a nullable union with no members.
		return &ir.Union{Nullable: true}, nil
	case typedesc.KindSymbol:
		if !b.opts.CoerceSymbols {
			return nil, ir.Configf("Symbol types are not supported; set CoerceSymbols to map them to strings. Received: %s", d.Text())
		}
		return ir.String(), nil
	case typedesc.KindDate:
		if b.opts.DateSchema != nil {
			return b.opts.DateSchema(), nil
		}
		return ir.Formatted(ir.ScalarString, "date-time"), nil
	case typedesc.KindLiteral:
		return b.buildLiteral(d)
	case typedesc.KindArray:
		elem, err := b.nested(d.Elem(), ctx)
		if err != nil {
			return nil, err
		}
		return ir.ArrayOf(elem), nil
	case typedesc.KindObject:
		return b.buildObject(d, ctx)
	case typedesc.KindUnion:
		return b.buildUnion(d, ctx)
	case typedesc.KindIntersection:
		return b.buildIntersection(d, ctx)
	case typedesc.KindEnum:
		return b.buildEnum(d)
	case typedesc.KindTagged:
		return b.buildTagged(d, ctx)
	case typedesc.KindOpaque:
		return b.buildOpaque(d)
	default:
		return nil, ir.Unsupported(d.Text())
	}
}

// nested builds a child descriptor one level deeper.
func (b *Builder) nested(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	ctx.depth++
	n, err := b.build(d, ctx)
	ctx.depth--
	return n, err
}

func (b *Builder) buildLiteral(d typedesc.Descriptor) (ir.Node, error) {
	switch v := d.Literal().(type) {
	case string:
		return ir.StringLit(v), nil
	case float64:
		return ir.NumberLit(v), nil
	case bool:
		return ir.BoolLit(v), nil
	}
	return nil, ir.Unsupported(d.Text())
}

func (b *Builder) buildObject(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	// Hidden properties are dropped before anything else so they never
	// appear in Properties nor influence Required.
	var visible []typedesc.Property
	for _, p := range d.Properties() {
		if p.Hidden {
			continue
		}
		visible = append(visible, p)
	}

	index := d.Index()

	// Map detection: an object with no declared properties and an index
	// signature is a dynamic record, never a property list.
	if len(visible) == 0 && index != nil {
		if isDynamic(index) {
			return ir.MapOf(nil), nil
		}
		v, err := b.nested(index, ctx)
		if err != nil {
			return nil, err
		}
		return ir.MapOf(v), nil
	}

	obj := &ir.Object{}
	for _, p := range visible {
		n, err := b.nested(p.Desc, ctx)
		if err != nil {
			return nil, err
		}
		obj.Properties = append(obj.Properties, ir.Property{
			Name:     p.Name,
			Schema:   n,
			Required: !p.Optional,
			Meta:     p.Meta,
		})
	}
	if index != nil {
		if isDynamic(index) {
			obj.Extra = &ir.Additional{Any: true}
		} else {
			v, err := b.nested(index, ctx)
			if err != nil {
				return nil, err
			}
			obj.Extra = &ir.Additional{Schema: v}
		}
	}
	return obj, nil
}

func (b *Builder) buildIntersection(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	members := d.Members()
	if len(members) == 0 {
		return nil, ir.Unsupported(d.Text())
	}
	nodes := make([]ir.Node, 0, len(members))
	for _, m := range members {
		n, err := b.nested(m, ctx)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, n)
	}
	// Property merging is deferred to the emitters; allOf and
	// inheritance semantics differ per target format.
	return ir.IntersectionOf(nodes...), nil
}

func (b *Builder) buildTagged(d typedesc.Descriptor, ctx *buildContext) (ir.Node, error) {
	// Tier 1: the host resolved the generic argument.
	format := d.Tagged()
	if format == "" {
		// Tier 2: recover the quoted literal from the raw text, using
		// the tag name as the anchor. Needed when alias flattening
		// hides the generic argument from the host.
		format = formatFromText(d.Text())
	}
	if format == "" {
		return nil, ir.Structuralf("%s requires a format argument. Received: %s", typedesc.FormatTag, d.Text())
	}

	if base := d.Elem(); base != nil {
		n, err := b.nested(base, ctx)
		if err != nil {
			return nil, err
		}
		prim, ok := n.(*ir.Primitive)
		if !ok {
			return nil, ir.Unsupported(d.Text())
		}
		return ir.Formatted(prim.ScalarKind, format), nil
	}
	return ir.Formatted(scalarForFormat(format), format), nil
}

// formatFromText extracts the first quoted literal after the format-tag
// anchor from a raw rendering like `Format<number, "int64">`.
func formatFromText(text string) string {
	i := strings.Index(text, typedesc.FormatTag)
	if i < 0 {
		return ""
	}
	rest := text[i+len(typedesc.FormatTag):]
	start := strings.IndexByte(rest, '"')
	if start < 0 {
		return ""
	}
	end := strings.IndexByte(rest[start+1:], '"')
	if end < 0 {
		return ""
	}
	return rest[start+1 : start+1+end]
}

// scalarForFormat infers the base scalar kind for a bare format tag.
func scalarForFormat(format string) ir.ScalarKind {
	switch format {
	case "int32", "int64", "float", "double":
		return ir.ScalarNumber
	default:
		return ir.ScalarString
	}
}

// deniedGlobals are host globals with no structural mapping in any
// output format.
var deniedGlobals = map[string]bool{
	"Function": true,
	"RegExp":   true,
	"Promise":  true,
	"WeakMap":  true,
	"WeakSet":  true,
	"Error":    true,
}

// bufferGlobals are binary-buffer host globals. They degrade to base64
// strings, which the Protobuf emitter maps to bytes.
var bufferGlobals = map[string]bool{
	"ArrayBuffer":       true,
	"SharedArrayBuffer": true,
	"DataView":          true,
	"Buffer":            true,
	"Uint8Array":        true,
	"Uint8ClampedArray": true,
	"Int8Array":         true,
	"Uint16Array":       true,
	"Int16Array":        true,
	"Uint32Array":       true,
	"Int32Array":        true,
	"Float32Array":      true,
	"Float64Array":      true,
	"BigUint64Array":    true,
	"BigInt64Array":     true,
}

func (b *Builder) buildOpaque(d typedesc.Descriptor) (ir.Node, error) {
	name := d.Name()
	if deniedGlobals[name] {
		return nil, ir.UnsupportedGlobal(name)
	}
	if bufferGlobals[name] {
		return ir.Formatted(ir.ScalarString, "byte"), nil
	}
	return nil, ir.Unsupported(d.Text())
}

func isDynamic(d typedesc.Descriptor) bool {
	k := d.Kind()
	return k == typedesc.KindAny || k == typedesc.KindUnknown
}
