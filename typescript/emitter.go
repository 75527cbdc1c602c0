// Package typescript renders IR documents as TypeScript type
// declarations, the textual end of the reverse path. Objects become
// exported interfaces, every other root becomes an exported type alias,
// and metadata renders as adjoining JSDoc.
package typescript

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/typeglot/typeglot/ir"
)

// Options configures the emitter.
type Options struct {
	// Declare adds the declare modifier to every declaration, for
	// ambient .d.ts output.
	Declare bool
}

// Emitter renders IR documents as TypeScript declarations.
type Emitter struct {
	opts Options
}

// NewEmitter returns an Emitter with the given options.
func NewEmitter(opts Options) *Emitter {
	return &Emitter{opts: opts}
}

// EmitDocument renders every entry of doc and returns the declaration
// texts keyed by entry name.
func EmitDocument(doc *ir.Document, opts Options) (map[string]string, error) {
	return NewEmitter(opts).EmitDocument(doc)
}

// Render renders doc as a single declaration file.
func Render(doc *ir.Document, opts Options) (string, error) {
	return NewEmitter(opts).Render(doc)
}

// EmitDocument renders every entry and returns the declarations keyed
// by name. Each declaration carries no trailing newline.
func (e *Emitter) EmitDocument(doc *ir.Document) (map[string]string, error) {
	out := make(map[string]string, len(doc.Names()))
	for _, name := range doc.Names() {
		n, _ := doc.Get(name)
		text, err := e.declaration(name, n)
		if err != nil {
			return nil, fmt.Errorf("declaration %q: %w", name, err)
		}
		out[name] = text
	}
	return out, nil
}

// Render concatenates the declarations in document order, one blank
// line apart. Output is byte-identical across runs over an unchanged
// document.
func (e *Emitter) Render(doc *ir.Document) (string, error) {
	var b strings.Builder
	for i, name := range doc.Names() {
		n, _ := doc.Get(name)
		text, err := e.declaration(name, n)
		if err != nil {
			return "", fmt.Errorf("declaration %q: %w", name, err)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(text)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// declaration renders one named entry: objects as interfaces, anything
// else as a type alias.
func (e *Emitter) declaration(name string, n ir.Node) (string, error) {
	var b strings.Builder
	writeJSDoc(&b, jsdocLines(n.Meta()), "")

	b.WriteString("export ")
	if e.opts.Declare {
		b.WriteString("declare ")
	}

	typeName := escapeReservedWord(name)
	if obj, ok := n.(*ir.Object); ok {
		b.WriteString("interface ")
		b.WriteString(typeName)
		b.WriteString(" {\n")
		if err := e.writeMembers(&b, obj); err != nil {
			return "", err
		}
		b.WriteString("}")
		return b.String(), nil
	}

	expr, err := e.expr(n)
	if err != nil {
		return "", err
	}
	b.WriteString("type ")
	b.WriteString(typeName)
	b.WriteString(" = ")
	b.WriteString(expr)
	b.WriteString(";")
	return b.String(), nil
}

func (e *Emitter) writeMembers(b *strings.Builder, obj *ir.Object) error {
	for _, p := range obj.Properties {
		writeJSDoc(b, memberDoc(p), "  ")
		b.WriteString("  ")
		b.WriteString(propertyName(p.Name))
		if !p.Required {
			b.WriteByte('?')
		}
		b.WriteString(": ")
		expr, err := e.expr(p.Schema)
		if err != nil {
			return fmt.Errorf("property %q: %w", p.Name, err)
		}
		b.WriteString(expr)
		b.WriteString(";\n")
	}
	if obj.Extra != nil {
		value := "unknown"
		if !obj.Extra.Any {
			expr, err := e.expr(obj.Extra.Schema)
			if err != nil {
				return fmt.Errorf("index signature: %w", err)
			}
			value = expr
		}
		fmt.Fprintf(b, "  [key: string]: %s;\n", value)
	}
	return nil
}

// expr renders a type expression.
func (e *Emitter) expr(n ir.Node) (string, error) {
	switch v := n.(type) {
	case *ir.Primitive:
		return v.ScalarKind.String(), nil
	case *ir.Literal:
		return formatValue(v.Value), nil
	case *ir.Enum:
		if len(v.Values) == 0 {
			return "never", nil
		}
		parts := make([]string, len(v.Values))
		for i, value := range v.Values {
			parts[i] = formatValue(value)
		}
		return strings.Join(parts, " | "), nil
	case *ir.Reference:
		return escapeReservedWord(v.Name), nil
	case *ir.Array:
		elem, err := e.expr(v.Element)
		if err != nil {
			return "", err
		}
		if needsParens(v.Element) {
			return "(" + elem + ")[]", nil
		}
		return elem + "[]", nil
	case *ir.Map:
		if v.Value == nil {
			return "Record<string, unknown>", nil
		}
		value, err := e.expr(v.Value)
		if err != nil {
			return "", err
		}
		return "Record<string, " + value + ">", nil
	case *ir.Object:
		return e.inlineObject(v)
	case *ir.Union:
		return e.union(v)
	case *ir.Intersection:
		parts := make([]string, 0, len(v.Members))
		for _, m := range v.Members {
			part, err := e.expr(m)
			if err != nil {
				return "", err
			}
			if needsParens(m) {
				part = "(" + part + ")"
			}
			parts = append(parts, part)
		}
		return strings.Join(parts, " & "), nil
	}
	return "", ir.Unsupported(strings.ToLower(n.Kind().String()))
}

func (e *Emitter) union(u *ir.Union) (string, error) {
	if len(u.Members) == 0 {
		if u.Nullable {
			return "null", nil
		}
		return "never", nil
	}
	parts := make([]string, 0, len(u.Members)+1)
	for _, m := range u.Members {
		part, err := e.expr(m)
		if err != nil {
			return "", err
		}
		parts = append(parts, part)
	}
	if u.Nullable {
		parts = append(parts, "null")
	}
	return strings.Join(parts, " | "), nil
}

// inlineObject renders an anonymous object as a single-line literal.
func (e *Emitter) inlineObject(obj *ir.Object) (string, error) {
	var parts []string
	for _, p := range obj.Properties {
		expr, err := e.expr(p.Schema)
		if err != nil {
			return "", fmt.Errorf("property %q: %w", p.Name, err)
		}
		name := propertyName(p.Name)
		if !p.Required {
			name += "?"
		}
		parts = append(parts, name+": "+expr)
	}
	if obj.Extra != nil {
		value := "unknown"
		if !obj.Extra.Any {
			expr, err := e.expr(obj.Extra.Schema)
			if err != nil {
				return "", fmt.Errorf("index signature: %w", err)
			}
			value = expr
		}
		parts = append(parts, "[key: string]: "+value)
	}
	if len(parts) == 0 {
		return "{}", nil
	}
	return "{ " + strings.Join(parts, "; ") + " }", nil
}

// needsParens reports whether a member expression must be parenthesized
// when embedded in array or intersection syntax.
func needsParens(n ir.Node) bool {
	switch v := n.(type) {
	case *ir.Union:
		return v.Nullable || len(v.Members) > 1
	case *ir.Enum:
		return len(v.Values) > 1
	case *ir.Intersection:
		return len(v.Members) > 1
	}
	return false
}

func propertyName(name string) string {
	if needsQuoting(name) {
		return strconv.Quote(name)
	}
	return name
}

// memberDoc prefers metadata on the property itself and falls back to
// metadata carried on its schema node.
func memberDoc(p ir.Property) []string {
	if lines := jsdocLines(p.Meta); len(lines) > 0 {
		return lines
	}
	return jsdocLines(p.Schema.Meta())
}

// jsdocLines flattens metadata into JSDoc body lines: description
// first, then one @tag line per annotation, constraint values verbatim.
func jsdocLines(m *ir.Metadata) []string {
	if m.IsZero() {
		return nil
	}
	var lines []string
	if m.Description != "" {
		lines = append(lines, strings.Split(strings.TrimRight(m.Description, "\n"), "\n")...)
	}
	if m.Title != "" {
		lines = append(lines, "@title "+m.Title)
	}
	if m.Deprecated {
		lines = append(lines, "@deprecated")
	}
	if m.Default != nil {
		lines = append(lines, "@default "+formatValue(m.Default))
	}
	if m.Example != nil {
		lines = append(lines, "@example "+formatValue(m.Example))
	}
	lines = appendNumberTag(lines, "minimum", m.Minimum)
	lines = appendNumberTag(lines, "maximum", m.Maximum)
	lines = appendNumberTag(lines, "exclusiveMinimum", m.ExclusiveMinimum)
	lines = appendNumberTag(lines, "exclusiveMaximum", m.ExclusiveMaximum)
	lines = appendNumberTag(lines, "multipleOf", m.MultipleOf)
	if m.MinLength != nil {
		lines = append(lines, "@minLength "+strconv.FormatUint(*m.MinLength, 10))
	}
	if m.MaxLength != nil {
		lines = append(lines, "@maxLength "+strconv.FormatUint(*m.MaxLength, 10))
	}
	if m.Pattern != "" {
		lines = append(lines, "@pattern "+m.Pattern)
	}
	if m.Format != "" {
		lines = append(lines, "@format "+m.Format)
	}
	for _, t := range m.Tags {
		if t.Value == "" {
			lines = append(lines, "@"+t.Name)
			continue
		}
		lines = append(lines, "@"+t.Name+" "+t.Value)
	}
	return lines
}

func appendNumberTag(lines []string, name string, v *float64) []string {
	if v == nil {
		return lines
	}
	return append(lines, "@"+name+" "+formatNumber(*v))
}

// writeJSDoc renders lines as a JSDoc block: single-line form for one
// line, block form otherwise.
func writeJSDoc(b *strings.Builder, lines []string, indent string) {
	if len(lines) == 0 {
		return
	}
	if len(lines) == 1 {
		b.WriteString(indent)
		b.WriteString("/** ")
		b.WriteString(lines[0])
		b.WriteString(" */\n")
		return
	}
	b.WriteString(indent)
	b.WriteString("/**\n")
	for _, line := range lines {
		b.WriteString(indent)
		if line == "" {
			b.WriteString(" *\n")
			continue
		}
		b.WriteString(" * ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	b.WriteString(indent)
	b.WriteString(" */\n")
}

// formatValue renders a literal value in TypeScript literal syntax.
func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case float64:
		return formatNumber(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
