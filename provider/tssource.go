package provider

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

// tsLexer defines the token types for the TypeScript declaration subset.
var tsLexer = lexer.MustSimple([]lexer.SimpleRule{
	// Comments
	{Name: "LineComment", Pattern: `//[^\n]*`},
	{Name: "BlockComment", Pattern: `/\*(?:[^*]|\*[^/])*\*/`},

	// Literals
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},

	// Identifiers
	{Name: "Ident", Pattern: `[\p{L}_$][\p{L}\p{N}_$]*`},

	// Punctuation
	{Name: "LBrace", Pattern: `\{`},
	{Name: "RBrace", Pattern: `\}`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "LAngle", Pattern: `<`},
	{Name: "RAngle", Pattern: `>`},
	{Name: "Colon", Pattern: `:`},
	{Name: "Semi", Pattern: `;`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Dot", Pattern: `\.`},
	{Name: "Equal", Pattern: `=`},
	{Name: "Question", Pattern: `\?`},
	{Name: "Pipe", Pattern: `\|`},
	{Name: "Amp", Pattern: `&`},

	// Whitespace and newlines
	{Name: "Newline", Pattern: `[\r\n]+`},
	{Name: "Whitespace", Pattern: `[ \t]+`},
})

// declarationFile is the parse tree root: a sequence of top-level
// declarations.
type declarationFile struct {
	Decls []*declaration `@@*`
}

// declaration is one top-level declaration with its optional modifiers.
type declaration struct {
	Export  bool           `@"export"?`
	Declare bool           `@"declare"?`
	Iface   *interfaceDecl `( @@`
	Alias   *aliasDecl     `| @@`
	Enum    *enumDecl      `| @@ ) ";"?`
}

// name returns the declared name regardless of the declaration form.
func (d *declaration) name() string {
	switch {
	case d.Iface != nil:
		return d.Iface.Name
	case d.Alias != nil:
		return d.Alias.Name
	case d.Enum != nil:
		return d.Enum.Name
	}
	return ""
}

type interfaceDecl struct {
	Name    string        `"interface" @Ident`
	Extends []string      `("extends" @Ident ("," @Ident)*)?`
	Members []*memberDecl `"{" @@* "}"`
}

type aliasDecl struct {
	Name  string    `"type" @Ident`
	Value *typeExpr `"=" @@`
}

type enumDecl struct {
	Const   bool         `@"const"?`
	Name    string       `"enum" @Ident`
	Members []*enumEntry `"{" (@@ ("," @@)* ","?)? "}"`
}

type enumEntry struct {
	Name  string     `(@Ident | @String)`
	Value *enumValue `("=" @@)?`
}

// enumValue is an enum member initializer. Anything beyond a plain
// string or number literal is kept as a path and reported as
// statically unresolvable.
type enumValue struct {
	Str  *string  `@String`
	Num  *float64 `| @Number`
	Path []string `| @Ident ("." @Ident)*`
}

type memberDecl struct {
	Index *indexMember `@@`
	Prop  *propMember  `| @@`
}

func (m *memberDecl) text() string {
	if m.Index != nil {
		return fmt.Sprintf("[%s: %s]: %s", m.Index.KeyName, m.Index.KeyType, m.Index.Value.text())
	}
	opt := ""
	if m.Prop.Optional {
		opt = "?"
	}
	return m.Prop.Name + opt + ": " + m.Prop.Value.text()
}

type indexMember struct {
	KeyName string    `"[" @Ident ":"`
	KeyType string    `@Ident "]"`
	Value   *typeExpr `":" @@ (";" | ",")?`
}

type propMember struct {
	Readonly bool      `@"readonly"?`
	Name     string    `(@Ident | @String)`
	Optional bool      `@"?"?`
	Value    *typeExpr `":" @@ (";" | ",")?`
}

// typeExpr is a union of intersections, the lowest-precedence level.
type typeExpr struct {
	First *intersectExpr   `@@`
	Rest  []*intersectExpr `("|" @@)*`
}

func (t *typeExpr) text() string {
	parts := make([]string, 0, len(t.Rest)+1)
	parts = append(parts, t.First.text())
	for _, m := range t.Rest {
		parts = append(parts, m.text())
	}
	return strings.Join(parts, " | ")
}

// stringLit returns the unquoted value when the expression is a bare
// string literal, and nil otherwise.
func (t *typeExpr) stringLit() *string {
	if len(t.Rest) > 0 || len(t.First.Rest) > 0 {
		return nil
	}
	p := t.First.First
	if len(p.Suffixes) > 0 || p.Base.Str == nil {
		return nil
	}
	s := unquote(*p.Base.Str)
	return &s
}

type intersectExpr struct {
	First *postfixExpr   `@@`
	Rest  []*postfixExpr `("&" @@)*`
}

func (t *intersectExpr) text() string {
	parts := make([]string, 0, len(t.Rest)+1)
	parts = append(parts, t.First.text())
	for _, m := range t.Rest {
		parts = append(parts, m.text())
	}
	return strings.Join(parts, " & ")
}

type postfixExpr struct {
	Base     *primaryExpr `@@`
	Suffixes []string     `@("[" "]")*`
}

func (p *postfixExpr) text() string {
	s := p.Base.text()
	for range p.Suffixes {
		s += "[]"
	}
	return s
}

type primaryExpr struct {
	Paren   *typeExpr    `"(" @@ ")"`
	Object  *objectExpr  `| @@`
	Str     *string      `| @String`
	Num     *float64     `| @Number`
	True    bool         `| @"true"`
	False   bool         `| @"false"`
	Generic *genericExpr `| @@`
	Ref     *string      `| @Ident`
}

func (p *primaryExpr) text() string {
	switch {
	case p.Paren != nil:
		return "(" + p.Paren.text() + ")"
	case p.Object != nil:
		return p.Object.text()
	case p.Str != nil:
		return *p.Str
	case p.Num != nil:
		return fmt.Sprintf("%g", *p.Num)
	case p.True:
		return "true"
	case p.False:
		return "false"
	case p.Generic != nil:
		return p.Generic.text()
	case p.Ref != nil:
		return *p.Ref
	}
	return ""
}

type genericExpr struct {
	Name string      `@Ident`
	Args []*typeExpr `"<" @@ ("," @@)* ">"`
}

func (g *genericExpr) text() string {
	args := make([]string, len(g.Args))
	for i, a := range g.Args {
		args[i] = a.text()
	}
	return g.Name + "<" + strings.Join(args, ", ") + ">"
}

type objectExpr struct {
	Members []*memberDecl `"{" @@* "}"`
}

func (o *objectExpr) text() string {
	if len(o.Members) == 0 {
		return "{}"
	}
	parts := make([]string, len(o.Members))
	for i, m := range o.Members {
		parts[i] = m.text()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

// tsParser is the participle parser instance for the declaration
// subset.
var tsParser = participle.MustBuild[declarationFile](
	participle.Lexer(tsLexer),
	participle.Elide("Whitespace", "Newline", "LineComment", "BlockComment"),
	participle.UseLookahead(10),
)

// ParseTypeScript parses a practical subset of TypeScript declaration
// source into named descriptor roots ready for the builder. The subset
// covers interface declarations (with extends, optional and quoted
// properties, and string index signatures), type aliases over unions,
// intersections, arrays, literals, inline objects, Record, Array, and
// format-tagged scalars, and enum declarations. Comments are skipped;
// metadata reaches the core through descriptors, not source text.
func ParseTypeScript(src string) ([]typedesc.Named, error) {
	file, err := tsParser.ParseString("", src)
	if err != nil {
		return nil, &ir.ParseError{Format: "typescript", Err: err}
	}
	return convertDeclarations(file)
}

// scalarKeywords are the built-in type names with a direct descriptor
// kind.
var scalarKeywords = map[string]typedesc.Kind{
	"string":    typedesc.KindString,
	"number":    typedesc.KindNumber,
	"boolean":   typedesc.KindBoolean,
	"null":      typedesc.KindNull,
	"undefined": typedesc.KindUndefined,
	"void":      typedesc.KindUndefined,
	"any":       typedesc.KindAny,
	"unknown":   typedesc.KindUnknown,
	"symbol":    typedesc.KindSymbol,
	"Date":      typedesc.KindDate,
}

// tsConverter turns the parse tree into descriptor trees. Every
// declared name gets a placeholder up front so forward and cyclic
// references resolve to the shared node.
type tsConverter struct {
	decls   map[string]*typedesc.Synth
	current string
}

func convertDeclarations(file *declarationFile) ([]typedesc.Named, error) {
	c := &tsConverter{decls: make(map[string]*typedesc.Synth, len(file.Decls))}
	for _, d := range file.Decls {
		name := d.name()
		if _, ok := c.decls[name]; !ok {
			c.decls[name] = &typedesc.Synth{TypeName: name}
		}
	}

	// Duplicate declarations share one placeholder here; the builder
	// rejects the duplicate name before anything is emitted.
	roots := make([]typedesc.Named, 0, len(file.Decls))
	for _, d := range file.Decls {
		ph := c.decls[d.name()]
		if err := c.fill(ph, d); err != nil {
			return nil, err
		}
		roots = append(roots, typedesc.Named{Name: d.name(), Desc: ph})
	}
	return roots, nil
}

// fill converts a declaration body into its placeholder in place, so
// every node already pointing at the placeholder sees the result.
func (c *tsConverter) fill(ph *typedesc.Synth, d *declaration) error {
	c.current = ph.TypeName
	body, err := c.declBody(d)
	if err != nil {
		return err
	}
	name := ph.TypeName
	*ph = *body
	ph.TypeName = name
	return nil
}

func (c *tsConverter) declBody(d *declaration) (*typedesc.Synth, error) {
	switch {
	case d.Iface != nil:
		return c.interfaceBody(d.Iface)
	case d.Alias != nil:
		return c.aliasBody(d.Alias)
	case d.Enum != nil:
		return c.enumBody(d.Enum), nil
	}
	return nil, &ir.ParseError{Format: "typescript", Message: "empty declaration"}
}

func (c *tsConverter) interfaceBody(d *interfaceDecl) (*typedesc.Synth, error) {
	obj, err := c.objectBody(d.Members)
	if err != nil {
		return nil, err
	}
	if len(d.Extends) == 0 {
		return obj, nil
	}
	parts := make([]typedesc.Descriptor, 0, len(d.Extends)+1)
	for _, base := range d.Extends {
		parts = append(parts, c.resolve(base))
	}
	parts = append(parts, obj)
	return typedesc.Intersect(parts...), nil
}

// aliasBody converts a type alias. An alias whose value carries its own
// identity (another declaration, or an opaque global) is wrapped in a
// single-member union so the target keeps that identity; the builder
// unwraps the wrapper.
func (c *tsConverter) aliasBody(d *aliasDecl) (*typedesc.Synth, error) {
	body, err := c.typeOf(d.Value)
	if err != nil {
		return nil, err
	}
	if body.TypeName != "" {
		return typedesc.Union(body), nil
	}
	return body, nil
}

func (c *tsConverter) enumBody(d *enumDecl) *typedesc.Synth {
	members := make([]typedesc.EnumMember, 0, len(d.Members))
	for _, m := range d.Members {
		em := typedesc.EnumMember{Name: memberName(m.Name)}
		if m.Value != nil {
			switch {
			case m.Value.Str != nil:
				em.Value = unquote(*m.Value.Str)
			case m.Value.Num != nil:
				em.Value = *m.Value.Num
			default:
				em.Value = typedesc.Unresolved
			}
		}
		members = append(members, em)
	}
	return typedesc.Enum(members...)
}

func (c *tsConverter) objectBody(members []*memberDecl) (*typedesc.Synth, error) {
	syn := &typedesc.Synth{TypeKind: typedesc.KindObject}
	for _, m := range members {
		switch {
		case m.Index != nil:
			if m.Index.KeyType != "string" {
				return nil, &ir.ParseError{
					Format:  "typescript",
					Context: c.current,
					Message: fmt.Sprintf("only string index signatures are supported, got %s", m.Index.KeyType),
				}
			}
			v, err := c.typeOf(m.Index.Value)
			if err != nil {
				return nil, err
			}
			syn.IndexValue = v
		case m.Prop != nil:
			desc, err := c.typeOf(m.Prop.Value)
			if err != nil {
				return nil, err
			}
			syn.Props = append(syn.Props, typedesc.Property{
				Name:     memberName(m.Prop.Name),
				Desc:     desc,
				Optional: m.Prop.Optional,
			})
		}
	}
	return syn, nil
}

func (c *tsConverter) typeOf(t *typeExpr) (*typedesc.Synth, error) {
	if len(t.Rest) == 0 {
		return c.intersectOf(t.First)
	}
	parts := make([]typedesc.Descriptor, 0, len(t.Rest)+1)
	for _, m := range append([]*intersectExpr{t.First}, t.Rest...) {
		d, err := c.intersectOf(m)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}
	return typedesc.Union(parts...), nil
}

func (c *tsConverter) intersectOf(t *intersectExpr) (*typedesc.Synth, error) {
	if len(t.Rest) == 0 {
		return c.postfixOf(t.First)
	}
	parts := make([]typedesc.Descriptor, 0, len(t.Rest)+1)
	for _, m := range append([]*postfixExpr{t.First}, t.Rest...) {
		d, err := c.postfixOf(m)
		if err != nil {
			return nil, err
		}
		parts = append(parts, d)
	}
	return typedesc.Intersect(parts...), nil
}

func (c *tsConverter) postfixOf(p *postfixExpr) (*typedesc.Synth, error) {
	syn, err := c.primaryOf(p.Base)
	if err != nil {
		return nil, err
	}
	for range p.Suffixes {
		syn = typedesc.List(syn)
	}
	return syn, nil
}

func (c *tsConverter) primaryOf(p *primaryExpr) (*typedesc.Synth, error) {
	switch {
	case p.Paren != nil:
		return c.typeOf(p.Paren)
	case p.Object != nil:
		return c.objectBody(p.Object.Members)
	case p.Str != nil:
		return typedesc.Lit(unquote(*p.Str)), nil
	case p.Num != nil:
		return typedesc.Lit(*p.Num), nil
	case p.True:
		return typedesc.Lit(true), nil
	case p.False:
		return typedesc.Lit(false), nil
	case p.Generic != nil:
		return c.genericOf(p.Generic)
	case p.Ref != nil:
		return c.resolve(*p.Ref), nil
	}
	return nil, &ir.ParseError{Format: "typescript", Context: c.current, Message: "empty type expression"}
}

func (c *tsConverter) genericOf(g *genericExpr) (*typedesc.Synth, error) {
	switch g.Name {
	case "Array":
		if len(g.Args) == 1 {
			elem, err := c.typeOf(g.Args[0])
			if err != nil {
				return nil, err
			}
			return typedesc.List(elem), nil
		}
	case "Record":
		if len(g.Args) == 2 && g.Args[0].text() == "string" {
			v, err := c.typeOf(g.Args[1])
			if err != nil {
				return nil, err
			}
			return &typedesc.Synth{TypeKind: typedesc.KindObject, IndexValue: v}, nil
		}
	case typedesc.FormatTag:
		return c.formatOf(g)
	}
	// Anything else keeps its name and source text for the builder's
	// global classification and error reporting.
	return &typedesc.Synth{TypeKind: typedesc.KindOpaque, TypeName: g.Name, RawText: g.text()}, nil
}

// formatOf converts a format-tagged scalar. The last argument supplies
// the format when it is a string literal; otherwise the raw text is
// kept so the builder's fallback extraction (and its error message) can
// work from the source form.
func (c *tsConverter) formatOf(g *genericExpr) (*typedesc.Synth, error) {
	args := g.Args
	var format string
	if lit := args[len(args)-1].stringLit(); lit != nil {
		format = *lit
		args = args[:len(args)-1]
	}
	syn := &typedesc.Synth{TypeKind: typedesc.KindTagged, TagFormat: format, RawText: g.text()}
	if len(args) == 1 {
		base, err := c.typeOf(args[0])
		if err != nil {
			return nil, err
		}
		syn.Element = base
	}
	return syn, nil
}

// resolve maps an identifier to its descriptor: a built-in scalar
// keyword, a declared name's shared placeholder, or an opaque global.
func (c *tsConverter) resolve(name string) *typedesc.Synth {
	if k, ok := scalarKeywords[name]; ok {
		return typedesc.Scalar(k)
	}
	if name == "bigint" {
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "int64")
	}
	if ph, ok := c.decls[name]; ok {
		return ph
	}
	return typedesc.Opaque(name)
}

// memberName strips the quotes from a quoted property or enum member
// name.
func memberName(name string) string {
	if len(name) >= 2 && (name[0] == '"' || name[0] == '\'') {
		return unquote(name)
	}
	return name
}

var unescaper = strings.NewReplacer(
	`\\`, `\`,
	`\"`, `"`,
	`\'`, `'`,
	`\n`, "\n",
	`\r`, "\r",
	`\t`, "\t",
)

// unquote strips the surrounding quotes from a string token and
// resolves the common escape sequences.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return unescaper.Replace(s)
}
