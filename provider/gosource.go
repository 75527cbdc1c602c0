// Package provider implements input providers that extract named type
// descriptors from TypeScript declaration source and from Go packages,
// ready to be compiled into a document by the builder package.
package provider

import (
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/types"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

// GoPackages loads the given package patterns and converts the named
// root types into descriptor roots. When roots is empty, every exported
// type declaration in the matched packages becomes a root. Types
// reachable from a root are converted too and appended after their
// referrer, so referenced names always resolve within the result.
func GoPackages(ctx context.Context, patterns []string, roots []string) ([]typedesc.Named, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("no packages specified")
	}

	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedCompiledGoFiles |
			packages.NeedImports |
			packages.NeedTypes |
			packages.NeedSyntax |
			packages.NeedTypesInfo,
	}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	for _, pkg := range pkgs {
		if len(pkg.Errors) > 0 {
			return nil, fmt.Errorf("package %s has errors: %v", pkg.PkgPath, pkg.Errors)
		}
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found")
	}

	c := newGoConverter(pkgs)
	if len(roots) == 0 {
		for _, tn := range exportedTypeNames(pkgs) {
			if _, err := c.named(tn); err != nil {
				return nil, err
			}
		}
		return c.roots, nil
	}
	for _, name := range roots {
		tn, err := lookupType(pkgs, name)
		if err != nil {
			return nil, err
		}
		if _, err := c.named(tn); err != nil {
			return nil, err
		}
	}
	return c.roots, nil
}

// GoTypes converts already-resolved type names, for callers that run
// their own loader. No syntax is available on this path, so field
// documentation is not attached.
func GoTypes(tns ...*types.TypeName) ([]typedesc.Named, error) {
	c := newGoConverter(nil)
	for _, tn := range tns {
		if _, err := c.named(tn); err != nil {
			return nil, err
		}
	}
	return c.roots, nil
}

// exportedTypeNames collects the exported type declarations of the
// loaded packages in scope order. Aliases re-render their target and
// generics cannot be instantiated, so both are skipped.
func exportedTypeNames(pkgs []*packages.Package) []*types.TypeName {
	var tns []*types.TypeName
	for _, pkg := range pkgs {
		scope := pkg.Types.Scope()
		for _, name := range scope.Names() {
			tn, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !tn.Exported() || tn.IsAlias() {
				continue
			}
			if named, ok := tn.Type().(*types.Named); ok && named.TypeParams().Len() > 0 {
				continue
			}
			tns = append(tns, tn)
		}
	}
	return tns
}

func lookupType(pkgs []*packages.Package, name string) (*types.TypeName, error) {
	for _, pkg := range pkgs {
		if tn, ok := pkg.Types.Scope().Lookup(name).(*types.TypeName); ok {
			return tn, nil
		}
	}
	return nil, fmt.Errorf("type %s not found in any package", name)
}

// goConverter walks go/types trees into descriptor trees. Every named
// type gets a placeholder registered before its body is filled, so a
// cyclic reference lands on the shared node instead of recursing.
type goConverter struct {
	pkgs  []*packages.Package
	byKey map[string]*typedesc.Synth
	roots []typedesc.Named
}

func newGoConverter(pkgs []*packages.Package) *goConverter {
	return &goConverter{pkgs: pkgs, byKey: make(map[string]*typedesc.Synth)}
}

func (c *goConverter) named(tn *types.TypeName) (*typedesc.Synth, error) {
	key := typeKey(tn)
	if ph, ok := c.byKey[key]; ok {
		return ph, nil
	}
	ph := &typedesc.Synth{TypeName: tn.Name()}
	c.byKey[key] = ph
	c.roots = append(c.roots, typedesc.Named{Name: tn.Name(), Desc: ph})

	body, err := c.namedBody(tn)
	if err != nil {
		return nil, err
	}
	name := ph.TypeName
	*ph = *body
	ph.TypeName = name
	return ph, nil
}

// typeKey identifies a type name across packages. Universe types have
// no package and key on the bare name.
func typeKey(tn *types.TypeName) string {
	if pkg := tn.Pkg(); pkg != nil {
		return pkg.Path() + "." + tn.Name()
	}
	return tn.Name()
}

func (c *goConverter) namedBody(tn *types.TypeName) (*typedesc.Synth, error) {
	named, ok := tn.Type().(*types.Named)
	if !ok {
		// An alias whose target carries its own identity stays a
		// reference to that target; the builder unwraps the
		// single-member union around it.
		body, err := c.typeOf(tn.Type())
		if err != nil {
			return nil, err
		}
		if body.TypeName != "" {
			return typedesc.Union(body), nil
		}
		return body, nil
	}
	if members := c.enumMembers(named); len(members) > 0 {
		return typedesc.Enum(members...), nil
	}
	if syn := specialNamed(named); syn != nil {
		return syn, nil
	}
	switch u := named.Underlying().(type) {
	case *types.Struct:
		return c.structOf(u, tn.Name(), c.fieldDocs(tn))
	case *types.Interface:
		return typedesc.Scalar(typedesc.KindAny), nil
	default:
		return c.typeOf(u)
	}
}

// specialNamed short-circuits named types with a fixed JSON rendering:
// the time package scalars, and anything with a custom JSON or text
// marshaler whose output cannot be known statically.
func specialNamed(named *types.Named) *typedesc.Synth {
	obj := named.Obj()
	if pkg := obj.Pkg(); pkg != nil && pkg.Path() == "time" {
		switch obj.Name() {
		case "Time":
			return typedesc.Scalar(typedesc.KindDate)
		case "Duration":
			return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "int64")
		}
	}
	if hasMarshaler(named, "MarshalJSON") || hasMarshaler(named, "MarshalText") {
		return typedesc.Scalar(typedesc.KindAny)
	}
	return nil
}

func hasMarshaler(named *types.Named, name string) bool {
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if m.Name() != name {
			continue
		}
		sig := m.Type().(*types.Signature)
		if sig.Params().Len() == 0 && sig.Results().Len() == 2 {
			return true
		}
	}
	return false
}

func (c *goConverter) typeOf(t types.Type) (*typedesc.Synth, error) {
	switch t := t.(type) {
	case *types.Basic:
		return basicOf(t), nil
	case *types.Pointer:
		elem, err := c.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return typedesc.Union(elem, typedesc.Scalar(typedesc.KindNull)), nil
	case *types.Slice:
		if b, ok := t.Elem().(*types.Basic); ok && b.Kind() == types.Byte {
			return typedesc.Tagged(typedesc.Scalar(typedesc.KindString), "byte"), nil
		}
		elem, err := c.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return typedesc.List(elem), nil
	case *types.Array:
		elem, err := c.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return typedesc.List(elem), nil
	case *types.Map:
		if !validMapKey(t.Key()) {
			return nil, ir.Unsupported(t.String())
		}
		v, err := c.typeOf(t.Elem())
		if err != nil {
			return nil, err
		}
		return &typedesc.Synth{TypeKind: typedesc.KindObject, IndexValue: v}, nil
	case *types.Named:
		if t.TypeArgs().Len() > 0 {
			return nil, ir.Unsupported(t.String())
		}
		if syn := specialNamed(t); syn != nil {
			return syn, nil
		}
		return c.named(t.Obj())
	case *types.Alias:
		return c.typeOf(t.Rhs())
	case *types.Interface:
		return typedesc.Scalar(typedesc.KindAny), nil
	case *types.Struct:
		return c.structOf(t, "", nil)
	default:
		return nil, ir.Unsupported(t.String())
	}
}

func basicOf(b *types.Basic) *typedesc.Synth {
	switch b.Kind() {
	case types.Bool:
		return typedesc.Scalar(typedesc.KindBoolean)
	case types.String:
		return typedesc.Scalar(typedesc.KindString)
	case types.Int, types.Int8, types.Int16, types.Int32:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "int32")
	case types.Int64:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "int64")
	case types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uintptr:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "uint32")
	case types.Uint64:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "uint64")
	case types.Float32:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "float")
	case types.Float64:
		return typedesc.Tagged(typedesc.Scalar(typedesc.KindNumber), "double")
	default:
		return typedesc.Scalar(typedesc.KindAny)
	}
}

// validMapKey reports whether a map key renders as a JSON object key:
// strings, integers, and types with a text marshaler.
func validMapKey(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.String,
			types.Int, types.Int8, types.Int16, types.Int32, types.Int64,
			types.Uint, types.Uint8, types.Uint16, types.Uint32, types.Uint64, types.Uintptr:
			return true
		}
		return false
	case *types.Named:
		if hasMarshaler(t, "MarshalText") {
			return true
		}
		return validMapKey(t.Underlying())
	}
	return false
}

func (c *goConverter) structOf(st *types.Struct, typeName string, docs map[string]*ir.Metadata) (*typedesc.Synth, error) {
	obj := &typedesc.Synth{TypeKind: typedesc.KindObject}
	var bases []typedesc.Descriptor

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag := reflect.StructTag(st.Tag(i)).Get("json")
		name, opts := parseJSONTag(tag)

		// Embedded structs without a tag name flatten into the parent,
		// which the descriptor records as an intersection base.
		if f.Embedded() && name == "" && tag != "-" {
			if base := embeddedNamed(f.Type()); base != nil {
				if _, ok := base.Underlying().(*types.Struct); ok {
					ref, err := c.named(base.Obj())
					if err != nil {
						return nil, err
					}
					bases = append(bases, ref)
					continue
				}
			}
		}

		if !f.Exported() || tag == "-" {
			// Kept as hidden so consumers can still see the field; the
			// builder drops hidden properties before conversion.
			obj.Props = append(obj.Props, typedesc.Property{
				Name:   f.Name(),
				Desc:   typedesc.Scalar(typedesc.KindAny),
				Hidden: true,
			})
			continue
		}

		desc, err := c.typeOf(f.Type())
		if err != nil {
			if typeName != "" {
				return nil, fmt.Errorf("field %s.%s: %w", typeName, f.Name(), err)
			}
			return nil, err
		}
		if name == "" {
			name = f.Name()
		}
		obj.Props = append(obj.Props, typedesc.Property{
			Name:     name,
			Desc:     desc,
			Optional: opts.has("omitempty") || opts.has("omitzero"),
			Meta:     docs[f.Name()],
		})
	}

	if len(bases) == 0 {
		return obj, nil
	}
	return typedesc.Intersect(append(bases, obj)...), nil
}

func embeddedNamed(t types.Type) *types.Named {
	if ptr, ok := t.(*types.Pointer); ok {
		t = ptr.Elem()
	}
	named, ok := types.Unalias(t).(*types.Named)
	if !ok {
		return nil
	}
	return named
}

// parseJSONTag splits a json struct tag value into the rendered name
// and its comma-separated options.
func parseJSONTag(value string) (string, jsonOptions) {
	name, rest, _ := strings.Cut(value, ",")
	return name, jsonOptions(rest)
}

type jsonOptions string

func (o jsonOptions) has(name string) bool {
	s := string(o)
	for s != "" {
		var opt string
		opt, s, _ = strings.Cut(s, ",")
		if opt == name {
			return true
		}
	}
	return false
}

// enumMembers scans the declaring package for constants of the named
// type. A named basic type with at least one constant renders as an
// enum, the way such types are conventionally used with encoding/json.
func (c *goConverter) enumMembers(named *types.Named) []typedesc.EnumMember {
	basic, ok := named.Underlying().(*types.Basic)
	if !ok || basic.Info()&(types.IsString|types.IsNumeric) == 0 {
		return nil
	}
	pkg := named.Obj().Pkg()
	if pkg == nil {
		return nil
	}

	scope := pkg.Scope()
	var consts []*types.Const
	for _, name := range scope.Names() {
		cnst, ok := scope.Lookup(name).(*types.Const)
		if !ok || !types.Identical(cnst.Type(), named) {
			continue
		}
		consts = append(consts, cnst)
	}
	// Scope names come back sorted; declaration order is what the
	// document should keep. Hand-built types have no positions and stay
	// in name order.
	sort.SliceStable(consts, func(i, j int) bool { return consts[i].Pos() < consts[j].Pos() })

	members := make([]typedesc.EnumMember, 0, len(consts))
	for _, cnst := range consts {
		m := typedesc.EnumMember{Name: cnst.Name()}
		switch v := cnst.Val(); v.Kind() {
		case constant.String:
			m.Value = constant.StringVal(v)
		case constant.Int:
			if n, exact := constant.Int64Val(v); exact {
				m.Value = float64(n)
			} else {
				m.Value = typedesc.Unresolved
			}
		case constant.Float:
			if f, exact := constant.Float64Val(v); exact {
				m.Value = f
			} else {
				m.Value = typedesc.Unresolved
			}
		default:
			m.Value = typedesc.Unresolved
		}
		members = append(members, m)
	}
	return members
}

// fieldDocs collects field documentation from the struct declaration
// behind tn. Only packages loaded with syntax contribute docs, so the
// result may be nil.
func (c *goConverter) fieldDocs(tn *types.TypeName) map[string]*ir.Metadata {
	for _, pkg := range c.pkgs {
		if pkg.Types != tn.Pkg() {
			continue
		}
		for _, file := range pkg.Syntax {
			var docs map[string]*ir.Metadata
			ast.Inspect(file, func(n ast.Node) bool {
				spec, ok := n.(*ast.TypeSpec)
				if !ok || spec.Name.Pos() != tn.Pos() {
					return true
				}
				st, ok := spec.Type.(*ast.StructType)
				if !ok {
					return false
				}
				docs = make(map[string]*ir.Metadata)
				for _, f := range st.Fields.List {
					meta := metaFromDoc(fieldDocText(f))
					if meta == nil {
						continue
					}
					for _, fname := range f.Names {
						docs[fname.Name] = meta
					}
				}
				return false
			})
			if docs != nil {
				return docs
			}
		}
	}
	return nil
}

func fieldDocText(f *ast.Field) string {
	if f.Doc != nil {
		return f.Doc.Text()
	}
	if f.Comment != nil {
		return f.Comment.Text()
	}
	return ""
}

// metaFromDoc maps a doc comment to property metadata. A line starting
// with "Deprecated:" follows the standard Go convention and is lifted
// out of the description.
func metaFromDoc(text string) *ir.Metadata {
	if text == "" {
		return nil
	}
	var meta ir.Metadata
	var lines []string
	for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
		if strings.HasPrefix(line, "Deprecated:") {
			meta.Deprecated = true
			continue
		}
		lines = append(lines, line)
	}
	meta.Description = strings.TrimSpace(strings.Join(lines, "\n"))
	if meta.IsZero() {
		return nil
	}
	return &meta
}
