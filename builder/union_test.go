package builder

import (
	"testing"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/typedesc"
)

func TestUnion_NullableUnwrap(t *testing.T) {
	// string | null unwraps to the single-member nullable union.
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Scalar(typedesc.KindString),
		typedesc.Scalar(typedesc.KindNull),
	))
	u, ok := n.(*ir.Union)
	if !ok {
		t.Fatalf("built %T, want *ir.Union", n)
	}
	if !u.Nullable || len(u.Members) != 1 {
		t.Fatalf("union = %+v, want nullable single member", u)
	}
	if p, ok := u.Members[0].(*ir.Primitive); !ok || p.ScalarKind != ir.ScalarString {
		t.Errorf("member = %+v, want string primitive", u.Members[0])
	}
}

func TestUnion_UndefinedCountsAsNullish(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Scalar(typedesc.KindNumber),
		typedesc.Scalar(typedesc.KindUndefined),
	))
	u, ok := n.(*ir.Union)
	if !ok || !u.Nullable {
		t.Fatalf("built %+v, want nullable union", n)
	}
}

func TestUnion_SingleMemberUnwrapsClean(t *testing.T) {
	// A one-member union with no nullish part is just the member.
	n := buildOne(t, Options{}, typedesc.Union(typedesc.Scalar(typedesc.KindString)))
	if p, ok := n.(*ir.Primitive); !ok || p.ScalarKind != ir.ScalarString {
		t.Fatalf("built %+v, want bare string primitive", n)
	}
}

func TestUnion_OnlyNull(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Scalar(typedesc.KindNull),
		typedesc.Scalar(typedesc.KindUndefined),
	))
	u, ok := n.(*ir.Union)
	if !ok || !u.Nullable || len(u.Members) != 0 {
		t.Fatalf("built %+v, want empty nullable union", n)
	}
}

func TestUnion_BooleanPair(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(typedesc.Lit(true), typedesc.Lit(false)))
	if p, ok := n.(*ir.Primitive); !ok || p.ScalarKind != ir.ScalarBoolean {
		t.Fatalf("true|false built %+v, want boolean primitive", n)
	}

	// With null on top, the collapse still happens under the carrier.
	n = buildOne(t, Options{}, typedesc.Union(
		typedesc.Lit(true), typedesc.Lit(false), typedesc.Scalar(typedesc.KindNull),
	))
	u, ok := n.(*ir.Union)
	if !ok || !u.Nullable || len(u.Members) != 1 {
		t.Fatalf("built %+v, want nullable carrier", n)
	}
	if p, ok := u.Members[0].(*ir.Primitive); !ok || p.ScalarKind != ir.ScalarBoolean {
		t.Errorf("member = %+v, want boolean primitive", u.Members[0])
	}
}

func TestUnion_StringEnumCollapse(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Lit("red"), typedesc.Lit("green"), typedesc.Lit("blue"),
	))
	e, ok := n.(*ir.Enum)
	if !ok {
		t.Fatalf("built %T, want *ir.Enum", n)
	}
	if e.ScalarKind != ir.ScalarString {
		t.Errorf("enum kind = %v, want string", e.ScalarKind)
	}
	if len(e.Values) != 3 || e.Values[0] != "red" || e.Values[2] != "blue" {
		t.Errorf("enum values = %v, want declaration order", e.Values)
	}
}

func TestUnion_NumberEnumCollapse(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Lit(float64(1)), typedesc.Lit(float64(2)),
	))
	e, ok := n.(*ir.Enum)
	if !ok || e.ScalarKind != ir.ScalarNumber {
		t.Fatalf("built %+v, want number enum", n)
	}
}

func TestUnion_MixedLiteralsStayUnion(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Lit("one"), typedesc.Lit(float64(1)),
	))
	u, ok := n.(*ir.Union)
	if !ok || len(u.Members) != 2 {
		t.Fatalf("built %+v, want two-member union", n)
	}
}

func TestUnion_General(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Scalar(typedesc.KindString),
		typedesc.Scalar(typedesc.KindNumber),
	))
	u, ok := n.(*ir.Union)
	if !ok {
		t.Fatalf("built %T, want *ir.Union", n)
	}
	if len(u.Members) != 2 || u.Nullable {
		t.Errorf("union = %+v, want two members, not nullable", u)
	}
}

func TestUnion_BoolPairInsideMembers(t *testing.T) {
	// string | true | false collapses the pair in place.
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Scalar(typedesc.KindString),
		typedesc.Lit(true),
		typedesc.Lit(false),
	))
	u, ok := n.(*ir.Union)
	if !ok {
		t.Fatalf("built %T, want *ir.Union", n)
	}
	if len(u.Members) != 2 {
		t.Fatalf("members = %d, want 2 (pair collapsed)", len(u.Members))
	}
	if p, ok := u.Members[1].(*ir.Primitive); !ok || p.ScalarKind != ir.ScalarBoolean {
		t.Errorf("member 1 = %+v, want boolean primitive at the pair's first position", u.Members[1])
	}
}

func TestUnion_FlattensAnonymousNesting(t *testing.T) {
	inner := typedesc.Union(typedesc.Scalar(typedesc.KindNumber), typedesc.Scalar(typedesc.KindNull))
	n := buildOne(t, Options{}, typedesc.Union(typedesc.Scalar(typedesc.KindString), inner))

	u, ok := n.(*ir.Union)
	if !ok {
		t.Fatalf("built %T, want *ir.Union", n)
	}
	if len(u.Members) != 2 || !u.Nullable {
		t.Errorf("union = %+v, want flattened nullable two-member union", u)
	}
}

func shapeMember(name, kindValue string) *typedesc.Synth {
	m := typedesc.Object(
		typedesc.Field("kind", typedesc.Lit(kindValue)),
		typedesc.Field("size", typedesc.Scalar(typedesc.KindNumber)),
	)
	m.TypeName = name
	return m
}

func TestUnion_DiscriminatorWithMapping(t *testing.T) {
	circle := shapeMember("Circle", "circle")
	square := shapeMember("Square", "square")
	shape := typedesc.Union(circle, square)

	doc, err := New(Options{}).Document([]typedesc.Named{
		{Name: "Circle", Desc: circle},
		{Name: "Square", Desc: square},
		{Name: "Shape", Desc: shape},
	})
	if err != nil {
		t.Fatalf("Document() error: %v", err)
	}

	n, _ := doc.Get("Shape")
	u, ok := n.(*ir.Union)
	if !ok {
		t.Fatalf("Shape = %T, want *ir.Union", n)
	}
	if u.Discriminator == nil {
		t.Fatal("Discriminator = nil, want detection")
	}
	if u.Discriminator.PropertyName != "kind" {
		t.Errorf("PropertyName = %q, want kind", u.Discriminator.PropertyName)
	}
	if u.Discriminator.Mapping == nil {
		t.Fatal("Mapping = nil, want literal-to-name mapping (both members are document-level)")
	}
	if u.Discriminator.Mapping["circle"] != "Circle" || u.Discriminator.Mapping["square"] != "Square" {
		t.Errorf("Mapping = %v", u.Discriminator.Mapping)
	}

	// Members render as references to the document-level names.
	for i, m := range u.Members {
		if _, ok := m.(*ir.Reference); !ok {
			t.Errorf("member %d = %T, want *ir.Reference", i, m)
		}
	}
}

func TestUnion_DiscriminatorWithoutMapping(t *testing.T) {
	// Anonymous members keep the discriminator but drop the mapping.
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Object(typedesc.Field("kind", typedesc.Lit("a"))),
		typedesc.Object(typedesc.Field("kind", typedesc.Lit("b"))),
	))
	u := n.(*ir.Union)
	if u.Discriminator == nil || u.Discriminator.PropertyName != "kind" {
		t.Fatalf("Discriminator = %+v, want kind", u.Discriminator)
	}
	if u.Discriminator.Mapping != nil {
		t.Errorf("Mapping = %v, want nil for anonymous members", u.Discriminator.Mapping)
	}
}

func TestUnion_NoDiscriminator(t *testing.T) {
	tests := []struct {
		name string
		desc typedesc.Descriptor
	}{
		{
			"property missing in one member",
			typedesc.Union(
				typedesc.Object(typedesc.Field("kind", typedesc.Lit("a"))),
				typedesc.Object(typedesc.Field("type", typedesc.Lit("b"))),
			),
		},
		{
			"values not distinct",
			typedesc.Union(
				typedesc.Object(typedesc.Field("kind", typedesc.Lit("same"))),
				typedesc.Object(typedesc.Field("kind", typedesc.Lit("same"))),
			),
		},
		{
			"property not literal-typed",
			typedesc.Union(
				typedesc.Object(typedesc.Field("kind", typedesc.Scalar(typedesc.KindString))),
				typedesc.Object(typedesc.Field("kind", typedesc.Lit("b"))),
			),
		},
		{
			"non-object member",
			typedesc.Union(
				typedesc.Object(typedesc.Field("kind", typedesc.Lit("a"))),
				typedesc.Scalar(typedesc.KindString),
			),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := buildOne(t, Options{}, tt.desc)
			u, ok := n.(*ir.Union)
			if !ok {
				t.Fatalf("built %T, want *ir.Union", n)
			}
			if u.Discriminator != nil {
				t.Errorf("Discriminator = %+v, want nil", u.Discriminator)
			}
		})
	}
}

func TestUnion_DiscriminatorFirstPropertyWins(t *testing.T) {
	// Both "kind" and "tag" qualify; "kind" is first in the first
	// member's declaration order.
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Object(
			typedesc.Field("kind", typedesc.Lit("a")),
			typedesc.Field("tag", typedesc.Lit("x")),
		),
		typedesc.Object(
			typedesc.Field("tag", typedesc.Lit("y")),
			typedesc.Field("kind", typedesc.Lit("b")),
		),
	))
	u := n.(*ir.Union)
	if u.Discriminator == nil || u.Discriminator.PropertyName != "kind" {
		t.Fatalf("Discriminator = %+v, want kind (first declared)", u.Discriminator)
	}
}

func TestUnion_NumericDiscriminator(t *testing.T) {
	n := buildOne(t, Options{}, typedesc.Union(
		typedesc.Object(typedesc.Field("version", typedesc.Lit(float64(1)))),
		typedesc.Object(typedesc.Field("version", typedesc.Lit(float64(2)))),
	))
	u := n.(*ir.Union)
	if u.Discriminator == nil || u.Discriminator.PropertyName != "version" {
		t.Fatalf("Discriminator = %+v, want version", u.Discriminator)
	}
}
