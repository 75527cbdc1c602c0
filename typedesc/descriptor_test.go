package typedesc

import "testing"

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindString, "string"},
		{KindNull, "null"},
		{KindUndefined, "undefined"},
		{KindAny, "any"},
		{KindSymbol, "symbol"},
		{KindDate, "date"},
		{KindLiteral, "literal"},
		{KindUnion, "union"},
		{KindTagged, "tagged"},
		{KindOpaque, "opaque"},
		{Kind(99), "invalid"},
	}

	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestBase_Defaults(t *testing.T) {
	type anyHost struct {
		Base
	}

	var d anyHost
	if d.Name() != "" || d.Text() != "" || d.Tagged() != "" {
		t.Error("Base string methods should return empty strings")
	}
	if d.Elem() != nil || d.Index() != nil || d.Literal() != nil {
		t.Error("Base descriptor methods should return nil")
	}
	if d.Members() != nil || d.Properties() != nil || d.EnumMembers() != nil {
		t.Error("Base list methods should return nil")
	}
}

func TestSynth_Text(t *testing.T) {
	tests := []struct {
		name string
		desc *Synth
		want string
	}{
		{"raw text wins", &Synth{TypeKind: KindString, RawText: "MyAlias"}, "MyAlias"},
		{"name next", &Synth{TypeKind: KindObject, TypeName: "User"}, "User"},
		{"scalar kind", Scalar(KindSymbol), "symbol"},
		{"string literal", Lit("circle"), `"circle"`},
		{"number literal", Lit(float64(3)), "3"},
		{"array", List(Scalar(KindString)), "string[]"},
		{"union", Union(Scalar(KindString), Scalar(KindNull)), "string | null"},
		{"intersection", Intersect(Scalar(KindString), Scalar(KindNumber)), "string & number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.desc.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSynth_Capabilities(t *testing.T) {
	obj := Object(
		Field("id", Scalar(KindString)),
		OptField("age", Scalar(KindNumber)),
	)
	obj.TypeName = "User"

	if obj.Kind() != KindObject {
		t.Errorf("Kind() = %v, want KindObject", obj.Kind())
	}
	if obj.Name() != "User" {
		t.Errorf("Name() = %q, want User", obj.Name())
	}

	props := obj.Properties()
	if len(props) != 2 {
		t.Fatalf("Properties() length = %d, want 2", len(props))
	}
	if props[0].Optional || !props[1].Optional {
		t.Errorf("optionality = %v, %v; want false, true", props[0].Optional, props[1].Optional)
	}

	tagged := Tagged(Scalar(KindNumber), "int64")
	if tagged.Tagged() != "int64" {
		t.Errorf("Tagged() = %q, want int64", tagged.Tagged())
	}
	if tagged.Elem().Kind() != KindNumber {
		t.Errorf("Elem().Kind() = %v, want KindNumber", tagged.Elem().Kind())
	}
}

func TestSynth_Cycle(t *testing.T) {
	// A self-referential tree must be constructible.
	node := Object(Field("value", Scalar(KindString)))
	node.TypeName = "Node"
	node.Props = append(node.Props, OptField("next", node))

	props := node.Properties()
	if props[1].Desc.Name() != "Node" {
		t.Errorf("cyclical property Desc.Name() = %q, want Node", props[1].Desc.Name())
	}
}
