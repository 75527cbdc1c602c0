package openapi_test

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/openapi"
)

// emitOne renders a single-entry document and returns the root schema.
func emitOne(t *testing.T, opts openapi.Options, n ir.Node) *openapi3.SchemaRef {
	t.Helper()
	doc := ir.NewDocument()
	require.NoError(t, doc.Add("Root", n))
	schemas, err := openapi.NewEmitter(opts).Emit(doc)
	require.NoError(t, err)
	require.Contains(t, schemas, "Root")
	return schemas["Root"]
}

func TestEmit_Primitives(t *testing.T) {
	assert := assert.New(t)

	tests := []struct {
		name       string
		in         ir.Node
		wantType   string
		wantFormat string
	}{
		{name: "string", in: ir.String(), wantType: "string"},
		{name: "string with format", in: ir.Formatted(ir.ScalarString, "date-time"), wantType: "string", wantFormat: "date-time"},
		{name: "number", in: ir.Number(), wantType: "number"},
		{name: "float stays number", in: ir.Formatted(ir.ScalarNumber, "float"), wantType: "number", wantFormat: "float"},
		{name: "int32 becomes integer", in: ir.Formatted(ir.ScalarNumber, "int32"), wantType: "integer", wantFormat: "int32"},
		{name: "int64 becomes integer", in: ir.Formatted(ir.ScalarNumber, "int64"), wantType: "integer", wantFormat: "int64"},
		{name: "boolean", in: ir.Boolean(), wantType: "boolean"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := emitOne(t, openapi.Options{}, tt.in)
			require.NotNil(t, sr.Value)
			assert.True(sr.Value.Type.Is(tt.wantType), "want type %s, got %v", tt.wantType, sr.Value.Type)
			assert.Equal(tt.wantFormat, sr.Value.Format)
		})
	}
}

func TestEmit_TitleDefaulting(t *testing.T) {
	assert := assert.New(t)

	plain := emitOne(t, openapi.Options{}, ir.String())
	assert.Equal("Root", plain.Value.Title)

	named := ir.String()
	named.Metadata = &ir.Metadata{Title: "Display Name"}
	titled := emitOne(t, openapi.Options{}, named)
	assert.Equal("Display Name", titled.Value.Title)
}

func TestEmit_NullablePrimitive(t *testing.T) {
	assert := assert.New(t)

	v30 := emitOne(t, openapi.Options{Version: openapi.Version30}, ir.Nullable(ir.String()))
	assert.True(v30.Value.Nullable)
	assert.Equal(openapi3.Types{"string"}, *v30.Value.Type)

	v31 := emitOne(t, openapi.Options{Version: openapi.Version31}, ir.Nullable(ir.String()))
	assert.False(v31.Value.Nullable)
	assert.Equal(openapi3.Types{"string", "null"}, *v31.Value.Type)
}

func TestEmit_NullableReference(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	doc := ir.NewDocument()
	require.NoError(doc.Add("Role", ir.StringEnum("admin", "user")))
	require.NoError(doc.Add("Maybe", ir.Nullable(ir.Ref("Role"))))

	s30, err := openapi.NewEmitter(openapi.Options{Version: openapi.Version30}).Emit(doc)
	require.NoError(err)
	wrap := s30["Maybe"].Value
	require.NotNil(wrap)
	assert.True(wrap.Nullable)
	require.Len(wrap.AllOf, 1)
	assert.Equal("#/components/schemas/Role", wrap.AllOf[0].Ref)

	s31, err := openapi.NewEmitter(openapi.Options{Version: openapi.Version31}).Emit(doc)
	require.NoError(err)
	branches := s31["Maybe"].Value.OneOf
	require.Len(branches, 2)
	assert.Equal("#/components/schemas/Role", branches[0].Ref)
	assert.True(branches[1].Value.Type.Is("null"))
}

func TestEmit_NullableUnion(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	u := ir.UnionOf(ir.String(), ir.Number())
	u.Nullable = true

	v30 := emitOne(t, openapi.Options{Version: openapi.Version30}, u)
	assert.True(v30.Value.Nullable)
	assert.Len(v30.Value.OneOf, 2)

	u2 := ir.UnionOf(ir.String(), ir.Number())
	u2.Nullable = true
	v31 := emitOne(t, openapi.Options{Version: openapi.Version31}, u2)
	require.Len(v31.Value.OneOf, 3)
	assert.True(v31.Value.OneOf[2].Value.Type.Is("null"))
}

func TestEmit_BareNull(t *testing.T) {
	assert := assert.New(t)

	v30 := emitOne(t, openapi.Options{Version: openapi.Version30}, &ir.Union{Nullable: true})
	assert.True(v30.Value.Nullable)
	assert.Nil(v30.Value.Type)

	v31 := emitOne(t, openapi.Options{Version: openapi.Version31}, &ir.Union{Nullable: true})
	assert.True(v31.Value.Type.Is("null"))
}

func TestEmit_Object(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	obj := ir.ObjectOf(
		ir.Prop("id", ir.Formatted(ir.ScalarString, "uuid")),
		ir.OptProp("nick", ir.String()),
		ir.Prop("age", ir.Formatted(ir.ScalarNumber, "int32")),
	)
	sr := emitOne(t, openapi.Options{}, obj)
	s := sr.Value
	require.NotNil(s)

	assert.True(s.Type.Is("object"))
	assert.Equal([]string{"id", "age"}, s.Required)
	require.Len(s.Properties, 3)
	assert.Equal("uuid", s.Properties["id"].Value.Format)
	assert.True(s.Properties["nick"].Value.Type.Is("string"))
	assert.True(s.Properties["age"].Value.Type.Is("integer"))
	assert.Nil(s.AdditionalProperties.Has)
	assert.Nil(s.AdditionalProperties.Schema)
}

func TestEmit_ObjectExtraProperties(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	open := ir.ObjectOf(ir.Prop("id", ir.String()))
	open.Extra = &ir.Additional{Any: true}
	sr := emitOne(t, openapi.Options{}, open)
	require.NotNil(sr.Value.AdditionalProperties.Has)
	assert.True(*sr.Value.AdditionalProperties.Has)

	typed := ir.ObjectOf(ir.Prop("id", ir.String()))
	typed.Extra = &ir.Additional{Schema: ir.Number()}
	sr = emitOne(t, openapi.Options{}, typed)
	require.NotNil(sr.Value.AdditionalProperties.Schema)
	assert.True(sr.Value.AdditionalProperties.Schema.Value.Type.Is("number"))
}

func TestEmit_PropertyMetadata(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	obj := &ir.Object{Properties: []ir.Property{{
		Name:     "email",
		Schema:   ir.Formatted(ir.ScalarString, "email"),
		Required: true,
		Meta:     &ir.Metadata{Description: "Contact address."},
	}}}
	sr := emitOne(t, openapi.Options{}, obj)
	email := sr.Value.Properties["email"].Value
	require.NotNil(email)
	assert.Equal("Contact address.", email.Description)
	assert.Equal("email", email.Format)
}

func TestEmit_Map(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	anyMap := emitOne(t, openapi.Options{}, ir.MapOf(nil))
	require.NotNil(anyMap.Value.AdditionalProperties.Has)
	assert.True(*anyMap.Value.AdditionalProperties.Has)
	assert.True(anyMap.Value.Type.Is("object"))

	typed := emitOne(t, openapi.Options{}, ir.MapOf(ir.Boolean()))
	require.NotNil(typed.Value.AdditionalProperties.Schema)
	assert.True(typed.Value.AdditionalProperties.Schema.Value.Type.Is("boolean"))
}

func TestEmit_Array(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sr := emitOne(t, openapi.Options{}, ir.ArrayOf(ir.Ref("Item")))
	require.NotNil(sr.Value)
	assert.True(sr.Value.Type.Is("array"))
	assert.Equal("#/components/schemas/Item", sr.Value.Items.Ref)
}

func TestEmit_EnumAndLiteral(t *testing.T) {
	assert := assert.New(t)

	enum := emitOne(t, openapi.Options{}, ir.StringEnum("red", "green", "blue"))
	assert.True(enum.Value.Type.Is("string"))
	assert.Equal([]any{"red", "green", "blue"}, enum.Value.Enum)

	nums := emitOne(t, openapi.Options{}, ir.NumberEnum(1, 2, 3))
	assert.True(nums.Value.Type.Is("number"))
	assert.Equal([]any{float64(1), float64(2), float64(3)}, nums.Value.Enum)

	lit := emitOne(t, openapi.Options{}, ir.StringLit("fixed"))
	assert.True(lit.Value.Type.Is("string"))
	assert.Equal([]any{"fixed"}, lit.Value.Enum)
}

func TestEmit_UnionStyle(t *testing.T) {
	assert := assert.New(t)

	def := emitOne(t, openapi.Options{}, ir.UnionOf(ir.String(), ir.Number()))
	assert.Len(def.Value.OneOf, 2)
	assert.Empty(def.Value.AnyOf)

	alt := emitOne(t, openapi.Options{UnionStyle: openapi.AnyOf}, ir.UnionOf(ir.String(), ir.Number()))
	assert.Len(alt.Value.AnyOf, 2)
	assert.Empty(alt.Value.OneOf)
}

func TestEmit_Discriminator(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	u := ir.UnionOf(ir.Ref("Circle"), ir.Ref("Square"))
	u.Discriminator = &ir.Discriminator{
		PropertyName: "kind",
		Mapping:      map[string]string{"circle": "Circle", "square": "Square"},
	}
	sr := emitOne(t, openapi.Options{}, u)
	d := sr.Value.Discriminator
	require.NotNil(d)
	assert.Equal("kind", d.PropertyName)
	assert.Equal(map[string]string{
		"circle": "#/components/schemas/Circle",
		"square": "#/components/schemas/Square",
	}, d.Mapping)
}

func TestEmit_Intersection(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	sr := emitOne(t, openapi.Options{}, ir.IntersectionOf(ir.Ref("Base"), ir.ObjectOf(ir.Prop("extra", ir.String()))))
	require.Len(sr.Value.AllOf, 2)
	assert.Equal("#/components/schemas/Base", sr.Value.AllOf[0].Ref)
	assert.True(sr.Value.AllOf[1].Value.Type.Is("object"))
}

func TestEmit_MetadataMerge(t *testing.T) {
	assert := assert.New(t)

	min := 1.0
	exMax := 100.0
	n := ir.Formatted(ir.ScalarString, "uuid")
	n.Metadata = &ir.Metadata{
		Description: "Primary key.",
		Minimum:     &min,
		Format:      "should-not-clobber",
		Tags:        []ir.Tag{{Name: "column", Value: "id"}},
	}
	sr := emitOne(t, openapi.Options{}, n)
	s := sr.Value
	assert.Equal("Primary key.", s.Description)
	assert.Equal("uuid", s.Format, "structural format wins over metadata")
	assert.Equal(&min, s.Min)
	assert.Equal("id", s.Extensions["x-column"])

	num := ir.Number()
	num.Metadata = &ir.Metadata{ExclusiveMaximum: &exMax}
	sr = emitOne(t, openapi.Options{}, num)
	assert.Equal(&exMax, sr.Value.Max)
	assert.True(sr.Value.ExclusiveMax)
}

func TestEmitDocument(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	doc := ir.NewDocument()
	require.NoError(doc.Add("User", ir.ObjectOf(ir.Prop("id", ir.String()))))

	t30, err := openapi.NewEmitter(openapi.Options{Version: openapi.Version30}).EmitDocument(doc)
	require.NoError(err)
	assert.Equal("3.0.3", t30.OpenAPI)
	require.NotNil(t30.Components)
	assert.Contains(t30.Components.Schemas, "User")
	assert.NotNil(t30.Info)
	assert.NotNil(t30.Paths)

	t31, err := openapi.NewEmitter(openapi.Options{}).EmitDocument(doc)
	require.NoError(err)
	assert.Equal("3.1.0", t31.OpenAPI)
}

func TestEmit_EmptyUnionFails(t *testing.T) {
	doc := ir.NewDocument()
	require.NoError(t, doc.Add("Broken", &ir.Union{}))

	_, err := openapi.NewEmitter(openapi.Options{}).Emit(doc)
	require.Error(t, err)
	var unsupported *ir.UnsupportedTypeError
	assert.ErrorAs(t, err, &unsupported)
	assert.Contains(t, err.Error(), `schema "Broken"`)
}
