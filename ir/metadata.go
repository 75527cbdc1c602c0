package ir

// Metadata holds descriptive and constraint annotations attached to a
// node or property. All fields are optional; emitters merge metadata
// onto structurally derived output without overwriting fields the
// structural walk already set.
type Metadata struct {
	// Title overrides the default document-entry title.
	Title string

	// Description is free-form documentation text. May span multiple
	// lines.
	Description string

	// Default is the default value, if declared.
	Default any

	// Example is an example value, if declared.
	Example any

	// Deprecated marks the annotated schema as deprecated.
	Deprecated bool

	// Numeric constraints.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// String constraints.
	MinLength *uint64
	MaxLength *uint64
	Pattern   string

	// Format is a metadata-supplied format hint. A format derived
	// structurally (from a tagged scalar) takes precedence over it.
	Format string

	// Tags are custom annotations in source order. They surface as
	// x-<name> extensions in OpenAPI and @<name> comment lines in
	// Protobuf and TypeScript output.
	Tags []Tag
}

// Tag is a custom (name, value) annotation.
type Tag struct {
	Name  string
	Value string
}

// IsZero returns true if the metadata carries no information. A nil
// receiver is zero.
func (m *Metadata) IsZero() bool {
	if m == nil {
		return true
	}
	return m.Title == "" &&
		m.Description == "" &&
		m.Default == nil &&
		m.Example == nil &&
		!m.Deprecated &&
		m.Minimum == nil &&
		m.Maximum == nil &&
		m.ExclusiveMinimum == nil &&
		m.ExclusiveMaximum == nil &&
		m.MultipleOf == nil &&
		m.MinLength == nil &&
		m.MaxLength == nil &&
		m.Pattern == "" &&
		m.Format == "" &&
		len(m.Tags) == 0
}
