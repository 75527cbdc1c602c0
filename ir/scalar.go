package ir

// Primitive represents a base scalar type.
type Primitive struct {
	nodeBase

	// ScalarKind is the base kind (string, number, boolean).
	ScalarKind ScalarKind

	// Format carries a secondary tag (int64, uuid, date-time, byte, ...)
	// independent of the base kind. Empty when untagged.
	Format string
}

// Kind returns KindPrimitive.
func (n *Primitive) Kind() NodeKind { return KindPrimitive }

// Convenience constructors for common nodes.

// String returns a Primitive of base kind string.
func String() *Primitive {
	return &Primitive{ScalarKind: ScalarString}
}

// Number returns a Primitive of base kind number.
func Number() *Primitive {
	return &Primitive{ScalarKind: ScalarNumber}
}

// Boolean returns a Primitive of base kind boolean.
func Boolean() *Primitive {
	return &Primitive{ScalarKind: ScalarBoolean}
}

// Formatted returns a Primitive carrying a secondary format tag.
func Formatted(kind ScalarKind, format string) *Primitive {
	return &Primitive{ScalarKind: kind, Format: format}
}

// Literal represents a single literal value.
type Literal struct {
	nodeBase

	// ScalarKind is the literal's base kind.
	ScalarKind ScalarKind

	// Value is the literal value. Builders and parsers produce exactly
	// one of three types: string, float64, or bool. Consumers can rely
	// on type assertions to these concrete types.
	Value any
}

// Kind returns KindLiteral.
func (n *Literal) Kind() NodeKind { return KindLiteral }

// StringLit returns a Literal for a string value.
func StringLit(v string) *Literal {
	return &Literal{ScalarKind: ScalarString, Value: v}
}

// NumberLit returns a Literal for a numeric value.
func NumberLit(v float64) *Literal {
	return &Literal{ScalarKind: ScalarNumber, Value: v}
}

// BoolLit returns a Literal for a boolean value.
func BoolLit(v bool) *Literal {
	return &Literal{ScalarKind: ScalarBoolean, Value: v}
}

// Enum represents a homogeneous ordered set of literal values.
type Enum struct {
	nodeBase

	// ScalarKind is the shared kind of every value (string or number).
	ScalarKind ScalarKind

	// Values are the member values in declaration order. All values hold
	// the same concrete type: string for ScalarString, float64 for
	// ScalarNumber.
	Values []any
}

// Kind returns KindEnum.
func (n *Enum) Kind() NodeKind { return KindEnum }

// StringEnum returns an Enum over string values.
func StringEnum(values ...string) *Enum {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return &Enum{ScalarKind: ScalarString, Values: vs}
}

// NumberEnum returns an Enum over numeric values.
func NumberEnum(values ...float64) *Enum {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = v
	}
	return &Enum{ScalarKind: ScalarNumber, Values: vs}
}
