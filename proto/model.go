// Package proto renders IR documents as proto3 definitions and parses
// proto3 sources back into the IR. The in-memory Model sits between the
// two directions: the emitter produces one, the text serializer prints
// one, and the parser reconstructs one.
package proto

// Model is a single proto3 compilation unit.
type Model struct {
	Syntax   string
	Package  string
	Enums    []Enum
	Messages []Message
	Services []ServiceSpec
}

// Enum is a top-level enum declaration. Values carry their explicit
// numbers so re-serialization never renumbers.
type Enum struct {
	Name     string
	Comments []string
	Values   []EnumValue
}

// EnumValue is one enum member.
type EnumValue struct {
	Name   string
	Number int32
}

// Message is a top-level message declaration.
type Message struct {
	Name     string
	Comments []string
	Fields   []Field
}

// Field is one message field. For map fields KeyType is set and Type
// holds the value type; Repeated and Optional are mutually exclusive
// with KeyType and with each other.
type Field struct {
	Name     string
	Type     string
	Number   int32
	Repeated bool
	Optional bool
	KeyType  string
	Comments []string
}

// ServiceSpec describes a service: on the emit side it carries
// externally annotated call sites, on the parse side it mirrors a
// parsed service block.
type ServiceSpec struct {
	Name    string
	Methods []MethodSpec
}

// MethodSpec is one rpc. Empty request or response names stand for the
// Empty sentinel message.
type MethodSpec struct {
	Name         string
	RequestType  string
	ResponseType string
}
