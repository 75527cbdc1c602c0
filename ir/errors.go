package ir

import "fmt"

// The error taxonomy below is shared by the builder, the emitters, and
// the parsers. All four types are fatal to the current document: errors
// propagate synchronously to the caller and no partial output is
// produced. None represent a transient condition, so nothing is retried.
// Callers match with errors.As.

// StructuralError reports a schema-author mistake: a duplicate document
// name, a format-tagged scalar with no format argument, a mixed-kind or
// empty enum, or an enum member whose value cannot be resolved.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

// Structuralf returns a StructuralError with a formatted message.
func Structuralf(format string, args ...any) *StructuralError {
	return &StructuralError{Message: fmt.Sprintf(format, args...)}
}

// DuplicateName returns the StructuralError raised when a document
// name is registered twice.
func DuplicateName(name string) *StructuralError {
	return Structuralf("Duplicate type name '%s' detected; type names must be unique within a document", name)
}

// UnsupportedTypeError reports a descriptor or node with no mapping in
// the builder or an emitter, or an explicitly deny-listed host global.
type UnsupportedTypeError struct {
	// Text is the offending type's textual form.
	Text string

	// Global is set when the type is a known-unsupported host global
	// (Function, RegExp, Promise, ...).
	Global bool
}

func (e *UnsupportedTypeError) Error() string {
	if e.Global {
		return "Unsupported global type: " + e.Text
	}
	return "Unsupported type: " + e.Text
}

// Unsupported returns an UnsupportedTypeError for the given type text.
func Unsupported(text string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Text: text}
}

// UnsupportedGlobal returns an UnsupportedTypeError for a deny-listed
// host global type.
func UnsupportedGlobal(name string) *UnsupportedTypeError {
	return &UnsupportedTypeError{Text: name, Global: true}
}

// ConfigurationError reports an invalid or missing configuration value.
// The message names the offending option.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// Configf returns a ConfigurationError with a formatted message.
func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// ParseError reports malformed Protobuf, OpenAPI, or TypeScript
// declaration input.
type ParseError struct {
	// Format names the input format ("proto", "openapi", or
	// "typescript").
	Format string

	// Context locates the problem (file, message, or field), if known.
	Context string

	// Message describes the problem when Err is nil.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

func (e *ParseError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Context != "" {
		return fmt.Sprintf("%s parse error at %s: %s", e.Format, e.Context, msg)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, msg)
}

func (e *ParseError) Unwrap() error { return e.Err }
