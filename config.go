package typeglot

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/typeglot/typeglot/ir"
)

// Config controls the conversions exposed by this package. The zero
// value is ready to use: OpenAPI output defaults to version 3.1 with
// oneOf unions, proto output carries no package line, and dates map to
// string schemas with format "date-time".
type Config struct {
	// OpenAPIVersion selects the OpenAPI dialect for ToOpenAPI. "3.0"
	// encodes nullability with the nullable keyword, "3.1" with type
	// arrays.
	OpenAPIVersion string `validate:"omitempty,oneof=3.0 3.1"`

	// UnionStyle selects the keyword ToOpenAPI uses for union schemas,
	// "oneOf" or "anyOf".
	UnionStyle string `validate:"omitempty,oneof=oneOf anyOf"`

	// CoerceSymbols maps TypeScript symbol types to string schemas
	// instead of failing the build.
	CoerceSymbols bool

	// DateSchema overrides the node produced for TypeScript Date and Go
	// time.Time.
	DateSchema func() ir.Node

	// ProtoPackage names the package in ToProto output. Empty omits the
	// package declaration.
	ProtoPackage string
}

var validate = validator.New()

// Validate reports invalid configuration values. The returned error is
// an *ir.ConfigurationError naming every offending field.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			messages = append(messages, ve.Field()+": "+formatFieldError(ve))
		}
		return ir.Configf("invalid configuration: %s", strings.Join(messages, "; "))
	}
	return ir.Configf("invalid configuration: %v", err)
}

// formatFieldError converts a validator.FieldError to a human-readable message.
func formatFieldError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
