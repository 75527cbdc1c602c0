// Package typeglot converts named type definitions between TypeScript
// declaration source, OpenAPI schemas, Protobuf messages, and Go types
// through a shared canonical document.
//
// Each From function compiles one input format into an *ir.Document;
// each To function renders a document into one output format. Any input
// can feed any output, and conversions preserve names, structure,
// optionality, and metadata as far as the target format can express
// them. The underlying packages (builder, openapi, proto, typescript,
// provider) expose finer-grained control when the Config knobs are not
// enough.
package typeglot

import (
	"context"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/typeglot/typeglot/builder"
	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/openapi"
	"github.com/typeglot/typeglot/proto"
	"github.com/typeglot/typeglot/provider"
	"github.com/typeglot/typeglot/typescript"
)

// FromTypeScript parses TypeScript declaration source and compiles the
// declared types into a document.
func FromTypeScript(src string, cfg Config) (*ir.Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	roots, err := provider.ParseTypeScript(src)
	if err != nil {
		return nil, err
	}
	return builder.New(cfg.builderOptions()).Document(roots)
}

// FromGoPackages loads the Go packages matching the given patterns and
// compiles the named root types into a document. When roots is empty,
// every exported type declaration in the matched packages becomes a
// root.
func FromGoPackages(ctx context.Context, patterns, roots []string, cfg Config) (*ir.Document, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	named, err := provider.GoPackages(ctx, patterns, roots)
	if err != nil {
		return nil, err
	}
	return builder.New(cfg.builderOptions()).Document(named)
}

// FromOpenAPI reconstructs a document from an OpenAPI document given as
// JSON or YAML. Schemas are read from components.schemas.
func FromOpenAPI(data []byte) (*ir.Document, error) {
	return openapi.Parse(data)
}

// FromProto reconstructs a document from proto3 source.
func FromProto(data []byte) (*ir.Document, error) {
	m, err := proto.Parse(data)
	if err != nil {
		return nil, err
	}
	return proto.ToDocument(m)
}

// ToTypeScript renders the document as TypeScript declaration source.
func ToTypeScript(doc *ir.Document, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	return typescript.Render(doc, typescript.Options{})
}

// ToOpenAPI renders the document as a minimal OpenAPI document whose
// schemas sit under components.schemas.
func ToOpenAPI(doc *ir.Document, cfg Config) (*openapi3.T, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return openapi.EmitDocument(doc, openapi.Options{
		Version:    cfg.OpenAPIVersion,
		UnionStyle: cfg.UnionStyle,
	})
}

// ToProto renders the document as proto3 source text. Output is
// deterministic: messages and enums follow document order, fields keep
// their declaration order.
func ToProto(doc *ir.Document, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	m, err := proto.Emit(doc, proto.Options{Package: cfg.ProtoPackage})
	if err != nil {
		return "", err
	}
	return m.Text(), nil
}

func (c Config) builderOptions() builder.Options {
	return builder.Options{
		CoerceSymbols: c.CoerceSymbols,
		DateSchema:    c.DateSchema,
	}
}
