package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/typeglot/typeglot"
)

// OpenAPICmd converts the input into an OpenAPI document.
type OpenAPICmd struct {
	InputFlags  `embed:""`
	OutputFlags `embed:""`

	Version    string `help:"OpenAPI version: 3.0 or 3.1." default:"3.1" env:"TYPEGLOT_OPENAPI_VERSION"`
	UnionStyle string `help:"Union keyword: oneOf or anyOf." name:"union-style" default:"oneOf" env:"TYPEGLOT_UNION_STYLE"`
	JSON       bool   `help:"Write JSON even when the output path is not .json."`
}

func (c *OpenAPICmd) Run(ctx context.Context) error {
	cfg := typeglot.Config{
		OpenAPIVersion: c.Version,
		UnionStyle:     c.UnionStyle,
		CoerceSymbols:  c.CoerceSymbols,
	}
	doc, err := c.load(ctx, cfg)
	if err != nil {
		return err
	}
	out, err := typeglot.ToOpenAPI(doc, cfg)
	if err != nil {
		return err
	}
	data, err := c.encode(out)
	if err != nil {
		return err
	}
	return c.write(ctx, data)
}

// encode picks JSON for .json outputs or --json, YAML otherwise. YAML
// goes through a JSON round trip so the document's MarshalJSON shapes
// survive.
func (c *OpenAPICmd) encode(t *openapi3.T) ([]byte, error) {
	if c.JSON || strings.EqualFold(filepath.Ext(c.Out), ".json") {
		data, err := json.MarshalIndent(t, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode document: %w", err)
		}
		return append(data, '\n'), nil
	}
	data, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var tree map[string]any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return yaml.Marshal(tree)
}
