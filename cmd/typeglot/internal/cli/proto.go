package cli

import (
	"context"

	"github.com/typeglot/typeglot"
)

// ProtoCmd converts the input into proto3 source.
type ProtoCmd struct {
	InputFlags  `embed:""`
	OutputFlags `embed:""`

	Package string `help:"Package name for the emitted proto source." short:"p" env:"TYPEGLOT_PROTO_PACKAGE"`
}

func (c *ProtoCmd) Run(ctx context.Context) error {
	cfg := typeglot.Config{
		CoerceSymbols: c.CoerceSymbols,
		ProtoPackage:  c.Package,
	}
	doc, err := c.load(ctx, cfg)
	if err != nil {
		return err
	}
	text, err := typeglot.ToProto(doc, cfg)
	if err != nil {
		return err
	}
	return c.write(ctx, []byte(text))
}
