package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/typeglot/typeglot"
)

// CheckCmd parses and validates the input without writing output. It
// fails on anything the conversion commands would reject, plus dangling
// references in parsed documents.
type CheckCmd struct {
	InputFlags `embed:""`
}

func (c *CheckCmd) Run(ctx context.Context) error {
	doc, err := c.load(ctx, typeglot.Config{CoerceSymbols: c.CoerceSymbols})
	if err != nil {
		return err
	}
	if errs := doc.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	for _, name := range doc.Names() {
		n, _ := doc.Get(name)
		if m := n.Meta(); m != nil && m.Deprecated {
			warnf("%s is deprecated", name)
		}
	}
	fmt.Printf("ok: %d types\n", doc.Len())
	return nil
}
