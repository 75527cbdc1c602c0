package cli

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"

	"github.com/typeglot/typeglot"
	"github.com/typeglot/typeglot/sink"
	"github.com/typeglot/typeglot/typescript"
)

// DeclsCmd converts the input into TypeScript declarations.
type DeclsCmd struct {
	InputFlags  `embed:""`
	OutputFlags `embed:""`

	Declare bool `help:"Emit ambient declarations (declare modifier)."`
	Split   bool `help:"Write one file per type under the output directory."`
}

func (c *DeclsCmd) Run(ctx context.Context) error {
	cfg := typeglot.Config{CoerceSymbols: c.CoerceSymbols}
	doc, err := c.load(ctx, cfg)
	if err != nil {
		return err
	}
	opts := typescript.Options{Declare: c.Declare}

	if c.Split {
		if c.Out == "" {
			return errors.New("--split requires an output directory (-o)")
		}
		files, err := typescript.EmitDocument(doc, opts)
		if err != nil {
			return err
		}
		s := sink.NewFilesystemSink(c.Out)
		for _, name := range doc.Names() {
			path := name + ".ts"
			if err := s.WriteFile(ctx, path, []byte(files[name]+"\n")); err != nil {
				return err
			}
			slog.Info("wrote declaration", slog.String("path", filepath.Join(c.Out, path)))
		}
		return nil
	}

	text, err := typescript.Render(doc, opts)
	if err != nil {
		return err
	}
	return c.write(ctx, []byte(text))
}
