// Package cli implements the typeglot command set. Each command reads
// one input (TypeScript declarations, an OpenAPI document, proto3
// source, or a Go package pattern), compiles it into the shared
// document form, and renders one output format.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/typeglot/typeglot"
	"github.com/typeglot/typeglot/ir"
	"github.com/typeglot/typeglot/sink"
)

// InputFlags select and configure the conversion source, shared by
// every command.
type InputFlags struct {
	Input         string   `arg:"" help:"Input path (.ts, .json, .yaml, .yml, .proto) or a Go package pattern."`
	Roots         []string `help:"Root type names for Go package input. Defaults to every exported type." name:"root" env:"TYPEGLOT_ROOTS"`
	CoerceSymbols bool     `help:"Map TypeScript symbol types to string schemas." env:"TYPEGLOT_COERCE_SYMBOLS"`
}

// OutputFlags name the output destination, shared by the emitting
// commands.
type OutputFlags struct {
	Out string `help:"Output file path. Defaults to stdout." short:"o" placeholder:"PATH" env:"TYPEGLOT_OUT"`
}

// load reads the input and compiles it into a document. The format
// follows the file extension; anything without a recognized extension
// is treated as a Go package pattern.
func (f *InputFlags) load(ctx context.Context, cfg typeglot.Config) (*ir.Document, error) {
	doc, err := f.compile(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Debug("compiled input", slog.String("input", f.Input), slog.Int("types", doc.Len()))
	if doc.Len() == 0 {
		warnf("input %s contains no named types", f.Input)
	}
	return doc, nil
}

func (f *InputFlags) compile(ctx context.Context, cfg typeglot.Config) (*ir.Document, error) {
	ext := strings.ToLower(filepath.Ext(f.Input))
	switch ext {
	case ".ts", ".json", ".yaml", ".yml", ".proto":
	default:
		return typeglot.FromGoPackages(ctx, []string{f.Input}, f.Roots, cfg)
	}

	if len(f.Roots) > 0 {
		warnf("--root only applies to Go package input; ignoring")
	}
	data, err := os.ReadFile(f.Input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	switch ext {
	case ".ts":
		return typeglot.FromTypeScript(string(data), cfg)
	case ".proto":
		return typeglot.FromProto(data)
	default:
		return typeglot.FromOpenAPI(data)
	}
}

// write sends data to the output path, or stdout when none is set.
// File writes go through the sink so they are atomic.
func (f *OutputFlags) write(ctx context.Context, data []byte) error {
	if f.Out == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	dir, base := filepath.Split(f.Out)
	if dir == "" {
		dir = "."
	}
	s := sink.NewFilesystemSink(dir)
	if err := s.WriteFile(ctx, base, data); err != nil {
		return err
	}
	slog.Info("wrote output", slog.String("path", f.Out), slog.Int("bytes", len(data)))
	return nil
}

var warnColor = color.New(color.FgYellow, color.Bold)

// warnf prints a highlighted warning to stderr, keeping piped stdout
// clean.
func warnf(format string, args ...any) {
	warnColor.Fprint(os.Stderr, "warning: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
}
