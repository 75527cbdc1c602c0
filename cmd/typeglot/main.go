package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/typeglot/typeglot/cmd/typeglot/internal/cli"
)

type CLI struct {
	Verbose bool `help:"Enable debug logging." short:"v" env:"TYPEGLOT_VERBOSE"`

	Version VersionCmd     `cmd:"" help:"Print version information."`
	OpenAPI cli.OpenAPICmd `cmd:"" name:"openapi" help:"Convert type definitions to an OpenAPI document."`
	Proto   cli.ProtoCmd   `cmd:"" help:"Convert type definitions to proto3 source."`
	Decls   cli.DeclsCmd   `cmd:"" help:"Convert type definitions to TypeScript declarations."`
	Check   cli.CheckCmd   `cmd:"" help:"Parse and validate type definitions without writing output."`
}

type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Println(Version())
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &CLI{}
	parsed := kong.Parse(root,
		kong.Name("typeglot"),
		kong.Description("Convert named type definitions between TypeScript, OpenAPI, Protobuf, and Go."),
		kong.UsageOnError(),
		kong.BindTo(ctx, (*context.Context)(nil)),
	)

	level := slog.LevelInfo
	if root.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	err := parsed.Run()
	parsed.FatalIfErrorf(err)
}
