// testgen is a small program that demonstrates schema generation and a
// round trip through the generated schema.
// Run: go run ./compiler/gen/cmd/testgen
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/syssam/protobridge/compiler"
	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/translate"
)

// Base is the ancestor of Pair.
type Base struct {
	S string
}

// Pair extends Base.
type Pair struct {
	Base
	J int32
}

// Catalog is the demo service.
type Catalog interface {
	Store(ctx context.Context, p *Pair, tags []*int32) (bool, error)
	Mixed(values []any) [][]bool
}

func main() {
	outDir, err := os.MkdirTemp("", "protobridge-testgen-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Output directory: %s\n", outDir)

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := gen.NewConfig(
		gen.WithName("catalog"),
		gen.WithPackage("catalog.v1"),
		gen.WithTarget(outDir),
		gen.WithAccessors("main", "main"),
		gen.WithSnapshot(false),
		gen.WithLogger(logger),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config: %v\n", err)
		os.Exit(1)
	}

	entries := load.Service[Catalog]()
	schema, err := compiler.Generate(context.Background(), cfg, entries...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generation failed: %v\n", err)
		os.Exit(1)
	}

	reg, err := translate.NewRegistry(schema, translate.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "registry failed: %v\n", err)
		os.Exit(1)
	}
	msg, err := reg.ToWire(&Pair{Base: Base{S: "abc"}, J: 3})
	if err != nil {
		fmt.Fprintf(os.Stderr, "encode failed: %v\n", err)
		os.Exit(1)
	}
	back, err := translate.Decode[Pair](reg, msg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "decode failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Round trip: %+v\n", *back)

	files, _ := filepath.Glob(filepath.Join(outDir, "*"))
	fmt.Println("\nGenerated files:")
	for _, f := range files {
		info, _ := os.Stat(f)
		fmt.Printf("  %s (%d bytes)\n", filepath.Base(f), info.Size())
	}
}
