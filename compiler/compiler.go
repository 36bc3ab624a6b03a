// Package compiler is the entry point of schema generation: it walks the
// type closure of a set of entries and writes the generated artifacts.
package compiler

import (
	"context"

	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
)

// Generate walks the closure of entries and writes the schema artifacts
// described by cfg. Any failure aborts the run; nothing is written for a
// closure that cannot be resolved.
//
//	err := compiler.Generate(ctx, cfg, load.Service[shop.Service]()...)
func Generate(ctx context.Context, cfg *gen.Config, entries ...load.Entry) (*gen.Schema, error) {
	g, err := load.Walk(entries...)
	if err != nil {
		return nil, err
	}
	return gen.NewGenerator(cfg, g).Generate(ctx)
}

// GenerateFromFile is like Generate but reads the configuration from a YAML
// file. Options override the file.
func GenerateFromFile(ctx context.Context, path string, entries []load.Entry, opts ...gen.Option) (*gen.Schema, error) {
	cfg, err := gen.LoadConfig(path, opts...)
	if err != nil {
		return nil, err
	}
	return Generate(ctx, cfg, entries...)
}
