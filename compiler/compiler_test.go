package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler"
	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
)

type Point struct{ X, Y float64 }

type Path struct {
	Name   *string
	Points []Point
}

type Geometry interface {
	Length(p Path) float64
}

func TestGenerate(t *testing.T) {
	target := t.TempDir()
	cfg, err := gen.NewConfig(gen.WithPackage("geo"), gen.WithTarget(target))
	require.NoError(t, err)

	s, err := compiler.Generate(context.Background(), cfg, load.Service[Geometry]()...)
	require.NoError(t, err)
	assert.Len(t, s.Closure(), 2)

	data, err := os.ReadFile(filepath.Join(target, "service.proto"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "package geo;")
}

func TestGenerateFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protobridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: geo\npackage: geo.v1\nsnapshot: true\n"), 0o644))

	target := filepath.Join(dir, "out")
	_, err := compiler.GenerateFromFile(context.Background(), path, load.Service[Geometry](), gen.WithTarget(target))
	require.NoError(t, err)

	for _, name := range []string{"geo.proto", "geo.snapshot"} {
		_, err := os.Stat(filepath.Join(target, name))
		assert.NoError(t, err, name)
	}
}

func TestGenerateUnresolved(t *testing.T) {
	target := t.TempDir()
	cfg, err := gen.NewConfig(gen.WithPackage("geo"), gen.WithTarget(target))
	require.NoError(t, err)

	_, err = compiler.Generate(context.Background(), cfg, load.Entry{
		Name:   "Anon",
		Params: []reflect.Type{reflect.TypeFor[struct{ X int }]()},
	})
	require.Error(t, err)
	assert.True(t, protobridge.IsUnresolvedType(err))

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
