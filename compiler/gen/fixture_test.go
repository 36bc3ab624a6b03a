package gen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

const testPkg = "github.com/syssam/protobridge/compiler/gen"

type Base struct{ S string }

type Pair struct {
	Base
	J int32
}

type Line struct {
	Qty   int16
	Price float64
}

type Order struct {
	ID    uint64
	Note  *string
	Lines []Line
	Blob  []byte
	Meta  any
	Small int8
}

type Shop interface {
	Put(ctx context.Context, p Pair) (*Order, error)
	Count(names []string) int
}

func msgName(simple string) string {
	return wire.Mangle(testPkg + "." + simple)
}

func testConfig(t *testing.T, opts ...Option) *Config {
	t.Helper()
	cfg, err := NewConfig(append([]Option{WithPackage("shop.v1")}, opts...)...)
	require.NoError(t, err)
	return cfg
}

func testSchema(t *testing.T) *Schema {
	t.Helper()
	g, err := load.Walk(load.Service[Shop]()...)
	require.NoError(t, err)
	s, err := Emit(testConfig(t), g)
	require.NoError(t, err)
	return s
}
