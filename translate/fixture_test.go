package translate_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge/compiler/gen"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
	"github.com/syssam/protobridge/translate"
)

type Base struct {
	S string
}

type Pair struct {
	Base
	J int32
}

type A struct {
	X int
}

type B struct {
	A
	Y *string
}

type C struct {
	B
	Z []int16
}

type Shape interface {
	Area() float64
}

type Circle struct {
	R float64
}

func (c Circle) Area() float64 { return 3 * c.R * c.R }

type square struct{ side float64 }

func (s square) Area() float64 { return s.side * s.side }

type Node struct {
	Value int
	Next  *Node
}

type Everything struct {
	ID       uuid.UUID
	Flag     bool
	Small    int8
	Count    int
	Unsigned uint16
	Ratio    float32
	Name     string
	Note     *string
	Age      *int
	Blob     []byte
	Digest   [4]byte
	Tags     []string
	Grid     [][]int32
	Opt      []*int64
	Fixed    [2]float64
	Child    *Pair
	Main     Pair
	Kids     []Pair
	Any      any
	Shape    Shape
	Ptrs     *[]int
	Meta     map[string]int
	Skip     string `protobridge:"-"`
	hidden   int    `protobridge:"-"`
}

type Service interface {
	Put(ctx context.Context, p Pair) (*Everything, error)
	Chain(c *C) []any
	Count(n int32) *bool
	Raw(b []byte) [][]bool
	Draw(c Circle)
	Walk(n *Node) Shape
}

func ptr[T any](v T) *T { return &v }

func msgName[T any]() string {
	return wire.Mangle(wire.Qualified(reflect.TypeFor[T]()))
}

func testConfig(t *testing.T) *gen.Config {
	t.Helper()
	cfg, err := gen.NewConfig(gen.WithPackage("bridge.v1"))
	require.NoError(t, err)
	return cfg
}

func newRegistry(t *testing.T, opts ...translate.Option) *translate.Registry {
	t.Helper()
	reg, err := translate.Build(testConfig(t), load.Service[Service](), opts...)
	require.NoError(t, err)
	return reg
}
