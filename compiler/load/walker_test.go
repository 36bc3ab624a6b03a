package load_test

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/schema/wire"
)

const pkg = "github.com/syssam/protobridge/compiler/load_test"

type Base struct{ S string }

type Pair struct {
	Base
	J int32
}

type A struct{ A1 string }

type B struct {
	A
	B1 *int32
}

type C struct {
	B
	C1 []bool
}

type Shape interface{ Area() float64 }

type Item struct{ ID string }

type Holder struct {
	Any     any
	Shape   Shape
	Tags    map[string]string
	Data    []byte
	Items   []*Item
	Grid    [][]float64
	Secret  string `protobridge:"-"`
	Renamed int    `protobridge:"alias"`
	UserID  uint16
	hidden  int `protobridge:"-"`
}

type Box[T any] struct{ Value T }

type Service interface {
	Create(ctx context.Context, p *Pair) (*C, error)
	Inspect(h Holder) Box[int]
}

type List struct {
	Value    int
	Next     *List
	Children []List
}

func names(g *load.Graph) []string {
	var out []string
	for _, n := range g.Nodes {
		out = append(out, n.SimpleName())
	}
	return out
}

func TestWalk(t *testing.T) {
	g, err := load.Walk(load.Service[Service]()...)
	require.NoError(t, err)

	assert.Equal(t, []string{"Pair", "C", "Holder", "Box[int]", "Base", "B", "Item", "A"}, names(g))
	assert.Equal(t, []reflect.Type{reflect.TypeFor[*Pair](), reflect.TypeFor[Holder]()}, g.Requests)
	assert.Equal(t, []reflect.Type{reflect.TypeFor[*C](), reflect.TypeFor[Box[int]]()}, g.Responses)

	t.Run("fields", func(t *testing.T) {
		n, ok := g.NodeOf(reflect.TypeFor[Holder]())
		require.True(t, ok)
		type want struct {
			name  string
			shape load.Shape
		}
		var got []want
		for i, f := range n.Fields {
			assert.Equal(t, i, f.Ordinal)
			assert.Equal(t, i+1, f.Tag())
			got = append(got, want{f.Name, f.Shape})
		}
		assert.Equal(t, []want{
			{"any", load.ShapeDynamic},
			{"shape", load.ShapeDynamic},
			{"tags", load.ShapeDynamic},
			{"data", load.ShapeBytes},
			{"items", load.ShapeArray},
			{"grid", load.ShapeArray},
			{"alias", load.ShapeScalar},
			{"user_id", load.ShapeScalar},
		}, got)
	})

	t.Run("message references", func(t *testing.T) {
		n, ok := g.Node(pkg + ".Pair")
		require.True(t, ok)
		assert.Equal(t, "github___com_SL_syssam_SL_protobridge_SL_compiler_SL_load_U_test___Pair", n.MessageName())
		require.Len(t, n.Fields, 2)
		assert.Equal(t, "Base___super", n.Fields[0].Name)
		assert.Equal(t, load.ShapeSuper, n.Fields[0].Shape)
		assert.Equal(t, "j", n.Fields[1].Name)
		assert.Equal(t, 2, n.Fields[1].Tag())
	})

	t.Run("lookup", func(t *testing.T) {
		typ, ok := g.Lookup(wire.Qualified(reflect.TypeFor[Shape]()))
		require.True(t, ok)
		assert.Equal(t, reflect.TypeFor[Shape](), typ)
		_, ok = g.Lookup("example.com/other.Thing")
		assert.False(t, ok)
	})
}

func TestWalkSuperChain(t *testing.T) {
	g, err := load.Walk(load.Entry{Name: "Get", Results: []reflect.Type{reflect.TypeFor[C]()}})
	require.NoError(t, err)

	c, _ := g.NodeOf(reflect.TypeFor[C]())
	b, _ := g.NodeOf(reflect.TypeFor[B]())
	a, _ := g.NodeOf(reflect.TypeFor[A]())
	require.NotNil(t, c)
	require.NotNil(t, b)
	require.NotNil(t, a)

	assert.Same(t, b, c.Super)
	assert.Same(t, a, b.Super)
	assert.Nil(t, a.Super)
	assert.Equal(t, "B___super", c.SuperField().Name)
	assert.Equal(t, "A___super", b.SuperField().Name)
	assert.Nil(t, a.SuperField())
	// Only the nearest ancestor is linked.
	for _, f := range c.Fields {
		assert.NotEqual(t, "A___super", f.Name)
	}
	assert.Equal(t, load.ShapeWrapper, b.Fields[1].Shape)
}

func TestWalkCycle(t *testing.T) {
	g, err := load.Walk(load.Entry{Name: "Walk", Params: []reflect.Type{reflect.TypeFor[*List]()}})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)

	n := g.Nodes[0]
	require.Len(t, n.Fields, 3)
	assert.Same(t, n, n.Fields[1].Node)
	assert.True(t, n.Fields[1].Nullable)
	assert.Equal(t, load.ShapeArray, n.Fields[2].Shape)
}

func localDupA() reflect.Type {
	type dup struct{ X int }
	return reflect.TypeFor[dup]()
}

func localDupB() reflect.Type {
	type dup struct{ Y int }
	return reflect.TypeFor[dup]()
}

type clash struct {
	First  int `protobridge:"value"`
	Second int `protobridge:"value"`
}

type badName struct {
	Field int `protobridge:"not-valid"`
}

type stamped struct {
	At   time.Time
	Name string
}

type event struct {
	time.Time
	Kind string
}

type secret struct {
	Visible string
	token   string
}

func TestWalkErrors(t *testing.T) {
	tests := []struct {
		name  string
		entry load.Entry
	}{
		{"nil type", load.Entry{Name: "Nil", Params: []reflect.Type{nil}}},
		{"anonymous struct", load.Entry{Name: "Anon", Params: []reflect.Type{reflect.TypeFor[struct{ X int }]()}}},
		{"name collision", load.Entry{Name: "Dup", Params: []reflect.Type{localDupA(), localDupB()}}},
		{"duplicate wire name", load.Entry{Name: "Clash", Results: []reflect.Type{reflect.TypeFor[clash]()}}},
		{"invalid wire name", load.Entry{Name: "Bad", Results: []reflect.Type{reflect.TypeFor[badName]()}}},
		{"opaque field type", load.Entry{Name: "Stamp", Params: []reflect.Type{reflect.TypeFor[stamped]()}}},
		{"opaque ancestor", load.Entry{Name: "Emit", Params: []reflect.Type{reflect.TypeFor[*event]()}}},
		{"unexported field", load.Entry{Name: "Keep", Results: []reflect.Type{reflect.TypeFor[secret]()}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := load.Walk(tt.entry)
			require.Error(t, err)
			assert.Nil(t, g)
			assert.True(t, protobridge.IsUnresolvedType(err))
			assert.Contains(t, err.Error(), tt.entry.Name)
		})
	}
}

type greeter struct{}

func (*greeter) Greet(_ context.Context, name string, times *int) ([]string, error) { return nil, nil }

func TestEntries(t *testing.T) {
	t.Run("FromFunc", func(t *testing.T) {
		e, err := load.FromFunc("Sum", func(ctx context.Context, xs []int64) (int64, error) { return 0, nil })
		require.NoError(t, err)
		assert.Equal(t, "Sum", e.Name)
		assert.Equal(t, []reflect.Type{reflect.TypeFor[[]int64]()}, e.Params)
		assert.Equal(t, []reflect.Type{reflect.TypeFor[int64]()}, e.Results)

		_, err = load.FromFunc("NotAFunc", 42)
		require.Error(t, err)
	})

	t.Run("FromMethods struct", func(t *testing.T) {
		entries, err := load.FromMethods(reflect.TypeFor[greeter]())
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "Greet", entries[0].Name)
		assert.Equal(t, []reflect.Type{reflect.TypeFor[string](), reflect.TypeFor[*int]()}, entries[0].Params)
		assert.Equal(t, []reflect.Type{reflect.TypeFor[[]string]()}, entries[0].Results)
	})

	t.Run("Service without methods", func(t *testing.T) {
		assert.Panics(t, func() { load.Service[Base]() })
	})
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		kind load.Kind
	}{
		{reflect.TypeFor[int16](), load.KindPrimitive},
		{reflect.TypeFor[*string](), load.KindWrapper},
		{reflect.TypeFor[Base](), load.KindStruct},
		{reflect.TypeFor[*Base](), load.KindStruct},
		{reflect.TypeFor[Shape](), load.KindInterface},
		{reflect.TypeFor[[]byte](), load.KindArray},
		{reflect.TypeFor[[2][]int](), load.KindArray},
		{reflect.TypeFor[map[string]int](), load.KindDynamic},
		{reflect.TypeFor[complex64](), load.KindDynamic},
		{reflect.TypeFor[*[]int](), load.KindDynamic},
	}
	for _, tt := range tests {
		t.Run(tt.typ.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, load.KindOf(tt.typ))
		})
	}
}
