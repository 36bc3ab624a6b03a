package translate_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/protobridge"
	"github.com/syssam/protobridge/compiler/load"
	"github.com/syssam/protobridge/translate"
)

// pairAccessor is a field table of Pair written the way the generator
// writes one. It counts the field lookups it serves.
type pairAccessor struct {
	lookups atomic.Int64
}

func (*pairAccessor) New() any { return new(Pair) }

func (a *pairAccessor) FieldPtr(obj any, ordinal int) any {
	a.lookups.Add(1)
	o := obj.(*Pair)
	switch ordinal {
	case 0:
		return &o.Base
	case 1:
		return &o.J
	}
	return nil
}

type wrongAccessor struct{}

func (wrongAccessor) New() any { return new(Base) }

func (wrongAccessor) FieldPtr(any, int) any { return nil }

func TestAccessors(t *testing.T) {
	t.Run("generated table replaces reflection", func(t *testing.T) {
		acc := &pairAccessor{}
		reg := newRegistry(t, translate.WithAccessors(map[string]translate.Accessor{msgName[Pair](): acc}))

		in := &Pair{Base: Base{S: "s"}, J: 7}
		msg, err := reg.ToWire(in)
		require.NoError(t, err)
		out, err := translate.Decode[Pair](reg, msg)
		require.NoError(t, err)
		assert.Equal(t, in, out)
		assert.EqualValues(t, 4, acc.lookups.Load())
	})

	t.Run("table of another type", func(t *testing.T) {
		_, err := translate.Build(testConfig(t), load.Service[Service](), translate.WithAccessors(map[string]translate.Accessor{
			msgName[Pair](): wrongAccessor{},
		}))
		require.Error(t, err)
	})

	t.Run("tables of unknown messages are ignored", func(t *testing.T) {
		newRegistry(t, translate.WithAccessors(map[string]translate.Accessor{"Nope": wrongAccessor{}}))
	})
}

type Stamped struct {
	At   time.Time
	Name string
}

func TestBuildOpaqueState(t *testing.T) {
	for _, typ := range []reflect.Type{
		reflect.TypeFor[Stamped](),
		reflect.TypeFor[*Stamped](),
		reflect.TypeFor[[]Stamped](),
	} {
		t.Run(typ.String(), func(t *testing.T) {
			reg, err := translate.Build(testConfig(t), []load.Entry{{Name: "Stamp", Params: []reflect.Type{typ}}})
			require.Error(t, err)
			assert.Nil(t, reg)
			assert.True(t, protobridge.IsUnresolvedType(err))
			assert.Contains(t, err.Error(), "wall")
		})
	}
}

func TestRegistryLogger(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	newRegistry(t, translate.WithLogger(logger))
	assert.Contains(t, logs.String(), "translator registry built")
	assert.Contains(t, logs.String(), "generated_accessors=0")
}

func TestConcurrentTranslation(t *testing.T) {
	reg := newRegistry(t)
	var g errgroup.Group
	for i := range 32 {
		g.Go(func() error {
			in := &Everything{
				Count: i,
				Name:  fmt.Sprint("n", i),
				Opt:   []*int64{nil, ptr(int64(i))},
				Any:   []any{i, &Pair{J: int32(i)}},
			}
			b, err := reg.Marshal(in)
			if err != nil {
				return err
			}
			out, err := reg.Unmarshal(b, msgName[Everything]())
			if err != nil {
				return err
			}
			if !assert.Equal(t, in, out) {
				return fmt.Errorf("value %d changed in transit", i)
			}
			arr, err := reg.EncodeArray([][]*int64{{ptr(int64(i))}, nil})
			if err != nil {
				return err
			}
			_, err = reg.DecodeArray(arr)
			return err
		})
	}
	require.NoError(t, g.Wait())
}
