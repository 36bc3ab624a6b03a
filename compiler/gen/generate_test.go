package gen

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/protobridge/compiler/load"
)

func shopGraph(t *testing.T) *load.Graph {
	t.Helper()
	g, err := load.Walk(load.Service[Shop]()...)
	require.NoError(t, err)
	return g
}

func TestGenerator(t *testing.T) {
	target := t.TempDir()
	cfg := testConfig(t,
		WithTarget(target),
		WithName("shop"),
		WithAccessors(testPkg, "gen"),
		WithSnapshot(false),
	)

	s, err := NewGenerator(cfg, shopGraph(t)).WithWorkers(2).Generate(context.Background())
	require.NoError(t, err)

	t.Run("proto", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(target, "shop.proto"))
		require.NoError(t, err)
		assert.Equal(t, string(s.Proto()), string(data))
	})

	t.Run("accessors", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(target, "shop_accessors.go"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "package gen")
		assert.Contains(t, string(data), "func Accessors() map[string]translate.Accessor")
	})

	t.Run("snapshot", func(t *testing.T) {
		data, err := os.ReadFile(filepath.Join(target, "shop.snapshot"))
		require.NoError(t, err)
		snap, err := UnmarshalSnapshot(data)
		require.NoError(t, err)
		assert.Equal(t, s.Snapshot(), snap)
	})

	t.Run("no temporary files left", func(t *testing.T) {
		matches, err := filepath.Glob(filepath.Join(target, "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, matches)
	})

	t.Run("regeneration is stable", func(t *testing.T) {
		again, err := NewGenerator(cfg, shopGraph(t)).Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, s.Proto(), again.Proto())
	})
}

// writeDriftedSnapshot stores a previous snapshot in which field j of Pair
// had another tag.
func writeDriftedSnapshot(t *testing.T, target string) {
	t.Helper()
	snap := testSchema(t).Snapshot()
	for i, m := range snap.Messages {
		if m.Name == msgName("Pair") {
			snap.Messages[i].Fields[1].Tag = 7
		}
	}
	data, err := snap.Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(target, "service.snapshot"), data, 0o644))
}

func TestGeneratorStability(t *testing.T) {
	t.Run("strict fails before writing", func(t *testing.T) {
		target := t.TempDir()
		writeDriftedSnapshot(t, target)

		cfg := testConfig(t, WithTarget(target), WithSnapshot(true))
		_, err := NewGenerator(cfg, shopGraph(t)).Generate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnstableTags))
		assert.Contains(t, err.Error(), "j: tag 7 -> 2")
		var serr *StabilityError
		require.ErrorAs(t, err, &serr)
		assert.Equal(t, filepath.Join(target, "service.snapshot"), serr.Snapshot)

		_, statErr := os.Stat(filepath.Join(target, "service.proto"))
		assert.True(t, os.IsNotExist(statErr))
	})

	t.Run("lenient logs the drift", func(t *testing.T) {
		target := t.TempDir()
		writeDriftedSnapshot(t, target)

		var logs bytes.Buffer
		cfg := testConfig(t,
			WithTarget(target),
			WithSnapshot(false),
			WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		)
		_, err := NewGenerator(cfg, shopGraph(t)).Generate(context.Background())
		require.NoError(t, err)
		assert.Contains(t, logs.String(), "field tag drift")
		assert.Contains(t, logs.String(), "schema generated")
	})
}

func TestGeneratorErrors(t *testing.T) {
	t.Run("missing target", func(t *testing.T) {
		_, err := NewGenerator(testConfig(t), shopGraph(t)).Generate(context.Background())
		assert.True(t, IsConfigError(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		target := filepath.Join(t.TempDir(), "out")
		cfg := testConfig(t, WithTarget(target))
		_, err := NewGenerator(cfg, shopGraph(t)).Generate(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NoDirExists(t, target)
	})
}

func TestWriterAllOrNothing(t *testing.T) {
	ok := func(content string) func() ([]byte, error) {
		return func() ([]byte, error) { return []byte(content), nil }
	}
	tests := []struct {
		name  string
		phase string
		bad   fileTask
	}{
		{
			name:  "unformattable source",
			phase: "format",
			bad:   fileTask{name: "shop_accessors.go", render: ok("package gen\n\nfunc {\n")},
		},
		{
			name:  "render failure",
			phase: "render",
			bad: fileTask{name: "shop.snapshot", render: func() ([]byte, error) {
				return nil, errors.New("snapshot exploded")
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := t.TempDir()
			w := newWriter(target, 2)
			err := w.writeAll(context.Background(), []fileTask{
				{name: "shop.proto", render: ok("syntax = \"proto3\";\n")},
				tt.bad,
			})
			require.Error(t, err)
			assert.True(t, IsGenerationError(err))
			assert.Contains(t, err.Error(), tt.phase)

			entries, err := os.ReadDir(target)
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Zero(t, w.metrics.FilesGenerated)
		})
	}

	t.Run("all written", func(t *testing.T) {
		target := t.TempDir()
		w := newWriter(target, 2)
		require.NoError(t, w.writeAll(context.Background(), []fileTask{
			{name: "shop.proto", render: ok("syntax = \"proto3\";\n")},
			{name: "shop_accessors.go", render: ok("package gen\n")},
		}))
		entries, err := os.ReadDir(target)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, 2, w.metrics.FilesGenerated)
	})
}
