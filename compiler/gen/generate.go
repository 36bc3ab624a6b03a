package gen

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/syssam/protobridge/compiler/load"
)

// Generator emits the schema of a type graph and writes its artifacts:
// the proto text, the accessor tables and the tag snapshot.
//
// Example:
//
//	cfg, _ := gen.NewConfig(gen.WithPackage("shop.v1"), gen.WithTarget("./gen"))
//	graph, _ := load.Walk(load.Service[ShopService]()...)
//	schema, err := gen.NewGenerator(cfg, graph).Generate(ctx)
type Generator struct {
	cfg     *Config
	graph   *load.Graph
	workers int
	logger  *slog.Logger
	metrics WriterMetrics
}

// NewGenerator creates a generator writing into cfg.Target.
func NewGenerator(cfg *Config, g *load.Graph) *Generator {
	gr := &Generator{cfg: cfg, graph: g, logger: slog.Default()}
	if cfg != nil {
		gr.workers = cfg.Workers
		if cfg.Logger != nil {
			gr.logger = cfg.Logger
		}
	}
	if gr.workers <= 0 {
		gr.workers = 1
	}
	return gr
}

// WithWorkers sets the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Metrics returns the output metrics of the last run.
func (g *Generator) Metrics() WriterMetrics {
	return g.metrics
}

// File names of the artifacts.
func (g *Generator) protoFile() string    { return g.cfg.Name + ".proto" }
func (g *Generator) accessorFile() string { return g.cfg.Name + "_accessors.go" }
func (g *Generator) snapshotFile() string { return g.cfg.Name + ".snapshot" }

// Generate emits and compiles the schema, checks tag stability and writes
// all artifacts. Nothing is written unless the schema compiles and, with
// strict stability, no tag drifted.
func (g *Generator) Generate(ctx context.Context) (*Schema, error) {
	if g.cfg == nil {
		return nil, NewConfigError("", nil, "config cannot be nil")
	}
	if g.cfg.Target == "" {
		return nil, NewConfigError("target", nil, "no target directory: use WithTarget")
	}
	schema, err := Emit(g.cfg, g.graph)
	if err != nil {
		return nil, err
	}
	if _, err := schema.Compile(); err != nil {
		return nil, err
	}
	snap := schema.Snapshot()
	if g.cfg.Snapshot {
		if err := g.checkStability(snap); err != nil {
			return nil, err
		}
	}

	files := []fileTask{{
		name:   g.protoFile(),
		render: func() ([]byte, error) { return schema.Proto(), nil },
	}}
	if g.cfg.Accessors.Enabled {
		files = append(files, fileTask{
			name: g.accessorFile(),
			render: renderJen(func(buf *bytes.Buffer) error {
				return schema.GenAccessors(g.cfg.Accessors.Path, g.cfg.Accessors.Package).Render(buf)
			}),
		})
	}
	if g.cfg.Snapshot {
		files = append(files, fileTask{name: g.snapshotFile(), render: snap.Marshal})
	}

	w := newWriter(g.cfg.Target, g.workers)
	if err := w.writeAll(ctx, files); err != nil {
		return nil, err
	}
	g.metrics = w.metrics
	g.logger.Info("schema generated",
		"package", schema.Package,
		"messages", len(schema.Messages),
		"closure", len(g.graph.Nodes),
		"files", g.metrics.FilesGenerated,
		"bytes", g.metrics.TotalBytes,
	)
	return schema, nil
}

// checkStability compares the snapshot of the previous run, if any, with
// the current one.
func (g *Generator) checkStability(next *Snapshot) error {
	path := filepath.Join(g.cfg.Target, g.snapshotFile())
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return NewGenerationError(PhaseStability, g.snapshotFile(), "read previous snapshot", err)
	}
	prev, err := UnmarshalSnapshot(data)
	if err != nil {
		return NewGenerationError(PhaseStability, g.snapshotFile(), "", err)
	}
	drift := CheckStability(prev, next)
	if len(drift) == 0 {
		return nil
	}
	if g.cfg.StrictStability {
		return &StabilityError{Snapshot: path, Drift: drift}
	}
	for _, d := range drift {
		g.logger.Warn("field tag drift", "message", d.Message, "field", d.Field, "reason", d.Reason)
	}
	return nil
}
