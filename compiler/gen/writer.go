package gen

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"
)

// writer writes generated artifacts in parallel. Go sources are formatted
// with goimports before they are written.
type writer struct {
	outDir  string
	workers int
	metrics WriterMetrics
}

// WriterMetrics tracks generation output.
type WriterMetrics struct {
	FilesGenerated int
	TotalBytes     int64
}

// fileTask represents a single file generation task.
type fileTask struct {
	name   string // output file name (relative to outDir)
	render func() ([]byte, error)
}

func newWriter(outDir string, workers int) *writer {
	return &writer{outDir: outDir, workers: workers}
}

// writeAll renders and formats every task in parallel, then writes them.
// A render or format failure leaves the output directory untouched, and a
// write failure removes every file staged so far.
func (w *writer) writeAll(ctx context.Context, files []fileTask) error {
	outs := make([][]byte, len(files))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(w.workers)
	for i, f := range files {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := w.render(f)
			if err != nil {
				return err
			}
			outs[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.MkdirAll(w.outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	// Stage everything through temporary files so readers never see a
	// partial artifact set.
	tmps := make([]string, len(files))
	eg = new(errgroup.Group)
	eg.SetLimit(w.workers)
	for i, f := range files {
		eg.Go(func() error {
			tmps[i] = filepath.Join(w.outDir, f.name+".tmp")
			if err := os.WriteFile(tmps[i], outs[i], 0o644); err != nil {
				return NewGenerationError(PhaseWrite, f.name, "", err)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		removeAll(tmps)
		return err
	}
	for i, f := range files {
		if err := os.Rename(tmps[i], filepath.Join(w.outDir, f.name)); err != nil {
			removeAll(tmps[i:])
			return NewGenerationError(PhaseWrite, f.name, "", err)
		}
		w.metrics.FilesGenerated++
		w.metrics.TotalBytes += int64(len(outs[i]))
	}
	return nil
}

// render produces the bytes of f. Go sources go through goimports.
func (w *writer) render(f fileTask) ([]byte, error) {
	out, err := f.render()
	if err != nil {
		return nil, NewGenerationError(PhaseRender, f.name, "", err)
	}
	if strings.HasSuffix(f.name, ".go") {
		formatted, err := imports.Process(filepath.Join(w.outDir, f.name), out, nil)
		if err != nil {
			return nil, NewGenerationError(PhaseFormat, f.name, "", err)
		}
		out = formatted
	}
	return out, nil
}

func removeAll(paths []string) {
	for _, p := range paths {
		if p != "" {
			_ = os.Remove(p)
		}
	}
}

func renderJen(render func(*bytes.Buffer) error) func() ([]byte, error) {
	return func() ([]byte, error) {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
}
