package gen

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/buildgen/compiler/load"
)

// Generator renders builder files from a generation graph. Output files
// are independent, so they are rendered and written in parallel.
type Generator struct {
	graph   *Graph
	workers int
}

// NewGenerator creates a generator for the given graph.
func NewGenerator(g *Graph) *Generator {
	workers := runtime.GOMAXPROCS(0)
	if g != nil && g.Config != nil && g.Config.Workers > 0 {
		workers = g.Config.Workers
	}
	return &Generator{graph: g, workers: workers}
}

// WithWorkers overrides the number of parallel workers.
func (g *Generator) WithWorkers(n int) *Generator {
	if n > 0 {
		g.workers = n
	}
	return g
}

// Generate renders and writes one builder file per target type.
// A failing type halts the whole run; no partial file is left for it.
func (g *Generator) Generate(ctx context.Context) error {
	if g.graph == nil {
		return NewConfigError("Graph", nil, "no generation graph: call NewGraph first")
	}
	errg, ctx := errgroup.WithContext(ctx)
	errg.SetLimit(g.workers)
	for _, t := range g.graph.Nodes {
		t := t
		errg.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return g.generateType(t)
			}
		})
	}
	return errg.Wait()
}

// generateType renders one builder file and streams it to disk.
func (g *Generator) generateType(t *Type) error {
	f := builderFile(t)
	dir := t.Dir()
	if dir == "" {
		return NewGenerationError(t.Name, "", "schema carries no source directory and no target is configured", nil)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewGenerationError(t.Name, dir, "creating output directory", err)
	}
	path := filepath.Join(dir, t.FileName())
	out, err := os.Create(path)
	if err != nil {
		return NewGenerationError(t.Name, path, "creating output file", err)
	}
	defer out.Close()

	// Jennifer renders with tracked imports and gofmt layout.
	if err := f.Render(out); err != nil {
		return NewGenerationError(t.Name, path, "rendering builder", err)
	}
	return nil
}

// Generate is a convenience wrapping graph construction and generation
// for already-loaded schemas.
func Generate(cfg *Config, schemas ...*load.Schema) error {
	graph, err := NewGraph(cfg, schemas...)
	if err != nil {
		return err
	}
	return NewGenerator(graph).Generate(context.Background())
}
