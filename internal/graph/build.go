package graph

import (
	"context"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"repolens/internal/config"
	"repolens/internal/paths"
	"repolens/internal/project"
	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

const (
	importWeight    = 1.0
	referenceWeight = 0.8
)

// Options configures Build.
type Options struct {
	// SCIPIndexPath is an optional SCIP index whose cross-file references
	// become reference edges. Empty disables it.
	SCIPIndexPath string
	// UseTreeSitter parses imports with tree-sitter when the binary has cgo.
	UseTreeSitter bool
	// Workers bounds concurrent extraction; 0 means GOMAXPROCS.
	Workers int
	Logger  *slog.Logger
}

// OptionsFromConfig maps the graph section of cfg onto Options. The SCIP
// index is only used when it exists under repoRoot.
func OptionsFromConfig(cfg *config.Config, repoRoot string, logger *slog.Logger) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		SCIPIndexPath: paths.SCIPIndexPath(repoRoot, cfg),
		UseTreeSitter: cfg.Graph.UseTreeSitter,
		Workers:       cfg.Scan.Workers,
		Logger:        logger,
	}
}

// Build derives the import graph of snap. Every source file becomes a node;
// edges point from importer to imported file. A missing or unreadable SCIP
// index is logged and skipped.
func Build(ctx context.Context, snap *scanner.Snapshot, opts Options) (*Graph, error) {
	logger := slogutil.OrDiscard(opts.Logger)
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	sources := snap.Sources()
	res := newResolver(snap, project.ReadManifest(snap).GoModulePath)

	targets := make([][]string, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			var out []string
			for _, spec := range extractImports(gctx, f, opts.UseTreeSitter) {
				out = append(out, res.resolve(f, spec)...)
			}
			targets[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := New()
	for _, f := range sources {
		graph.AddNode(f.Path)
	}
	for i, f := range sources {
		for _, to := range targets[i] {
			graph.AddEdge(f.Path, to, importWeight, KindImport)
		}
	}

	if opts.SCIPIndexPath != "" {
		refs, err := LoadReferences(opts.SCIPIndexPath, snap)
		if err != nil {
			logger.Warn("Skipping SCIP references", "path", opts.SCIPIndexPath, "error", err.Error())
		} else {
			graph.AddEdges(refs)
		}
	}

	st := graph.Stats()
	logger.Debug("Dependency graph built",
		"nodes", st.TotalNodes,
		"importEdges", st.ImportEdges,
		"referenceEdges", st.ReferenceEdges,
	)
	return graph, nil
}
