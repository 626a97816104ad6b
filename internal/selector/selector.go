// Package selector picks the repository files most relevant to a free-text
// request and packs them into a token budget.
package selector

import (
	"context"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"repolens/internal/compression"
	"repolens/internal/config"
	"repolens/internal/graph"
	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

// Candidate is one scored file.
type Candidate struct {
	Path      string         `json:"path"`
	Content   string         `json:"content"`
	Type      FileType       `json:"type"`
	Score     int            `json:"score"`
	Tokens    int            `json:"tokens"`
	Truncated bool           `json:"truncated,omitempty"`
	Related   bool           `json:"related,omitempty"`
	Signals   map[string]int `json:"signals,omitempty"`
}

// Selection is the outcome of one Select call.
type Selection struct {
	Intent      Intent                      `json:"intent"`
	Candidates  []Candidate                 `json:"candidates"`
	ContextText string                      `json:"contextText"`
	TotalTokens int                         `json:"totalTokens"`
	Truncation  *compression.TruncationInfo `json:"truncation,omitempty"`
}

// Paths returns the selected paths in order.
func (s *Selection) Paths() []string {
	out := make([]string, len(s.Candidates))
	for i, c := range s.Candidates {
		out[i] = c.Path
	}
	return out
}

// GraphProvider supplies the dependency graph of a snapshot.
// *graph.Cache implements it.
type GraphProvider interface {
	GetOrBuild(ctx context.Context, snap *scanner.Snapshot, opts graph.Options) (*graph.Graph, error)
}

// Options configures Select. Zero budget fields fall back to defaults.
type Options struct {
	MaxTokens      int
	MaxFiles       int
	ExpansionDepth int
	IncludeRelated bool

	// Now is the reference instant for recency. Zero means the newest
	// modification time in the snapshot.
	Now time.Time

	// Graphs supplies the dependency graph for IncludeRelated. Nil builds
	// one per call.
	Graphs       GraphProvider
	GraphOptions graph.Options

	Workers int
	Logger  *slog.Logger
}

// OptionsFromConfig maps the context section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config, repoRoot string, logger *slog.Logger) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		MaxTokens:      cfg.Context.MaxTokens,
		MaxFiles:       cfg.Context.MaxFiles,
		ExpansionDepth: cfg.Context.ExpansionDepth,
		IncludeRelated: cfg.Context.IncludeRelated,
		GraphOptions:   graph.OptionsFromConfig(cfg, repoRoot, logger),
		Workers:        cfg.Scan.Workers,
		Logger:         logger,
	}
}

// Select scores every text file of snap against intent and returns the
// best ones within budget, highest score first. Ties keep snapshot order.
// Unless the snapshot holds no text at all, at least one file is returned;
// when the top file alone exceeds MaxTokens it is cut to fit. A file that
// does not fit the remaining token budget is skipped rather than ending the
// pass, so a smaller lower-ranked file may still be accepted after it.
func Select(ctx context.Context, snap *scanner.Snapshot, intent Intent, opts Options) (*Selection, error) {
	logger := slogutil.OrDiscard(opts.Logger)
	budget := compression.DefaultBudget().Merge(&compression.ContextBudget{
		MaxTokens:      opts.MaxTokens,
		MaxFiles:       opts.MaxFiles,
		ExpansionDepth: opts.ExpansionDepth,
	})

	now := opts.Now
	if now.IsZero() {
		now = snap.Newest()
	}

	scored, eligible, err := scoreAll(ctx, snap, intent, now, opts.Workers)
	if err != nil {
		return nil, err
	}

	pool := make([]Candidate, 0, len(scored))
	for i, c := range scored {
		if eligible[i] {
			pool = append(pool, c)
		}
	}
	if len(pool) == 0 {
		pool = append(pool, scored...)
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Score > pool[j].Score })

	sel := &Selection{Intent: intent, Candidates: []Candidate{}}
	reason := compression.TruncNone
	contentCut := false
	for i, c := range pool {
		if len(sel.Candidates) >= budget.MaxFiles {
			if reason == compression.TruncNone {
				reason = compression.TruncMaxFiles
			}
			break
		}
		switch {
		case sel.TotalTokens+c.Tokens <= budget.MaxTokens:
		case i == 0:
			c.Content, c.Truncated = compression.TruncateToTokens(c.Content, budget.MaxTokens)
			c.Tokens = compression.EstimateTokens(c.Content)
			contentCut = true
			reason = compression.TruncFileContent
		default:
			if reason == compression.TruncNone {
				reason = compression.TruncMaxTokens
			}
			continue
		}
		sel.Candidates = append(sel.Candidates, c)
		sel.TotalTokens += c.Tokens
	}

	if opts.IncludeRelated && len(sel.Candidates) > 0 && budget.ExpansionDepth > 0 {
		if err := addRelated(ctx, snap, sel, scored, budget, opts); err != nil {
			return nil, err
		}
	}

	sel.Truncation = compression.NewTruncationInfo(reason, len(pool), len(sel.Candidates))
	sel.Truncation.ContentTruncated = contentCut
	sel.ContextText = assemble(sel.Candidates)

	logger.Debug("Context selected",
		"action", intent.Action.String(),
		"eligible", len(pool),
		"selected", len(sel.Candidates),
		"tokens", sel.TotalTokens,
	)
	return sel, nil
}

// scoreAll scores text files in parallel; results keep snapshot order.
func scoreAll(ctx context.Context, snap *scanner.Snapshot, intent Intent, now time.Time, workers int) ([]Candidate, []bool, error) {
	var files []scanner.FileRecord
	for _, f := range snap.Files {
		if !f.Binary && f.Content != "" {
			files = append(files, f)
		}
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scored := make([]Candidate, len(files))
	eligible := make([]bool, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i], eligible[i] = score(f, intent, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return scored, eligible, nil
}

// addRelated appends files reachable from the top selection that still fit.
func addRelated(ctx context.Context, snap *scanner.Snapshot, sel *Selection, scored []Candidate, budget *compression.ContextBudget, opts Options) error {
	var (
		g   *graph.Graph
		err error
	)
	if opts.Graphs != nil {
		g, err = opts.Graphs.GetOrBuild(ctx, snap, opts.GraphOptions)
	} else {
		g, err = graph.Build(ctx, snap, opts.GraphOptions)
	}
	if err != nil {
		return err
	}

	byPath := make(map[string]Candidate, len(scored))
	for _, c := range scored {
		byPath[c.Path] = c
	}
	taken := make(map[string]bool, len(sel.Candidates))
	for _, c := range sel.Candidates {
		taken[c.Path] = true
	}

	for _, p := range g.Expand(sel.Candidates[0].Path, budget.ExpansionDepth) {
		if len(sel.Candidates) >= budget.MaxFiles {
			break
		}
		c, ok := byPath[p]
		if !ok || taken[p] || sel.TotalTokens+c.Tokens > budget.MaxTokens {
			continue
		}
		c.Related = true
		taken[p] = true
		sel.Candidates = append(sel.Candidates, c)
		sel.TotalTokens += c.Tokens
	}
	return nil
}

func assemble(cands []Candidate) string {
	var b strings.Builder
	for i, c := range cands {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("// File: ")
		b.WriteString(c.Path)
		b.WriteString("\n")
		b.WriteString(c.Content)
		if !strings.HasSuffix(c.Content, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
