package analysis

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/sync/errgroup"

	"repolens/internal/classify"
	"repolens/internal/config"
	"repolens/internal/docs"
	rerrors "repolens/internal/errors"
	"repolens/internal/gaps"
	"repolens/internal/graph"
	"repolens/internal/project"
	"repolens/internal/recommend"
	"repolens/internal/scanner"
	"repolens/internal/selector"
	"repolens/internal/slogutil"
	"repolens/internal/storage"
	"repolens/internal/version"
)

// keyFileCount bounds Stats.KeyFiles.
const keyFileCount = 10

// Engine owns the per-process state shared across analyses: the graph
// cache and the optional persistent analysis store.
type Engine struct {
	cfg      *config.Config
	logger   *slog.Logger
	graphs   *graph.Cache
	store    *storage.AnalysisStore
	cacheKey string
}

// NewEngine creates an engine. store may be nil to disable persistence.
func NewEngine(cfg *config.Config, logger *slog.Logger, store *storage.AnalysisStore) *Engine {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Engine{
		cfg:      cfg,
		logger:   slogutil.OrDiscard(logger),
		graphs:   graph.NewCache(),
		store:    store,
		cacheKey: cacheVersion(cfg),
	}
}

// cacheVersion is the engine version plus a digest of the settings that
// change analysis output, so stored results never outlive a config change.
func cacheVersion(cfg *config.Config) string {
	settings, _ := json.Marshal(struct {
		Scan       config.ScanConfig
		Gaps       config.GapsConfig
		Classifier config.ClassifierConfig
		Quality    config.QualityConfig
		Graph      config.GraphConfig
	}{cfg.Scan, cfg.Gaps, cfg.Classifier, cfg.Quality, cfg.Graph})
	sum := blake2b.Sum256(settings)
	return version.Version + "+" + hex.EncodeToString(sum[:6])
}

// Graphs returns the engine's graph cache.
func (e *Engine) Graphs() *graph.Cache {
	return e.graphs
}

// Scan snapshots root with the engine's scan settings.
func (e *Engine) Scan(ctx context.Context, root string) (*scanner.Snapshot, error) {
	return scanner.Scan(ctx, root, scanner.OptionsFromConfig(e.cfg, e.logger))
}

// Analyze runs every analysis pipeline over snap. Pipelines run
// concurrently; the result depends only on snap and the configuration.
func (e *Engine) Analyze(ctx context.Context, snap *scanner.Snapshot) (*RepoAnalysis, error) {
	if cached, ok := e.lookup(snap); ok {
		return cached, nil
	}
	if snap.IsEmpty() {
		e.logger.Warn("Snapshot holds no files", "code", string(rerrors.EmptyCorpus), "root", snap.Root)
	}

	hasCode, hasDocs := snap.HasCode(), snap.HasDocs()

	var (
		profile  *project.QualityProfile
		reqs     *docs.Requirements
		found    []gaps.Gap
		depGraph *graph.Graph
	)
	g, gctx := errgroup.WithContext(ctx)
	if hasCode {
		g.Go(func() error {
			var err error
			profile, err = project.Analyze(gctx, snap, project.Options{
				HousePackages: e.cfg.Quality.HousePackages,
				Logger:        e.logger,
			})
			return err
		})
	}
	g.Go(func() error {
		var err error
		reqs, err = docs.Extract(gctx, snap, docs.Options{Logger: e.logger})
		return err
	})
	g.Go(func() error {
		var err error
		detector := gaps.NewDetector(gaps.Options{
			SmallFileThreshold: e.cfg.Gaps.SmallFileThreshold,
			Logger:             e.logger,
		})
		found, err = detector.Detect(gctx, snap)
		return err
	})
	g.Go(func() error {
		var err error
		depGraph, err = e.graphs.GetOrBuild(gctx, snap, graph.OptionsFromConfig(e.cfg, snap.Root, e.logger))
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if found == nil {
		found = []gaps.Gap{}
	}

	archetype, reason := classify.Explain(
		classify.Input{HasCode: hasCode, HasDocs: hasDocs, Profile: profile},
		classify.Thresholds{ExistingAppComponents: e.cfg.Classifier.ExistingAppComponentThreshold},
	)
	recs := recommend.Recommend(recommend.Facts{
		Profile:        profile,
		Gaps:           found,
		CoverageTarget: e.cfg.Quality.CoverageTarget,
	})

	keyFiles, err := depGraph.Rank(ctx, nil, graph.RankOptions{TopK: keyFileCount})
	if err != nil {
		return nil, err
	}

	result := &RepoAnalysis{
		SnapshotID:  snap.ID,
		Fingerprint: snap.Fingerprint,
		Classification: Classification{
			Archetype:   archetype,
			Description: archetype.Description(),
			Reason:      reason,
		},
		Quality:         profile,
		Requirements:    reqs,
		Gaps:            found,
		Recommendations: recs,
		FileTree:        BuildTree(snap),
		Stats: Stats{
			Files:         len(snap.Files),
			SourceFiles:   len(snap.Sources()),
			DocumentFiles: len(snap.Documents()),
			SkippedFiles:  len(snap.Skipped),
			Features:      len(reqs.Features),
			UserStories:   len(reqs.UserStories),
			DataModels:    len(reqs.DataModels),
			Gaps:          gaps.Summarize(found),
			Graph:         depGraph.Stats(),
			KeyFiles:      keyFiles,
		},
	}

	e.logger.Info("Repository analyzed",
		"archetype", archetype.String(),
		"files", result.Stats.Files,
		"features", result.Stats.Features,
		"gaps", len(found),
		"recommendations", len(recs),
	)
	e.save(snap, result)
	return result, nil
}

// SelectContext parses request and selects context files from snap using
// the engine's budgets and graph cache.
func (e *Engine) SelectContext(ctx context.Context, snap *scanner.Snapshot, request string, opts selector.Options) (*selector.Selection, error) {
	base := selector.OptionsFromConfig(e.cfg, snap.Root, e.logger)
	if opts.MaxTokens > 0 {
		base.MaxTokens = opts.MaxTokens
	}
	if opts.MaxFiles > 0 {
		base.MaxFiles = opts.MaxFiles
	}
	if opts.ExpansionDepth > 0 {
		base.ExpansionDepth = opts.ExpansionDepth
	}
	base.IncludeRelated = base.IncludeRelated || opts.IncludeRelated
	base.Now = opts.Now
	base.Graphs = e.graphs
	return selector.Select(ctx, snap, selector.ParseIntent(request), base)
}

// lookup returns a stored analysis for snap. Cache failures are logged and
// treated as misses.
func (e *Engine) lookup(snap *scanner.Snapshot) (*RepoAnalysis, bool) {
	if e.store == nil {
		return nil, false
	}
	payload, ok, err := e.store.Get(snap.Fingerprint, e.cacheKey)
	if err != nil {
		e.logger.Warn("Analysis cache read failed", "code", string(rerrors.CodeOf(err)), "error", err.Error())
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var cached RepoAnalysis
	if err := json.Unmarshal(payload, &cached); err != nil {
		e.logger.Warn("Discarding unreadable cache entry", "fingerprint", snap.Fingerprint, "error", err.Error())
		return nil, false
	}
	e.logger.Debug("Analysis cache hit", "fingerprint", snap.Fingerprint)
	return &cached, true
}

func (e *Engine) save(snap *scanner.Snapshot, result *RepoAnalysis) {
	if e.store == nil {
		return
	}
	payload, err := json.Marshal(result)
	if err != nil {
		e.logger.Warn("Failed to encode analysis for cache", "error", err.Error())
		return
	}
	if err := e.store.Put(snap.Fingerprint, e.cacheKey, snap.ID, payload); err != nil {
		e.logger.Warn("Analysis cache write failed", "code", string(rerrors.CodeOf(err)), "error", err.Error())
	}
}
