// Package scanner walks a repository into an immutable, ordered snapshot of
// text files. It never follows symlinks and never executes anything it reads.
package scanner

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"
	"golang.org/x/sync/errgroup"

	"repolens/internal/config"
	rerrors "repolens/internal/errors"
	"repolens/internal/paths"
	"repolens/internal/slogutil"
)

const (
	defaultMaxFileSize = 1 << 20
	defaultMaxDepth    = 32
)

// excludedDirs are build artifacts and dependency caches. They are skipped
// regardless of include patterns.
var excludedDirs = map[string]struct{}{
	"node_modules":     {},
	"bower_components": {},
	".git":             {},
	".hg":              {},
	".svn":             {},
	".repolens":        {},
	"dist":             {},
	"build":            {},
	"out":              {},
	".next":            {},
	".nuxt":            {},
	".svelte-kit":      {},
	".turbo":           {},
	".cache":           {},
	".parcel-cache":    {},
	"coverage":         {},
	"vendor":           {},
	"target":           {},
	"__pycache__":      {},
	".venv":            {},
	"venv":             {},
	".tox":             {},
	".mypy_cache":      {},
	".pytest_cache":    {},
	"Pods":             {},
	".gradle":          {},
}

// IsExcludedDir reports whether a directory with this base name is always
// left out of snapshots.
func IsExcludedDir(name string) bool {
	_, ok := excludedDirs[name]
	return ok
}

// Skip reasons recorded on SkippedFile.
const (
	ReasonTooLarge       = "exceeds max file size"
	ReasonUnreadable     = "unreadable"
	ReasonNotText        = "not valid UTF-8 text"
	ReasonMaxFiles       = "max files reached"
	ReasonUnreadableDir  = "unreadable directory"
	ReasonDepthExhausted = "max depth reached"
)

// Options controls a scan. Zero values select defaults.
type Options struct {
	Include          []string
	Exclude          []string
	RespectGitignore bool
	MaxFileSize      int64
	MaxFiles         int
	MaxDepth         int
	Workers          int
	Logger           *slog.Logger
}

// OptionsFromConfig maps the scan section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return Options{
		Include:          cfg.Scan.Include,
		Exclude:          cfg.Scan.Exclude,
		RespectGitignore: cfg.Scan.RespectGitignore,
		MaxFileSize:      cfg.Scan.MaxFileSizeBytes,
		MaxFiles:         cfg.Scan.MaxFiles,
		MaxDepth:         cfg.Scan.MaxDepth,
		Workers:          cfg.Scan.Workers,
		Logger:           logger,
	}
}

func (o *Options) applyDefaults() {
	if o.MaxFileSize <= 0 {
		o.MaxFileSize = defaultMaxFileSize
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = defaultMaxDepth
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	o.Logger = slogutil.OrDiscard(o.Logger)
}

// candidate is a file accepted by traversal, before its content is loaded.
type candidate struct {
	rel     string
	abs     string
	size    int64
	modTime time.Time
}

// Scan walks root and returns its snapshot. Only an unreadable root is fatal;
// individual files that cannot be loaded are recorded in Snapshot.Skipped.
func Scan(ctx context.Context, root string, opts Options) (*Snapshot, error) {
	opts.applyDefaults()
	logger := opts.Logger

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, rerrors.New(rerrors.ScanIOError, "cannot resolve repository root", err).WithPath(root)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, rerrors.New(rerrors.ScanIOError, "cannot read repository root", err).WithPath(absRoot)
	}
	if !info.IsDir() {
		return nil, rerrors.New(rerrors.ScanIOError, "repository root is not a directory", nil).WithPath(absRoot)
	}

	m := newMatcher(absRoot, opts)
	cands, skipped, err := walk(ctx, absRoot, m, opts.MaxDepth)
	if err != nil {
		return nil, err
	}

	if opts.MaxFiles > 0 && len(cands) > opts.MaxFiles {
		for _, c := range cands[opts.MaxFiles:] {
			skipped = append(skipped, SkippedFile{Path: c.rel, Reason: ReasonMaxFiles})
		}
		cands = cands[:opts.MaxFiles]
	}

	files, loadSkipped, err := load(ctx, cands, opts)
	if err != nil {
		return nil, err
	}
	skipped = append(skipped, loadSkipped...)
	sort.SliceStable(skipped, func(i, j int) bool { return skipped[i].Path < skipped[j].Path })

	snap := NewSnapshot(absRoot, files)
	snap.Skipped = skipped

	logger.Debug("Scan complete",
		"root", absRoot,
		"files", len(snap.Files),
		"skipped", len(snap.Skipped),
		"fingerprint", snap.Fingerprint,
	)
	if len(snap.Files) == 0 {
		logger.Warn("Repository snapshot is empty",
			"code", string(rerrors.EmptyCorpus),
			"root", absRoot,
		)
	}
	return snap, nil
}

// frame is one pending directory on the traversal stack.
type frame struct {
	rel   string
	depth int
}

// walk traverses the tree iteratively. Candidates come back sorted by path.
func walk(ctx context.Context, absRoot string, m *matcher, maxDepth int) ([]candidate, []SkippedFile, error) {
	var (
		cands   []candidate
		skipped []SkippedFile
		stack   = []frame{{rel: "", depth: 0}}
	)

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		dirAbs := paths.JoinRepoPath(absRoot, top.rel)
		entries, err := os.ReadDir(dirAbs)
		if err != nil {
			if top.rel == "" {
				return nil, nil, rerrors.New(rerrors.ScanIOError, "cannot list repository root", err).WithPath(absRoot)
			}
			skipped = append(skipped, SkippedFile{Path: top.rel, Reason: ReasonUnreadableDir})
			continue
		}

		// Push subdirectories in reverse so they pop in lexical order.
		var subdirs []frame
		for _, e := range entries {
			name := e.Name()
			rel := name
			if top.rel != "" {
				rel = top.rel + "/" + name
			}

			if e.Type()&os.ModeSymlink != 0 {
				continue
			}
			if e.IsDir() {
				if _, skip := excludedDirs[name]; skip {
					continue
				}
				if m.excludedDir(rel) {
					continue
				}
				if top.depth+1 >= maxDepth {
					skipped = append(skipped, SkippedFile{Path: rel, Reason: ReasonDepthExhausted})
					continue
				}
				subdirs = append(subdirs, frame{rel: rel, depth: top.depth + 1})
				continue
			}
			if !e.Type().IsRegular() {
				continue
			}
			if !m.accepts(rel) {
				continue
			}
			fi, err := e.Info()
			if err != nil {
				skipped = append(skipped, SkippedFile{Path: rel, Reason: ReasonUnreadable})
				continue
			}
			cands = append(cands, candidate{
				rel:     rel,
				abs:     filepath.Join(dirAbs, name),
				size:    fi.Size(),
				modTime: fi.ModTime().UTC(),
			})
		}
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, subdirs[i])
		}
	}

	sort.Slice(cands, func(i, j int) bool { return cands[i].rel < cands[j].rel })
	return cands, skipped, nil
}

// loadResult is either a record or a skip, never both.
type loadResult struct {
	rec  *FileRecord
	skip *SkippedFile
}

// load reads candidate contents on a bounded pool. Results are reassembled by
// index so the output order matches the candidate order.
func load(ctx context.Context, cands []candidate, opts Options) ([]FileRecord, []SkippedFile, error) {
	results := make([]loadResult, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i := range cands {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = loadOne(cands[i], opts.MaxFileSize)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	files := make([]FileRecord, 0, len(cands))
	var skipped []SkippedFile
	for _, r := range results {
		switch {
		case r.rec != nil:
			files = append(files, *r.rec)
		case r.skip != nil:
			skipped = append(skipped, *r.skip)
		}
	}
	return files, skipped, nil
}

func loadOne(c candidate, maxSize int64) loadResult {
	ext := strings.ToLower(path.Ext(c.rel))
	rec := FileRecord{
		Path:       c.rel,
		SizeBytes:  c.size,
		ModifiedAt: c.modTime,
		Extension:  ext,
	}

	if assetExtensions[ext] {
		rec.Binary = true
		return loadResult{rec: &rec}
	}
	if c.size > maxSize {
		return loadResult{skip: &SkippedFile{Path: c.rel, Reason: ReasonTooLarge}}
	}

	data, err := os.ReadFile(c.abs)
	if err != nil {
		return loadResult{skip: &SkippedFile{Path: c.rel, Reason: ReasonUnreadable}}
	}
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return loadResult{skip: &SkippedFile{Path: c.rel, Reason: ReasonNotText}}
	}
	rec.Content = string(data)
	rec.SizeBytes = int64(len(data))
	return loadResult{rec: &rec}
}

// matcher combines include, exclude and .gitignore patterns.
type matcher struct {
	include   *ignore.GitIgnore
	exclude   *ignore.GitIgnore
	gitignore *ignore.GitIgnore
}

func newMatcher(absRoot string, opts Options) *matcher {
	m := &matcher{}
	if len(opts.Include) > 0 {
		m.include = ignore.CompileIgnoreLines(opts.Include...)
	}
	if len(opts.Exclude) > 0 {
		m.exclude = ignore.CompileIgnoreLines(opts.Exclude...)
	}
	if opts.RespectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(absRoot, ".gitignore")); err == nil {
			m.gitignore = gi
		}
	}
	return m
}

func (m *matcher) excludedDir(rel string) bool {
	for _, gi := range []*ignore.GitIgnore{m.exclude, m.gitignore} {
		if gi != nil && (gi.MatchesPath(rel) || gi.MatchesPath(rel+"/")) {
			return true
		}
	}
	return false
}

func (m *matcher) accepts(rel string) bool {
	if m.exclude != nil && m.exclude.MatchesPath(rel) {
		return false
	}
	if m.gitignore != nil && m.gitignore.MatchesPath(rel) {
		return false
	}
	if m.include != nil && !m.include.MatchesPath(rel) {
		return false
	}
	return true
}
