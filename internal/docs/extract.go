package docs

import (
	"context"
	"log/slog"
	"strings"

	rerrors "repolens/internal/errors"
	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

// Options tunes extraction.
type Options struct {
	Logger *slog.Logger
}

// Extract scans every document of snap. Malformed input never fails the
// extraction; unparseable data blocks are recorded as ParseFailures.
func Extract(ctx context.Context, snap *scanner.Snapshot, opts Options) (*Requirements, error) {
	logger := slogutil.OrDiscard(opts.Logger)
	req := &Requirements{
		Documents: []Document{},
		Features:  []Feature{},
	}

	var pooled []Feature
	for _, f := range snap.Documents() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		md := scanMarkdown(f.Content)
		doc := Document{Path: f.Path, Title: md.title, Categories: Categorize(f.Path)}
		req.Documents = append(req.Documents, doc)

		if doc.Has(CategoryPRD) {
			pooled = append(pooled, extractPRDFeatures(f.Path, md)...)
		}
		if doc.Has(CategoryUserStories) {
			stories, features := extractStories(f.Path, md)
			req.UserStories = append(req.UserStories, stories...)
			pooled = append(pooled, features...)
		}
		if doc.Has(CategoryDataModel) || doc.Has(CategoryTechnicalSpec) {
			me := &modelExtractor{ctx: ctx, source: f.Path}
			for _, fc := range md.fences {
				me.fence(fc)
			}
			req.DataModels = append(req.DataModels, me.models...)
			req.DataModels = append(req.DataModels, extractTables(f.Path, md)...)
			req.ParseFailures = append(req.ParseFailures, me.failures...)
		}
		req.Flows = append(req.Flows, extractFlows(f.Path, md)...)
	}

	req.Features = append(req.Features, DedupeFeatures(pooled)...)
	req.Mockups = findMockups(snap)
	req.HasMockups = len(req.Mockups) > 0

	for _, pf := range req.ParseFailures {
		logger.Debug("Data block not parsed",
			"code", string(rerrors.ParseFailure),
			"path", pf.Source,
			"line", pf.Line,
			"format", string(pf.Format),
		)
	}
	logger.Debug("Requirements extracted",
		"documents", len(req.Documents),
		"features", len(req.Features),
		"dataModels", len(req.DataModels),
		"flows", len(req.Flows),
	)
	return req, nil
}

// DedupeFeatures drops features whose name equals an earlier one, ignoring
// case and surrounding space. The first occurrence wins.
func DedupeFeatures(features []Feature) []Feature {
	seen := make(map[string]bool, len(features))
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		key := strings.ToLower(strings.TrimSpace(f.Name))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, f)
	}
	return out
}
