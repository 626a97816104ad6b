package gaps

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"repolens/internal/model"
	"repolens/internal/scanner"
	"repolens/internal/slogutil"
)

// DefaultSmallFileThreshold is the non-blank line count below which a
// source file is reported as incomplete.
const DefaultSmallFileThreshold = 10

// maxLineLength skips very long lines, which are usually minified or encoded.
const maxLineLength = 1000

// Detector runs a pattern table over the source files of a snapshot.
type Detector struct {
	Patterns           []Pattern
	SmallFileThreshold int
	logger             *slog.Logger
}

// Options configures a Detector.
type Options struct {
	SmallFileThreshold int
	// ExtraPatterns are appended to the builtin table.
	ExtraPatterns []Pattern
	Logger        *slog.Logger
}

// NewDetector creates a detector with the builtin patterns.
func NewDetector(opts Options) *Detector {
	threshold := opts.SmallFileThreshold
	if threshold <= 0 {
		threshold = DefaultSmallFileThreshold
	}
	return &Detector{
		Patterns:           append(BuiltinPatterns(), opts.ExtraPatterns...),
		SmallFileThreshold: threshold,
		logger:             slogutil.OrDiscard(opts.Logger),
	}
}

// Detect tests every line of every source file against every pattern.
// Gaps are returned in snapshot order, then line order, then table order;
// a file's whole-file gap follows its line gaps. No deduplication happens.
func (d *Detector) Detect(ctx context.Context, snap *scanner.Snapshot) ([]Gap, error) {
	gaps := []Gap{}
	files := 0
	for _, f := range snap.Files {
		if !f.IsSource() {
			continue
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		files++
		gaps = append(gaps, d.scanFile(f)...)
	}

	d.logger.Debug("Gap scan complete", "files", files, "gaps", len(gaps))
	return gaps, nil
}

func (d *Detector) scanFile(f scanner.FileRecord) []Gap {
	var (
		out      []Gap
		nonBlank int
		isTest   = f.IsTest()
	)

	for i, line := range f.Lines() {
		if strings.TrimSpace(line) != "" {
			nonBlank++
		}
		if len(line) > maxLineLength {
			continue
		}
		for _, p := range d.Patterns {
			if p.SkipTests && isTest {
				continue
			}
			loc := p.Regex.FindStringSubmatchIndex(line)
			if loc == nil {
				continue
			}
			match := submatches(line, loc)
			out = append(out, Gap{
				Kind:        p.Kind,
				FilePath:    f.Path,
				Line:        i + 1,
				Column:      loc[0] + 1,
				Description: p.describe(match),
				Priority:    p.Priority,
				Rule:        p.Name,
				Context:     excerpt(line),
			})
		}
	}

	if nonBlank > 0 && nonBlank < d.SmallFileThreshold && !exemptFromSizeCheck(f) {
		out = append(out, Gap{
			Kind:        KindIncomplete,
			FilePath:    f.Path,
			Description: fmt.Sprintf("Only %d non-blank lines", nonBlank),
			Priority:    model.PriorityMedium,
			Rule:        "small_file",
		})
	}
	return out
}

func submatches(line string, loc []int) []string {
	out := make([]string, len(loc)/2)
	for i := range out {
		if loc[2*i] >= 0 {
			out[i] = line[loc[2*i]:loc[2*i+1]]
		}
	}
	return out
}

func excerpt(line string) string {
	line = strings.TrimSpace(line)
	if len(line) <= 120 {
		return line
	}
	cut := 120
	for cut > 0 && !utf8.RuneStart(line[cut]) {
		cut--
	}
	return line[:cut] + "..."
}

// entryStems are index, entry and barrel files that are legitimately short.
var entryStems = map[string]bool{
	"index": true, "main": true, "mod": true, "lib": true, "__init__": true,
	"__main__": true, "setup": true, "conftest": true, "manage": true,
	"wsgi": true, "asgi": true, "app": true, "server": true,
	"types": true, "constants": true, "env": true,
}

// exemptFromSizeCheck covers entry files, tests, declaration files and tool
// configuration.
func exemptFromSizeCheck(f scanner.FileRecord) bool {
	base := strings.ToLower(path.Base(f.Path))
	if strings.HasSuffix(base, ".d.ts") || f.Extension == ".pyi" || f.Extension == ".h" || f.Extension == ".hpp" {
		return true
	}
	if f.IsTest() || f.IsConfig() {
		return true
	}
	stem := strings.TrimSuffix(base, path.Ext(base))
	return entryStems[stem]
}
