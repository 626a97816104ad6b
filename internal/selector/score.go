package selector

import (
	"path"
	"regexp"
	"strings"
	"time"

	"repolens/internal/compression"
	"repolens/internal/scanner"
)

// Signal weights.
const (
	weightPath      = 30
	weightKeyword   = 5
	maxKeywordHits  = 5
	weightFileType  = 20
	weightImport    = 15
	maxRecencyBonus = 10
)

// Signal names used in Candidate.Signals.
const (
	SignalPath     = "path"
	SignalKeywords = "keywords"
	SignalType     = "type"
	SignalImport   = "import"
	SignalRecency  = "recency"
)

var importLinePattern = regexp.MustCompile(`^\s*(import|export|from|require|use|using|include|#include|mod)\b|\brequire\(`)

// fileType assigns the coarse role of a file from its path.
func fileType(f scanner.FileRecord) FileType {
	lower := strings.ToLower(f.Path)
	base := path.Base(f.Path)
	segs := strings.Split(path.Dir(lower), "/")
	has := func(names ...string) bool {
		for _, s := range segs {
			for _, n := range names {
				if s == n {
					return true
				}
			}
		}
		return false
	}

	switch {
	case f.IsTest():
		return TypeTest
	case f.IsStyle() || strings.Contains(lower, ".module.css"):
		return TypeStyle
	case f.IsDocument():
		return TypeDocument
	case f.IsConfig():
		return TypeConfig
	case isHookName(base) || has("hooks"):
		return TypeHook
	case has("api", "routes", "controllers", "handlers", "server", "endpoints"):
		return TypeAPI
	case has("pages", "views", "screens") || isAppPage(segs, base):
		return TypePage
	case has("components", "ui", "widgets") || componentExt[f.Extension]:
		return TypeComponent
	case has("models", "types", "schema", "schemas", "entities") || strings.HasSuffix(lower, ".d.ts"):
		return TypeModel
	case has("utils", "util", "lib", "helpers", "shared"):
		return TypeUtil
	}
	return TypeSource
}

var componentExt = map[string]bool{".tsx": true, ".jsx": true, ".vue": true, ".svelte": true, ".astro": true}

func isHookName(base string) bool {
	return len(base) > 3 && strings.HasPrefix(base, "use") && base[3] >= 'A' && base[3] <= 'Z'
}

func isAppPage(segs []string, base string) bool {
	stem := strings.ToLower(strings.TrimSuffix(base, path.Ext(base)))
	if stem != "page" && stem != "+page" {
		return false
	}
	for _, s := range segs {
		if s == "app" || s == "routes" {
			return true
		}
	}
	return false
}

// score evaluates every signal for one file. now is the reference instant
// for recency. The returned eligible flag is true when a path, keyword or
// import signal fired.
func score(f scanner.FileRecord, in Intent, now time.Time) (Candidate, bool) {
	c := Candidate{
		Path:    f.Path,
		Content: f.Content,
		Type:    fileType(f),
		Tokens:  compression.EstimateTokens(f.Content),
		Signals: map[string]int{},
	}

	lowerPath := strings.ToLower(f.Path)
	if matchesPath(lowerPath, in) {
		c.Signals[SignalPath] = weightPath
	}

	lowerContent := strings.ToLower(f.Content)
	hits := 0
	for _, kw := range in.Keywords {
		hits += strings.Count(lowerContent, kw)
		if hits >= maxKeywordHits {
			hits = maxKeywordHits
			break
		}
	}
	if hits > 0 {
		c.Signals[SignalKeywords] = hits * weightKeyword
	}

	if in.HasFileType(c.Type) {
		c.Signals[SignalType] = weightFileType
	}

	if importMentionsKeyword(f.Content, in.Keywords) {
		c.Signals[SignalImport] = weightImport
	}

	if r := recency(f.ModifiedAt, now); r > 0 {
		c.Signals[SignalRecency] = r
	}

	for _, v := range c.Signals {
		c.Score += v
	}
	eligible := c.Signals[SignalPath] > 0 || c.Signals[SignalKeywords] > 0 || c.Signals[SignalImport] > 0
	return c, eligible
}

func matchesPath(lowerPath string, in Intent) bool {
	if in.TargetPath != "" {
		target := strings.ToLower(strings.TrimPrefix(in.TargetPath, "./"))
		if strings.Contains(lowerPath, target) {
			return true
		}
	}
	if in.ComponentName != "" && strings.Contains(lowerPath, strings.ToLower(in.ComponentName)) {
		return true
	}
	return false
}

func importMentionsKeyword(content string, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	for _, line := range strings.Split(content, "\n") {
		if !importLinePattern.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return true
			}
		}
	}
	return false
}

// recency is max(0, 10 - whole days between modified and now). Files
// without a modification time get nothing.
func recency(modified, now time.Time) int {
	if modified.IsZero() || now.IsZero() {
		return 0
	}
	days := int(now.Sub(modified) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	if r := maxRecencyBonus - days; r > 0 {
		return r
	}
	return 0
}
