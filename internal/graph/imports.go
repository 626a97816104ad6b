package graph

import (
	"context"
	"regexp"
	"strings"

	"repolens/internal/scanner"
	"repolens/internal/syntax"
)

// importFamily groups extensions that share import syntax.
type importFamily int

const (
	familyNone importFamily = iota
	familyScript
	familyPython
	familyGo
	familyRust
)

var familyByExtension = map[string]importFamily{
	".ts": familyScript, ".tsx": familyScript, ".js": familyScript, ".jsx": familyScript,
	".mjs": familyScript, ".cjs": familyScript, ".vue": familyScript, ".svelte": familyScript,
	".astro": familyScript,
	".py": familyPython, ".pyi": familyPython,
	".go": familyGo,
	".rs": familyRust,
}

// importPatterns are the regex fallback, applied to whole file content.
var importPatterns = map[importFamily][]*regexp.Regexp{
	familyScript: {
		regexp.MustCompile(`(?m)^\s*import\s+(?:type\s+)?(?:[\w*${}\s,]+\s+from\s+)?['"]([^'"\n]+)['"]`),
		regexp.MustCompile(`(?m)^\s*export\s+(?:type\s+)?(?:\*(?:\s+as\s+\w+)?|\{[^}]*\})\s+from\s+['"]([^'"\n]+)['"]`),
		regexp.MustCompile(`\brequire\(\s*['"]([^'"\n]+)['"]\s*\)`),
		regexp.MustCompile(`\bimport\(\s*['"]([^'"\n]+)['"]\s*\)`),
	},
	familyPython: {
		regexp.MustCompile(`(?m)^\s*from\s+(\.*[\w.]*)\s+import\b`),
		regexp.MustCompile(`(?m)^\s*import\s+([\w.]+(?:\s+as\s+\w+)?(?:\s*,\s*[\w.]+(?:\s+as\s+\w+)?)*)`),
	},
	familyGo: {
		regexp.MustCompile(`(?m)^\s*import\s+(?:[\w.]+\s+)?"([^"]+)"`),
	},
	familyRust: {
		regexp.MustCompile(`(?m)^\s*(?:pub(?:\([^)]*\))?\s+)?mod\s+(\w+)\s*;`),
	},
}

var (
	goImportBlock   = regexp.MustCompile(`(?s)\bimport\s*\((.*?)\)`)
	goQuotedImport  = regexp.MustCompile(`"([^"]+)"`)
	pythonAliasPart = regexp.MustCompile(`\s+as\s+\w+$`)
)

// extractImports returns the raw module specifiers of f in a deterministic
// order, without duplicates. Tree-sitter is tried first when enabled.
func extractImports(ctx context.Context, f scanner.FileRecord, useTreeSitter bool) []string {
	family := familyByExtension[f.Extension]
	if family == familyNone || f.Content == "" {
		return nil
	}

	if useTreeSitter && family != familyRust && syntax.Available() {
		if lang := syntax.LanguageForExtension(f.Extension); lang != syntax.LangNone {
			if specs, err := syntax.Imports(ctx, []byte(f.Content), lang); err == nil {
				return dedupe(specs)
			}
		}
	}
	return dedupe(regexImports(f.Content, family))
}

func regexImports(content string, family importFamily) []string {
	var out []string
	for _, re := range importPatterns[family] {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			if family == familyPython && !strings.HasPrefix(strings.TrimSpace(m[0]), "from") {
				for _, part := range strings.Split(m[1], ",") {
					out = append(out, pythonAliasPart.ReplaceAllString(strings.TrimSpace(part), ""))
				}
				continue
			}
			out = append(out, m[1])
		}
	}
	if family == familyGo {
		for _, block := range goImportBlock.FindAllStringSubmatch(content, -1) {
			for _, m := range goQuotedImport.FindAllStringSubmatch(block[1], -1) {
				out = append(out, m[1])
			}
		}
	}
	return out
}

func dedupe(specs []string) []string {
	seen := make(map[string]bool, len(specs))
	out := make([]string, 0, len(specs))
	for _, s := range specs {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
