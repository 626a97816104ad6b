package docs

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"repolens/internal/syntax"
)

// schemaKeywordPattern marks unparseable blocks worth keeping as raw text.
var schemaKeywordPattern = regexp.MustCompile(`(?i)\b(type|interface|schema|model|table|entity|struct|class|enum|field|fields|create\s+table|primary\s+key|foreign\s+key|references)\b`)

// declarationPatterns find type declarations when tree-sitter is unavailable.
var declarationPatterns = []struct {
	kind    string
	pattern *regexp.Regexp
}{
	{"interface", regexp.MustCompile(`^\s*(?:export\s+)?interface\s+([A-Za-z_]\w*)`)},
	{"type", regexp.MustCompile(`^\s*(?:export\s+)?type\s+([A-Za-z_]\w*)\s*(?:=|struct|interface|<)`)},
	{"class", regexp.MustCompile(`^\s*(?:export\s+)?(?:abstract\s+)?class\s+([A-Za-z_]\w*)`)},
	{"enum", regexp.MustCompile(`^\s*(?:export\s+)?(?:pub\s+)?enum\s+([A-Za-z_]\w*)`)},
	{"struct", regexp.MustCompile(`^\s*(?:pub\s+)?struct\s+([A-Za-z_]\w*)`)},
	{"table", regexp.MustCompile(`(?i)^\s*create\s+table\s+(?:if\s+not\s+exists\s+)?["` + "`" + `]?([A-Za-z_][\w.]*)`)},
	{"model", regexp.MustCompile(`^\s*model\s+([A-Za-z_]\w*)\s*\{`)},
}

// modelExtractor turns fenced blocks into data models, recording failures.
type modelExtractor struct {
	ctx      context.Context
	source   string
	models   []DataModel
	failures []ParseFailure
}

func (e *modelExtractor) fence(f fence) {
	if strings.TrimSpace(f.body) == "" {
		return
	}

	switch f.lang {
	case "json", "jsonc", "json5":
		e.structured(f, FormatJSON, parseJSON)
	case "yaml", "yml":
		e.structured(f, FormatYAML, parseYAML)
	case "toml":
		e.structured(f, FormatTOML, parseTOML)
	case "":
		if v, err := parseJSON(f.body); err == nil {
			e.add(f, FormatJSON, v)
			return
		}
		e.structured(f, FormatYAML, parseYAML)
	default:
		e.code(f)
	}
}

// structured parses a data block; on failure the block is kept raw only
// when it looks like a schema.
func (e *modelExtractor) structured(f fence, format ModelFormat, parse func(string) (any, error)) {
	v, err := parse(f.body)
	if err == nil {
		e.add(f, format, v)
		return
	}
	e.failures = append(e.failures, ParseFailure{
		Source:  e.source,
		Line:    f.line,
		Format:  format,
		Message: err.Error(),
	})
	e.raw(f)
}

func (e *modelExtractor) add(f fence, format ModelFormat, v any) {
	e.models = append(e.models, DataModel{
		Name:   modelName(f.heading, v),
		Format: format,
		Fields: topLevelFields(v),
		Source: e.source,
		Line:   f.line,
	})
}

func (e *modelExtractor) raw(f fence) {
	if !schemaKeywordPattern.MatchString(f.body) {
		return
	}
	e.models = append(e.models, DataModel{
		Name:   f.heading,
		Format: FormatRaw,
		Raw:    f.body,
		Source: e.source,
		Line:   f.line,
	})
}

// code recovers type declarations from source-language blocks.
func (e *modelExtractor) code(f fence) {
	decls := e.declarations(f)
	if len(decls) == 0 {
		e.raw(f)
		return
	}
	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	e.models = append(e.models, DataModel{
		Name:   names[0],
		Format: FormatCode,
		Fields: names,
		Raw:    f.body,
		Source: e.source,
		Line:   f.line,
	})
}

func (e *modelExtractor) declarations(f fence) []syntax.Declaration {
	if lang := syntax.LanguageForFence(f.lang); lang != syntax.LangNone && syntax.Available() {
		body := f.body
		if lang == syntax.LangGo && !strings.HasPrefix(strings.TrimSpace(body), "package ") {
			body = "package doc\n" + body
		}
		if decls, err := syntax.Declarations(e.ctx, []byte(body), lang); err == nil && len(decls) > 0 {
			return decls
		}
	}

	var out []syntax.Declaration
	for i, l := range strings.Split(f.body, "\n") {
		for _, dp := range declarationPatterns {
			if m := dp.pattern.FindStringSubmatch(l); m != nil {
				out = append(out, syntax.Declaration{Name: m[1], Kind: dp.kind, Line: i + 1})
				break
			}
		}
	}
	return out
}

func parseJSON(s string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// parseYAML accepts only mappings and sequences; bare scalars are prose.
func parseYAML(s string) (any, error) {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	switch v.(type) {
	case map[string]any, []any:
		return v, nil
	default:
		return nil, fmt.Errorf("yaml: document is not a mapping or sequence")
	}
}

func parseTOML(s string) (any, error) {
	var v map[string]any
	if _, err := toml.Decode(s, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// topLevelFields lists the sorted keys of a mapping, or of the first
// element of a sequence of mappings.
func topLevelFields(v any) []string {
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// modelName prefers the section heading, then a single top-level key.
func modelName(heading string, v any) string {
	if heading != "" {
		return heading
	}
	if m, ok := v.(map[string]any); ok && len(m) == 1 {
		for k := range m {
			return k
		}
	}
	return ""
}

// extractTables captures runs of at least three lines containing '|'.
func extractTables(source string, md *markdown) []DataModel {
	var (
		out  []DataModel
		run  []line
		last string
	)
	flush := func() {
		if len(run) >= 3 {
			texts := make([]string, len(run))
			for i, l := range run {
				texts[i] = l.text
			}
			out = append(out, DataModel{
				Name:   last,
				Format: FormatTable,
				Fields: tableHeader(run[0].text),
				Raw:    strings.Join(texts, "\n"),
				Source: source,
				Line:   run[0].num,
			})
		}
		run = nil
	}

	prev := 0
	for _, ln := range md.lines {
		contiguous := prev == 0 || ln.num == prev+1
		prev = ln.num
		if strings.Contains(ln.text, "|") && contiguous {
			run = append(run, ln)
			continue
		}
		flush()
		if strings.Contains(ln.text, "|") {
			run = append(run, ln)
			continue
		}
		if h, ok := parseHeading(ln.text); ok {
			last = h.text
		}
	}
	flush()
	return out
}

func tableHeader(text string) []string {
	var cells []string
	for _, c := range strings.Split(strings.Trim(strings.TrimSpace(text), "|"), "|") {
		if c = cleanInline(c); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}
