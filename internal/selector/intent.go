package selector

import (
	"regexp"
	"strings"
	"unicode"
)

// Action is what a request wants done.
type Action string

const (
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionFix      Action = "fix"
	ActionRefactor Action = "refactor"
	ActionEnhance  Action = "enhance"
)

// String returns the action identifier.
func (a Action) String() string { return string(a) }

// FileType is a coarse role of a file within a project.
type FileType string

const (
	TypeComponent FileType = "component"
	TypePage      FileType = "page"
	TypeHook      FileType = "hook"
	TypeAPI       FileType = "api"
	TypeStyle     FileType = "style"
	TypeTest      FileType = "test"
	TypeModel     FileType = "model"
	TypeUtil      FileType = "util"
	TypeConfig    FileType = "config"
	TypeDocument  FileType = "document"
	TypeSource    FileType = "source"
)

// Complexity is a rough size estimate of a request.
type Complexity string

const (
	ComplexitySimple   Complexity = "simple"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// Intent is a parsed free-text request.
type Intent struct {
	Raw           string     `json:"raw"`
	Action        Action     `json:"action"`
	TargetPath    string     `json:"targetPath,omitempty"`
	ComponentName string     `json:"componentName,omitempty"`
	Keywords      []string   `json:"keywords"`
	FileTypes     []FileType `json:"fileTypes"`
	Complexity    Complexity `json:"complexity"`
}

// HasFileType reports whether t is among the inferred file types.
func (i Intent) HasFileType(t FileType) bool {
	for _, ft := range i.FileTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// actionPatterns are tried in order; the first match decides.
var actionPatterns = []struct {
	action Action
	re     *regexp.Regexp
}{
	{ActionCreate, regexp.MustCompile(`(?i)\b(create|add|build|make|generate|implement|scaffold|new)\b`)},
	{ActionUpdate, regexp.MustCompile(`(?i)\b(update|change|modify|edit|adjust|rename|replace|set)\b`)},
	{ActionFix, regexp.MustCompile(`(?i)\b(fix|repair|resolve|debug|correct|broken|bug|crash(es|ing)?|error)\b`)},
	{ActionRefactor, regexp.MustCompile(`(?i)\b(refactor|restructure|reorganize|clean\s*up|extract|simplify|split)\b`)},
	{ActionEnhance, regexp.MustCompile(`(?i)\b(enhance|improve|optimi[sz]e|extend|upgrade|polish|speed\s*up)\b`)},
}

var (
	targetPathPattern = regexp.MustCompile(`(?:^|[\s"'` + "`" + `(])((?:[\w@.~-]+/)+[\w.-]+|[\w-]+\.(?:tsx?|jsx?|mjs|vue|svelte|py|go|rs|css|scss|json|md))\b`)
	pascalCasePattern = regexp.MustCompile(`\b([A-Z][a-z0-9]+(?:[A-Z][a-z0-9]*)+)\b`)
	uiNounPattern     = regexp.MustCompile(`(?i)\b([a-z][a-z0-9-]*)\s+(component|page|screen|view|modal|dialog|form|button|card|header|footer|navbar|sidebar|menu|table|list|widget)\b`)
	tokenPattern      = regexp.MustCompile(`[A-Za-z][A-Za-z0-9_]*`)
)

var stopWords = map[string]bool{
	"a": true, "an": true, "the": true, "to": true, "of": true, "in": true, "on": true,
	"for": true, "with": true, "and": true, "or": true, "is": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "my": true, "our": true,
	"your": true, "please": true, "can": true, "could": true, "would": true, "should": true,
	"you": true, "we": true, "be": true, "from": true, "by": true, "at": true, "as": true,
	"into": true, "so": true, "when": true, "then": true, "there": true, "some": true,
	"all": true, "any": true, "also": true, "just": true, "need": true, "want": true,
	"make": true, "use": true, "using": true, "not": true, "does": true, "do": true,
	"but": true, "if": true, "me": true, "us": true, "have": true, "has": true,
	// action verbs carry no file signal
	"create": true, "add": true, "build": true, "generate": true, "implement": true,
	"new": true, "update": true, "change": true, "modify": true, "edit": true,
	"fix": true, "repair": true, "resolve": true, "refactor": true, "improve": true,
	"enhance": true, "optimize": true, "extend": true,
}

// domainTriggers inject a domain keyword when any trigger word appears.
var domainTriggers = []struct {
	keyword  string
	triggers []string
}{
	{"component", []string{"component", "components", "button", "hook", "state", "modal", "form", "ui", "render", "onclick", "props", "jsx", "dialog", "widget"}},
	{"api", []string{"api", "endpoint", "endpoints", "route", "routes", "rest", "graphql", "request", "response", "fetch", "backend", "server"}},
	{"style", []string{"style", "styles", "styling", "css", "color", "colour", "theme", "responsive", "tailwind", "font", "spacing", "dark"}},
	{"test", []string{"test", "tests", "testing", "spec", "coverage", "unit", "e2e", "jest", "vitest", "pytest"}},
}

// fileTypeVocabulary maps request words to the file types they imply.
var fileTypeVocabulary = []struct {
	fileType FileType
	words    []string
}{
	{TypeComponent, []string{"component", "components", "button", "modal", "dialog", "form", "card", "widget", "ui", "onclick", "navbar", "sidebar", "header", "footer"}},
	{TypePage, []string{"page", "pages", "screen", "view", "layout", "dashboard"}},
	{TypeHook, []string{"hook", "hooks", "state", "context", "store"}},
	{TypeAPI, []string{"api", "endpoint", "endpoints", "route", "routes", "server", "backend", "fetch", "request"}},
	{TypeStyle, []string{"style", "styles", "styling", "css", "theme", "color", "colour", "responsive", "font"}},
	{TypeTest, []string{"test", "tests", "testing", "coverage", "spec"}},
	{TypeModel, []string{"model", "models", "schema", "type", "types", "interface", "entity", "database", "db"}},
	{TypeUtil, []string{"util", "utils", "helper", "helpers", "utility", "format", "parse"}},
	{TypeConfig, []string{"config", "configuration", "env", "settings"}},
}

var (
	complexScope = regexp.MustCompile(`(?i)\b(entire|whole|architecture|system|across|multiple|every|migrate|migration|redesign|rewrite|integrate|integration|authentication|overhaul)\b`)
	simpleScope  = regexp.MustCompile(`(?i)\b(typo|rename|label|text|color|colour|small|minor|tweak|spacing|copy|wording|icon)\b`)
)

// ParseIntent parses a free-text request. It never fails; an empty request
// yields an Update intent with no keywords.
func ParseIntent(text string) Intent {
	in := Intent{
		Raw:       text,
		Action:    ActionUpdate,
		Keywords:  []string{},
		FileTypes: []FileType{},
	}
	for _, ap := range actionPatterns {
		if ap.re.MatchString(text) {
			in.Action = ap.action
			break
		}
	}

	if m := targetPathPattern.FindStringSubmatch(text); m != nil {
		in.TargetPath = strings.Trim(m[1], ".")
	}
	in.ComponentName = componentName(text)

	tokens := tokenize(text)
	present := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		present[t] = true
	}

	seen := make(map[string]bool)
	for _, t := range tokens {
		if len(t) < 2 || stopWords[t] || seen[t] {
			continue
		}
		seen[t] = true
		in.Keywords = append(in.Keywords, t)
	}
	for _, d := range domainTriggers {
		if !seen[d.keyword] && anyPresent(present, d.triggers) {
			seen[d.keyword] = true
			in.Keywords = append(in.Keywords, d.keyword)
		}
	}

	for _, v := range fileTypeVocabulary {
		if anyPresent(present, v.words) {
			in.FileTypes = append(in.FileTypes, v.fileType)
		}
	}
	in.Complexity = complexity(text, len(tokens))
	return in
}

// componentName prefers an explicit PascalCase identifier, then a
// "<word> <ui noun>" phrase such as "login button".
func componentName(text string) string {
	if m := pascalCasePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, m := range uiNounPattern.FindAllStringSubmatch(text, -1) {
		word := strings.ToLower(m[1])
		if stopWords[word] {
			continue
		}
		return pascal(word) + pascal(strings.ToLower(m[2]))
	}
	return ""
}

func pascal(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if r == '-' || r == '_' {
			upper = true
			continue
		}
		if upper {
			r = unicode.ToUpper(r)
			upper = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(text, -1)
	out := make([]string, len(raw))
	for i, t := range raw {
		out[i] = strings.ToLower(t)
	}
	return out
}

func anyPresent(present map[string]bool, words []string) bool {
	for _, w := range words {
		if present[w] {
			return true
		}
	}
	return false
}

func complexity(text string, words int) Complexity {
	switch {
	case complexScope.MatchString(text) || words > 25:
		return ComplexityComplex
	case simpleScope.MatchString(text) || words <= 10:
		return ComplexitySimple
	default:
		return ComplexityModerate
	}
}
