package gaps

import (
	"regexp"
	"strings"

	"repolens/internal/model"
)

// Pattern is one row of the detection table.
type Pattern struct {
	Name     string
	Kind     Kind
	Priority model.Priority
	Regex    *regexp.Regexp
	// Describe builds the description from the submatches; nil uses Description.
	Describe    func(match []string) string
	Description string
	// SkipTests leaves test files out, where mocks and fakes are expected.
	SkipTests bool
}

func (p Pattern) describe(match []string) string {
	if p.Describe != nil {
		return p.Describe(match)
	}
	return p.Description
}

// commentLead matches the start of a line or block comment.
const commentLead = `(?:^|\s|;)(?://+|#+|/\*+|\*|<!--|--|\{/\*)\s*`

func markerDescription(marker string) func([]string) string {
	return func(m []string) string {
		text := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(m[len(m)-1]), "*/->}"))
		if text == "" {
			return marker + " marker"
		}
		return marker + ": " + text
	}
}

// BuiltinPatterns returns a fresh copy of the builtin detection table.
// Callers may append their own rows.
func BuiltinPatterns() []Pattern {
	return []Pattern{
		// ============ Marker comments ============
		{
			Name:     "fixme_comment",
			Kind:     KindTODO,
			Priority: model.PriorityHigh,
			Regex:    regexp.MustCompile(commentLead + `(?i:fixme)\b[\s:(-]*(.*)$`),
			Describe: markerDescription("FIXME"),
		},
		{
			Name:     "todo_comment",
			Kind:     KindTODO,
			Priority: model.PriorityMedium,
			Regex:    regexp.MustCompile(commentLead + `(?i:todo)\b[\s:(-]*(.*)$`),
			Describe: markerDescription("TODO"),
		},
		{
			Name:     "hack_comment",
			Kind:     KindTODO,
			Priority: model.PriorityMedium,
			Regex:    regexp.MustCompile(commentLead + `(HACK|XXX|BUG)\b[\s:(-]*(.*)$`),
			Describe: func(m []string) string { return markerDescription(m[1])(m) },
		},

		// ============ Stubs ============
		{
			Name:        "throw_not_implemented",
			Kind:        KindStub,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`throw\s+new\s+\w*Error\(\s*['"` + "`" + `](?i:not\s+(?:yet\s+)?implemented|unimplemented|todo)`),
			Description: "Throws a not-implemented error",
		},
		{
			Name:        "raise_not_implemented",
			Kind:        KindStub,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`\braise\s+NotImplementedError\b`),
			Description: "Raises NotImplementedError",
		},
		{
			Name:        "panic_not_implemented",
			Kind:        KindStub,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`\bpanic\(\s*"(?i:not\s+(?:yet\s+)?implemented|unimplemented|todo)|\b(?:unimplemented|todo)!\(`),
			Description: "Panics as not implemented",
		},
		{
			Name:        "empty_function",
			Kind:        KindStub,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`(?:\bfunction\b\s*\*?\s*\w*\s*\([^)]*\)|\([^)]*\)\s*=>|\bfunc\s+(?:\([^)]*\)\s*)?\w+\([^)]*\))\s*\{\s*\}`),
			Description: "Empty function body",
		},
		{
			Name:        "python_pass_stub",
			Kind:        KindStub,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`^\s*def\s+\w+\s*\([^)]*\)\s*(?:->\s*[^:]+)?:\s*(?:pass|\.\.\.)\s*(?:#.*)?$`),
			Description: "Function body is only pass",
		},

		// ============ Mock data ============
		{
			Name:      "mock_declaration",
			Kind:      KindMock,
			Priority:  model.PriorityMedium,
			Regex:     regexp.MustCompile(`\b(?:const|let|var|val)\s+((?i:mock|dummy|fake)[A-Za-z0-9_]*)\s*[:=]`),
			Describe:  func(m []string) string { return "Mock data declaration: " + m[1] },
			SkipTests: true,
		},
		{
			Name:      "mock_assignment",
			Kind:      KindMock,
			Priority:  model.PriorityMedium,
			Regex:     regexp.MustCompile(`^\s*((?i:mock|dummy|fake)_[A-Za-z0-9_]*)\s*(?::\s*[^=]+)?=[^=]`),
			Describe:  func(m []string) string { return "Mock data declaration: " + m[1] },
			SkipTests: true,
		},
		{
			Name:        "mock_data_comment",
			Kind:        KindMock,
			Priority:    model.PriorityMedium,
			Regex:       regexp.MustCompile(commentLead + `.*\b(?i:mock|fake|dummy|hard-?coded|sample)\s+(?i:data|response|responses|values?|users?|items?|api)\b`),
			Description: "Mock data comment",
			SkipTests:   true,
		},

		// ============ Placeholders ============
		{
			Name:        "lorem_ipsum",
			Kind:        KindPlaceholder,
			Priority:    model.PriorityLow,
			Regex:       regexp.MustCompile(`(?i)\blorem\s+ipsum\b`),
			Description: "Lorem ipsum placeholder text",
		},
		{
			Name:        "coming_soon",
			Kind:        KindPlaceholder,
			Priority:    model.PriorityLow,
			Regex:       regexp.MustCompile(`(?i)\bcoming\s+soon\b|\bunder\s+construction\b`),
			Description: "Coming-soon placeholder",
		},
		{
			Name:        "placeholder_markup",
			Kind:        KindPlaceholder,
			Priority:    model.PriorityLow,
			Regex:       regexp.MustCompile(`(?i)<[A-Za-z][^>]*\bclass(?:Name)?=["'{][^"'}]*\bplaceholder\b|>\s*placeholder\s*<|<Placeholder\b`),
			Description: "Placeholder markup",
		},

		// ============ Incomplete constructs ============
		{
			Name:        "empty_catch",
			Kind:        KindIncomplete,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`\bcatch\s*(?:\([^)]*\))?\s*\{\s*\}`),
			Description: "Empty catch block swallows errors",
		},
		{
			Name:        "python_except_pass",
			Kind:        KindIncomplete,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`^\s*except\b[^:]*:\s*pass\s*$`),
			Description: "Bare except with pass swallows errors",
		},
		{
			Name:        "empty_promise",
			Kind:        KindIncomplete,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`\breturn\s+Promise\.resolve\(\s*\)`),
			Description: "Returns an empty resolved promise",
		},
		{
			Name:        "ellipsis_comment",
			Kind:        KindIncomplete,
			Priority:    model.PriorityHigh,
			Regex:       regexp.MustCompile(`^\s*(?://+|#+|/\*+)\s*(?:\.\.\.|…)\s*(?:\*/)?\s*$`),
			Description: "Elided code left as a comment",
		},
	}
}
