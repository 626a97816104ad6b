package docs

import (
	"regexp"
	"strings"
)

var flowHeadingPattern = regexp.MustCompile(`(?i)\b(flows?|journeys?|process(es)?|workflows?|user paths?|funnels?|walkthrough|scenarios?)\b`)

// extractFlows opens a flow at each matching heading; its content runs
// until the next heading of any level.
func extractFlows(source string, md *markdown) []Flow {
	var (
		flows   []Flow
		current *Flow
		content []string
	)
	closeFlow := func() {
		if current == nil {
			return
		}
		current.Content = strings.TrimSpace(strings.Join(content, "\n"))
		flows = append(flows, *current)
		current, content = nil, nil
	}

	for _, ln := range md.lines {
		if h, ok := parseHeading(ln.text); ok {
			closeFlow()
			if flowHeadingPattern.MatchString(h.text) {
				current = &Flow{Name: h.text, Source: source, Line: ln.num}
			}
			continue
		}
		if current == nil {
			continue
		}
		content = append(content, ln.text)
		if _, text, ok := parseBullet(ln.text); ok {
			if step := cleanInline(text); step != "" {
				current.Steps = append(current.Steps, step)
			}
		}
	}
	closeFlow()
	return flows
}
