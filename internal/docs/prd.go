package docs

import (
	"regexp"
	"strings"

	"repolens/internal/model"
)

var (
	// featuresHeadingPattern opens a features section.
	featuresHeadingPattern = regexp.MustCompile(`(?i)\b(features?|requirements?|functionality|capabilities|user stories|scope|mvp|deliverables)\b`)
	// featuresTitlePattern is stricter for level-1 headings, which usually
	// title the whole document.
	featuresTitlePattern = regexp.MustCompile(`(?i)^((key|core|main|mvp)\s+)?(features?|requirements?|functionality|capabilities)\b`)
	// excludedHeadingPattern names what the document leaves out. It always
	// closes a features section, even as a deeper heading.
	excludedHeadingPattern = regexp.MustCompile(`(?i)\b(out\s+of\s+scope|not\s+in\s+scope|non[- ]?goals?|won['’]?t\s+have|exclusions?)\b`)

	highPriorityPattern = regexp.MustCompile(`(?i)\b(must|critical|essential|required|high|p0|p1|mvp|core|blocker)\b`)
	lowPriorityPattern  = regexp.MustCompile(`(?i)\b(nice[- ]to[- ]have|could|optional|low|p3|p4|future|later|stretch|someday)\b`)

	checkboxPattern  = regexp.MustCompile(`^\[([ xX])\]\s+(.*)$`)
	boldNamePattern  = regexp.MustCompile(`^\*\*(.+?)\*\*\s*(?::|-|–)?\s*(.*)$`)
	colonNamePattern = regexp.MustCompile(`^\*\*(.+?):\*\*\s*(.*)$`)
)

// inferPriority reads priority from a fixed vocabulary; high wins over low.
func inferPriority(text string) (model.Priority, bool) {
	switch {
	case highPriorityPattern.MatchString(text):
		return model.PriorityHigh, true
	case lowPriorityPattern.MatchString(text):
		return model.PriorityLow, true
	default:
		return model.PriorityMedium, false
	}
}

// extractPRDFeatures turns bullets inside features sections into features.
// A features heading opens a section; a non-matching heading at the same or
// a shallower level closes it. Deeper headings keep it open and may set a
// default priority for the bullets below them.
func extractPRDFeatures(source string, md *markdown) []Feature {
	var (
		features     []Feature
		inside       bool
		sectionLevel int
		sectionPrio  model.Priority
		current      = -1
	)

	for _, ln := range md.lines {
		if h, ok := parseHeading(ln.text); ok {
			current = -1
			switch {
			case excludedHeadingPattern.MatchString(h.text):
				inside = false
			case isFeaturesHeading(h):
				if !inside || h.level <= sectionLevel {
					inside, sectionLevel = true, h.level
				}
				sectionPrio, _ = inferPriority(h.text)
			case inside && h.level > sectionLevel:
				sectionPrio, _ = inferPriority(h.text)
			default:
				inside = false
			}
			continue
		}
		if !inside {
			continue
		}

		indent, text, isBullet := parseBullet(ln.text)
		if isBullet && indent < 2 {
			f, ok := parseFeatureBullet(text, sectionPrio)
			if !ok {
				current = -1
				continue
			}
			f.Source, f.Line = source, ln.num
			features = append(features, f)
			current = len(features) - 1
			continue
		}

		if current < 0 {
			continue
		}
		if isBullet || (strings.TrimSpace(ln.text) != "" && indentWidth(ln.text) >= 2) {
			if !isBullet {
				text = strings.TrimSpace(ln.text)
			}
			features[current].Description = joinDescription(features[current].Description, cleanInline(text))
		}
	}
	return features
}

func isFeaturesHeading(h heading) bool {
	if h.level == 1 {
		return featuresTitlePattern.MatchString(h.text)
	}
	return featuresHeadingPattern.MatchString(h.text)
}

// parseFeatureBullet splits "**Name**: description" and reads checkboxes.
func parseFeatureBullet(text string, sectionPrio model.Priority) (Feature, bool) {
	f := Feature{}
	if m := checkboxPattern.FindStringSubmatch(text); m != nil {
		f.Status = StatusPlanned
		if m[1] != " " {
			f.Status = StatusDone
		}
		text = m[2]
	}

	name, desc := text, ""
	if m := colonNamePattern.FindStringSubmatch(text); m != nil {
		name, desc = m[1], m[2]
	} else if m := boldNamePattern.FindStringSubmatch(text); m != nil {
		name, desc = m[1], m[2]
	}
	f.Name = strings.TrimRight(cleanInline(name), ".:")
	f.Description = cleanInline(desc)
	if f.Name == "" {
		return Feature{}, false
	}

	if p, ok := inferPriority(text); ok {
		f.Priority = p
	} else if sectionPrio != "" {
		f.Priority = sectionPrio
	} else {
		f.Priority = model.PriorityMedium
	}
	return f, true
}

func joinDescription(desc, more string) string {
	if more == "" {
		return desc
	}
	if desc == "" {
		return more
	}
	return desc + " " + more
}
