package docs

import (
	"regexp"
	"strings"

	"repolens/internal/model"
)

var (
	canonicalStoryPattern = regexp.MustCompile(`(?i)\bas an?\s+(.+?),?\s+I\s+(?:want|need|would like)\s+(?:to\s+)?(.+?)(?:,?\s+so\s+(?:that\s+)?(.+?))?\s*[.!]?\s*$`)
	storyBulletPattern    = regexp.MustCompile(`(?i)^\s*[-*+]\s*story:\s*(.+?)\s*$`)
)

// extractStories applies the canonical sentence and the "- story:" bullet
// independently; both may fire on the same document.
func extractStories(source string, md *markdown) ([]UserStory, []Feature) {
	var (
		stories  []UserStory
		features []Feature
	)

	for _, ln := range md.lines {
		text := cleanInline(ln.text)
		if _, t, ok := parseBullet(text); ok {
			text = t
		}

		if m := canonicalStoryPattern.FindStringSubmatch(text); m != nil {
			s := UserStory{
				Role:    strings.TrimSpace(m[1]),
				Goal:    strings.TrimSpace(m[2]),
				Benefit: strings.TrimSpace(m[3]),
				Source:  source,
				Line:    ln.num,
			}
			stories = append(stories, s)
			features = append(features, Feature{
				Name:        s.Goal,
				Description: storyDescription(s),
				Priority:    storyPriority(text),
				Source:      source,
				Line:        ln.num,
			})
		}

		if m := storyBulletPattern.FindStringSubmatch(cleanInline(ln.text)); m != nil {
			features = append(features, Feature{
				Name:     m[1],
				Priority: storyPriority(m[1]),
				Source:   source,
				Line:     ln.num,
			})
		}
	}
	return stories, features
}

func storyDescription(s UserStory) string {
	desc := "As a " + s.Role
	if s.Benefit != "" {
		desc += ", so that " + s.Benefit
	}
	return desc
}

func storyPriority(text string) model.Priority {
	p, _ := inferPriority(text)
	return p
}
