// Package recommend turns analysis signals into an ordered, deduplicated
// list of improvements.
package recommend

import (
	"fmt"

	"repolens/internal/gaps"
	"repolens/internal/model"
	"repolens/internal/project"
)

// Category groups recommendations.
type Category string

const (
	CategoryDesign        Category = "design"
	CategoryQuality       Category = "quality"
	CategoryTesting       Category = "testing"
	CategoryCompleteness  Category = "completeness"
	CategoryAccessibility Category = "accessibility"
	CategoryDevOps        Category = "devops"
	CategorySEO           Category = "seo"
	CategoryUX            Category = "ux"
)

// DefaultCoverageTarget is the coverage estimate below which improving tests
// is recommended.
const DefaultCoverageTarget = 60

// manyGapsThreshold is the gap count above which completing TODOs is
// recommended.
const manyGapsThreshold = 10

// Recommendation is one suggested improvement, keyed for deduplication.
type Recommendation struct {
	Key             string         `json:"key"`
	Description     string         `json:"description"`
	Priority        model.Priority `json:"priority"`
	EstimatedEffort model.Effort   `json:"estimatedEffort"`
	Category        Category       `json:"category"`
}

// Facts are the signals the rules read. Profile is nil when no source code
// was analyzed; rules about code quality then stay silent.
type Facts struct {
	Profile        *project.QualityProfile
	Gaps           []gaps.Gap
	CoverageTarget int
}

// Rule is one row of the recommendation table.
type Rule struct {
	Key     string
	Applies func(Facts) bool
	Build   func(Facts) Recommendation
}

// Rules returns the builtin rule table in output order.
func Rules() []Rule {
	return []Rule{
		{
			Key: "migrate-design-system",
			Applies: func(f Facts) bool {
				return f.Profile != nil && f.Profile.DesignSystem != project.DesignHouse
			},
			Build: func(f Facts) Recommendation {
				desc := "Adopt the in-house design system for consistent UI components"
				if ds := f.Profile.DesignSystem; ds != project.DesignNone && ds != "" {
					desc = fmt.Sprintf("Migrate UI components from %s to the in-house design system", ds)
				}
				return Recommendation{
					Key: "migrate-design-system", Description: desc,
					Priority: model.PriorityMedium, EstimatedEffort: model.EffortLarge, Category: CategoryDesign,
				}
			},
		},
		{
			Key:     "add-type-safety",
			Applies: func(f Facts) bool { return f.Profile != nil && !f.Profile.HasTypedSource },
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "add-type-safety", Description: "Introduce static typing (e.g. TypeScript or type hints) to catch errors early",
					Priority: model.PriorityHigh, EstimatedEffort: model.EffortLarge, Category: CategoryQuality,
				}
			},
		},
		{
			Key:     "add-tests",
			Applies: func(f Facts) bool { return f.Profile != nil && !f.Profile.HasTests },
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "add-tests", Description: "Set up a test runner and add tests for core functionality",
					Priority: model.PriorityHigh, EstimatedEffort: model.EffortMedium, Category: CategoryTesting,
				}
			},
		},
		{
			Key: "improve-test-coverage",
			Applies: func(f Facts) bool {
				return f.Profile != nil && f.Profile.HasTests &&
					f.Profile.Metrics.TestCoverageEstimate < coverageTarget(f)
			},
			Build: func(f Facts) Recommendation {
				return Recommendation{
					Key: "improve-test-coverage",
					Description: fmt.Sprintf("Raise estimated test coverage from %d%% to at least %d%%",
						f.Profile.Metrics.TestCoverageEstimate, coverageTarget(f)),
					Priority: model.PriorityMedium, EstimatedEffort: model.EffortMedium, Category: CategoryTesting,
				}
			},
		},
		{
			Key:     "replace-mock-data",
			Applies: func(f Facts) bool { return gaps.Count(f.Gaps, gaps.KindMock) > 0 },
			Build: func(f Facts) Recommendation {
				return Recommendation{
					Key:         "replace-mock-data",
					Description: fmt.Sprintf("Replace %d mock data occurrence(s) with real data sources", gaps.Count(f.Gaps, gaps.KindMock)),
					Priority:    model.PriorityHigh, EstimatedEffort: model.EffortMedium, Category: CategoryCompleteness,
				}
			},
		},
		{
			Key:     "implement-stubs",
			Applies: func(f Facts) bool { return gaps.Count(f.Gaps, gaps.KindStub) > 0 },
			Build: func(f Facts) Recommendation {
				return Recommendation{
					Key:         "implement-stubs",
					Description: fmt.Sprintf("Implement %d stubbed function(s)", gaps.Count(f.Gaps, gaps.KindStub)),
					Priority:    model.PriorityHigh, EstimatedEffort: model.EffortLarge, Category: CategoryCompleteness,
				}
			},
		},
		{
			Key:     "complete-todos",
			Applies: func(f Facts) bool { return len(f.Gaps) > manyGapsThreshold },
			Build: func(f Facts) Recommendation {
				return Recommendation{
					Key:         "complete-todos",
					Description: fmt.Sprintf("Resolve %d outstanding TODOs and incomplete sections", len(f.Gaps)),
					Priority:    model.PriorityMedium, EstimatedEffort: model.EffortMedium, Category: CategoryCompleteness,
				}
			},
		},
		{
			Key:     "accessibility-audit",
			Applies: always,
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "accessibility-audit", Description: "Audit keyboard navigation, contrast and ARIA labelling",
					Priority: model.PriorityMedium, EstimatedEffort: model.EffortSmall, Category: CategoryAccessibility,
				}
			},
		},
		{
			Key:     "setup-ci",
			Applies: always,
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "setup-ci", Description: "Run build, lint and tests on every change in CI",
					Priority: model.PriorityMedium, EstimatedEffort: model.EffortSmall, Category: CategoryDevOps,
				}
			},
		},
		{
			Key: "seo-optimization",
			Applies: func(f Facts) bool {
				return f.Profile != nil && project.IsWebFramework(f.Profile.Framework)
			},
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "seo-optimization", Description: "Add page metadata, sitemap and structured data for search engines",
					Priority: model.PriorityLow, EstimatedEffort: model.EffortSmall, Category: CategorySEO,
				}
			},
		},
		{
			Key:     "loading-states",
			Applies: always,
			Build: func(Facts) Recommendation {
				return Recommendation{
					Key: "loading-states", Description: "Show loading and error states for asynchronous operations",
					Priority: model.PriorityLow, EstimatedEffort: model.EffortSmall, Category: CategoryUX,
				}
			},
		},
	}
}

func always(Facts) bool { return true }

func coverageTarget(f Facts) int {
	if f.CoverageTarget > 0 {
		return f.CoverageTarget
	}
	return DefaultCoverageTarget
}

// Engine evaluates a rule table.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine over rules; nil means the builtin table.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = Rules()
	}
	return &Engine{rules: rules}
}

// Recommend applies every rule in table order. The output holds at most one
// recommendation per key; the first rule to produce a key wins.
func (e *Engine) Recommend(f Facts) []Recommendation {
	seen := make(map[string]bool, len(e.rules))
	out := make([]Recommendation, 0, len(e.rules))
	for _, r := range e.rules {
		if !r.Applies(f) {
			continue
		}
		rec := r.Build(f)
		if rec.Key == "" {
			rec.Key = r.Key
		}
		if seen[rec.Key] {
			continue
		}
		seen[rec.Key] = true
		out = append(out, rec)
	}
	return out
}

// Recommend applies the builtin rules.
func Recommend(f Facts) []Recommendation {
	return NewEngine(nil).Recommend(f)
}
