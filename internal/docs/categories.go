package docs

import (
	"path"
	"strings"
)

// categoryRules map filename substrings to categories, checked in order.
var categoryRules = []struct {
	category Category
	needles  []string
}{
	{CategoryPRD, []string{"prd", "product", "requirement", "feature", "roadmap", "mvp"}},
	{CategoryUserStories, []string{"story", "stories", "persona", "use-case", "use_case", "usecase"}},
	{CategoryTechnicalSpec, []string{"spec", "technical", "architecture", "design", "api", "rfc"}},
	{CategoryDataModel, []string{"model", "schema", "data", "entit", "erd", "database", "db"}},
	{CategoryFlow, []string{"flow", "journey", "process", "sitemap", "navigation"}},
}

// Categorize classifies a document by case-insensitive filename substring.
// A document may fall into several categories or none.
func Categorize(p string) []Category {
	base := strings.ToLower(path.Base(p))
	stem := strings.TrimSuffix(base, path.Ext(base))

	var out []Category
	for _, r := range categoryRules {
		for _, n := range r.needles {
			if strings.Contains(stem, n) {
				out = append(out, r.category)
				break
			}
		}
	}
	return out
}
