// Package compression keeps selected context within a token budget.
package compression

import "repolens/internal/config"

const (
	defaultMaxTokens      = 4000
	defaultMaxFiles       = 10
	defaultExpansionDepth = 2
)

// ContextBudget limits how much repository content one selection may return.
type ContextBudget struct {
	// MaxTokens caps the summed token estimate of all returned files
	MaxTokens int

	// MaxFiles caps the number of returned files independently of tokens
	MaxFiles int

	// ExpansionDepth bounds dependency-graph expansion from the top file
	ExpansionDepth int
}

// DefaultBudget returns the default context budget
func DefaultBudget() *ContextBudget {
	return &ContextBudget{
		MaxTokens:      defaultMaxTokens,
		MaxFiles:       defaultMaxFiles,
		ExpansionDepth: defaultExpansionDepth,
	}
}

// NewBudgetFromConfig creates a budget from configuration, using defaults for zero values.
func NewBudgetFromConfig(cfg *config.Config) *ContextBudget {
	if cfg == nil {
		return DefaultBudget()
	}
	return DefaultBudget().Merge(&ContextBudget{
		MaxTokens:      cfg.Context.MaxTokens,
		MaxFiles:       cfg.Context.MaxFiles,
		ExpansionDepth: cfg.Context.ExpansionDepth,
	})
}

// Merge returns a copy of b with every positive field of override applied.
func (b *ContextBudget) Merge(override *ContextBudget) *ContextBudget {
	out := *b
	if override == nil {
		return &out
	}
	if override.MaxTokens > 0 {
		out.MaxTokens = override.MaxTokens
	}
	if override.MaxFiles > 0 {
		out.MaxFiles = override.MaxFiles
	}
	if override.ExpansionDepth > 0 {
		out.ExpansionDepth = override.ExpansionDepth
	}
	return &out
}
