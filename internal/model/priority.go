// Package model holds value types shared across analysis stages.
package model

import "strings"

// Priority ranks features, gaps and recommendations.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting; high sorts first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

// ParsePriority maps free text to a Priority, defaulting to medium.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "p0", "p1", "critical":
		return PriorityHigh
	case "low", "p3", "p4":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// Effort is a coarse size estimate attached to recommendations.
type Effort string

const (
	EffortSmall  Effort = "small"
	EffortMedium Effort = "medium"
	EffortLarge  Effort = "large"
)
